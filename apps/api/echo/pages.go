package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
)

// Page names. Each one is a bundle handed to the PageRenderer.
const (
	pageIndex         = "index"
	pageStudentIndex  = "student_index"
	pageTeacherIndex  = "teacher_index"
	pageParentIndex   = "parent_index"
	pageAdminIndex    = "admin_index"
	pageLogin         = "login"
	pageInvalidLogin  = "invalid_login"
	pageNotFound      = "not_found"
	pageStudentSignup = "student_register"
	pageTeacherSignup = "teacher_register"
	pageParentSignup  = "parent_register"

	pageStudentDashboard   = "student_dashboard"
	pageStudentProfile     = "student_profile"
	pageStudentEditProfile = "student_edit_profile"
	pageStudentClasses     = "student_classes"
	pageStudentAttendance  = "student_attendance"
	pageStudentMaterials   = "student_materials"
	pageViewMaterial       = "view_material_student"
	pageStudentProgress    = "student_progress"

	pageTeacherDashboard   = "teacher_dashboard"
	pageTeacherProfile     = "teacher_profile"
	pageTeacherEditProfile = "teacher_edit_profile"
	pageAttendance         = "attendance"
	pageManageClass        = "manage_class"
	pageUploadRecorded     = "upload_recorded_class"
	pageEditRecorded       = "edit_recorded_class"
	pageAddLive            = "add_live_class"
	pageEditLive           = "edit_live_class"
	pageUploadMaterial     = "upload_material"
	pageManageMaterials    = "manage_materials"
	pageEditMaterial       = "edit_material"

	pageParentDashboard   = "parent_dashboard"
	pageParentProfile     = "parent_profile"
	pageParentEditProfile = "parent_edit_profile"

	pageAdminStudents = "admin_students"
	pageAdminTeachers = "admin_teachers"
	pageAdminParents  = "admin_parents"
	pageAddSubject    = "add_subject"
)

// Page is what a handler hands over to be rendered.
type Page struct {
	Name    string      `json:"page"`
	Flashes []Flash     `json:"flashes"`
	Data    interface{} `json:"data,omitempty"`
}

// PageRenderer turns a Page into a response. Plug a template engine in by implementing it.
type PageRenderer interface {
	RenderPage(ctx echo.Context, code int, page Page) error
}

// JSONRenderer writes the page bundle as JSON.
type JSONRenderer struct{}

func (JSONRenderer) RenderPage(ctx echo.Context, code int, page Page) error {
	return ctx.JSON(code, page)
}

// pages is embedded by the handler groups.
type pages struct {
	renderer   PageRenderer
	translator ut.Translator
}

func (p pages) render(ctx echo.Context, name string, data interface{}) error {
	return p.renderCode(ctx, http.StatusOK, name, data)
}

func (p pages) renderCode(ctx echo.Context, code int, name string, data interface{}) error {
	return p.renderer.RenderPage(ctx, code, Page{Name: name, Flashes: popFlashes(ctx), Data: data})
}

func (p pages) redirect(ctx echo.Context, path string) error {
	return ctx.Redirect(http.StatusSeeOther, path)
}

// flashAndRedirect flashes msg then redirects to path.
func (p pages) flashAndRedirect(ctx echo.Context, category, msg, path string) error {
	flash(ctx, category, msg)
	return p.redirect(ctx, path)
}

// redirectOnInvalid flashes the messages of a validation error and redirects to path.
// Any other error is returned as is.
func (p pages) redirectOnInvalid(ctx echo.Context, err error, path string) error {
	msgs, ok := validationMessages(err, p.translator)
	if !ok {
		return err
	}
	for _, msg := range msgs {
		flash(ctx, flashDanger, msg)
	}
	return p.redirect(ctx, path)
}
