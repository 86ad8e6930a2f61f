package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/material"
)

type studentApi struct {
	pages
	validate      *validator.Validate
	metrics       *metrics
	accountSvc    *account.Service
	courseSvc     *course.Service
	classroomSvc  *classroom.Service
	materialSvc   *material.Service
	attendanceSvc *attendance.Service
}

func registerStudentAPI(e *echo.Echo, guard echo.MiddlewareFunc, api studentApi) {
	sg := e.Group("/student")
	sg.GET("/dashboard", api.dashboard, guard)
	sg.GET("/profile", api.profile, guard)
	sg.GET("/profile/edit", api.editProfileForm, guard)
	sg.POST("/profile/edit", api.editProfile, guard)
	sg.GET("/classes", api.classes, guard)
	sg.GET("/attendance", api.attendance, guard)
	sg.GET("/materials", api.materials, guard)
	sg.GET("/materials/:id", api.viewMaterial, guard)
	sg.GET("/progress", api.progress, guard)
}

type attendanceRecord struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// attendanceView is a Report formatted for display.
type attendanceView struct {
	Records    []attendanceRecord `json:"records"`
	Total      int                `json:"total"`
	Present    int                `json:"present"`
	Percentage string             `json:"percentage"`
}

func newAttendanceView(rep attendance.Report) attendanceView {
	view := attendanceView{
		Records:    make([]attendanceRecord, 0, len(rep.Records)),
		Total:      rep.Total,
		Present:    rep.Present,
		Percentage: rep.PercentageDisplay(),
	}
	for _, rec := range rep.Records {
		view.Records = append(view.Records, attendanceRecord{Date: core.FormatDisplayDate(rec.Date), Status: rec.Status})
	}
	return view
}

func (api *studentApi) student(ctx echo.Context) (account.Student, error) {
	std, err := api.accountSvc.GetStudent(ctx.Request().Context(), getContextIdentity(ctx).ID)
	return std, errors.Wrap(err, "finding student")
}

// Handlers

func (api *studentApi) dashboard(ctx echo.Context) error {
	std, err := api.student(ctx)
	if err != nil {
		return err
	}
	rep, err := api.attendanceSvc.ForStudent(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	return api.render(ctx, pageStudentDashboard, echo.Map{
		"student":      std,
		"current_date": core.FormatDisplayDate(core.Today()),
		"attendance":   newAttendanceView(rep),
	})
}

func (api *studentApi) profile(ctx echo.Context) error {
	std, err := api.student(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageStudentProfile, echo.Map{"student": std})
}

func (api *studentApi) editProfileForm(ctx echo.Context) error {
	std, err := api.student(ctx)
	if err != nil {
		return err
	}
	courses, err := api.courseSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return api.render(ctx, pageStudentEditProfile, echo.Map{"student": std, "courses": courses})
}

func (api *studentApi) editProfile(ctx echo.Context) error {
	std, err := api.student(ctx)
	if err != nil {
		return err
	}

	var data account.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate, std); err != nil {
		return api.redirectOnInvalid(ctx, err, "/student/profile/edit")
	}

	if _, err = api.accountSvc.UpdateStudent(ctx.Request().Context(), std.ID, data); err != nil {
		if errors.Cause(err) == account.ErrUnknownCourse {
			return api.flashAndRedirect(ctx, flashDanger, msgUnknownCourse, "/student/profile/edit")
		}
		return api.redirectOnInvalid(ctx, err, "/student/profile/edit")
	}
	return api.flashAndRedirect(ctx, flashSuccess, msgProfileSaved, "/student/profile")
}

func (api *studentApi) classes(ctx echo.Context) error {
	sch, err := api.classroomSvc.ListForStudent(ctx.Request().Context(), getContextIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return api.render(ctx, pageStudentClasses, sch)
}

func (api *studentApi) attendance(ctx echo.Context) error {
	rep, err := api.attendanceSvc.ForStudent(ctx.Request().Context(), getContextIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	return api.render(ctx, pageStudentAttendance, newAttendanceView(rep))
}

func (api *studentApi) materials(ctx echo.Context) error {
	mats, err := api.materialSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing materials")
	}
	return api.render(ctx, pageStudentMaterials, echo.Map{"materials": mats})
}

func (api *studentApi) viewMaterial(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	mat, err := api.materialSvc.View(ctx.Request().Context(), getContextIdentity(ctx).ID, id)
	if err != nil {
		return errors.Wrap(err, "viewing material")
	}
	api.metrics.materialViews.Inc()
	return api.render(ctx, pageViewMaterial, echo.Map{
		"material": mat,
		"url":      mediaPath(core.BucketMaterials, mat.Filename),
	})
}

func (api *studentApi) progress(ctx echo.Context) error {
	pct, err := api.materialSvc.ProgressPercent(ctx.Request().Context(), getContextIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return api.render(ctx, pageStudentProgress, echo.Map{"progress": pct})
}
