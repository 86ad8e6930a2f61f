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

const (
	msgRecordedUploaded = "Recorded class uploaded successfully!"
	msgLiveScheduled    = "Live class scheduled successfully!"
)

type teacherApi struct {
	pages
	validate      *validator.Validate
	metrics       *metrics
	accountSvc    *account.Service
	courseSvc     *course.Service
	classroomSvc  *classroom.Service
	materialSvc   *material.Service
	attendanceSvc *attendance.Service
}

func registerTeacherAPI(e *echo.Echo, guard echo.MiddlewareFunc, api teacherApi) {
	tg := e.Group("/teacher")
	tg.GET("/dashboard", api.dashboard, guard)
	tg.GET("/profile", api.profile, guard)
	tg.GET("/profile/edit", api.editProfileForm, guard)
	tg.POST("/profile/edit", api.editProfile, guard)

	tg.GET("/attendance", api.attendanceForm, guard)
	tg.POST("/attendance", api.markAttendance, guard)

	cg := tg.Group("/classes")
	cg.GET("", api.manageClasses, guard)
	cg.GET("/recorded/new", api.coursesForm(pageUploadRecorded), guard)
	cg.POST("/recorded/new", api.uploadRecorded, guard)
	cg.GET("/recorded/:id/edit", api.editRecordedForm, guard)
	cg.POST("/recorded/:id/edit", api.editRecorded, guard)
	cg.Match(deleteMethods, "/recorded/:id/delete", api.deleteRecorded, guard)
	cg.GET("/live/new", api.coursesForm(pageAddLive), guard)
	cg.POST("/live/new", api.scheduleLive, guard)
	cg.GET("/live/:id/edit", api.editLiveForm, guard)
	cg.POST("/live/:id/edit", api.editLive, guard)
	cg.Match(deleteMethods, "/live/:id/delete", api.deleteLive, guard)

	mg := tg.Group("/materials")
	mg.GET("", api.manageMaterials, guard)
	mg.GET("/new", api.coursesForm(pageUploadMaterial), guard)
	mg.POST("/new", api.uploadMaterial, guard)
	mg.GET("/:id/edit", api.editMaterialForm, guard)
	mg.POST("/:id/edit", api.editMaterial, guard)
	mg.Match(deleteMethods, "/:id/delete", api.deleteMaterial, guard)
}

// deleteMethods: delete links are plain anchors as well as forms.
var deleteMethods = []string{echo.GET, echo.POST}

func (api *teacherApi) teacher(ctx echo.Context) (account.Teacher, error) {
	tchr, err := api.accountSvc.GetTeacher(ctx.Request().Context(), getContextIdentity(ctx).ID)
	return tchr, errors.Wrap(err, "finding teacher")
}

func (api *teacherApi) courses(ctx echo.Context) ([]course.Course, error) {
	courses, err := api.courseSvc.List(ctx.Request().Context())
	return courses, errors.Wrap(err, "listing courses")
}

// Handlers

func (api *teacherApi) dashboard(ctx echo.Context) error {
	tchr, err := api.teacher(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageTeacherDashboard, echo.Map{
		"teacher":      tchr,
		"current_date": core.FormatDisplayDate(core.Today()),
	})
}

func (api *teacherApi) profile(ctx echo.Context) error {
	tchr, err := api.teacher(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageTeacherProfile, echo.Map{
		"teacher":   tchr,
		"photo_url": mediaPath(core.BucketPhotos, tchr.Photo),
	})
}

func (api *teacherApi) editProfileForm(ctx echo.Context) error {
	tchr, err := api.teacher(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageTeacherEditProfile, echo.Map{"teacher": tchr})
}

func (api *teacherApi) editProfile(ctx echo.Context) error {
	tchr, err := api.teacher(ctx)
	if err != nil {
		return err
	}

	var data account.UpdateTeacher
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err = data.Validate(api.validate, tchr); err != nil {
		return api.redirectOnInvalid(ctx, err, "/teacher/profile/edit")
	}

	photo, done, err := formUpload(ctx, "photo")
	if err != nil {
		return err
	}
	defer done()

	if _, err = api.accountSvc.UpdateTeacher(ctx.Request().Context(), tchr.ID, data, photo); err != nil {
		return api.redirectOnInvalid(ctx, err, "/teacher/profile/edit")
	}
	if !photo.IsEmpty() {
		api.metrics.uploads.WithLabelValues(core.BucketPhotos).Inc()
	}
	return api.flashAndRedirect(ctx, flashSuccess, msgProfileSaved, "/teacher/profile")
}

func (api *teacherApi) renderAttendance(ctx echo.Context, success bool) error {
	students, err := api.attendanceSvc.Roster(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return api.render(ctx, pageAttendance, echo.Map{
		"students": students,
		"today":    core.FormatDisplayDate(core.Today()),
		"success":  success,
	})
}

func (api *teacherApi) attendanceForm(ctx echo.Context) error {
	return api.renderAttendance(ctx, false)
}

func (api *teacherApi) markAttendance(ctx echo.Context) error {
	statuses, err := attendanceStatuses(ctx)
	if err != nil {
		return err
	}

	n, err := api.attendanceSvc.Mark(ctx.Request().Context(), getContextIdentity(ctx).ID, statuses)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	api.metrics.attendance.Add(float64(n))
	return api.renderAttendance(ctx, true)
}

func (api *teacherApi) manageClasses(ctx echo.Context) error {
	sch, err := api.classroomSvc.ListByTeacher(ctx.Request().Context(), getContextIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return api.render(ctx, pageManageClass, sch)
}

func (api *teacherApi) coursesForm(page string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		courses, err := api.courses(ctx)
		if err != nil {
			return err
		}
		return api.render(ctx, page, echo.Map{"courses": courses})
	}
}

func (api *teacherApi) uploadRecorded(ctx echo.Context) error {
	var data classroom.NewRecordedClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecordedClass")
	}

	video, done, err := formUpload(ctx, "video")
	if err != nil {
		return err
	}
	defer done()

	_, err = api.classroomSvc.UploadRecorded(ctx.Request().Context(), getContextIdentity(ctx).ID, data, video)
	if err != nil {
		return api.redirectOnInvalid(ctx, err, "/teacher/classes/recorded/new")
	}
	api.metrics.uploads.WithLabelValues(core.BucketVideos).Inc()
	return api.flashAndRedirect(ctx, flashSuccess, msgRecordedUploaded, "/teacher/classes")
}

func (api *teacherApi) editRecordedForm(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	cls, err := api.classroomSvc.GetRecorded(ctx.Request().Context(), getContextIdentity(ctx).ID, id)
	if err != nil {
		return errors.Wrap(err, "finding recorded class")
	}
	return api.render(ctx, pageEditRecorded, echo.Map{"class": cls})
}

func (api *teacherApi) editRecorded(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	var data classroom.UpdateRecordedClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecordedClass")
	}

	video, done, err := formUpload(ctx, "video")
	if err != nil {
		return err
	}
	defer done()

	_, err = api.classroomSvc.EditRecorded(ctx.Request().Context(), getContextIdentity(ctx).ID, id, data, video)
	if err != nil {
		return api.redirectOnInvalid(ctx, err, ctx.Request().URL.Path)
	}
	if !video.IsEmpty() {
		api.metrics.uploads.WithLabelValues(core.BucketVideos).Inc()
	}
	return api.redirect(ctx, "/teacher/classes")
}

func (api *teacherApi) deleteRecorded(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.classroomSvc.DeleteRecorded(ctx.Request().Context(), getContextIdentity(ctx).ID, id); err != nil {
		return errors.Wrap(err, "deleting recorded class")
	}
	return api.redirect(ctx, "/teacher/classes")
}

func (api *teacherApi) scheduleLive(ctx echo.Context) error {
	var data classroom.NewLiveClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLiveClass")
	}

	if _, err := api.classroomSvc.ScheduleLive(ctx.Request().Context(), getContextIdentity(ctx).ID, data); err != nil {
		return api.redirectOnInvalid(ctx, err, "/teacher/classes/live/new")
	}
	return api.flashAndRedirect(ctx, flashSuccess, msgLiveScheduled, "/teacher/classes")
}

func (api *teacherApi) editLiveForm(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	cls, err := api.classroomSvc.GetLive(ctx.Request().Context(), getContextIdentity(ctx).ID, id)
	if err != nil {
		return errors.Wrap(err, "finding live class")
	}
	return api.render(ctx, pageEditLive, echo.Map{"class": cls})
}

func (api *teacherApi) editLive(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	var data classroom.UpdateLiveClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLiveClass")
	}

	if _, err = api.classroomSvc.EditLive(ctx.Request().Context(), getContextIdentity(ctx).ID, id, data); err != nil {
		return api.redirectOnInvalid(ctx, err, ctx.Request().URL.Path)
	}
	return api.redirect(ctx, "/teacher/classes")
}

func (api *teacherApi) deleteLive(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.classroomSvc.DeleteLive(ctx.Request().Context(), getContextIdentity(ctx).ID, id); err != nil {
		return errors.Wrap(err, "deleting live class")
	}
	return api.redirect(ctx, "/teacher/classes")
}

func (api *teacherApi) manageMaterials(ctx echo.Context) error {
	mats, err := api.materialSvc.ListByTeacher(ctx.Request().Context(), getContextIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing materials")
	}
	return api.render(ctx, pageManageMaterials, echo.Map{"materials": mats})
}

func (api *teacherApi) uploadMaterial(ctx echo.Context) error {
	var data material.NewMaterial
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}

	file, done, err := formUpload(ctx, "file")
	if err != nil {
		return err
	}
	defer done()

	if _, err = api.materialSvc.Upload(ctx.Request().Context(), getContextIdentity(ctx).ID, data, file); err != nil {
		if errors.Cause(err) == material.ErrFileNotAllowed {
			return api.coursesForm(pageUploadMaterial)(ctx)
		}
		if core.IsValidationError(err) {
			return api.redirectOnInvalid(ctx, err, "/teacher/materials/new")
		}
		return errors.Wrap(err, "uploading material")
	}
	api.metrics.uploads.WithLabelValues(core.BucketMaterials).Inc()
	return api.redirect(ctx, "/teacher/materials")
}

func (api *teacherApi) editMaterialForm(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	mat, err := api.materialSvc.GetOwned(ctx.Request().Context(), getContextIdentity(ctx).ID, id)
	if err != nil {
		return errors.Wrap(err, "finding material")
	}
	return api.render(ctx, pageEditMaterial, echo.Map{"material": mat})
}

func (api *teacherApi) editMaterial(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}

	var data material.UpdateMaterial
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaterial")
	}
	if _, err = api.materialSvc.Edit(ctx.Request().Context(), getContextIdentity(ctx).ID, id, data); err != nil {
		return errors.Wrap(err, "editing material")
	}
	return api.redirect(ctx, "/teacher/materials")
}

func (api *teacherApi) deleteMaterial(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err = api.materialSvc.Delete(ctx.Request().Context(), getContextIdentity(ctx).ID, id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return api.redirect(ctx, "/teacher/materials")
}
