package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
)

const (
	msgUserExists    = "User already exists"
	msgUnknownCourse = "Please select a course!"
	msgProfileSaved  = "Profile updated successfully!"
)

type authApi struct {
	pages
	validate   *validator.Validate
	sessions   *sessionManager
	metrics    *metrics
	accountSvc *account.Service
	courseSvc  *course.Service
}

func registerAuthAPI(e *echo.Echo, api authApi) {
	e.GET("/", api.home)
	e.GET("/student", api.landing(pageStudentIndex))
	e.GET("/teacher", api.landing(pageTeacherIndex))
	e.GET("/parent", api.landing(pageParentIndex))

	rg := e.Group("/register")
	rg.GET("/student", api.studentForm)
	rg.POST("/student", api.registerStudent)
	rg.GET("/teacher", api.teacherForm)
	rg.POST("/teacher", api.registerTeacher)
	rg.GET("/parent", api.landing(pageParentSignup))
	rg.POST("/parent", api.registerParent)

	e.GET("/login", api.landing(pageLogin))
	e.POST("/login", api.login)
	e.GET("/invalid_login", api.landing(pageInvalidLogin))
	e.GET("/logout", api.logout)
}

// accountError handles the errors a registration or profile update may be recovered from.
func (api *authApi) accountError(ctx echo.Context, err error, back string) error {
	switch errors.Cause(err) {
	case account.ErrEmailExists:
		return api.flashAndRedirect(ctx, flashDanger, msgUserExists, "/")
	case account.ErrUnknownCourse:
		return api.flashAndRedirect(ctx, flashDanger, msgUnknownCourse, back)
	}
	return api.redirectOnInvalid(ctx, err, back)
}

// Handlers

func (api *authApi) home(ctx echo.Context) error {
	var data interface{}
	if id := getContextIdentity(ctx); !id.IsZero() {
		data = echo.Map{"identity": id, "dashboard": dashboardPath(id.Role)}
	}
	return api.render(ctx, pageIndex, data)
}

func (api *authApi) landing(page string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return api.render(ctx, page, nil)
	}
}

func (api *authApi) coursesData(ctx echo.Context) (echo.Map, error) {
	courses, err := api.courseSvc.List(ctx.Request().Context())
	if err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return echo.Map{"courses": courses}, nil
}

func (api *authApi) studentForm(ctx echo.Context) error {
	data, err := api.coursesData(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageStudentSignup, data)
}

func (api *authApi) teacherForm(ctx echo.Context) error {
	data, err := api.coursesData(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageTeacherSignup, data)
}

func (api *authApi) registerStudent(ctx echo.Context) error {
	var data account.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return api.redirectOnInvalid(ctx, err, "/register/student")
	}

	if _, err := api.accountSvc.RegisterStudent(ctx.Request().Context(), data); err != nil {
		return api.accountError(ctx, err, "/register/student")
	}
	api.metrics.registrations.WithLabelValues(string(account.RoleStudent)).Inc()
	return api.redirect(ctx, "/login")
}

func (api *authApi) registerTeacher(ctx echo.Context) error {
	var data account.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return api.redirectOnInvalid(ctx, err, "/register/teacher")
	}

	photo, done, err := formUpload(ctx, "photo")
	if err != nil {
		return err
	}
	defer done()

	tchr, err := api.accountSvc.RegisterTeacher(ctx.Request().Context(), data, photo)
	if err != nil {
		return api.accountError(ctx, err, "/register/teacher")
	}
	api.metrics.registrations.WithLabelValues(string(account.RoleTeacher)).Inc()
	if tchr.Photo != account.DefaultPhoto {
		api.metrics.uploads.WithLabelValues(core.BucketPhotos).Inc()
	}
	return api.redirect(ctx, "/login")
}

func (api *authApi) registerParent(ctx echo.Context) error {
	var data account.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	if err := data.Validate(api.validate); err != nil {
		return api.redirectOnInvalid(ctx, err, "/register/parent")
	}

	if _, err := api.accountSvc.RegisterParent(ctx.Request().Context(), data); err != nil {
		return api.accountError(ctx, err, "/register/parent")
	}
	api.metrics.registrations.WithLabelValues(string(account.RoleParent)).Inc()
	return api.redirect(ctx, "/login")
}

func (api *authApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}

	id, err := api.accountSvc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == account.ErrInvalidCredentials {
			api.metrics.logins.WithLabelValues("failure").Inc()
			return api.render(ctx, pageInvalidLogin, nil)
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = api.sessions.login(ctx, id); err != nil {
		return errors.Wrap(err, "opening session")
	}
	api.metrics.logins.WithLabelValues("success").Inc()
	return api.redirect(ctx, dashboardPath(id.Role))
}

func (api *authApi) logout(ctx echo.Context) error {
	api.sessions.logout(ctx)
	return api.redirect(ctx, "/")
}

type loginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}
