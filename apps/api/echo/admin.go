package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
)

const msgCourseAdded = "Subject added successfully!"

var (
	studentOrderings = []string{"id", "name", "email", "age", "grade"}
	teacherOrderings = []string{"id", "name", "email", "years_of_experience"}
	parentOrderings  = []string{"id", "name", "email"}
)

type adminApi struct {
	pages
	accountSvc *account.Service
	courseSvc  *course.Service
}

func registerAdminAPI(e *echo.Echo, guard echo.MiddlewareFunc, api adminApi) {
	ag := e.Group("/admin")
	ag.GET("", api.index, guard)
	ag.GET("/students", api.students, guard)
	ag.GET("/teachers", api.teachers, guard)
	ag.GET("/parents", api.parents, guard)
	ag.GET("/courses", api.coursesForm, guard)
	ag.POST("/courses", api.addCourse, guard)
}

func orderings(ctx echo.Context, allowed []string) []core.DBOrdering {
	var ord Ordering
	ord.Bind(ctx)
	return core.FilterOrderings(ord.Orderings, allowed...)
}

// Handlers

func (api *adminApi) index(ctx echo.Context) error {
	return api.render(ctx, pageAdminIndex, nil)
}

func (api *adminApi) students(ctx echo.Context) error {
	students, err := api.accountSvc.QueryStudents(ctx.Request().Context(), orderings(ctx, studentOrderings)...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return api.render(ctx, pageAdminStudents, echo.Map{"students": students})
}

func (api *adminApi) teachers(ctx echo.Context) error {
	teachers, err := api.accountSvc.QueryTeachers(ctx.Request().Context(), orderings(ctx, teacherOrderings)...)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return api.render(ctx, pageAdminTeachers, echo.Map{"teachers": teachers})
}

func (api *adminApi) parents(ctx echo.Context) error {
	parents, err := api.accountSvc.QueryParents(ctx.Request().Context(), orderings(ctx, parentOrderings)...)
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	return api.render(ctx, pageAdminParents, echo.Map{"parents": parents})
}

func (api *adminApi) coursesForm(ctx echo.Context) error {
	courses, err := api.courseSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return api.render(ctx, pageAddSubject, echo.Map{"courses": courses})
}

func (api *adminApi) addCourse(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	if _, err := api.courseSvc.Create(ctx.Request().Context(), data); err != nil {
		return api.redirectOnInvalid(ctx, err, "/admin/courses")
	}
	return api.flashAndRedirect(ctx, flashSuccess, msgCourseAdded, "/admin/courses")
}
