package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/material"
)

type parentApi struct {
	pages
	validate      *validator.Validate
	accountSvc    *account.Service
	materialSvc   *material.Service
	attendanceSvc *attendance.Service
}

func registerParentAPI(e *echo.Echo, guard echo.MiddlewareFunc, api parentApi) {
	pg := e.Group("/parent")
	pg.GET("/dashboard", api.dashboard, guard)
	pg.GET("/profile", api.profile, guard)
	pg.GET("/profile/edit", api.editProfileForm, guard)
	pg.POST("/profile/edit", api.editProfile, guard)
}

type childView struct {
	Student    account.Student `json:"student"`
	Attendance attendanceView  `json:"attendance"`
	Progress   int             `json:"progress"`
}

func (api *parentApi) parent(ctx echo.Context) (account.Parent, error) {
	prnt, err := api.accountSvc.GetParent(ctx.Request().Context(), getContextIdentity(ctx).ID)
	return prnt, errors.Wrap(err, "finding parent")
}

// Handlers

func (api *parentApi) dashboard(ctx echo.Context) error {
	prnt, err := api.parent(ctx)
	if err != nil {
		return err
	}

	c := ctx.Request().Context()
	children, err := api.accountSvc.Children(c, prnt.ID)
	if err != nil {
		return errors.Wrap(err, "listing children")
	}

	views := make([]childView, 0, len(children))
	for _, std := range children {
		rep, err := api.attendanceSvc.ForStudent(c, std.ID)
		if err != nil {
			return errors.Wrapf(err, "getting attendance of student %d", std.ID)
		}
		pct, err := api.materialSvc.ProgressPercent(c, std.ID)
		if err != nil {
			return errors.Wrapf(err, "computing progress of student %d", std.ID)
		}
		views = append(views, childView{Student: std, Attendance: newAttendanceView(rep), Progress: pct})
	}

	return api.render(ctx, pageParentDashboard, echo.Map{
		"parent":       prnt,
		"current_date": core.FormatDisplayDate(core.Today()),
		"children":     views,
	})
}

func (api *parentApi) profile(ctx echo.Context) error {
	prnt, err := api.parent(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageParentProfile, echo.Map{"parent": prnt})
}

func (api *parentApi) editProfileForm(ctx echo.Context) error {
	prnt, err := api.parent(ctx)
	if err != nil {
		return err
	}
	return api.render(ctx, pageParentEditProfile, echo.Map{"parent": prnt})
}

func (api *parentApi) editProfile(ctx echo.Context) error {
	prnt, err := api.parent(ctx)
	if err != nil {
		return err
	}

	var data account.UpdateParent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	if err = data.Validate(api.validate, prnt); err != nil {
		return api.redirectOnInvalid(ctx, err, "/parent/profile/edit")
	}

	if _, err = api.accountSvc.UpdateParent(ctx.Request().Context(), prnt.ID, data); err != nil {
		return api.redirectOnInvalid(ctx, err, "/parent/profile/edit")
	}
	return api.flashAndRedirect(ctx, flashSuccess, msgProfileSaved, "/parent/profile")
}
