package echoapi_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/account"
)

func Test_parentApi_dashboard(t *testing.T) {
	app := setup(t)
	kid := app.createStudent(t, "Kid", "kid@test.cd", 11, 0)
	app.createStudent(t, "Stranger", "stranger@test.cd", 12, 0)
	tchr := app.createTeacher(t, "Tea", "tea@test.cd")
	app.uploadMaterial(t, tchr.ID, "Gears", "gears.pdf")
	mat := app.uploadMaterial(t, tchr.ID, "Motors", "motors.pdf")

	ctx := context.Background()
	// the parent created along with the kid gets credentials
	_, err := app.accountSvc.UpdateParent(ctx, int(kid.ParentID.Int), account.UpdateParent{
		Name:     "Kid Sr",
		Email:    "mum@test.cd",
		Password: password,
		Contact:  "0999",
	})
	require.NoError(t, err)

	_, err = app.attendanceSvc.Mark(ctx, tchr.ID, map[int]string{kid.ID: "present"})
	require.NoError(t, err)
	_, err = app.materialSvc.View(ctx, kid.ID, mat.ID)
	require.NoError(t, err)

	c := app.newClient(t)
	c.login("mum@test.cd")

	var data struct {
		Parent struct {
			Name string `json:"name"`
		} `json:"parent"`
		Children []struct {
			Student struct {
				Name string `json:"name"`
			} `json:"student"`
			Attendance struct {
				Percentage string `json:"percentage"`
			} `json:"attendance"`
			Progress int `json:"progress"`
		} `json:"children"`
	}
	p := decodePage(t, c.get("/parent/dashboard"))
	assert.Equal(t, "parent_dashboard", p.Name)
	p.decodeData(t, &data)
	assert.Equal(t, "Kid Sr", data.Parent.Name)
	require.Len(t, data.Children, 1)
	assert.Equal(t, "Kid", data.Children[0].Student.Name)
	assert.Equal(t, "100.00", data.Children[0].Attendance.Percentage)
	assert.Equal(t, 50, data.Children[0].Progress)
}

func Test_parentApi_editProfile(t *testing.T) {
	app := setup(t)
	prnt := app.createParent(t, "Par", "par@test.cd")
	app.createParent(t, "Other", "other@test.cd")

	c := app.newClient(t)
	c.login("par@test.cd")

	p := decodePage(t, c.get("/parent/profile/edit"))
	assert.Equal(t, "parent_edit_profile", p.Name)

	p = c.assertRedirect(c.postForm("/parent/profile/edit", url.Values{"email": {"other@test.cd"}}), "/parent/profile/edit")
	assert.Equal(t, []string{"an account with this email already exists"}, p.messages())

	p = c.assertRedirect(c.postForm("/parent/profile/edit", url.Values{"place": {"Bukavu"}, "password": {"n3w-pwd"}}), "/parent/profile")
	assert.Equal(t, "parent_profile", p.Name)
	assert.Equal(t, []string{"Profile updated successfully!"}, p.messages())

	updated, err := app.accountSvc.GetParent(context.Background(), prnt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Par", updated.Name)
	assert.Equal(t, "par@test.cd", updated.Email.String)
	assert.Equal(t, "Bukavu", updated.Place.String)
	assert.True(t, updated.CheckPassword("n3w-pwd"))
}
