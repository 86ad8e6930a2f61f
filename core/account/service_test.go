package account_test

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/files"
	testutil "github.com/trezcool/shule/tests"
)

const pwd = "pa55word"

type env struct {
	repo  account.Repository
	blobs core.BlobStore
	mails *emailsvc.ConsoleServiceMock
	svc   *account.Service
}

func setup(t *testing.T) env {
	conf := core.NewConfig()
	conf.TestMode = true
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	core.ParseEmailTemplates(conf, logger)

	blobs, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	repo := inmemdb.NewAccountRepository(inmemdb.NewDB())
	mails := emailsvc.NewConsoleServiceMock(conf, logger)
	return env{repo: repo, blobs: blobs, mails: mails, svc: account.NewService(repo, blobs, mails)}
}

func TestService_RegisterStudent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, e.repo, "Taken", "taken@test.cd", pwd, 0)

	tests := []struct {
		name       string
		ns         account.NewStudent
		wantErr    error
		wantParent bool
	}{
		{
			name: "adult",
			ns:   account.NewStudent{Name: "Ada", Email: "ada@test.cd", Password: pwd, Age: 18, Grade: "12"},
		},
		{
			name: "minor",
			ns: account.NewStudent{
				Name:          "Bob",
				Email:         "bob@test.cd",
				Password:      pwd,
				Age:           17,
				Grade:         "11",
				ParentName:    "Bob Sr",
				ParentContact: "0812",
			},
			wantParent: true,
		},
		{
			name:    "duplicate email",
			ns:      account.NewStudent{Name: "Other", Email: "taken@test.cd", Password: pwd, Age: 30, Grade: "12"},
			wantErr: account.ErrEmailExists,
		},
		{
			name:    "unknown course",
			ns:      account.NewStudent{Name: "Eve", Email: "eve@test.cd", Password: pwd, Age: 30, Grade: "12", CourseID: 42},
			wantErr: account.ErrUnknownCourse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std, err := e.svc.RegisterStudent(ctx, tt.ns)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, std.ID)
			assert.NotEqual(t, []byte(pwd), std.PasswordHash)
			assert.True(t, std.CheckPassword(pwd))
			assert.Equal(t, tt.wantParent, std.ParentID.Valid)

			if tt.wantParent {
				prnt, err := e.svc.GetParent(ctx, int(std.ParentID.Int))
				require.NoError(t, err)
				assert.Equal(t, tt.ns.ParentName, prnt.Name)
				assert.Equal(t, tt.ns.ParentContact, prnt.Contact)
				assert.Equal(t, tt.ns.Name, prnt.ChildName.String)
				assert.False(t, prnt.Email.Valid)
				assert.False(t, prnt.RelationToStudent.Valid)

				children, err := e.svc.Children(ctx, prnt.ID)
				require.NoError(t, err)
				require.Len(t, children, 1)
				assert.Equal(t, std.ID, children[0].ID)
			}
		})
	}

	assert.Len(t, e.mails.SentMessages(), 2)
}

func TestService_RegisterStudent_rollback(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	// the student insert fails on the unknown course: the parent must not be kept either
	_, err := e.svc.RegisterStudent(ctx, account.NewStudent{
		Name:          "Kid",
		Email:         "kid@test.cd",
		Password:      pwd,
		Age:           10,
		Grade:         "5",
		CourseID:      42,
		ParentName:    "Kid Sr",
		ParentContact: "0812",
	})
	assert.Equal(t, account.ErrUnknownCourse, errors.Cause(err))

	parents, err := e.svc.QueryParents(ctx)
	require.NoError(t, err)
	assert.Empty(t, parents)
	assert.Empty(t, e.mails.SentMessages())
}

func TestService_RegisterTeacher(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	nt := account.NewTeacher{Name: "Grace", Email: "grace@test.cd", Password: pwd, YearsOfExperience: 3}

	tchr, err := e.svc.RegisterTeacher(ctx, nt, &core.Upload{Filename: "../me.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "me.png", tchr.Photo)

	rc, err := e.blobs.Open(ctx, core.BucketPhotos, "me.png")
	require.NoError(t, err)
	content, _ := ioutil.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png", string(content))

	_, err = e.svc.RegisterTeacher(ctx, nt, nil)
	assert.Equal(t, account.ErrEmailExists, err)

	nt.Email = "alan@test.cd"
	tchr, err = e.svc.RegisterTeacher(ctx, nt, &core.Upload{Filename: "", Content: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, account.DefaultPhoto, tchr.Photo)
}

func TestService_RegisterTeacher_rejectedKeepsNoPhoto(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	nt := account.NewTeacher{Name: "Ghost", Email: "ghost@test.cd", Password: pwd, CourseID: 404}

	_, err := e.svc.RegisterTeacher(ctx, nt, &core.Upload{Filename: "ghost.png", Content: strings.NewReader("png")})
	assert.Equal(t, account.ErrUnknownCourse, errors.Cause(err))

	_, err = e.blobs.Open(ctx, core.BucketPhotos, "ghost.png")
	assert.Equal(t, core.ErrBlobNotFound, errors.Cause(err))
	_, err = e.svc.Authenticate(ctx, "ghost@test.cd", pwd)
	assert.Equal(t, account.ErrInvalidCredentials, err)
}

func TestService_RegisterParent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	np := account.NewParent{Name: "Marie", Email: "marie@test.cd", Password: pwd, Contact: "0811", ChildName: "Léa"}

	prnt, err := e.svc.RegisterParent(ctx, np)
	require.NoError(t, err)
	assert.Equal(t, "marie@test.cd", prnt.Email.String)
	assert.Equal(t, "Léa", prnt.ChildName.String)
	assert.False(t, prnt.Address.Valid)

	_, err = e.svc.RegisterParent(ctx, np)
	assert.Equal(t, account.ErrEmailExists, err)

	msgs := e.mails.SentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "marie@test.cd", msgs[0].To[0].Address)
}

func TestService_Authenticate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, e.repo, "Stu", "same@test.cd", pwd, 0)
	tchr := testutil.CreateTeacher(t, e.repo, "Tea", "same@test.cd", "other")
	prnt := testutil.CreateParent(t, e.repo, "Par", "par@test.cd", pwd)
	testutil.CreateParent(t, e.repo, "Auto", "", "")

	tests := []struct {
		name    string
		email   string
		pwd     string
		want    account.Identity
		wantErr error
	}{
		{name: "student first", email: "same@test.cd", pwd: pwd, want: account.Identity{Role: account.RoleStudent, ID: std.ID}},
		{name: "then teacher", email: " SAME@test.cd", pwd: "other", want: account.Identity{Role: account.RoleTeacher, ID: tchr.ID}},
		{name: "then parent", email: "par@test.cd", pwd: pwd, want: account.Identity{Role: account.RoleParent, ID: prnt.ID}},
		{name: "wrong password", email: "par@test.cd", pwd: "nope", wantErr: account.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@test.cd", pwd: pwd, wantErr: account.ErrInvalidCredentials},
		{name: "parent without credentials", email: "", pwd: "", wantErr: account.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.Authenticate(ctx, tt.email, tt.pwd)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Exists(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	std := testutil.CreateStudent(t, e.repo, "Stu", "stu@test.cd", pwd, 0)

	ok, err := e.svc.Exists(ctx, account.Identity{Role: account.RoleStudent, ID: std.ID})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.svc.Exists(ctx, account.Identity{Role: account.RoleTeacher, ID: std.ID})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.svc.Exists(ctx, account.Identity{Role: "admin", ID: std.ID})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_UpdateStudent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	validate, _ := testutil.NewValidator()
	std := testutil.CreateStudent(t, e.repo, "Stu", "stu@test.cd", pwd, 0)
	testutil.CreateStudent(t, e.repo, "Other", "other@test.cd", pwd, 0)

	t.Run("blank fields keep their value", func(t *testing.T) {
		us := account.UpdateStudent{Grade: "  13 "}
		require.NoError(t, us.Validate(validate, std))
		got, err := e.svc.UpdateStudent(ctx, std.ID, us)
		require.NoError(t, err)
		assert.Equal(t, "Stu", got.Name)
		assert.Equal(t, "13", got.Grade)
		assert.Equal(t, std.Age, got.Age)
		assert.True(t, got.CheckPassword(pwd))
	})

	t.Run("email taken", func(t *testing.T) {
		us := account.UpdateStudent{Email: "OTHER@test.cd"}
		require.NoError(t, us.Validate(validate, std))
		_, err := e.svc.UpdateStudent(ctx, std.ID, us)
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, account.ErrEmailExists.Error(), err.Error())
	})

	t.Run("password", func(t *testing.T) {
		us := account.UpdateStudent{Password: "new"}
		require.NoError(t, us.Validate(validate, std))
		_, err := e.svc.UpdateStudent(ctx, std.ID, us)
		require.NoError(t, err)
		id, err := e.svc.Authenticate(ctx, "stu@test.cd", "new")
		require.NoError(t, err)
		assert.Equal(t, std.ID, id.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := e.svc.UpdateStudent(ctx, 999, account.UpdateStudent{})
		assert.Equal(t, account.ErrNotFound, errors.Cause(err))
	})
}

func TestService_UpdateTeacher(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	validate, _ := testutil.NewValidator()
	tchr := testutil.CreateTeacher(t, e.repo, "Tea", "tea@test.cd", pwd)

	tests := []struct {
		name      string
		ut        account.UpdateTeacher
		photo     *core.Upload
		wantYears int
		wantPhoto string
		wantErr   string
	}{
		{name: "keep", wantYears: 0, wantPhoto: account.DefaultPhoto},
		{name: "years", ut: account.UpdateTeacher{YearsOfExperience: " 4"}, wantYears: 4, wantPhoto: account.DefaultPhoto},
		{name: "negative years", ut: account.UpdateTeacher{YearsOfExperience: "-1"}, wantErr: "years_of_experience must be a positive number"},
		{name: "not a number", ut: account.UpdateTeacher{YearsOfExperience: "ten"}, wantErr: "years_of_experience must be a positive number"},
		{
			name:      "photo",
			ut:        account.UpdateTeacher{},
			photo:     &core.Upload{Filename: "new face.jpg", Content: strings.NewReader("jpg")},
			wantYears: 4,
			wantPhoto: "new_face.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig, err := e.svc.GetTeacher(ctx, tchr.ID)
			require.NoError(t, err)

			err = tt.ut.Validate(validate, orig)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)

			got, err := e.svc.UpdateTeacher(ctx, tchr.ID, tt.ut, tt.photo)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYears, got.YearsOfExperience)
			assert.Equal(t, tt.wantPhoto, got.Photo)
		})
	}
}

func TestService_UpdateParent(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	validate, _ := testutil.NewValidator()
	auto := testutil.CreateParent(t, e.repo, "Auto", "", "")
	testutil.CreateParent(t, e.repo, "Par", "par@test.cd", pwd)

	up := account.UpdateParent{Email: "par@test.cd", Password: pwd}
	require.NoError(t, up.Validate(validate, auto))
	_, err := e.svc.UpdateParent(ctx, auto.ID, up)
	assert.True(t, core.IsValidationError(err))

	// an auto-created parent may be given credentials
	up = account.UpdateParent{Email: "auto@test.cd", Password: pwd, Place: "Goma"}
	require.NoError(t, up.Validate(validate, auto))
	got, err := e.svc.UpdateParent(ctx, auto.ID, up)
	require.NoError(t, err)
	assert.Equal(t, "Auto", got.Name)
	assert.Equal(t, "Goma", got.Place.String)

	id, err := e.svc.Authenticate(ctx, "auto@test.cd", pwd)
	require.NoError(t, err)
	assert.Equal(t, account.Identity{Role: account.RoleParent, ID: auto.ID}, id)
}

func TestService_QueryStudents(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, e.repo, "Bea", "bea@test.cd", pwd, 0)
	testutil.CreateStudent(t, e.repo, "Abe", "abe@test.cd", pwd, 0)

	stds, err := e.svc.QueryStudents(ctx, core.DBOrdering{Field: "name", Ascending: true})
	require.NoError(t, err)
	require.Len(t, stds, 2)
	assert.Equal(t, "Abe", stds[0].Name)
	assert.Equal(t, "Bea", stds[1].Name)
}

func TestParseRole(t *testing.T) {
	role, err := account.ParseRole("teacher")
	require.NoError(t, err)
	assert.Equal(t, account.RoleTeacher, role)

	_, err = account.ParseRole("admin")
	assert.EqualError(t, err, `unknown role "admin"`)
}
