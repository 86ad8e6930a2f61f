package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/ioutil"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

func setup() *commandLine {
	db := inmemdb.NewDB()
	return &commandLine{
		migrator:   dbMigrator{},
		accountSvc: account.NewService(inmemdb.NewAccountRepository(db), nil, nil),
		courseSvc:  course.NewService(inmemdb.NewCourseRepository(db)),
		out:        ioutil.Discard,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup()

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_grade", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_courses(t *testing.T) {
	cli := setup()
	ctx := context.Background()

	tests := []cliTest{
		{name: "seed", args: []string{"seedcourses"}},
		{name: "seed twice", args: []string{"seedcourses"}},
		{name: "addcourse: no name", args: []string{"addcourse"}, wantErr: errHelp},
		{name: "addcourse: blank name", args: []string{"addcourse", "-name", "  "}, wantErrStr: "Subject name cannot be empty!"},
		{name: "addcourse", args: []string{"addcourse", "-name", "Drones", "-description", "Flying robots"}},
		{name: "addcourse: duplicate", args: []string{"addcourse", "-name", "drones"}, wantErrStr: course.ErrNameExists.Error()},
		{name: "addcourse: unknown flag", args: []string{"addcourse", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	courses, err := cli.courseSvc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, len(course.Defaults)+1)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup()
	ctx := context.Background()

	std, err := cli.accountSvc.RegisterStudent(ctx, account.NewStudent{Name: "Stu", Email: "stu@test.cd", Password: "mdr", Age: 20, Grade: "10"})
	require.NoError(t, err)
	kid, err := cli.accountSvc.RegisterStudent(ctx, account.NewStudent{
		Name:          "Kid",
		Email:         "kid@test.cd",
		Password:      "mdr",
		Age:           10,
		Grade:         "4",
		ParentName:    "Kid Sr",
		ParentContact: "0999",
	})
	require.NoError(t, err)
	// the same email may be used by accounts of different roles
	_, err = cli.accountSvc.RegisterTeacher(ctx, account.NewTeacher{Name: "Tea", Email: "stu@test.cd", Password: "mdr"}, nil)
	require.NoError(t, err)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "stu@test.cd"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: account.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", " STU@test.cd"}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}

	// students come first
	id, err := cli.accountSvc.Authenticate(ctx, "stu@test.cd", "lmao")
	require.NoError(t, err)
	assert.Equal(t, account.Identity{Role: account.RoleStudent, ID: std.ID}, id)

	tid, err := cli.accountSvc.Authenticate(ctx, "stu@test.cd", "mdr")
	require.NoError(t, err)
	assert.Equal(t, account.RoleTeacher, tid.Role)

	_, err = cli.accountSvc.GetParent(ctx, int(kid.ParentID.Int))
	require.NoError(t, err)
}
