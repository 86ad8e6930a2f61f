package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	migrator   migrator
	accountSvc *account.Service
	courseSvc  *course.Service
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...] - run a goose command (up, down, status, ...) against the database")
	fmt.Fprintln(cli.out, "  seedcourses - add the default courses that are missing")
	fmt.Fprintln(cli.out, "  addcourse -name NAME [-description TEXT] - add a course")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset the password of the account using EMAIL")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addCourseCmd := flag.NewFlagSet("addcourse", flag.ContinueOnError)
	addCourseCmd.SetOutput(cli.out)
	addCourseName := addCourseCmd.String("name", "", "The course name.")
	addCourseDesc := addCourseCmd.String("description", "", "The course description.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "seedcourses":
		return cli.seedCourses(ctx)

	case "addcourse":
		if err := addCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCourseName == "" {
			addCourseCmd.Usage()
			return errHelp
		}
		return cli.addCourse(ctx, *addCourseName, *addCourseDesc)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, string(pwd))

	default:
		cli.printUsage()
		return errHelp
	}
}
