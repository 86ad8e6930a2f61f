package main

import (
	"context"
	"fmt"

	"github.com/trezcool/shule/core/course"
)

func (cli *commandLine) seedCourses(ctx context.Context) error {
	n, err := cli.courseSvc.SeedDefaults(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d course(s) added\n", n)
	return nil
}

func (cli *commandLine) addCourse(ctx context.Context, name, description string) error {
	crs, err := cli.courseSvc.Create(ctx, course.NewCourse{Name: name, Description: description})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "course %q added (id %d)\n", crs.Name, crs.ID)
	return nil
}
