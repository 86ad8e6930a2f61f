package course

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound   = errors.New("course not found")
	ErrNameExists = errors.New("a course with this name already exists")
	ErrEmptyName  = errors.New("Subject name cannot be empty!")
)

// Defaults are the courses available on a fresh install.
var Defaults = []NewCourse{
	{Name: "Introduction to Robotics", Description: "Basics of Robotics"},
	{Name: "Embedded Systems", Description: "Learn microcontrollers"},
	{Name: "Artificial Intelligence", Description: "AI Concepts"},
	{Name: "Machine Learning", Description: "ML Algorithms"},
	{Name: "Python Programming", Description: "Learn Python"},
	{Name: "IoT Applications", Description: "IoT Projects"},
	{Name: "Computer Vision", Description: "CV Techniques"},
	{Name: "Cloud Computing", Description: "Cloud Concepts"},
}

type Course struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description" db:"description"`
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Name        string `form:"subject"`
	Description string `form:"description"`
}

func (nc *NewCourse) Clean() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	if nc.Name == "" {
		return core.NewValidationError(ErrEmptyName, core.FieldError{Field: "subject", Error: ErrEmptyName.Error()})
	}
	return nil
}

type (
	Repository interface {
		// CreateCourse returns ErrNameExists if the name is taken.
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id int) (Course, error)
		GetCourseByName(ctx context.Context, name string) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	if err := nc.Clean(); err != nil {
		return Course{}, err
	}
	crs, err := svc.repo.CreateCourse(ctx, Course{
		Name:        nc.Name,
		Description: null.NewString(nc.Description, nc.Description != ""),
	})
	if err != nil {
		if errors.Cause(err) == ErrNameExists {
			return Course{}, core.NewFieldValidationError("subject", ErrNameExists.Error())
		}
		return Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (svc *Service) Get(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

// List returns all courses ordered by name.
func (svc *Service) List(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

// SeedDefaults creates the missing Defaults and returns how many were created.
func (svc *Service) SeedDefaults(ctx context.Context) (int, error) {
	var created int
	for _, nc := range Defaults {
		if _, err := svc.repo.GetCourseByName(ctx, nc.Name); err == nil {
			continue
		} else if errors.Cause(err) != ErrNotFound {
			return created, errors.Wrap(err, "finding course")
		}
		if _, err := svc.Create(ctx, nc); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
