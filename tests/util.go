package testutil

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
)

// NewValidator returns a validator with the app's custom validations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	return validate, translator
}

func CreateCourse(t *testing.T, repo course.Repository, name string) course.Course {
	crs, err := repo.CreateCourse(context.Background(), course.Course{Name: name})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

// CreateStudent inserts an adult student. courseID 0 means no course.
func CreateStudent(t *testing.T, repo account.Repository, name, email, pwd string, courseID int) account.Student {
	std := account.Student{
		Name:     name,
		Email:    email,
		Age:      account.AdultAge,
		Grade:    "12",
		CourseID: null.NewInt(courseID, courseID > 0),
	}
	if err := std.SetPassword(pwd); err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func CreateTeacher(t *testing.T, repo account.Repository, name, email, pwd string) account.Teacher {
	tchr := account.Teacher{Name: name, Email: email, Photo: account.DefaultPhoto}
	if err := tchr.SetPassword(pwd); err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	tchr, err := repo.CreateTeacher(context.Background(), tchr)
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return tchr
}

// CreateParent inserts a parent. An empty email creates a parent without credentials.
func CreateParent(t *testing.T, repo account.Repository, name, email, pwd string) account.Parent {
	prnt := account.Parent{Name: name, Email: null.NewString(email, email != ""), Contact: "0800"}
	if pwd != "" {
		if err := prnt.SetPassword(pwd); err != nil {
			t.Fatalf("createParent() failed: %v", err)
		}
	}
	prnt, err := repo.CreateParent(context.Background(), prnt)
	if err != nil {
		t.Fatalf("createParent() failed: %v", err)
	}
	return prnt
}
