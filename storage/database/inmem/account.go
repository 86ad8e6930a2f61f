package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

type accountRepository struct {
	store
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{store{db: db}}
}

func (repo *accountRepository) WithinTx(ctx context.Context, fn func(repo account.Repository) error) error {
	return repo.withinTx(func(s store) error {
		return fn(&accountRepository{s})
	})
}

func checkCourse(t *tables, courseID int, valid bool) error {
	if !valid {
		return nil
	}
	if _, ok := t.courses[courseID]; !ok {
		return account.ErrUnknownCourse
	}
	return nil
}

func (repo *accountRepository) CreateStudent(ctx context.Context, std account.Student) (account.Student, error) {
	err := repo.write(func(t *tables) error {
		for _, s := range t.students {
			if s.Email == std.Email {
				return account.ErrEmailExists
			}
		}
		if err := checkCourse(t, int(std.CourseID.Int), std.CourseID.Valid); err != nil {
			return err
		}
		std.ID = t.nextID("student")
		t.students[std.ID] = std
		return nil
	})
	if err != nil {
		return account.Student{}, err
	}
	return std, nil
}

func (repo *accountRepository) CreateTeacher(ctx context.Context, tchr account.Teacher) (account.Teacher, error) {
	err := repo.write(func(t *tables) error {
		for _, tc := range t.teachers {
			if tc.Email == tchr.Email {
				return account.ErrEmailExists
			}
		}
		if err := checkCourse(t, int(tchr.CourseID.Int), tchr.CourseID.Valid); err != nil {
			return err
		}
		tchr.ID = t.nextID("teacher")
		t.teachers[tchr.ID] = tchr
		return nil
	})
	if err != nil {
		return account.Teacher{}, err
	}
	return tchr, nil
}

func (repo *accountRepository) CreateParent(ctx context.Context, prnt account.Parent) (account.Parent, error) {
	err := repo.write(func(t *tables) error {
		if prnt.Email.Valid {
			for _, p := range t.parents {
				if p.Email.Valid && p.Email.String == prnt.Email.String {
					return account.ErrEmailExists
				}
			}
		}
		prnt.ID = t.nextID("parent")
		t.parents[prnt.ID] = prnt
		return nil
	})
	if err != nil {
		return account.Parent{}, err
	}
	return prnt, nil
}

func (repo *accountRepository) GetStudent(ctx context.Context, filter account.GetFilter) (account.Student, error) {
	var res account.Student
	err := repo.read(func(t *tables) error {
		for _, s := range t.students {
			if (filter.ID == 0 || s.ID == filter.ID) && (filter.Email == "" || s.Email == filter.Email) {
				res = s
				return nil
			}
		}
		return account.ErrNotFound
	})
	return res, err
}

func (repo *accountRepository) GetTeacher(ctx context.Context, filter account.GetFilter) (account.Teacher, error) {
	var res account.Teacher
	err := repo.read(func(t *tables) error {
		for _, tc := range t.teachers {
			if (filter.ID == 0 || tc.ID == filter.ID) && (filter.Email == "" || tc.Email == filter.Email) {
				res = tc
				return nil
			}
		}
		return account.ErrNotFound
	})
	return res, err
}

func (repo *accountRepository) GetParent(ctx context.Context, filter account.GetFilter) (account.Parent, error) {
	var res account.Parent
	err := repo.read(func(t *tables) error {
		for _, p := range t.parents {
			if (filter.ID == 0 || p.ID == filter.ID) && (filter.Email == "" || p.Email.String == filter.Email) {
				res = p
				return nil
			}
		}
		return account.ErrNotFound
	})
	return res, err
}

func (repo *accountRepository) UpdateStudent(ctx context.Context, std account.Student) (account.Student, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.students[std.ID]; !ok {
			return account.ErrNotFound
		}
		for _, s := range t.students {
			if s.ID != std.ID && s.Email == std.Email {
				return account.ErrEmailExists
			}
		}
		if err := checkCourse(t, int(std.CourseID.Int), std.CourseID.Valid); err != nil {
			return err
		}
		t.students[std.ID] = std
		return nil
	})
	if err != nil {
		return account.Student{}, err
	}
	return std, nil
}

func (repo *accountRepository) UpdateTeacher(ctx context.Context, tchr account.Teacher) (account.Teacher, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.teachers[tchr.ID]; !ok {
			return account.ErrNotFound
		}
		for _, tc := range t.teachers {
			if tc.ID != tchr.ID && tc.Email == tchr.Email {
				return account.ErrEmailExists
			}
		}
		if err := checkCourse(t, int(tchr.CourseID.Int), tchr.CourseID.Valid); err != nil {
			return err
		}
		t.teachers[tchr.ID] = tchr
		return nil
	})
	if err != nil {
		return account.Teacher{}, err
	}
	return tchr, nil
}

func (repo *accountRepository) UpdateParent(ctx context.Context, prnt account.Parent) (account.Parent, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.parents[prnt.ID]; !ok {
			return account.ErrNotFound
		}
		if prnt.Email.Valid {
			for _, p := range t.parents {
				if p.ID != prnt.ID && p.Email.Valid && p.Email.String == prnt.Email.String {
					return account.ErrEmailExists
				}
			}
		}
		t.parents[prnt.ID] = prnt
		return nil
	})
	if err != nil {
		return account.Parent{}, err
	}
	return prnt, nil
}

func (repo *accountRepository) QueryStudents(ctx context.Context, filter account.QueryFilter, orderings ...core.DBOrdering) ([]account.Student, error) {
	res := make([]account.Student, 0)
	_ = repo.read(func(t *tables) error {
		for _, s := range t.students {
			if filter.ParentID == 0 || (s.ParentID.Valid && int(s.ParentID.Int) == filter.ParentID) {
				res = append(res, s)
			}
		}
		return nil
	})
	sortRows(res, orderings, func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "name":
			return res[i].Name
		case "email":
			return res[i].Email
		case "age":
			return res[i].Age
		case "grade":
			return res[i].Grade
		}
		return nil
	})
	return res, nil
}

func (repo *accountRepository) QueryTeachers(ctx context.Context, orderings ...core.DBOrdering) ([]account.Teacher, error) {
	res := make([]account.Teacher, 0)
	_ = repo.read(func(t *tables) error {
		for _, tc := range t.teachers {
			res = append(res, tc)
		}
		return nil
	})
	sortRows(res, orderings, func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "name":
			return res[i].Name
		case "email":
			return res[i].Email
		case "years_of_experience":
			return res[i].YearsOfExperience
		}
		return nil
	})
	return res, nil
}

func (repo *accountRepository) QueryParents(ctx context.Context, orderings ...core.DBOrdering) ([]account.Parent, error) {
	res := make([]account.Parent, 0)
	_ = repo.read(func(t *tables) error {
		for _, p := range t.parents {
			res = append(res, p)
		}
		return nil
	})
	sortRows(res, orderings, func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "name":
			return res[i].Name
		case "email":
			return res[i].Email.String
		}
		return nil
	})
	return res, nil
}
