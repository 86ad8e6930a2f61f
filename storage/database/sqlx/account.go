package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

const (
	studentColumns = "id, name, email, password_hash, age, grade, course_id, parent_id"
	teacherColumns = "id, name, email, password_hash, qualifications, availability, years_of_experience, contact, place, photo, course_id"
	parentColumns  = "id, name, email, password_hash, contact, child_name, relation_to_student, address, place"
)

type accountRepository struct {
	store
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{newStore(db)}
}

func (repo *accountRepository) WithinTx(ctx context.Context, fn func(repo account.Repository) error) error {
	return repo.withinTx(ctx, func(s store) error {
		return fn(&accountRepository{s})
	})
}

// accountError maps constraint violations to account errors.
func accountError(err error) error {
	switch pqErrorCode(err) {
	case uniqueViolation:
		return account.ErrEmailExists
	case foreignKeyViolation:
		return account.ErrUnknownCourse
	}
	return err
}

func getFilterWhere(filter account.GetFilter) (string, []interface{}) {
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.ID != 0 {
		args = append(args, filter.ID)
		conds = append(conds, "id = $1")
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, "email = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo *accountRepository) get(ctx context.Context, dest interface{}, table, columns string, filter account.GetFilter) error {
	where, args := getFilterWhere(filter)
	q := "SELECT " + columns + " FROM " + table + where + " ORDER BY id LIMIT 1"
	if err := sqlx.GetContext(ctx, repo.ext, dest, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return account.ErrNotFound
		}
		return errors.Wrap(err, "selecting "+table)
	}
	return nil
}

func (repo *accountRepository) CreateStudent(ctx context.Context, std account.Student) (account.Student, error) {
	q := `INSERT INTO student (name, email, password_hash, age, grade, course_id, parent_id)
		VALUES (:name, :email, :password_hash, :age, :grade, :course_id, :parent_id) RETURNING id`
	id, err := repo.insert(ctx, q, std)
	if err != nil {
		return account.Student{}, accountError(err)
	}
	std.ID = id
	return std, nil
}

func (repo *accountRepository) CreateTeacher(ctx context.Context, tchr account.Teacher) (account.Teacher, error) {
	q := `INSERT INTO teacher (name, email, password_hash, qualifications, availability, years_of_experience, contact, place, photo, course_id)
		VALUES (:name, :email, :password_hash, :qualifications, :availability, :years_of_experience, :contact, :place, :photo, :course_id)
		RETURNING id`
	id, err := repo.insert(ctx, q, tchr)
	if err != nil {
		return account.Teacher{}, accountError(err)
	}
	tchr.ID = id
	return tchr, nil
}

func (repo *accountRepository) CreateParent(ctx context.Context, prnt account.Parent) (account.Parent, error) {
	q := `INSERT INTO parent (name, email, password_hash, contact, child_name, relation_to_student, address, place)
		VALUES (:name, :email, :password_hash, :contact, :child_name, :relation_to_student, :address, :place) RETURNING id`
	id, err := repo.insert(ctx, q, prnt)
	if err != nil {
		return account.Parent{}, accountError(err)
	}
	prnt.ID = id
	return prnt, nil
}

func (repo *accountRepository) GetStudent(ctx context.Context, filter account.GetFilter) (account.Student, error) {
	var std account.Student
	err := repo.get(ctx, &std, "student", studentColumns, filter)
	return std, err
}

func (repo *accountRepository) GetTeacher(ctx context.Context, filter account.GetFilter) (account.Teacher, error) {
	var tchr account.Teacher
	err := repo.get(ctx, &tchr, "teacher", teacherColumns, filter)
	return tchr, err
}

func (repo *accountRepository) GetParent(ctx context.Context, filter account.GetFilter) (account.Parent, error) {
	var prnt account.Parent
	err := repo.get(ctx, &prnt, "parent", parentColumns, filter)
	return prnt, err
}

func (repo *accountRepository) UpdateStudent(ctx context.Context, std account.Student) (account.Student, error) {
	q := `UPDATE student SET name = :name, email = :email, password_hash = :password_hash, age = :age, grade = :grade,
		course_id = :course_id, parent_id = :parent_id WHERE id = :id`
	if err := repo.update(ctx, q, std, account.ErrNotFound); err != nil {
		return account.Student{}, accountError(err)
	}
	return std, nil
}

func (repo *accountRepository) UpdateTeacher(ctx context.Context, tchr account.Teacher) (account.Teacher, error) {
	q := `UPDATE teacher SET name = :name, email = :email, password_hash = :password_hash, qualifications = :qualifications,
		availability = :availability, years_of_experience = :years_of_experience, contact = :contact, place = :place,
		photo = :photo, course_id = :course_id WHERE id = :id`
	if err := repo.update(ctx, q, tchr, account.ErrNotFound); err != nil {
		return account.Teacher{}, accountError(err)
	}
	return tchr, nil
}

func (repo *accountRepository) UpdateParent(ctx context.Context, prnt account.Parent) (account.Parent, error) {
	q := `UPDATE parent SET name = :name, email = :email, password_hash = :password_hash, contact = :contact,
		child_name = :child_name, relation_to_student = :relation_to_student, address = :address, place = :place
		WHERE id = :id`
	if err := repo.update(ctx, q, prnt, account.ErrNotFound); err != nil {
		return account.Parent{}, accountError(err)
	}
	return prnt, nil
}

func (repo *accountRepository) QueryStudents(ctx context.Context, filter account.QueryFilter, orderings ...core.DBOrdering) ([]account.Student, error) {
	q := "SELECT " + studentColumns + " FROM student"
	var args []interface{}
	if filter.ParentID != 0 {
		q += " WHERE parent_id = $1"
		args = append(args, filter.ParentID)
	}
	q += orderBy(orderings, "id ASC", "id", "name", "email", "age", "grade")

	students := make([]account.Student, 0)
	if err := sqlx.SelectContext(ctx, repo.ext, &students, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}

func (repo *accountRepository) QueryTeachers(ctx context.Context, orderings ...core.DBOrdering) ([]account.Teacher, error) {
	q := "SELECT " + teacherColumns + " FROM teacher" +
		orderBy(orderings, "id ASC", "id", "name", "email", "years_of_experience")

	teachers := make([]account.Teacher, 0)
	if err := sqlx.SelectContext(ctx, repo.ext, &teachers, q); err != nil {
		return nil, errors.Wrap(err, "selecting teachers")
	}
	return teachers, nil
}

func (repo *accountRepository) QueryParents(ctx context.Context, orderings ...core.DBOrdering) ([]account.Parent, error) {
	q := "SELECT " + parentColumns + " FROM parent" + orderBy(orderings, "id ASC", "id", "name", "email")

	parents := make([]account.Parent, 0)
	if err := sqlx.SelectContext(ctx, repo.ext, &parents, q); err != nil {
		return nil, errors.Wrap(err, "selecting parents")
	}
	return parents, nil
}
