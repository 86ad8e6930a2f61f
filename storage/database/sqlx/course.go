package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/course"
)

type courseRepository struct {
	store
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{newStore(db)}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	id, err := repo.insert(ctx, "INSERT INTO course (name, description) VALUES (:name, :description) RETURNING id", crs)
	if err != nil {
		if pqErrorCode(err) == uniqueViolation {
			return course.Course{}, course.ErrNameExists
		}
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	crs.ID = id
	return crs, nil
}

func (repo *courseRepository) getWhere(ctx context.Context, where string, arg interface{}) (course.Course, error) {
	var crs course.Course
	if err := sqlx.GetContext(ctx, repo.ext, &crs, "SELECT id, name, description FROM course WHERE "+where, arg); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	return repo.getWhere(ctx, "id = $1", id)
}

func (repo *courseRepository) GetCourseByName(ctx context.Context, name string) (course.Course, error) {
	return repo.getWhere(ctx, "lower(name) = lower($1)", name)
}

func (repo *courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := sqlx.SelectContext(ctx, repo.ext, &courses, "SELECT id, name, description FROM course ORDER BY name, id"); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}
