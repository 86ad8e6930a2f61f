package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/course"
)

type courseRepository struct {
	store
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{store{db: db}}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	err := repo.write(func(t *tables) error {
		for _, c := range t.courses {
			if strings.EqualFold(c.Name, crs.Name) {
				return course.ErrNameExists
			}
		}
		crs.ID = t.nextID("course")
		t.courses[crs.ID] = crs
		return nil
	})
	if err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var res course.Course
	err := repo.read(func(t *tables) error {
		c, ok := t.courses[id]
		if !ok {
			return course.ErrNotFound
		}
		res = c
		return nil
	})
	return res, err
}

func (repo *courseRepository) GetCourseByName(ctx context.Context, name string) (course.Course, error) {
	var res course.Course
	err := repo.read(func(t *tables) error {
		for _, c := range t.courses {
			if strings.EqualFold(c.Name, name) {
				res = c
				return nil
			}
		}
		return course.ErrNotFound
	})
	return res, err
}

func (repo *courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	res := make([]course.Course, 0)
	_ = repo.read(func(t *tables) error {
		for _, c := range t.courses {
			res = append(res, c)
		}
		return nil
	})
	sortRows(res, []core.DBOrdering{{Field: "name", Ascending: true}}, func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "name":
			return res[i].Name
		}
		return nil
	})
	return res, nil
}
