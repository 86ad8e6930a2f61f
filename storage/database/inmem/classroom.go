package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/classroom"
)

type classroomRepository struct {
	store
}

var _ classroom.Repository = (*classroomRepository)(nil)

func NewClassroomRepository(db *DB) classroom.Repository {
	return &classroomRepository{store{db: db}}
}

func classDateOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: "date", Ascending: true}}
}

func matchFilter(filter classroom.Filter, teacherID, courseID int) bool {
	if filter.TeacherID.Valid && filter.TeacherID.Int != teacherID {
		return false
	}
	if filter.CourseID.Valid && filter.CourseID.Int != courseID {
		return false
	}
	return true
}

func (repo *classroomRepository) CreateRecordedClass(ctx context.Context, cls classroom.RecordedClass) (classroom.RecordedClass, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.courses[cls.CourseID]; !ok {
			return classroom.ErrUnknownCourse
		}
		cls.ID = t.nextID("recorded_class")
		t.recorded[cls.ID] = cls
		return nil
	})
	if err != nil {
		return classroom.RecordedClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) GetRecordedClass(ctx context.Context, id int) (classroom.RecordedClass, error) {
	var res classroom.RecordedClass
	err := repo.read(func(t *tables) error {
		cls, ok := t.recorded[id]
		if !ok {
			return classroom.ErrNotFound
		}
		res = cls
		return nil
	})
	return res, err
}

func (repo *classroomRepository) UpdateRecordedClass(ctx context.Context, cls classroom.RecordedClass) (classroom.RecordedClass, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.recorded[cls.ID]; !ok {
			return classroom.ErrNotFound
		}
		t.recorded[cls.ID] = cls
		return nil
	})
	if err != nil {
		return classroom.RecordedClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) DeleteRecordedClass(ctx context.Context, id int) error {
	return repo.write(func(t *tables) error {
		if _, ok := t.recorded[id]; !ok {
			return classroom.ErrNotFound
		}
		delete(t.recorded, id)
		return nil
	})
}

func (repo *classroomRepository) QueryRecordedClasses(ctx context.Context, filter classroom.Filter) ([]classroom.RecordedClass, error) {
	res := make([]classroom.RecordedClass, 0)
	_ = repo.read(func(t *tables) error {
		for _, cls := range t.recorded {
			if matchFilter(filter, cls.TeacherID, cls.CourseID) {
				res = append(res, cls)
			}
		}
		return nil
	})
	sortRows(res, classDateOrdering(), func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "date":
			return res[i].Date.Format(core.DateLayout)
		}
		return nil
	})
	return res, nil
}

func (repo *classroomRepository) CreateLiveClass(ctx context.Context, cls classroom.LiveClass) (classroom.LiveClass, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.courses[cls.CourseID]; !ok {
			return classroom.ErrUnknownCourse
		}
		cls.ID = t.nextID("live_class")
		t.live[cls.ID] = cls
		return nil
	})
	if err != nil {
		return classroom.LiveClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) GetLiveClass(ctx context.Context, id int) (classroom.LiveClass, error) {
	var res classroom.LiveClass
	err := repo.read(func(t *tables) error {
		cls, ok := t.live[id]
		if !ok {
			return classroom.ErrNotFound
		}
		res = cls
		return nil
	})
	return res, err
}

func (repo *classroomRepository) UpdateLiveClass(ctx context.Context, cls classroom.LiveClass) (classroom.LiveClass, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.live[cls.ID]; !ok {
			return classroom.ErrNotFound
		}
		t.live[cls.ID] = cls
		return nil
	})
	if err != nil {
		return classroom.LiveClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) DeleteLiveClass(ctx context.Context, id int) error {
	return repo.write(func(t *tables) error {
		if _, ok := t.live[id]; !ok {
			return classroom.ErrNotFound
		}
		delete(t.live, id)
		return nil
	})
}

func (repo *classroomRepository) QueryLiveClasses(ctx context.Context, filter classroom.Filter) ([]classroom.LiveClass, error) {
	res := make([]classroom.LiveClass, 0)
	_ = repo.read(func(t *tables) error {
		for _, cls := range t.live {
			if matchFilter(filter, cls.TeacherID, cls.CourseID) {
				res = append(res, cls)
			}
		}
		return nil
	})
	sortRows(res, classDateOrdering(), func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "date":
			return res[i].Date.Format(core.DateLayout) + " " + res[i].Time
		}
		return nil
	})
	return res, nil
}
