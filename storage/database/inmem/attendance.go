package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	store
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{store{db: db}}
}

func (repo *attendanceRepository) WithinTx(ctx context.Context, fn func(repo attendance.Repository) error) error {
	return repo.withinTx(func(s store) error {
		return fn(&attendanceRepository{s})
	})
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	_ = repo.write(func(t *tables) error {
		att.ID = t.nextID("attendance")
		t.attendance[att.ID] = att
		return nil
	})
	return att, nil
}

func (repo *attendanceRepository) QueryStudentAttendance(ctx context.Context, studentID int) ([]attendance.Attendance, error) {
	res := make([]attendance.Attendance, 0)
	_ = repo.read(func(t *tables) error {
		for _, att := range t.attendance {
			if att.StudentID == studentID {
				res = append(res, att)
			}
		}
		return nil
	})
	sortRows(res, []core.DBOrdering{{Field: "date", Ascending: true}}, func(i int, name string) interface{} {
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
