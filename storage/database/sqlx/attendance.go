package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	store
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{newStore(db)}
}

func (repo *attendanceRepository) WithinTx(ctx context.Context, fn func(repo attendance.Repository) error) error {
	return repo.withinTx(ctx, func(s store) error {
		return fn(&attendanceRepository{s})
	})
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := `INSERT INTO attendance (student_id, teacher_id, date, status)
		VALUES (:student_id, :teacher_id, :date, :status) RETURNING id`
	id, err := repo.insert(ctx, q, att)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	att.ID = id
	return att, nil
}

func (repo *attendanceRepository) QueryStudentAttendance(ctx context.Context, studentID int) ([]attendance.Attendance, error) {
	records := make([]attendance.Attendance, 0)
	q := "SELECT id, student_id, teacher_id, date, status FROM attendance WHERE student_id = $1 ORDER BY date, id"
	if err := sqlx.SelectContext(ctx, repo.ext, &records, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance")
	}
	return records, nil
}
