package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/classroom"
)

const (
	recordedColumns = "id, teacher_id, course_id, title, date, filename"
	// TIME is read as text, lib/pq would otherwise decode it as a time.Time.
	liveColumns = "id, teacher_id, course_id, title, date, to_char(time, 'HH24:MI:SS') AS time, platform, link"
)

type classroomRepository struct {
	store
}

var _ classroom.Repository = (*classroomRepository)(nil)

func NewClassroomRepository(db *sqlx.DB) classroom.Repository {
	return &classroomRepository{newStore(db)}
}

func classFilterWhere(filter classroom.Filter) (string, []interface{}) {
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.TeacherID.Valid {
		args = append(args, filter.TeacherID.Int)
		conds = append(conds, "teacher_id = $"+strconv.Itoa(len(args)))
	}
	if filter.CourseID.Valid {
		args = append(args, filter.CourseID.Int)
		conds = append(conds, "course_id = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func classError(err error) error {
	if pqErrorCode(err) == foreignKeyViolation {
		return classroom.ErrUnknownCourse
	}
	return err
}

func (repo *classroomRepository) CreateRecordedClass(ctx context.Context, cls classroom.RecordedClass) (classroom.RecordedClass, error) {
	q := `INSERT INTO recorded_class (teacher_id, course_id, title, date, filename)
		VALUES (:teacher_id, :course_id, :title, :date, :filename) RETURNING id`
	id, err := repo.insert(ctx, q, cls)
	if err != nil {
		return classroom.RecordedClass{}, classError(err)
	}
	cls.ID = id
	return cls, nil
}

func (repo *classroomRepository) GetRecordedClass(ctx context.Context, id int) (classroom.RecordedClass, error) {
	var cls classroom.RecordedClass
	if err := sqlx.GetContext(ctx, repo.ext, &cls, "SELECT "+recordedColumns+" FROM recorded_class WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.RecordedClass{}, classroom.ErrNotFound
		}
		return classroom.RecordedClass{}, errors.Wrap(err, "selecting recorded class")
	}
	return cls, nil
}

func (repo *classroomRepository) UpdateRecordedClass(ctx context.Context, cls classroom.RecordedClass) (classroom.RecordedClass, error) {
	q := "UPDATE recorded_class SET title = :title, date = :date, filename = :filename WHERE id = :id"
	if err := repo.update(ctx, q, cls, classroom.ErrNotFound); err != nil {
		return classroom.RecordedClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) DeleteRecordedClass(ctx context.Context, id int) error {
	return repo.delete(ctx, "DELETE FROM recorded_class WHERE id = $1", id, classroom.ErrNotFound)
}

func (repo *classroomRepository) QueryRecordedClasses(ctx context.Context, filter classroom.Filter) ([]classroom.RecordedClass, error) {
	where, args := classFilterWhere(filter)
	classes := make([]classroom.RecordedClass, 0)
	q := "SELECT " + recordedColumns + " FROM recorded_class" + where + " ORDER BY date, id"
	if err := sqlx.SelectContext(ctx, repo.ext, &classes, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting recorded classes")
	}
	return classes, nil
}

func (repo *classroomRepository) CreateLiveClass(ctx context.Context, cls classroom.LiveClass) (classroom.LiveClass, error) {
	q := `INSERT INTO live_class (teacher_id, course_id, title, date, time, platform, link)
		VALUES (:teacher_id, :course_id, :title, :date, :time, :platform, :link) RETURNING id`
	id, err := repo.insert(ctx, q, cls)
	if err != nil {
		return classroom.LiveClass{}, classError(err)
	}
	cls.ID = id
	return cls, nil
}

func (repo *classroomRepository) GetLiveClass(ctx context.Context, id int) (classroom.LiveClass, error) {
	var cls classroom.LiveClass
	if err := sqlx.GetContext(ctx, repo.ext, &cls, "SELECT "+liveColumns+" FROM live_class WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return classroom.LiveClass{}, classroom.ErrNotFound
		}
		return classroom.LiveClass{}, errors.Wrap(err, "selecting live class")
	}
	return cls, nil
}

func (repo *classroomRepository) UpdateLiveClass(ctx context.Context, cls classroom.LiveClass) (classroom.LiveClass, error) {
	q := `UPDATE live_class SET title = :title, date = :date, time = :time, platform = :platform, link = :link
		WHERE id = :id`
	if err := repo.update(ctx, q, cls, classroom.ErrNotFound); err != nil {
		return classroom.LiveClass{}, err
	}
	return cls, nil
}

func (repo *classroomRepository) DeleteLiveClass(ctx context.Context, id int) error {
	return repo.delete(ctx, "DELETE FROM live_class WHERE id = $1", id, classroom.ErrNotFound)
}

func (repo *classroomRepository) QueryLiveClasses(ctx context.Context, filter classroom.Filter) ([]classroom.LiveClass, error) {
	where, args := classFilterWhere(filter)
	classes := make([]classroom.LiveClass, 0)
	q := "SELECT " + liveColumns + " FROM live_class" + where + " ORDER BY date, live_class.time, id"
	if err := sqlx.SelectContext(ctx, repo.ext, &classes, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting live classes")
	}
	return classes, nil
}
