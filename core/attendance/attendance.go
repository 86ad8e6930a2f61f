package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

// StatusPresent is compared case-insensitively.
const StatusPresent = "present"

type Attendance struct {
	ID        int       `json:"id" db:"id"`
	StudentID int       `json:"student_id" db:"student_id"`
	TeacherID int       `json:"teacher_id" db:"teacher_id"`
	Date      time.Time `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"`
}

func (a Attendance) IsPresent() bool {
	return strings.EqualFold(strings.TrimSpace(a.Status), StatusPresent)
}

// Report summarizes a student's attendance. Records are ordered by date.
type Report struct {
	Records    []Attendance
	Total      int
	Present    int
	Percentage float64
}

func newReport(records []Attendance) Report {
	rep := Report{Records: records, Total: len(records)}
	for _, rec := range records {
		if rec.IsPresent() {
			rep.Present++
		}
	}
	if rep.Total > 0 {
		rep.Percentage = float64(rep.Present) / float64(rep.Total) * 100
	}
	return rep
}

// PercentageDisplay formats Percentage with two decimals.
func (r Report) PercentageDisplay() string {
	return fmt.Sprintf("%.2f", r.Percentage)
}

type (
	Repository interface {
		// WithinTx runs fn with a Repository bound to a single transaction.
		WithinTx(ctx context.Context, fn func(repo Repository) error) error
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		// QueryStudentAttendance returns a student's records ordered by date.
		QueryStudentAttendance(ctx context.Context, studentID int) ([]Attendance, error)
	}

	StudentLister interface {
		QueryStudents(ctx context.Context, orderings ...core.DBOrdering) ([]account.Student, error)
	}

	Service struct {
		repo     Repository
		students StudentLister
	}
)

func NewService(repo Repository, students StudentLister) *Service {
	return &Service{repo: repo, students: students}
}

// Roster returns the students a teacher can mark, ordered by name.
func (svc *Service) Roster(ctx context.Context) ([]account.Student, error) {
	return svc.students.QueryStudents(ctx, core.DBOrdering{Field: "name", Ascending: true})
}

// Mark records today's status of every student with a non-blank entry in `statuses` (keyed by student ID).
// Students without a status are skipped. It returns the number of records written.
func (svc *Service) Mark(ctx context.Context, teacherID int, statuses map[int]string) (int, error) {
	students, err := svc.Roster(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying students")
	}

	today := core.Today()
	var count int
	err = svc.repo.WithinTx(ctx, func(repo Repository) error {
		for _, std := range students {
			status := core.CleanString(statuses[std.ID])
			if status == "" {
				continue
			}
			_, err := repo.CreateAttendance(ctx, Attendance{
				StudentID: std.ID,
				TeacherID: teacherID,
				Date:      today,
				Status:    status,
			})
			if err != nil {
				return errors.Wrapf(err, "creating attendance of student %d", std.ID)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (svc *Service) ForStudent(ctx context.Context, studentID int) (Report, error) {
	records, err := svc.repo.QueryStudentAttendance(ctx, studentID)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []Attendance{}
	}
	return newReport(records), nil
}
