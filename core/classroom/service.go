package classroom

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/course"
)

var (
	// errors
	ErrNotFound      = errors.New("class not found")
	ErrUnknownCourse = errors.New("course does not exist")
)

type (
	// Filter applies AND on its valid fields.
	Filter struct {
		TeacherID null.Int
		CourseID  null.Int
	}

	Repository interface {
		// Create* return ErrUnknownCourse if the course does not exist.
		CreateRecordedClass(ctx context.Context, cls RecordedClass) (RecordedClass, error)
		GetRecordedClass(ctx context.Context, id int) (RecordedClass, error)
		UpdateRecordedClass(ctx context.Context, cls RecordedClass) (RecordedClass, error)
		DeleteRecordedClass(ctx context.Context, id int) error
		QueryRecordedClasses(ctx context.Context, filter Filter) ([]RecordedClass, error)

		CreateLiveClass(ctx context.Context, cls LiveClass) (LiveClass, error)
		GetLiveClass(ctx context.Context, id int) (LiveClass, error)
		UpdateLiveClass(ctx context.Context, cls LiveClass) (LiveClass, error)
		DeleteLiveClass(ctx context.Context, id int) error
		QueryLiveClasses(ctx context.Context, filter Filter) ([]LiveClass, error)
	}

	StudentGetter interface {
		GetStudent(ctx context.Context, id int) (account.Student, error)
	}

	CourseGetter interface {
		Get(ctx context.Context, id int) (course.Course, error)
	}

	Service struct {
		repo     Repository
		students StudentGetter
		courses  CourseGetter
		blobs    core.BlobStore
	}
)

func NewService(repo Repository, students StudentGetter, courses CourseGetter, blobs core.BlobStore) *Service {
	return &Service{repo: repo, students: students, courses: courses, blobs: blobs}
}

func unknownCourse(err error) error {
	if errors.Cause(err) == ErrUnknownCourse {
		return core.NewFieldValidationError("course_id", msgSelectCourse)
	}
	return err
}

func (svc *Service) checkCourse(ctx context.Context, id int) error {
	if _, err := svc.courses.Get(ctx, id); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return core.NewFieldValidationError("course_id", msgSelectCourse)
		}
		return errors.Wrap(err, "finding course")
	}
	return nil
}

// UploadRecorded validates the form, stores the video then records the class.
func (svc *Service) UploadRecorded(ctx context.Context, teacherID int, nc NewRecordedClass, video *core.Upload) (RecordedClass, error) {
	date, filename, err := nc.validate(video)
	if err != nil {
		return RecordedClass{}, err
	}
	if err = svc.checkCourse(ctx, nc.CourseID); err != nil {
		return RecordedClass{}, err
	}

	if err = svc.blobs.Save(ctx, core.BucketVideos, filename, video.Content); err != nil {
		return RecordedClass{}, errors.Wrap(err, "saving video")
	}

	cls, err := svc.repo.CreateRecordedClass(ctx, RecordedClass{
		TeacherID: teacherID,
		CourseID:  nc.CourseID,
		Title:     nc.Title,
		Date:      date,
		Filename:  filename,
	})
	if err != nil {
		return RecordedClass{}, unknownCourse(errors.Wrap(err, "creating recorded class"))
	}
	return cls, nil
}

func (svc *Service) ScheduleLive(ctx context.Context, teacherID int, nc NewLiveClass) (LiveClass, error) {
	date, clock, err := nc.validate()
	if err != nil {
		return LiveClass{}, err
	}

	cls, err := svc.repo.CreateLiveClass(ctx, LiveClass{
		TeacherID: teacherID,
		CourseID:  nc.CourseID,
		Title:     nc.Title,
		Date:      date,
		Time:      clock,
		Platform:  null.NewString(nc.Platform, nc.Platform != ""),
		Link:      nc.Link,
	})
	if err != nil {
		return LiveClass{}, unknownCourse(errors.Wrap(err, "creating live class"))
	}
	return cls, nil
}

// GetRecorded returns ErrNotFound if the class does not belong to the teacher.
func (svc *Service) GetRecorded(ctx context.Context, teacherID, id int) (RecordedClass, error) {
	cls, err := svc.repo.GetRecordedClass(ctx, id)
	if err != nil {
		return RecordedClass{}, err
	}
	if cls.TeacherID != teacherID {
		return RecordedClass{}, ErrNotFound
	}
	return cls, nil
}

// GetLive returns ErrNotFound if the class does not belong to the teacher.
func (svc *Service) GetLive(ctx context.Context, teacherID, id int) (LiveClass, error) {
	cls, err := svc.repo.GetLiveClass(ctx, id)
	if err != nil {
		return LiveClass{}, err
	}
	if cls.TeacherID != teacherID {
		return LiveClass{}, ErrNotFound
	}
	return cls, nil
}

func (svc *Service) EditRecorded(ctx context.Context, teacherID, id int, uc UpdateRecordedClass, video *core.Upload) (RecordedClass, error) {
	cls, err := svc.GetRecorded(ctx, teacherID, id)
	if err != nil {
		return RecordedClass{}, err
	}
	date, err := uc.validate()
	if err != nil {
		return RecordedClass{}, err
	}

	prevFilename := cls.Filename
	if !video.IsEmpty() {
		filename, err := videoFilename(video)
		if err != nil {
			return RecordedClass{}, err
		}
		if err = svc.blobs.Save(ctx, core.BucketVideos, filename, video.Content); err != nil {
			return RecordedClass{}, errors.Wrap(err, "saving video")
		}
		cls.Filename = filename
	}
	cls.Title = uc.Title
	cls.Date = date

	if cls, err = svc.repo.UpdateRecordedClass(ctx, cls); err != nil {
		return RecordedClass{}, errors.Wrap(err, "updating recorded class")
	}

	// the replaced video is only dropped once the class points to the new one
	if cls.Filename != prevFilename {
		if err = svc.blobs.Delete(ctx, core.BucketVideos, prevFilename); err != nil && errors.Cause(err) != core.ErrBlobNotFound {
			return cls, errors.Wrap(err, "deleting replaced video")
		}
	}
	return cls, nil
}

func (svc *Service) EditLive(ctx context.Context, teacherID, id int, uc UpdateLiveClass) (LiveClass, error) {
	cls, err := svc.GetLive(ctx, teacherID, id)
	if err != nil {
		return LiveClass{}, err
	}
	date, clock, err := uc.validate()
	if err != nil {
		return LiveClass{}, err
	}

	cls.Title = uc.Title
	cls.Date = date
	cls.Time = clock
	cls.Platform = null.NewString(uc.Platform, uc.Platform != "")
	cls.Link = uc.Link

	cls, err = svc.repo.UpdateLiveClass(ctx, cls)
	return cls, errors.Wrap(err, "updating live class")
}

// DeleteRecorded removes the video, if still present, then the class.
func (svc *Service) DeleteRecorded(ctx context.Context, teacherID, id int) error {
	cls, err := svc.GetRecorded(ctx, teacherID, id)
	if err != nil {
		return err
	}
	if err = svc.blobs.Delete(ctx, core.BucketVideos, cls.Filename); err != nil && errors.Cause(err) != core.ErrBlobNotFound {
		return errors.Wrap(err, "deleting video")
	}
	return errors.Wrap(svc.repo.DeleteRecordedClass(ctx, id), "deleting recorded class")
}

func (svc *Service) DeleteLive(ctx context.Context, teacherID, id int) error {
	if _, err := svc.GetLive(ctx, teacherID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteLiveClass(ctx, id), "deleting live class")
}

func (svc *Service) query(ctx context.Context, filter Filter) (Schedule, error) {
	var sch Schedule
	var err error
	if sch.Recorded, err = svc.repo.QueryRecordedClasses(ctx, filter); err != nil {
		return Schedule{}, errors.Wrap(err, "querying recorded classes")
	}
	if sch.Live, err = svc.repo.QueryLiveClasses(ctx, filter); err != nil {
		return Schedule{}, errors.Wrap(err, "querying live classes")
	}
	return sch, nil
}

// ListByTeacher returns the classes a teacher manages.
func (svc *Service) ListByTeacher(ctx context.Context, teacherID int) (Schedule, error) {
	return svc.query(ctx, Filter{TeacherID: null.IntFrom(teacherID)})
}

// ListForStudent returns the classes of the student's course.
// Classes always belong to a course, so a student without one gets an empty Schedule.
func (svc *Service) ListForStudent(ctx context.Context, studentID int) (Schedule, error) {
	std, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Schedule{}, errors.Wrap(err, "finding student")
	}
	if !std.CourseID.Valid {
		return Schedule{Recorded: []RecordedClass{}, Live: []LiveClass{}}, nil
	}
	return svc.query(ctx, Filter{CourseID: std.CourseID})
}
