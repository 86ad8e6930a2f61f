package classroom

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	msgSelectCourse    = "Please select a course!"
	msgInvalidDate     = "Invalid date format!"
	msgUploadVideo     = "Please upload a video!"
	msgVideoNotAllowed = "Only mp4, mkv and webm videos are allowed!"
	msgInvalidSchedule = "Invalid date or time format!"
)

type RecordedClass struct {
	ID        int       `json:"id" db:"id"`
	TeacherID int       `json:"teacher_id" db:"teacher_id"`
	CourseID  int       `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Date      time.Time `json:"date" db:"date"`
	Filename  string    `json:"filename" db:"filename"`
}

type LiveClass struct {
	ID        int         `json:"id" db:"id"`
	TeacherID int         `json:"teacher_id" db:"teacher_id"`
	CourseID  int         `json:"course_id" db:"course_id"`
	Title     string      `json:"title" db:"title"`
	Date      time.Time   `json:"date" db:"date"`
	Time      string      `json:"time" db:"time"` // HH:MM:SS
	Platform  null.String `json:"platform" db:"platform"`
	Link      string      `json:"link" db:"link"`
}

// Schedule groups the recorded and live classes shown on a page.
type Schedule struct {
	Recorded []RecordedClass `json:"recorded_classes"`
	Live     []LiveClass     `json:"live_classes"`
}

// NewRecordedClass contains the form fields of a recorded class upload. The video is submitted separately.
type NewRecordedClass struct {
	Title    string `form:"title"`
	CourseID int    `form:"course_id"`
	Date     string `form:"date"`
}

// validate checks the course, then the date, then the video.
func (nc *NewRecordedClass) validate(video *core.Upload) (time.Time, string, error) {
	nc.Title = core.CleanString(nc.Title)
	if nc.CourseID <= 0 {
		return time.Time{}, "", core.NewFieldValidationError("course_id", msgSelectCourse)
	}
	date, err := core.ParseDate(nc.Date)
	if err != nil {
		return time.Time{}, "", core.NewFieldValidationError("date", msgInvalidDate)
	}
	filename, err := videoFilename(video)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, filename, nil
}

func videoFilename(video *core.Upload) (string, error) {
	if video.IsEmpty() {
		return "", core.NewFieldValidationError("video", msgUploadVideo)
	}
	filename := core.SecureFilename(video.Filename)
	if filename == "" {
		return "", core.NewFieldValidationError("video", msgUploadVideo)
	}
	if !core.HasExtension(filename, core.VideoExtensions) {
		return "", core.NewFieldValidationError("video", msgVideoNotAllowed)
	}
	return filename, nil
}

// UpdateRecordedClass overwrites title and date. A new video replaces the file name when submitted.
type UpdateRecordedClass struct {
	Title string `form:"title"`
	Date  string `form:"date"`
}

func (uc *UpdateRecordedClass) validate() (time.Time, error) {
	uc.Title = core.CleanString(uc.Title)
	date, err := core.ParseDate(uc.Date)
	if err != nil {
		return time.Time{}, core.NewFieldValidationError("date", msgInvalidDate)
	}
	return date, nil
}

// NewLiveClass contains the form fields needed to schedule a live class.
type NewLiveClass struct {
	Title    string `form:"title"`
	CourseID int    `form:"course_id"`
	Date     string `form:"date"`
	Time     string `form:"time"`
	Platform string `form:"platform"`
	Link     string `form:"link"`
}

func (nc *NewLiveClass) validate() (time.Time, string, error) {
	nc.Title = core.CleanString(nc.Title)
	nc.Platform = core.CleanString(nc.Platform)
	nc.Link = core.CleanString(nc.Link)
	if nc.CourseID <= 0 {
		return time.Time{}, "", core.NewFieldValidationError("course_id", msgSelectCourse)
	}
	date, err := core.ParseDate(nc.Date)
	if err != nil {
		return time.Time{}, "", core.NewFieldValidationError("date", msgInvalidSchedule)
	}
	clock, err := core.ParseClock(nc.Time, false)
	if err != nil {
		return time.Time{}, "", core.NewFieldValidationError("time", msgInvalidSchedule)
	}
	return date, clock, nil
}

// UpdateLiveClass overwrites every editable field. Time may be HH:MM or HH:MM:SS.
type UpdateLiveClass struct {
	Title    string `form:"title"`
	Date     string `form:"date"`
	Time     string `form:"time"`
	Platform string `form:"platform"`
	Link     string `form:"link"`
}

func (uc *UpdateLiveClass) validate() (time.Time, string, error) {
	uc.Title = core.CleanString(uc.Title)
	uc.Platform = core.CleanString(uc.Platform)
	uc.Link = core.CleanString(uc.Link)
	date, err := core.ParseDate(uc.Date)
	if err != nil {
		return time.Time{}, "", core.NewFieldValidationError("date", msgInvalidSchedule)
	}
	clock, err := core.ParseClock(uc.Time, true)
	if err != nil {
		return time.Time{}, "", core.NewFieldValidationError("time", msgInvalidSchedule)
	}
	return date, clock, nil
}
