package material

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

type StudyMaterial struct {
	ID          int         `json:"id" db:"id"`
	Subject     string      `json:"subject" db:"subject"`
	TeacherID   int         `json:"teacher_id" db:"teacher_id"`
	Title       string      `json:"title" db:"title"`
	Description null.String `json:"description" db:"description"`
	Filename    string      `json:"filename" db:"filename"`
	UploadDate  time.Time   `json:"upload_date" db:"upload_date"`
}

// Progress records that a student opened a material. There is at most one per (student, material).
type Progress struct {
	StudentID  int  `json:"student_id" db:"student_id"`
	MaterialID int  `json:"material_id" db:"material_id"`
	Viewed     bool `json:"viewed" db:"viewed"`
}

const (
	msgSubjectRequired     = "Please enter a subject!"
	msgTitleRequired       = "Please enter a title!"
	msgDescriptionRequired = "Please enter a description!"
)

// NewMaterial contains the form fields of a material upload. The file is submitted separately.
type NewMaterial struct {
	Subject     string `form:"subject"`
	Title       string `form:"title"`
	Description string `form:"description"`
}

func (nm *NewMaterial) Clean() {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
}

func (nm *NewMaterial) validate() error {
	switch {
	case nm.Subject == "":
		return core.NewFieldValidationError("subject", msgSubjectRequired)
	case nm.Title == "":
		return core.NewFieldValidationError("title", msgTitleRequired)
	case nm.Description == "":
		return core.NewFieldValidationError("description", msgDescriptionRequired)
	}
	return nil
}

// UpdateMaterial only changes the title and the description.
type UpdateMaterial struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

func (um *UpdateMaterial) Clean() {
	um.Title = core.CleanString(um.Title)
	um.Description = core.CleanString(um.Description)
}
