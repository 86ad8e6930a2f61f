package account

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// Roles
const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

const (
	// AdultAge is the age from which a student registers without a parent.
	AdultAge     = 18
	DefaultPhoto = "default.jpg"
)

var Roles = []Role{RoleStudent, RoleTeacher, RoleParent}

type Role string

// Identity is what a session holds: the role and the row ID of the logged in person.
type Identity struct {
	Role Role `json:"role"`
	ID   int  `json:"id"`
}

func (id Identity) IsZero() bool { return id.Role == "" || id.ID == 0 }

func hashPassword(pwd string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
}

func checkPassword(hash []byte, pwd string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(pwd)) == nil
}

type Student struct {
	ID           int      `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	Email        string   `json:"email" db:"email"`
	PasswordHash []byte   `json:"-" db:"password_hash"`
	Age          int      `json:"age" db:"age"`
	Grade        string   `json:"grade" db:"grade"`
	CourseID     null.Int `json:"course_id" db:"course_id"`
	ParentID     null.Int `json:"parent_id" db:"parent_id"`
}

func (s *Student) SetPassword(pwd string) (err error) {
	s.PasswordHash, err = hashPassword(pwd)
	return err
}

func (s *Student) CheckPassword(pwd string) bool { return checkPassword(s.PasswordHash, pwd) }

func (s Student) IsMinor() bool { return s.Age < AdultAge }

type Teacher struct {
	ID                int      `json:"id" db:"id"`
	Name              string   `json:"name" db:"name"`
	Email             string   `json:"email" db:"email"`
	PasswordHash      []byte   `json:"-" db:"password_hash"`
	Qualifications    string   `json:"qualifications" db:"qualifications"`
	Availability      string   `json:"availability" db:"availability"`
	YearsOfExperience int      `json:"years_of_experience" db:"years_of_experience"`
	Contact           string   `json:"contact" db:"contact"`
	Place             string   `json:"place" db:"place"`
	Photo             string   `json:"photo" db:"photo"`
	CourseID          null.Int `json:"course_id" db:"course_id"`
}

func (t *Teacher) SetPassword(pwd string) (err error) {
	t.PasswordHash, err = hashPassword(pwd)
	return err
}

func (t *Teacher) CheckPassword(pwd string) bool { return checkPassword(t.PasswordHash, pwd) }

// Parent may be created implicitly when a minor registers, in which case it has no email nor password.
type Parent struct {
	ID                int         `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	Email             null.String `json:"email" db:"email"`
	PasswordHash      []byte      `json:"-" db:"password_hash"`
	Contact           string      `json:"contact" db:"contact"`
	ChildName         null.String `json:"child_name" db:"child_name"`
	RelationToStudent null.String `json:"relation_to_student" db:"relation_to_student"`
	Address           null.String `json:"address" db:"address"`
	Place             null.String `json:"place" db:"place"`
}

func (p *Parent) SetPassword(pwd string) (err error) {
	p.PasswordHash, err = hashPassword(pwd)
	return err
}

func (p *Parent) CheckPassword(pwd string) bool { return checkPassword(p.PasswordHash, pwd) }

// NewStudent contains information needed to register a Student.
type NewStudent struct {
	Name          string `form:"name" validate:"notblank"`
	Email         string `form:"email" validate:"required,email"`
	Password      string `form:"password" validate:"required"`
	Age           int    `form:"age" validate:"gte=1,lte=120"`
	Grade         string `form:"grade" validate:"notblank"`
	CourseID      int    `form:"course_id" validate:"gte=0"` // 0: no course
	ParentName    string `form:"parent_name"`
	ParentContact string `form:"parent_contact"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Grade = core.CleanString(ns.Grade)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentContact = core.CleanString(ns.ParentContact)
	return validate.Struct(ns)
}

// NewTeacher contains information needed to register a Teacher. The photo is submitted separately.
type NewTeacher struct {
	Name              string `form:"name" validate:"notblank"`
	Email             string `form:"email" validate:"required,email"`
	Password          string `form:"password" validate:"required"`
	Qualifications    string `form:"qualifications"`
	Availability      string `form:"availability"`
	YearsOfExperience int    `form:"years_of_experience" validate:"gte=0"`
	Contact           string `form:"contact"`
	Place             string `form:"place"`
	CourseID          int    `form:"course" validate:"gte=0"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Qualifications = core.CleanString(nt.Qualifications)
	nt.Availability = core.CleanString(nt.Availability)
	nt.Contact = core.CleanString(nt.Contact)
	nt.Place = core.CleanString(nt.Place)
	return validate.Struct(nt)
}

// NewParent contains information needed to register a Parent.
type NewParent struct {
	Name              string `form:"name" validate:"notblank"`
	Email             string `form:"email" validate:"required,email"`
	Password          string `form:"password" validate:"required"`
	ChildName         string `form:"child_name"`
	RelationToStudent string `form:"relation_to_student"`
	Address           string `form:"address"`
	Contact           string `form:"contact" validate:"notblank"`
}

func (np *NewParent) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.ChildName = core.CleanString(np.ChildName)
	np.RelationToStudent = core.CleanString(np.RelationToStudent)
	np.Address = core.CleanString(np.Address)
	np.Contact = core.CleanString(np.Contact)
	return validate.Struct(np)
}

// UpdateStudent defines what information may be provided to modify a Student's profile.
// Blank fields keep their current value.
type UpdateStudent struct {
	Name     string `form:"name"`
	Email    string `form:"email" validate:"omitempty,email"`
	Password string `form:"password"`
	Age      int    `form:"age" validate:"gte=0,lte=120"`
	Grade    string `form:"grade"`
	CourseID int    `form:"course_id" validate:"gte=0"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate, orig Student) error {
	us.Name = orDefault(core.CleanString(us.Name), orig.Name)
	us.Email = orDefault(core.CleanString(us.Email, true /* lower */), orig.Email)
	us.Grade = orDefault(core.CleanString(us.Grade), orig.Grade)
	if us.Age == 0 {
		us.Age = orig.Age
	}
	return validate.Struct(us)
}

// UpdateTeacher defines what information may be provided to modify a Teacher's profile.
type UpdateTeacher struct {
	Name              string `form:"name"`
	Email             string `form:"email" validate:"omitempty,email"`
	Password          string `form:"password"`
	Qualifications    string `form:"qualifications"`
	Availability      string `form:"availability"`
	YearsOfExperience string `form:"years_of_experience"`
	Contact           string `form:"contact"`
	Place             string `form:"place"`

	years int
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate, orig Teacher) error {
	ut.Name = orDefault(core.CleanString(ut.Name), orig.Name)
	ut.Email = orDefault(core.CleanString(ut.Email, true /* lower */), orig.Email)
	ut.Qualifications = orDefault(core.CleanString(ut.Qualifications), orig.Qualifications)
	ut.Availability = orDefault(core.CleanString(ut.Availability), orig.Availability)
	ut.Contact = orDefault(core.CleanString(ut.Contact), orig.Contact)
	ut.Place = orDefault(core.CleanString(ut.Place), orig.Place)
	if err := validate.Struct(ut); err != nil {
		return err
	}

	ut.years = orig.YearsOfExperience
	if yoe := core.CleanString(ut.YearsOfExperience); yoe != "" {
		years, err := strconv.Atoi(yoe)
		if err != nil || years < 0 {
			return core.NewFieldValidationError("years_of_experience", "years_of_experience must be a positive number")
		}
		ut.years = years
	}
	return nil
}

// UpdateParent defines what information may be provided to modify a Parent's profile.
type UpdateParent struct {
	Name     string `form:"name"`
	Email    string `form:"email" validate:"omitempty,email"`
	Password string `form:"password"`
	Contact  string `form:"contact"`
	Place    string `form:"place"`
}

func (up *UpdateParent) Validate(validate *validator.Validate, orig Parent) error {
	up.Name = orDefault(core.CleanString(up.Name), orig.Name)
	up.Email = orDefault(core.CleanString(up.Email, true /* lower */), orig.Email.String)
	up.Contact = orDefault(core.CleanString(up.Contact), orig.Contact)
	up.Place = orDefault(core.CleanString(up.Place), orig.Place.String)
	return validate.Struct(up)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func nullInt(i int) null.Int {
	return null.NewInt(i, i > 0)
}
