package account

import (
	"context"
	"net/mail"
	"strconv"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrUnknownCourse      = errors.New("course does not exist")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// GetFilter selects a single row. Zero fields are ignored.
	GetFilter struct {
		ID    int
		Email string
	}

	// QueryFilter applies AND on its non-zero fields.
	QueryFilter struct {
		ParentID int
	}

	Repository interface {
		// WithinTx runs fn with a Repository bound to a single transaction.
		// The transaction is rolled back if fn returns an error.
		WithinTx(ctx context.Context, fn func(repo Repository) error) error

		// Create* & Update* return ErrEmailExists on email conflicts and ErrUnknownCourse on unknown course IDs.
		CreateStudent(ctx context.Context, std Student) (Student, error)
		CreateTeacher(ctx context.Context, tchr Teacher) (Teacher, error)
		CreateParent(ctx context.Context, prnt Parent) (Parent, error)

		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		GetTeacher(ctx context.Context, filter GetFilter) (Teacher, error)
		GetParent(ctx context.Context, filter GetFilter) (Parent, error)

		UpdateStudent(ctx context.Context, std Student) (Student, error)
		UpdateTeacher(ctx context.Context, tchr Teacher) (Teacher, error)
		UpdateParent(ctx context.Context, prnt Parent) (Parent, error)

		QueryStudents(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]Student, error)
		QueryTeachers(ctx context.Context, orderings ...core.DBOrdering) ([]Teacher, error)
		QueryParents(ctx context.Context, orderings ...core.DBOrdering) ([]Parent, error)
	}

	Service struct {
		repo    Repository
		blobs   core.BlobStore
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, blobs core.BlobStore, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, blobs: blobs, mailSvc: mailSvc}
}

type welcomeData struct {
	Name  string
	Email string
	Role  Role
}

func (svc *Service) sendWelcomeMail(role Role, name, email string) {
	if svc.mailSvc == nil || email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      "Welcome!",
		TemplateName: "welcome",
		TemplateData: welcomeData{Name: name, Email: email, Role: role},
	})
}

// checkEmail returns ErrEmailExists if another account of the same role uses `email`.
func (svc *Service) checkEmail(ctx context.Context, role Role, email string, exclID int) error {
	var id int
	var err error
	switch role {
	case RoleStudent:
		var std Student
		std, err = svc.repo.GetStudent(ctx, GetFilter{Email: email})
		id = std.ID
	case RoleTeacher:
		var tchr Teacher
		tchr, err = svc.repo.GetTeacher(ctx, GetFilter{Email: email})
		id = tchr.ID
	case RoleParent:
		var prnt Parent
		prnt, err = svc.repo.GetParent(ctx, GetFilter{Email: email})
		id = prnt.ID
	}
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "checking email")
	}
	if id != exclID {
		return ErrEmailExists
	}
	return nil
}

// RegisterStudent creates a Student. A minor's Parent is created in the same transaction.
func (svc *Service) RegisterStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.checkEmail(ctx, RoleStudent, ns.Email, 0); err != nil {
		return Student{}, err
	}

	std := Student{
		Name:     ns.Name,
		Email:    ns.Email,
		Age:      ns.Age,
		Grade:    ns.Grade,
		CourseID: nullInt(ns.CourseID),
	}
	if err := std.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "setting password")
	}

	err := svc.repo.WithinTx(ctx, func(repo Repository) error {
		if std.IsMinor() {
			prnt, err := repo.CreateParent(ctx, Parent{
				Name:      ns.ParentName,
				Contact:   ns.ParentContact,
				ChildName: null.StringFrom(ns.Name),
			})
			if err != nil {
				return errors.Wrap(err, "creating parent")
			}
			std.ParentID = null.IntFrom(prnt.ID)
		}

		var err error
		std, err = repo.CreateStudent(ctx, std)
		return errors.Wrap(err, "creating student")
	})
	if err != nil {
		return Student{}, err
	}

	svc.sendWelcomeMail(RoleStudent, std.Name, std.Email)
	return std, nil
}

// photoName returns the name a teacher's photo is stored under; "" when no file was submitted.
func photoName(photo *core.Upload) string {
	if photo.IsEmpty() {
		return ""
	}
	return core.SecureFilename(photo.Filename)
}

// saveTeacher runs write then stores the photo, both within one transaction.
func (svc *Service) saveTeacher(ctx context.Context, photo *core.Upload, write func(repo Repository) error) error {
	name := photoName(photo)
	return svc.repo.WithinTx(ctx, func(repo Repository) error {
		if err := write(repo); err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		return errors.Wrap(svc.blobs.Save(ctx, core.BucketPhotos, name, photo.Content), "saving photo")
	})
}

func (svc *Service) RegisterTeacher(ctx context.Context, nt NewTeacher, photo *core.Upload) (Teacher, error) {
	if err := svc.checkEmail(ctx, RoleTeacher, nt.Email, 0); err != nil {
		return Teacher{}, err
	}

	tchr := Teacher{
		Name:              nt.Name,
		Email:             nt.Email,
		Qualifications:    nt.Qualifications,
		Availability:      nt.Availability,
		YearsOfExperience: nt.YearsOfExperience,
		Contact:           nt.Contact,
		Place:             nt.Place,
		CourseID:          nullInt(nt.CourseID),
	}
	if err := tchr.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "setting password")
	}

	tchr.Photo = DefaultPhoto
	if name := photoName(photo); name != "" {
		tchr.Photo = name
	}

	err := svc.saveTeacher(ctx, photo, func(repo Repository) error {
		var err error
		tchr, err = repo.CreateTeacher(ctx, tchr)
		return errors.Wrap(err, "creating teacher")
	})
	if err != nil {
		return Teacher{}, err
	}

	svc.sendWelcomeMail(RoleTeacher, tchr.Name, tchr.Email)
	return tchr, nil
}

func (svc *Service) RegisterParent(ctx context.Context, np NewParent) (Parent, error) {
	if err := svc.checkEmail(ctx, RoleParent, np.Email, 0); err != nil {
		return Parent{}, err
	}

	prnt := Parent{
		Name:              np.Name,
		Email:             null.StringFrom(np.Email),
		Contact:           np.Contact,
		ChildName:         nullString(np.ChildName),
		RelationToStudent: nullString(np.RelationToStudent),
		Address:           nullString(np.Address),
	}
	if err := prnt.SetPassword(np.Password); err != nil {
		return Parent{}, errors.Wrap(err, "setting password")
	}

	prnt, err := svc.repo.CreateParent(ctx, prnt)
	if err != nil {
		return Parent{}, errors.Wrap(err, "creating parent")
	}

	svc.sendWelcomeMail(RoleParent, prnt.Name, prnt.Email.String)
	return prnt, nil
}

// Authenticate looks for a Student, then a Teacher, then a Parent with matching email and password.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" || pwd == "" {
		return Identity{}, ErrInvalidCredentials
	}
	filter := GetFilter{Email: email}

	std, err := svc.repo.GetStudent(ctx, filter)
	if err == nil && std.CheckPassword(pwd) {
		return Identity{Role: RoleStudent, ID: std.ID}, nil
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding student")
	}

	tchr, err := svc.repo.GetTeacher(ctx, filter)
	if err == nil && tchr.CheckPassword(pwd) {
		return Identity{Role: RoleTeacher, ID: tchr.ID}, nil
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding teacher")
	}

	prnt, err := svc.repo.GetParent(ctx, filter)
	if err == nil && prnt.CheckPassword(pwd) {
		return Identity{Role: RoleParent, ID: prnt.ID}, nil
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Identity{}, errors.Wrap(err, "finding parent")
	}

	return Identity{}, ErrInvalidCredentials
}

// Exists reports whether the account behind `id` still exists.
func (svc *Service) Exists(ctx context.Context, id Identity) (bool, error) {
	var err error
	switch id.Role {
	case RoleStudent:
		_, err = svc.GetStudent(ctx, id.ID)
	case RoleTeacher:
		_, err = svc.GetTeacher(ctx, id.ID)
	case RoleParent:
		_, err = svc.GetParent(ctx, id.ID)
	default:
		return false, nil
	}
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *Service) GetTeacher(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{ID: id})
}

func (svc *Service) GetParent(ctx context.Context, id int) (Parent, error) {
	return svc.repo.GetParent(ctx, GetFilter{ID: id})
}

func (svc *Service) QueryStudents(ctx context.Context, orderings ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{}, orderings...)
}

func (svc *Service) QueryTeachers(ctx context.Context, orderings ...core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, orderings...)
}

func (svc *Service) QueryParents(ctx context.Context, orderings ...core.DBOrdering) ([]Parent, error) {
	return svc.repo.QueryParents(ctx, orderings...)
}

// Children returns the students linked to a parent.
func (svc *Service) Children(ctx context.Context, parentID int) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, QueryFilter{ParentID: parentID}, core.DBOrdering{Field: "name", Ascending: true})
}

// emailConflict turns ErrEmailExists into a ValidationError on the email field.
func emailConflict(err error) error {
	if errors.Cause(err) == ErrEmailExists {
		return core.NewFieldValidationError("email", ErrEmailExists.Error())
	}
	return err
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	std, err := svc.GetStudent(ctx, id)
	if err != nil {
		return Student{}, errors.Wrap(err, "finding student")
	}
	if err = emailConflict(svc.checkEmail(ctx, RoleStudent, us.Email, id)); err != nil {
		return Student{}, err
	}

	std.Name = us.Name
	std.Email = us.Email
	std.Age = us.Age
	std.Grade = us.Grade
	if us.CourseID > 0 {
		std.CourseID = null.IntFrom(us.CourseID)
	}
	if us.Password != "" {
		if err = std.SetPassword(us.Password); err != nil {
			return Student{}, errors.Wrap(err, "setting password")
		}
	}

	std, err = svc.repo.UpdateStudent(ctx, std)
	return std, emailConflict(err)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id int, ut UpdateTeacher, photo *core.Upload) (Teacher, error) {
	tchr, err := svc.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "finding teacher")
	}
	if err = emailConflict(svc.checkEmail(ctx, RoleTeacher, ut.Email, id)); err != nil {
		return Teacher{}, err
	}

	tchr.Name = ut.Name
	tchr.Email = ut.Email
	tchr.Qualifications = ut.Qualifications
	tchr.Availability = ut.Availability
	tchr.YearsOfExperience = ut.years
	tchr.Contact = ut.Contact
	tchr.Place = ut.Place
	if ut.Password != "" {
		if err = tchr.SetPassword(ut.Password); err != nil {
			return Teacher{}, errors.Wrap(err, "setting password")
		}
	}
	if name := photoName(photo); name != "" {
		tchr.Photo = name
	}

	err = svc.saveTeacher(ctx, photo, func(repo Repository) error {
		var err error
		tchr, err = repo.UpdateTeacher(ctx, tchr)
		return err
	})
	if err != nil {
		return Teacher{}, emailConflict(err)
	}
	return tchr, nil
}

func (svc *Service) UpdateParent(ctx context.Context, id int, up UpdateParent) (Parent, error) {
	prnt, err := svc.GetParent(ctx, id)
	if err != nil {
		return Parent{}, errors.Wrap(err, "finding parent")
	}
	if up.Email != "" {
		if err = emailConflict(svc.checkEmail(ctx, RoleParent, up.Email, id)); err != nil {
			return Parent{}, err
		}
	}

	prnt.Name = up.Name
	prnt.Email = nullString(up.Email)
	prnt.Contact = up.Contact
	prnt.Place = nullString(up.Place)
	if up.Password != "" {
		if err = prnt.SetPassword(up.Password); err != nil {
			return Parent{}, errors.Wrap(err, "setting password")
		}
	}

	prnt, err = svc.repo.UpdateParent(ctx, prnt)
	return prnt, emailConflict(err)
}

// ResetPassword sets the password of the first account (student, teacher, then parent) using `email`.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) (Identity, error) {
	email = core.CleanString(email, true /* lower */)
	filter := GetFilter{Email: email}

	if std, err := svc.repo.GetStudent(ctx, filter); err == nil {
		if err = std.SetPassword(pwd); err != nil {
			return Identity{}, err
		}
		_, err = svc.repo.UpdateStudent(ctx, std)
		return Identity{Role: RoleStudent, ID: std.ID}, err
	} else if errors.Cause(err) != ErrNotFound {
		return Identity{}, err
	}

	if tchr, err := svc.repo.GetTeacher(ctx, filter); err == nil {
		if err = tchr.SetPassword(pwd); err != nil {
			return Identity{}, err
		}
		_, err = svc.repo.UpdateTeacher(ctx, tchr)
		return Identity{Role: RoleTeacher, ID: tchr.ID}, err
	} else if errors.Cause(err) != ErrNotFound {
		return Identity{}, err
	}

	prnt, err := svc.repo.GetParent(ctx, filter)
	if err != nil {
		return Identity{}, err
	}
	if err = prnt.SetPassword(pwd); err != nil {
		return Identity{}, err
	}
	_, err = svc.repo.UpdateParent(ctx, prnt)
	return Identity{Role: RoleParent, ID: prnt.ID}, err
}

// ParseRole returns the Role named `s`.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", errors.New("unknown role " + strconv.Quote(s))
}
