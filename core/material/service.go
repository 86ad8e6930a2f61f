package material

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound       = errors.New("study material not found")
	ErrFileNotAllowed = errors.New("file type not allowed")
)

type (
	// Filter applies AND on its valid fields.
	Filter struct {
		TeacherID null.Int
	}

	Repository interface {
		CreateMaterial(ctx context.Context, mat StudyMaterial) (StudyMaterial, error)
		GetMaterial(ctx context.Context, id int) (StudyMaterial, error)
		UpdateMaterial(ctx context.Context, mat StudyMaterial) (StudyMaterial, error)
		// DeleteMaterial also deletes the related Progress.
		DeleteMaterial(ctx context.Context, id int) error
		QueryMaterials(ctx context.Context, filter Filter) ([]StudyMaterial, error)
		CountMaterials(ctx context.Context) (int, error)

		// MarkViewed is a no-op if the student already viewed the material.
		MarkViewed(ctx context.Context, prog Progress) error
		CountViewed(ctx context.Context, studentID int) (int, error)
	}

	Service struct {
		repo  Repository
		blobs core.BlobStore
	}
)

func NewService(repo Repository, blobs core.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Upload validates the form, stores the file then records the material, dated today.
func (svc *Service) Upload(ctx context.Context, teacherID int, nm NewMaterial, file *core.Upload) (StudyMaterial, error) {
	nm.Clean()
	if err := nm.validate(); err != nil {
		return StudyMaterial{}, err
	}
	if file.IsEmpty() {
		return StudyMaterial{}, ErrFileNotAllowed
	}
	filename := core.SecureFilename(file.Filename)
	if filename == "" || !core.HasExtension(filename, core.MaterialExtensions) {
		return StudyMaterial{}, ErrFileNotAllowed
	}

	if err := svc.blobs.Save(ctx, core.BucketMaterials, filename, file.Content); err != nil {
		return StudyMaterial{}, errors.Wrap(err, "saving material")
	}

	mat, err := svc.repo.CreateMaterial(ctx, StudyMaterial{
		Subject:     nm.Subject,
		TeacherID:   teacherID,
		Title:       nm.Title,
		Description: null.StringFrom(nm.Description),
		Filename:    filename,
		UploadDate:  core.Today(),
	})
	return mat, errors.Wrap(err, "creating material")
}

// GetOwned returns ErrNotFound if the material does not belong to the teacher.
func (svc *Service) GetOwned(ctx context.Context, teacherID, id int) (StudyMaterial, error) {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return StudyMaterial{}, err
	}
	if mat.TeacherID != teacherID {
		return StudyMaterial{}, ErrNotFound
	}
	return mat, nil
}

func (svc *Service) Edit(ctx context.Context, teacherID, id int, um UpdateMaterial) (StudyMaterial, error) {
	mat, err := svc.GetOwned(ctx, teacherID, id)
	if err != nil {
		return StudyMaterial{}, err
	}
	um.Clean()
	mat.Title = um.Title
	mat.Description = null.NewString(um.Description, um.Description != "")

	mat, err = svc.repo.UpdateMaterial(ctx, mat)
	return mat, errors.Wrap(err, "updating material")
}

// Delete removes the material, its progress rows and its file.
func (svc *Service) Delete(ctx context.Context, teacherID, id int) error {
	mat, err := svc.GetOwned(ctx, teacherID, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteMaterial(ctx, id); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	if err = svc.blobs.Delete(ctx, core.BucketMaterials, mat.Filename); err != nil && errors.Cause(err) != core.ErrBlobNotFound {
		return errors.Wrap(err, "deleting material file")
	}
	return nil
}

func (svc *Service) ListByTeacher(ctx context.Context, teacherID int) ([]StudyMaterial, error) {
	return svc.repo.QueryMaterials(ctx, Filter{TeacherID: null.IntFrom(teacherID)})
}

// List returns every material.
func (svc *Service) List(ctx context.Context) ([]StudyMaterial, error) {
	return svc.repo.QueryMaterials(ctx, Filter{})
}

// View returns the material and records the student's progress on it.
func (svc *Service) View(ctx context.Context, studentID, id int) (StudyMaterial, error) {
	mat, err := svc.repo.GetMaterial(ctx, id)
	if err != nil {
		return StudyMaterial{}, err
	}
	if err = svc.repo.MarkViewed(ctx, Progress{StudentID: studentID, MaterialID: id, Viewed: true}); err != nil {
		return StudyMaterial{}, errors.Wrap(err, "marking material as viewed")
	}
	return mat, nil
}

// ProgressPercent is the share of all materials the student viewed, rounded half to even.
func (svc *Service) ProgressPercent(ctx context.Context, studentID int) (int, error) {
	total, err := svc.repo.CountMaterials(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "counting materials")
	}
	if total == 0 {
		return 0, nil
	}
	viewed, err := svc.repo.CountViewed(ctx, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting viewed materials")
	}
	return int(math.RoundToEven(float64(viewed) / float64(total) * 100)), nil
}
