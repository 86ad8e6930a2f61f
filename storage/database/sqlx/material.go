package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/material"
)

const materialColumns = "id, subject, teacher_id, title, description, filename, upload_date"

type materialRepository struct {
	store
}

var _ material.Repository = (*materialRepository)(nil)

func NewMaterialRepository(db *sqlx.DB) material.Repository {
	return &materialRepository{newStore(db)}
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, mat material.StudyMaterial) (material.StudyMaterial, error) {
	q := `INSERT INTO study_material (subject, teacher_id, title, description, filename, upload_date)
		VALUES (:subject, :teacher_id, :title, :description, :filename, :upload_date) RETURNING id`
	id, err := repo.insert(ctx, q, mat)
	if err != nil {
		return material.StudyMaterial{}, errors.Wrap(err, "inserting study material")
	}
	mat.ID = id
	return mat, nil
}

func (repo *materialRepository) GetMaterial(ctx context.Context, id int) (material.StudyMaterial, error) {
	var mat material.StudyMaterial
	if err := sqlx.GetContext(ctx, repo.ext, &mat, "SELECT "+materialColumns+" FROM study_material WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return material.StudyMaterial{}, material.ErrNotFound
		}
		return material.StudyMaterial{}, errors.Wrap(err, "selecting study material")
	}
	return mat, nil
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, mat material.StudyMaterial) (material.StudyMaterial, error) {
	q := "UPDATE study_material SET title = :title, description = :description WHERE id = :id"
	if err := repo.update(ctx, q, mat, material.ErrNotFound); err != nil {
		return material.StudyMaterial{}, err
	}
	return mat, nil
}

// DeleteMaterial relies on ON DELETE CASCADE to drop the progress rows.
func (repo *materialRepository) DeleteMaterial(ctx context.Context, id int) error {
	return repo.delete(ctx, "DELETE FROM study_material WHERE id = $1", id, material.ErrNotFound)
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, filter material.Filter) ([]material.StudyMaterial, error) {
	q := "SELECT " + materialColumns + " FROM study_material"
	var args []interface{}
	if filter.TeacherID.Valid {
		q += " WHERE teacher_id = $1"
		args = append(args, filter.TeacherID.Int)
	}
	q += " ORDER BY upload_date DESC, id"

	materials := make([]material.StudyMaterial, 0)
	if err := sqlx.SelectContext(ctx, repo.ext, &materials, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting study materials")
	}
	return materials, nil
}

func (repo *materialRepository) CountMaterials(ctx context.Context) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.ext, &count, "SELECT COUNT(*) FROM study_material")
	return count, errors.Wrap(err, "counting study materials")
}

func (repo *materialRepository) MarkViewed(ctx context.Context, prog material.Progress) error {
	q := `INSERT INTO progress (student_id, material_id, viewed) VALUES ($1, $2, $3)
		ON CONFLICT (student_id, material_id) DO NOTHING`
	if _, err := repo.ext.ExecContext(ctx, q, prog.StudentID, prog.MaterialID, prog.Viewed); err != nil {
		if pqErrorCode(err) == foreignKeyViolation {
			return material.ErrNotFound
		}
		return errors.Wrap(err, "inserting progress")
	}
	return nil
}

func (repo *materialRepository) CountViewed(ctx context.Context, studentID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.ext, &count, "SELECT COUNT(*) FROM progress WHERE student_id = $1 AND viewed", studentID)
	return count, errors.Wrap(err, "counting viewed materials")
}
