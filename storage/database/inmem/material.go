package inmemdb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/material"
)

type materialRepository struct {
	store
}

var _ material.Repository = (*materialRepository)(nil)

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{store{db: db}}
}

func (repo *materialRepository) CreateMaterial(ctx context.Context, mat material.StudyMaterial) (material.StudyMaterial, error) {
	_ = repo.write(func(t *tables) error {
		mat.ID = t.nextID("study_material")
		t.materials[mat.ID] = mat
		return nil
	})
	return mat, nil
}

func (repo *materialRepository) GetMaterial(ctx context.Context, id int) (material.StudyMaterial, error) {
	var res material.StudyMaterial
	err := repo.read(func(t *tables) error {
		mat, ok := t.materials[id]
		if !ok {
			return material.ErrNotFound
		}
		res = mat
		return nil
	})
	return res, err
}

func (repo *materialRepository) UpdateMaterial(ctx context.Context, mat material.StudyMaterial) (material.StudyMaterial, error) {
	err := repo.write(func(t *tables) error {
		if _, ok := t.materials[mat.ID]; !ok {
			return material.ErrNotFound
		}
		t.materials[mat.ID] = mat
		return nil
	})
	if err != nil {
		return material.StudyMaterial{}, err
	}
	return mat, nil
}

func (repo *materialRepository) DeleteMaterial(ctx context.Context, id int) error {
	return repo.write(func(t *tables) error {
		if _, ok := t.materials[id]; !ok {
			return material.ErrNotFound
		}
		delete(t.materials, id)
		for k := range t.progress {
			if k.materialID == id {
				delete(t.progress, k)
			}
		}
		return nil
	})
}

func (repo *materialRepository) QueryMaterials(ctx context.Context, filter material.Filter) ([]material.StudyMaterial, error) {
	res := make([]material.StudyMaterial, 0)
	_ = repo.read(func(t *tables) error {
		for _, mat := range t.materials {
			if !filter.TeacherID.Valid || filter.TeacherID.Int == mat.TeacherID {
				res = append(res, mat)
			}
		}
		return nil
	})
	sortRows(res, []core.DBOrdering{{Field: "upload_date", Ascending: false}}, func(i int, name string) interface{} {
		switch name {
		case "id":
			return res[i].ID
		case "upload_date":
			return res[i].UploadDate.Format(core.DateLayout)
		}
		return nil
	})
	return res, nil
}

func (repo *materialRepository) CountMaterials(ctx context.Context) (int, error) {
	var count int
	_ = repo.read(func(t *tables) error {
		count = len(t.materials)
		return nil
	})
	return count, nil
}

func (repo *materialRepository) MarkViewed(ctx context.Context, prog material.Progress) error {
	return repo.write(func(t *tables) error {
		if _, ok := t.materials[prog.MaterialID]; !ok {
			return material.ErrNotFound
		}
		key := progressKey{studentID: prog.StudentID, materialID: prog.MaterialID}
		if _, ok := t.progress[key]; !ok {
			t.progress[key] = prog
		}
		return nil
	})
}

func (repo *materialRepository) CountViewed(ctx context.Context, studentID int) (int, error) {
	var count int
	_ = repo.read(func(t *tables) error {
		for k, p := range t.progress {
			if k.studentID == studentID && p.Viewed {
				count++
			}
		}
		return nil
	})
	return count, nil
}
