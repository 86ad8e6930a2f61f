package material_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/material"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
	"github.com/trezcool/shule/storage/files"
)

func setup(t *testing.T) (*material.Service, core.BlobStore) {
	blobs, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return material.NewService(inmemdb.NewMaterialRepository(inmemdb.NewDB()), blobs), blobs
}

func upload(name string) *core.Upload {
	return &core.Upload{Filename: name, Content: strings.NewReader("content")}
}

func TestService_Upload(t *testing.T) {
	svc, blobs := setup(t)
	ctx := context.Background()

	core.NowFunc = func() time.Time { return time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	form := material.NewMaterial{Subject: " Robotics ", Title: "Gears", Description: " Teeth and ratios "}
	tests := []struct {
		name       string
		form       func(nm *material.NewMaterial)
		file       *core.Upload
		wantErr    error
		wantErrStr string
	}{
		{name: "no subject", form: func(nm *material.NewMaterial) { nm.Subject = " " }, file: upload("no_subject.pdf"), wantErrStr: "Please enter a subject!"},
		{name: "no title", form: func(nm *material.NewMaterial) { nm.Title = "" }, file: upload("no_title.pdf"), wantErrStr: "Please enter a title!"},
		{name: "no description", form: func(nm *material.NewMaterial) { nm.Description = "" }, file: upload("no_description.pdf"), wantErrStr: "Please enter a description!"},
		{name: "no file", wantErr: material.ErrFileNotAllowed},
		{name: "no filename", file: upload(""), wantErr: material.ErrFileNotAllowed},
		{name: "not allowed", file: upload("virus.exe"), wantErr: material.ErrFileNotAllowed},
		{name: "no extension", file: upload("pdf"), wantErr: material.ErrFileNotAllowed},
		{name: "pdf", file: upload("gears.PDF")},
		{name: "pptx", file: upload("week 1.pptx")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nm := form
			if tt.form != nil {
				tt.form(&nm)
			}
			mat, err := svc.Upload(ctx, 1, nm, tt.file)
			if tt.wantErrStr != "" {
				require.True(t, core.IsValidationError(err), "%v", err)
				assert.Equal(t, tt.wantErrStr, err.Error())
				_, err = blobs.Open(ctx, core.BucketMaterials, tt.file.Filename)
				assert.Equal(t, core.ErrBlobNotFound, errors.Cause(err))
				return
			}
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Robotics", mat.Subject)
			assert.Equal(t, "Teeth and ratios", mat.Description.String)
			assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), mat.UploadDate)

			rc, err := blobs.Open(ctx, core.BucketMaterials, mat.Filename)
			require.NoError(t, err)
			_ = rc.Close()
		})
	}

	mats, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, mats, 2)
	assert.Equal(t, "gears.PDF", mats[0].Filename)
	assert.Equal(t, "week_1.pptx", mats[1].Filename)
}

func TestService_EditDelete(t *testing.T) {
	svc, blobs := setup(t)
	ctx := context.Background()
	const owner, other = 1, 2

	mat, err := svc.Upload(ctx, owner, material.NewMaterial{Subject: "AI", Title: "Intro", Description: "Start"}, upload("intro.txt"))
	require.NoError(t, err)

	_, err = svc.Edit(ctx, other, mat.ID, material.UpdateMaterial{Title: "Hacked"})
	assert.Equal(t, material.ErrNotFound, err)

	got, err := svc.Edit(ctx, owner, mat.ID, material.UpdateMaterial{Title: " Basics ", Description: "Start here"})
	require.NoError(t, err)
	assert.Equal(t, "Basics", got.Title)
	assert.Equal(t, "Start here", got.Description.String)
	assert.Equal(t, "AI", got.Subject)
	assert.Equal(t, "intro.txt", got.Filename)

	mine, err := svc.ListByTeacher(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := svc.ListByTeacher(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = svc.View(ctx, 7, mat.ID)
	require.NoError(t, err)

	assert.Equal(t, material.ErrNotFound, svc.Delete(ctx, other, mat.ID))
	require.NoError(t, svc.Delete(ctx, owner, mat.ID))

	_, err = blobs.Open(ctx, core.BucketMaterials, "intro.txt")
	assert.Equal(t, core.ErrBlobNotFound, errors.Cause(err))
	_, err = svc.View(ctx, 7, mat.ID)
	assert.Equal(t, material.ErrNotFound, errors.Cause(err))

	// progress went with the material
	pct, err := svc.ProgressPercent(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, pct)
}

func TestService_ProgressPercent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	const student = 3

	pct, err := svc.ProgressPercent(ctx, student)
	require.NoError(t, err)
	assert.Zero(t, pct, "no materials")

	var ids []int
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		mat, err := svc.Upload(ctx, 1, material.NewMaterial{Subject: "AI", Title: name, Description: name}, upload(name))
		require.NoError(t, err)
		ids = append(ids, mat.ID)
	}

	tests := []struct {
		name string
		view int
		want int
	}{
		{name: "one of three", view: ids[0], want: 33},
		{name: "viewing twice counts once", view: ids[0], want: 33},
		{name: "two of three", view: ids[1], want: 67},
		{name: "all", view: ids[2], want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.View(ctx, student, tt.view)
			require.NoError(t, err)
			pct, err := svc.ProgressPercent(ctx, student)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pct)
		})
	}

	_, err = svc.View(ctx, student, 999)
	assert.Equal(t, material.ErrNotFound, errors.Cause(err))

	t.Run("half rounds to even", func(t *testing.T) {
		svc, _ := setup(t)
		for i := 0; i < 8; i++ {
			_, err := svc.Upload(ctx, 1, material.NewMaterial{Subject: "AI", Title: "M", Description: "M"}, upload("m.zip"))
			require.NoError(t, err)
		}
		_, err := svc.View(ctx, student, 1)
		require.NoError(t, err)

		pct, err := svc.ProgressPercent(ctx, student) // 12.5
		require.NoError(t, err)
		assert.Equal(t, 12, pct)
	})
}
