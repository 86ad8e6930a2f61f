package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/course"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

func TestService_Create(t *testing.T) {
	svc := course.NewService(inmemdb.NewCourseRepository(inmemdb.NewDB()))
	ctx := context.Background()

	tests := []struct {
		name    string
		nc      course.NewCourse
		wantErr string
	}{
		{name: "ok", nc: course.NewCourse{Name: " Robotics ", Description: "Gears"}},
		{name: "blank", nc: course.NewCourse{Name: "  "}, wantErr: "Subject name cannot be empty!"},
		{name: "duplicate", nc: course.NewCourse{Name: "ROBOTICS"}, wantErr: course.ErrNameExists.Error()},
		{name: "no description", nc: course.NewCourse{Name: "AI"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crs, err := svc.Create(ctx, tt.nc)
			if tt.wantErr != "" {
				require.True(t, core.IsValidationError(err), "%v", err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, crs.ID)
			assert.Equal(t, tt.nc.Description != "", crs.Description.Valid)
		})
	}

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "AI", courses[0].Name)
	assert.Equal(t, "Robotics", courses[1].Name)

	_, err = svc.Get(ctx, 999)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_SeedDefaults(t *testing.T) {
	svc := course.NewService(inmemdb.NewCourseRepository(inmemdb.NewDB()))
	ctx := context.Background()

	_, err := svc.Create(ctx, course.NewCourse{Name: "machine learning"})
	require.NoError(t, err)

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(course.Defaults)-1, n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, len(course.Defaults))
}
