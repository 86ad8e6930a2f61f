package files

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	root, err := ioutil.TempDir("", "shule-files")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(root) })

	store, err := NewLocalStore(root)
	require.NoError(t, err)
	return store, root
}

func TestNewLocalStore(t *testing.T) {
	_, root := newTestStore(t)
	for _, bucket := range core.Buckets {
		info, err := os.Stat(filepath.Join(root, bucket))
		if assert.NoError(t, err) {
			assert.True(t, info.IsDir())
		}
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store, root := newTestStore(t)

	t.Run("save then open", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, core.BucketVideos, "lesson.mp4", strings.NewReader("video")))
		assert.FileExists(t, filepath.Join(root, core.BucketVideos, "lesson.mp4"))

		rc, err := store.Open(ctx, core.BucketVideos, "lesson.mp4")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()
		data, err := ioutil.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "video", string(data))
	})

	t.Run("save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, core.BucketMaterials, "notes.pdf", strings.NewReader("v1")))
		require.NoError(t, store.Save(ctx, core.BucketMaterials, "notes.pdf", strings.NewReader("v2")))

		data, err := ioutil.ReadFile(filepath.Join(root, core.BucketMaterials, "notes.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "v2", string(data))
	})

	t.Run("names are sanitized", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, core.BucketPhotos, "../../etc/passwd", strings.NewReader("x")))
		assert.FileExists(t, filepath.Join(root, core.BucketPhotos, "passwd"))
	})

	t.Run("open missing", func(t *testing.T) {
		_, err := store.Open(ctx, core.BucketVideos, "missing.mp4")
		assert.Equal(t, core.ErrBlobNotFound, err)
	})

	t.Run("unknown bucket", func(t *testing.T) {
		err := store.Save(ctx, "secrets", "a.txt", strings.NewReader("x"))
		assert.Equal(t, core.ErrUnknownBucket, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, core.BucketVideos, "old.mp4", strings.NewReader("x")))
		require.NoError(t, store.Delete(ctx, core.BucketVideos, "old.mp4"))
		assert.NoFileExists(t, filepath.Join(root, core.BucketVideos, "old.mp4"))

		assert.Equal(t, core.ErrBlobNotFound, store.Delete(ctx, core.BucketVideos, "old.mp4"))
	})
}
