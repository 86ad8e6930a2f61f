package core

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Buckets
const (
	BucketVideos    = "videos"
	BucketPhotos    = "photos"
	BucketMaterials = "materials"
)

var (
	Buckets = []string{BucketVideos, BucketPhotos, BucketMaterials}

	ErrBlobNotFound  = errors.New("file not found")
	ErrUnknownBucket = errors.New("unknown bucket")
)

// BlobStore persists uploaded files under a bucket and a (sanitized) name.
// Saving under an existing name overwrites the previous file.
type BlobStore interface {
	Save(ctx context.Context, bucket, name string, r io.Reader) error
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
	// Delete returns ErrBlobNotFound if there is nothing to delete.
	Delete(ctx context.Context, bucket, name string) error
}

// Upload is a file submitted through a form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// IsEmpty reports whether no file was submitted.
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Content == nil || CleanString(u.Filename) == ""
}

func IsKnownBucket(bucket string) bool {
	for _, b := range Buckets {
		if b == bucket {
			return true
		}
	}
	return false
}
