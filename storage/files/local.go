package files

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// LocalStore keeps each bucket in its own directory under root.
type LocalStore struct {
	root string
}

var _ core.BlobStore = (*LocalStore)(nil)

// NewLocalStore creates the bucket directories if they do not exist.
func NewLocalStore(root string) (*LocalStore, error) {
	for _, bucket := range core.Buckets {
		if err := os.MkdirAll(filepath.Join(root, bucket), 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating %s directory", bucket)
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(bucket, name string) (string, error) {
	if !core.IsKnownBucket(bucket) {
		return "", core.ErrUnknownBucket
	}
	name = core.SecureFilename(name)
	if name == "" {
		return "", core.ErrBlobNotFound
	}
	return filepath.Join(s.root, bucket, name), nil
}

func (s *LocalStore) Save(ctx context.Context, bucket, name string, content io.Reader) error {
	fp, err := s.path(bucket, name)
	if err != nil {
		return err
	}

	file, err := os.Create(fp)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(file, content); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "writing file")
	}
	return errors.Wrap(file.Close(), "closing file")
}

func (s *LocalStore) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	fp, err := s.path(bucket, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrBlobNotFound
		}
		return nil, errors.Wrap(err, "opening file")
	}
	return file, nil
}

func (s *LocalStore) Delete(ctx context.Context, bucket, name string) error {
	fp, err := s.path(bucket, name)
	if err != nil {
		return err
	}

	if err = os.Remove(fp); err != nil {
		if os.IsNotExist(err) {
			return core.ErrBlobNotFound
		}
		return errors.Wrap(err, "removing file")
	}
	return nil
}
