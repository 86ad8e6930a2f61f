package files

import (
	"context"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/shule/core"
)

// GCSStore keeps every bucket as a prefix of a single Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

var _ core.BlobStore = (*GCSStore)(nil)

func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("missing GCS bucket name")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating GCS client")
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) object(bucket, name string) (*storage.ObjectHandle, error) {
	if !core.IsKnownBucket(bucket) {
		return nil, core.ErrUnknownBucket
	}
	name = core.SecureFilename(name)
	if name == "" {
		return nil, core.ErrBlobNotFound
	}
	return s.client.Bucket(s.bucket).Object(path.Join(bucket, name)), nil
}

func (s *GCSStore) Save(ctx context.Context, bucket, name string, content io.Reader) error {
	obj, err := s.object(bucket, name)
	if err != nil {
		return err
	}

	w := obj.NewWriter(ctx)
	if _, err = io.Copy(w, content); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "writing object")
	}
	return errors.Wrap(w.Close(), "closing object writer")
}

func (s *GCSStore) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	obj, err := s.object(bucket, name)
	if err != nil {
		return nil, err
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, core.ErrBlobNotFound
		}
		return nil, errors.Wrap(err, "reading object")
	}
	return r, nil
}

func (s *GCSStore) Delete(ctx context.Context, bucket, name string) error {
	obj, err := s.object(bucket, name)
	if err != nil {
		return err
	}

	if err = obj.Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return core.ErrBlobNotFound
		}
		return errors.Wrap(err, "deleting object")
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
