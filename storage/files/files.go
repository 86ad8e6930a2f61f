// Package files implements core.BlobStore on the local filesystem or on Google Cloud Storage.
package files

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// New returns the BlobStore selected by conf.Uploads.Driver.
func New(ctx context.Context, conf *core.Config) (core.BlobStore, error) {
	switch conf.Uploads.Driver {
	case "", "local":
		return NewLocalStore(conf.Uploads.RootDir)
	case "gcs":
		return NewGCSStore(ctx, conf.Uploads.GCSBucket, conf.Uploads.GCSCredentialsFile)
	default:
		return nil, errors.Errorf("unknown uploads driver %q", conf.Uploads.Driver)
	}
}
