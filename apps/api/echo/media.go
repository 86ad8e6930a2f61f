package echoapi

import (
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type mediaApi struct {
	blobs core.BlobStore
}

func registerMediaAPI(e *echo.Echo, blobs core.BlobStore) {
	api := mediaApi{blobs: blobs}
	e.GET("/media/:bucket/:name", api.serve)
}

func mediaPath(bucket, name string) string {
	return path.Join("/media", bucket, name)
}

func (api *mediaApi) serve(ctx echo.Context) error {
	bucket, name := ctx.Param("bucket"), ctx.Param("name")
	if !core.IsKnownBucket(bucket) {
		return echo.ErrNotFound
	}

	rc, err := api.blobs.Open(ctx.Request().Context(), bucket, name)
	if err != nil {
		return errors.Wrap(err, "opening "+bucket+" file")
	}
	defer func() { _ = rc.Close() }()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return ctx.Stream(http.StatusOK, contentType, rc)
}
