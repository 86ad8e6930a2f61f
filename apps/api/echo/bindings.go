package echoapi

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	orderingParam     = "ordering"
	statusFieldPrefix = "status_"
	noopClose         = func() {}
	errUploadTooLarge = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload too large")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// paramID reads the `:id` path param. Malformed IDs are reported as not found.
func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

// formUpload returns the file submitted under `field`, or nil if there is none. Call done once the upload is consumed.
func formUpload(ctx echo.Context, field string) (upload *core.Upload, done func(), err error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		switch err {
		case http.ErrMissingFile, http.ErrNotMultipart:
			return nil, noopClose, nil
		case multipart.ErrMessageTooLarge:
			return nil, noopClose, errUploadTooLarge
		}
		return nil, noopClose, errors.Wrapf(err, "reading %s", field)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, noopClose, errors.Wrapf(err, "opening %s", field)
	}
	return &core.Upload{Filename: fh.Filename, Content: file}, func() { _ = file.Close() }, nil
}

// attendanceStatuses collects the `status_<student id>` form fields.
func attendanceStatuses(ctx echo.Context) (map[int]string, error) {
	params, err := ctx.FormParams()
	if err != nil {
		return nil, errors.Wrap(err, "parsing form")
	}

	statuses := make(map[int]string)
	for key, vals := range params {
		if !strings.HasPrefix(key, statusFieldPrefix) || len(vals) == 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(key, statusFieldPrefix))
		if err != nil {
			continue
		}
		statuses[id] = vals[0]
	}
	return statuses, nil
}
