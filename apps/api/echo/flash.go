package echoapi

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// flash categories
const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

const flashSessionName = "shule_flash"

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func init() {
	gob.Register(Flash{})
}

// newFlashStore returns the cookie store backing flash messages, signed with the app secret.
func newFlashStore(conf *core.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// flashSession returns the request's flash session. A tampered cookie yields a fresh session.
func flashSession(ctx echo.Context) (*sessions.Session, error) {
	sess, err := session.Get(flashSessionName, ctx)
	if sess == nil {
		return nil, errors.Wrap(err, "getting flash session")
	}
	return sess, nil
}

// flash queues a message for the next rendered page.
func flash(ctx echo.Context, category, msg string) {
	sess, err := flashSession(ctx)
	if err != nil {
		ctx.Logger().Error(err)
		return
	}
	sess.AddFlash(Flash{Category: category, Message: msg})
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		ctx.Logger().Error(errors.Wrap(err, "saving flash session"))
	}
}

// popFlashes returns the queued messages and clears them.
func popFlashes(ctx echo.Context) []Flash {
	flashes := []Flash{}
	sess, err := flashSession(ctx)
	if err != nil {
		ctx.Logger().Error(err)
		return flashes
	}

	pending := sess.Flashes()
	if len(pending) == 0 {
		return flashes
	}
	for _, v := range pending {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		ctx.Logger().Error(errors.Wrap(err, "saving flash session"))
	}
	return flashes
}
