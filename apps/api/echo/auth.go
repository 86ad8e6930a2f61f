package echoapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
)

const (
	ctxIdentityKey = "identity"
	msgLoginFirst  = "Please login first!"
)

var errInvalidSession = errors.New("invalid session")

// Claims represents the session transmitted via a signed cookie.
type Claims struct {
	jwt.StandardClaims
	Role account.Role `json:"role"`
}

func (c Claims) Identity() account.Identity {
	id, _ := strconv.Atoi(c.Subject)
	return account.Identity{Role: c.Role, ID: id}
}

type sessionManager struct {
	conf *core.Config
	key  []byte
}

func newSessionManager(conf *core.Config) *sessionManager {
	return &sessionManager{conf: conf, key: []byte(conf.SecretKey)}
}

// GenerateToken signs a session token for `id`.
func (sm *sessionManager) GenerateToken(id account.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    sm.conf.AppName,
			Subject:   strconv.Itoa(id.ID),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(sm.conf.Session.Lifetime).Unix(),
		},
		Role: id.Role,
	}

	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (sm *sessionManager) parseToken(token string) (account.Identity, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidSession
		}
		return sm.key, nil
	})
	if err != nil {
		return account.Identity{}, errInvalidSession
	}
	id := claims.Identity()
	if id.IsZero() {
		return account.Identity{}, errInvalidSession
	}
	return id, nil
}

func (sm *sessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.conf.Session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !sm.conf.Debug && !sm.conf.TestMode,
		SameSite: http.SameSiteLaxMode,
	}
}

func (sm *sessionManager) login(ctx echo.Context, id account.Identity) error {
	token, err := sm.GenerateToken(id)
	if err != nil {
		return err
	}
	ctx.SetCookie(sm.cookie(token, int(sm.conf.Session.Lifetime.Seconds())))
	ctx.Set(ctxIdentityKey, id)
	return nil
}

func (sm *sessionManager) logout(ctx echo.Context) {
	ctx.SetCookie(sm.cookie("", -1))
	ctx.Set(ctxIdentityKey, account.Identity{})
}

// middleware loads the session identity, if any, into the context.
func (sm *sessionManager) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if cookie, err := ctx.Cookie(sm.conf.Session.CookieName); err == nil && cookie.Value != "" {
			if id, err := sm.parseToken(cookie.Value); err == nil {
				ctx.Set(ctxIdentityKey, id)
			}
		}
		return next(ctx)
	}
}

func getContextIdentity(ctx echo.Context) account.Identity {
	id, _ := ctx.Get(ctxIdentityKey).(account.Identity)
	return id
}

type accountChecker interface {
	Exists(ctx context.Context, id account.Identity) (bool, error)
}

// requireRole redirects to the login page unless the session belongs to an existing account of `role`.
func requireRole(role account.Role, accounts accountChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id := getContextIdentity(ctx)
			if !id.IsZero() && id.Role == role {
				ok, err := accounts.Exists(ctx.Request().Context(), id)
				if err != nil {
					return errors.Wrap(err, "checking session account")
				}
				if ok {
					return next(ctx)
				}
			}
			flash(ctx, flashDanger, msgLoginFirst)
			return ctx.Redirect(http.StatusSeeOther, "/login")
		}
	}
}

func dashboardPath(role account.Role) string {
	return "/" + string(role) + "/dashboard"
}
