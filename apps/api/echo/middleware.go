package echoapi

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/shule/core"
)

// adminAuth guards the admin pages with the configured basic auth credentials.
func adminAuth(conf *core.Config) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: conf.AppName + " admin",
		Validator: func(username, password string, ctx echo.Context) (bool, error) {
			if conf.Admin.Username == "" || conf.Admin.Password == "" {
				return false, nil
			}
			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(conf.Admin.Username)) == 1
			pwdOK := subtle.ConstantTimeCompare([]byte(password), []byte(conf.Admin.Password)) == 1
			return userOK && pwdOK, nil
		},
	})
}
