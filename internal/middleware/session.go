package middleware // reusable HTTP middleware for the admin API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/session"
	"github.com/ruanfs/agenda-posto/internal/utils"
)

// CookieName is the cookie carrying the signed admin session token.
const CookieName = "sessao"

// RequireSession returns an Echo middleware that gates administrative
// routes. It reads the session cookie, verifies the token signature with
// the configured secret, and then checks the server-side store; a cookie
// whose session was deleted (logout) or expired is rejected even when the
// signature is still valid. On success the admin username is injected
// into the request context under "admin_user".
func RequireSession(secret string, store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"erro": "não autorizado"})
			}
			sid, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"erro": "não autorizado"})
			}
			sess, err := store.Get(c.Request().Context(), sid)
			if err != nil {
				c.Logger().Errorf("session lookup failed: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
			}
			if sess == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"erro": "não autorizado"})
			}
			c.Set("admin_user", sess.Username)
			return next(c)
		}
	}
}
