package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/config"
	"github.com/ruanfs/agenda-posto/internal/middleware"
	"github.com/ruanfs/agenda-posto/internal/repository"
	"github.com/ruanfs/agenda-posto/internal/session"
	"github.com/ruanfs/agenda-posto/internal/utils"
)

// AuthHandler bundles dependencies for the admin login and logout
// endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Admins   *repository.AdminRepo
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, admins *repository.AdminRepo, sessions session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Admins: admins, Sessions: sessions}
}

type loginReq struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// Login handles POST /api/login. On a correct username/password pair it
// creates a server-side session and sets the signed session cookie. The
// failure message never says which of the two fields was wrong, and the
// bcrypt compare runs even for unknown usernames so response timing does
// not reveal whether an account exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "requisição inválida"})
	}
	req.Usuario = strings.TrimSpace(req.Usuario)
	if req.Usuario == "" || req.Senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "usuário e senha são obrigatórios"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	admin, err := h.Admins.GetByUsername(ctx, req.Usuario)
	if err != nil && err != sql.ErrNoRows {
		c.Logger().Errorf("admin lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	hash := dummyHash
	if admin != nil {
		hash = admin.PasswordHash
	}
	if !utils.VerifyPassword(hash, req.Senha) || admin == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"erro": "usuário ou senha inválidos"})
	}

	ttl := time.Duration(h.Cfg.SessionTTLMin) * time.Minute
	sess, err := h.Sessions.Create(ctx, admin.Username, ttl)
	if err != nil {
		c.Logger().Errorf("session create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	token, err := utils.SignSessionToken(h.Cfg.SessionSecret, sess.ID, sess.ExpiresAt)
	if err != nil {
		c.Logger().Errorf("session token sign failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true})
}

// Logout handles POST /api/logout. It destroys the server-side session
// when the cookie resolves to one and always clears the cookie. Logging
// out without a live session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.CookieName); err == nil && cookie.Value != "" {
		if sid, err := utils.ParseSessionToken(h.Cfg.SessionSecret, cookie.Value); err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
			defer cancel()
			if err := h.Sessions.Delete(ctx, sid); err != nil {
				c.Logger().Errorf("session delete failed: %v", err)
			}
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true})
}

// dummyHash is a valid bcrypt hash of a random string, compared against
// when the username does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
