package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ruanfs/agenda-posto/internal/config"
	"github.com/ruanfs/agenda-posto/internal/middleware"
	"github.com/ruanfs/agenda-posto/internal/repository"
	"github.com/ruanfs/agenda-posto/internal/session"
	"github.com/ruanfs/agenda-posto/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, session.Store) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		SessionSecret: "test-secret",
		SessionTTLMin: 60,
		BcryptCost:    bcrypt.MinCost,
	}
	sessions := session.NewMemoryStore()
	return NewAuthHandler(cfg, repository.NewAdminRepo(db), sessions), mock, sessions
}

func adminRow(t *testing.T, password string) *sqlmock.Rows {
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
		AddRow(1, "admin", hash, time.Now())
}

func loginRequest(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLogin_Success(t *testing.T) {
	h, mock, _ := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE username = ?`)).
		WithArgs("admin").
		WillReturnRows(adminRow(t, "senha-forte"))

	c, rec := loginRequest(`{"usuario":"admin","senha":"senha-forte"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE username = ?`)).
		WithArgs("admin").
		WillReturnRows(adminRow(t, "senha-forte"))

	c, rec := loginRequest(`{"usuario":"admin","senha":"errada"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

// An unknown username produces the same response as a wrong password.
func TestLogin_UnknownUser(t *testing.T) {
	h, mock, _ := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE username = ?`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

	c, rec := loginRequest(`{"usuario":"ghost","senha":"qualquer"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "usuário ou senha inválidos")
}

func TestLogin_MissingFields(t *testing.T) {
	h, _, _ := newAuthHandler(t)
	c, rec := loginRequest(`{"usuario":"admin"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Full round trip through the gate: login, hit a guarded route with the
// cookie, log out, and watch the same cookie get rejected.
func TestSessionGate_RoundTrip(t *testing.T) {
	h, mock, sessions := newAuthHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM admin_users WHERE username = ?`)).
		WithArgs("admin").
		WillReturnRows(adminRow(t, "senha-forte"))

	c, rec := loginRequest(`{"usuario":"admin","senha":"senha-forte"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := rec.Result().Cookies()[0]

	e := echo.New()
	guarded := middleware.RequireSession(h.Cfg.SessionSecret, sessions)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"admin": c.Get("admin_user")})
	})

	// With the cookie the guarded handler runs.
	req := httptest.NewRequest(http.MethodGet, "/admin/api/agendamentos", nil)
	req.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	require.NoError(t, guarded(e.NewContext(req, rec2)))
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "admin")

	// Logout destroys the server-side session.
	req = httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rec3 := httptest.NewRecorder()
	require.NoError(t, h.Logout(e.NewContext(req, rec3)))
	require.Equal(t, http.StatusOK, rec3.Code)

	// The old cookie no longer opens the gate.
	req = httptest.NewRequest(http.MethodGet, "/admin/api/agendamentos", nil)
	req.AddCookie(cookie)
	rec4 := httptest.NewRecorder()
	require.NoError(t, guarded(e.NewContext(req, rec4)))
	assert.Equal(t, http.StatusUnauthorized, rec4.Code)
}

func TestSessionGate_NoCookie(t *testing.T) {
	e := echo.New()
	guarded := middleware.RequireSession("test-secret", session.NewMemoryStore())(func(c echo.Context) error {
		t.Fatal("guarded handler must not run without a session")
		return nil
	})
	req := httptest.NewRequest(http.MethodGet, "/admin/api/agendamentos", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, guarded(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionGate_ForgedToken(t *testing.T) {
	sessions := session.NewMemoryStore()
	e := echo.New()
	guarded := middleware.RequireSession("test-secret", sessions)(func(c echo.Context) error {
		t.Fatal("guarded handler must not run with a forged token")
		return nil
	})
	forged, err := utils.SignSessionToken("other-secret", "some-id", time.Now().Add(time.Hour))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/api/agendamentos", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: forged})
	rec := httptest.NewRecorder()
	require.NoError(t, guarded(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
