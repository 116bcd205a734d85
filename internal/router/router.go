package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/handler"
	"github.com/ruanfs/agenda-posto/internal/middleware"
	"github.com/ruanfs/agenda-posto/internal/session"
)

// RegisterRoutes registers the routes that need no handler wiring: the
// health check and the static directory where booking receipts are served
// for download.
func RegisterRoutes(e *echo.Echo, receiptDir string) {
	e.GET("/healthz", handler.Health)
	if receiptDir != "" {
		e.Static("/comprovantes", receiptDir)
	}
}

// RegisterAuth registers the admin login and logout endpoints. Neither is
// gated: login establishes the session and logout merely destroys one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/api/login", a.Login)
	e.POST("/api/logout", a.Logout)
}

// RegisterPublic registers the citizen-facing endpoints. The rate limit
// middleware is applied to the booking route only; browsing open dates
// and times stays unthrottled.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rateLimit echo.MiddlewareFunc) {
	e.GET("/api/datas-disponiveis", p.AvailableDates)
	e.GET("/api/horarios-disponiveis", p.AvailableTimes)
	if rateLimit != nil {
		e.POST("/api/agendar", p.Book, rateLimit)
	} else {
		e.POST("/api/agendar", p.Book)
	}
}

// RegisterAdmin registers the administrative endpoints under /admin/api.
// Every route in the group runs the session gate before its handler, so
// an unauthenticated caller never reaches booking or slot management.
func RegisterAdmin(e *echo.Echo, adm *handler.AdminHandler, secret string, sessions session.Store) {
	g := e.Group("/admin/api")
	g.Use(middleware.RequireSession(secret, sessions))
	g.GET("/agendamentos", adm.ListBookings)
	g.DELETE("/agendamentos/:id", adm.CancelBooking)
	g.PUT("/agendamentos/:id/status", adm.SetBookingStatus)
	g.POST("/cadastrar-horarios", adm.CreateSlots)
	g.GET("/horarios/:data", adm.ListSlots)
	g.DELETE("/horarios/:data", adm.DeleteSlots)
}
