package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/model"
	"github.com/ruanfs/agenda-posto/internal/queue"
	"github.com/ruanfs/agenda-posto/internal/repository"
)

// AdminHandler serves the session-gated administrative endpoints: booking
// listing, cancellation, status changes and slot management. Methods are
// split across admin_bookings.go and admin_slots.go.
type AdminHandler struct {
	Bookings *repository.BookingRepo
	Slots    *repository.SlotRepo

	PublishCancelled func(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// NewAdminHandler constructs an AdminHandler with the required
// repositories.
func NewAdminHandler(bookings *repository.BookingRepo, slots *repository.SlotRepo) *AdminHandler {
	if bookings == nil || slots == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Bookings: bookings, Slots: slots}
}

// ListBookings handles GET /admin/api/agendamentos?inicio=&fim=. Both
// bounds are optional; when present they must be YYYY-MM-DD dates.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	start := c.QueryParam("inicio")
	end := c.QueryParam("fim")
	if start != "" && !validDate(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "inicio inválido"})
	}
	if end != "" && !validDate(end) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "fim inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	bookings, err := h.Bookings.ListByRange(ctx, start, end)
	if err != nil {
		c.Logger().Errorf("list bookings failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"agendamentos": bookings})
}

// CancelBooking handles DELETE /admin/api/agendamentos/:id. The booking
// row removal and the slot restore run in one transaction so a cancelled
// booking always gives its time back to the public agenda.
func (h *AdminHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "id inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		c.Logger().Errorf("begin cancel tx failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := h.Bookings.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"erro": "agendamento não encontrado"})
		}
		c.Logger().Errorf("load booking %d failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	if err := h.Bookings.DeleteTx(ctx, tx, id); err != nil {
		c.Logger().Errorf("delete booking %d failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	if err := h.Slots.MarkAvailableTx(ctx, tx, booking.Date, booking.Time); err != nil {
		c.Logger().Errorf("restore slot for booking %d failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	if err := tx.Commit(); err != nil {
		c.Logger().Errorf("cancel commit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	committed = true

	if h.PublishCancelled != nil {
		ev := queue.BookingCancelledEvent{
			BookingID:   booking.ID,
			Date:        booking.Date,
			Time:        booking.Time,
			CancelledAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.PublishCancelled(context.Background(), ev) }()
	}
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true})
}

type statusReq struct {
	Status string `json:"status"`
}

// SetBookingStatus handles PUT /admin/api/agendamentos/:id/status. Only
// the status column changes; marking a booking served does not release
// its slot.
func (h *AdminHandler) SetBookingStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "id inválido"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "requisição inválida"})
	}
	if req.Status != model.StatusPending && req.Status != model.StatusServed {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "status inválido"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Bookings.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"erro": "agendamento não encontrado"})
		}
		c.Logger().Errorf("update status for booking %d failed: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true})
}
