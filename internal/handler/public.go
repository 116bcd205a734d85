package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/model"
	"github.com/ruanfs/agenda-posto/internal/queue"
	"github.com/ruanfs/agenda-posto/internal/receipt"
	"github.com/ruanfs/agenda-posto/internal/repository"
	"github.com/ruanfs/agenda-posto/internal/utils"
)

// PublicHandler serves the citizen-facing endpoints: listing open dates
// and times, and creating a booking. Receipts and event publishing are
// optional; a nil Receipts generator or PublishCreated function simply
// disables that side effect.
type PublicHandler struct {
	Slots    *repository.SlotRepo
	Bookings *repository.BookingRepo

	Receipts       *receipt.Generator
	PublishCreated func(ctx context.Context, ev queue.BookingCreatedEvent) error

	// now is the clock used for the "active booking" horizon; overridable
	// in tests.
	now func() time.Time
}

// NewPublicHandler constructs a PublicHandler with the required
// repositories. The optional side-effect fields are set by the caller.
func NewPublicHandler(slots *repository.SlotRepo, bookings *repository.BookingRepo) *PublicHandler {
	if slots == nil || bookings == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Slots: slots, Bookings: bookings, now: time.Now}
}

// AvailableDates handles GET /api/datas-disponiveis.
func (h *PublicHandler) AvailableDates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	dates, err := h.Slots.ListAvailableDates(ctx, h.now().UTC().Format("2006-01-02"))
	if err != nil {
		c.Logger().Errorf("list available dates failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"datas": dates})
}

// AvailableTimes handles GET /api/horarios-disponiveis?data=YYYY-MM-DD.
func (h *PublicHandler) AvailableTimes(c echo.Context) error {
	date := c.QueryParam("data")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "data inválida"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	times, err := h.Slots.ListAvailableTimes(ctx, date)
	if err != nil {
		c.Logger().Errorf("list available times failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"horarios": times})
}

type bookReq struct {
	Nome     string `json:"nome"`
	CPF      string `json:"cpf"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Data     string `json:"data"`
	Hora     string `json:"hora"`
}

// Book handles POST /api/agendar. After input validation the critical
// section runs inside one transaction: the active-booking check for the
// CPF, the conditional slot claim and the booking insert either all
// commit or none do. Receipt rendering and event publishing happen after
// commit and never fail the request.
func (h *PublicHandler) Book(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "requisição inválida"})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Email = strings.TrimSpace(req.Email)
	req.Telefone = strings.TrimSpace(req.Telefone)
	req.Data = strings.TrimSpace(req.Data)
	req.Hora = strings.TrimSpace(req.Hora)
	cpf := utils.NormalizeCPF(req.CPF)

	if req.Nome == "" || cpf == "" || req.Email == "" || req.Telefone == "" || req.Data == "" || req.Hora == "" {
		return c.JSON(http.StatusBadRequest,
			echo.Map{"erro": "nome, CPF, e-mail, telefone, data e hora são obrigatórios"})
	}
	if !utils.ValidCPF(cpf) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "CPF inválido"})
	}
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "e-mail inválido"})
	}
	if !phonePattern.MatchString(req.Telefone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "telefone inválido"})
	}
	if !validDate(req.Data) || !validTime(req.Hora) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "data ou hora inválida"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	booking := &model.Booking{
		Name:  req.Nome,
		CPF:   cpf,
		Email: req.Email,
		Phone: req.Telefone,
		Date:  req.Data,
		Time:  req.Hora,
	}
	switch err := h.createBooking(ctx, booking); {
	case errors.Is(err, repository.ErrDuplicateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"erro": "CPF já possui agendamento ativo"})
	case errors.Is(err, repository.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"erro": "horário indisponível"})
	case err != nil:
		c.Logger().Errorf("booking failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}

	resp := echo.Map{
		"sucesso":       true,
		"mensagem":      "agendamento realizado com sucesso",
		"agendamentoId": booking.ID,
	}
	if h.Receipts != nil {
		if name, err := h.Receipts.Booking(booking); err != nil {
			c.Logger().Errorf("receipt render failed for booking %d: %v", booking.ID, err)
		} else {
			resp["comprovante"] = "/comprovantes/" + name
		}
	}
	if h.PublishCreated != nil {
		ev := queue.BookingCreatedEvent{
			BookingID: booking.ID,
			Name:      booking.Name,
			CPFMasked: maskCPF(cpf),
			Date:      booking.Date,
			Time:      booking.Time,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.PublishCreated(context.Background(), ev) }()
	}
	return c.JSON(http.StatusOK, resp)
}

// createBooking runs the booking critical section and fills in the
// generated ID on success. It returns ErrDuplicateBooking when the CPF
// already holds an active booking and ErrSlotUnavailable when the
// requested slot could not be claimed. Two simultaneous bookings for one
// CPF can deadlock on the existence-check locks; the victim's transaction
// is rerun once so it observes the winner's committed row and returns the
// conflict instead of an opaque failure.
func (h *PublicHandler) createBooking(ctx context.Context, b *model.Booking) error {
	err := h.bookTx(ctx, b)
	if repository.IsDeadlock(err) {
		err = h.bookTx(ctx, b)
	}
	return err
}

func (h *PublicHandler) bookTx(ctx context.Context, b *model.Booking) error {
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	today := h.now().UTC().Format("2006-01-02")
	exists, err := h.Bookings.ActiveExistsTx(ctx, tx, b.CPF, today)
	if err != nil {
		return fmt.Errorf("active booking check: %w", err)
	}
	if exists {
		return repository.ErrDuplicateBooking
	}

	claimed, err := h.Slots.MarkUnavailableTx(ctx, tx, b.Date, b.Time)
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}
	if !claimed {
		return repository.ErrSlotUnavailable
	}

	if err := h.Bookings.CreateTx(ctx, tx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// maskCPF hides the middle digits of a CPF for use outside the store.
func maskCPF(cpf string) string {
	if len(cpf) != 11 {
		return "***"
	}
	return cpf[:3] + "******" + cpf[9:]
}
