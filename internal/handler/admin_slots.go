package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ruanfs/agenda-posto/internal/repository"
)

// DefaultSlotTimes is the daily template used when slot generation is
// requested without an explicit list of times.
var DefaultSlotTimes = []string{"08:00", "09:00", "10:00", "11:00", "14:00", "15:00"}

type createSlotsReq struct {
	Data  string   `json:"data"`
	Horas []string `json:"horas"`
}

// CreateSlots handles POST /admin/api/cadastrar-horarios. It generates
// one available slot per template time for the given date and rejects the
// request when the date already has slots; regenerating a partially
// booked day would otherwise resurrect taken times.
func (h *AdminHandler) CreateSlots(c echo.Context) error {
	var req createSlotsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "requisição inválida"})
	}
	if !validDate(req.Data) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "data inválida"})
	}
	times := req.Horas
	if len(times) == 0 {
		times = DefaultSlotTimes
	}
	seen := make(map[string]struct{}, len(times))
	for _, t := range times {
		if !validTime(t) {
			return c.JSON(http.StatusBadRequest, echo.Map{"erro": "hora inválida: " + t})
		}
		if _, dup := seen[t]; dup {
			return c.JSON(http.StatusBadRequest, echo.Map{"erro": "hora repetida: " + t})
		}
		seen[t] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	created, err := h.Slots.CreateForDate(ctx, req.Data, times)
	if err != nil {
		if errors.Is(err, repository.ErrSlotsExist) {
			return c.JSON(http.StatusConflict, echo.Map{"erro": "já existem horários cadastrados para esta data"})
		}
		c.Logger().Errorf("create slots for %s failed: %v", req.Data, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true, "criados": created})
}

// ListSlots handles GET /admin/api/horarios/:data. Unlike the public
// listing it returns taken slots too, so the panel can show a full day.
func (h *AdminHandler) ListSlots(c echo.Context) error {
	date := c.Param("data")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "data inválida"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	slots, err := h.Slots.ListByDate(ctx, date)
	if err != nil {
		c.Logger().Errorf("list slots for %s failed: %v", date, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"horarios": slots})
}

// DeleteSlots handles DELETE /admin/api/horarios/:data. Every slot row of
// the date is removed, booked or not; bookings already made for the date
// are left alone and keep their records.
func (h *AdminHandler) DeleteSlots(c echo.Context) error {
	date := c.Param("data")
	if !validDate(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"erro": "data inválida"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	removed, err := h.Slots.DeleteForDate(ctx, date)
	if err != nil {
		c.Logger().Errorf("delete slots for %s failed: %v", date, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"erro": "erro interno"})
	}
	return c.JSON(http.StatusOK, echo.Map{"sucesso": true, "removidos": removed})
}
