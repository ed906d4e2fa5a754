package agent

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/agent/run", h.RunAgent)
	api.POST("/patients/:id/agent/signals", h.SignalsRecorded)
}

// RunAgent runs the full cycle for ?date= (default today).
func (h *Handler) RunAgent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := crrs.DateParam(c.QueryParam("date"), h.svc.Today())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	run, err := h.svc.ProcessByID(c.Request().Context(), id, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, run)
}

// SignalsRecorded triggers an UPDATE_SCORE action for ?date= (default today).
func (h *Handler) SignalsRecorded(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := crrs.DateParam(c.QueryParam("date"), h.svc.Today())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	report, err := h.svc.SignalsRecordedByID(c.Request().Context(), id, date)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusAccepted, report)
}

func mapError(err error) error {
	if errors.Is(err, patient.ErrProfileNotFound) || errors.Is(err, patient.ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
