package crrs

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/crrs", h.ComputeScore)
	api.GET("/patients/:id/crrs", h.ListScores)
	api.GET("/patients/:id/crrs/:date", h.GetScore)
}

// ComputeScore computes and stores the score for ?date= (default today).
func (h *Handler) ComputeScore(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := DateParam(c.QueryParam("date"), h.svc.Today())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	score, err := h.svc.Compute(c.Request().Context(), id, date)
	if errors.Is(err, patient.ErrProfileNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, score)
}

func (h *Handler) GetScore(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	score, err := h.svc.GetScore(c.Request().Context(), id, date)
	if errors.Is(err, ErrScoreNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "crrs score not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, score)
}

func (h *Handler) ListScores(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListScores(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL))
}

// DateParam parses an optional YYYY-MM-DD value, falling back to def.
func DateParam(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	return ParseDate(raw)
}
