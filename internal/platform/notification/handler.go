package notification

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vijay-veer/swasthya-sarthi/pkg/pagination"
)

// Handler exposes the delivery history over HTTP.
type Handler struct {
	manager *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{manager: mgr}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications/stats", h.Stats)
	g.GET("/notifications/:id", h.Get)
	g.GET("/notifications", h.List)
	g.POST("/notifications/:id/retry", h.Retry)
}

// List handles GET /notifications?recipient=...
func (h *Handler) List(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient query parameter is required")
	}
	p := pagination.FromContext(c)
	list := h.manager.ListByRecipient(c.Request().Context(), recipient, 0)
	total := len(list)

	page := []*Notification{}
	if p.Offset < total {
		end := min(p.Offset+p.Limit, total)
		page = list[p.Offset:end]
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(page, total, p.Limit, p.Offset).WithLinks(c.Request().URL))
}

func (h *Handler) Get(c echo.Context) error {
	n, err := h.manager.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

// Retry handles POST /notifications/:id/retry. A retry that fails again
// still answers 200 with the updated record.
func (h *Handler) Retry(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := h.manager.Retry(ctx, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotRetryable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
	}
	n, err := h.manager.Get(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
