package contact

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sid145V/medical-assistant/internal/platform/auth"
	"github.com/Sid145V/medical-assistant/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/contact", h.Submit)
	api.GET("/contact", h.List, auth.RequireRole("admin"))
}

func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Submit(c.Request().Context(), &req)
	if errors.Is(err, ErrMissingFields) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	msgs, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(msgs, total, p))
}
