package identity

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
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
	api.POST("/auth/login", h.Login)
	api.POST("/auth/signup", h.Signup)

	api.GET("/me", h.Me)
	api.PATCH("/users/:id", h.UpdateUser)

	api.GET("/patients", h.ListPatients, auth.RequireRole("admin", "doctor"))
	api.GET("/doctors", h.ListDoctors)
	api.GET("/shops", h.ListShops)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Identifier == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "identifier and password are required")
	}
	if !req.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error())
	}
	sess, err := h.svc.Login(c.Request().Context(), req.Identifier, req.Password, req.Role)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Signup(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) Me(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no account for the current identity")
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := auth.RequireSelf(c.Request().Context(), id.String()); err != nil {
		return err
	}
	var patch UserUpdate
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateUser(c.Request().Context(), id, &patch)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func listFilter(c echo.Context) ListFilter {
	return ListFilter{
		Location:       c.QueryParam("location"),
		Specialization: c.QueryParam("specialization"),
		Query:          c.QueryParam("q"),
	}
}

func (h *Handler) ListPatients(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.svc.ListPatients(c.Request().Context(), listFilter(c), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p))
}

func (h *Handler) ListDoctors(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.svc.ListDoctors(c.Request().Context(), listFilter(c), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p))
}

func (h *Handler) ListShops(c echo.Context) error {
	p := pagination.FromContext(c)
	users, total, err := h.svc.ListShops(c.Request().Context(), listFilter(c), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, p))
}

func mapError(err error) error {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrContactInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAdminSignup):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrContactRequired),
		errors.Is(err, auth.ErrWeakPassword), errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
