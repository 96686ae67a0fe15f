package pharmacy

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
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
	api.GET("/medicines", h.ListMedicines)
	api.POST("/medicines", h.AddMedicine, auth.RequireRole("shop"))
	api.GET("/shops/:id/medicines", h.ListMedicinesByShop)

	api.POST("/orders", h.PlaceOrder, auth.RequireRole("patient"))
	api.GET("/orders", h.ListAllOrders, auth.RequireRole("admin"))
	api.GET("/patients/:id/orders", h.ListOrdersForPatient)
	api.GET("/shops/:id/orders", h.ListOrdersForShop)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) ListMedicines(c echo.Context) error {
	f := MedicineFilter{Query: c.QueryParam("q")}
	if s := c.QueryParam("shop_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid shop_id")
		}
		f.ShopID = &id
	}
	p := pagination.FromContext(c)
	meds, total, err := h.svc.ListMedicines(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(meds, total, p))
}

func (h *Handler) ListMedicinesByShop(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	meds, total, err := h.svc.ListMedicinesByShop(c.Request().Context(), id, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(meds, total, p))
}

func (h *Handler) AddMedicine(c echo.Context) error {
	var req AddMedicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := auth.RequireSelf(c.Request().Context(), req.ShopID.String()); err != nil {
		return err
	}
	m, err := h.svc.AddMedicine(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := auth.RequireSelf(c.Request().Context(), req.PatientID.String()); err != nil {
		return err
	}
	res, err := h.svc.PlaceOrder(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListAllOrders(c echo.Context) error {
	p := pagination.FromContext(c)
	orders, total, err := h.svc.ListAllOrders(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, p))
}

func (h *Handler) ListOrdersForPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.Request().Context(), id.String()); err != nil {
		return err
	}
	p := pagination.FromContext(c)
	orders, total, err := h.svc.ListOrdersForPatient(c.Request().Context(), id, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, p))
}

func (h *Handler) ListOrdersForShop(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.Request().Context(), id.String()); err != nil {
		return err
	}
	p := pagination.FromContext(c)
	orders, total, err := h.svc.ListOrdersForShop(c.Request().Context(), id, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, p))
}

func mapError(err error) error {
	var verr *identity.ValidationError
	switch {
	case errors.Is(err, ErrShopNotFound), errors.Is(err, ErrMedicineNotFound), errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAddressRequired), errors.Is(err, ErrInvalidUTR), errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrBelowMinimumQuantity), errors.Is(err, ErrInvalidMedicineFields), errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
