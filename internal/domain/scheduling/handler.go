package scheduling

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
	api.GET("/doctors/:id/slots", h.DoctorSlots)

	api.POST("/appointments", h.Book, auth.RequireRole("patient"))
	api.GET("/appointments", h.ListAll, auth.RequireRole("admin"))
	api.GET("/appointments/export", h.ExportCSV, auth.RequireRole("admin"))
	api.POST("/appointments/:id/cancel", h.Cancel, auth.RequireRole("patient"))
	api.PUT("/appointments/:id/status", h.UpdateStatus, auth.RequireRole("doctor"))

	api.GET("/patients/:id/appointments", h.ListForPatient)
	api.GET("/patients/:id/history", h.PatientHistory)
	api.GET("/doctors/:id/appointments", h.ListForDoctor)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Book(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id and doctor_id are required")
	}
	if err := auth.RequireSelf(c.Request().Context(), req.PatientID.String()); err != nil {
		return err
	}
	appt, err := h.svc.Book(c.Request().Context(), &req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	appt, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.RequireSelf(ctx, appt.PatientID.String()); err != nil {
		return err
	}
	appt, err = h.svc.Cancel(ctx, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

type statusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	appt, err := h.svc.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if err := auth.RequireSelf(ctx, appt.DoctorID.String()); err != nil {
		return err
	}
	appt, err = h.svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func adminFilter(c echo.Context) (ListFilter, error) {
	f := ListFilter{
		Query:  c.QueryParam("q"),
		Status: Status(c.QueryParam("status")),
	}
	if d := c.QueryParam("doctor_id"); d != "" {
		id, err := uuid.Parse(d)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	return f, nil
}

func (h *Handler) ListAll(c echo.Context) error {
	f, err := adminFilter(c)
	if err != nil {
		return err
	}
	p := pagination.FromContext(c)
	appts, total, err := h.svc.ListAll(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p))
}

func (h *Handler) ExportCSV(c echo.Context) error {
	f, err := adminFilter(c)
	if err != nil {
		return err
	}
	data, err := h.svc.ExportCSV(c.Request().Context(), f)
	if err != nil {
		return mapError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="appointments.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *Handler) DoctorSlots(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	slots, err := h.svc.DoctorSlots(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.Request().Context(), id.String()); err != nil {
		return err
	}
	p := pagination.FromContext(c)
	appts, total, err := h.svc.ListForPatient(c.Request().Context(), id, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p))
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.Request().Context(), id.String()); err != nil {
		return err
	}
	p := pagination.FromContext(c)
	appts, total, err := h.svc.ListForDoctor(c.Request().Context(), id, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, p))
}

// PatientHistory is open to the patient, admins and any doctor.
func (h *Handler) PatientHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if !auth.CanActFor(ctx, id.String()) && !auth.HasAnyRole(ctx, "doctor") {
		return echo.NewHTTPError(http.StatusForbidden, "not allowed to view this history")
	}
	items, err := h.svc.PatientHistory(ctx, id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrParticipantNotFound), errors.Is(err, ErrNotFound), errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrTooClose), errors.Is(err, ErrNotCancellable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
