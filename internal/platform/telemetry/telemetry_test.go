package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/doctors/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "taken")
	})

	for _, path := range []string{"/api/v1/doctors/a", "/api/v1/doctors/b", "/boom"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/doctors/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/boom", "409")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.AppointmentBooked()
	m.BookingConflict(ConflictSlotTaken)
	m.BookingConflict(ConflictSlotTaken)
	m.OrderPlaced("upi")
	m.ChatRequest("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.appointmentsBooked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingConflicts.WithLabelValues(ConflictSlotTaken)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced.WithLabelValues("upi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatRequests.WithLabelValues("ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AppointmentBooked()
		m.BookingConflict(ConflictGapTooSmall)
		m.AppointmentStatusChanged("cancelled")
		m.OrderPlaced("cod")
		m.ChatRequest("fallback")
		m.AuthAttempt("failure")
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.AppointmentBooked()

	e := echo.New()
	e.GET("/metrics", m.Handler())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "medassist_appointments_booked_total 1"))
}
