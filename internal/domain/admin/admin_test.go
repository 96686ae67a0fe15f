package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	users   map[string]int
	appts   map[string]int
	orders  int
	revenue float64
	msgs    int
	err     error
}

func (s *stubStats) UserCounts(context.Context) (map[string]int, error) { return s.users, s.err }

func (s *stubStats) AppointmentCounts(context.Context) (map[string]int, error) { return s.appts, nil }

func (s *stubStats) OrderTotals(context.Context) (int, float64, error) { return s.orders, s.revenue, nil }

func (s *stubStats) MessageCount(context.Context) (int, error) { return s.msgs, nil }

func TestService_Dashboard(t *testing.T) {
	svc := NewService(&stubStats{
		users:   map[string]int{"admin": 1, "patient": 3, "doctor": 20, "shop": 1},
		appts:   map[string]int{"booked": 4, "cancelled": 1},
		orders:  2,
		revenue: 43.489999,
		msgs:    5,
	})

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Patients)
	assert.Equal(t, 20, d.Doctors)
	assert.Equal(t, 1, d.Shops)
	assert.Equal(t, 5, d.Messages)
	assert.Equal(t, 5, d.Appointments)
	assert.Equal(t, 0, d.ByStatus["accepted"])
	assert.Len(t, d.ByStatus, 5)
	assert.Equal(t, 43.49, d.OrderRevenue)
}

func TestHandler_Dashboard_Error(t *testing.T) {
	h := NewHandler(NewService(&stubStats{err: errors.New("db down")}))
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := h.Dashboard(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.Code)
}

func TestStatsRepo(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT role, COUNT\(\*\) FROM users GROUP BY role`).
		WillReturnRows(pgxmock.NewRows([]string{"role", "count"}).AddRow("doctor", 20).AddRow("patient", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(total_price\), 0\)::float8 FROM orders`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "sum"}).AddRow(2, 24.5))

	repo := NewStatsRepo(mock)
	users, err := repo.UserCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"doctor": 20, "patient": 1}, users)

	n, revenue, err := repo.OrderTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 24.5, revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
