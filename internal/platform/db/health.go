package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

// Health is the body of GET /health/db.
type Health struct {
	Status  string     `json:"status"`
	Error   string     `json:"error,omitempty"`
	Latency string     `json:"latency"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// StatsProvider is satisfied by *pgxpool.Pool.
type StatsProvider interface {
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
}

func GetPoolStats(pool StatsProvider) *PoolStats {
	stat := pool.Stat()
	if stat == nil {
		return nil
	}
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// CheckHealth pings the database within timeout. Pool stats are only
// reported for a reachable database.
func CheckHealth(ctx context.Context, pool StatsProvider, timeout time.Duration) Health {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := pool.Ping(ctx)
	h := Health{Latency: time.Since(start).String()}
	if err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
		return h
	}
	h.Status = "healthy"
	h.Pool = GetPoolStats(pool)
	return h
}

// HealthHandler serves CheckHealth with a 5s budget, answering 503 when the
// database is down.
func HealthHandler(pool StatsProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := CheckHealth(c.Request().Context(), pool, 5*time.Second)
		if h.Status != "healthy" {
			return c.JSON(http.StatusServiceUnavailable, h)
		}
		return c.JSON(http.StatusOK, h)
	}
}
