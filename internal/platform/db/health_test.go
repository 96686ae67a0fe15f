package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type downPool struct{}

func (downPool) Ping(context.Context) error { return errors.New("connection refused") }
func (downPool) Stat() *pgxpool.Stat        { return nil }

func TestHealthHandler_Unhealthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(downPool{})(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body Health
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "unhealthy" {
		t.Errorf("expected status unhealthy, got %q", body.Status)
	}
	if body.Error != "connection refused" {
		t.Errorf("expected ping error in body, got %q", body.Error)
	}
	if body.Pool != nil {
		t.Error("expected no pool stats when unhealthy")
	}
}

type upPool struct{}

func (upPool) Ping(context.Context) error { return nil }
func (upPool) Stat() *pgxpool.Stat        { return nil }

func TestCheckHealth_Healthy(t *testing.T) {
	h := CheckHealth(context.Background(), upPool{}, time.Second)
	if h.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", h.Status)
	}
	if h.Error != "" {
		t.Errorf("expected no error, got %q", h.Error)
	}
	if h.Latency == "" {
		t.Error("expected ping latency to be reported")
	}
}
