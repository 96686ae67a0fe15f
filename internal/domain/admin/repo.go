package admin

import (
	"context"
	"fmt"

	"github.com/Sid145V/medical-assistant/internal/platform/db"
)

type StatsRepository interface {
	UserCounts(ctx context.Context) (map[string]int, error)
	AppointmentCounts(ctx context.Context) (map[string]int, error)
	OrderTotals(ctx context.Context) (count int, revenue float64, err error)
	MessageCount(ctx context.Context) (int, error)
}

type statsRepoPG struct {
	pool db.Pool
}

func NewStatsRepo(pool db.Pool) StatsRepository {
	return &statsRepoPG{pool: pool}
}

func (r *statsRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *statsRepoPG) groupCount(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *statsRepoPG) UserCounts(ctx context.Context) (map[string]int, error) {
	out, err := r.groupCount(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	return out, nil
}

func (r *statsRepoPG) AppointmentCounts(ctx context.Context) (map[string]int, error) {
	out, err := r.groupCount(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	return out, nil
}

func (r *statsRepoPG) OrderTotals(ctx context.Context) (int, float64, error) {
	var count int
	var revenue float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0)::float8 FROM orders`).Scan(&count, &revenue)
	if err != nil {
		return 0, 0, fmt.Errorf("sum orders: %w", err)
	}
	return count, revenue, nil
}

func (r *statsRepoPG) MessageCount(ctx context.Context) (int, error) {
	var n int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}
