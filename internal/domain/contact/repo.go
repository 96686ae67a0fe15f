package contact

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/platform/db"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// List returns messages newest first.
	List(ctx context.Context, limit, offset int) ([]*Message, int, error)
}

type messageRepoPG struct {
	pool db.Pool
}

func NewMessageRepo(pool db.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		m.ID, m.Name, m.Email, m.Phone, m.Message,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

func (r *messageRepoPG) List(ctx context.Context, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, email, phone, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Message, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan contact message: %w", err)
		}
		out = append(out, &m)
	}
	return out, total, rows.Err()
}
