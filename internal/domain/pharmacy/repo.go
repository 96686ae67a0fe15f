package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type MedicineRepository interface {
	Create(ctx context.Context, m *Medicine) error
	// CreateIfAbsent inserts m unless its id exists and reports whether it did.
	CreateIfAbsent(ctx context.Context, m *Medicine) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	List(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	List(ctx context.Context, f OrderFilter, limit, offset int) ([]*Order, int, error)
}
