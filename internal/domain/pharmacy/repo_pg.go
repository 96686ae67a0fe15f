package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sid145V/medical-assistant/internal/platform/db"
)

type medicineRepoPG struct {
	pool db.Pool
}

func NewMedicineRepo(pool db.Pool) MedicineRepository {
	return &medicineRepoPG{pool: pool}
}

func (r *medicineRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const medCols = `id, shop_id, shop_name, name, price::float8, min_order_quantity, image, date_added::text`

const medInsert = `INSERT INTO medicines (id, shop_id, shop_name, name, price, min_order_quantity, image, date_added)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date)`

func medArgs(m *Medicine) []interface{} {
	return []interface{}{m.ID, m.ShopID, m.ShopName, m.Name, m.Price, m.MinOrderQuantity, m.Image, m.DateAdded}
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if _, err := r.conn(ctx).Exec(ctx, medInsert, medArgs(m)...); err != nil {
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

func (r *medicineRepoPG) CreateIfAbsent(ctx context.Context, m *Medicine) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, medInsert+` ON CONFLICT (id) DO NOTHING`, medArgs(m)...)
	if err != nil {
		return false, fmt.Errorf("insert medicine: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medicines WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMedicineNotFound
	}
	return m, err
}

func (r *medicineRepoPG) List(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.ShopID != nil {
		where += fmt.Sprintf(` AND shop_id = $%d`, idx)
		args = append(args, *f.ShopID)
		idx++
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR shop_name ILIKE $%d)`, idx, idx)
		args = append(args, db.ContainsPattern(q))
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicines`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medicines: %w", err)
	}

	query := `SELECT ` + medCols + ` FROM medicines` + where + ` ORDER BY created_at, id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, limit, offset)
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var out []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	if err := row.Scan(&m.ID, &m.ShopID, &m.ShopName, &m.Name, &m.Price, &m.MinOrderQuantity, &m.Image, &m.DateAdded); err != nil {
		return nil, err
	}
	return &m, nil
}

type orderRepoPG struct {
	pool db.Pool
}

func NewOrderRepo(pool db.Pool) OrderRepository {
	return &orderRepoPG{pool: pool}
}

func (r *orderRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const orderCols = `id, patient_id, patient_name, shop_id, shop_name, medicine_id, medicine_name,
	quantity, total_price::float8, address, payment_method, utr, created_at`

func (r *orderRepoPG) Create(ctx context.Context, o *Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO orders (
			id, patient_id, patient_name, shop_id, shop_name, medicine_id, medicine_name,
			quantity, total_price, address, payment_method, utr
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		o.ID, o.PatientID, o.PatientName, o.ShopID, o.ShopName, o.MedicineID, o.MedicineName,
		o.Quantity, o.TotalPrice, o.Address, string(o.PaymentMethod), o.UTR,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepoPG) List(ctx context.Context, f OrderFilter, limit, offset int) ([]*Order, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.PatientID != nil {
		where += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.ShopID != nil {
		where += fmt.Sprintf(` AND shop_id = $%d`, idx)
		args = append(args, *f.ShopID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderCols + ` FROM orders` + where + ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
		args = append(args, limit, offset)
	}
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		var o Order
		var method string
		if err := rows.Scan(
			&o.ID, &o.PatientID, &o.PatientName, &o.ShopID, &o.ShopName, &o.MedicineID, &o.MedicineName,
			&o.Quantity, &o.TotalPrice, &o.Address, &method, &o.UTR, &o.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		o.PaymentMethod = PaymentMethod(method)
		out = append(out, &o)
	}
	return out, total, rows.Err()
}
