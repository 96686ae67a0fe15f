package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sid145V/medical-assistant/internal/platform/db"
)

// contactKeys are the unique indexes behind ErrContactInUse.
var contactKeys = []string{"users_email_key", "users_phone_key"}

// -- User Repository --

type userRepoPG struct {
	pool db.Pool
}

func NewUserRepo(pool db.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, role, email, phone, username,
	first_name, last_name, age, gender,
	name, qualification, specialization, experience, image,
	shop_name, owner_name, years_active,
	location, license, address, created_at, updated_at`

func userArgs(u *User) []interface{} {
	return []interface{}{
		u.ID, string(u.Role), u.Email, u.Phone, u.Username,
		u.FirstName, u.LastName, u.Age, u.Gender,
		u.Name, u.Qualification, u.Specialization, u.Experience, u.Image,
		u.ShopName, u.OwnerName, u.YearsActive,
		u.Location, u.License, u.Address,
	}
}

const userInsert = `
	INSERT INTO users (
		id, role, email, phone, username,
		first_name, last_name, age, gender,
		name, qualification, specialization, experience, image,
		shop_name, owner_name, years_active,
		location, license, address
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16, $17,
		$18, $19, $20
	)`

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, userInsert+` RETURNING created_at, updated_at`, userArgs(u)...).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err, contactKeys...) {
		return ErrContactInUse
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepoPG) CreateIfAbsent(ctx context.Context, u *User) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, userInsert+` ON CONFLICT (id) DO NOTHING`, userArgs(u)...)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users
		WHERE (role = 'admin' AND username = $1)
		   OR (role <> 'admin' AND $1 <> '' AND (email = $1 OR phone = $1))
		ORDER BY created_at
		LIMIT 1`, identifier))
}

func (r *userRepoPG) ContactInUse(ctx context.Context, email, phone string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM users
		WHERE id <> $3 AND ((email = $1 AND $1 <> '') OR (phone = $2 AND $2 <> ''))
	)`, email, phone, exclude).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check contact: %w", err)
	}
	return exists, nil
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			email = $2, phone = $3,
			first_name = $4, last_name = $5, age = $6, gender = $7,
			name = $8, qualification = $9, specialization = $10, experience = $11, image = $12,
			shop_name = $13, owner_name = $14, years_active = $15,
			location = $16, license = $17, address = $18, updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.Phone,
		u.FirstName, u.LastName, u.Age, u.Gender,
		u.Name, u.Qualification, u.Specialization, u.Experience, u.Image,
		u.ShopName, u.OwnerName, u.YearsActive,
		u.Location, u.License, u.Address,
	)
	if db.IsUniqueViolation(err, contactKeys...) {
		return ErrContactInUse
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) SetAddress(ctx context.Context, id uuid.UUID, a Address) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET address = $2, updated_at = NOW() WHERE id = $1`, id, a)
	if err != nil {
		return fmt.Errorf("set address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepoPG) ListByRole(ctx context.Context, role Role, f ListFilter, limit, offset int) ([]*User, int, error) {
	where := ` WHERE role = $1`
	args := []interface{}{string(role)}
	idx := 2

	if f.Location != "" {
		where += fmt.Sprintf(` AND location ILIKE $%d`, idx)
		args = append(args, db.ContainsPattern(f.Location))
		idx++
	}
	if f.Specialization != "" {
		where += fmt.Sprintf(` AND specialization ILIKE $%d`, idx)
		args = append(args, db.ContainsPattern(f.Specialization))
		idx++
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where += fmt.Sprintf(` AND (COALESCE(name, '') || ' ' || COALESCE(first_name, '') || ' ' ||
			COALESCE(last_name, '') || ' ' || COALESCE(shop_name, '')) ILIKE $%d`, idx)
		args = append(args, db.ContainsPattern(q))
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userCols + ` FROM users` + where +
		fmt.Sprintf(` ORDER BY created_at, id LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(
		&u.ID, &role, &u.Email, &u.Phone, &u.Username,
		&u.FirstName, &u.LastName, &u.Age, &u.Gender,
		&u.Name, &u.Qualification, &u.Specialization, &u.Experience, &u.Image,
		&u.ShopName, &u.OwnerName, &u.YearsActive,
		&u.Location, &u.License, &u.Address, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	return &u, nil
}

// -- Credential Repository --

type credentialRepoPG struct {
	pool db.Pool
}

func NewCredentialRepo(pool db.Pool) CredentialRepository {
	return &credentialRepoPG{pool: pool}
}

func (r *credentialRepoPG) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO user_credentials (user_id, password_hash) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()`,
		userID, hash)
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (r *credentialRepoPG) GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error) {
	var hash string
	err := db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT password_hash FROM user_credentials WHERE user_id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return hash, nil
}
