package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists marketplace accounts of every role.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// CreateIfAbsent inserts u unless its id exists and reports whether it did.
	CreateIfAbsent(ctx context.Context, u *User) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByIdentifier matches an admin by username and anyone else by email or phone.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	// ContactInUse reports whether another user has the given email or phone.
	ContactInUse(ctx context.Context, email, phone string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, u *User) error
	SetAddress(ctx context.Context, id uuid.UUID, a Address) error
	ListByRole(ctx context.Context, role Role, f ListFilter, limit, offset int) ([]*User, int, error)
}

// CredentialRepository stores password hashes apart from profiles.
type CredentialRepository interface {
	SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	GetPasswordHash(ctx context.Context, userID uuid.UUID) (string, error)
}
