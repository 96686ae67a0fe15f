package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/platform/auth"
	"github.com/Sid145V/medical-assistant/internal/platform/db"
	"github.com/Sid145V/medical-assistant/internal/platform/telemetry"
)

// TokenIssuer signs access tokens; *auth.TokenIssuer implements it.
type TokenIssuer interface {
	Issue(userID, role string) (string, time.Time, error)
}

// PasswordHasher is implemented by *auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// Session is returned by login and signup.
type Session struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignupRequest carries the new account's role, password and profile fields.
type SignupRequest struct {
	Role     Role   `json:"role"`
	Password string `json:"password"`
	UserUpdate
}

type Service struct {
	users   UserRepository
	creds   CredentialRepository
	tx      db.TxRunner
	hasher  PasswordHasher
	tokens  TokenIssuer
	metrics *telemetry.Metrics
}

func NewService(users UserRepository, creds CredentialRepository, tx db.TxRunner, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, creds: creds, tx: tx, hasher: hasher, tokens: tokens}
}

// SetMetrics attaches optional login counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

func (s *Service) Login(ctx context.Context, identifier, password string, role Role) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	u, err := s.users.FindByIdentifier(ctx, identifier)
	if errors.Is(err, ErrNotFound) || (err == nil && u.Role != role) {
		s.metrics.AuthAttempt("unknown_account")
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	hash, err := s.creds.GetPasswordHash(ctx, u.ID)
	if errors.Is(err, ErrNotFound) {
		s.metrics.AuthAttempt("bad_password")
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(hash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.AuthAttempt("bad_password")
		return nil, ErrInvalidPassword
	}

	s.metrics.AuthAttempt("success")
	return s.session(u)
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	if req.Role == RoleAdmin {
		return nil, ErrAdminSignup
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	u := &User{ID: uuid.New(), Role: req.Role}
	req.UserUpdate.Apply(u)
	u.Email = strings.TrimSpace(u.Email)
	u.Phone = strings.TrimSpace(u.Phone)
	if err := validateProfile(u); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		inUse, err := s.users.ContactInUse(ctx, u.Email, u.Phone, uuid.Nil)
		if err != nil {
			return err
		}
		if inUse {
			return ErrContactInUse
		}
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		return s.creds.SetPasswordHash(ctx, u.ID, hash)
	})
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *Service) session(u *User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID.String(), string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: exp}, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, patch *UserUpdate) (*User, error) {
	var updated *User
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		patch.Apply(u)
		u.Email = strings.TrimSpace(u.Email)
		u.Phone = strings.TrimSpace(u.Phone)
		if err := validateProfile(u); err != nil {
			return err
		}
		if patch.Email != nil || patch.Phone != nil {
			inUse, err := s.users.ContactInUse(ctx, u.Email, u.Phone, u.ID)
			if err != nil {
				return err
			}
			if inUse {
				return ErrContactInUse
			}
		}
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetAddress stores the delivery address on a user's profile.
func (s *Service) SetAddress(ctx context.Context, id uuid.UUID, a Address) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.users.SetAddress(ctx, id, a)
}

func (s *Service) ListPatients(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, RolePatient, f, limit, offset)
}

func (s *Service) ListDoctors(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, RoleDoctor, f, limit, offset)
}

func (s *Service) ListShops(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, RoleShop, f, limit, offset)
}

// EnsureAccount creates u with password unless an account with its id
// already exists. It reports whether the account was created.
func (s *Service) EnsureAccount(ctx context.Context, u *User, password string) (bool, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	var created bool
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.users.CreateIfAbsent(ctx, u)
		if err != nil || !ok {
			return err
		}
		created = true
		return s.creds.SetPasswordHash(ctx, u.ID, hash)
	})
	return created, err
}

type requiredField struct {
	name  string
	value *string
}

func validateProfile(u *User) error {
	if u.Email == "" && u.Phone == "" && u.Role != RoleAdmin {
		return ErrContactRequired
	}

	var required []requiredField
	switch u.Role {
	case RolePatient:
		required = []requiredField{{"first_name", u.FirstName}, {"last_name", u.LastName}, {"location", u.Location}}
	case RoleDoctor:
		required = []requiredField{{"name", u.Name}, {"qualification", u.Qualification}, {"location", u.Location}}
	case RoleShop:
		required = []requiredField{{"shop_name", u.ShopName}, {"owner_name", u.OwnerName}, {"license", u.License}, {"location", u.Location}}
	}
	for _, f := range required {
		if strings.TrimSpace(deref(f.value)) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
	}

	switch u.Role {
	case RolePatient:
		if u.Age == nil || *u.Age <= 0 || *u.Age > 150 {
			return &ValidationError{Field: "age", Reason: "must be between 1 and 150"}
		}
		switch deref(u.Gender) {
		case "male", "female", "other":
		default:
			return &ValidationError{Field: "gender", Reason: "must be male, female or other"}
		}
	case RoleDoctor:
		if u.Experience == nil || *u.Experience < 0 {
			return &ValidationError{Field: "experience", Reason: "must be zero or more years"}
		}
	case RoleShop:
		if u.YearsActive == nil || *u.YearsActive < 0 {
			return &ValidationError{Field: "years_active", Reason: "must be zero or more years"}
		}
	}

	if u.Address != nil {
		return u.Address.Validate()
	}
	return nil
}
