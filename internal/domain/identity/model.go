package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleShop    Role = "shop"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePatient, RoleDoctor, RoleShop:
		return true
	}
	return false
}

var (
	ErrAccountNotFound = errors.New("Account not found. Please sign up.")
	ErrInvalidPassword = errors.New("Invalid password.")
	ErrContactInUse    = errors.New("Email or phone already in use. Please log in.")
	ErrNotFound        = errors.New("user not found")
	ErrInvalidRole     = errors.New("invalid role")
	ErrAdminSignup     = errors.New("admin accounts cannot be created through signup")
	ErrContactRequired = errors.New("email or phone is required")
)

// ValidationError reports a missing or malformed user field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

type Address struct {
	FullName string  `json:"full_name"`
	Building string  `json:"building"`
	Street   string  `json:"street"`
	City     string  `json:"city"`
	Pincode  string  `json:"pincode"`
	Landmark *string `json:"landmark,omitempty"`
	Phone    string  `json:"phone"`
}

// Validate requires every field except landmark.
func (a *Address) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"address.full_name", a.FullName},
		{"address.building", a.Building},
		{"address.street", a.Street},
		{"address.city", a.City},
		{"address.pincode", a.Pincode},
		{"address.phone", a.Phone},
	} {
		if strings.TrimSpace(f.v) == "" {
			return &ValidationError{Field: f.name, Reason: "is required"}
		}
	}
	return nil
}

// FormatAddress renders an address as a single delivery line.
func FormatAddress(a Address) string {
	s := a.FullName + ", " + a.Building + ", " + a.Street + ", " + a.City + ", " + a.Pincode
	if a.Landmark != nil && *a.Landmark != "" {
		s += ", " + *a.Landmark
	}
	return s
}

// User is any marketplace account. Only the fields belonging to Role are set.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Role      Role      `db:"role" json:"role"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// admin
	Username *string `db:"username" json:"username,omitempty"`

	// patient
	FirstName *string `db:"first_name" json:"first_name,omitempty"`
	LastName  *string `db:"last_name" json:"last_name,omitempty"`
	Age       *int    `db:"age" json:"age,omitempty"`
	Gender    *string `db:"gender" json:"gender,omitempty"`

	// doctor
	Name           *string `db:"name" json:"name,omitempty"`
	Qualification  *string `db:"qualification" json:"qualification,omitempty"`
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	Experience     *int    `db:"experience" json:"experience,omitempty"`
	Image          *string `db:"image" json:"image,omitempty"`

	// shop
	ShopName    *string `db:"shop_name" json:"shop_name,omitempty"`
	OwnerName   *string `db:"owner_name" json:"owner_name,omitempty"`
	YearsActive *int    `db:"years_active" json:"years_active,omitempty"`

	// shared by several roles
	Location *string  `db:"location" json:"location,omitempty"`
	License  *string  `db:"license" json:"license,omitempty"`
	Address  *Address `db:"address" json:"address,omitempty"`
}

// DisplayName is the human name shown on appointments, orders and lists.
func (u *User) DisplayName() string {
	switch u.Role {
	case RolePatient:
		return strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
	case RoleDoctor:
		return deref(u.Name)
	case RoleShop:
		return deref(u.ShopName)
	case RoleAdmin:
		return deref(u.Username)
	}
	return ""
}

// SpecializationOrQualification is what appointments record for a doctor.
func (u *User) SpecializationOrQualification() string {
	if s := deref(u.Specialization); s != "" {
		return s
	}
	return deref(u.Qualification)
}

// UserUpdate is a partial update. Nil fields are left unchanged; role and id
// are not part of it.
type UserUpdate struct {
	Email          *string  `json:"email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	FirstName      *string  `json:"first_name,omitempty"`
	LastName       *string  `json:"last_name,omitempty"`
	Age            *int     `json:"age,omitempty"`
	Gender         *string  `json:"gender,omitempty"`
	Name           *string  `json:"name,omitempty"`
	Qualification  *string  `json:"qualification,omitempty"`
	Specialization *string  `json:"specialization,omitempty"`
	Experience     *int     `json:"experience,omitempty"`
	Image          *string  `json:"image,omitempty"`
	ShopName       *string  `json:"shop_name,omitempty"`
	OwnerName      *string  `json:"owner_name,omitempty"`
	YearsActive    *int     `json:"years_active,omitempty"`
	Location       *string  `json:"location,omitempty"`
	License        *string  `json:"license,omitempty"`
	Address        *Address `json:"address,omitempty"`
}

// Apply merges the patch over u.
func (p *UserUpdate) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	setStr(&u.FirstName, p.FirstName)
	setStr(&u.LastName, p.LastName)
	setInt(&u.Age, p.Age)
	setStr(&u.Gender, p.Gender)
	setStr(&u.Name, p.Name)
	setStr(&u.Qualification, p.Qualification)
	setStr(&u.Specialization, p.Specialization)
	setInt(&u.Experience, p.Experience)
	setStr(&u.Image, p.Image)
	setStr(&u.ShopName, p.ShopName)
	setStr(&u.OwnerName, p.OwnerName)
	setInt(&u.YearsActive, p.YearsActive)
	setStr(&u.Location, p.Location)
	setStr(&u.License, p.License)
	if p.Address != nil {
		a := *p.Address
		u.Address = &a
	}
}

// ListFilter narrows a role listing. Empty fields match everything.
type ListFilter struct {
	Location       string
	Specialization string
	Query          string
}

func setStr(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}

func setInt(dst **int, v *int) {
	if v != nil {
		n := *v
		*dst = &n
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
