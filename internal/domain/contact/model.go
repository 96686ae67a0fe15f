package contact

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMissingFields = errors.New("name, email and message are required")

// Message is a public contact-form submission shown in the admin inbox.
type Message struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
