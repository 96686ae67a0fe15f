package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	emailDup := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	tests := []struct {
		name        string
		err         error
		constraints []string
		want        bool
	}{
		{"wrapped violation", emailDup, nil, true},
		{"matching constraint", emailDup, []string{"users_phone_key", "users_email_key"}, true},
		{"other constraint", emailDup, []string{"appointments_doctor_slot_key"}, false},
		{"other pg error", &pgconn.PgError{Code: "23503"}, nil, false},
		{"plain error", errors.New("boom"), nil, false},
		{"nil", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraints...))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%kolar%", ContainsPattern("kolar"))
	assert.Equal(t, `%\_%`, ContainsPattern("_"))
	assert.Equal(t, `%50\%%`, ContainsPattern("50%"))
	assert.Equal(t, `%a\\b%`, ContainsPattern(`a\b`))
}
