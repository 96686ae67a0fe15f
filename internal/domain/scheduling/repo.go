package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments. List methods treat a
// non-positive limit as "no limit".
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// ListActiveNear returns active appointments of any doctor starting
	// strictly within window of at.
	ListActiveNear(ctx context.Context, at time.Time, window time.Duration) ([]*Appointment, error)
	// ListActiveForDoctor returns a doctor's active appointments dated from..to inclusive.
	ListActiveForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListEnriched(ctx context.Context, f ListFilter, limit, offset int) ([]*EnrichedAppointment, int, error)
}
