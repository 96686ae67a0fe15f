package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Active reports whether an appointment in this status still holds its slot.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusRejected
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrParticipantNotFound = errors.New("Patient or Doctor not found")
	ErrInvalidSlot         = errors.New("Invalid date or time provided.")
	ErrSlotTaken           = errors.New("Slot already booked. Please choose another time.")
	ErrTooClose            = errors.New("Please select a slot at least 15 minutes apart from other bookings.")
	ErrNotFound            = errors.New("Appointment not found")
	ErrNotCancellable      = errors.New("Only booked appointments can be cancelled.")
	ErrInvalidStatus       = errors.New("invalid appointment status")
	ErrDoctorNotFound      = errors.New("doctor not found")
)

// GapError rejects an appointment starting within Gap of another active one.
// It matches ErrTooClose under errors.Is.
type GapError struct {
	Gap time.Duration
}

func (e *GapError) Error() string {
	return fmt.Sprintf("Please select a slot at least %d minutes apart from other bookings.", int(e.Gap/time.Minute))
}

func (e *GapError) Is(target error) bool {
	return target == ErrTooClose
}

type Appointment struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	PatientID            uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName          string     `db:"patient_name" json:"patient_name"`
	PatientEmail         string     `db:"patient_email" json:"patient_email"`
	DoctorID             uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DoctorName           string     `db:"doctor_name" json:"doctor_name"`
	DoctorSpecialization string     `db:"doctor_specialization" json:"doctor_specialization"`
	Date                 string     `db:"appt_date" json:"date"`
	Time                 string     `db:"appt_time" json:"time"`
	ScheduledAt          time.Time  `db:"scheduled_at" json:"scheduled_at"`
	Status               Status     `db:"status" json:"status"`
	CreatedAt            *time.Time `db:"created_at" json:"created_at,omitempty"`

	// Set only on admin listings.
	PatientAddress string `json:"patient_address,omitempty"`
	DoctorAddress  string `json:"doctor_address,omitempty"`
}

// Participants is the live profile data joined onto an appointment for the
// admin view. Fields are empty when the user no longer exists.
type Participants struct {
	PatientEmail         string
	PatientAddress       *identity.Address
	DoctorSpecialization string
	DoctorQualification  string
	DoctorLocation       string
}

// EnrichedAppointment pairs a stored appointment with its participants.
type EnrichedAppointment struct {
	Appointment  *Appointment
	Participants Participants
}

const notAvailable = "N/A"

// Enrich fills the admin-only fields, preferring stored values and falling
// back to live profile data and then "N/A". A missing creation time is
// reported as the day before the appointment.
func Enrich(e *EnrichedAppointment) *Appointment {
	a := *e.Appointment
	p := e.Participants

	a.PatientEmail = firstNonEmpty(a.PatientEmail, p.PatientEmail, notAvailable)
	a.DoctorSpecialization = firstNonEmpty(a.DoctorSpecialization, p.DoctorSpecialization, p.DoctorQualification, notAvailable)
	a.PatientAddress = notAvailable
	if p.PatientAddress != nil {
		a.PatientAddress = identity.FormatAddress(*p.PatientAddress)
	}
	a.DoctorAddress = firstNonEmpty(p.DoctorLocation, notAvailable)
	if a.CreatedAt == nil {
		if d, err := time.Parse(DateLayout, a.Date); err == nil {
			created := d.Add(-24 * time.Hour)
			a.CreatedAt = &created
		}
	}
	return &a
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type Slot struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`
}

const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

type HistoryItem struct {
	ID         uuid.UUID `json:"id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	DoctorName string    `json:"doctor_name"`
	Summary    string    `json:"summary"`
}

// BookRequest is the input to Service.Book.
type BookRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientName string    `json:"patient_name"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
}

// ListFilter narrows the admin appointment listing.
type ListFilter struct {
	// Query matches patient name, doctor name, date or time, case-insensitively.
	Query    string
	Status   Status
	DoctorID *uuid.UUID
}
