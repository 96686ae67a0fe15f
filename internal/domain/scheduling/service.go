package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/platform/db"
	"github.com/Sid145V/medical-assistant/internal/platform/telemetry"
)

// bookingLockKey serializes all bookings: the gap rule spans every doctor.
const bookingLockKey int64 = 0x6d65645f626f6f6b

// UserLookup resolves participants; *identity.Service implements it.
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// Options configures the booking and slot rules.
type Options struct {
	// Gap is the minimum distance between any two active appointments.
	Gap       time.Duration
	Location  *time.Location
	SlotDays  int
	SlotTimes []string
}

func DefaultOptions() Options {
	return Options{
		Gap:       15 * time.Minute,
		Location:  time.UTC,
		SlotDays:  5,
		SlotTimes: []string{"10:00", "11:00", "14:00"},
	}
}

type Service struct {
	appts   AppointmentRepository
	users   UserLookup
	tx      db.TxRunner
	opts    Options
	metrics *telemetry.Metrics

	lock func(ctx context.Context) error
	now  func() time.Time
}

func NewService(appts AppointmentRepository, users UserLookup, tx db.TxRunner, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		appts: appts,
		users: users,
		tx:    tx,
		opts:  opts,
		lock: func(ctx context.Context) error {
			return db.AdvisoryXactLock(ctx, bookingLockKey)
		},
		now: time.Now,
	}
}

// SetMetrics attaches optional booking counters.
func (s *Service) SetMetrics(m *telemetry.Metrics) {
	s.metrics = m
}

func (s *Service) participant(ctx context.Context, id uuid.UUID, role identity.Role) (*identity.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if errors.Is(err, identity.ErrNotFound) || (err == nil && u.Role != role) {
		return nil, ErrParticipantNotFound
	}
	return u, err
}

// parseSlot interprets a YYYY-MM-DD date and HH:MM time in the service's zone.
func (s *Service) parseSlot(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, s.opts.Location)
	if err != nil {
		return time.Time{}, ErrInvalidSlot
	}
	return t, nil
}

// Book reserves a slot. The same doctor may not be booked twice at one
// date and time, and no two active appointments of any doctors may start
// less than the configured gap apart.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Appointment, error) {
	patient, err := s.participant(ctx, req.PatientID, identity.RolePatient)
	if err != nil {
		return nil, err
	}
	doctor, err := s.participant(ctx, req.DoctorID, identity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	at, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	patientName := strings.TrimSpace(req.PatientName)
	if patientName == "" {
		patientName = patient.DisplayName()
	}
	appt := &Appointment{
		ID:                   uuid.New(),
		PatientID:            patient.ID,
		PatientName:          patientName,
		PatientEmail:         patient.Email,
		DoctorID:             doctor.ID,
		DoctorName:           doctor.DisplayName(),
		DoctorSpecialization: doctor.SpecializationOrQualification(),
		Date:                 at.Format(DateLayout),
		Time:                 at.Format(TimeLayout),
		ScheduledAt:          at,
		Status:               StatusBooked,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.lock(ctx); err != nil {
			return err
		}
		nearby, err := s.appts.ListActiveNear(ctx, at, s.opts.Gap)
		if err != nil {
			return err
		}
		if err := s.checkConflicts(appt, nearby); err != nil {
			return err
		}
		return s.appts.Create(ctx, appt)
	})
	s.recordConflict(err)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentBooked()
	return appt, nil
}

// checkConflicts applies the per-doctor rule before the global gap rule.
// nearby holds active appointments inside the gap window; appt itself is
// skipped so a stored appointment can be rechecked.
func (s *Service) checkConflicts(appt *Appointment, nearby []*Appointment) error {
	tooClose := false
	for _, other := range nearby {
		if other.ID == appt.ID {
			continue
		}
		if other.DoctorID == appt.DoctorID && other.Date == appt.Date && other.Time == appt.Time {
			return ErrSlotTaken
		}
		tooClose = true
	}
	if tooClose {
		return &GapError{Gap: s.opts.Gap}
	}
	return nil
}

func (s *Service) recordConflict(err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		s.metrics.BookingConflict(telemetry.ConflictSlotTaken)
	case errors.Is(err, ErrTooClose):
		s.metrics.BookingConflict(telemetry.ConflictGapTooSmall)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// Cancel moves a booked appointment to cancelled. Any other status is final
// as far as the patient is concerned.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var appt *Appointment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.appts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if a.Status != StatusBooked {
			return ErrNotCancellable
		}
		if err := s.appts.UpdateStatus(ctx, id, StatusCancelled); err != nil {
			return err
		}
		a.Status = StatusCancelled
		appt = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentStatusChanged(string(StatusCancelled))
	return appt, nil
}

// UpdateStatus sets any valid status. Moving a cancelled or rejected
// appointment back to an active status reclaims its slot, so the booking
// rules are checked again under the booking lock.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	var appt *Appointment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.appts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if status.Active() && !a.Status.Active() {
			if err := s.lock(ctx); err != nil {
				return err
			}
			nearby, err := s.appts.ListActiveNear(ctx, a.ScheduledAt, s.opts.Gap)
			if err != nil {
				return err
			}
			if err := s.checkConflicts(a, nearby); err != nil {
				return err
			}
		}
		if err := s.appts.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		a.Status = status
		appt = a
		return nil
	})
	s.recordConflict(err)
	if err != nil {
		return nil, err
	}
	s.metrics.AppointmentStatusChanged(string(status))
	return appt, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

// ListAll returns every appointment with admin enrichment applied.
func (s *Service) ListAll(ctx context.Context, f ListFilter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	rows, total, err := s.appts.ListEnriched(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, Enrich(r))
	}
	return out, total, nil
}

// DoctorSlots lists the configured daily slots for the next SlotDays days,
// starting today, marking those held by an active appointment as booked.
func (s *Service) DoctorSlots(ctx context.Context, doctorID uuid.UUID) ([]Slot, error) {
	doc, err := s.users.GetUser(ctx, doctorID)
	if errors.Is(err, identity.ErrNotFound) || (err == nil && doc.Role != identity.RoleDoctor) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.opts.Location)
	first := today.Format(DateLayout)
	last := today.AddDate(0, 0, s.opts.SlotDays-1).Format(DateLayout)

	held, err := s.appts.ListActiveForDoctor(ctx, doctorID, first, last)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(held))
	for _, a := range held {
		taken[a.Date+" "+a.Time] = true
	}

	slots := make([]Slot, 0, s.opts.SlotDays*len(s.opts.SlotTimes))
	for i := 0; i < s.opts.SlotDays; i++ {
		date := today.AddDate(0, 0, i).Format(DateLayout)
		for _, t := range s.opts.SlotTimes {
			status := SlotAvailable
			if taken[date+" "+t] {
				status = SlotBooked
			}
			slots = append(slots, Slot{Date: date, Time: t, Status: status})
		}
	}
	return slots, nil
}

func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID) ([]HistoryItem, error) {
	appts, _, err := s.appts.ListByPatient(ctx, patientID, 0, 0)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, HistoryItem{
			ID:         a.ID,
			Date:       a.Date,
			Time:       a.Time,
			DoctorName: a.DoctorName,
			Summary:    fmt.Sprintf("Appointment on %s - Status: %s", a.Date, a.Status),
		})
	}
	return items, nil
}
