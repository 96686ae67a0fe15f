package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sid145V/medical-assistant/internal/domain/identity"
	"github.com/Sid145V/medical-assistant/internal/platform/db"
)

type appointmentRepoPG struct {
	pool db.Pool
}

func NewAppointmentRepo(pool db.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const apptCols = `a.id, a.patient_id, a.patient_name, a.patient_email, a.doctor_id, a.doctor_name,
	a.doctor_specialization, a.appt_date, a.appt_time, a.scheduled_at, a.status, a.created_at`

const activeClause = `a.status NOT IN ('cancelled', 'rejected')`

// slotKey is the partial unique index on a doctor's active slot.
const slotKey = "appointments_doctor_slot_key"

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	var created time.Time
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (
			id, patient_id, patient_name, patient_email, doctor_id, doctor_name,
			doctor_specialization, appt_date, appt_time, scheduled_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		a.ID, a.PatientID, a.PatientName, a.PatientEmail, a.DoctorID, a.DoctorName,
		a.DoctorSpecialization, a.Date, a.Time, a.ScheduledAt, string(a.Status),
	).Scan(&created)
	if db.IsUniqueViolation(err, slotKey) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	a.CreatedAt = &created
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments a WHERE a.id = $1`, id))
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status))
	if db.IsUniqueViolation(err, slotKey) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) ListActiveNear(ctx context.Context, at time.Time, window time.Duration) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments a
		WHERE `+activeClause+` AND a.scheduled_at > $1 AND a.scheduled_at < $2
		ORDER BY a.created_at NULLS FIRST, a.id`,
		at.Add(-window), at.Add(window))
	if err != nil {
		return nil, fmt.Errorf("list nearby appointments: %w", err)
	}
	return collectAppointments(rows)
}

func (r *appointmentRepoPG) ListActiveForDoctor(ctx context.Context, doctorID uuid.UUID, from, to string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointments a
		WHERE a.doctor_id = $1 AND `+activeClause+` AND a.appt_date >= $2 AND a.appt_date <= $3
		ORDER BY a.appt_date, a.appt_time`,
		doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list doctor appointments: %w", err)
	}
	return collectAppointments(rows)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "a.patient_id", patientID, limit, offset)
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listBy(ctx, "a.doctor_id", doctorID, limit, offset)
}

func (r *appointmentRepoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments a WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	query := `SELECT ` + apptCols + ` FROM appointments a WHERE ` + col + ` = $1
		ORDER BY a.appt_date DESC, a.appt_time DESC`
	args := []interface{}{id}
	query, args = paginate(query, args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	appts, err := collectAppointments(rows)
	return appts, total, err
}

func (r *appointmentRepoPG) ListEnriched(ctx context.Context, f ListFilter, limit, offset int) ([]*EnrichedAppointment, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if q := strings.TrimSpace(f.Query); q != "" {
		where += fmt.Sprintf(` AND (a.patient_name ILIKE $%d OR a.doctor_name ILIKE $%d
			OR a.appt_date ILIKE $%d OR a.appt_time ILIKE $%d)`, idx, idx, idx, idx)
		args = append(args, db.ContainsPattern(q))
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(` AND a.status = $%d`, idx)
		args = append(args, string(f.Status))
		idx++
	}
	if f.DoctorID != nil {
		where += fmt.Sprintf(` AND a.doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	query := `SELECT ` + apptCols + `,
			COALESCE(p.email, ''), p.address,
			COALESCE(d.specialization, ''), COALESCE(d.qualification, ''), COALESCE(d.location, '')
		FROM appointments a
		LEFT JOIN users p ON p.id = a.patient_id
		LEFT JOIN users d ON d.id = a.doctor_id` + where + `
		ORDER BY a.appt_date DESC, a.appt_time DESC, a.id`
	query, args = paginate(query, args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []*EnrichedAppointment
	for rows.Next() {
		var a Appointment
		var status string
		var addr *identity.Address
		var p Participants
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.PatientName, &a.PatientEmail, &a.DoctorID, &a.DoctorName,
			&a.DoctorSpecialization, &a.Date, &a.Time, &a.ScheduledAt, &status, &a.CreatedAt,
			&p.PatientEmail, &addr, &p.DoctorSpecialization, &p.DoctorQualification, &p.DoctorLocation,
		); err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		a.Status = Status(status)
		p.PatientAddress = addr
		out = append(out, &EnrichedAppointment{Appointment: &a, Participants: p})
	}
	return out, total, rows.Err()
}

func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit <= 0 {
		return query, args
	}
	n := len(args)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	return query, append(args, limit, offset)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.PatientEmail, &a.DoctorID, &a.DoctorName,
		&a.DoctorSpecialization, &a.Date, &a.Time, &a.ScheduledAt, &status, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	a.Status = Status(status)
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
