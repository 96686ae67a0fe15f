package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apptColumns = []string{
	"id", "patient_id", "patient_name", "patient_email", "doctor_id", "doctor_name",
	"doctor_specialization", "appt_date", "appt_time", "scheduled_at", "status", "created_at",
}

func TestAppointmentRepo_ListActiveNear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	id, pid, did := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectQuery(`status NOT IN \('cancelled', 'rejected'\) AND a.scheduled_at > \$1 AND a.scheduled_at < \$2`).
		WithArgs(at.Add(-15*time.Minute), at.Add(15*time.Minute)).
		WillReturnRows(pgxmock.NewRows(apptColumns).AddRow(
			id, pid, "John Doe", "john@test.com", did, "Dr. A", "Cardiology",
			"2026-03-11", "10:05", at.Add(5*time.Minute), "booked", &at,
		))

	appts, err := NewAppointmentRepo(mock).ListActiveNear(context.Background(), at, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, StatusBooked, appts[0].Status)
	require.NotNil(t, appts[0].CreatedAt)
	assert.Equal(t, at, *appts[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE appointments SET status`).
		WithArgs(id, "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewAppointmentRepo(mock).UpdateStatus(context.Background(), id, StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_SlotIndexViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "appointments_doctor_slot_key"}

	t.Run("create", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO appointments`).WillReturnError(dup)

		err = NewAppointmentRepo(mock).Create(context.Background(), &Appointment{
			PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2026-03-11", Time: "10:00", Status: StatusBooked,
		})
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reactivate", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		mock.ExpectExec(`UPDATE appointments SET status`).WithArgs(id, "accepted").WillReturnError(dup)

		err = NewAppointmentRepo(mock).UpdateStatus(context.Background(), id, StatusAccepted)
		assert.ErrorIs(t, err, ErrSlotTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppointmentRepo_ListEnriched_LiteralWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(`%\_%`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LEFT JOIN users d ON d.id = a.doctor_id`).
		WithArgs(`%\_%`, 20, 0).
		WillReturnRows(pgxmock.NewRows(append(apptColumns,
			"patient_email", "address", "specialization", "qualification", "location")))

	_, total, err := NewAppointmentRepo(mock).ListEnriched(context.Background(), ListFilter{Query: "_"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepo_ListByPatient_Unpaginated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pid := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments a WHERE a.patient_id = \$1`).
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY a.appt_date DESC, a.appt_time DESC$`).
		WithArgs(pid).
		WillReturnRows(pgxmock.NewRows(apptColumns))

	appts, total, err := NewAppointmentRepo(mock).ListByPatient(context.Background(), pid, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, appts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginate(t *testing.T) {
	q, args := paginate("SELECT 1 WHERE x = $1", []interface{}{"a"}, 10, 20)
	assert.Equal(t, "SELECT 1 WHERE x = $1 LIMIT $2 OFFSET $3", q)
	assert.Equal(t, []interface{}{"a", 10, 20}, args)

	q, args = paginate("SELECT 1", nil, 0, 0)
	assert.Equal(t, "SELECT 1", q)
	assert.Empty(t, args)
}
