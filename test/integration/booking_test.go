//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Sid145V/medical-assistant/internal/domain/scheduling"
	"github.com/Sid145V/medical-assistant/internal/seed"
)

func TestBooking_GapRule(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	date := uniqueDate(t, 0)
	patient := seed.ID("patient-1")

	book := func(doctorKey, at string) (*scheduling.Appointment, error) {
		return s.scheduling.Book(ctx, &scheduling.BookRequest{
			PatientID: patient,
			DoctorID:  seed.ID(doctorKey),
			Date:      date,
			Time:      at,
		})
	}

	first, err := book("doc-seed-1", "10:00")
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if first.PatientName != "John Doe" {
		t.Errorf("expected patient name John Doe, got %q", first.PatientName)
	}

	t.Run("same doctor same slot", func(t *testing.T) {
		if _, err := book("doc-seed-1", "10:00"); !errors.Is(err, scheduling.ErrSlotTaken) {
			t.Errorf("expected ErrSlotTaken, got %v", err)
		}
	})

	t.Run("other doctor inside the gap", func(t *testing.T) {
		if _, err := book("doc-seed-2", "10:10"); !errors.Is(err, scheduling.ErrTooClose) {
			t.Errorf("expected ErrTooClose, got %v", err)
		}
		if _, err := book("doc-seed-2", "09:50"); !errors.Is(err, scheduling.ErrTooClose) {
			t.Errorf("expected ErrTooClose, got %v", err)
		}
	})

	t.Run("exactly one gap apart", func(t *testing.T) {
		if _, err := book("doc-seed-2", "10:15"); err != nil {
			t.Errorf("expected booking at 10:15 to succeed, got %v", err)
		}
	})

	t.Run("cancelled slot is free again", func(t *testing.T) {
		if _, err := s.scheduling.Cancel(ctx, first.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		again, err := book("doc-seed-3", "10:00")
		if err != nil {
			t.Fatalf("rebook after cancel: %v", err)
		}
		got, err := s.scheduling.Get(ctx, again.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != scheduling.StatusBooked {
			t.Errorf("expected status booked, got %s", got.Status)
		}
	})
}

func TestBooking_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	date := uniqueDate(t, 1)

	const n = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half aim at the same doctor, half at other doctors a few minutes off.
			doctor := seed.ID("doc-seed-4")
			at := "11:00"
			if i%2 == 1 {
				doctor = seed.ID("doc-seed-5")
				at = "11:05"
			}
			_, err := s.scheduling.Book(ctx, &scheduling.BookRequest{
				PatientID: seed.ID("patient-1"),
				DoctorID:  doctor,
				Date:      date,
				Time:      at,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, scheduling.ErrSlotTaken), errors.Is(err, scheduling.ErrTooClose):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if booked != 1 {
		t.Errorf("expected exactly one booking to win, got %d", booked)
	}
	if booked+rejected != n {
		t.Errorf("expected %d outcomes, got %d", n, booked+rejected)
	}
}

func TestBooking_UnknownParticipant(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)

	_, err := s.scheduling.Book(ctx, &scheduling.BookRequest{
		PatientID: seed.ID("patient-1"),
		DoctorID:  uuid.New(),
		Date:      uniqueDate(t, 2),
		Time:      "10:00",
	})
	if !errors.Is(err, scheduling.ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}

	// A patient id in the doctor position is not a doctor.
	_, err = s.scheduling.Book(ctx, &scheduling.BookRequest{
		PatientID: seed.ID("patient-1"),
		DoctorID:  seed.ID("patient-1"),
		Date:      uniqueDate(t, 2),
		Time:      "10:00",
	})
	if !errors.Is(err, scheduling.ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound for wrong role, got %v", err)
	}
}

func TestBooking_HistoryAndListing(t *testing.T) {
	ctx := context.Background()
	s := testStack(t)
	date := uniqueDate(t, 3)

	appt, err := s.scheduling.Book(ctx, &scheduling.BookRequest{
		PatientID:   seed.ID("patient-1"),
		DoctorID:    seed.ID("doc-seed-11"),
		PatientName: "Johnny",
		Date:        date,
		Time:        "14:00",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := s.scheduling.UpdateStatus(ctx, appt.ID, scheduling.StatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}

	history, err := s.scheduling.PatientHistory(ctx, seed.ID("patient-1"))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var found bool
	for _, h := range history {
		if h.Date == date && h.Time == "14:00" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the completed visit on %s in history", date)
	}

	items, total, err := s.scheduling.ListForDoctor(ctx, seed.ID("doc-seed-11"), 0, 0)
	if err != nil {
		t.Fatalf("list for doctor: %v", err)
	}
	if total < 1 || len(items) < 1 {
		t.Errorf("expected at least one appointment for the doctor, got %d", total)
	}
}
