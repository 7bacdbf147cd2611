package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/platform/cache"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
	failGet      bool
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if m.failGet {
		return nil, fmt.Errorf("db down")
	}
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appointments[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	a.Status = status
	return nil
}

// spyStore records deleted keys so invalidation can be asserted.
type spyStore struct {
	cache.Store
	deleted []string
}

func newSpyStore() *spyStore {
	return &spyStore{Store: cache.NewMemoryStore()}
}

func (s *spyStore) Delete(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return s.Store.Delete(ctx, keys...)
}

func newTestScheduling() (*Service, *mockAppointmentRepo, *spyStore) {
	repo := newMockAppointmentRepo()
	store := newSpyStore()
	return NewService(repo, store, zerolog.Nop()), repo, store
}

func TestBook(t *testing.T) {
	svc, _, store := newTestScheduling()
	patientID := uuid.New()

	a, err := svc.Book(context.Background(), BookInput{
		PatientID:   patientID,
		DoctorID:    uuid.New(),
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusBooked {
		t.Errorf("expected status booked, got %s", a.Status)
	}

	wantKeys := []string{
		cache.Key("patient_summary", patientID.String()),
		cache.Key("admin_dashboard"),
	}
	if len(store.deleted) != len(wantKeys) {
		t.Fatalf("expected %d invalidated keys, got %v", len(wantKeys), store.deleted)
	}
	for i, k := range wantKeys {
		if store.deleted[i] != k {
			t.Errorf("expected key %s, got %s", k, store.deleted[i])
		}
	}
}

func TestBook_Validation(t *testing.T) {
	svc, _, _ := newTestScheduling()

	if _, err := svc.Book(context.Background(), BookInput{
		DoctorID:    uuid.New(),
		ScheduledAt: time.Now().Add(time.Hour),
	}); err == nil {
		t.Error("expected error for missing patient")
	}

	if _, err := svc.Book(context.Background(), BookInput{
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ScheduledAt: time.Now().Add(-time.Hour),
	}); err != ErrPastSchedule {
		t.Errorf("expected ErrPastSchedule, got %v", err)
	}
}

func TestCancelAndComplete(t *testing.T) {
	svc, _, store := newTestScheduling()

	book := func(t *testing.T) *Appointment {
		t.Helper()
		a, err := svc.Book(context.Background(), BookInput{
			PatientID:   uuid.New(),
			DoctorID:    uuid.New(),
			ScheduledAt: time.Now().Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("book: %v", err)
		}
		return a
	}

	t.Run("cancel booked", func(t *testing.T) {
		a := book(t)
		before := len(store.deleted)

		got, err := svc.Cancel(context.Background(), a.ID)
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if got.Status != StatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
		if len(store.deleted) != before+2 {
			t.Error("expected cache invalidation on cancel")
		}
	})

	t.Run("complete booked", func(t *testing.T) {
		a := book(t)
		got, err := svc.Complete(context.Background(), a.ID)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if got.Status != StatusCompleted {
			t.Errorf("expected completed, got %s", got.Status)
		}
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		a := book(t)
		if _, err := svc.Cancel(context.Background(), a.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := svc.Complete(context.Background(), a.ID); err != ErrInvalidTransition {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
		if _, err := svc.Cancel(context.Background(), a.ID); err != ErrInvalidTransition {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}
