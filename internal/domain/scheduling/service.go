package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/platform/cache"
)

var (
	ErrPastSchedule      = errors.New("appointment must be scheduled in the future")
	ErrInvalidTransition = errors.New("appointment is no longer active")
)

type Service struct {
	repo  AppointmentRepository
	cache cache.Store
	log   zerolog.Logger
}

func NewService(repo AppointmentRepository, store cache.Store, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: store, log: log}
}

type BookInput struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      *string   `json:"reason,omitempty"`
}

func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.PatientID == uuid.Nil || in.DoctorID == uuid.Nil {
		return nil, fmt.Errorf("patient_id and doctor_id are required")
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, ErrPastSchedule
	}

	a := &Appointment{
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		ScheduledAt: in.ScheduledAt,
		Status:      StatusBooked,
		Reason:      in.Reason,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.invalidate(ctx, a.PatientID)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Only booked appointments move; completed and cancelled are terminal.
	if a.Status != StatusBooked {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	a.Status = to

	s.invalidate(ctx, a.PatientID)
	return a, nil
}

// invalidate drops the cached views this appointment change makes stale. The
// report is recomputed on the next read, so a failed delete only delays
// freshness and is logged rather than surfaced.
func (s *Service) invalidate(ctx context.Context, patientID uuid.UUID) {
	keys := []string{
		cache.Key("patient_summary", patientID.String()),
		cache.Key("admin_dashboard"),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
