package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caredesk/caredesk/internal/domain/scheduling"
	"github.com/caredesk/caredesk/internal/platform/auth"
)

// ErrNotParticipant is returned when the caller is not the appointment's
// patient or doctor. Unlike the insight pipeline this error is never
// swallowed: access checks fail closed.
var ErrNotParticipant = errors.New("caller is not a participant of this appointment")

var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentSource resolves the appointment a conversation belongs to.
// Satisfied by the scheduling service.
type AppointmentSource interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	messages     MessageRepository
	appointments AppointmentSource
}

func NewService(messages MessageRepository, appointments AppointmentSource) *Service {
	return &Service{messages: messages, appointments: appointments}
}

func (s *Service) Send(ctx context.Context, senderID uuid.UUID, senderRole string, appointmentID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("message body is required")
	}

	if err := s.authorize(ctx, senderID, senderRole, appointmentID); err != nil {
		return nil, err
	}

	m := &Message{
		AppointmentID: appointmentID,
		SenderID:      senderID,
		SenderRole:    senderRole,
		Body:          body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

func (s *Service) Messages(ctx context.Context, callerID uuid.UUID, callerRole string, appointmentID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	if err := s.authorize(ctx, callerID, callerRole, appointmentID); err != nil {
		return nil, 0, err
	}
	return s.messages.ListByAppointment(ctx, appointmentID, limit, offset)
}

func (s *Service) authorize(ctx context.Context, callerID uuid.UUID, callerRole string, appointmentID uuid.UUID) error {
	appt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return ErrAppointmentNotFound
	}
	switch callerRole {
	case auth.RolePatient:
		if appt.PatientID == callerID {
			return nil
		}
	case auth.RoleDoctor:
		if appt.DoctorID == callerID {
			return nil
		}
	}
	return ErrNotParticipant
}
