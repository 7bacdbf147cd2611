package chat

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*Message, int, error)
}
