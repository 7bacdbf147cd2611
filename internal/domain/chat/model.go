package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat message scoped to one appointment. Sender is the patient
// or doctor profile id of the author.
type Message struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AppointmentID uuid.UUID `json:"appointment_id" db:"appointment_id"`
	SenderID      uuid.UUID `json:"sender_id" db:"sender_id"`
	SenderRole    string    `json:"sender_role" db:"sender_role"`
	Body          string    `json:"body" db:"body"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
