package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusBooked    = "booked"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Appointment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	PatientID   uuid.UUID `json:"patient_id" db:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id" db:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Status      string    `json:"status" db:"status"`
	Reason      *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
