package clinical

import (
	"time"

	"github.com/google/uuid"
)

// DiseaseHistoryEntry is one diagnosed condition on a patient's timeline.
// Entries are append-only.
type DiseaseHistoryEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	PatientID     uuid.UUID `json:"patient_id" db:"patient_id"`
	DiseaseName   string    `json:"disease_name" db:"disease_name"`
	DiagnosedDate time.Time `json:"diagnosed_date" db:"diagnosed_date"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// PrescriptionRecord is written during the consult flow when a doctor
// completes an appointment. Append-only.
type PrescriptionRecord struct {
	ID              uuid.UUID `json:"id" db:"id"`
	AppointmentID   uuid.UUID `json:"appointment_id" db:"appointment_id"`
	PatientID       uuid.UUID `json:"patient_id" db:"patient_id"`
	DoctorID        uuid.UUID `json:"doctor_id" db:"doctor_id"`
	MedicineName    string    `json:"medicine_name" db:"medicine_name"`
	Dosage          string    `json:"dosage" db:"dosage"`
	ReportedAllergy bool      `json:"reported_allergy" db:"reported_allergy"`
	SideEffects     *string   `json:"side_effects,omitempty" db:"side_effects"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Side-effect severities in the static catalog.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// CatalogEntry is a row of the medicine side-effect reference table. The
// table is seeded by migration and read-only at runtime.
type CatalogEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	MedicineName string    `json:"medicine_name" db:"medicine_name"`
	SideEffect   string    `json:"side_effect" db:"side_effect"`
	Severity     string    `json:"severity" db:"severity"`
}
