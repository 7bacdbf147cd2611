package insight

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the read/aggregate surface the insight engine works over.
// Every method is a single parameterized query; the engine composes them.
type Repository interface {
	// PatientAge returns the patient's age, or found=false when the patient
	// does not exist.
	PatientAge(ctx context.Context, patientID uuid.UUID) (age int, found bool, err error)

	// DiseaseOccurrences groups disease history entries diagnosed on or after
	// since, ordered by count descending.
	DiseaseOccurrences(ctx context.Context, patientID uuid.UUID, since time.Time) ([]DiseaseOccurrence, error)

	// PrescriptionStats groups the patient's full prescription history per
	// medicine.
	PrescriptionStats(ctx context.Context, patientID uuid.UUID) ([]MedicineStat, error)

	// DiseaseNames returns the patient's distinct diagnosed diseases across
	// all time.
	DiseaseNames(ctx context.Context, patientID uuid.UUID) ([]string, error)

	// CatalogFor returns side-effect catalog rows for medicines the patient
	// has ever been prescribed.
	CatalogFor(ctx context.Context, patientID uuid.UUID) ([]CatalogHit, error)

	// DistinctDoctorCount counts the doctors who have prescribed for the
	// patient.
	DistinctDoctorCount(ctx context.Context, patientID uuid.UUID) (int, error)

	// UpsertRiskScore inserts or replaces the patient's score for
	// rec.ScoreDate atomically.
	UpsertRiskScore(ctx context.Context, rec *RiskScoreRecord) error

	// LatestRiskScore returns the most recent persisted score, or nil when
	// none exists.
	LatestRiskScore(ctx context.Context, patientID uuid.UUID) (*RiskScoreRecord, error)
}
