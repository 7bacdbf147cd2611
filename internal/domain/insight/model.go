package insight

import (
	"time"

	"github.com/google/uuid"
)

// -- Repository row shapes --

// DiseaseOccurrence is one disease grouped over the lookback window.
type DiseaseOccurrence struct {
	Name      string    `json:"name" db:"disease_name"`
	Count     int       `json:"count" db:"count"`
	FirstDate time.Time `json:"first_date" db:"first_date"`
	LastDate  time.Time `json:"last_date" db:"last_date"`
}

// MedicineStat is one medicine grouped over the patient's full history.
type MedicineStat struct {
	MedicineName    string    `json:"medicine_name" db:"medicine_name"`
	Count           int       `json:"count" db:"count"`
	FirstPrescribed time.Time `json:"first_prescribed" db:"first_prescribed"`
	LastPrescribed  time.Time `json:"last_prescribed" db:"last_prescribed"`
	AllergyReports  int       `json:"allergy_reports" db:"allergy_reports"`
	SideEffects     []string  `json:"side_effects" db:"side_effects"`
}

// CatalogHit is a side-effect catalog row matching a prescribed medicine.
type CatalogHit struct {
	MedicineName string `json:"medicine_name" db:"medicine_name"`
	SideEffect   string `json:"side_effect" db:"side_effect"`
	Severity     string `json:"severity" db:"severity"`
}

// -- Detector findings --

type DiseasePattern struct {
	DiseaseName     string    `json:"disease_name"`
	Frequency       int       `json:"frequency"`
	FirstOccurrence time.Time `json:"first_occurrence"`
	LastOccurrence  time.Time `json:"last_occurrence"`
	IsChronic       bool      `json:"is_chronic"`
	RiskAssessment  string    `json:"risk_assessment"`
}

// Medicine repetition risk levels.
const (
	RepetitionRiskHigh     = "high"
	RepetitionRiskModerate = "moderate"
)

type MedicineRepetition struct {
	MedicineName       string    `json:"medicine_name"`
	PrescriptionCount  int       `json:"prescription_count"`
	AssociatedDiseases string    `json:"associated_diseases"`
	LastPrescribed     time.Time `json:"last_prescribed"`
	RiskLevel          string    `json:"risk_level"`
	Warning            string    `json:"warning"`
}

// DependencySummary is a pure reduction over repetition findings.
type DependencySummary struct {
	RepeatedMedicines int    `json:"repeated_medicines"`
	HighRiskMedicines int    `json:"high_risk_medicines"`
	Recommendation    string `json:"recommendation"`
}

// UsageStats summarizes a patient's prescriptions independent of any
// repetition threshold.
type UsageStats struct {
	DistinctMedicines  int        `json:"distinct_medicines"`
	TotalPrescriptions int        `json:"total_prescriptions"`
	FirstPrescription  *time.Time `json:"first_prescription,omitempty"`
	LatestPrescription *time.Time `json:"latest_prescription,omitempty"`
}

// Prescription risk levels.
const (
	RiskAllergyAlert     = "ALLERGY_ALERT"
	RiskFrequencyWarning = "FREQUENCY_WARNING"
)

type PrescriptionRisk struct {
	MedicineName    string   `json:"medicine_name"`
	AllergyReports  int      `json:"allergy_reports"`
	TimesPrescribed int      `json:"times_prescribed"`
	SideEffects     []string `json:"side_effects"`
	RiskLevel       string   `json:"risk_level"`
	Action          string   `json:"action"`
}

// Catalog alert levels, ordered severe to mild.
const (
	AlertCritical = "CRITICAL"
	AlertWarning  = "WARNING"
	AlertInfo     = "INFO"
)

type KnownSideEffect struct {
	MedicineName string `json:"medicine_name"`
	SideEffect   string `json:"side_effect"`
	AlertLevel   string `json:"alert_level"`
}

type AllergyRisks struct {
	PrescriptionRisks []PrescriptionRisk `json:"prescription_risks"`
	KnownSideEffects  []KnownSideEffect  `json:"known_side_effects"`
}

// -- Risk score --

// Risk levels derived from the numeric score.
const (
	LevelCritical = "critical"
	LevelHigh     = "high"
	LevelModerate = "moderate"
	LevelLow      = "low"
	LevelUnknown  = "unknown"
)

// Factor is one named contribution to a risk score.
type Factor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Detail string `json:"detail,omitempty"`
}

type RiskScore struct {
	Score        int       `json:"score"`
	Level        string    `json:"level"`
	Description  string    `json:"description"`
	Factors      []Factor  `json:"factors"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// RiskScoreRecord is the persisted daily score. At most one row exists per
// (patient, score date); recomputation on the same day overwrites.
type RiskScoreRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PatientID    uuid.UUID `json:"patient_id" db:"patient_id"`
	Score        int       `json:"score" db:"score"`
	Level        string    `json:"level" db:"level"`
	Description  string    `json:"description" db:"description"`
	Factors      []Factor  `json:"factors" db:"factors"`
	ScoreDate    time.Time `json:"score_date" db:"score_date"`
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// -- Recommendations --

// Recommendation priorities, ordered highest first.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// HealthReport is the full per-patient report returned to the API layer.
type HealthReport struct {
	DiseasePatterns []DiseasePattern `json:"disease_patterns"`
	AllergyRisks    AllergyRisks     `json:"allergy_risks"`
	RiskScore       RiskScore        `json:"risk_score"`
	Recommendations []Recommendation `json:"recommendations"`
}

// MedicineUsageReport groups the repetition findings with their derived
// summaries for the medicine-usage endpoint.
type MedicineUsageReport struct {
	Repetitions []MedicineRepetition `json:"repetitions"`
	Dependency  DependencySummary    `json:"dependency"`
	Usage       UsageStats           `json:"usage"`
}
