package admin

import "context"

type StatsRepository interface {
	PatientCount(ctx context.Context) (int, error)
	DoctorCount(ctx context.Context) (int, error)
	AppointmentsByStatus(ctx context.Context) (map[string]int, error)
	// RiskLevelDistribution counts patients by the level of their most recent
	// persisted risk score.
	RiskLevelDistribution(ctx context.Context) (map[string]int, error)
	TopMedicines(ctx context.Context, limit int) ([]MedicineCount, error)
}
