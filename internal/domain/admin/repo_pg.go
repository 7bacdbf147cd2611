package admin

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type statsRepoPG struct{ pool *pgxpool.Pool }

func NewStatsRepoPG(pool *pgxpool.Pool) StatsRepository {
	return &statsRepoPG{pool: pool}
}

func (r *statsRepoPG) PatientCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count)
	return count, err
}

func (r *statsRepoPG) DoctorCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&count)
	return count, err
}

func (r *statsRepoPG) AppointmentsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byStatus := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		byStatus[status] = count
	}
	return byStatus, rows.Err()
}

func (r *statsRepoPG) RiskLevelDistribution(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT level, COUNT(*) FROM (
			SELECT DISTINCT ON (patient_id) level
			FROM health_risk_scores
			ORDER BY patient_id, score_date DESC
		) latest
		GROUP BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make(map[string]int)
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, err
		}
		levels[level] = count
	}
	return levels, rows.Err()
}

func (r *statsRepoPG) TopMedicines(ctx context.Context, limit int) ([]MedicineCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT medicine_name, COUNT(*)
		FROM prescriptions
		GROUP BY medicine_name
		ORDER BY COUNT(*) DESC, medicine_name ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MedicineCount
	for rows.Next() {
		var m MedicineCount
		if err := rows.Scan(&m.MedicineName, &m.Count); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}
