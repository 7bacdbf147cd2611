package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) PatientAge(ctx context.Context, patientID uuid.UUID) (int, bool, error) {
	var age int
	err := r.pool.QueryRow(ctx, `SELECT age FROM patients WHERE id = $1`, patientID).Scan(&age)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return age, true, nil
}

func (r *repoPG) DiseaseOccurrences(ctx context.Context, patientID uuid.UUID, since time.Time) ([]DiseaseOccurrence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT disease_name, COUNT(*), MIN(diagnosed_date), MAX(diagnosed_date)
		FROM disease_history
		WHERE patient_id = $1 AND diagnosed_date >= $2
		GROUP BY disease_name
		ORDER BY COUNT(*) DESC, disease_name ASC`, patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DiseaseOccurrence
	for rows.Next() {
		var o DiseaseOccurrence
		if err := rows.Scan(&o.Name, &o.Count, &o.FirstDate, &o.LastDate); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *repoPG) PrescriptionStats(ctx context.Context, patientID uuid.UUID) ([]MedicineStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT medicine_name,
		       COUNT(*),
		       MIN(created_at),
		       MAX(created_at),
		       COUNT(*) FILTER (WHERE reported_allergy),
		       COALESCE(ARRAY_AGG(DISTINCT side_effects) FILTER (WHERE side_effects IS NOT NULL), '{}')
		FROM prescriptions
		WHERE patient_id = $1
		GROUP BY medicine_name
		ORDER BY COUNT(*) DESC, medicine_name ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MedicineStat
	for rows.Next() {
		var s MedicineStat
		if err := rows.Scan(&s.MedicineName, &s.Count, &s.FirstPrescribed, &s.LastPrescribed,
			&s.AllergyReports, &s.SideEffects); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) DiseaseNames(ctx context.Context, patientID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT disease_name FROM disease_history
		WHERE patient_id = $1
		ORDER BY disease_name ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *repoPG) CatalogFor(ctx context.Context, patientID uuid.UUID) ([]CatalogHit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.medicine_name, c.side_effect, c.severity
		FROM medicine_side_effects c
		WHERE LOWER(c.medicine_name) IN (
			SELECT DISTINCT LOWER(medicine_name) FROM prescriptions WHERE patient_id = $1
		)
		ORDER BY c.medicine_name ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []CatalogHit
	for rows.Next() {
		var h CatalogHit
		if err := rows.Scan(&h.MedicineName, &h.SideEffect, &h.Severity); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (r *repoPG) DistinctDoctorCount(ctx context.Context, patientID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT doctor_id) FROM prescriptions WHERE patient_id = $1`, patientID).Scan(&count)
	return count, err
}

// UpsertRiskScore relies on the UNIQUE (patient_id, score_date) constraint to
// resolve same-day races atomically instead of read-then-write.
func (r *repoPG) UpsertRiskScore(ctx context.Context, rec *RiskScoreRecord) error {
	factors, err := json.Marshal(rec.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO health_risk_scores (id, patient_id, score, level, description, factors, score_date, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (patient_id, score_date) DO UPDATE
		SET score = EXCLUDED.score,
		    level = EXCLUDED.level,
		    description = EXCLUDED.description,
		    factors = EXCLUDED.factors,
		    calculated_at = EXCLUDED.calculated_at`,
		rec.ID, rec.PatientID, rec.Score, rec.Level, rec.Description, factors, rec.ScoreDate, rec.CalculatedAt)
	return err
}

func (r *repoPG) LatestRiskScore(ctx context.Context, patientID uuid.UUID) (*RiskScoreRecord, error) {
	var rec RiskScoreRecord
	var factors []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, score, level, description, factors, score_date, calculated_at
		FROM health_risk_scores
		WHERE patient_id = $1
		ORDER BY score_date DESC LIMIT 1`, patientID).
		Scan(&rec.ID, &rec.PatientID, &rec.Score, &rec.Level, &rec.Description, &factors, &rec.ScoreDate, &rec.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(factors, &rec.Factors); err != nil {
		return nil, fmt.Errorf("unmarshal factors: %w", err)
	}
	return &rec, nil
}
