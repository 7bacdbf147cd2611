package clinical

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Disease History ===========

type diseaseHistoryRepoPG struct{ pool *pgxpool.Pool }

func NewDiseaseHistoryRepoPG(pool *pgxpool.Pool) DiseaseHistoryRepository {
	return &diseaseHistoryRepoPG{pool: pool}
}

const diseaseCols = `id, patient_id, disease_name, diagnosed_date, created_at`

func scanDisease(row pgx.Row) (*DiseaseHistoryEntry, error) {
	var e DiseaseHistoryEntry
	err := row.Scan(&e.ID, &e.PatientID, &e.DiseaseName, &e.DiagnosedDate, &e.CreatedAt)
	return &e, err
}

func (r *diseaseHistoryRepoPG) Create(ctx context.Context, e *DiseaseHistoryEntry) error {
	e.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO disease_history (id, patient_id, disease_name, diagnosed_date)
		VALUES ($1, $2, $3, $4)`,
		e.ID, e.PatientID, e.DiseaseName, e.DiagnosedDate)
	return err
}

func (r *diseaseHistoryRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DiseaseHistoryEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM disease_history WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+diseaseCols+` FROM disease_history
		WHERE patient_id = $1
		ORDER BY diagnosed_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DiseaseHistoryEntry
	for rows.Next() {
		e, err := scanDisease(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// =========== Prescriptions ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `id, appointment_id, patient_id, doctor_id, medicine_name, dosage, reported_allergy, side_effects, created_at`

func scanPrescription(row pgx.Row) (*PrescriptionRecord, error) {
	var p PrescriptionRecord
	err := row.Scan(&p.ID, &p.AppointmentID, &p.PatientID, &p.DoctorID, &p.MedicineName,
		&p.Dosage, &p.ReportedAllergy, &p.SideEffects, &p.CreatedAt)
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *PrescriptionRecord) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescriptions (id, appointment_id, patient_id, doctor_id, medicine_name, dosage, reported_allergy, side_effects)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.AppointmentID, p.PatientID, p.DoctorID, p.MedicineName, p.Dosage, p.ReportedAllergy, p.SideEffects)
	return err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrescriptionRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM prescriptions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+prescriptionCols+` FROM prescriptions
		WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*PrescriptionRecord
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *prescriptionRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*PrescriptionRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prescriptionCols+` FROM prescriptions
		WHERE appointment_id = $1
		ORDER BY created_at ASC`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*PrescriptionRecord
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// =========== Side-Effect Catalog ===========

type catalogRepoPG struct{ pool *pgxpool.Pool }

func NewCatalogRepoPG(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepoPG{pool: pool}
}

func (r *catalogRepoPG) ListByMedicine(ctx context.Context, medicineName string) ([]*CatalogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medicine_name, side_effect, severity FROM medicine_side_effects
		WHERE LOWER(medicine_name) = LOWER($1)
		ORDER BY severity`, medicineName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.ID, &e.MedicineName, &e.SideEffect, &e.Severity); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}
