package clinical

import (
	"context"

	"github.com/google/uuid"
)

type DiseaseHistoryRepository interface {
	Create(ctx context.Context, e *DiseaseHistoryEntry) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DiseaseHistoryEntry, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *PrescriptionRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrescriptionRecord, int, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*PrescriptionRecord, error)
}

type CatalogRepository interface {
	ListByMedicine(ctx context.Context, medicineName string) ([]*CatalogEntry, error)
}
