package clinical

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/domain/scheduling"
	"github.com/caredesk/caredesk/internal/platform/cache"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrNotAppointmentDoctor = errors.New("only the appointment's doctor may prescribe")
	ErrAppointmentCancelled = errors.New("cannot prescribe on a cancelled appointment")
)

// AppointmentSource provides the appointment a prescription attaches to.
// Satisfied by the scheduling service.
type AppointmentSource interface {
	Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	diseases      DiseaseHistoryRepository
	prescriptions PrescriptionRepository
	catalog       CatalogRepository
	appointments  AppointmentSource
	cache         cache.Store
	log           zerolog.Logger
}

func NewService(
	diseases DiseaseHistoryRepository,
	prescriptions PrescriptionRepository,
	catalog CatalogRepository,
	appointments AppointmentSource,
	store cache.Store,
	log zerolog.Logger,
) *Service {
	return &Service{
		diseases:      diseases,
		prescriptions: prescriptions,
		catalog:       catalog,
		appointments:  appointments,
		cache:         store,
		log:           log,
	}
}

type DiseaseEntryInput struct {
	PatientID     uuid.UUID `json:"patient_id"`
	DiseaseName   string    `json:"disease_name"`
	DiagnosedDate time.Time `json:"diagnosed_date"`
}

func (s *Service) AddDiseaseEntry(ctx context.Context, in DiseaseEntryInput) (*DiseaseHistoryEntry, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.DiseaseName == "" {
		return nil, fmt.Errorf("disease_name is required")
	}
	if in.DiagnosedDate.IsZero() {
		in.DiagnosedDate = time.Now()
	}

	e := &DiseaseHistoryEntry{
		PatientID:     in.PatientID,
		DiseaseName:   in.DiseaseName,
		DiagnosedDate: in.DiagnosedDate,
	}
	if err := s.diseases.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create disease entry: %w", err)
	}

	s.invalidate(ctx, in.PatientID)
	return e, nil
}

type PrescribeInput struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	MedicineName    string    `json:"medicine_name"`
	Dosage          string    `json:"dosage"`
	ReportedAllergy bool      `json:"reported_allergy"`
	SideEffects     *string   `json:"side_effects,omitempty"`
}

// Prescribe writes a prescription against an appointment. Only the doctor the
// appointment is booked with may prescribe on it.
func (s *Service) Prescribe(ctx context.Context, doctorID uuid.UUID, in PrescribeInput) (*PrescriptionRecord, error) {
	if in.MedicineName == "" {
		return nil, fmt.Errorf("medicine_name is required")
	}
	if in.Dosage == "" {
		return nil, fmt.Errorf("dosage is required")
	}

	appt, err := s.appointments.Get(ctx, in.AppointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotAppointmentDoctor
	}
	if appt.Status == scheduling.StatusCancelled {
		return nil, ErrAppointmentCancelled
	}

	p := &PrescriptionRecord{
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		MedicineName:    in.MedicineName,
		Dosage:          in.Dosage,
		ReportedAllergy: in.ReportedAllergy,
		SideEffects:     in.SideEffects,
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}

	s.invalidate(ctx, appt.PatientID)
	return p, nil
}

func (s *Service) DiseaseHistory(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*DiseaseHistoryEntry, int, error) {
	return s.diseases.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Prescriptions(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PrescriptionRecord, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) AppointmentPrescriptions(ctx context.Context, appointmentID uuid.UUID) ([]*PrescriptionRecord, error) {
	return s.prescriptions.ListByAppointment(ctx, appointmentID)
}

func (s *Service) MedicineSideEffects(ctx context.Context, medicineName string) ([]*CatalogEntry, error) {
	return s.catalog.ListByMedicine(ctx, medicineName)
}

func (s *Service) invalidate(ctx context.Context, patientID uuid.UUID) {
	keys := []string{
		cache.Key("patient_summary", patientID.String()),
		cache.Key("admin_dashboard"),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
