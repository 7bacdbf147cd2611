package admin

import "time"

// MedicineCount is one entry of the most-prescribed list.
type MedicineCount struct {
	MedicineName string `json:"medicine_name" db:"medicine_name"`
	Count        int    `json:"count" db:"count"`
}

// Dashboard aggregates the admin analytics view. It is expensive to compute
// and memoized in the cache; mutating domains invalidate it.
type Dashboard struct {
	PatientCount         int             `json:"patient_count"`
	DoctorCount          int             `json:"doctor_count"`
	AppointmentCount     int             `json:"appointment_count"`
	AppointmentsByStatus map[string]int  `json:"appointments_by_status"`
	RiskLevels           map[string]int  `json:"risk_levels"`
	TopMedicines         []MedicineCount `json:"top_medicines"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
