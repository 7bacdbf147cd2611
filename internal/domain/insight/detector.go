package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lookback window for disease pattern detection.
const patternWindowMonths = 6

// chronicThreshold is the in-window frequency at which a disease counts as
// chronic.
const chronicThreshold = 3

// repetitionThreshold is exclusive: a medicine must be prescribed more than
// this many times to be flagged at all.
const repetitionThreshold = 2

// highRepetitionThreshold is exclusive: above it a repetition is high risk.
const highRepetitionThreshold = 4

// frequencyWarningThreshold is the prescription count at which a medicine is
// flagged even without allergy reports.
const frequencyWarningThreshold = 4

// Detector turns raw grouped counts into classified findings. Each method
// returns its findings or an error; the caller decides what an error
// collapses to.
type Detector struct {
	repo Repository
	now  func() time.Time
}

func NewDetector(repo Repository) *Detector {
	return &Detector{repo: repo, now: time.Now}
}

// DiseasePatterns classifies the patient's distinct diseases of the last six
// months by recurrence. Unknown patients yield an empty result.
func (d *Detector) DiseasePatterns(ctx context.Context, patientID uuid.UUID) ([]DiseasePattern, error) {
	since := d.now().AddDate(0, -patternWindowMonths, 0)
	occurrences, err := d.repo.DiseaseOccurrences(ctx, patientID, since)
	if err != nil {
		return nil, err
	}

	patterns := make([]DiseasePattern, 0, len(occurrences))
	for _, o := range occurrences {
		p := DiseasePattern{
			DiseaseName:     o.Name,
			Frequency:       o.Count,
			FirstOccurrence: o.FirstDate,
			LastOccurrence:  o.LastDate,
		}
		switch {
		case o.Count >= chronicThreshold:
			p.IsChronic = true
			p.RiskAssessment = "possible chronic condition, recommend specialist"
		case o.Count == 2:
			p.RiskAssessment = "recurring pattern, monitor"
		default:
			p.RiskAssessment = "single occurrence, standard monitoring"
		}
		patterns = append(patterns, p)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Frequency > patterns[j].Frequency
	})
	return patterns, nil
}

// MedicineRepetitions flags medicines prescribed more than twice across all
// time. The associated-diseases field is the patient's overall disease list,
// not the medicine's indication; see DESIGN.md.
func (d *Detector) MedicineRepetitions(ctx context.Context, patientID uuid.UUID) ([]MedicineRepetition, error) {
	stats, err := d.repo.PrescriptionStats(ctx, patientID)
	if err != nil {
		return nil, err
	}
	diseases, err := d.repo.DiseaseNames(ctx, patientID)
	if err != nil {
		return nil, err
	}
	diseaseList := strings.Join(diseases, ", ")

	var reps []MedicineRepetition
	for _, s := range stats {
		if s.Count <= repetitionThreshold {
			continue
		}
		rep := MedicineRepetition{
			MedicineName:       s.MedicineName,
			PrescriptionCount:  s.Count,
			AssociatedDiseases: diseaseList,
			LastPrescribed:     s.LastPrescribed,
		}
		if s.Count > highRepetitionThreshold {
			rep.RiskLevel = RepetitionRiskHigh
			rep.Warning = fmt.Sprintf("%s prescribed %d times, possible dependency risk", s.MedicineName, s.Count)
		} else {
			rep.RiskLevel = RepetitionRiskModerate
			rep.Warning = fmt.Sprintf("%s prescribed %d times, monitor continued usage", s.MedicineName, s.Count)
		}
		reps = append(reps, rep)
	}
	return reps, nil
}

// SummarizeDependencies is a pure reduction over repetition findings.
func SummarizeDependencies(reps []MedicineRepetition) DependencySummary {
	summary := DependencySummary{RepeatedMedicines: len(reps)}
	for _, r := range reps {
		if r.RiskLevel == RepetitionRiskHigh {
			summary.HighRiskMedicines++
		}
	}
	if summary.HighRiskMedicines > 0 {
		summary.Recommendation = "high-risk medicine dependency detected, consult doctor"
	} else {
		summary.Recommendation = "no high-risk dependencies"
	}
	return summary
}

// ComputeUsageStats summarizes prescription stats independent of the
// repetition threshold.
func ComputeUsageStats(stats []MedicineStat) UsageStats {
	usage := UsageStats{DistinctMedicines: len(stats)}
	for _, s := range stats {
		usage.TotalPrescriptions += s.Count
		first, last := s.FirstPrescribed, s.LastPrescribed
		if usage.FirstPrescription == nil || first.Before(*usage.FirstPrescription) {
			f := first
			usage.FirstPrescription = &f
		}
		if usage.LatestPrescription == nil || last.After(*usage.LatestPrescription) {
			l := last
			usage.LatestPrescription = &l
		}
	}
	return usage
}

// AllergyRisks builds the two independent risk lists: per-prescription flags
// and known catalog side effects.
func (d *Detector) AllergyRisks(ctx context.Context, patientID uuid.UUID) (AllergyRisks, error) {
	stats, err := d.repo.PrescriptionStats(ctx, patientID)
	if err != nil {
		return AllergyRisks{}, err
	}
	hits, err := d.repo.CatalogFor(ctx, patientID)
	if err != nil {
		return AllergyRisks{}, err
	}

	risks := AllergyRisks{
		PrescriptionRisks: []PrescriptionRisk{},
		KnownSideEffects:  []KnownSideEffect{},
	}
	for _, s := range stats {
		if s.AllergyReports == 0 && s.Count < frequencyWarningThreshold {
			continue
		}
		risk := PrescriptionRisk{
			MedicineName:    s.MedicineName,
			AllergyReports:  s.AllergyReports,
			TimesPrescribed: s.Count,
			SideEffects:     s.SideEffects,
		}
		if s.AllergyReports > 0 {
			risk.RiskLevel = RiskAllergyAlert
			risk.Action = "stop use and consult the prescribing doctor immediately"
		} else {
			risk.RiskLevel = RiskFrequencyWarning
			risk.Action = "review continued need with the prescribing doctor"
		}
		risks.PrescriptionRisks = append(risks.PrescriptionRisks, risk)
	}

	for _, h := range hits {
		risks.KnownSideEffects = append(risks.KnownSideEffects, KnownSideEffect{
			MedicineName: h.MedicineName,
			SideEffect:   h.SideEffect,
			AlertLevel:   alertLevel(h.Severity),
		})
	}
	sort.SliceStable(risks.KnownSideEffects, func(i, j int) bool {
		return alertRank(risks.KnownSideEffects[i].AlertLevel) < alertRank(risks.KnownSideEffects[j].AlertLevel)
	})
	return risks, nil
}

func alertLevel(severity string) string {
	switch severity {
	case "severe":
		return AlertCritical
	case "moderate":
		return AlertWarning
	default:
		return AlertInfo
	}
}

func alertRank(level string) int {
	switch level {
	case AlertCritical:
		return 0
	case AlertWarning:
		return 1
	default:
		return 2
	}
}
