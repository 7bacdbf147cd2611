package insight

import (
	"fmt"
	"sort"
	"strings"
)

// highMedicineFactorThreshold is the medicine sub-factor score above which a
// usage advisory is emitted.
const highMedicineFactorThreshold = 20

// medicineFactorNames maps each policy's medicine-load factor label so the
// usage advisory fires regardless of which policy produced the score.
var medicineFactorNames = map[string]bool{
	"Medicine Usage":     true,
	"Repeated Medicines": true,
}

// Recommend maps detector findings and the computed score to prioritized
// advisories. Pure; an empty list is a valid result for a healthy patient.
func Recommend(patterns []DiseasePattern, risks AllergyRisks, score RiskScore) []Recommendation {
	var recs []Recommendation

	var chronic []string
	for _, p := range patterns {
		if p.IsChronic {
			chronic = append(chronic, p.DiseaseName)
		}
	}
	if len(chronic) > 0 {
		recs = append(recs, Recommendation{
			Type:     "CHRONIC_DISEASE",
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("chronic pattern detected for %s, see a specialist", strings.Join(chronic, ", ")),
		})
	}

	for _, r := range risks.PrescriptionRisks {
		if r.RiskLevel == RiskAllergyAlert {
			recs = append(recs, Recommendation{
				Type:     "ALLERGY_WARNING",
				Priority: PriorityCritical,
				Message:  fmt.Sprintf("allergy reported against %s, review with your doctor urgently", r.MedicineName),
			})
			break
		}
	}

	switch score.Level {
	case LevelCritical:
		recs = append(recs, Recommendation{
			Type:     "CRITICAL_HEALTH",
			Priority: PriorityCritical,
			Message:  "overall risk is critical, arrange an immediate consultation",
		})
	case LevelHigh:
		recs = append(recs, Recommendation{
			Type:     "HIGH_RISK",
			Priority: PriorityHigh,
			Message:  "overall risk is high, schedule a checkup soon",
		})
	}

	for _, f := range score.Factors {
		if medicineFactorNames[f.Name] && f.Points >= highMedicineFactorThreshold {
			recs = append(recs, Recommendation{
				Type:     "HIGH_MEDICINE_USE",
				Priority: PriorityMedium,
				Message:  "prescription volume is high, ask your doctor to review ongoing medicines",
			})
			break
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

func priorityRank(p string) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}
