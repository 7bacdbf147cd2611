package insight

import "fmt"

// ScoreInput carries the aggregate signals a policy scores over.
type ScoreInput struct {
	Age                 int
	TotalPrescriptions  int
	DistinctMedicines   int
	TotalDiseases       int
	HasChronic          bool
	HasRepeatedDisease  bool
	HasRepeatedMedicine bool
	AllergyIncidents    int
	DoctorCount         int
}

// Evaluation is a policy's scored result before persistence.
type Evaluation struct {
	Score       int
	Level       string
	Description string
	Factors     []Factor
}

// ScoringPolicy maps aggregate signals to a bounded score, level and factor
// breakdown. Exactly one policy is active per deployment.
type ScoringPolicy interface {
	Name() string
	Evaluate(in ScoreInput) Evaluation
}

// maxScore bounds every policy's output.
const maxScore = 100

// -- Weighted policy (default) --

// WeightedPolicy sums independently capped proportional sub-scores. This is
// the canonical default.
type WeightedPolicy struct{}

func (WeightedPolicy) Name() string { return "weighted" }

// Per-factor caps.
const (
	ageCap      = 15
	medicineCap = 30
	diseaseCap  = 25
	allergyCap  = 20
	chronicFlat = 10
)

// ageFactor is floor(age/80 * 15), capped. Monotone in age with
// ageFactor(0)=0 and ageFactor(80)=15.
func ageFactor(age int) int {
	f := age * ageCap / 80
	if f > ageCap {
		return ageCap
	}
	return f
}

func medicineFactor(total int) int {
	f := total * medicineCap / 10
	if f > medicineCap {
		return medicineCap
	}
	return f
}

func diseaseFactor(total int) int {
	f := total * diseaseCap / 8
	if f > diseaseCap {
		return diseaseCap
	}
	return f
}

func allergyFactor(incidents int) int {
	f := incidents * 5
	if f > allergyCap {
		return allergyCap
	}
	return f
}

func (WeightedPolicy) Evaluate(in ScoreInput) Evaluation {
	var factors []Factor
	add := func(name string, points int, detail string) {
		if points > 0 {
			factors = append(factors, Factor{Name: name, Points: points, Detail: detail})
		}
	}

	add("Age Factor", ageFactor(in.Age), fmt.Sprintf("age %d", in.Age))
	add("Medicine Usage", medicineFactor(in.TotalPrescriptions),
		fmt.Sprintf("%d total prescriptions", in.TotalPrescriptions))
	add("Disease Frequency", diseaseFactor(in.TotalDiseases),
		fmt.Sprintf("%d diagnoses in window", in.TotalDiseases))
	if in.HasChronic {
		add("Chronic Condition", chronicFlat, "disease recurred 3+ times in window")
	}
	add("Allergy Incidents", allergyFactor(in.AllergyIncidents),
		fmt.Sprintf("%d reported incidents", in.AllergyIncidents))

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	if score > maxScore {
		score = maxScore
	}

	level, description := weightedLevel(score)
	return Evaluation{Score: score, Level: level, Description: description, Factors: factors}
}

func weightedLevel(score int) (string, string) {
	switch {
	case score >= 80:
		return LevelCritical, "critical risk, immediate clinical review advised"
	case score >= 60:
		return LevelHigh, "high risk, schedule a review soon"
	case score >= 40:
		return LevelModerate, "moderate risk, monitor regularly"
	case score >= 20:
		return LevelLow, "low risk, routine checkups sufficient"
	default:
		return LevelLow, "minimal risk, keep up the healthy habits"
	}
}

// -- Enhanced policy (alternate) --

// EnhancedPolicy scores fixed-point flags instead of proportional factors.
// Kept as the alternate strategy; not the default.
type EnhancedPolicy struct{}

func (EnhancedPolicy) Name() string { return "enhanced" }

func (EnhancedPolicy) Evaluate(in ScoreInput) Evaluation {
	var factors []Factor
	add := func(cond bool, name string, points int, detail string) {
		if cond {
			factors = append(factors, Factor{Name: name, Points: points, Detail: detail})
		}
	}

	add(in.Age > 50, "Age Factor", 10, fmt.Sprintf("age %d over 50", in.Age))
	add(in.HasRepeatedDisease, "Repeated Diseases", 20, "a disease recurred in the window")
	add(in.HasRepeatedMedicine, "Repeated Medicines", 20, "a medicine was prescribed more than twice")
	add(in.DoctorCount > 1, "Multiple Doctors", 10, fmt.Sprintf("%d treating doctors", in.DoctorCount))
	add(in.HasChronic, "Chronic Condition", 15, "disease recurred 3+ times in window")
	add(in.TotalPrescriptions >= 10, "High Prescription Volume", 15,
		fmt.Sprintf("%d total prescriptions", in.TotalPrescriptions))

	score := 0
	for _, f := range factors {
		score += f.Points
	}
	if score > maxScore {
		score = maxScore
	}

	level, description := enhancedLevel(score)
	return Evaluation{Score: score, Level: level, Description: description, Factors: factors}
}

func enhancedLevel(score int) (string, string) {
	switch {
	case score >= 75:
		return LevelCritical, "critical risk, immediate clinical review advised"
	case score >= 50:
		return LevelHigh, "high risk, schedule a review soon"
	case score >= 25:
		return LevelModerate, "moderate risk, monitor regularly"
	default:
		return LevelLow, "low risk, routine checkups sufficient"
	}
}
