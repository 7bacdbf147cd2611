package insight

import "testing"

func TestAgeFactor(t *testing.T) {
	if got := ageFactor(0); got != 0 {
		t.Errorf("ageFactor(0) = %d, want 0", got)
	}
	if got := ageFactor(80); got != 15 {
		t.Errorf("ageFactor(80) = %d, want 15", got)
	}

	prev := -1
	for age := 0; age <= 80; age++ {
		got := ageFactor(age)
		if want := age * 15 / 80; got != want {
			t.Fatalf("ageFactor(%d) = %d, want %d", age, got, want)
		}
		if got < prev {
			t.Fatalf("ageFactor not monotone at age %d: %d < %d", age, got, prev)
		}
		prev = got
	}

	// Over-cap ages stay at the cap.
	if got := ageFactor(120); got != 15 {
		t.Errorf("ageFactor(120) = %d, want 15", got)
	}
}

func TestWeightedFactorCaps(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"medicine over cap", medicineFactor(1000), 30},
		{"medicine at 10", medicineFactor(10), 30},
		{"medicine at 5", medicineFactor(5), 15},
		{"disease over cap", diseaseFactor(100), 25},
		{"disease at 8", diseaseFactor(8), 25},
		{"disease at 4", diseaseFactor(4), 12},
		{"allergy at 2", allergyFactor(2), 10},
		{"allergy over cap", allergyFactor(10), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestWeightedPolicy_Clamp(t *testing.T) {
	eval := WeightedPolicy{}.Evaluate(ScoreInput{
		Age:                120,
		TotalPrescriptions: 1000,
		TotalDiseases:      100,
		HasChronic:         true,
		AllergyIncidents:   50,
	})
	// Raw sum 15+30+25+10+20 = 100; anything above must clamp.
	if eval.Score < 0 || eval.Score > 100 {
		t.Errorf("score %d outside [0,100]", eval.Score)
	}
	if eval.Score != 100 {
		t.Errorf("maxed inputs should score 100, got %d", eval.Score)
	}
	if eval.Level != LevelCritical {
		t.Errorf("expected critical, got %s", eval.Level)
	}
}

func TestWeightedPolicy_Levels(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, LevelCritical},
		{80, LevelCritical},
		{79, LevelHigh},
		{60, LevelHigh},
		{59, LevelModerate},
		{40, LevelModerate},
		{39, LevelLow},
		{20, LevelLow},
		{19, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		if got, _ := weightedLevel(tt.score); got != tt.want {
			t.Errorf("weightedLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}

	// Sub-20 scores carry the more positive description.
	_, under := weightedLevel(10)
	_, over := weightedLevel(25)
	if under == over {
		t.Error("expected distinct descriptions below and above 20")
	}
}

func TestWeightedPolicy_EmptyInput(t *testing.T) {
	eval := WeightedPolicy{}.Evaluate(ScoreInput{})
	if eval.Score != 0 {
		t.Errorf("expected score 0 for empty input, got %d", eval.Score)
	}
	if len(eval.Factors) != 0 {
		t.Errorf("expected no factors, got %v", eval.Factors)
	}
	if eval.Level != LevelLow {
		t.Errorf("expected low, got %s", eval.Level)
	}
}

func TestEnhancedPolicy_Scenario(t *testing.T) {
	// Age 65, one disease diagnosed 4x in-window, one medicine prescribed 8x,
	// 1 treating doctor, 8 prescriptions across 2 medicines.
	eval := EnhancedPolicy{}.Evaluate(ScoreInput{
		Age:                 65,
		TotalPrescriptions:  8,
		DistinctMedicines:   2,
		TotalDiseases:       4,
		HasChronic:          true,
		HasRepeatedDisease:  true,
		HasRepeatedMedicine: true,
		DoctorCount:         1,
	})

	if eval.Score <= 0 {
		t.Fatalf("expected positive score, got %d", eval.Score)
	}
	if eval.Level != LevelHigh && eval.Level != LevelCritical {
		t.Errorf("expected high or critical, got %s (score %d)", eval.Level, eval.Score)
	}

	names := make(map[string]bool)
	for _, f := range eval.Factors {
		names[f.Name] = true
	}
	if !names["Age Factor"] {
		t.Error("expected an Age Factor entry")
	}
	if !names["Repeated Medicines"] {
		t.Error("expected a Repeated Medicines entry")
	}
	// 1 doctor and 8 prescriptions trip neither extra flag.
	if names["Multiple Doctors"] || names["High Prescription Volume"] {
		t.Errorf("unexpected factors: %v", eval.Factors)
	}
}

func TestEnhancedPolicy_Levels(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{90, LevelCritical},
		{75, LevelCritical},
		{74, LevelHigh},
		{50, LevelHigh},
		{49, LevelModerate},
		{25, LevelModerate},
		{24, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		if got, _ := enhancedLevel(tt.score); got != tt.want {
			t.Errorf("enhancedLevel(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
