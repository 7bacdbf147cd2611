package insight

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/caredesk/caredesk/internal/platform/cache"
)

// Service composes the detectors, the scoring policy and the recommendation
// generator into per-patient reports. Detector and repository faults collapse
// to empty findings at this boundary; the report itself never fails on them.
type Service struct {
	repo     Repository
	detector *Detector
	policy   ScoringPolicy
	cache    cache.Store
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, policy ScoringPolicy, store cache.Store, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		detector: NewDetector(repo),
		policy:   policy,
		cache:    store,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// HealthReport computes the full report for one patient. The result is
// memoized under the patient summary key; mutating domains delete that key.
func (s *Service) HealthReport(ctx context.Context, patientID uuid.UUID) (*HealthReport, error) {
	key := cache.Key("patient_summary", patientID.String())

	var cached HealthReport
	if hit, err := cache.GetJSON(ctx, s.cache, key, &cached); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if hit {
		return &cached, nil
	}

	report := s.compute(ctx, patientID)

	if report.RiskScore.Level != LevelUnknown {
		if err := cache.SetJSON(ctx, s.cache, key, report, s.ttl); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return report, nil
}

// MedicineUsage returns the repetition findings with their derived summaries.
func (s *Service) MedicineUsage(ctx context.Context, patientID uuid.UUID) (*MedicineUsageReport, error) {
	reps, err := s.detector.MedicineRepetitions(ctx, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("medicine repetition detection failed")
		reps = nil
	}
	stats, err := s.repo.PrescriptionStats(ctx, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("prescription stats failed")
		stats = nil
	}
	if reps == nil {
		reps = []MedicineRepetition{}
	}
	return &MedicineUsageReport{
		Repetitions: reps,
		Dependency:  SummarizeDependencies(reps),
		Usage:       ComputeUsageStats(stats),
	}, nil
}

// CurrentRiskScore serves today's persisted score when one exists and only
// recomputes on a miss. Recomputation persists via the daily upsert.
func (s *Service) CurrentRiskScore(ctx context.Context, patientID uuid.UUID) (*RiskScore, error) {
	today := utcDay(s.now())
	rec, err := s.repo.LatestRiskScore(ctx, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("latest risk score lookup failed")
	} else if rec != nil && rec.ScoreDate.Equal(today) {
		return &RiskScore{
			Score:        rec.Score,
			Level:        rec.Level,
			Description:  rec.Description,
			Factors:      rec.Factors,
			CalculatedAt: rec.CalculatedAt,
		}, nil
	}

	report, err := s.HealthReport(ctx, patientID)
	if err != nil {
		return nil, err
	}
	score := report.RiskScore
	return &score, nil
}

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) compute(ctx context.Context, patientID uuid.UUID) *HealthReport {
	now := s.now()
	report := &HealthReport{
		DiseasePatterns: []DiseasePattern{},
		AllergyRisks: AllergyRisks{
			PrescriptionRisks: []PrescriptionRisk{},
			KnownSideEffects:  []KnownSideEffect{},
		},
		RiskScore:       RiskScore{Level: LevelUnknown, Factors: []Factor{}, CalculatedAt: now},
		Recommendations: []Recommendation{},
	}

	age, found, err := s.repo.PatientAge(ctx, patientID)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("age lookup failed")
		return report
	}
	if !found {
		return report
	}

	// The detector queries are independent of each other; run them together.
	// Each branch records its own fault instead of returning it, so one broken
	// aggregate never cancels the others.
	var (
		patterns    []DiseasePattern
		stats       []MedicineStat
		allergy     AllergyRisks
		doctorCount int

		patternsFault, statsFault, allergyFault, doctorsFault bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if patterns, err = s.detector.DiseasePatterns(gctx, patientID); err != nil {
			s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("disease pattern detection failed")
			patterns, patternsFault = nil, true
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats, err = s.repo.PrescriptionStats(gctx, patientID); err != nil {
			s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("prescription stats failed")
			stats, statsFault = nil, true
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if allergy, err = s.detector.AllergyRisks(gctx, patientID); err != nil {
			s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("allergy detection failed")
			allergy, allergyFault = AllergyRisks{}, true
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if doctorCount, err = s.repo.DistinctDoctorCount(gctx, patientID); err != nil {
			s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("doctor count failed")
			doctorCount, doctorsFault = 0, true
		}
		return nil
	})
	// Every branch collapses its own error, so Wait cannot fail.
	_ = g.Wait()

	// A partial signal set must not produce a partial score: a transient fault
	// would persist a misleadingly low number and serve it for the cache TTL.
	// Render whatever sections did load, keep the score at zero/unknown, and
	// persist nothing.
	if patternsFault || statsFault || allergyFault || doctorsFault {
		if patterns != nil {
			report.DiseasePatterns = patterns
		}
		if allergy.PrescriptionRisks != nil {
			report.AllergyRisks.PrescriptionRisks = allergy.PrescriptionRisks
		}
		if allergy.KnownSideEffects != nil {
			report.AllergyRisks.KnownSideEffects = allergy.KnownSideEffects
		}
		return report
	}

	in := ScoreInput{
		Age:               age,
		DistinctMedicines: len(stats),
		DoctorCount:       doctorCount,
	}
	for _, p := range patterns {
		in.TotalDiseases += p.Frequency
		if p.IsChronic {
			in.HasChronic = true
		}
		if p.Frequency >= 2 {
			in.HasRepeatedDisease = true
		}
	}
	for _, st := range stats {
		in.TotalPrescriptions += st.Count
		in.AllergyIncidents += st.AllergyReports
		if st.Count > repetitionThreshold {
			in.HasRepeatedMedicine = true
		}
	}

	eval := s.policy.Evaluate(in)
	factors := eval.Factors
	if factors == nil {
		factors = []Factor{}
	}

	rec := &RiskScoreRecord{
		PatientID:    patientID,
		Score:        eval.Score,
		Level:        eval.Level,
		Description:  eval.Description,
		Factors:      factors,
		ScoreDate:    utcDay(now),
		CalculatedAt: now,
	}
	if err := s.repo.UpsertRiskScore(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("risk score persistence failed")
	}

	if patterns == nil {
		patterns = []DiseasePattern{}
	}
	if allergy.PrescriptionRisks == nil {
		allergy.PrescriptionRisks = []PrescriptionRisk{}
	}
	if allergy.KnownSideEffects == nil {
		allergy.KnownSideEffects = []KnownSideEffect{}
	}

	report.DiseasePatterns = patterns
	report.AllergyRisks = allergy
	report.RiskScore = RiskScore{
		Score:        eval.Score,
		Level:        eval.Level,
		Description:  eval.Description,
		Factors:      factors,
		CalculatedAt: now,
	}
	report.Recommendations = Recommend(patterns, allergy, report.RiskScore)
	if report.Recommendations == nil {
		report.Recommendations = []Recommendation{}
	}
	return report
}
