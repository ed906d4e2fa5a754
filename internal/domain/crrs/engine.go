package crrs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/lock"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/metrics"
)

const (
	DefaultInitialScore    = 50.0
	DefaultTrendWindowDays = 7
)

type EngineConfig struct {
	// DefaultInitialScore seeds a patient with no earlier score.
	DefaultInitialScore float64
	// TrendWindowDays is how many days before the score date the trend
	// window starts.
	TrendWindowDays int
	// Location defines where a score date's day starts and ends.
	Location *time.Location
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.TrendWindowDays <= 0 {
		c.TrendWindowDays = DefaultTrendWindowDays
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// DefaultEngineConfig uses a 50.0 starting score, a 7 day trend and UTC days.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{DefaultInitialScore: DefaultInitialScore, TrendWindowDays: DefaultTrendWindowDays, Location: time.UTC}
}

// Snapshot is every signal one computation reads, fetched up front.
type Snapshot struct {
	Date        time.Time
	DayStart    time.Time
	DayEnd      time.Time
	TrendStart  time.Time
	Vitals      []*patient.VitalReading
	Encounters  []*patient.Encounter
	TrendVitals []*patient.VitalReading
	Previous    *Score
}

// Evaluation pairs a stored score with the snapshot it was computed from.
type Evaluation struct {
	Snapshot *Snapshot
	Score    *Score
}

type Engine struct {
	vitals     patient.VitalStore
	encounters patient.EncounterStore
	scores     ScoreRepository
	locker     lock.Locker
	cfg        EngineConfig
	logger     zerolog.Logger
}

func NewEngine(vitals patient.VitalStore, encounters patient.EncounterStore, scores ScoreRepository,
	locker lock.Locker, cfg EngineConfig, logger zerolog.Logger) *Engine {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &Engine{
		vitals:     vitals,
		encounters: encounters,
		scores:     scores,
		locker:     locker,
		cfg:        cfg.withDefaults(),
		logger:     logger.With().Str("component", "crrs_engine").Logger(),
	}
}

// Compute scores profile for date and upserts the result.
func (e *Engine) Compute(ctx context.Context, profile *patient.PatientProfile, date time.Time) (*Score, error) {
	ev, err := e.Evaluate(ctx, profile, date)
	if err != nil {
		return nil, err
	}
	return ev.Score, nil
}

// Evaluate is Compute that also returns the snapshot, so callers can run
// further analysis over the same data. The read, compute and upsert run
// while holding the (patient, date) lock.
func (e *Engine) Evaluate(ctx context.Context, profile *patient.PatientProfile, date time.Time) (*Evaluation, error) {
	start := time.Now()
	day := DateOnly(date)
	log := e.logger.With().Str("patient_profile_id", profile.ID.String()).Str("score_date", day.Format(DateLayout)).Logger()

	unlock, err := e.locker.Lock(ctx, lock.ScoreKey(profile.ID, day))
	if err != nil {
		metrics.ScoreComputeFailures.Inc()
		return nil, fmt.Errorf("lock score %s: %w", day.Format(DateLayout), err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("release score lock")
		}
	}()

	snap, err := e.Observe(ctx, profile, day)
	if err != nil {
		metrics.ScoreComputeFailures.Inc()
		return nil, err
	}

	score := e.Calculate(profile, snap)
	stored, err := e.scores.Upsert(ctx, score)
	if err != nil {
		metrics.ScoreComputeFailures.Inc()
		return nil, fmt.Errorf("store score: %w", err)
	}

	metrics.ScoresComputed.WithLabelValues(string(stored.RiskTier)).Inc()
	metrics.ScoreValue.Observe(stored.Value)
	metrics.ScoreComputeDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Float64("crrs", stored.Value).
		Float64("previous", stored.PreviousValue).
		Float64("delta", stored.Delta).
		Str("tier", string(stored.RiskTier)).
		Msg("crrs score computed")

	return &Evaluation{Snapshot: snap, Score: stored}, nil
}

// Observe fetches the day's signals, the trend window and the previous
// score. Any store error aborts.
func (e *Engine) Observe(ctx context.Context, profile *patient.PatientProfile, date time.Time) (*Snapshot, error) {
	day := DateOnly(date)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, e.cfg.Location)
	snap := &Snapshot{
		Date:       day,
		DayStart:   dayStart,
		DayEnd:     dayStart.AddDate(0, 0, 1),
		TrendStart: dayStart.AddDate(0, 0, -e.cfg.TrendWindowDays),
	}

	var err error
	if snap.Vitals, err = e.vitals.FetchVitals(ctx, profile.ID, snap.DayStart, snap.DayEnd); err != nil {
		return nil, fmt.Errorf("fetch vitals: %w", err)
	}
	if snap.TrendVitals, err = e.vitals.FetchVitals(ctx, profile.ID, snap.TrendStart, snap.DayEnd); err != nil {
		return nil, fmt.Errorf("fetch trend vitals: %w", err)
	}
	if snap.Encounters, err = e.encounters.FetchEncounters(ctx, profile.UserID, snap.DayStart, snap.DayEnd); err != nil {
		return nil, fmt.Errorf("fetch encounters: %w", err)
	}
	if snap.Previous, err = e.scores.FetchPrevious(ctx, profile.ID, day); err != nil {
		return nil, fmt.Errorf("fetch previous score: %w", err)
	}
	return snap, nil
}

// Calculate is the pure scoring step over a snapshot.
func (e *Engine) Calculate(profile *patient.PatientProfile, snap *Snapshot) *Score {
	previous := e.cfg.DefaultInitialScore
	if snap.Previous != nil {
		previous = snap.Previous.Value
	}

	c := Contributions{
		Vitals:    VitalsContribution(profile, snap.Vitals),
		Lifestyle: LifestyleContribution(snap.Encounters),
		Adherence: AdherenceContribution(snap.Encounters),
		Symptoms:  SymptomsContribution(snap.Encounters),
		Trend:     TrendContribution(snap.TrendVitals),
	}
	value := Clamp(previous + c.Total())
	tier := FromScore(value)
	delta := value - previous

	return &Score{
		PatientProfileID:   profile.ID,
		ScoreDate:          snap.Date,
		Value:              value,
		PreviousValue:      previous,
		Delta:              delta,
		RiskTier:           tier,
		Contributions:      c,
		Explanation:        Explain(value, delta, tier, c),
		CalculationDetails: Breakdown(previous, c, value),
	}
}

// Config returns the engine's effective settings.
func (e *Engine) Config() EngineConfig { return e.cfg }
