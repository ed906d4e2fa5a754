package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/anomaly"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/metrics"
)

// Run duration labels. The event-driven path is labelled with TriggerSignals.
const (
	runLabel   = "run"
	batchLabel = "batch"
)

// Run is the outcome of one OODA pass.
type Run struct {
	Result  *AnalysisResult  `json:"result"`
	Actions []Action         `json:"actions"`
	Report  *ExecutionReport `json:"report"`
}

// Service drives observe, orient, decide and act for one patient and date.
type Service struct {
	engine   *crrs.Engine
	detector *anomaly.Detector
	executor *Executor
	resolver *patient.Resolver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(engine *crrs.Engine, detector *anomaly.Detector, executor *Executor,
	resolver *patient.Resolver, logger zerolog.Logger) *Service {
	return &Service{
		engine:   engine,
		detector: detector,
		executor: executor,
		resolver: resolver,
		logger:   logger.With().Str("component", "agent").Logger(),
		now:      time.Now,
	}
}

// Today is the current calendar date in the engine's scoring timezone.
func (s *Service) Today() time.Time {
	return crrs.DateOnly(s.now().In(s.engine.Config().Location))
}

// Process computes the day's score and acts on it. Only store errors fail
// the run; delivery failures are in Run.Report.
func (s *Service) Process(ctx context.Context, subject *patient.Subject, date time.Time) (*Run, error) {
	return s.process(ctx, subject, date, runLabel)
}

func (s *Service) process(ctx context.Context, subject *patient.Subject, date time.Time, label string) (*Run, error) {
	start := time.Now()
	defer func() { metrics.AgentRunDuration.WithLabelValues(label).Observe(time.Since(start).Seconds()) }()

	// OBSERVE happens inside Evaluate, under the score lock.
	ev, err := s.engine.Evaluate(ctx, subject.Profile, date)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", subject.Profile.ID, err)
	}

	result := Orient(s.detector, subject.Profile, ev.Snapshot, ev.Score)
	for sev, n := range anomaly.CountBySeverity(result.Anomalies) {
		metrics.AnomaliesDetected.WithLabelValues(string(sev)).Add(float64(n))
	}

	actions := Decide(result)
	report := s.executor.Execute(ctx, subject, actions)

	s.logger.Info().
		Str("patient_profile_id", subject.Profile.ID.String()).
		Str("score_date", result.Date.Format(crrs.DateLayout)).
		Str("trigger", label).
		Int("anomalies", len(result.Anomalies)).
		Int("actions", len(actions)).
		Int("failed", report.Failed).
		Msg("agent run complete")

	return &Run{Result: result, Actions: actions, Report: report}, nil
}

// ProcessByID resolves the patient and runs Process.
func (s *Service) ProcessByID(ctx context.Context, profileID uuid.UUID, date time.Time) (*Run, error) {
	subject, err := s.resolver.Resolve(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	return s.Process(ctx, subject, date)
}

// SignalsRecorded reacts to newly stored vitals or encounters with a single
// UPDATE_SCORE action. A failed recompute is a store failure and is returned
// alongside the report.
func (s *Service) SignalsRecorded(ctx context.Context, subject *patient.Subject, date time.Time) (*ExecutionReport, error) {
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(string(TriggerSignals)).Observe(time.Since(start).Seconds())
	}()

	action := Action{
		Type:         ActionUpdateScore,
		Message:      "New signals recorded",
		TargetUserID: subject.User.ID,
		TargetDate:   crrs.DateOnly(date),
		Priority:     PriorityLow,
		Trigger:      TriggerSignals,
	}
	report := s.executor.Execute(ctx, subject, []Action{action})
	if out := report.Outcomes[0]; out.Err != nil {
		return report, fmt.Errorf("update score %s: %w", subject.Profile.ID, out.Err)
	}
	return report, nil
}

// SignalsRecordedByID resolves the patient and runs SignalsRecorded.
func (s *Service) SignalsRecordedByID(ctx context.Context, profileID uuid.UUID, date time.Time) (*ExecutionReport, error) {
	subject, err := s.resolver.Resolve(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	return s.SignalsRecorded(ctx, subject, date)
}

// BatchReport summarizes a run over every patient.
type BatchReport struct {
	Date      time.Time            `json:"date"`
	Processed int                  `json:"processed"`
	Failed    map[uuid.UUID]string `json:"failed"`
}

// RunBatch processes every profile for date with at most concurrency
// patients in flight. One patient's failure does not stop the others.
func (s *Service) RunBatch(ctx context.Context, date time.Time, concurrency int) (*BatchReport, error) {
	ids, err := s.resolver.ProfileIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	report := &BatchReport{Date: crrs.DateOnly(date), Failed: make(map[uuid.UUID]string)}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, id := range ids {
		g.Go(func() error {
			err := s.runOne(ctx, id, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[id] = err.Error()
				s.logger.Error().Err(err).Str("patient_profile_id", id.String()).Msg("batch run failed for patient")
				return nil
			}
			report.Processed++
			return nil
		})
	}
	_ = g.Wait()
	return report, ctx.Err()
}

func (s *Service) runOne(ctx context.Context, id uuid.UUID, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return fmt.Errorf("resolve patient: %w", err)
	}
	_, err = s.process(ctx, subject, date, batchLabel)
	return err
}
