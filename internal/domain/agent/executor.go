package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
	"github.com/vijay-veer/swasthya-sarthi/internal/platform/metrics"
)

// Notifier delivers user-facing actions. The subject carries the user and
// the profile so critical alerts can reach the emergency contact.
type Notifier interface {
	Notify(ctx context.Context, to *patient.Subject, a Action) error
	Alert(ctx context.Context, to *patient.Subject, a Action) error
	CriticalAlert(ctx context.Context, to *patient.Subject, a Action) error
}

// ScoreComputer recomputes a day's score. *crrs.Engine satisfies it.
type ScoreComputer interface {
	Compute(ctx context.Context, profile *patient.PatientProfile, date time.Time) (*crrs.Score, error)
}

type QuestCreator interface {
	CreateQuest(ctx context.Context, to *patient.Subject, a Action) error
}

// ErrNoQuestCreator marks CREATE_QUEST actions skipped for lack of a creator.
var ErrNoQuestCreator = errors.New("no quest creator configured")

type Outcome struct {
	Action Action `json:"action"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	// Err is the cause behind Error, for errors.Is.
	Err error `json:"-"`
}

type ExecutionReport struct {
	Outcomes  []Outcome `json:"outcomes"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
}

// Executor runs actions one by one. A failing action is logged and counted
// and never stops the ones after it.
type Executor struct {
	notifier Notifier
	scores   ScoreComputer
	quests   QuestCreator
	logger   zerolog.Logger
}

// NewExecutor accepts a nil quest creator.
func NewExecutor(notifier Notifier, scores ScoreComputer, quests QuestCreator, logger zerolog.Logger) *Executor {
	return &Executor{
		notifier: notifier,
		scores:   scores,
		quests:   quests,
		logger:   logger.With().Str("component", "agent_executor").Logger(),
	}
}

func (e *Executor) Execute(ctx context.Context, to *patient.Subject, actions []Action) *ExecutionReport {
	report := &ExecutionReport{Outcomes: make([]Outcome, 0, len(actions))}
	for _, a := range actions {
		err := e.run(ctx, to, a)
		out := Outcome{Action: a, Status: metrics.OutcomeSucceeded}
		switch {
		case errors.Is(err, ErrNoQuestCreator):
			out.Status = metrics.OutcomeSkipped
			report.Skipped++
		case err != nil:
			out.Status = metrics.OutcomeFailed
			out.Error = err.Error()
			out.Err = err
			report.Failed++
			e.logger.Error().Err(err).
				Str("action_type", string(a.Type)).
				Str("user_id", a.TargetUserID.String()).
				Str("trigger", string(a.Trigger)).
				Msg("agent action failed")
		default:
			report.Succeeded++
		}
		metrics.ActionsExecuted.WithLabelValues(string(a.Type), out.Status).Inc()
		report.Outcomes = append(report.Outcomes, out)
	}
	return report
}

func (e *Executor) run(ctx context.Context, to *patient.Subject, a Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s action: %v", a.Type, r)
		}
	}()

	switch a.Type {
	case ActionNotify:
		return e.notifier.Notify(ctx, to, a)
	case ActionAlert:
		return e.notifier.Alert(ctx, to, a)
	case ActionCriticalAlert:
		return e.notifier.CriticalAlert(ctx, to, a)
	case ActionUpdateScore:
		score, err := e.scores.Compute(ctx, to.Profile, a.TargetDate)
		if err != nil {
			return err
		}
		e.logger.Debug().Str("patient_profile_id", to.Profile.ID.String()).
			Float64("crrs", score.Value).Msg("score updated by agent")
		return nil
	case ActionCreateQuest:
		if e.quests == nil {
			return ErrNoQuestCreator
		}
		return e.quests.CreateQuest(ctx, to, a)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}
