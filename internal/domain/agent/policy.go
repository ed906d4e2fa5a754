package agent

import (
	"fmt"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/anomaly"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
)

var severityActions = map[anomaly.Severity]ActionType{
	anomaly.SeverityLow:      ActionNotify,
	anomaly.SeverityMedium:   ActionAlert,
	anomaly.SeverityHigh:     ActionCriticalAlert,
	anomaly.SeverityCritical: ActionCriticalAlert,
}

var severityPriorities = map[anomaly.Severity]Priority{
	anomaly.SeverityLow:      PriorityLow,
	anomaly.SeverityMedium:   PriorityMedium,
	anomaly.SeverityHigh:     PriorityHigh,
	anomaly.SeverityCritical: PriorityCritical,
}

var nudges = map[crrs.RiskTier]string{
	crrs.TierLow:      "Great going! Log your vitals again tomorrow to keep your streak.",
	crrs.TierModerate: "A 20 minute walk after dinner is a simple way to bring your score down.",
	crrs.TierHigh:     "Check your blood pressure again this evening and take your medicines on time.",
	crrs.TierCritical: "Please contact your doctor today and keep your emergency contact informed.",
}

const defaultNudge = "Remember to log your vitals and medication today."

// ActionForSeverity looks up the delivery action for an anomaly severity.
// Unknown severities have no action.
func ActionForSeverity(s anomaly.Severity) (ActionType, bool) {
	t, ok := severityActions[s]
	return t, ok
}

// Decide maps an analysis to actions in emission order: one per anomaly,
// then lifestyle and adherence interventions, then exactly one nudge.
func Decide(r *AnalysisResult) []Action {
	base := Action{TargetUserID: r.UserID, TargetDate: r.Date}
	actions := make([]Action, 0, len(r.Anomalies)+3)

	for _, a := range r.Anomalies {
		t, ok := ActionForSeverity(a.Severity)
		if !ok {
			continue
		}
		act := base
		act.Type = t
		act.Priority = severityPriorities[a.Severity]
		act.Trigger = TriggerAnomaly
		act.Message = fmt.Sprintf("%s severity alert: %s", a.Severity, a.Description)
		actions = append(actions, act)
	}

	if r.Lifestyle.NeedsIntervention() {
		act := base
		act.Type = ActionNotify
		act.Priority = PriorityMedium
		act.Trigger = TriggerLifestyle
		act.Message = "Lifestyle check-in: " + r.Lifestyle.Summary
		actions = append(actions, act)
	}

	if r.Adherence.NeedsIntervention() {
		act := base
		act.Type = ActionNotify
		act.Priority = PriorityMedium
		if r.Adherence.MissingCriticalDoses {
			act.Priority = PriorityHigh
		}
		act.Trigger = TriggerAdherence
		act.Message = "Medication reminder: " + r.Adherence.Summary
		actions = append(actions, act)
	}

	nudge := base
	nudge.Type = ActionNotify
	nudge.Priority = PriorityLow
	nudge.Trigger = TriggerNudge
	nudge.Message = defaultNudge
	if r.Score != nil {
		if msg, ok := nudges[r.Score.RiskTier]; ok {
			nudge.Message = msg
		}
	}
	return append(actions, nudge)
}
