package agent

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionNotify        ActionType = "NOTIFY"
	ActionAlert         ActionType = "ALERT"
	ActionCriticalAlert ActionType = "CRITICAL_ALERT"
	ActionUpdateScore   ActionType = "UPDATE_SCORE"
	ActionCreateQuest   ActionType = "CREATE_QUEST"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Trigger names what produced an action. Notification templates are keyed
// on it.
type Trigger string

const (
	TriggerAnomaly   Trigger = "anomaly"
	TriggerLifestyle Trigger = "lifestyle"
	TriggerAdherence Trigger = "adherence"
	TriggerNudge     Trigger = "nudge"
	TriggerSignals   Trigger = "signals"
)

// Action is one decided step. It references the target user by ID only.
type Action struct {
	Type         ActionType `json:"type"`
	Message      string     `json:"message"`
	TargetUserID uuid.UUID  `json:"target_user_id"`
	TargetDate   time.Time  `json:"target_date"`
	Priority     Priority   `json:"priority"`
	Trigger      Trigger    `json:"trigger"`
}
