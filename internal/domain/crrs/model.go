package crrs

import (
	"time"

	"github.com/google/uuid"
)

// Contributions are the five signed daily deltas. Positive raises risk.
type Contributions struct {
	Vitals    float64 `json:"vitals"`
	Lifestyle float64 `json:"lifestyle"`
	Adherence float64 `json:"adherence"`
	Symptoms  float64 `json:"symptoms"`
	Trend     float64 `json:"trend"`
}

func (c Contributions) Total() float64 {
	return c.Vitals + c.Lifestyle + c.Adherence + c.Symptoms + c.Trend
}

// Score maps to the crrs_scores table. There is at most one row per
// (PatientProfileID, ScoreDate) and Value == Clamp(PreviousValue + Contributions.Total()).
type Score struct {
	ID                 uuid.UUID     `db:"id" json:"id"`
	PatientProfileID   uuid.UUID     `db:"patient_profile_id" json:"patient_profile_id"`
	ScoreDate          time.Time     `db:"score_date" json:"score_date"`
	Value              float64       `db:"crrs_value" json:"crrs_value"`
	PreviousValue      float64       `db:"previous_crrs" json:"previous_crrs"`
	Delta              float64       `db:"delta_crrs" json:"delta_crrs"`
	RiskTier           RiskTier      `db:"risk_tier" json:"risk_tier"`
	Contributions      Contributions `json:"contributions"`
	Explanation        string        `db:"explanation" json:"explanation"`
	CalculationDetails string        `db:"calculation_details" json:"calculation_details"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// DateOnly normalizes t to midnight UTC of its calendar date, the form
// ScoreDate is stored and compared in.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire format for score dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD score date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
