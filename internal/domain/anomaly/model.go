package anomaly

import "time"

type Type string

const (
	TypeBloodPressureHigh Type = "BLOOD_PRESSURE_HIGH"
	TypeBloodPressureLow  Type = "BLOOD_PRESSURE_LOW"
	TypeGlucoseHigh       Type = "GLUCOSE_HIGH"
	TypeGlucoseLow        Type = "GLUCOSE_LOW"
	TypeHeartRateAbnormal Type = "HEART_RATE_ABNORMAL"
	TypeWeightChange      Type = "WEIGHT_CHANGE"
	TypeMissingMedication Type = "MISSING_MEDICATION"
	TypeSymptomReported   Type = "SYMPTOM_REPORTED"
)

// Severity is ordered LOW < MEDIUM < HIGH < CRITICAL via Rank.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns 0 for an unknown severity.
func (s Severity) Rank() int { return severityRank[s] }

func (s Severity) AtLeast(other Severity) bool { return s.Rank() >= other.Rank() }

// Anomaly is a deviation found in one reading or encounter. Value and
// Threshold are set when the rule compares a single number.
type Anomaly struct {
	Type        Type      `json:"type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	DetectedAt  time.Time `json:"detected_at"`
	Value       *float64  `json:"value,omitempty"`
	Threshold   *float64  `json:"threshold,omitempty"`
}

// MaxSeverity returns the most severe entry, or "" for an empty list.
func MaxSeverity(anomalies []Anomaly) Severity {
	var top Severity
	for _, a := range anomalies {
		if a.Severity.Rank() > top.Rank() {
			top = a.Severity
		}
	}
	return top
}

// CountBySeverity tallies anomalies per severity.
func CountBySeverity(anomalies []Anomaly) map[Severity]int {
	out := make(map[Severity]int, len(severityRank))
	for _, a := range anomalies {
		out[a.Severity]++
	}
	return out
}
