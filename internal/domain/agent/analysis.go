package agent

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/anomaly"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/crrs"
	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

// Lifestyle flags use the same cut-offs as the lifestyle contribution.
const (
	lowActivityMinutes = 10
	minSleepHours      = 6.0
	maxSleepHours      = 9.0
	highStressLevel    = 4

	targetAdherenceRate = 0.8

	bpRisingSlope      = 5.0
	glucoseRisingSlope = 10.0
	minTrendPoints     = 3
	weightChangeKg     = 2.0
)

type LifestyleAnalysis struct {
	LowActivity     bool   `json:"low_activity"`
	PoorDiet        bool   `json:"poor_diet"`
	InadequateSleep bool   `json:"inadequate_sleep"`
	HighStress      bool   `json:"high_stress"`
	Summary         string `json:"summary"`
}

func (a LifestyleAnalysis) NeedsIntervention() bool {
	return a.LowActivity || a.PoorDiet || a.InadequateSleep || a.HighStress
}

// AnalyzeLifestyle flags a habit when any encounter of the day shows it.
func AnalyzeLifestyle(encounters []*patient.Encounter) LifestyleAnalysis {
	var a LifestyleAnalysis
	for _, e := range encounters {
		if e.ActivityMinutes != nil && *e.ActivityMinutes < lowActivityMinutes {
			a.LowActivity = true
		}
		if crrs.UnhealthyDiet(e.DietTags) {
			a.PoorDiet = true
		}
		if e.SleepHours != nil && (*e.SleepHours < minSleepHours || *e.SleepHours > maxSleepHours) {
			a.InadequateSleep = true
		}
		if e.StressLevel != nil && *e.StressLevel >= highStressLevel {
			a.HighStress = true
		}
	}

	var issues []string
	if a.LowActivity {
		issues = append(issues, "low physical activity")
	}
	if a.PoorDiet {
		issues = append(issues, "fried or sugary food")
	}
	if a.InadequateSleep {
		issues = append(issues, "irregular sleep")
	}
	if a.HighStress {
		issues = append(issues, "high stress")
	}
	if len(issues) == 0 {
		a.Summary = "No lifestyle concerns today."
	} else {
		a.Summary = "Today's logs show " + strings.Join(issues, ", ") + "."
	}
	return a
}

type AdherenceAnalysis struct {
	AdherenceRate        float64 `json:"adherence_rate"`
	MissingCriticalDoses bool    `json:"missing_critical_doses"`
	LoggingInconsistency bool    `json:"logging_inconsistency"`
	NoMedicationLog      bool    `json:"no_medication_log"`
	Summary              string  `json:"summary"`
}

func (a AdherenceAnalysis) NeedsIntervention() bool {
	return a.AdherenceRate < targetAdherenceRate || a.MissingCriticalDoses || a.LoggingInconsistency || a.NoMedicationLog
}

// AnalyzeAdherence computes the share of medication-logging encounters that
// record a dose taken. An encounter flagged both missed and taken counts as
// taken for the rate and sets LoggingInconsistency.
func AnalyzeAdherence(encounters []*patient.Encounter) AdherenceAnalysis {
	var a AdherenceAnalysis
	var logged, taken int
	for _, e := range encounters {
		if !e.LogsMedication() {
			continue
		}
		logged++
		if e.Taken() {
			taken++
		}
		if e.Missed() {
			a.MissingCriticalDoses = true
		}
		if e.Missed() && e.Taken() {
			a.LoggingInconsistency = true
		}
	}

	switch {
	case logged == 0:
		a.NoMedicationLog = true
		a.Summary = "No medication was logged today."
		return a
	case a.LoggingInconsistency:
		a.Summary = "A log marks the same dose as both taken and missed."
	case a.MissingCriticalDoses:
		a.Summary = "A medication dose was missed today."
	default:
		a.Summary = "Medication taken as logged."
	}
	a.AdherenceRate = float64(taken) / float64(logged)
	return a
}

type VitalTrendAnalysis struct {
	BPSlope               float64 `json:"bp_slope"`
	GlucoseSlope          float64 `json:"glucose_slope"`
	WeightChangeKg        float64 `json:"weight_change_kg"`
	BPTrendRising         bool    `json:"bp_trend_rising"`
	GlucoseTrendRising    bool    `json:"glucose_trend_rising"`
	WeightTrendConcerning bool    `json:"weight_trend_concerning"`
	Summary               string  `json:"summary"`
}

// AnalyzeVitalTrends reads the trend window. Weight is concerning when it
// moved at least 2 kg across the window, away from the target when one is set.
func AnalyzeVitalTrends(window []*patient.VitalReading, profile *patient.PatientProfile) VitalTrendAnalysis {
	var a VitalTrendAnalysis
	if bp := crrs.Series(window, patient.VitalBloodPressure); len(bp) >= minTrendPoints {
		a.BPSlope = crrs.Slope(bp)
		a.BPTrendRising = a.BPSlope > bpRisingSlope
	}
	if g := crrs.Series(window, patient.VitalGlucose); len(g) >= minTrendPoints {
		a.GlucoseSlope = crrs.Slope(g)
		a.GlucoseTrendRising = a.GlucoseSlope > glucoseRisingSlope
	}
	if w := crrs.Series(window, patient.VitalWeight); len(w) >= 2 {
		first, last := w[0], w[len(w)-1]
		a.WeightChangeKg = last - first
		if math.Abs(a.WeightChangeKg) >= weightChangeKg {
			a.WeightTrendConcerning = true
			if profile.TargetWeightKg != nil {
				target := *profile.TargetWeightKg
				a.WeightTrendConcerning = math.Abs(last-target) > math.Abs(first-target)
			}
		}
	}

	var parts []string
	if a.BPTrendRising {
		parts = append(parts, fmt.Sprintf("systolic BP rising %.1f mmHg per reading", a.BPSlope))
	}
	if a.GlucoseTrendRising {
		parts = append(parts, fmt.Sprintf("glucose rising %.1f mg/dL per reading", a.GlucoseSlope))
	}
	if a.WeightTrendConcerning {
		parts = append(parts, fmt.Sprintf("weight changed %+.1f kg", a.WeightChangeKg))
	}
	if len(parts) == 0 {
		a.Summary = "Vitals are stable over the past week."
	} else {
		a.Summary = strings.Join(parts, "; ") + "."
	}
	return a
}

// AnalysisResult is the ORIENT output the policy decides on.
type AnalysisResult struct {
	ProfileID  uuid.UUID          `json:"patient_profile_id"`
	UserID     uuid.UUID          `json:"user_id"`
	Date       time.Time          `json:"date"`
	Score      *crrs.Score        `json:"score,omitempty"`
	Anomalies  []anomaly.Anomaly  `json:"anomalies"`
	Lifestyle  LifestyleAnalysis  `json:"lifestyle"`
	Adherence  AdherenceAnalysis  `json:"adherence"`
	VitalTrend VitalTrendAnalysis `json:"vital_trend"`
}

// Orient runs the detector and the three analyses over one snapshot.
func Orient(detector *anomaly.Detector, profile *patient.PatientProfile, snap *crrs.Snapshot, score *crrs.Score) *AnalysisResult {
	anomalies := detector.Detect(snap.Vitals, snap.Encounters, profile)
	if anomalies == nil {
		anomalies = []anomaly.Anomaly{}
	}
	return &AnalysisResult{
		ProfileID:  profile.ID,
		UserID:     profile.UserID,
		Date:       snap.Date,
		Score:      score,
		Anomalies:  anomalies,
		Lifestyle:  AnalyzeLifestyle(snap.Encounters),
		Adherence:  AnalyzeAdherence(snap.Encounters),
		VitalTrend: AnalyzeVitalTrends(snap.TrendVitals, profile),
	}
}
