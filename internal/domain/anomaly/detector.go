package anomaly

import (
	"fmt"
	"math"
	"time"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

// Static thresholds. Glucose target maxima come from the profile.
const (
	bpCriticalSystolic  = 180
	bpCriticalDiastolic = 110
	bpHighSystolic      = 160
	bpHighDiastolic     = 100
	bpElevatedSystolic  = 140
	bpElevatedDiastolic = 90
	bpLowSystolic       = 90
	bpLowDiastolic      = 60

	glucoseCriticalLow  = 70
	glucoseCriticalHigh = 300
	glucoseHigh         = 250

	heartRateLow  = 50
	heartRateHigh = 120

	weightDeviationKg = 5.0
)

// Detector classifies readings and encounters. It holds no state besides
// the clock used to stamp DetectedAt.
type Detector struct {
	now func() time.Time
}

func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// NewDetectorWithClock is used by tests and replays that need stable timestamps.
func NewDetectorWithClock(now func() time.Time) *Detector {
	return &Detector{now: now}
}

// Detect runs every vital rule over vitals and every encounter rule over
// encounters, in input order.
func (d *Detector) Detect(vitals []*patient.VitalReading, encounters []*patient.Encounter, profile *patient.PatientProfile) []Anomaly {
	at := d.now()
	var out []Anomaly
	for _, v := range vitals {
		if a, ok := d.vital(v, profile, at); ok {
			out = append(out, a)
		}
	}
	for _, e := range encounters {
		out = append(out, encounterAnomalies(e, at)...)
	}
	return out
}

func (d *Detector) vital(v *patient.VitalReading, profile *patient.PatientProfile, at time.Time) (Anomaly, bool) {
	switch v.VitalType {
	case patient.VitalBloodPressure:
		return bloodPressure(v, at)
	case patient.VitalGlucose:
		return glucose(v, profile, at)
	case patient.VitalHeartRate:
		return heartRate(v, at)
	case patient.VitalWeight:
		return weight(v, profile, at)
	}
	return Anomaly{}, false
}

// bloodPressure applies the tiers in priority order; the first match wins.
func bloodPressure(v *patient.VitalReading, at time.Time) (Anomaly, bool) {
	if v.SystolicBP == nil || v.DiastolicBP == nil {
		return Anomaly{}, false
	}
	sbp, dbp := *v.SystolicBP, *v.DiastolicBP
	reading := fmt.Sprintf("%d/%d mmHg", sbp, dbp)
	value := float64(sbp)

	switch {
	case sbp >= bpCriticalSystolic || dbp >= bpCriticalDiastolic:
		return newAnomaly(TypeBloodPressureHigh, SeverityCritical, "Critical blood pressure: "+reading, at, &value, floatPtr(bpCriticalSystolic)), true
	case sbp >= bpHighSystolic || dbp >= bpHighDiastolic:
		return newAnomaly(TypeBloodPressureHigh, SeverityHigh, "High blood pressure: "+reading, at, &value, floatPtr(bpHighSystolic)), true
	case sbp >= bpElevatedSystolic || dbp >= bpElevatedDiastolic:
		return newAnomaly(TypeBloodPressureHigh, SeverityMedium, "Elevated blood pressure: "+reading, at, &value, floatPtr(bpElevatedSystolic)), true
	case sbp < bpLowSystolic || dbp < bpLowDiastolic:
		return newAnomaly(TypeBloodPressureLow, SeverityMedium, "Low blood pressure: "+reading, at, &value, floatPtr(bpLowSystolic)), true
	}
	return Anomaly{}, false
}

func glucose(v *patient.VitalReading, profile *patient.PatientProfile, at time.Time) (Anomaly, bool) {
	if v.GlucoseValue == nil {
		return Anomaly{}, false
	}
	g := *v.GlucoseValue
	value := float64(g)
	targetMax := profile.GlucoseTargetMax(v.Fasting())

	switch {
	case g < glucoseCriticalLow:
		return newAnomaly(TypeGlucoseLow, SeverityCritical, fmt.Sprintf("Critical low glucose: %d mg/dL", g), at, &value, floatPtr(glucoseCriticalLow)), true
	case g > glucoseCriticalHigh:
		return newAnomaly(TypeGlucoseHigh, SeverityCritical, fmt.Sprintf("Critical high glucose: %d mg/dL", g), at, &value, floatPtr(glucoseCriticalHigh)), true
	case g > glucoseHigh:
		return newAnomaly(TypeGlucoseHigh, SeverityHigh, fmt.Sprintf("High glucose: %d mg/dL", g), at, &value, floatPtr(glucoseHigh)), true
	case g > targetMax:
		meal := "post-meal"
		if v.Fasting() {
			meal = "fasting"
		}
		return newAnomaly(TypeGlucoseHigh, SeverityMedium, fmt.Sprintf("Elevated glucose: %d mg/dL (%s)", g, meal), at, &value, floatPtr(float64(targetMax))), true
	}
	return Anomaly{}, false
}

func heartRate(v *patient.VitalReading, at time.Time) (Anomaly, bool) {
	if v.HeartRate == nil {
		return Anomaly{}, false
	}
	hr := *v.HeartRate
	if hr >= heartRateLow && hr <= heartRateHigh {
		return Anomaly{}, false
	}
	value := float64(hr)
	threshold := float64(heartRateHigh)
	if hr < heartRateLow {
		threshold = heartRateLow
	}
	return newAnomaly(TypeHeartRateAbnormal, SeverityMedium, fmt.Sprintf("Abnormal heart rate: %d bpm", hr), at, &value, &threshold), true
}

func weight(v *patient.VitalReading, profile *patient.PatientProfile, at time.Time) (Anomaly, bool) {
	if v.WeightKg == nil || profile.TargetWeightKg == nil {
		return Anomaly{}, false
	}
	current, target := *v.WeightKg, *profile.TargetWeightKg
	if math.Abs(current-target) <= weightDeviationKg {
		return Anomaly{}, false
	}
	desc := fmt.Sprintf("Significant weight deviation: %.1f kg (target: %.1f kg)", current, target)
	return newAnomaly(TypeWeightChange, SeverityMedium, desc, at, &current, &target), true
}

// encounterAnomalies yields at most one medication and one symptom anomaly.
// Low-tier symptoms are scored elsewhere and never flagged.
func encounterAnomalies(e *patient.Encounter, at time.Time) []Anomaly {
	var out []Anomaly
	if e.Missed() {
		out = append(out, newAnomaly(TypeMissingMedication, SeverityHigh, "Medication dose missed", at, nil, nil))
	}
	tier, _ := e.SymptomTierOf()
	switch tier {
	case patient.SymptomCritical:
		out = append(out, newAnomaly(TypeSymptomReported, SeverityCritical, "Critical symptoms reported: "+*e.Symptoms, at, nil, nil))
	case patient.SymptomModerate:
		out = append(out, newAnomaly(TypeSymptomReported, SeverityHigh, "Concerning symptoms reported: "+*e.Symptoms, at, nil, nil))
	}
	return out
}

func newAnomaly(t Type, s Severity, desc string, at time.Time, value, threshold *float64) Anomaly {
	return Anomaly{Type: t, Severity: s, Description: desc, DetectedAt: at, Value: value, Threshold: threshold}
}

func floatPtr(f float64) *float64 { return &f }
