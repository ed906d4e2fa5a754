package crrs

import (
	"math"
	"strings"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

// Penalties for days with missing signals.
const (
	MissingVitalsPenalty        = 2.0
	MissingMedicationLogPenalty = 1.0
	SparseTrendPenalty          = 1.0
)

// VitalsContribution sums the per-reading scores of one day's readings.
// A day with no readings scores MissingVitalsPenalty. Readings missing their
// type-specific value, and temperature or SpO2 readings, contribute 0.
func VitalsContribution(profile *patient.PatientProfile, readings []*patient.VitalReading) float64 {
	if len(readings) == 0 {
		return MissingVitalsPenalty
	}
	var total float64
	for _, r := range readings {
		switch r.VitalType {
		case patient.VitalBloodPressure:
			total += bpScore(profile, r)
		case patient.VitalGlucose:
			total += glucoseScore(profile, r)
		case patient.VitalWeight:
			total += weightScore(profile, r)
		case patient.VitalHeartRate:
			total += heartRateScore(r)
		}
	}
	return total
}

func bpScore(profile *patient.PatientProfile, r *patient.VitalReading) float64 {
	if r.SystolicBP == nil || r.DiastolicBP == nil {
		return 0
	}
	sbp, dbp := *r.SystolicBP, *r.DiastolicBP
	switch {
	case profile.InBPTarget(sbp, dbp):
		return -1.0
	case sbp >= 180 || dbp >= 110:
		return 15.0
	case sbp >= 160 || dbp >= 100:
		return 8.0
	}
	over := math.Max(0, float64(sbp-profile.TargetSystolicMax)) + math.Max(0, float64(dbp-profile.TargetDiastolicMax))
	return math.Min(5.0, over/10)
}

func glucoseScore(profile *patient.PatientProfile, r *patient.VitalReading) float64 {
	if r.GlucoseValue == nil {
		return 0
	}
	g := *r.GlucoseValue
	fasting := r.Fasting()
	switch {
	case profile.InGlucoseTarget(g, fasting):
		return -1.0
	case g < 70:
		return 10.0
	case g > 300:
		return 12.0
	}
	over := math.Max(0, float64(g-profile.GlucoseTargetMax(fasting)))
	return math.Min(6.0, over/20)
}

func weightScore(profile *patient.PatientProfile, r *patient.VitalReading) float64 {
	if r.WeightKg == nil || profile.TargetWeightKg == nil {
		return 0
	}
	dev := math.Abs(*r.WeightKg - *profile.TargetWeightKg)
	if dev <= 2.0 {
		return -0.5
	}
	return math.Min(3.0, dev/5)
}

func heartRateScore(r *patient.VitalReading) float64 {
	if r.HeartRate == nil {
		return 0
	}
	hr := *r.HeartRate
	switch {
	case hr >= 60 && hr <= 100:
		return -0.5
	case hr < 50 || hr > 120:
		return 3.0
	}
	return 1.0
}

// LifestyleContribution sums activity, diet, sleep and stress scores over
// every encounter of the day. Multiple logs compound.
func LifestyleContribution(encounters []*patient.Encounter) float64 {
	var total float64
	for _, e := range encounters {
		if e.ActivityMinutes != nil {
			switch {
			case *e.ActivityMinutes >= 30:
				total -= 2.0
			case *e.ActivityMinutes < 10:
				total += 1.0
			}
		}
		if UnhealthyDiet(e.DietTags) {
			total += 1.5
		}
		if e.SleepHours != nil {
			switch h := *e.SleepHours; {
			case h < 6 || h > 9:
				total += 1.0
			case h >= 7 && h <= 8:
				total -= 0.5
			}
		}
		if e.StressLevel != nil {
			switch {
			case *e.StressLevel >= 4:
				total += 1.0
			case *e.StressLevel <= 2:
				total -= 0.5
			}
		}
	}
	return total
}

// UnhealthyDiet reports whether any tag mentions fried food or sweets.
func UnhealthyDiet(tags []string) bool {
	for _, tag := range tags {
		t := strings.ToLower(tag)
		if strings.Contains(t, "fried") || strings.Contains(t, "sweets") {
			return true
		}
	}
	return false
}

// AdherenceContribution scores +3.0 per explicitly missed dose and -1.0 per
// explicitly taken dose. An encounter with both flags set scores both. A day
// with no medication flags at all scores MissingMedicationLogPenalty.
func AdherenceContribution(encounters []*patient.Encounter) float64 {
	var total float64
	logged := false
	for _, e := range encounters {
		if !e.LogsMedication() {
			continue
		}
		logged = true
		if e.Missed() {
			total += 3.0
		}
		if e.Taken() {
			total -= 1.0
		}
	}
	if !logged {
		total += MissingMedicationLogPenalty
	}
	return total
}

var symptomWeights = map[patient.SymptomTier]float64{
	patient.SymptomCritical: 8.0,
	patient.SymptomModerate: 4.0,
	patient.SymptomLow:      2.0,
}

// SymptomsContribution scores the highest matching tier of each encounter.
func SymptomsContribution(encounters []*patient.Encounter) float64 {
	var total float64
	for _, e := range encounters {
		tier, _ := e.SymptomTierOf()
		total += symptomWeights[tier]
	}
	return total
}
