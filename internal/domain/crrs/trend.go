package crrs

import (
	"sort"

	"github.com/vijay-veer/swasthya-sarthi/internal/domain/patient"
)

const (
	minTrendReadings = 3

	bpRisingSlope       = 5.0
	bpFallingSlope      = -5.0
	glucoseRisingSlope  = 10.0
	glucoseFallingSlope = -10.0
)

// Slope is the mean successive difference sum(v[i]-v[i-1])/(n-1). Fewer
// than two points give 0.
func Slope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(values); i++ {
		sum += values[i] - values[i-1]
	}
	return sum / float64(len(values)-1)
}

// Series extracts one numeric series in chronological order. Readings of
// another type or without a value are skipped.
func Series(readings []*patient.VitalReading, vt patient.VitalType) []float64 {
	var picked []*patient.VitalReading
	for _, r := range readings {
		if r.VitalType != vt || seriesValue(r) == nil {
			continue
		}
		picked = append(picked, r)
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].ReadingTimestamp.Before(picked[j].ReadingTimestamp)
	})
	out := make([]float64, 0, len(picked))
	for _, r := range picked {
		out = append(out, *seriesValue(r))
	}
	return out
}

func seriesValue(r *patient.VitalReading) *float64 {
	var v float64
	switch r.VitalType {
	case patient.VitalBloodPressure:
		if r.SystolicBP == nil {
			return nil
		}
		v = float64(*r.SystolicBP)
	case patient.VitalGlucose:
		if r.GlucoseValue == nil {
			return nil
		}
		v = float64(*r.GlucoseValue)
	case patient.VitalWeight:
		if r.WeightKg == nil {
			return nil
		}
		v = *r.WeightKg
	case patient.VitalHeartRate:
		if r.HeartRate == nil {
			return nil
		}
		v = float64(*r.HeartRate)
	default:
		return nil
	}
	return &v
}

// TrendContribution scores systolic and glucose slopes over the trailing
// window. Fewer than three readings of any type in the window scores
// SparseTrendPenalty; a single series with fewer than three points is skipped.
func TrendContribution(window []*patient.VitalReading) float64 {
	if len(window) < minTrendReadings {
		return SparseTrendPenalty
	}
	var total float64
	if bp := Series(window, patient.VitalBloodPressure); len(bp) >= minTrendReadings {
		switch s := Slope(bp); {
		case s > bpRisingSlope:
			total += 3.0
		case s < bpFallingSlope:
			total -= 1.0
		}
	}
	if g := Series(window, patient.VitalGlucose); len(g) >= minTrendReadings {
		switch s := Slope(g); {
		case s > glucoseRisingSlope:
			total += 2.0
		case s < glucoseFallingSlope:
			total -= 1.0
		}
	}
	return total
}
