package crrs

import (
	"fmt"
	"math"
	"strings"
)

// Contributions whose magnitude exceeds these are called out by name.
const (
	vitalsCallout    = 2.0
	lifestyleCallout = 1.0
	adherenceCallout = 1.0
)

// Explain builds the patient-facing explanation: the score and tier, the
// direction of change, the dominant contributors and the tier's advice.
// It has no time-dependent content, so equal inputs give equal text.
func Explain(value, delta float64, tier RiskTier, c Contributions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your Cardio-Renal Risk Score today is %.1f (%s). ", value, tier.Description())

	switch {
	case delta > 0:
		fmt.Fprintf(&b, "This is %.1f points higher than your previous score, indicating increased risk. ", delta)
	case delta < 0:
		fmt.Fprintf(&b, "This is %.1f points lower than your previous score, showing improvement! ", math.Abs(delta))
	default:
		b.WriteString("This is the same as your previous score. ")
	}

	if math.Abs(c.Vitals) > vitalsCallout {
		if c.Vitals > 0 {
			b.WriteString("Your recent vital readings are concerning and contributing to higher risk. ")
		} else {
			b.WriteString("Your recent vital readings are good and helping reduce risk. ")
		}
	}
	if math.Abs(c.Lifestyle) > lifestyleCallout {
		if c.Lifestyle > 0 {
			b.WriteString("Your lifestyle choices are increasing your risk. ")
		} else {
			b.WriteString("Your healthy lifestyle choices are reducing your risk. ")
		}
	}
	if math.Abs(c.Adherence) > adherenceCallout {
		if c.Adherence > 0 {
			b.WriteString("Missing medications is increasing your risk. ")
		} else {
			b.WriteString("Good medication adherence is helping your health. ")
		}
	}

	b.WriteString(tier.Recommendation())
	return b.String()
}

// Breakdown renders the per-calculator arithmetic stored with each score.
func Breakdown(previous float64, c Contributions, value float64) string {
	return fmt.Sprintf("CRRS Calculation Breakdown:\n"+
		"Previous Score: %.2f\n"+
		"Vitals Contribution: %.2f\n"+
		"Lifestyle Contribution: %.2f\n"+
		"Adherence Contribution: %.2f\n"+
		"Symptoms Contribution: %.2f\n"+
		"Trend Contribution: %.2f\n"+
		"Total Change: %.2f\n"+
		"New Score: %.2f",
		previous, c.Vitals, c.Lifestyle, c.Adherence, c.Symptoms, c.Trend, c.Total(), value)
}
