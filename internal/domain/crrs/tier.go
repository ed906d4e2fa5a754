package crrs

// RiskTier partitions [0,100]: LOW [0,25), MODERATE [25,50), HIGH [50,75),
// CRITICAL [75,100].
type RiskTier string

const (
	TierLow      RiskTier = "LOW"
	TierModerate RiskTier = "MODERATE"
	TierHigh     RiskTier = "HIGH"
	TierCritical RiskTier = "CRITICAL"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

type tierInfo struct {
	tier           RiskTier
	lower          float64
	description    string
	recommendation string
}

// tiers is ordered by ascending lower bound.
var tiers = []tierInfo{
	{TierLow, 0, "Low Risk",
		"Keep up the great work! Continue your healthy habits."},
	{TierModerate, 25, "Moderate Risk",
		"Focus on improving your lifestyle habits. Consider increasing physical activity and monitoring your diet."},
	{TierHigh, 50, "High Risk",
		"Your risk is elevated. Please consult with your healthcare provider and focus on medication adherence and lifestyle changes."},
	{TierCritical, 75, "Critical Risk",
		"Your risk is critical. Please seek immediate medical attention and ensure you're following all medical advice."},
}

// FromScore classifies a score. The top tier is closed at 100 and anything
// above it stays CRITICAL; values below 0 are LOW.
func FromScore(score float64) RiskTier {
	for i := len(tiers) - 1; i >= 0; i-- {
		if score >= tiers[i].lower {
			return tiers[i].tier
		}
	}
	return TierLow
}

func (t RiskTier) info() (tierInfo, bool) {
	for _, ti := range tiers {
		if ti.tier == t {
			return ti, true
		}
	}
	return tierInfo{}, false
}

func (t RiskTier) Valid() bool {
	_, ok := t.info()
	return ok
}

// Description is the patient-facing tier label, e.g. "High Risk".
func (t RiskTier) Description() string {
	ti, _ := t.info()
	return ti.description
}

// Recommendation is the advice appended to a score explanation.
func (t RiskTier) Recommendation() string {
	ti, _ := t.info()
	return ti.recommendation
}

// Clamp bounds v to [MinScore, MaxScore].
func Clamp(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
