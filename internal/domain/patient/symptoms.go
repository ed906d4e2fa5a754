package patient

import "strings"

// SymptomTier ranks reported symptom text. Higher values are more urgent.
type SymptomTier int

const (
	SymptomNone SymptomTier = iota
	SymptomLow
	SymptomModerate
	SymptomCritical
)

func (t SymptomTier) String() string {
	switch t {
	case SymptomLow:
		return "low"
	case SymptomModerate:
		return "moderate"
	case SymptomCritical:
		return "critical"
	}
	return "none"
}

// symptomKeywords is checked from the most urgent tier down.
var symptomKeywords = []struct {
	tier     SymptomTier
	keywords []string
}{
	{SymptomCritical, []string{"chest pain", "shortness of breath", "severe headache"}},
	{SymptomModerate, []string{"dizziness", "swelling", "blurred vision"}},
	{SymptomLow, []string{"fatigue", "thirst", "tingling"}},
}

// ClassifySymptoms returns the highest tier whose keyword appears in text,
// matched case-insensitively as a substring, and the keyword that matched.
func ClassifySymptoms(text string) (SymptomTier, string) {
	if text == "" {
		return SymptomNone, ""
	}
	lower := strings.ToLower(text)
	for _, group := range symptomKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.tier, kw
			}
		}
	}
	return SymptomNone, ""
}

// SymptomTierOf classifies the encounter's symptom text; nil text is SymptomNone.
func (e *Encounter) SymptomTierOf() (SymptomTier, string) {
	if e.Symptoms == nil {
		return SymptomNone, ""
	}
	return ClassifySymptoms(*e.Symptoms)
}
