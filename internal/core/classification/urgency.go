package classification

import "github.com/grievease/petition-triage/internal/core/domain"

const (
	criticalWeight = 2.0
	highWeight     = 1.5
	mediumWeight   = 1.0
	lowWeight      = 0.5
)

// UrgencyTally holds the weighted keyword sums for one text.
type UrgencyTally struct {
	Critical     float64
	High         float64
	Medium       float64
	Low          float64
	TimePressure bool
}

type urgencyRule struct {
	name    string
	matches func(UrgencyTally) bool
	level   domain.UrgencyLevel
}

// urgencyLadder is evaluated top to bottom; the first matching rule decides.
// The two high rules overlap on purpose: two or more high hits, or one high hit,
// or three medium hits all land on high.
var urgencyLadder = []urgencyRule{
	{
		name:    "critical keyword or time pressure",
		matches: func(t UrgencyTally) bool { return t.Critical > 0 || t.TimePressure },
		level:   domain.UrgencyCritical,
	},
	{
		name:    "repeated high keywords",
		matches: func(t UrgencyTally) bool { return t.High >= 2.0 },
		level:   domain.UrgencyHigh,
	},
	{
		name:    "high keyword or accumulated medium keywords",
		matches: func(t UrgencyTally) bool { return t.High >= 1.0 || t.Medium >= 3.0 },
		level:   domain.UrgencyHigh,
	},
	{
		name:    "medium keyword or accumulated low keywords",
		matches: func(t UrgencyTally) bool { return t.Medium >= 1.0 || t.Low >= 2.0 },
		level:   domain.UrgencyMedium,
	},
	{
		name:    "default",
		matches: func(UrgencyTally) bool { return true },
		level:   domain.UrgencyLow,
	},
}

// TallyUrgency sums the weighted keyword hits per urgency family.
func (t *Taxonomy) TallyUrgency(text string) UrgencyTally {
	return UrgencyTally{
		Critical:     float64(countMatches(text, t.Urgency.Critical)) * criticalWeight,
		High:         float64(countMatches(text, t.Urgency.High)) * highWeight,
		Medium:       float64(countMatches(text, t.Urgency.Medium)) * mediumWeight,
		Low:          float64(countMatches(text, t.Urgency.Low)) * lowWeight,
		TimePressure: countMatches(text, t.Urgency.TimePressure) > 0,
	}
}

// EstimateUrgency assigns an urgency tier to normalized text.
func (t *Taxonomy) EstimateUrgency(text string) domain.UrgencyLevel {
	return decideUrgency(t.TallyUrgency(text))
}

func decideUrgency(tally UrgencyTally) domain.UrgencyLevel {
	for _, rule := range urgencyLadder {
		if rule.matches(tally) {
			return rule.level
		}
	}
	return domain.UrgencyLow
}

var urgencyClauses = map[domain.UrgencyLevel]string{
	domain.UrgencyCritical: "emergency indicators and immediate action keywords",
	domain.UrgencyHigh:     "safety concerns and urgent repair needs",
	domain.UrgencyMedium:   "standard issue requiring timely attention",
	domain.UrgencyLow:      "non-urgent improvement or suggestion",
}
