package domain

import (
	"fmt"
	"strings"
	"time"
)

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// UrgencyLevels lists the tiers from least to most urgent.
func UrgencyLevels() []UrgencyLevel {
	return []UrgencyLevel{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
}

// Rank orders tiers: low=1 .. critical=4. Unknown levels rank 0.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyLow:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyHigh:
		return 3
	case UrgencyCritical:
		return 4
	default:
		return 0
	}
}

func (u UrgencyLevel) Valid() bool {
	return u.Rank() > 0
}

func ParseUrgencyLevel(raw string) (UrgencyLevel, error) {
	level := UrgencyLevel(strings.ToLower(strings.TrimSpace(raw)))
	if !level.Valid() {
		return "", WrapError(ErrInvalidInput, "parse urgency level", fmt.Errorf("unknown level %q", raw))
	}
	return level, nil
}

// ResolutionWindow is the service-level window an officer has to resolve a petition of this tier.
func (u UrgencyLevel) ResolutionWindow() time.Duration {
	const day = 24 * time.Hour
	switch u {
	case UrgencyCritical:
		return day
	case UrgencyHigh:
		return 3 * day
	case UrgencyMedium:
		return 7 * day
	default:
		return 14 * day
	}
}

// DueDate computes the resolution deadline for a petition submitted at submittedAt.
func (u UrgencyLevel) DueDate(submittedAt time.Time) time.Time {
	return submittedAt.Add(u.ResolutionWindow())
}
