package classification

import (
	"cmp"
	"slices"
	"strings"
)

// Score is one candidate's result. Matched lists the keywords found, in keyword order.
type Score struct {
	ID      int64
	Score   int
	Matched []string
}

// ScoreTable keeps candidates in enumeration order.
type ScoreTable []Score

// Best returns the strictly highest score. Ties keep the earliest entry.
func (t ScoreTable) Best() (Score, bool) {
	if len(t) == 0 {
		return Score{}, false
	}
	best := t[0]
	for _, s := range t[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best, true
}

func (t ScoreTable) Lookup(id int64) (Score, bool) {
	for _, s := range t {
		if s.ID == id {
			return s, true
		}
	}
	return Score{}, false
}

// Ranked returns a copy sorted by descending score; equal scores keep enumeration order.
func (t ScoreTable) Ranked() ScoreTable {
	out := slices.Clone(t)
	slices.SortStableFunc(out, func(a, b Score) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func clampScore(v int) int {
	return max(0, min(MaxScore, v))
}
