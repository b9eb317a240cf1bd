package classification

const (
	MaxScore = 100

	departmentKeywordPoints = 10
	departmentMultiBonus    = 5
	// FallbackScore is forced onto the fallback department when nothing matched.
	FallbackScore = 30
)

// ScoreDepartments scores every taxonomy department against normalized text.
// Each keyword hit is worth 10 points and more than one hit earns matches*5 on top,
// capped at 100. When no department matched, the fallback department gets 30.
func (t *Taxonomy) ScoreDepartments(text string) ScoreTable {
	table := make(ScoreTable, 0, len(t.Departments))
	anyMatch := false
	for _, dep := range t.Departments {
		matched := matchKeywords(text, dep.Keywords)
		score := len(matched) * departmentKeywordPoints
		if len(matched) > 1 {
			score += len(matched) * departmentMultiBonus
		}
		if score > 0 {
			anyMatch = true
		}
		table = append(table, Score{ID: dep.ID, Score: clampScore(score), Matched: matched})
	}
	if !anyMatch {
		for i := range table {
			if table[i].ID == t.FallbackDepartmentID {
				table[i].Score = FallbackScore
			}
		}
	}
	return table
}
