package classification

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grievease/petition-triage/internal/core/domain"
)

// DepartmentKeywords maps a department id to the substrings that route text to it.
type DepartmentKeywords struct {
	ID       int64    `yaml:"id"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type UrgencyKeywords struct {
	Critical     []string `yaml:"critical"`
	High         []string `yaml:"high"`
	Medium       []string `yaml:"medium"`
	Low          []string `yaml:"low"`
	TimePressure []string `yaml:"time_pressure"`
}

// Taxonomy is the immutable keyword table behind department and urgency scoring.
// Build a new value and swap it in instead of mutating a shared one.
type Taxonomy struct {
	FallbackDepartmentID int64                `yaml:"fallback_department_id"`
	Departments          []DepartmentKeywords `yaml:"departments"`
	Urgency              UrgencyKeywords      `yaml:"urgency"`
}

// DefaultTaxonomy returns the built-in keyword table.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		FallbackDepartmentID: 1,
		Departments: []DepartmentKeywords{
			{ID: 1, Name: "Public Works", Keywords: []string{"road", "pothole", "water", "pipe", "street", "light", "building", "infrastructure", "maintenance", "repair"}},
			{ID: 2, Name: "Health", Keywords: []string{"health", "hospital", "doctor", "medicine", "treatment", "ambulance", "medical", "pregnant"}},
			{ID: 3, Name: "Education", Keywords: []string{"school", "education", "teacher", "student", "book", "uniform", "scholarship", "classroom"}},
			{ID: 4, Name: "Transportation", Keywords: []string{"transport", "bus", "traffic", "vehicle", "registration", "license", "auto", "rickshaw"}},
			{ID: 5, Name: "Revenue", Keywords: []string{"land", "property", "tax", "revenue", "registration", "survey", "record", "title"}},
			{ID: 6, Name: "Police", Keywords: []string{"police", "crime", "theft", "safety", "security", "complaint", "fir", "violence"}},
			{ID: 7, Name: "Municipal", Keywords: []string{"municipal", "urban", "building", "permit", "waste", "garbage", "park", "planning"}},
			{ID: 8, Name: "Agriculture", Keywords: []string{"agriculture", "crop", "farmer", "fertilizer", "irrigation", "insurance", "pest", "farm"}},
			{ID: 9, Name: "Forest", Keywords: []string{"forest", "tree", "wildlife", "environment", "conservation", "pollution", "animal"}},
			{ID: 10, Name: "Social Welfare", Keywords: []string{"welfare", "pension", "scheme", "women", "child", "disability", "assistance", "elderly"}},
		},
		Urgency: UrgencyKeywords{
			Critical: []string{
				"emergency", "urgent", "immediate", "life threatening", "danger", "critical", "accident",
				"fire", "flood", "collapse", "death", "dying", "bleeding", "poison", "explosion", "gas leak",
				"electrical hazard", "violence", "assault", "robbery", "kidnap", "child abuse", "domestic violence",
			},
			High: []string{
				"broken", "not working", "damaged", "leak", "overflow", "blocked", "severe", "serious", "major",
				"widespread", "affecting many", "health risk", "safety concern", "public safety", "contaminated",
				"infectious", "disease outbreak", "pain", "sick", "injury", "hurt",
			},
			Medium: []string{
				"repair", "fix", "maintenance", "replace", "improve", "upgrade", "complaint", "issue", "problem",
				"concern", "request", "need", "poor condition", "old", "worn out", "inefficient", "slow",
			},
			Low: []string{
				"suggestion", "recommend", "enhance", "beautify", "convenience", "future", "plan", "consider",
				"proposal", "idea", "optional", "when possible", "at your convenience", "non-urgent", "minor",
			},
			TimePressure: []string{
				"as soon as possible", "asap", "immediately", "right now", "today", "this week", "urgent",
				"emergency", "can't wait",
			},
		},
	}
}

// ParseTaxonomy decodes and validates a YAML taxonomy document.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse taxonomy", err)
	}
	if err := t.normalize(); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate taxonomy", err)
	}
	return &t, nil
}

// LoadTaxonomyFile reads a YAML override of the built-in taxonomy.
func LoadTaxonomyFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return ParseTaxonomy(data)
}

func (t *Taxonomy) normalize() error {
	if len(t.Departments) == 0 {
		return errors.New("taxonomy has no departments")
	}
	seen := make(map[int64]struct{}, len(t.Departments))
	for i := range t.Departments {
		dep := &t.Departments[i]
		if dep.ID <= 0 {
			return fmt.Errorf("department %q: id must be positive", dep.Name)
		}
		if _, ok := seen[dep.ID]; ok {
			return fmt.Errorf("department id %d is duplicated", dep.ID)
		}
		seen[dep.ID] = struct{}{}
		dep.Keywords = cleanKeywords(dep.Keywords)
		if len(dep.Keywords) == 0 {
			return fmt.Errorf("department %d has no keywords", dep.ID)
		}
	}
	slices.SortStableFunc(t.Departments, func(a, b DepartmentKeywords) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	if t.FallbackDepartmentID == 0 {
		t.FallbackDepartmentID = t.Departments[0].ID
	}
	if _, ok := seen[t.FallbackDepartmentID]; !ok {
		return fmt.Errorf("fallback department %d is not in the taxonomy", t.FallbackDepartmentID)
	}

	t.Urgency.Critical = cleanKeywords(t.Urgency.Critical)
	t.Urgency.High = cleanKeywords(t.Urgency.High)
	t.Urgency.Medium = cleanKeywords(t.Urgency.Medium)
	t.Urgency.Low = cleanKeywords(t.Urgency.Low)
	t.Urgency.TimePressure = cleanKeywords(t.Urgency.TimePressure)
	return nil
}

func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		out = append(out, kw)
	}
	return out
}

// EncodeYAML renders the taxonomy in the layout ParseTaxonomy reads.
func (t *Taxonomy) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(t)
}
