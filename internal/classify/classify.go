// Package classify assigns coarse categories to extra-flag candidates and
// holds the noise-name policy used by post-ingestion cleanup. The keyword
// lists are hand-maintained policy data and both over- and under-match;
// callers may substitute their own lists.
package classify

import (
	"strings"

	"github.com/gyarab/2025-wt-prj-khudanych/internal/model"
)

// Classifier guesses a category from an entity label by keyword membership.
// Evaluation order is city, state, territory; anything else falls back to
// region. The result is a heuristic, not authoritative.
type Classifier struct {
	CityKeywords      []string
	StateKeywords     []string
	TerritoryKeywords []string
}

// NewClassifier returns a classifier with the default keyword lists.
func NewClassifier() *Classifier {
	return &Classifier{
		CityKeywords: []string{
			" city", " town", " municipal", " commune", " borough", " metropol",
		},
		StateKeywords: []string{
			"province", "state of", "canton", "prefecture", "voivodeship",
			"oblast", "department", "governorate", "emirate", "county of",
			"autonomous community", "district",
		},
		TerritoryKeywords: []string{
			"territory", "dependent", "overseas",
		},
	}
}

// Classify maps an entity label to one of city, state, territory or region.
func (c *Classifier) Classify(label string) string {
	nl := strings.ToLower(label)
	if containsAny(nl, c.CityKeywords) {
		return model.CategoryCity
	}
	if containsAny(nl, c.StateKeywords) {
		return model.CategoryState
	}
	if containsAny(nl, c.TerritoryKeywords) {
		return model.CategoryTerritory
	}
	return model.CategoryRegion
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// DefaultNoisePatterns lists name substrings marking records the source cannot
// distinguish from legitimate entities: sports teams, event delegations and
// military units. Matched rows are pruned during cleanup.
func DefaultNoisePatterns() []string {
	return []string{
		"football team", "basketball team", "handball team",
		"volleyball team", "hockey team", "rugby team",
		"cricket team", "baseball team", "olympic", "paralympic",
		"under-17", "under-18", "under-19", "under-20", "under-21",
		"under-23", "women's national", "men's national",
		"national team", "at the 20", "at the 19", "grand prix",
		"marine corps", "coast guard", "national guard",
	}
}

// IsNoise reports whether a name matches any noise pattern, case-insensitively.
func IsNoise(name string, patterns []string) bool {
	nl := strings.ToLower(name)
	return containsAny(nl, patterns)
}
