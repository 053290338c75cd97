// Package filter narrows a year's event overview.
//
// Callers can restrict results to named months and to events whose text
// contains given keywords (case-insensitive substring matching). Filters
// come from a small query syntax, see ParseQuery.
//
// Example usage:
//
//	// Events mentioning "treaty" in March or April
//	f, err := filter.ParseQuery("treaty month:March month:April")
//	filtered := f.Apply(result.EventsByMonth)
package filter

import (
	"strings"

	"github.com/Carlsmeister/wikicap/internal/summary"
)

// Filter represents event filtering criteria
type Filter struct {
	// Keywords the event text must all contain (case-insensitive).
	Keywords []string `json:"keywords,omitempty"`

	// Months restricts results to these canonical month names.
	Months []string `json:"months,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Keywords: []string{},
		Months:   []string{},
	}
}

// IsEmpty checks if the filter has any active criteria.
// Returns true if the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return len(f.Keywords) == 0 && len(f.Months) == 0
}

// MatchesMonth reports whether the month survives the month criterion.
func (f *Filter) MatchesMonth(month string) bool {
	if len(f.Months) == 0 {
		return true
	}
	for _, m := range f.Months {
		if strings.EqualFold(m, month) {
			return true
		}
	}
	return false
}

// MatchesEvent reports whether the event text contains every keyword.
// An empty keyword list matches everything.
func (f *Filter) MatchesEvent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range f.Keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// Apply returns the subset of events matching all active criteria. The
// input is never mutated; an empty filter returns it unchanged.
func (f *Filter) Apply(events summary.EventsByMonth) summary.EventsByMonth {
	if f.IsEmpty() {
		return events
	}

	out := make(summary.EventsByMonth)
	for month, lines := range events {
		if !f.MatchesMonth(month) {
			continue
		}
		var kept []string
		for _, line := range lines {
			if f.MatchesEvent(line) {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			out[month] = kept
		}
	}
	return out
}
