package filter

import (
	"fmt"
	"strings"

	"github.com/Carlsmeister/wikicap/internal/wiki"
)

// ParseQuery parses a filter query into a Filter.
//
// Supported tokens:
//   - "month:March" or "month:mar" - restrict to a month (repeatable)
//   - any other token - a keyword the event text must contain
//
// Quoting is not supported; multi-word phrases become separate keywords.
func ParseQuery(input string) (*Filter, error) {
	f := NewFilter()

	for _, token := range strings.Fields(input) {
		if rest, ok := strings.CutPrefix(strings.ToLower(token), "month:"); ok {
			month, err := canonicalMonth(rest)
			if err != nil {
				return nil, err
			}
			f.Months = append(f.Months, month)
			continue
		}
		f.Keywords = append(f.Keywords, token)
	}
	return f, nil
}

// canonicalMonth resolves a full or three-letter month name to its
// canonical form.
func canonicalMonth(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("month name cannot be empty")
	}
	for _, month := range wiki.Months {
		lower := strings.ToLower(month)
		if name == lower || (len(name) == 3 && strings.HasPrefix(lower, name)) {
			return month, nil
		}
	}
	return "", fmt.Errorf("invalid month: %s", name)
}
