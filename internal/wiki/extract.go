package wiki

import "strings"

// DefaultMonthLimit caps how many events one month contributes.
const DefaultMonthLimit = 6

// ExtractMonth walks the candidate lines of one month bucket in order,
// cleans each bullet line, and collects up to limit events. Scanning stops
// as soon as the cap is reached; trailing noise in long sections is never
// evaluated. Lines that are not bullets (section headers, stray prose) are
// skipped, and a bucket where every line is discarded yields nil.
func ExtractMonth(lines []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMonthLimit
	}
	var events []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "*") {
			continue
		}
		cleaned, ok := CleanEventLine(trimmed, false)
		if !ok {
			continue
		}
		events = append(events, cleaned.Text)
		if len(events) >= limit {
			break
		}
	}
	return events
}
