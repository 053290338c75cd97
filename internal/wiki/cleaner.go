package wiki

import (
	"regexp"
	"strings"
)

// MaxEventLen is the length at which cleaned event text is truncated.
const MaxEventLen = 200

var (
	refTagRe   = regexp.MustCompile(`(?is)<ref[^>]*>.*?</ref>`)
	refSelfRe  = regexp.MustCompile(`(?i)<ref[^/>]*/>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlTagRe  = regexp.MustCompile(`(?s)<[^>]+>`)
	fileLinkRe = regexp.MustCompile(`(?i)\[\[(?:File|Image):[^\]]+\]\]`)
	templateRe = regexp.MustCompile(`(?s)\{\{[^}]+\}\}`)
	wikiLinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	footnoteRe = regexp.MustCompile(`\[\d+\]`)
	quotesRe   = regexp.MustCompile(`''+`)
	markerRe   = regexp.MustCompile(`^[*#:]+\s*`)
	spaceRe    = regexp.MustCompile(`\s+`)
	edgeDashRe = regexp.MustCompile(`^[-\s]+|[-\s]+$`)

	datePrefixRe = regexp.MustCompile(`(?i)^(?:\[\[)?(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:\]\])?\s*[\x{2013}\x{2014}-]\s*`)
)

// CleanedEvent is one event line after markup stripping. Date holds an
// abbreviated date token ("Jan 12") when the line opened with one,
// regardless of whether the prefix was kept in Text.
type CleanedEvent struct {
	Date string
	Text string
}

// CleanEventLine normalizes one candidate event line: a wikitext bullet, or
// plain text already extracted from an HTML list item. It strips list
// markers, reference tags, HTML, templates, file links, bracketed footnote
// markers and quote markup, and flattens wiki links to their display text.
//
// When keepDatePrefix is false a leading "Month Day –" token is removed;
// the month context is already carried by the surrounding bucket.
//
// The second return value is false when nothing useful remains. Malformed
// input never panics; worst case the line is discarded.
func CleanEventLine(line string, keepDatePrefix bool) (CleanedEvent, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return CleanedEvent{}, false
	}

	s = markerRe.ReplaceAllString(s, "")

	var date string
	if m := datePrefixRe.FindStringSubmatch(s); m != nil {
		date = abbrevMonth(m[1]) + " " + m[2]
		if !keepDatePrefix {
			s = strings.TrimSpace(s[len(m[0]):])
		}
	}

	s = refTagRe.ReplaceAllString(s, "")
	s = refSelfRe.ReplaceAllString(s, "")
	s = commentRe.ReplaceAllString(s, "")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = fileLinkRe.ReplaceAllString(s, "")
	s = templateRe.ReplaceAllString(s, "")
	s = flattenWikiLinks(s)
	s = footnoteRe.ReplaceAllString(s, "")
	s = quotesRe.ReplaceAllString(s, "")

	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)
	s = spaceRe.ReplaceAllString(s, " ")
	s = edgeDashRe.ReplaceAllString(s, "")

	if s == "" {
		return CleanedEvent{}, false
	}

	if runes := []rune(s); len(runes) > MaxEventLen {
		s = strings.TrimSpace(string(runes[:MaxEventLen-3])) + "..."
	}

	return CleanedEvent{Date: date, Text: s}, true
}

// flattenWikiLinks rewrites [[target|display]] to "display" and [[target]]
// to "target". Links into maintenance namespaces are dropped outright.
func flattenWikiLinks(s string) string {
	return wikiLinkRe.ReplaceAllStringFunc(s, func(match string) string {
		inner := strings.TrimSpace(match[2 : len(match)-2])
		if inner == "" {
			return ""
		}
		lowered := strings.ToLower(inner)
		for _, ns := range []string{"category:", "help:", "portal:", "special:"} {
			if strings.HasPrefix(lowered, ns) {
				return ""
			}
		}
		if i := strings.LastIndex(inner, "|"); i >= 0 {
			return strings.TrimSpace(inner[i+1:])
		}
		return inner
	})
}

func abbrevMonth(name string) string {
	lower := strings.ToLower(name)
	return strings.ToUpper(lower[:1]) + lower[1:3]
}
