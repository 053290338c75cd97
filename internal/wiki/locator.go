package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawContent is the unparsed representation of a year article, tagged by
// fetch strategy. Locate switches on the concrete type rather than probing
// the payload shape at runtime.
type RawContent interface {
	rawContent()
}

// HTMLTree wraps a fully parsed article document (action=parse, prop=text).
type HTMLTree struct {
	Doc *goquery.Document
}

// TOCIndex wraps the flattened table-of-contents entry list of a year page
// (action=parse, prop=tocdata).
type TOCIndex struct {
	Entries []TOCEntry
}

// SectionMarkup wraps the raw wikitext of one already-isolated month
// section; no further locating is needed.
type SectionMarkup struct {
	Month    string
	Wikitext string
}

func (HTMLTree) rawContent()      {}
func (TOCIndex) rawContent()      {}
func (SectionMarkup) rawContent() {}

// TOCEntry is one table-of-contents row. Index is an opaque section token
// used for a follow-up per-section wikitext fetch.
type TOCEntry struct {
	Line  string
	Index string
	Level int
}

// MonthSection is one month bucket of the Events section, in source order.
// Lines carries candidate bullet lines when the content was available
// inline (HTML and markup modes); SectionIndex is set instead in TOC mode,
// where the month's wikitext still has to be fetched.
type MonthSection struct {
	Month        string
	Lines        []string
	SectionIndex string
}

// Locate finds the "Events" section of raw and splits it into ordered month
// buckets. A missing Events section, or a page with no month sub-headings,
// yields an empty slice, never an error. If a month heading appears twice
// the later occurrence replaces the earlier bucket's content, keeping the
// original position.
func Locate(raw RawContent) []MonthSection {
	switch c := raw.(type) {
	case HTMLTree:
		return locateHTML(c.Doc)
	case TOCIndex:
		return locateTOC(c.Entries)
	case SectionMarkup:
		return []MonthSection{{Month: c.Month, Lines: strings.Split(c.Wikitext, "\n")}}
	default:
		return nil
	}
}

// locateHTML walks the document from the Events heading forward,
// sibling-by-sibling, until the next same-or-higher-level heading. Month
// sub-headings open buckets; list items append to the current bucket with a
// synthetic bullet marker so the cleaner's stripping rules apply uniformly.
func locateHTML(doc *goquery.Document) []MonthSection {
	if doc == nil {
		return nil
	}
	heading := findEventsHeading(doc)
	if heading == nil {
		return nil
	}
	boundary := headingLevel(goquery.NodeName(heading))

	var sections []MonthSection
	byMonth := make(map[string]int)
	current := -1

	for cursor := heading.Next(); cursor.Length() > 0; cursor = cursor.Next() {
		name := goquery.NodeName(cursor)
		if level := headingLevel(name); level > 0 {
			if level <= boundary {
				break
			}
			month := strings.TrimSpace(cursor.Text())
			if !IsMonth(month) {
				current = -1
				continue
			}
			if i, seen := byMonth[month]; seen {
				sections[i].Lines = nil
				current = i
				continue
			}
			sections = append(sections, MonthSection{Month: month})
			byMonth[month] = len(sections) - 1
			current = len(sections) - 1
			continue
		}
		if current < 0 || (name != "ul" && name != "ol") {
			continue
		}
		cursor.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			text := strings.TrimSpace(li.Text())
			if text != "" {
				sections[current].Lines = append(sections[current].Lines, "* "+text)
			}
		})
	}
	return sections
}

// findEventsHeading resolves the Events heading either by its own element
// id or through a nested anchor/span id, walked up to the enclosing heading.
func findEventsHeading(doc *goquery.Document) *goquery.Selection {
	if h := doc.Find("h1#Events, h2#Events, h3#Events, h4#Events").First(); h.Length() > 0 {
		return h
	}
	if inner := doc.Find("span#Events, a#Events").First(); inner.Length() > 0 {
		h := inner.Closest("h1, h2, h3, h4")
		if h.Length() > 0 {
			return h
		}
	}
	return nil
}

// headingLevel returns N for heading tag "hN", 0 for anything else.
func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

// locateTOC keeps entries nested under the "Events" entry whose title is a
// canonical month, recording their section index tokens. When no Events
// entry exists the whole list is scanned, since some year pages promote
// month headings to the top level.
func locateTOC(entries []TOCEntry) []MonthSection {
	eventsAt := -1
	eventsLevel := 0
	for i, entry := range entries {
		line := strings.TrimSpace(entry.Line)
		if strings.EqualFold(line, "Events") || strings.HasPrefix(strings.ToLower(line), "events") {
			eventsAt = i
			eventsLevel = entry.Level
			break
		}
	}

	var sections []MonthSection
	byMonth := make(map[string]int)
	appendMonth := func(entry TOCEntry) {
		month := strings.TrimSpace(entry.Line)
		if !IsMonth(month) {
			return
		}
		if i, seen := byMonth[month]; seen {
			sections[i].SectionIndex = entry.Index
			return
		}
		sections = append(sections, MonthSection{Month: month, SectionIndex: entry.Index})
		byMonth[month] = len(sections) - 1
	}

	if eventsAt >= 0 {
		for _, entry := range entries[eventsAt+1:] {
			if entry.Level != 0 && entry.Level <= eventsLevel {
				break
			}
			appendMonth(entry)
		}
	}
	if len(sections) == 0 {
		for _, entry := range entries {
			appendMonth(entry)
		}
	}
	return sections
}
