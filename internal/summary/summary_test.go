package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Carlsmeister/wikicap/internal/cache"
	"github.com/Carlsmeister/wikicap/internal/wiki"
)

var errUpstream = errors.New("upstream down")

// fakeFetcher serves canned content and can fail whole calls or single
// month sections.
type fakeFetcher struct {
	entries     []wiki.TOCEntry
	sections    map[string]string
	html        string
	tocErr      error
	htmlErr     error
	failSection map[string]bool
	fetchCount  int
}

func (f *fakeFetcher) FetchTOC(ctx context.Context, page string) ([]wiki.TOCEntry, error) {
	f.fetchCount++
	if f.tocErr != nil {
		return nil, f.tocErr
	}
	return f.entries, nil
}

func (f *fakeFetcher) FetchSectionWikitext(ctx context.Context, page, section string) (string, error) {
	if f.failSection[section] {
		return "", errUpstream
	}
	return f.sections[section], nil
}

func (f *fakeFetcher) FetchParsedHTML(ctx context.Context, page string) (*goquery.Document, error) {
	f.fetchCount++
	if f.htmlErr != nil {
		return nil, f.htmlErr
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func tocFixture() *fakeFetcher {
	return &fakeFetcher{
		entries: []wiki.TOCEntry{
			{Line: "Events", Index: "1", Level: 1},
			{Line: "January", Index: "2", Level: 2},
			{Line: "February", Index: "3", Level: 2},
			{Line: "See also", Index: "4", Level: 2},
		},
		sections: map[string]string{
			"2": "* [[January 1]] – First event.<ref>x</ref>\n* Second event.",
			"3": "* February event.",
		},
	}
}

func TestSummarizeTOCMode(t *testing.T) {
	svc := NewService(tocFixture())

	got, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got.Year != 1999 {
		t.Errorf("year = %d, want 1999", got.Year)
	}

	want := EventsByMonth{
		"January":  {"First event.", "Second event."},
		"February": {"February event."},
	}
	if !reflect.DeepEqual(got.EventsByMonth, want) {
		t.Errorf("events = %v, want %v", got.EventsByMonth, want)
	}
	for month := range got.EventsByMonth {
		if !wiki.IsMonth(month) {
			t.Errorf("non-canonical month key %q", month)
		}
	}
}

func TestSummarizeIsDeterministic(t *testing.T) {
	svc := NewService(tocFixture())

	first, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if !reflect.DeepEqual(first.EventsByMonth, second.EventsByMonth) {
		t.Errorf("summaries differ across calls: %v vs %v", first.EventsByMonth, second.EventsByMonth)
	}
}

func TestSummarizeInvalidYear(t *testing.T) {
	svc := NewService(tocFixture())
	for _, year := range []int{1799, 2027, -5} {
		if _, err := svc.Summarize(context.Background(), year); !errors.Is(err, ErrInvalidYear) {
			t.Errorf("Summarize(%d) error = %v, want ErrInvalidYear", year, err)
		}
	}
}

func TestSummarizeTOCFetchFails(t *testing.T) {
	f := tocFixture()
	f.tocErr = errUpstream
	svc := NewService(f)

	if _, err := svc.Summarize(context.Background(), 1999); !errors.Is(err, errUpstream) {
		t.Errorf("expected wrapped upstream error, got %v", err)
	}
}

func TestSummarizeSingleMonthFetchFailureDegrades(t *testing.T) {
	f := tocFixture()
	f.failSection = map[string]bool{"2": true}
	svc := NewService(f)

	got, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("call should succeed despite one month failing: %v", err)
	}
	if _, ok := got.EventsByMonth["January"]; ok {
		t.Error("failed month should be absent from the result")
	}
	if _, ok := got.EventsByMonth["February"]; !ok {
		t.Error("healthy month should survive")
	}
}

func TestSummarizeHTMLMode(t *testing.T) {
	f := &fakeFetcher{html: `<div>
		<h2 id="Events">Events</h2>
		<h3>January</h3>
		<ul><li>Item one[1]</li><li>Item two</li><li></li></ul>
	</div>`}
	svc := NewService(f, WithMode(ModeHTML))

	got, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	want := EventsByMonth{"January": {"Item one", "Item two"}}
	if !reflect.DeepEqual(got.EventsByMonth, want) {
		t.Errorf("events = %v, want %v", got.EventsByMonth, want)
	}
}

func TestSummarizeHTMLModeNoEventsSection(t *testing.T) {
	f := &fakeFetcher{html: `<div><h2 id="Births">Births</h2></div>`}
	svc := NewService(f, WithMode(ModeHTML))

	got, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("missing section must not be an error: %v", err)
	}
	if len(got.EventsByMonth) != 0 {
		t.Errorf("expected empty summary, got %v", got.EventsByMonth)
	}
}

func TestSummarizeMonthCap(t *testing.T) {
	var lines []string
	for i := 1; i <= 8; i++ {
		lines = append(lines, fmt.Sprintf("* Event number %d happens.", i))
	}
	f := &fakeFetcher{
		entries:  []wiki.TOCEntry{{Line: "March", Index: "2"}},
		sections: map[string]string{"2": strings.Join(lines, "\n")},
	}
	svc := NewService(f)

	got, err := svc.Summarize(context.Background(), 1999)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if n := len(got.EventsByMonth["March"]); n != wiki.DefaultMonthLimit {
		t.Errorf("March has %d events, want %d", n, wiki.DefaultMonthLimit)
	}
}

func TestSummarizeUsesCache(t *testing.T) {
	f := tocFixture()
	svc := NewService(f, WithCache(cache.New[*YearSummary](time.Minute)))

	if _, err := svc.Summarize(context.Background(), 1999); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := svc.Summarize(context.Background(), 1999); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if f.fetchCount != 1 {
		t.Errorf("expected one upstream TOC fetch, got %d", f.fetchCount)
	}
}

func TestEventsByMonthJSONOrder(t *testing.T) {
	m := EventsByMonth{
		"March":    {"c"},
		"January":  {"a"},
		"December": {"d"},
		"April":    nil, // empty, must be skipped
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	got := string(data)

	wantOrder := []string{"January", "March", "December"}
	last := -1
	for _, month := range wantOrder {
		i := strings.Index(got, `"`+month+`"`)
		if i < 0 {
			t.Fatalf("month %s missing from %s", month, got)
		}
		if i < last {
			t.Errorf("month %s out of calendar order in %s", month, got)
		}
		last = i
	}
	if strings.Contains(got, "April") {
		t.Errorf("empty month should be skipped, got %s", got)
	}
}
