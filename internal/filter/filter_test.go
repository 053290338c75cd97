package filter

import (
	"testing"

	"github.com/Carlsmeister/wikicap/internal/summary"
)

func sampleEvents() summary.EventsByMonth {
	return summary.EventsByMonth{
		"January": {
			"The euro is introduced.",
			"A treaty is signed in Paris.",
		},
		"March": {
			"Parliament ratifies the treaty.",
		},
		"October": {
			"Elections are held.",
		},
	}
}

func TestApplyEmptyFilter(t *testing.T) {
	events := sampleEvents()
	got := NewFilter().Apply(events)
	if len(got) != len(events) {
		t.Errorf("empty filter changed result: got %d months, want %d", len(got), len(events))
	}
}

func TestApplyKeyword(t *testing.T) {
	f := &Filter{Keywords: []string{"treaty"}}
	got := f.Apply(sampleEvents())

	if len(got) != 2 {
		t.Fatalf("got %d months, want 2: %v", len(got), got)
	}
	if len(got["January"]) != 1 || got["January"][0] != "A treaty is signed in Paris." {
		t.Errorf("January = %v, want the treaty event only", got["January"])
	}
	if len(got["March"]) != 1 {
		t.Errorf("March = %v, want one event", got["March"])
	}
	if _, ok := got["October"]; ok {
		t.Error("October should be dropped entirely")
	}
}

func TestApplyKeywordCaseInsensitive(t *testing.T) {
	f := &Filter{Keywords: []string{"TREATY"}}
	got := f.Apply(sampleEvents())
	if len(got["March"]) != 1 {
		t.Errorf("case-insensitive match failed: %v", got)
	}
}

func TestApplyMonth(t *testing.T) {
	f := &Filter{Months: []string{"January"}}
	got := f.Apply(sampleEvents())

	if len(got) != 1 || len(got["January"]) != 2 {
		t.Errorf("got %v, want January's two events only", got)
	}
}

func TestApplyMonthAndKeyword(t *testing.T) {
	f := &Filter{Keywords: []string{"treaty"}, Months: []string{"March"}}
	got := f.Apply(sampleEvents())

	if len(got) != 1 || len(got["March"]) != 1 {
		t.Errorf("got %v, want the March treaty event only", got)
	}
}

func TestMultipleKeywordsAllRequired(t *testing.T) {
	f := &Filter{Keywords: []string{"treaty", "paris"}}
	got := f.Apply(sampleEvents())

	if len(got) != 1 || len(got["January"]) != 1 {
		t.Errorf("got %v, want only the event containing both keywords", got)
	}
}

func TestIsEmpty(t *testing.T) {
	if !NewFilter().IsEmpty() {
		t.Error("NewFilter().IsEmpty() = false, want true")
	}
	if (&Filter{Keywords: []string{"x"}}).IsEmpty() {
		t.Error("filter with keyword reported empty")
	}
	if (&Filter{Months: []string{"May"}}).IsEmpty() {
		t.Error("filter with month reported empty")
	}
}
