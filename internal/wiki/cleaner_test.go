package wiki

import (
	"strings"
	"testing"
)

func TestCleanEventLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantText string
		wantDate string
		wantOK   bool
	}{
		{
			name:     "plain bullet",
			line:     "* Item two",
			wantText: "Item two",
			wantOK:   true,
		},
		{
			name:     "footnote marker stripped",
			line:     "* Item one[1]",
			wantText: "Item one",
			wantOK:   true,
		},
		{
			name:     "date prefix stripped",
			line:     "* [[January 12]] – The [[Treaty of Somewhere|treaty]] is signed.",
			wantText: "The treaty is signed.",
			wantDate: "Jan 12",
			wantOK:   true,
		},
		{
			name:     "reference tags removed",
			line:     "* A volcano erupts.<ref name=\"bbc\">BBC News</ref>",
			wantText: "A volcano erupts.",
			wantOK:   true,
		},
		{
			name:     "self-closing reference removed",
			line:     "* A volcano erupts.<ref name=\"bbc\" />",
			wantText: "A volcano erupts.",
			wantOK:   true,
		},
		{
			name:     "templates and quotes removed",
			line:     "* {{cite web|url=x}} The film '''Metropolis''' premieres.",
			wantText: "The film Metropolis premieres.",
			wantOK:   true,
		},
		{
			name:     "file link removed",
			line:     "* [[File:Eruption.jpg|thumb|Big eruption]] The eruption continues.",
			wantText: "The eruption continues.",
			wantOK:   true,
		},
		{
			name:     "maintenance namespace link dropped",
			line:     "* Listed under [[Category:Disasters]] the flood recedes.",
			wantText: "Listed under the flood recedes.",
			wantOK:   true,
		},
		{
			name:   "empty line discarded",
			line:   "",
			wantOK: false,
		},
		{
			name:   "bare marker discarded",
			line:   "*",
			wantOK: false,
		},
		{
			name:   "whitespace only discarded",
			line:   "   \t  ",
			wantOK: false,
		},
		{
			name:   "markup only discarded",
			line:   "* <ref>orphan citation</ref>",
			wantOK: false,
		},
		{
			name:     "nested bullet markers stripped",
			line:     "** Deeper item survives on its own text",
			wantText: "Deeper item survives on its own text",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanEventLine(tt.line, false)
			if ok != tt.wantOK {
				t.Fatalf("CleanEventLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
			if got.Date != tt.wantDate {
				t.Errorf("date = %q, want %q", got.Date, tt.wantDate)
			}
		})
	}
}

func TestCleanEventLinePlainTextPassThrough(t *testing.T) {
	// Lines without markup come back unchanged apart from trimming.
	for _, line := range []string{
		"A ship sets sail from Lisbon.",
		"  A ship sets sail from Lisbon.  ",
	} {
		got, ok := CleanEventLine(line, false)
		if !ok {
			t.Fatalf("CleanEventLine(%q) unexpectedly discarded", line)
		}
		if want := strings.TrimSpace(line); got.Text != want {
			t.Errorf("CleanEventLine(%q) = %q, want %q", line, got.Text, want)
		}
	}
}

func TestCleanEventLineKeepDatePrefix(t *testing.T) {
	got, ok := CleanEventLine("* [[March 3]] – Parliament dissolves.", true)
	if !ok {
		t.Fatal("line unexpectedly discarded")
	}
	if got.Date != "Mar 3" {
		t.Errorf("date = %q, want %q", got.Date, "Mar 3")
	}
	if got.Text != "March 3 - Parliament dissolves." {
		t.Errorf("text = %q, want %q", got.Text, "March 3 - Parliament dissolves.")
	}
}

func TestCleanEventLineTruncation(t *testing.T) {
	long := "* " + strings.Repeat("a", 3*MaxEventLen)
	got, ok := CleanEventLine(long, false)
	if !ok {
		t.Fatal("line unexpectedly discarded")
	}
	if len([]rune(got.Text)) > MaxEventLen {
		t.Errorf("cleaned length = %d, want <= %d", len([]rune(got.Text)), MaxEventLen)
	}
	if !strings.HasSuffix(got.Text, "...") {
		t.Errorf("truncated text should end with ellipsis, got %q", got.Text[len(got.Text)-10:])
	}
}
