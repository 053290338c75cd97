package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Carlsmeister/wikicap/internal/entertainment"
	"github.com/Carlsmeister/wikicap/internal/music"
	"github.com/Carlsmeister/wikicap/internal/nobel"
	"github.com/Carlsmeister/wikicap/internal/summary"
	"github.com/Carlsmeister/wikicap/internal/wiki"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	Year   int                   `json:"year"`
	Wiki   *summary.YearSummary  `json:"wiki"`
	Movies []entertainment.Movie `json:"movies,omitempty"`
	Music  *music.YearMusic      `json:"music,omitempty"`
	Nobel  *nobel.YearPrizes     `json:"nobel,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	fmt.Fprintf(w, "What happened in %d\n", result.Year)

	total := 0
	for _, month := range wiki.Months {
		events := result.Wiki.EventsByMonth[month]
		if len(events) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", month)
		for _, line := range events {
			fmt.Fprintf(w, "  - %s\n", line)
		}
		total += len(events)
	}
	if total == 0 {
		fmt.Fprintln(w, "\nNo events found.")
	} else {
		fmt.Fprintf(w, "\nTotal: %d events (%s)\n", total, result.Wiki.Source)
	}

	if len(result.Movies) > 0 {
		fmt.Fprintf(w, "\nTop movies of %d:\n", result.Year)
		for _, m := range result.Movies {
			fmt.Fprintf(w, "  - %s\n", m.Title)
		}
	}

	if result.Music != nil && len(result.Music.Songs) > 0 {
		fmt.Fprintf(w, "\nTop songs of %d:\n", result.Year)
		for _, song := range result.Music.Songs {
			fmt.Fprintf(w, "  %d. %s\n", song.Rank, song.Display)
		}
	}

	if result.Nobel != nil && len(result.Nobel.Prizes) > 0 {
		fmt.Fprintf(w, "\nNobel Prizes %d:\n", result.Year)
		for _, prize := range result.Nobel.Prizes {
			fmt.Fprintf(w, "  %s:\n", prize.Category)
			for _, laureate := range prize.Laureates {
				fmt.Fprintf(w, "    - %s\n", laureate)
			}
		}
	}

	return nil
}
