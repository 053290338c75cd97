// Package summary assembles the per-year event overview: it drives the
// upstream content fetch, runs the extraction pipeline, and returns events
// grouped by month in calendar order.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/Carlsmeister/wikicap/internal/cache"
	"github.com/Carlsmeister/wikicap/internal/logger"
	"github.com/Carlsmeister/wikicap/internal/wiki"
)

const (
	// MinYear and MaxYear bound the supported year-article range.
	MinYear = 1800
	MaxYear = 2026

	// monthFetchConcurrency caps outstanding per-month section fetches.
	monthFetchConcurrency = 4

	source = "Wikipedia (MediaWiki API)"
)

// ErrInvalidYear is returned for years outside [MinYear, MaxYear]. The
// boundary layer validates first; the service re-checks defensively.
var ErrInvalidYear = errors.New("summary: year out of supported range")

// Fetcher is the external content capability the aggregator consumes.
// mediawiki.Client satisfies it.
type Fetcher interface {
	FetchTOC(ctx context.Context, page string) ([]wiki.TOCEntry, error)
	FetchSectionWikitext(ctx context.Context, page, section string) (string, error)
	FetchParsedHTML(ctx context.Context, page string) (*goquery.Document, error)
}

// Mode selects the fetch strategy.
type Mode int

const (
	// ModeTOC fetches the table of contents, then each month's wikitext.
	ModeTOC Mode = iota
	// ModeHTML fetches the whole article as parsed HTML in one round trip.
	ModeHTML
)

// EventsByMonth maps canonical month names to cleaned event lines. Its JSON
// form is an object whose keys appear in calendar order, not map order.
type EventsByMonth map[string][]string

// MarshalJSON emits months in calendar order, skipping empty ones.
func (m EventsByMonth) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, month := range wiki.Months {
		events, ok := m[month]
		if !ok || len(events) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(month)
		value, err := json.Marshal(events)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// YearSummary is the assembled result for one year.
type YearSummary struct {
	Year          int           `json:"year"`
	EventsByMonth EventsByMonth `json:"events_by_month"`
	Source        string        `json:"source"`
}

// Service computes year summaries. Safe for concurrent use; each call is
// independent aside from the shared result cache.
type Service struct {
	fetcher Fetcher
	mode    Mode
	limit   int
	cache   *cache.Cache[*YearSummary]
}

// Option configures a Service.
type Option func(*Service)

// WithMode selects the fetch strategy (default ModeTOC).
func WithMode(mode Mode) Option {
	return func(s *Service) { s.mode = mode }
}

// WithMonthLimit overrides the per-month event cap.
func WithMonthLimit(limit int) Option {
	return func(s *Service) { s.limit = limit }
}

// WithCache attaches a result cache.
func WithCache(c *cache.Cache[*YearSummary]) Option {
	return func(s *Service) { s.cache = c }
}

// NewService creates a summary service on top of a content fetcher.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		mode:    ModeTOC,
		limit:   wiki.DefaultMonthLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize fetches and assembles the event overview for one year.
//
// Local absence is never an error: a missing Events section, a month with
// no usable bullets, or a failed follow-up fetch for a single month all
// just mean fewer results. Only total inability to obtain the year's raw
// content (TOC or article fetch) surfaces as an error.
func (s *Service) Summarize(ctx context.Context, year int) (*YearSummary, error) {
	if year < MinYear || year > MaxYear {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	page := strconv.Itoa(year)
	if s.cache != nil {
		if cached, ok := s.cache.Get(page); ok {
			logger.Debug("summary cache hit", logger.Fields{"year": year})
			return cached, nil
		}
	}

	var (
		byMonth EventsByMonth
		err     error
	)
	switch s.mode {
	case ModeHTML:
		byMonth, err = s.summarizeHTML(ctx, page)
	default:
		byMonth, err = s.summarizeTOC(ctx, page)
	}
	if err != nil {
		return nil, err
	}

	result := &YearSummary{Year: year, EventsByMonth: byMonth, Source: source}
	if s.cache != nil {
		s.cache.Set(page, result)
	}
	logger.IncrCounter("summaries.computed")
	return result, nil
}

// summarizeTOC discovers month sections from the table of contents and
// fetches each month's wikitext with bounded concurrency. Completion order
// does not matter; the final assembly reimposes calendar order.
func (s *Service) summarizeTOC(ctx context.Context, page string) (EventsByMonth, error) {
	entries, err := s.fetcher.FetchTOC(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetching year contents: %w", err)
	}

	sections := wiki.Locate(wiki.TOCIndex{Entries: entries})
	results := make([][]string, len(sections))

	g := new(errgroup.Group)
	g.SetLimit(monthFetchConcurrency)
	for i, section := range sections {
		i, section := i, section
		g.Go(func() error {
			text, err := s.fetcher.FetchSectionWikitext(ctx, page, section.SectionIndex)
			if err != nil {
				// One month degrading to zero events beats failing the year.
				logger.Warn("month section fetch failed", logger.Fields{
					"page":  page,
					"month": section.Month,
				})
				return nil
			}
			results[i] = wiki.ExtractMonth(strings.Split(text, "\n"), s.limit)
			return nil
		})
	}
	_ = g.Wait()

	byMonth := make(EventsByMonth)
	for i, section := range sections {
		if len(results[i]) > 0 {
			byMonth[section.Month] = results[i]
		}
	}
	return byMonth, nil
}

// summarizeHTML extracts every month from a single parsed-article fetch.
func (s *Service) summarizeHTML(ctx context.Context, page string) (EventsByMonth, error) {
	doc, err := s.fetcher.FetchParsedHTML(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetching year article: %w", err)
	}

	byMonth := make(EventsByMonth)
	for _, section := range wiki.Locate(wiki.HTMLTree{Doc: doc}) {
		if events := wiki.ExtractMonth(section.Lines, s.limit); len(events) > 0 {
			byMonth[section.Month] = events
		}
	}
	return byMonth, nil
}
