package entertainment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Carlsmeister/wikicap/internal/logger"
)

const maxRankedSeries = 8

// headline categories shown in the year overview, in display order.
var highlightCategories = []string{
	"Best Picture",
	"Best Director",
	"Best Actor",
	"Best Actress",
}

// CategoryHighlight is one award category with its nominees.
type CategoryHighlight struct {
	Category string    `json:"category"`
	Nominees []Nominee `json:"nominees"`
}

// OscarHighlights is the award summary for one year.
type OscarHighlights struct {
	Year       int                 `json:"year"`
	Edition    string              `json:"edition"`
	Categories []CategoryHighlight `json:"categories"`
}

// Service aggregates entertainment lookups for a year.
type Service struct {
	tmdb   *TMDBClient
	awards *AwardsClient
}

// NewService wires the TMDB and awards clients together. Either client may
// be nil, in which case the matching lookups report an error.
func NewService(tmdb *TMDBClient, awards *AwardsClient) *Service {
	return &Service{tmdb: tmdb, awards: awards}
}

// MoviesForYear returns the year's notable movies.
func (s *Service) MoviesForYear(ctx context.Context, year int) ([]Movie, error) {
	if s.tmdb == nil {
		return nil, fmt.Errorf("TMDB client not configured")
	}
	return s.tmdb.DiscoverMovies(ctx, year)
}

// SeriesForYear returns the year's notable series, re-ranked by a score
// combining popularity with rating and an age penalty, capped at 8.
func (s *Service) SeriesForYear(ctx context.Context, year int) ([]Series, error) {
	if s.tmdb == nil {
		return nil, fmt.Errorf("TMDB client not configured")
	}
	series, err := s.tmdb.DiscoverSeries(ctx, year)
	if err != nil {
		return nil, err
	}
	return rankSeries(series, year), nil
}

// HighlightsForYear returns the Oscar headline categories and nominees for
// the edition covering year. Categories that fail to resolve are skipped.
func (s *Service) HighlightsForYear(ctx context.Context, year int) (*OscarHighlights, error) {
	if s.awards == nil {
		return nil, fmt.Errorf("awards client not configured")
	}

	edition, err := s.awards.EditionByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("resolving edition: %w", err)
	}
	if edition == nil {
		return &OscarHighlights{Year: year}, nil
	}

	categories, err := s.awards.Categories(ctx, edition.ID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	highlights := &OscarHighlights{Year: year, Edition: edition.Name}
	for _, wanted := range highlightCategories {
		category, ok := findCategory(categories, wanted)
		if !ok {
			continue
		}
		nominees, err := s.awards.Nominees(ctx, edition.ID, category.ID)
		if err != nil {
			logger.Warn("nominee lookup failed", logger.Fields{
				"year":     year,
				"category": category.Name,
			})
			continue
		}
		highlights.Categories = append(highlights.Categories, CategoryHighlight{
			Category: category.Name,
			Nominees: nominees,
		})
	}
	return highlights, nil
}

func findCategory(categories []Category, name string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) || strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(name)) {
			return c, true
		}
	}
	return Category{}, false
}

// rankSeries sorts by composite score and keeps the top entries. The sort
// is stable so equal scores keep upstream order.
func rankSeries(series []Series, year int) []Series {
	ranked := make([]Series, len(series))
	copy(ranked, series)
	sort.SliceStable(ranked, func(i, j int) bool {
		return seriesScore(ranked[i], year) > seriesScore(ranked[j], year)
	})
	if len(ranked) > maxRankedSeries {
		ranked = ranked[:maxRankedSeries]
	}
	return ranked
}

// seriesScore combines popularity (60%) and normalized rating (40%), then
// penalizes shows that started long before the queried year so a year page
// favors contemporary television.
func seriesScore(s Series, year int) float64 {
	rating := s.VoteAverage / 10.0
	base := s.Popularity*0.6 + rating*100*0.4
	return base * agePenalty(s.FirstAirDate, year)
}

func agePenalty(firstAirDate string, year int) float64 {
	if len(firstAirDate) < 4 {
		return 1.0
	}
	start, err := strconv.Atoi(firstAirDate[:4])
	if err != nil {
		return 1.0
	}
	age := year - start
	switch {
	case age <= 2:
		return 1.0
	case age <= 5:
		return 0.9
	case age <= 10:
		return 0.8
	case age <= 20:
		return 0.65
	default:
		return 0.5
	}
}
