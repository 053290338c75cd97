// Package server exposes the year overview over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Carlsmeister/wikicap/internal/entertainment"
	"github.com/Carlsmeister/wikicap/internal/filter"
	"github.com/Carlsmeister/wikicap/internal/logger"
	"github.com/Carlsmeister/wikicap/internal/mediawiki"
	"github.com/Carlsmeister/wikicap/internal/music"
	"github.com/Carlsmeister/wikicap/internal/nobel"
	"github.com/Carlsmeister/wikicap/internal/summary"
)

// SummaryService provides the Wikipedia year overview.
type SummaryService interface {
	Summarize(ctx context.Context, year int) (*summary.YearSummary, error)
}

// EntertainmentService provides movie, series, and awards lookups.
type EntertainmentService interface {
	MoviesForYear(ctx context.Context, year int) ([]entertainment.Movie, error)
	SeriesForYear(ctx context.Context, year int) ([]entertainment.Series, error)
	HighlightsForYear(ctx context.Context, year int) (*entertainment.OscarHighlights, error)
}

// MusicService provides the year's chart rankings.
type MusicService interface {
	MusicForYear(ctx context.Context, year int) (*music.YearMusic, error)
}

// NobelService provides the year's Nobel laureates.
type NobelService interface {
	PrizesForYear(ctx context.Context, year int) (*nobel.YearPrizes, error)
}

// Server wires the services into an echo router. Optional services may be
// nil; their routes then answer 503.
type Server struct {
	echo          *echo.Echo
	summary       SummaryService
	entertainment EntertainmentService
	music         MusicService
	nobel         NobelService
}

// New builds the router. Only the summary service is required.
func New(sum SummaryService, ent EntertainmentService, mus MusicService, nob NobelService) *Server {
	s := &Server{
		echo:          echo.New(),
		summary:       sum,
		entertainment: ent,
		music:         mus,
		nobel:         nob,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(requestLogger)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/year/:year", s.handleYear)
	v1.GET("/year/:year/wiki", s.handleWiki)
	v1.GET("/year/:year/movies", s.handleMovies)
	v1.GET("/year/:year/series", s.handleSeries)
	v1.GET("/year/:year/music", s.handleMusic)
	v1.GET("/year/:year/nobel", s.handleNobel)
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	logger.Info("http server starting", logger.Fields{"addr": addr})
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "wikicap",
		"message": "what happened in year Y",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// yearResponse is the aggregate payload. Sections beyond the Wikipedia
// summary are best-effort and omitted when their lookup fails.
type yearResponse struct {
	Year   int                            `json:"year"`
	Wiki   *summary.YearSummary           `json:"wiki"`
	Movies []entertainment.Movie          `json:"movies,omitempty"`
	Series []entertainment.Series         `json:"series,omitempty"`
	Oscars *entertainment.OscarHighlights `json:"oscars,omitempty"`
	Music  *music.YearMusic               `json:"music,omitempty"`
	Nobel  *nobel.YearPrizes              `json:"nobel,omitempty"`
}

func (s *Server) handleYear(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	wiki, err := s.summary.Summarize(ctx, year)
	if err != nil {
		return mapServiceError(err)
	}
	resp := &yearResponse{Year: year, Wiki: wiki}

	if s.entertainment != nil {
		if movies, err := s.entertainment.MoviesForYear(ctx, year); err == nil {
			resp.Movies = movies
		} else {
			logger.Warn("movies section skipped", logger.Fields{"year": year, "error": err.Error()})
		}
		if series, err := s.entertainment.SeriesForYear(ctx, year); err == nil {
			resp.Series = series
		} else {
			logger.Warn("series section skipped", logger.Fields{"year": year, "error": err.Error()})
		}
		if oscars, err := s.entertainment.HighlightsForYear(ctx, year); err == nil {
			resp.Oscars = oscars
		} else {
			logger.Warn("oscars section skipped", logger.Fields{"year": year, "error": err.Error()})
		}
	}
	if s.music != nil {
		if m, err := s.music.MusicForYear(ctx, year); err == nil {
			resp.Music = m
		} else {
			logger.Warn("music section skipped", logger.Fields{"year": year, "error": err.Error()})
		}
	}
	if s.nobel != nil {
		if prizes, err := s.nobel.PrizesForYear(ctx, year); err == nil {
			resp.Nobel = prizes
		} else {
			logger.Warn("nobel section skipped", logger.Fields{"year": year, "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleWiki(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	result, err := s.summary.Summarize(c.Request().Context(), year)
	if err != nil {
		return mapServiceError(err)
	}

	// ?q= narrows the result, e.g. ?q=treaty+month:March
	if query := c.QueryParam("q"); query != "" {
		f, err := filter.ParseQuery(query)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filtered := *result
		filtered.EventsByMonth = f.Apply(result.EventsByMonth)
		return c.JSON(http.StatusOK, &filtered)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleMovies(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	if s.entertainment == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "movie lookups not configured")
	}
	movies, err := s.entertainment.MoviesForYear(c.Request().Context(), year)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"year": year, "movies": movies})
}

func (s *Server) handleSeries(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	if s.entertainment == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "series lookups not configured")
	}
	series, err := s.entertainment.SeriesForYear(c.Request().Context(), year)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"year": year, "series": series})
}

func (s *Server) handleMusic(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	if s.music == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "music lookups not configured")
	}
	result, err := s.music.MusicForYear(c.Request().Context(), year)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleNobel(c echo.Context) error {
	year, err := parseYear(c)
	if err != nil {
		return err
	}
	if s.nobel == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "nobel lookups not configured")
	}
	result, err := s.nobel.PrizesForYear(c.Request().Context(), year)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// parseYear validates the :year path parameter against the supported range.
func parseYear(c echo.Context) (int, error) {
	raw := c.Param("year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}
	if year < summary.MinYear || year > summary.MaxYear {
		return 0, echo.NewHTTPError(http.StatusBadRequest,
			"year must be between "+strconv.Itoa(summary.MinYear)+" and "+strconv.Itoa(summary.MaxYear))
	}
	return year, nil
}

// mapServiceError translates service failures to HTTP status codes:
// invalid input is the caller's fault, upstream trouble is a bad gateway.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, summary.ErrInvalidYear):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, mediawiki.ErrUnavailable), errors.Is(err, mediawiki.ErrBadResponse):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream source unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		logger.Info("request", logger.Fields{
			"method":      c.Request().Method,
			"path":        c.Request().URL.Path,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		logger.IncrCounter("http.requests")
		logger.RecordTiming("http.request", time.Since(start))
		return err
	}
}
