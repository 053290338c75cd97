package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Carlsmeister/wikicap/internal/cache"
	"github.com/Carlsmeister/wikicap/internal/config"
	"github.com/Carlsmeister/wikicap/internal/entertainment"
	"github.com/Carlsmeister/wikicap/internal/filter"
	"github.com/Carlsmeister/wikicap/internal/logger"
	"github.com/Carlsmeister/wikicap/internal/mediawiki"
	"github.com/Carlsmeister/wikicap/internal/music"
	"github.com/Carlsmeister/wikicap/internal/nobel"
	"github.com/Carlsmeister/wikicap/internal/server"
	"github.com/Carlsmeister/wikicap/internal/storage"
	"github.com/Carlsmeister/wikicap/internal/summary"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagFormat  string
	flagMode    string
	flagFull    bool
	flagFilter  string
	flagDataDir string
	flagRefresh bool
)

// services holds everything a command needs, built once from config.
type services struct {
	cfg           *config.Config
	summary       *summary.Service
	entertainment *entertainment.Service
	music         *music.Service
	nobel         *nobel.Service
}

// buildServices wires clients and services from the environment. Services
// whose credentials are missing come back nil and are simply not offered.
func buildServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr))

	mw := mediawiki.NewClient(mediawiki.Config{
		BaseURL:    cfg.WikipediaBaseURL,
		UserAgent:  cfg.UserAgent,
		MaxRetries: 2,
	})

	mode := summary.ModeTOC
	if strings.EqualFold(flagMode, "html") {
		mode = summary.ModeHTML
	}

	svc := &services{
		cfg: cfg,
		summary: summary.NewService(mw,
			summary.WithMode(mode),
			summary.WithCache(cache.New[*summary.YearSummary](cfg.CacheTTL)),
		),
		nobel: nobel.NewService(mw),
	}

	if cfg.TMDBAPIKey != "" {
		svc.entertainment = entertainment.NewService(
			entertainment.NewTMDBClient(cfg.TMDBAPIKey),
			entertainment.NewAwardsClient(),
		)
	}

	var spotify *music.SpotifyClient
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		spotify = music.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}
	svc.music = music.NewService(
		music.NewBillboardClient(cfg.UserAgent),
		spotify,
		cache.New[*music.YearMusic](cfg.CacheTTL),
	)

	return svc, nil
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicap",
		Short: "Summarize what happened in a given year",
		Long: `Summarize what happened in a given year.
Fetches the Wikipedia year article and groups its events by month, with
optional movie, music, and Nobel laureate sections from other sources.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagMode, "mode", "toc",
		"Wikipedia fetch strategy: toc or html")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newYearCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildServices()
			if err != nil {
				return err
			}

			var ent server.EntertainmentService
			if svc.entertainment != nil {
				ent = svc.entertainment
			}
			srv := server.New(svc.summary, ent, svc.music, svc.nobel)
			return srv.Start(":" + svc.cfg.Port)
		},
	}
}

func newYearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "year <year>",
		Short: "Print the event overview for one year",
		Args:  cobra.ExactArgs(1),
		RunE:  runYear,
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagFull, "full", false,
		"Include movie, music, and Nobel sections when configured")
	cmd.Flags().StringVar(&flagFilter, "filter", "",
		`Narrow events, e.g. "treaty month:March"`)
	cmd.Flags().StringVar(&flagDataDir, "data-dir", storage.DefaultDataDir,
		"Data directory for snapshots")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false,
		"Bypass the local snapshot and refetch")
	return cmd
}

func runYear(cmd *cobra.Command, args []string) error {
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("year must be an integer: %q", args[0])
	}
	if year < summary.MinYear || year > summary.MaxYear {
		return fmt.Errorf("year must be between %d and %d", summary.MinYear, summary.MaxYear)
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	var eventFilter *filter.Filter
	if flagFilter != "" {
		eventFilter, err = filter.ParseQuery(flagFilter)
		if err != nil {
			return fmt.Errorf("parsing filter: %w", err)
		}
	}

	svc, err := buildServices()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := storage.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	result := &OutputResult{Year: year}
	if !flagRefresh {
		if cached, ok, err := store.LoadSummary(year, svc.cfg.CacheTTL); err == nil && ok {
			result.Wiki = cached
		} else if err != nil {
			logger.Warn("snapshot unreadable", logger.Fields{"year": year, "error": err.Error()})
		}
	}
	if result.Wiki == nil {
		result.Wiki, err = svc.summary.Summarize(ctx, year)
		if err != nil {
			return fmt.Errorf("summarizing year %d: %w", year, err)
		}
		if err := store.SaveSummary(result.Wiki); err != nil {
			logger.Warn("snapshot not saved", logger.Fields{"year": year, "error": err.Error()})
		}
	}

	if eventFilter != nil && !eventFilter.IsEmpty() {
		narrowed := *result.Wiki
		narrowed.EventsByMonth = eventFilter.Apply(result.Wiki.EventsByMonth)
		result.Wiki = &narrowed
	}

	if flagFull {
		if svc.entertainment != nil {
			if movies, err := svc.entertainment.MoviesForYear(ctx, year); err == nil {
				result.Movies = movies
			} else {
				logger.Warn("movies section skipped", logger.Fields{"error": err.Error()})
			}
		}
		if m, err := svc.music.MusicForYear(ctx, year); err == nil {
			result.Music = m
		} else {
			logger.Warn("music section skipped", logger.Fields{"error": err.Error()})
		}
		if prizes, err := svc.nobel.PrizesForYear(ctx, year); err == nil {
			result.Nobel = prizes
		} else {
			logger.Warn("nobel section skipped", logger.Fields{"error": err.Error()})
		}
	}

	if err := WriteOutput(os.Stdout, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
