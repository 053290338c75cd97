package music

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Carlsmeister/wikicap/internal/cache"
	"github.com/Carlsmeister/wikicap/internal/logger"
)

const topListLimit = 10

// EnrichedTrack pairs a chart row with its Spotify match, when found.
type EnrichedTrack struct {
	Rank    int    `json:"rank"`
	Display string `json:"display"`
	Track   *Track `json:"track,omitempty"`
}

// EnrichedArtist pairs an aggregated chart artist with Spotify metadata.
type EnrichedArtist struct {
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	Artist    *Artist `json:"artist,omitempty"`
	TopTracks []Track `json:"top_tracks,omitempty"`
}

// YearMusic is the assembled music overview for one year.
type YearMusic struct {
	Year    int              `json:"year"`
	Songs   []EnrichedTrack  `json:"songs"`
	Artists []EnrichedArtist `json:"artists"`
	Source  string           `json:"source"`
}

// Service combines chart rankings with Spotify enrichment. Enrichment is
// best-effort: a failed or missing Spotify lookup degrades to a bare chart
// entry instead of failing the year.
type Service struct {
	billboard *BillboardClient
	spotify   *SpotifyClient
	cache     *cache.Cache[*YearMusic]
}

// NewService wires the chart and Spotify clients. spotify may be nil; the
// result then carries rankings only.
func NewService(billboard *BillboardClient, spotify *SpotifyClient, c *cache.Cache[*YearMusic]) *Service {
	return &Service{billboard: billboard, spotify: spotify, cache: c}
}

// MusicForYear returns the year's top songs and artists.
func (s *Service) MusicForYear(ctx context.Context, year int) (*YearMusic, error) {
	key := strconv.Itoa(year)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	songs, err := s.billboard.TopSongs(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("fetching chart: %w", err)
	}
	artists, err := s.billboard.TopArtists(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("aggregating artists: %w", err)
	}

	result := &YearMusic{
		Year:    year,
		Songs:   s.enrichSongs(ctx, dedupeSongs(songs)),
		Artists: s.enrichArtists(ctx, limitArtists(artists)),
		Source:  "Wikipedia + Spotify",
	}
	if s.cache != nil {
		s.cache.Set(key, result)
	}
	return result, nil
}

// dedupeSongs keeps the first appearance of each title/artist pair, capped
// at the display limit.
func dedupeSongs(songs []RankedSong) []RankedSong {
	seen := make(map[string]bool)
	var unique []RankedSong
	for _, song := range songs {
		key := strings.ToLower(song.Title + "|" + song.DisplayName)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, song)
		if len(unique) >= topListLimit {
			break
		}
	}
	return unique
}

func limitArtists(artists []RankedArtist) []RankedArtist {
	if len(artists) > topListLimit {
		return artists[:topListLimit]
	}
	return artists
}

func (s *Service) enrichSongs(ctx context.Context, songs []RankedSong) []EnrichedTrack {
	enriched := make([]EnrichedTrack, 0, len(songs))
	for i, song := range songs {
		entry := EnrichedTrack{Rank: i + 1, Display: song.Title + " - " + song.DisplayName}
		if s.spotify != nil {
			track, err := s.spotify.SearchTrack(ctx, song.Title, song.PrimaryArtist)
			if err != nil {
				logger.Warn("track enrichment failed", logger.Fields{"title": song.Title})
			} else {
				entry.Track = track
			}
		}
		enriched = append(enriched, entry)
	}
	return enriched
}

func (s *Service) enrichArtists(ctx context.Context, artists []RankedArtist) []EnrichedArtist {
	enriched := make([]EnrichedArtist, 0, len(artists))
	for i, ranked := range artists {
		entry := EnrichedArtist{Rank: i + 1, Name: ranked.PrimaryArtist}
		if s.spotify != nil {
			artist, err := s.spotify.SearchArtist(ctx, ranked.PrimaryArtist)
			if err != nil {
				logger.Warn("artist enrichment failed", logger.Fields{"artist": ranked.PrimaryArtist})
			} else if artist != nil {
				entry.Artist = artist
				if tracks, err := s.spotify.ArtistTopTracks(ctx, artist.ID); err == nil {
					if len(tracks) > topListLimit {
						tracks = tracks[:topListLimit]
					}
					entry.TopTracks = tracks
				}
			}
		}
		enriched = append(enriched, entry)
	}
	return enriched
}
