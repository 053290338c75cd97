// Package entertainment looks up the movies, TV series, and Academy Award
// highlights of a year from The Movie Database and the Awards API.
package entertainment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBClient is a client for The Movie Database discover endpoints.
type TMDBClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTMDBClient creates a TMDB client using the given bearer token.
func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		apiKey:  apiKey,
		baseURL: tmdbBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Movie is one TMDB movie result.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
}

// Series is one TMDB TV series result.
type Series struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
}

// DiscoverMovies returns well-voted movies whose primary release year
// matches year, ordered by vote count.
func (c *TMDBClient) DiscoverMovies(ctx context.Context, year int) ([]Movie, error) {
	params := url.Values{}
	params.Set("primary_release_year", fmt.Sprintf("%d", year))
	params.Set("sort_by", "vote_count.desc")
	params.Set("vote_average.gte", "7")
	params.Set("vote_count.gte", "1000")

	var result struct {
		Results []Movie `json:"results"`
	}
	if err := c.get(ctx, "/discover/movie", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// DiscoverSeries returns well-voted series that aired during year, ordered
// by popularity.
func (c *TMDBClient) DiscoverSeries(ctx context.Context, year int) ([]Series, error) {
	params := url.Values{}
	params.Set("air_date.gte", fmt.Sprintf("%d-01-01", year))
	params.Set("air_date.lte", fmt.Sprintf("%d-12-31", year))
	params.Set("sort_by", "popularity.desc")
	params.Set("vote_count.gte", "1000")
	params.Set("vote_average.gte", "7")
	params.Set("include_null_first_air_dates", "false")

	var result struct {
		Results []Series `json:"results"`
	}
	if err := c.get(ctx, "/discover/tv", params, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
