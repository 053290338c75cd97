package music

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
)

// SpotifyClient enriches chart entries with Spotify metadata using the
// client-credentials flow. Tokens are cached until shortly before expiry.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewSpotifyClient creates a Spotify client with the given credentials.
func NewSpotifyClient(clientID, clientSecret string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyTokenURL,
		apiURL:       spotifyAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Track is a Spotify track search result.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	PreviewURL string   `json:"preview_url,omitempty"`
	AlbumName  string   `json:"album_name"`
	AlbumImage string   `json:"album_image,omitempty"`
	Artists    []string `json:"artists"`
}

// Artist is a Spotify artist search result.
type Artist struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Genres    []string `json:"genres"`
	Followers int      `json:"followers"`
	ImageURL  string   `json:"image_url,omitempty"`
}

// SearchTrack returns the best track match for a title/artist pair, or nil
// when Spotify has none.
func (c *SpotifyClient) SearchTrack(ctx context.Context, title, artist string) (*Track, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(title+" "+artist))
	params.Set("type", "track")
	params.Set("limit", "1")

	var payload struct {
		Tracks struct {
			Items []trackJSON `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, "/search?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Tracks.Items) == 0 {
		return nil, nil
	}
	track := payload.Tracks.Items[0].track()
	return &track, nil
}

// SearchArtist returns the best artist match for a name, or nil.
func (c *SpotifyClient) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "artist")
	params.Set("limit", "1")

	var payload struct {
		Artists struct {
			Items []artistJSON `json:"items"`
		} `json:"artists"`
	}
	if err := c.get(ctx, "/search?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Artists.Items) == 0 {
		return nil, nil
	}
	artist := payload.Artists.Items[0].artist()
	return &artist, nil
}

// ArtistTopTracks returns an artist's current top tracks.
func (c *SpotifyClient) ArtistTopTracks(ctx context.Context, artistID string) ([]Track, error) {
	var payload struct {
		Tracks []trackJSON `json:"tracks"`
	}
	if err := c.get(ctx, "/artists/"+artistID+"/top-tracks?market=US", &payload); err != nil {
		return nil, err
	}
	tracks := make([]Track, 0, len(payload.Tracks))
	for _, t := range payload.Tracks {
		tracks = append(tracks, t.track())
	}
	return tracks, nil
}

func (c *SpotifyClient) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// token returns a cached access token, refreshing it when expired.
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}

	c.accessToken = payload.AccessToken
	// refresh a minute early to dodge clock skew
	c.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

type trackJSON struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity"`
	PreviewURL string `json:"preview_url"`
	Album      struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func (t trackJSON) track() Track {
	track := Track{
		ID:         t.ID,
		Name:       t.Name,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
		AlbumName:  t.Album.Name,
	}
	if len(t.Album.Images) > 0 {
		track.AlbumImage = t.Album.Images[0].URL
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	return track
}

type artistJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Genres    []string `json:"genres"`
	Followers struct {
		Total int `json:"total"`
	} `json:"followers"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (a artistJSON) artist() Artist {
	artist := Artist{
		ID:        a.ID,
		Name:      a.Name,
		Genres:    a.Genres,
		Followers: a.Followers.Total,
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}
