// Package mediawiki is a thin client for the MediaWiki action API. It
// fetches the three content shapes the extraction pipeline understands:
// parsed article HTML, table-of-contents data, and per-section wikitext.
package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/Carlsmeister/wikicap/internal/wiki"
)

const (
	DefaultBaseURL   = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent = "WikiCap/1.0 (https://github.com/Carlsmeister/wikicap)"
	DefaultTimeout   = 20 * time.Second
)

// Sentinel errors callers can test with errors.Is. The boundary layer maps
// them to its own transport responses.
var (
	// ErrUnavailable marks a network or transport failure reaching the API.
	ErrUnavailable = errors.New("mediawiki: upstream unavailable")
	// ErrBadResponse marks a non-success status or an unparseable payload.
	ErrBadResponse = errors.New("mediawiki: bad upstream response")
)

// Config carries client settings. Credentials and endpoints are injected
// here at construction time; the package keeps no process-wide state.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries uint64
}

// Client talks to one MediaWiki installation.
type Client struct {
	baseURL    string
	userAgent  string
	maxRetries uint64
	httpClient *http.Client
}

// NewClient builds a client, filling unset Config fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchTOC returns the flattened table-of-contents entries for a page.
func (c *Client) FetchTOC(ctx context.Context, page string) ([]wiki.TOCEntry, error) {
	body, err := c.get(ctx, url.Values{
		"action":        {"parse"},
		"page":          {page},
		"prop":          {"tocdata"},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Parse struct {
			TOCData json.RawMessage `json:"tocdata"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding toc payload: %v", ErrBadResponse, err)
	}
	return normalizeTOC(payload.Parse.TOCData), nil
}

// FetchSectionWikitext returns the raw wikitext of one page section.
func (c *Client) FetchSectionWikitext(ctx context.Context, page, section string) (string, error) {
	body, err := c.get(ctx, url.Values{
		"action":        {"parse"},
		"page":          {page},
		"prop":          {"wikitext"},
		"section":       {section},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		Parse struct {
			Wikitext string `json:"wikitext"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decoding wikitext payload: %v", ErrBadResponse, err)
	}
	return payload.Parse.Wikitext, nil
}

// FetchParsedHTML returns the page rendered as a parsed HTML document.
func (c *Client) FetchParsedHTML(ctx context.Context, page string) (*goquery.Document, error) {
	body, err := c.get(ctx, url.Values{
		"action":        {"parse"},
		"page":          {page},
		"prop":          {"text"},
		"format":        {"json"},
		"formatversion": {"2"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Parse struct {
			Text string `json:"text"`
		} `json:"parse"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding html payload: %v", ErrBadResponse, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.Parse.Text))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing article html: %v", ErrBadResponse, err)
	}
	return doc, nil
}

// get performs one API request with bounded retries. Transport failures are
// retried; bad responses are permanent.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("%w: creating request: %v", ErrBadResponse, err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError {
				return err
			}
			return backoff.Permanent(err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// normalizeTOC flattens the tocdata payload into one ordered entry list.
// The API returns either a plain entry array or a map whose values are
// entries or entry lists, depending on server version.
func normalizeTOC(raw json.RawMessage) []wiki.TOCEntry {
	if len(raw) == 0 {
		return nil
	}

	var list []tocEntryJSON
	if err := json.Unmarshal(raw, &list); err == nil {
		return toEntries(list)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}
	var entries []wiki.TOCEntry
	for _, value := range wrapper {
		var nested []tocEntryJSON
		if err := json.Unmarshal(value, &nested); err == nil {
			entries = append(entries, toEntries(nested)...)
			continue
		}
		var single tocEntryJSON
		if err := json.Unmarshal(value, &single); err == nil {
			entries = append(entries, single.entry())
		}
	}
	return entries
}

type tocEntryJSON struct {
	Line  string          `json:"line"`
	Index string          `json:"index"`
	Level json.RawMessage `json:"level"`
}

func (e tocEntryJSON) entry() wiki.TOCEntry {
	return wiki.TOCEntry{Line: e.Line, Index: e.Index, Level: parseLevel(e.Level)}
}

func toEntries(list []tocEntryJSON) []wiki.TOCEntry {
	entries := make([]wiki.TOCEntry, 0, len(list))
	for _, item := range list {
		entries = append(entries, item.entry())
	}
	return entries
}

// parseLevel accepts the level field as either a JSON number or a string.
func parseLevel(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
