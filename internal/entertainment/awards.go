package entertainment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const awardsBaseURL = "https://theawards.vercel.app/api"

// AwardsClient is a client for the Academy Awards API.
type AwardsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAwardsClient creates an awards client. The API needs no credentials.
func NewAwardsClient() *AwardsClient {
	return &AwardsClient{
		baseURL: awardsBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Edition is one Oscar ceremony edition.
type Edition struct {
	ID   int    `json:"id"`
	Year int    `json:"year"`
	Name string `json:"name"`
}

// Category is one award category within an edition.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Nominee is one nomination within a category.
type Nominee struct {
	Name   string `json:"name"`
	Film   string `json:"film"`
	Winner bool   `json:"winner"`
}

// EditionByYear returns the ceremony edition covering the given year.
func (c *AwardsClient) EditionByYear(ctx context.Context, year int) (*Edition, error) {
	params := url.Values{}
	params.Set("year", fmt.Sprintf("%d", year))

	var editions []Edition
	if err := c.get(ctx, "/oscars/editions?"+params.Encode(), &editions); err != nil {
		return nil, err
	}
	if len(editions) == 0 {
		return nil, nil
	}
	return &editions[0], nil
}

// Categories returns the award categories of an edition.
func (c *AwardsClient) Categories(ctx context.Context, editionID int) ([]Category, error) {
	var categories []Category
	path := fmt.Sprintf("/oscars/editions/%d/categories", editionID)
	if err := c.get(ctx, path, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Nominees returns the nominees of one category in an edition.
func (c *AwardsClient) Nominees(ctx context.Context, editionID, categoryID int) ([]Nominee, error) {
	var nominees []Nominee
	path := fmt.Sprintf("/oscars/editions/%d/categories/%d/nominees", editionID, categoryID)
	if err := c.get(ctx, path, &nominees); err != nil {
		return nil, err
	}
	return nominees, nil
}

func (c *AwardsClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("awards API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
