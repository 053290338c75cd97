// Package music ranks a year's popular music. Rankings come from the
// Wikipedia year-end Hot 100 page; Spotify supplies metadata enrichment.
package music

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const billboardPageFormat = "https://en.wikipedia.org/wiki/Billboard_Year-End_Hot_100_singles_of_%d"

var (
	citationRe = regexp.MustCompile(`\[.*?\]`)
	quoteRe    = regexp.MustCompile(`^["\x{201c}\x{201d}]|["\x{201c}\x{201d}]$`)
	// delimiters separating lead from featured artists, and between leads
	featuredRe  = regexp.MustCompile(`(?i)\s+(?:featuring|feat\.?|with)\s+`)
	leadSplitRe = regexp.MustCompile(`(?i)\s+(?:&|and)\s+|\s*,\s*`)
)

// RankedSong is one chart row.
type RankedSong struct {
	Rank          int    `json:"rank"`
	Title         string `json:"title"`
	DisplayName   string `json:"artist"`
	PrimaryArtist string `json:"primary_artist"`
}

// RankedArtist aggregates one lead artist's chart presence.
type RankedArtist struct {
	Rank          int    `json:"rank"`
	PrimaryArtist string `json:"artist"`
	Occurrences   int    `json:"occurrences"`
}

// BillboardClient scrapes year-end chart rankings from Wikipedia.
//
// Chart pages vary in structure across decades, so the parser hunts for the
// first wikitable carrying both an artist and a song/title column and falls
// back to row order when no rank column exists.
type BillboardClient struct {
	userAgent  string
	pageFormat string
	httpClient *http.Client
}

// NewBillboardClient creates a chart client.
func NewBillboardClient(userAgent string) *BillboardClient {
	return &BillboardClient{
		userAgent:  userAgent,
		pageFormat: billboardPageFormat,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// TopSongs returns the year-end chart rows in rank order. A page with no
// recognizable chart table yields an empty list, not an error.
func (c *BillboardClient) TopSongs(ctx context.Context, year int) ([]RankedSong, error) {
	doc, err := c.fetchPage(ctx, year)
	if err != nil {
		return nil, err
	}
	table, cols := findChartTable(doc)
	if table == nil {
		return nil, nil
	}
	return extractSongs(table, cols), nil
}

// TopArtists aggregates lead artists across the chart, counting every row
// an artist appears on; featured credits count toward the featured artist
// too. Order follows appearance count, ties broken by earliest rank.
func (c *BillboardClient) TopArtists(ctx context.Context, year int) ([]RankedArtist, error) {
	songs, err := c.TopSongs(ctx, year)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*RankedArtist)
	var order []string
	for _, song := range songs {
		for _, name := range splitArtists(song.DisplayName) {
			artist, ok := byName[name]
			if !ok {
				artist = &RankedArtist{Rank: song.Rank, PrimaryArtist: name}
				byName[name] = artist
				order = append(order, name)
			}
			artist.Occurrences++
		}
	}

	artists := make([]RankedArtist, 0, len(order))
	for _, name := range order {
		artists = append(artists, *byName[name])
	}
	sortArtists(artists)
	return artists, nil
}

func (c *BillboardClient) fetchPage(ctx context.Context, year int) (*goquery.Document, error) {
	reqURL := fmt.Sprintf(c.pageFormat, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching chart page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart page returned status %d", resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing chart page: %w", err)
	}
	return doc, nil
}

// chartColumns records which header cell holds what.
type chartColumns struct {
	rank   int // -1 when the table has no rank column
	title  int
	artist int
}

// findChartTable returns the first wikitable whose header row has both an
// artist column and a song or title column.
func findChartTable(doc *goquery.Document) (*goquery.Selection, chartColumns) {
	var found *goquery.Selection
	var cols chartColumns
	doc.Find("table.wikitable").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		c, ok := analyzeHeader(table)
		if ok {
			found = table
			cols = c
			return false
		}
		return true
	})
	return found, cols
}

func analyzeHeader(table *goquery.Selection) (chartColumns, bool) {
	cols := chartColumns{rank: -1, title: -1, artist: -1}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		header := strings.ToLower(strings.TrimSpace(th.Text()))
		switch {
		case strings.Contains(header, "artist"):
			cols.artist = i
		case strings.Contains(header, "song"), strings.Contains(header, "title"):
			cols.title = i
		case strings.Contains(header, "no") || strings.Contains(header, "rank") || header == "#":
			cols.rank = i
		}
	})
	return cols, cols.artist >= 0 && cols.title >= 0
}

func extractSongs(table *goquery.Selection, cols chartColumns) []RankedSong {
	var songs []RankedSong
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header
		}
		cells := row.Find("td, th")
		title := cellText(cells, cols.title)
		artist := cellText(cells, cols.artist)
		if title == "" || artist == "" {
			return
		}

		rank := len(songs) + 1
		if cols.rank >= 0 {
			if n, err := strconv.Atoi(cellText(cells, cols.rank)); err == nil {
				rank = n
			}
		}
		songs = append(songs, RankedSong{
			Rank:          rank,
			Title:         title,
			DisplayName:   artist,
			PrimaryArtist: primaryArtist(artist),
		})
	})
	return songs
}

func cellText(cells *goquery.Selection, index int) string {
	if index < 0 || index >= cells.Length() {
		return ""
	}
	text := strings.TrimSpace(cells.Eq(index).Text())
	text = citationRe.ReplaceAllString(text, "")
	text = quoteRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// primaryArtist strips featured credits and keeps the first lead.
func primaryArtist(display string) string {
	lead := featuredRe.Split(display, 2)[0]
	parts := leadSplitRe.Split(lead, 2)
	return strings.TrimSpace(parts[0])
}

// splitArtists breaks a display credit into every named artist.
func splitArtists(display string) []string {
	var names []string
	for _, chunk := range featuredRe.Split(display, -1) {
		for _, name := range leadSplitRe.Split(chunk, -1) {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// sortArtists orders by chart presence, earliest rank breaking ties.
func sortArtists(artists []RankedArtist) {
	sort.SliceStable(artists, func(i, j int) bool {
		if artists[i].Occurrences != artists[j].Occurrences {
			return artists[i].Occurrences > artists[j].Occurrences
		}
		return artists[i].Rank < artists[j].Rank
	})
}
