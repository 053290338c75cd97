// Package nobel extracts the year's Nobel Prize laureates from the
// "<year> Nobel Prizes" Wikipedia article.
package nobel

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Categories lists the prize categories in announcement order.
var Categories = []string{
	"Physics",
	"Chemistry",
	"Physiology or Medicine",
	"Literature",
	"Peace",
	"Economic Sciences",
}

const maxLaureatesPerPrize = 5

var footnoteRe = regexp.MustCompile(`\[\d+\]`)

// Prize is one category's laureates for the year.
type Prize struct {
	Category  string   `json:"category"`
	Laureates []string `json:"laureates"`
}

// YearPrizes is the assembled Nobel overview for one year.
type YearPrizes struct {
	Year   int     `json:"year"`
	Prizes []Prize `json:"prizes"`
}

// Fetcher is the single capability this package needs from the MediaWiki
// client.
type Fetcher interface {
	FetchParsedHTML(ctx context.Context, page string) (*goquery.Document, error)
}

// Service looks up Nobel laureates by year.
type Service struct {
	fetcher Fetcher
}

// NewService creates a Nobel lookup service.
func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// PrizesForYear fetches and extracts the year's prizes. Categories missing
// from the article are omitted; an article without any recognizable prize
// section yields an empty result, not an error.
func (s *Service) PrizesForYear(ctx context.Context, year int) (*YearPrizes, error) {
	page := fmt.Sprintf("%d_Nobel_Prizes", year)
	doc, err := s.fetcher.FetchParsedHTML(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetching nobel article: %w", err)
	}
	return &YearPrizes{Year: year, Prizes: extractPrizes(doc)}, nil
}

// extractPrizes walks the article headings; a heading naming a prize
// category opens a section, and list items up to the next heading supply
// laureate names.
func extractPrizes(doc *goquery.Document) []Prize {
	found := make(map[string][]string)

	doc.Find("h2, h3").Each(func(_ int, heading *goquery.Selection) {
		category, ok := matchCategory(heading.Text())
		if ok {
			if _, seen := found[category]; !seen {
				found[category] = collectLaureates(heading)
			}
		}
	})

	var prizes []Prize
	for _, category := range Categories {
		if laureates := found[category]; len(laureates) > 0 {
			prizes = append(prizes, Prize{Category: category, Laureates: laureates})
		}
	}
	return prizes
}

func matchCategory(headingText string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(headingText))
	for _, category := range Categories {
		if strings.Contains(text, strings.ToLower(category)) {
			return category, true
		}
	}
	return "", false
}

// collectLaureates gathers list-item names from the heading's following
// siblings until the next heading.
func collectLaureates(heading *goquery.Selection) []string {
	var laureates []string
	for cursor := heading.Next(); cursor.Length() > 0; cursor = cursor.Next() {
		name := goquery.NodeName(cursor)
		if name == "h2" || name == "h3" || name == "h4" {
			break
		}
		if name != "ul" && name != "ol" {
			continue
		}
		cursor.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if len(laureates) >= maxLaureatesPerPrize {
				return
			}
			text := strings.TrimSpace(footnoteRe.ReplaceAllString(li.Text(), ""))
			// "Name – motivation" items keep just the name.
			if i := strings.IndexAny(text, "–—"); i > 0 {
				text = strings.TrimSpace(text[:i])
			}
			if text != "" {
				laureates = append(laureates, text)
			}
		})
		if len(laureates) >= maxLaureatesPerPrize {
			break
		}
	}
	return laureates
}
