package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"salonscout/internal/model"
)

// maxSearchResults bounds how many result blocks one query page yields.
const maxSearchResults = 15

// SearchAdapter mines search-engine result pages: the result title is the
// candidate name and the snippet text is scanned for phone and address
// runs. Snippets are noisy, so most fields degrade to Unknown and get
// refined by other sources.
type SearchAdapter struct {
	fetcher *Fetcher
	ex      extractor
	logger  *slog.Logger
}

// NewSearchAdapter creates a search adapter for the given region token.
func NewSearchAdapter(fetcher *Fetcher, regionToken string, logger *slog.Logger) *SearchAdapter {
	return &SearchAdapter{
		fetcher: fetcher,
		ex:      newExtractor(regionToken),
		logger:  logger,
	}
}

func (a *SearchAdapter) Name() string         { return "search" }
func (a *SearchAdapter) Origin() model.Origin { return model.OriginSearch }

// Harvest runs one search query and parses the result page.
func (a *SearchAdapter) Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error) {
	query := buildQuery(keyword, anchor)
	pageURL := "https://www.google.com/search?q=" + url.QueryEscape(query)

	var html string
	err := DefaultRetry.Do(ctx, func() error {
		var ferr error
		html, ferr = a.fetcher.Fetch(ctx, pageURL)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	records := parseSearchResults(html, a.ex)
	a.logger.Debug("search page parsed",
		"keyword", keyword, "anchor", anchor, "candidates", len(records))
	return records, nil
}

// parseSearchResults extracts candidates from a result page. Each organic
// result block contributes at most one candidate.
func parseSearchResults(html string, ex extractor) []model.RawRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var records []model.RawRecord
	doc.Find("div.g").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxSearchResults {
			return false
		}

		title := strings.TrimSpace(sel.Find("h3").First().Text())
		if utf8.RuneCountInString(title) < 3 || !relevant(title) {
			return true
		}

		desc := sel.Find("span").Text()
		href := sel.Find("a[href]").First().AttrOr("href", "")
		if !strings.HasPrefix(href, "http") {
			href = ""
		}

		records = append(records, rawRecord(
			title,
			ex.addressFrom(desc),
			ex.phoneFrom(desc),
			href,
		))
		return true
	})
	return records
}
