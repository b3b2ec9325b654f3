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

// Facebook page search per query; %s receives the escaped "keyword anchor".
const facebookPageSearchURL = "https://www.facebook.com/search/pages/?q=%s"

// maxSocialPosts bounds how many feed articles one search contributes.
const maxSocialPosts = 10

// SocialAdapter mines social-media page search results. Page cards render
// as role=article blobs of free text, so there is no stable markup to key
// on: the name is the first short line that mentions the vertical, and
// phone and address come out of the surrounding text.
type SocialAdapter struct {
	fetcher *Fetcher
	ex      extractor
	logger  *slog.Logger
}

// NewSocialAdapter creates a social-media adapter.
func NewSocialAdapter(fetcher *Fetcher, regionToken string, logger *slog.Logger) *SocialAdapter {
	return &SocialAdapter{
		fetcher: fetcher,
		ex:      newExtractor(regionToken),
		logger:  logger,
	}
}

func (a *SocialAdapter) Name() string         { return "social" }
func (a *SocialAdapter) Origin() model.Origin { return model.OriginSocial }

// Harvest searches Facebook pages for one keyword+anchor pair.
func (a *SocialAdapter) Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error) {
	pageURL := fmt.Sprintf(facebookPageSearchURL, url.QueryEscape(keyword+" "+anchor))

	html, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("page search: %w", err)
	}

	records := parseSocialArticles(html, a.ex)
	a.logger.Debug("social pages parsed",
		"keyword", keyword, "anchor", anchor, "candidates", len(records))
	return records, nil
}

// parseSocialArticles extracts candidates from one page-search result.
// Each article yields at most one record.
func parseSocialArticles(html string, ex extractor) []model.RawRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var records []model.RawRecord
	doc.Find("[role=article]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(records) >= maxSocialPosts {
			return false
		}

		text := sel.Text()
		name := socialPageName(text)
		if name == "" {
			return true
		}

		records = append(records, rawRecord(
			name,
			ex.addressFrom(text),
			ex.phoneFrom(text),
			"",
		))
		return true
	})
	return records
}

// socialPageName picks the page title out of an article's text: the first
// line that mentions the vertical and is short enough to be a name rather
// than a post body.
func socialPageName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !relevant(line) {
			continue
		}
		if runes := utf8.RuneCountInString(line); runes < 3 || runes >= 50 {
			continue
		}
		return line
	}
	return ""
}
