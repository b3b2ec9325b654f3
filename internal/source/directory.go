package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"salonscout/internal/model"
)

// Directory sites searched per query; %s receives the escaped query.
var defaultDirectorySites = []string{
	"https://www.iyp.com.tw/search.html?q=%s",
	"https://www.lifego.tw/search?q=%s",
	"https://www.gomaji.com/search?keyword=%s",
}

// Listing cards on directory sites carry one of these class fragments.
var reCardClass = regexp.MustCompile(`(?i)(card|item|business|company|shop|store)`)

// maxDirectoryCards bounds how many cards one page contributes.
const maxDirectoryCards = 20

// DirectoryAdapter mines business-directory sites. The markup varies per
// site, so extraction is generic: any card-like element whose text
// mentions the vertical, with the first heading as the name.
type DirectoryAdapter struct {
	fetcher *Fetcher
	sites   []string
	ex      extractor
	logger  *slog.Logger
}

// NewDirectoryAdapter creates a directory adapter. sites may be nil to use
// the built-in list.
func NewDirectoryAdapter(fetcher *Fetcher, sites []string, regionToken string, logger *slog.Logger) *DirectoryAdapter {
	if len(sites) == 0 {
		sites = defaultDirectorySites
	}
	return &DirectoryAdapter{
		fetcher: fetcher,
		sites:   sites,
		ex:      newExtractor(regionToken),
		logger:  logger,
	}
}

func (a *DirectoryAdapter) Name() string         { return "directory" }
func (a *DirectoryAdapter) Origin() model.Origin { return model.OriginDirectory }

// Harvest queries each directory site in turn. A site that fails is
// logged and skipped; the others still contribute.
func (a *DirectoryAdapter) Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error) {
	query := url.QueryEscape(keyword + " " + anchor)

	var records []model.RawRecord
	for _, site := range a.sites {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		pageURL := fmt.Sprintf(site, query)
		html, err := a.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			a.logger.Warn("directory site failed", "url", pageURL, "err", err)
			continue
		}
		records = append(records, parseDirectoryCards(html, a.ex)...)
	}

	a.logger.Debug("directory sites parsed",
		"keyword", keyword, "anchor", anchor, "candidates", len(records))
	return records, nil
}

// parseDirectoryCards extracts candidates from one directory page.
func parseDirectoryCards(html string, ex extractor) []model.RawRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var records []model.RawRecord
	doc.Find("div[class],li[class],article[class],section[class]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(records) >= maxDirectoryCards {
			return false
		}
		if !reCardClass.MatchString(sel.AttrOr("class", "")) {
			return true
		}

		text := sel.Text()
		if !relevant(text) {
			return true
		}

		name := strings.TrimSpace(sel.Find("h1,h2,h3,h4,a,strong").First().Text())
		runes := utf8.RuneCountInString(name)
		if runes < 3 || runes > 50 {
			return true
		}

		href := sel.Find("a[href]").First().AttrOr("href", "")
		if !strings.HasPrefix(href, "http") {
			href = ""
		}

		records = append(records, rawRecord(
			name,
			ex.addressFrom(text),
			ex.phoneFrom(text),
			href,
		))
		return true
	})
	return records
}
