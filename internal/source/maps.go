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

// maxPlaceDetails bounds how many place pages one query follows for
// address/phone detail; every follow is another paced request.
const maxPlaceDetails = 8

// Selector fallback chains for the place detail page. The frontend markup
// churns, so each field tries several generations of selectors.
var (
	placeAddressSelectors = []string{
		"[data-item-id='address'] .fontBodyMedium",
		"[aria-label*='地址']",
		".rogA2c .fontBodyMedium",
		".Io6YTe .fontBodyMedium",
	}
	placePhoneSelectors = []string{
		"[data-item-id^='phone:tel:'] .fontBodyMedium",
		"[aria-label*='電話']",
		"button[data-value^='phone'] .fontBodyMedium",
	}
)

// MapsAdapter mines maps listing pages: place links give name and
// canonical URL, and a bounded number of detail pages are followed for
// address and phone.
type MapsAdapter struct {
	fetcher       *Fetcher
	ex            extractor
	followDetails bool
	logger        *slog.Logger
}

// NewMapsAdapter creates a maps adapter. followDetails disables the extra
// detail-page fetches for faster, name-and-URL-only harvesting.
func NewMapsAdapter(fetcher *Fetcher, regionToken string, followDetails bool, logger *slog.Logger) *MapsAdapter {
	return &MapsAdapter{
		fetcher:       fetcher,
		ex:            newExtractor(regionToken),
		followDetails: followDetails,
		logger:        logger,
	}
}

func (a *MapsAdapter) Name() string         { return "maps" }
func (a *MapsAdapter) Origin() model.Origin { return model.OriginMaps }

// Harvest runs one maps search and parses the listing.
func (a *MapsAdapter) Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error) {
	query := fmt.Sprintf("%s near %s", keyword, anchor)
	pageURL := "https://www.google.com/maps/search/" + url.PathEscape(query)

	var html string
	err := DefaultRetry.Do(ctx, func() error {
		var ferr error
		html, ferr = a.fetcher.Fetch(ctx, pageURL)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("fetch maps listing: %w", err)
	}

	records := parseMapsListing(html)

	if a.followDetails {
		for i := range records {
			if i >= maxPlaceDetails {
				break
			}
			if err := ctx.Err(); err != nil {
				return records, err
			}
			a.fillPlaceDetail(ctx, records[i])
		}
	}

	a.logger.Debug("maps listing parsed",
		"keyword", keyword, "anchor", anchor, "candidates", len(records))
	return records, nil
}

// fillPlaceDetail fetches the place page and fills address/phone in place.
// Failures leave the record as-is; detail is best effort.
func (a *MapsAdapter) fillPlaceDetail(ctx context.Context, raw model.RawRecord) {
	placeURL := raw[model.KeyURL]
	if placeURL == "" {
		return
	}

	var html string
	err := DefaultRetry.Do(ctx, func() error {
		var ferr error
		html, ferr = a.fetcher.Fetch(ctx, placeURL)
		return ferr
	})
	if err != nil {
		a.logger.Debug("place detail fetch failed", "url", placeURL, "err", err)
		return
	}

	address, phone := parsePlaceDetail(html)
	if address != "" {
		raw[model.KeyAddress] = address
	}
	if phone != "" {
		raw[model.KeyPhone] = phone
	}
}

// parseMapsListing extracts place candidates from a listing page. The
// name comes from the link's aria-label, then the link text, then the
// URL-decoded place segment.
func parseMapsListing(html string) []model.RawRecord {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var records []model.RawRecord
	seen := make(map[string]bool)

	doc.Find("a[href*='/maps/place/']").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		name := strings.TrimSpace(sel.AttrOr("aria-label", ""))
		if name == "" {
			name = strings.TrimSpace(sel.Text())
		}
		if name == "" {
			name = placeNameFromURL(href)
		}
		if utf8.RuneCountInString(name) < 2 {
			return
		}

		records = append(records, rawRecord(name, "", "", href))
	})
	return records
}

// parsePlaceDetail pulls address and phone out of a place page using the
// selector fallback chains, with tel: links as a last resort for phone.
func parsePlaceDetail(html string) (address, phone string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	for _, selector := range placeAddressSelectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			address = text
			break
		}
	}

	for _, selector := range placePhoneSelectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			phone = text
			break
		}
	}
	if phone == "" {
		if href := doc.Find("a[href^='tel:']").First().AttrOr("href", ""); href != "" {
			phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		}
	}
	return address, phone
}

// placeNameFromURL decodes the place segment of a /maps/place/ URL.
func placeNameFromURL(href string) string {
	parts := strings.SplitN(href, "/maps/place/", 2)
	if len(parts) < 2 {
		return ""
	}
	segment := strings.SplitN(parts[1], "/", 2)[0]
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return strings.ReplaceAll(decoded, "+", " ")
}
