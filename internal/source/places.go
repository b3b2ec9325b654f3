package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"salonscout/internal/model"
)

// tokenDelay is how long a next_page_token needs before it becomes valid
// on the upstream side.
const tokenDelay = 2 * time.Second

// maxDetailLookups bounds Details requests per harvest; the endpoint is
// billed per call. Cached places do not count against it.
const maxDetailLookups = 10

// PlacesAdapter queries the Places web service instead of scraping pages.
// It runs Text Search for every anchor and adds Nearby Search when the
// anchor has configured coordinates, following next_page_token pagination.
type PlacesAdapter struct {
	client    *resty.Client
	apiKey    string
	radius    int
	language  string
	locations map[string]string
	logger    *slog.Logger

	// Details responses keyed by place_id; a place showing up in several
	// anchor searches is fetched once.
	detailsMu sync.Mutex
	details   map[string]placeDetail
}

// NewPlacesAdapter creates a Places adapter from config. The API key comes
// from the environment (or .env), never from the config file.
func NewPlacesAdapter(cfg model.PlacesConfig, timeout time.Duration, logger *slog.Logger) *PlacesAdapter {
	return &PlacesAdapter{
		client:    resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(timeout),
		apiKey:    cfg.APIKey,
		radius:    cfg.Radius,
		language:  cfg.Language,
		locations: cfg.Locations,
		logger:    logger,
		details:   make(map[string]placeDetail),
	}
}

func (a *PlacesAdapter) Name() string         { return "places" }
func (a *PlacesAdapter) Origin() model.Origin { return model.OriginPlaces }

type placesResponse struct {
	Results       []placeResult `json:"results"`
	NextPageToken string        `json:"next_page_token"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
}

type placeResult struct {
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Vicinity         string `json:"vicinity"`
	PlaceID          string `json:"place_id"`
}

type placeDetailsResponse struct {
	Result       placeDetail `json:"result"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
}

type placeDetail struct {
	Name                 string `json:"name"`
	FormattedAddress     string `json:"formatted_address"`
	FormattedPhoneNumber string `json:"formatted_phone_number"`
}

// Harvest runs text and nearby searches for one keyword+anchor pair.
func (a *PlacesAdapter) Harvest(ctx context.Context, keyword, anchor string) ([]model.RawRecord, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("places API key not configured")
	}

	location := a.locations[anchor]

	params := map[string]string{
		"key":      a.apiKey,
		"query":    keyword + " " + anchor,
		"language": a.language,
	}
	if location != "" {
		params["location"] = location
		params["radius"] = strconv.Itoa(a.radius)
	}

	results, err := a.paginate(ctx, "/textsearch/json", params)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	if location != "" {
		nearbyParams := map[string]string{
			"key":      a.apiKey,
			"keyword":  keyword,
			"location": location,
			"radius":   strconv.Itoa(a.radius),
			"language": a.language,
		}
		nearby, err := a.paginate(ctx, "/nearbysearch/json", nearbyParams)
		if err != nil {
			a.logger.Warn("nearby search failed", "anchor", anchor, "err", err)
		} else {
			results = append(results, nearby...)
		}
	}

	records := make([]model.RawRecord, 0, len(results))
	lookups := 0
	for _, place := range results {
		address := place.FormattedAddress
		if address == "" {
			address = place.Vicinity
		}
		sourceURL := ""
		if place.PlaceID != "" {
			sourceURL = "https://www.google.com/maps/place/?q=place_id:" + place.PlaceID
		}

		// Search responses carry no phone number; that takes a Details
		// call per place.
		phone := ""
		if place.PlaceID != "" {
			detail, ok := a.cachedDetail(place.PlaceID)
			if !ok && lookups < maxDetailLookups {
				lookups++
				var err error
				detail, err = a.fetchDetail(ctx, place.PlaceID)
				if err != nil {
					a.logger.Warn("place details failed",
						"place_id", place.PlaceID, "err", err)
				} else {
					ok = true
				}
			}
			if ok {
				phone = detail.FormattedPhoneNumber
				if detail.FormattedAddress != "" {
					address = detail.FormattedAddress
				}
			}
		}

		records = append(records, rawRecord(place.Name, address, phone, sourceURL))
	}

	a.logger.Debug("places API queried",
		"keyword", keyword, "anchor", anchor, "candidates", len(records))
	return records, nil
}

func (a *PlacesAdapter) cachedDetail(placeID string) (placeDetail, bool) {
	a.detailsMu.Lock()
	defer a.detailsMu.Unlock()
	detail, ok := a.details[placeID]
	return detail, ok
}

// fetchDetail retrieves the Details payload for one place and caches it
// for the adapter's lifetime.
func (a *PlacesAdapter) fetchDetail(ctx context.Context, placeID string) (placeDetail, error) {
	var body placeDetailsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      a.apiKey,
			"place_id": placeID,
			"language": a.language,
			"fields":   "name,formatted_address,formatted_phone_number",
		}).
		SetResult(&body).
		Get("/details/json")
	if err != nil {
		return placeDetail{}, err
	}
	if resp.IsError() {
		return placeDetail{}, fmt.Errorf("unexpected status: %s", resp.Status())
	}
	if body.Status != "OK" {
		return placeDetail{}, fmt.Errorf("details status %s: %s", body.Status, body.ErrorMessage)
	}

	a.detailsMu.Lock()
	a.details[placeID] = body.Result
	a.detailsMu.Unlock()
	return body.Result, nil
}

// paginate follows next_page_token until the result set is exhausted.
func (a *PlacesAdapter) paginate(ctx context.Context, path string, params map[string]string) ([]placeResult, error) {
	var all []placeResult

	query := make(map[string]string, len(params))
	for k, v := range params {
		query[k] = v
	}

	for {
		var body placesResponse
		resp, err := a.client.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(&body).
			Get(path)
		if err != nil {
			return all, err
		}
		if resp.IsError() {
			return all, fmt.Errorf("unexpected status: %s", resp.Status())
		}
		if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
			return all, fmt.Errorf("places status %s: %s", body.Status, body.ErrorMessage)
		}

		all = append(all, body.Results...)

		if body.NextPageToken == "" {
			return all, nil
		}

		// The token is not valid immediately.
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-time.After(tokenDelay):
		}
		query = map[string]string{
			"key":       params["key"],
			"pagetoken": body.NextPageToken,
		}
	}
}
