package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"salonscout/internal/model"
)

func newTestPlacesAdapter(t *testing.T, handler http.Handler) *PlacesAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := model.PlacesConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Radius:   3000,
		Language: "zh-TW",
	}
	return NewPlacesAdapter(cfg, 5*time.Second, discardLogger())
}

func writePlacesJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestPlacesHarvest_FillsPhoneFromDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		writePlacesJSON(t, w, placesResponse{
			Status: "OK",
			Results: []placeResult{
				{Name: "晶漾美甲", FormattedAddress: "高雄市左營區博愛二路100號", PlaceID: "p1"},
				{Name: "Bella Nails", Vicinity: "左營區", PlaceID: "p2"},
			},
		})
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		detail := placeDetail{Name: "晶漾美甲", FormattedPhoneNumber: "07-585 1234"}
		if r.URL.Query().Get("place_id") == "p2" {
			detail = placeDetail{
				Name:                 "Bella Nails",
				FormattedAddress:     "高雄市左營區自由三路22號",
				FormattedPhoneNumber: "07-345 6789",
			}
		}
		writePlacesJSON(t, w, placeDetailsResponse{Status: "OK", Result: detail})
	})

	a := newTestPlacesAdapter(t, mux)
	records, err := a.Harvest(context.Background(), "美甲", "左營")
	if err != nil {
		t.Fatalf("Harvest: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	if got := records[0][model.KeyPhone]; got != "07-585 1234" {
		t.Errorf("first phone = %q", got)
	}
	// The Details address is authoritative when the search row has only a
	// vicinity.
	if got := records[1][model.KeyAddress]; got != "高雄市左營區自由三路22號" {
		t.Errorf("second address = %q", got)
	}
	if got := records[1][model.KeyPhone]; got != "07-345 6789" {
		t.Errorf("second phone = %q", got)
	}
}

func TestPlacesHarvest_DetailsFetchedOncePerPlace(t *testing.T) {
	var detailCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		writePlacesJSON(t, w, placesResponse{
			Status:  "OK",
			Results: []placeResult{{Name: "晶漾美甲", PlaceID: "p1"}},
		})
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		detailCalls.Add(1)
		writePlacesJSON(t, w, placeDetailsResponse{
			Status: "OK",
			Result: placeDetail{FormattedPhoneNumber: "07-585 1234"},
		})
	})

	a := newTestPlacesAdapter(t, mux)
	for i := 0; i < 3; i++ {
		if _, err := a.Harvest(context.Background(), "美甲", "左營"); err != nil {
			t.Fatalf("Harvest %d: %v", i, err)
		}
	}
	if n := detailCalls.Load(); n != 1 {
		t.Errorf("details requested %d times, want 1", n)
	}
}

func TestPlacesHarvest_DetailsFailureKeepsRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		writePlacesJSON(t, w, placesResponse{
			Status:  "OK",
			Results: []placeResult{{Name: "晶漾美甲", FormattedAddress: "高雄市左營區博愛二路100號", PlaceID: "p1"}},
		})
	})
	mux.HandleFunc("/details/json", func(w http.ResponseWriter, r *http.Request) {
		writePlacesJSON(t, w, placeDetailsResponse{Status: "INVALID_REQUEST"})
	})

	a := newTestPlacesAdapter(t, mux)
	records, err := a.Harvest(context.Background(), "美甲", "左營")
	if err != nil {
		t.Fatalf("Harvest: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if _, ok := records[0][model.KeyPhone]; ok {
		t.Errorf("phone present after failed details lookup: %q", records[0][model.KeyPhone])
	}
	if got := records[0][model.KeyAddress]; got != "高雄市左營區博愛二路100號" {
		t.Errorf("address = %q", got)
	}
}
