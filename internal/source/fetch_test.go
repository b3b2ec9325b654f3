package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonscout/internal/cache"
	"salonscout/internal/model"
)

func testFetcherConfig() model.Config {
	return model.Config{
		HTTP: model.HTTPConfig{
			Timeout:      5 * time.Second,
			UserAgent:    "salonscout-test/1.0",
			MaxBodyBytes: 1 << 20,
		},
		Harvest: model.HarvestConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcherReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "salonscout-test/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	f := NewFetcher(testFetcherConfig(), nil, discardLogger())
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetcherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFetcher(testFetcherConfig(), nil, discardLogger())
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestFetcherLimitsBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 100))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.HTTP.MaxBodyBytes = 10

	f := NewFetcher(cfg, nil, discardLogger())
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 10 {
		t.Errorf("body length = %d, want 10", len(body))
	}
}

func TestFetcherServesSecondHitFromCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = io.WriteString(w, "cached page")
	}))
	defer srv.Close()

	pages := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewFetcher(testFetcherConfig(), pages, discardLogger())

	for i := 0; i < 2; i++ {
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if body != "cached page" {
			t.Errorf("fetch %d body = %q", i, body)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
}

func TestFetcherHonorsRobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		t.Error("disallowed path was fetched")
	})
	mux.HandleFunc("/public/page", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "open")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.HTTP.RespectRobots = true

	f := NewFetcher(cfg, nil, discardLogger())

	if _, err := f.Fetch(context.Background(), srv.URL+"/private/page"); err == nil {
		t.Fatal("expected robots disallow error")
	}
	body, err := f.Fetch(context.Background(), srv.URL+"/public/page")
	if err != nil {
		t.Fatalf("allowed path failed: %v", err)
	}
	if body != "open" {
		t.Errorf("body = %q", body)
	}
}

func TestFetcherCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "never seen")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(testFetcherConfig(), nil, discardLogger())
	if _, err := f.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error after cancel")
	}
}
