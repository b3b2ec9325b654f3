package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"salonscout/internal/cache"
	"salonscout/internal/model"
	"salonscout/internal/util"
	"salonscout/internal/worker"
)

// Fetcher retrieves pages for the HTML-scraping adapters. Every fetch goes
// through the page cache, the robots gate and the per-domain limiter, in
// that order, so a cache hit costs the upstream nothing.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	minDelay  time.Duration
	maxDelay  time.Duration

	pages   cache.Cache
	robots  *util.RobotsChecker
	limiter *worker.Limiter
	logger  *slog.Logger
}

// NewFetcher builds a fetcher from config. pages may be nil to disable
// caching.
func NewFetcher(cfg model.Config, pages cache.Cache, logger *slog.Logger) *Fetcher {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
	}
	if cfg.HTTP.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		minDelay:  cfg.Harvest.MinDelay,
		maxDelay:  cfg.Harvest.MaxDelay,
		pages:     pages,
		robots:    robots,
		limiter:   worker.NewLimiter(cfg.Harvest.RequestsPerSecond, cfg.Harvest.Burst),
		logger:    logger,
	}
}

// Fetch returns the HTML body for rawURL, from cache when possible.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	key := cache.Key(rawURL)
	if f.pages != nil {
		if body, found := f.pages.Get(key); found {
			f.logger.Debug("page cache hit", "url", rawURL)
			return string(body), nil
		}
	}

	if f.robots != nil {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		if crawlDelay > 0 {
			// Honor the host's requested pacing over our default.
			if host := hostOf(rawURL); host != "" {
				f.limiter.SetDomainRate(host, 1/crawlDelay.Seconds(), 1)
			}
		}
	}

	if err := f.limiter.WaitWithJitter(ctx, rawURL, f.minDelay, f.maxDelay); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if f.pages != nil {
		if err := f.pages.Set(key, body, 0); err != nil {
			f.logger.Warn("page cache write failed", "url", rawURL, "err", err)
		}
	}
	return string(body), nil
}

func hostOf(rawURL string) string {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	return req.URL.Hostname()
}
