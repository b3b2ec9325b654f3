package worker

import (
	"context"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Limiter paces requests per domain. The upstream services are sensitive
// to automated access from one identity, so every request waits for token
// clearance and optionally an extra jittered delay on top.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with the given default per-domain rate.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the domain of rawURL allows another request.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.limiterFor(domainOf(parsed.Hostname())).Wait(ctx)
}

// domainOf collapses hosts onto their registrable domain so www.example.com
// and maps.example.com share one budget.
func domainOf(host string) string {
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// WaitWithJitter waits for rate clearance and then sleeps a random extra
// duration in [min, max], mimicking human pacing between page loads.
func (l *Limiter) WaitWithJitter(ctx context.Context, rawURL string, min, max time.Duration) error {
	if err := l.Wait(ctx, rawURL); err != nil {
		return err
	}

	extra := min
	if max > min {
		extra = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if extra <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(extra):
		return nil
	}
}

// SetDomainRate overrides the rate for one domain, e.g. to honor a
// robots.txt crawl delay. Callers may invoke it before every request, so
// an existing limiter is adjusted in place; replacing it would hand out a
// fresh full token bucket each time and never actually pace anything.
func (l *Limiter) SetDomainRate(domain string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.defaultBurst
	}
	key := domainOf(domain)

	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		l.limiters[key] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	if limiter.Limit() != rate.Limit(requestsPerSecond) {
		limiter.SetLimit(rate.Limit(requestsPerSecond))
	}
	if limiter.Burst() != burst {
		limiter.SetBurst(burst)
	}
}

func (l *Limiter) limiterFor(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[domain]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok := l.limiters[domain]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[domain] = limiter
	return limiter
}
