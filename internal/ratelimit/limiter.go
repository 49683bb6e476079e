// Package ratelimit throttles preview fetches per registrable domain so a
// batch full of links to one site does not hammer it.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// RateLimiter blocks callers until a request to a URL's domain may proceed.
type RateLimiter interface {
	// Wait blocks until a request for urlStr can proceed or ctx is done.
	Wait(ctx context.Context, urlStr string) error

	// Allow takes a token for urlStr's domain if one is available now and
	// reports whether it did.
	Allow(urlStr string) bool
}

// DomainLimiter keeps one token bucket per registrable domain
// (blog.example.co.uk and www.example.co.uk share a bucket).
type DomainLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per domain
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 4
	}

	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (dl *DomainLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	domain := Domain(urlStr)
	if domain == "" {
		// Unparseable URLs fail in the fetcher, not here
		return nil
	}

	return dl.getLimiter(domain).Wait(ctx)
}

func (dl *DomainLimiter) Allow(urlStr string) bool {
	domain := Domain(urlStr)
	if domain == "" {
		return true
	}
	return dl.getLimiter(domain).Allow()
}

// Domains returns how many domains currently have a bucket
func (dl *DomainLimiter) Domains() int {
	dl.mu.RLock()
	defer dl.mu.RUnlock()
	return len(dl.limiters)
}

func (dl *DomainLimiter) getLimiter(domain string) *rate.Limiter {
	dl.mu.RLock()
	limiter, exists := dl.limiters[domain]
	dl.mu.RUnlock()

	if exists {
		return limiter
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	if limiter, exists := dl.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(dl.perHost, dl.burst)
	dl.limiters[domain] = limiter
	return limiter
}

// Unlimited never blocks. Used when rate limiting is switched off.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

func (Unlimited) Allow(string) bool { return true }

// Domain returns the registrable domain (eTLD+1) of urlStr, falling back to
// the bare hostname for IPs, localhost and other hosts without a public suffix.
func Domain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}
