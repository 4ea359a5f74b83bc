package verify

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter spaces out requests to each publisher host.
type hostLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func newHostLimiter(perSecond float64, burst int) *hostLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &hostLimiter{hosts: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (l *hostLimiter) limiter(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.hosts[host]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.hosts[host] = lim
	}
	return lim
}

// Wait blocks until a request to rawURL's host is allowed.
func (l *hostLimiter) Wait(ctx context.Context, rawURL string) error {
	return l.limiter(hostOf(rawURL)).Wait(ctx)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.ToLower(parsed.Hostname())
}
