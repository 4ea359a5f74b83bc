package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

const maxFeedBytes = 8 << 20

// Fetcher downloads the remote CSV feed.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher returns a fetcher for url; a nil client gets a 15s default.
func NewFetcher(url string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{url: strings.TrimSpace(url), client: client}
}

// Configured reports whether a feed URL was given.
func (f *Fetcher) Configured() bool {
	return f != nil && f.url != ""
}

// Fetch downloads and parses the feed. An empty body yields no records and no
// error; callers treat that the same as an unconfigured feed.
func (f *Fetcher) Fetch(ctx context.Context) ([]standard.Standard, error) {
	if !f.Configured() {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}
	return Parse(string(body)), nil
}
