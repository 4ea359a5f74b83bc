// Package syncer pushes the reconciled collection to the remote sync endpoint.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Result is the endpoint's {status, message} reply.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the endpoint accepted the push.
func (r Result) OK() bool {
	return strings.EqualFold(r.Status, "success")
}

// Client posts collections to a sync endpoint.
type Client struct {
	url    string
	token  string
	client *http.Client
}

// NewClient returns a client for url. token, when set, is sent as a bearer
// token. A nil httpClient gets a 30s timeout.
func NewClient(url, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: strings.TrimSpace(url), token: token, client: httpClient}
}

// Configured reports whether an endpoint URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.url != ""
}

// Push sends items as a JSON array. A transport failure, a non-2xx status or
// a reply whose status is not "success" is returned as an error; the decoded
// reply is returned whenever one was received.
func (c *Client) Push(ctx context.Context, items []standard.Standard) (Result, error) {
	if items == nil {
		items = []standard.Standard{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return Result{}, fmt.Errorf("encode sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post sync: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read sync response: %w", err)
	}

	var result Result
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return Result{}, fmt.Errorf("decode sync response (status %d): %w", resp.StatusCode, err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, fmt.Errorf("sync endpoint returned %d: %s", resp.StatusCode, result.Message)
	}
	if !result.OK() {
		return result, fmt.Errorf("sync rejected: %s", result.Message)
	}
	return result, nil
}
