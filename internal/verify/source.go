package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Source produces verification reports on demand and serves the latest one.
type Source interface {
	Trigger(ctx context.Context, items []standard.Standard) (feed.Report, error)
	Latest(ctx context.Context) (feed.Report, error)
}

// LocalSource runs the in-process agent and stores the result.
type LocalSource struct {
	agent *Agent
	store ReportStore
}

func NewLocalSource(agent *Agent, store ReportStore) *LocalSource {
	return &LocalSource{agent: agent, store: store}
}

func (s *LocalSource) Trigger(ctx context.Context, items []standard.Standard) (feed.Report, error) {
	report := s.agent.Run(ctx, items)
	if err := s.store.Save(ctx, report); err != nil {
		return report, fmt.Errorf("save report: %w", err)
	}
	return report, nil
}

func (s *LocalSource) Latest(ctx context.Context) (feed.Report, error) {
	return s.store.Latest(ctx)
}

// RemoteSource drives a verification service over HTTP: POST /api/run-verify
// to start a run, GET /verification_results.json for the report.
type RemoteSource struct {
	baseURL string
	client  *http.Client
}

// NewRemoteSource returns a source for baseURL. A nil client gets a timeout
// long enough for a full verification run.
func NewRemoteSource(baseURL string, client *http.Client) *RemoteSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &RemoteSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type runReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *RemoteSource) Trigger(ctx context.Context, _ []standard.Standard) (feed.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/run-verify", nil)
	if err != nil {
		return feed.Report{}, fmt.Errorf("build run request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return feed.Report{}, fmt.Errorf("trigger verification: %w", err)
	}
	defer resp.Body.Close()

	var reply runReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&reply); err != nil {
		return feed.Report{}, fmt.Errorf("decode run reply (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !strings.EqualFold(reply.Status, "success") {
		return feed.Report{}, fmt.Errorf("verification run failed: %s", reply.Message)
	}
	return s.Latest(ctx)
}

func (s *RemoteSource) Latest(ctx context.Context) (feed.Report, error) {
	url := fmt.Sprintf("%s/%s?t=%d", s.baseURL, ReportObject, time.Now().UnixMilli())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return feed.Report{}, fmt.Errorf("build report request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return feed.Report{}, fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return feed.Report{}, ErrNoReport
	}
	if resp.StatusCode != http.StatusOK {
		return feed.Report{}, fmt.Errorf("fetch report: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return feed.Report{}, fmt.Errorf("read report: %w", err)
	}
	return feed.DecodeReport(data)
}
