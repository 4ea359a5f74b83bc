// Package verify checks each standard against its publisher page and
// produces the verification report consumed by the update check.
package verify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/feed"
	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

// Options configures an Agent.
type Options struct {
	Static     Fetcher
	Browser    Fetcher
	RatePerSec float64
	Burst      int
	Timeout    time.Duration
	Now        func() time.Time
}

// Agent routes each standard to the scraper for its publisher.
type Agent struct {
	static  Fetcher
	browser Fetcher
	limits  *hostLimiter
	timeout time.Duration
	now     func() time.Time
}

func NewAgent(opts Options) *Agent {
	if opts.Static == nil {
		opts.Static = NewHTTPFetcher(nil)
	}
	if opts.Browser == nil {
		opts.Browser = NewBrowserFetcher(3 * time.Second)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Agent{
		static:  opts.Static,
		browser: opts.Browser,
		limits:  newHostLimiter(opts.RatePerSec, opts.Burst),
		timeout: opts.Timeout,
		now:     opts.Now,
	}
}

// Run checks every item in order. It stops early only when ctx is done; the
// items not reached are left out of the report.
func (a *Agent) Run(ctx context.Context, items []standard.Standard) feed.Report {
	report := feed.Report{
		Timestamp: a.now().Format(time.RFC3339),
		Results:   make([]feed.ReportResult, 0, len(items)),
	}
	for idx, item := range items {
		if ctx.Err() != nil {
			log.Printf("verify: cancelled after %d/%d standards: %v", idx, len(items), ctx.Err())
			break
		}
		result := a.Check(ctx, item)
		log.Printf("verify: [%d/%d] %s %s", idx+1, len(items), item.Name, result.Status)
		report.Results = append(report.Results, result)
	}
	return report
}

// Check verifies a single standard.
func (a *Agent) Check(ctx context.Context, item standard.Standard) feed.ReportResult {
	url := strings.TrimSpace(item.SourceURL)
	result := feed.ReportResult{ID: item.ID, Name: item.Name, URL: url, Status: feed.StatusOK, Issues: []string{}}

	if url == "" || strings.Contains(url, "/search") {
		result.Status = feed.StatusSkipped
		return result
	}

	if err := a.limits.Wait(ctx, url); err != nil {
		result.Status = feed.StatusError
		result.Issues = []string{err.Error()}
		return result
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	host := hostOf(url)
	switch {
	case strings.Contains(host, "webstore.iec.ch"):
		page, err := a.browser.Fetch(ctx, url)
		if err != nil {
			return failed(result, feed.StatusError, err)
		}
		setIssues(&result, compareLive(item, parseIEC(page)))

	case strings.Contains(host, "ieee.org"):
		page, err := a.static.Fetch(ctx, url)
		if err != nil {
			return failed(result, feed.StatusWarning, err)
		}
		if live := parseIEEE(page); live.Version != "" {
			log.Printf("verify: %s OK (Version: %s)", item.Name, live.Version)
		}

	case strings.Contains(host, "store.accuristech.com"):
		page, err := a.browser.Fetch(ctx, url)
		if err != nil {
			return failed(result, feed.StatusError, err)
		}
		live := parseAccuristech(page)
		if live.Version != "" && !strings.Contains(item.Version, live.Version) {
			setIssues(&result, []feed.Issue{{Field: feed.FieldEdition, Local: item.Version, Live: live.Version}})
		}

	case strings.Contains(host, "bsigroup.com"):
		page, err := a.browser.Fetch(ctx, url)
		if err != nil {
			return failed(result, feed.StatusError, err)
		}
		if parseBSI(page).Withdrawn {
			result.Status = feed.StatusMismatch
			result.Issues = []string{"Standard Withdrawn"}
		}

	default:
		page, err := a.static.Fetch(ctx, url)
		if err != nil {
			return failed(result, feed.StatusWarning, err)
		}
		checkGeneric(&result, item, parseGeneric(page))
	}
	return result
}

// checkGeneric compares only the leading edition number, the one thing a
// page-agnostic scraper reads reliably.
func checkGeneric(result *feed.ReportResult, item standard.Standard, live LiveData) {
	if live.Version == "" {
		return
	}
	same, ok := sameMajor(item.Version, live.Version)
	switch {
	case ok && !same:
		setIssues(result, []feed.Issue{{Field: feed.FieldEdition, Local: item.Version, Live: live.Version}})
	case !ok && editionNumberPattern.MatchString(live.Version) && !editionNumberPattern.MatchString(item.Version):
		result.Status = feed.StatusUpdate
		result.Issues = []string{fmt.Sprintf("Found version: %s", live.Version)}
	}
}

func setIssues(result *feed.ReportResult, issues []feed.Issue) {
	if len(issues) == 0 {
		return
	}
	result.Status = feed.StatusMismatch
	result.Issues = make([]string, 0, len(issues))
	for _, issue := range issues {
		result.Issues = append(result.Issues, issue.String())
	}
}

func failed(result feed.ReportResult, status feed.Status, err error) feed.ReportResult {
	result.Status = status
	result.Issues = []string{err.Error()}
	return result
}
