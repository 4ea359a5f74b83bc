package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ErrBrowserMissing is returned when no Chromium binary is installed.
var ErrBrowserMissing = errors.New("headless browser not available")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Fetcher loads a publisher page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// HTTPFetcher fetches static pages with a plain GET.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}

	raw := string(body)
	return Page{URL: resp.Request.URL.String(), Text: visibleText(parseHTML(raw)), HTML: raw}, nil
}

// BrowserFetcher renders JavaScript-heavy pages in headless Chromium.
type BrowserFetcher struct {
	settle   time.Duration
	lookPath func(string) (string, error)
}

// NewBrowserFetcher returns a fetcher that waits settle after the page is
// ready before reading it.
func NewBrowserFetcher(settle time.Duration) *BrowserFetcher {
	return &BrowserFetcher{settle: settle, lookPath: exec.LookPath}
}

// Available reports whether a Chromium binary can be found.
func (f *BrowserFetcher) Available() error {
	for _, name := range []string{"chromium-browser", "chromium", "google-chrome"} {
		if _, err := f.lookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: chromium not installed", ErrBrowserMissing)
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	if err := f.Available(); err != nil {
		return Page{}, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var text, outer string
	err := chromedp.Run(taskCtx,
		emulation.SetUserAgentOverride(userAgent),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.Text("body", &text, chromedp.ByQuery),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
	)
	if err != nil {
		return Page{}, fmt.Errorf("render %s: %w", url, err)
	}
	return Page{URL: url, Text: strings.TrimSpace(text), HTML: outer}, nil
}
