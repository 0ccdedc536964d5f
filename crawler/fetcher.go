package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

const maxBodyBytes = 2 * 1024 * 1024

// ErrTimeout marks a fetch that exceeded its deadline. ErrNotHTML marks a
// response whose Content-Type is not an HTML document; both are transient
// failures that skip the page without aborting the scan.
var (
	ErrTimeout = errors.New("request timeout")
	ErrNotHTML = errors.New("response is not HTML")
)

// FetchResult is the outcome of one bounded GET
type FetchResult struct {
	StatusCode int
	Body       []byte
}

// Fetcher performs a single page fetch
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*FetchResult, error)
}

// HTTPFetcher fetches pages with a timeout-bounded client, following
// redirects, with a custom user agent.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") {
		return nil, ErrNotHTML
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	return &FetchResult{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
