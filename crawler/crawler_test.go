package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubFetcher serves canned HTML per URL and records fetch order
type stubFetcher struct {
	pages   map[string]string
	status  map[string]int
	fail    map[string]error
	fetched []string
}

func (f *stubFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	f.fetched = append(f.fetched, pageURL)
	if err, ok := f.fail[pageURL]; ok {
		return nil, err
	}
	body, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("no stub page for %s", pageURL)
	}
	status := f.status[pageURL]
	if status == 0 {
		status = 200
	}
	return &FetchResult{StatusCode: status, Body: []byte(body)}, nil
}

func page(links ...string) string {
	html := "<html><head><title>Page</title></head><body>"
	for _, l := range links {
		html += fmt.Sprintf(`<a href="%s">link</a>`, l)
	}
	return html + "</body></html>"
}

func TestScan_BreadthFirstOrder(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a", "/b"),
			"https://example.com/a": page("/c"),
			"https://example.com/b": page("/d"),
			"https://example.com/c": page(),
			"https://example.com/d": page(),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 50, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	want := []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
		"https://example.com/d",
	}
	if len(fetcher.fetched) != len(want) {
		t.Fatalf("expected %d fetches, got %d: %v", len(want), len(fetcher.fetched), fetcher.fetched)
	}
	for i, u := range want {
		if fetcher.fetched[i] != u {
			t.Fatalf("fetch %d: expected %s, got %s", i, u, fetcher.fetched[i])
		}
	}
	if len(result.Pages) != 5 {
		t.Fatalf("expected 5 pages, got %d", len(result.Pages))
	}
	if result.Failures != 0 {
		t.Fatalf("expected 0 failures, got %d", result.Failures)
	}
}

func TestScan_BudgetStopsCrawl(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a", "/b"),
			"https://example.com/a": page(),
			"https://example.com/b": page(),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 2, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result.Pages))
	}
	if result.Pages[0].URL != "https://example.com/" || result.Pages[1].URL != "https://example.com/a" {
		t.Fatalf("unexpected pages: %s, %s", result.Pages[0].URL, result.Pages[1].URL)
	}
	// /b was discovered but never visited
	if result.URLsFound != 3 {
		t.Fatalf("expected 3 URLs found, got %d", result.URLsFound)
	}
}

func TestScan_FetchFailureDoesNotConsumeBudget(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a", "/b"),
			"https://example.com/b": page(),
		},
		fail: map[string]error{
			"https://example.com/a": errors.New("connection refused"),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 2, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	// The failed /a does not count toward the budget of 2, so /b still runs
	if len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result.Pages))
	}
	if result.Pages[1].URL != "https://example.com/b" {
		t.Fatalf("expected second page /b, got %s", result.Pages[1].URL)
	}
	if result.Failures != 1 {
		t.Fatalf("expected 1 failure, got %d", result.Failures)
	}
}

func TestScan_NoRevisits(t *testing.T) {
	// Every page links back to the homepage and to each other
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a", "/"),
			"https://example.com/a": page("/", "/a"),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 50, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(fetcher.fetched) != 2 {
		t.Fatalf("expected 2 fetches, got %d: %v", len(fetcher.fetched), fetcher.fetched)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result.Pages))
	}
}

func TestScan_OnPageErrorDropsPage(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a"),
			"https://example.com/a": page(),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 50, func(p *PageResult) error {
		if p.URL == "https://example.com/a" {
			return errors.New("insert failed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}
	if result.Pages[0].URL != "https://example.com/" {
		t.Fatalf("unexpected page %s", result.Pages[0].URL)
	}
	if result.Failures != 1 {
		t.Fatalf("expected 1 failure, got %d", result.Failures)
	}
}

func TestScan_OnPageErrorSkipsLinkDiscovery(t *testing.T) {
	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://example.com/":  page("/a"),
			"https://example.com/a": page("/b"),
			"https://example.com/b": page(),
		},
	}
	scanner := NewScanner(fetcher, 0)

	result, err := scanner.Scan(context.Background(), "https://example.com", 50, func(p *PageResult) error {
		if p.URL == "https://example.com/a" {
			return errors.New("insert failed")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	// /b was only linked from the dropped /a, so it is never fetched
	for _, u := range fetcher.fetched {
		if u == "https://example.com/b" {
			t.Fatalf("expected /b not to be fetched, got %v", fetcher.fetched)
		}
	}
	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}
	if result.Failures != 1 {
		t.Fatalf("expected 1 failure, got %d", result.Failures)
	}
}

func TestScan_BadSeed(t *testing.T) {
	scanner := NewScanner(&stubFetcher{}, 0)

	if _, err := scanner.Scan(context.Background(), "not a url", 10, nil); err == nil {
		t.Fatal("expected error for seed without scheme")
	}
	if _, err := scanner.Scan(context.Background(), "example.com", 10, nil); err == nil {
		t.Fatal("expected error for seed without scheme")
	}
}
