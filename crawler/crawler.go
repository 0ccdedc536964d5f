package crawler

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"
)

// DefaultMaxPages bounds a scan when the caller does not pass a page budget
const DefaultMaxPages = 50

// PageResult couples one visited URL with its HTTP status and extracted
// signals.
type PageResult struct {
	URL        string
	HTTPStatus int
	Signals    PageSignals
}

// ScanResult is the output of one bounded breadth-first crawl
type ScanResult struct {
	Pages     []*PageResult
	URLsFound int
	Failures  int
}

// Scanner drives breadth-first traversal over a frontier, one page at a time,
// bounded by a page budget. It is a deliberately shallow sample: pages fewer
// hops from the seed are visited first, and the crawl stops at the budget
// rather than exhausting the site.
type Scanner struct {
	fetcher Fetcher
	delay   time.Duration
}

func NewScanner(fetcher Fetcher, delay time.Duration) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		delay:   delay,
	}
}

// Scan crawls same-origin pages starting from seedURL until the frontier is
// empty or maxPages pages have been fetched and parsed. Fetch failures do not
// consume budget; a URL gets at most one attempt per scan.
//
// When onPage is non-nil it is invoked for every parsed page as it is
// produced; an error from it drops the page from the result, its links are
// not followed, and the crawl continues.
func (s *Scanner) Scan(ctx context.Context, seedURL string, maxPages int, onPage func(*PageResult) error) (*ScanResult, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	base, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("seed url %q has no scheme or host", seedURL)
	}

	seed, ok := Normalize(base.String(), base)
	if !ok {
		return nil, fmt.Errorf("seed url %q is not crawlable", seedURL)
	}

	frontier := NewFrontier()
	frontier.Push(seed)

	result := &ScanResult{}
	visited := 0

	for frontier.Len() > 0 && visited < maxPages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		current, _ := frontier.Pop()
		frontier.MarkVisited(current)

		fetched, err := s.fetcher.Fetch(ctx, current)
		if err != nil {
			log.Printf("Crawl: fetch failed for %s: %v", current, err)
			result.Failures++
			continue
		}

		pageURL, err := url.Parse(current)
		if err != nil {
			result.Failures++
			continue
		}

		signals := Extract(string(fetched.Body), pageURL)
		visited++

		page := &PageResult{
			URL:        current,
			HTTPStatus: fetched.StatusCode,
			Signals:    signals,
		}

		if onPage != nil {
			if err := onPage(page); err != nil {
				log.Printf("Crawl: page handler failed for %s: %v", current, err)
				result.Failures++
				continue
			}
		}

		// A page that failed to persist contributes no links
		for _, link := range signals.Links {
			frontier.Push(link)
		}

		result.Pages = append(result.Pages, page)

		if s.delay > 0 && frontier.Len() > 0 && visited < maxPages {
			time.Sleep(s.delay)
		}
	}

	result.URLsFound = frontier.Discovered()
	return result, nil
}
