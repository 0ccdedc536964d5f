package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"seolens/analyzer"
	"seolens/crawler"
	"seolens/models"
	"seolens/storage"
)

var (
	ErrDomainNotFound = errors.New("domain not found")
	ErrScanInProgress = errors.New("scan already in progress for domain")
)

// ScanStore is the storage contract the scan orchestration needs
type ScanStore interface {
	GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	GetDomainStatus(ctx context.Context, domainID uuid.UUID) (*models.DomainStatus, error)
	UpsertSitePage(ctx context.Context, p *models.SitePage) error
	ReplaceSuggestions(ctx context.Context, domainID uuid.UUID, suggestions []models.Suggestion) error
	UpdateDomainScanSummary(ctx context.Context, domainID uuid.UUID, sum *storage.ScanSummary) error
	CreateScanRun(ctx context.Context, run *models.ScanRun) error
	UpdateScanRun(ctx context.Context, run *models.ScanRun) error
	AcquireScanLock(ctx context.Context, domainID uuid.UUID) (*storage.ScanLock, error)
}

// ScanService runs one full SEO scan of a domain: crawl, evaluate, persist
type ScanService struct {
	store   ScanStore
	scanner *crawler.Scanner
}

func NewScanService(store ScanStore, scanner *crawler.Scanner) *ScanService {
	return &ScanService{
		store:   store,
		scanner: scanner,
	}
}

// ScanOutcome summarizes one completed scan
type ScanOutcome struct {
	DomainID           uuid.UUID              `json:"domainId"`
	PagesScanned       int                    `json:"pagesScanned"`
	SuggestionsCreated int                    `json:"suggestionsCreated"`
	URLsFound          int                    `json:"urlsFound"`
	HealthScore        int                    `json:"healthScore"`
	HealthSummary      analyzer.HealthSummary `json:"healthSummary"`
}

type scannedPage struct {
	page   *crawler.PageResult
	pageID uuid.UUID
}

// Scan crawls the domain's site and replaces its pages, suggestions and
// summary. A missing domain aborts before any write; per-page storage
// failures are logged and skipped.
func (s *ScanService) Scan(ctx context.Context, domainID uuid.UUID, maxPages int) (*ScanOutcome, error) {
	if maxPages <= 0 {
		maxPages = crawler.DefaultMaxPages
	}

	domain, err := s.store.GetDomain(ctx, domainID)
	if err != nil {
		return nil, fmt.Errorf("load domain: %w", err)
	}
	if domain == nil {
		return nil, ErrDomainNotFound
	}

	lock, err := s.store.AcquireScanLock(ctx, domainID)
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if lock == nil {
		return nil, ErrScanInProgress
	}
	defer lock.Release(ctx)

	startURL, err := s.resolveStartURL(ctx, domain)
	if err != nil {
		return nil, err
	}

	run := &models.ScanRun{
		DomainID:  domainID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := s.store.CreateScanRun(ctx, run); err != nil {
		log.Printf("Scan: failed to create run row: %v", err)
	}

	log.Printf("Scan: starting crawl of %s, max %d pages", startURL, maxPages)

	var scanned []scannedPage

	result, err := s.scanner.Scan(ctx, startURL, maxPages, func(page *crawler.PageResult) error {
		row := pageRow(domain, page)
		if err := s.store.UpsertSitePage(ctx, row); err != nil {
			return err
		}
		scanned = append(scanned, scannedPage{page: page, pageID: row.ID})
		return nil
	})
	if err != nil {
		s.finishRun(ctx, run, models.RunStatusFailed, err.Error())
		return nil, fmt.Errorf("crawl %s: %w", startURL, err)
	}

	// fetch failures and per-page storage failures both land here
	errorsCount := result.Failures

	suggestions := s.buildSuggestions(domain, scanned)
	if err := s.store.ReplaceSuggestions(ctx, domainID, suggestions); err != nil {
		log.Printf("Scan: failed to replace suggestions for %s: %v", domain.DomainName, err)
		errorsCount++
	}

	pages := make([]*crawler.PageResult, len(scanned))
	for i, sp := range scanned {
		pages[i] = sp.page
	}
	summary := analyzer.Aggregate(pages)
	score := summary.Score()

	if err := s.store.UpdateDomainScanSummary(ctx, domainID, &storage.ScanSummary{
		HealthScore:       score,
		TotalPagesScanned: summary.TotalPagesScanned,
		PagesMissingTitle: summary.PagesMissingTitle,
		PagesMissingMeta:  summary.PagesMissingMeta,
		PagesMissingH1:    summary.PagesMissingH1,
		Pages2xx:          summary.Pages2xx,
		Pages4xx:          summary.Pages4xx,
		Pages5xx:          summary.Pages5xx,
		LastScanAt:        time.Now(),
	}); err != nil {
		log.Printf("Scan: failed to update domain summary for %s: %v", domain.DomainName, err)
		errorsCount++
	}

	run.PagesScanned = len(scanned)
	run.SuggestionsCreated = len(suggestions)
	run.HealthScore = &score
	run.ErrorsCount = errorsCount
	s.finishRun(ctx, run, models.RunStatusCompleted, "")

	log.Printf("Scan: %s complete: %d pages, %d suggestions, health score %d",
		domain.DomainName, len(scanned), len(suggestions), score)

	return &ScanOutcome{
		DomainID:           domainID,
		PagesScanned:       len(scanned),
		SuggestionsCreated: len(suggestions),
		URLsFound:          result.URLsFound,
		HealthScore:        score,
		HealthSummary:      summary,
	}, nil
}

// resolveStartURL prefers the redirect resolver's final URL, falling back to
// https://{domain_name}.
func (s *ScanService) resolveStartURL(ctx context.Context, domain *models.Domain) (string, error) {
	status, err := s.store.GetDomainStatus(ctx, domain.ID)
	if err != nil {
		return "", fmt.Errorf("load domain status: %w", err)
	}
	if status != nil && status.FinalURL != nil && *status.FinalURL != "" {
		return *status.FinalURL, nil
	}

	startURL := domain.DomainName
	if !strings.HasPrefix(startURL, "http://") && !strings.HasPrefix(startURL, "https://") {
		startURL = "https://" + startURL
	}
	return startURL, nil
}

func pageRow(domain *models.Domain, page *crawler.PageResult) *models.SitePage {
	return &models.SitePage{
		ID:              uuid.New(),
		UserID:          domain.UserID,
		DomainID:        domain.ID,
		URL:             page.URL,
		HTTPStatus:      page.HTTPStatus,
		Title:           page.Signals.Title,
		MetaDescription: page.Signals.MetaDescription,
		CanonicalURL:    page.Signals.Canonical,
		RobotsDirective: page.Signals.Robots,
		H1:              page.Signals.H1,
		LastScannedAt:   time.Now(),
	}
}

func (s *ScanService) buildSuggestions(domain *models.Domain, scanned []scannedPage) []models.Suggestion {
	var suggestions []models.Suggestion
	now := time.Now()

	for _, sp := range scanned {
		for _, f := range analyzer.Evaluate(sp.page) {
			suggestions = append(suggestions, models.Suggestion{
				ID:          uuid.New(),
				UserID:      domain.UserID,
				DomainID:    domain.ID,
				PageID:      sp.pageID,
				Scope:       models.ScopePage,
				Type:        f.Type,
				Title:       f.Title,
				Description: f.Description,
				Severity:    f.Severity,
				Impact:      f.Impact,
				Effort:      f.Effort,
				CreatedAt:   now,
			})
		}
	}

	return suggestions
}

func (s *ScanService) finishRun(ctx context.Context, run *models.ScanRun, status models.RunStatus, errMsg string) {
	if run.ID == 0 {
		return
	}
	now := time.Now()
	run.FinishedAt = &now
	run.Status = status
	if errMsg != "" {
		run.ErrorMessage = &errMsg
	}
	if err := s.store.UpdateScanRun(ctx, run); err != nil {
		log.Printf("Scan: failed to update run row: %v", err)
	}
}
