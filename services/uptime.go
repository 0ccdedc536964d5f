package services

import (
	"context"
	"errors"
	"log"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"seolens/models"
	"seolens/storage"
)

const defaultUptimeIntervalMin = 10

// UptimeStore is the storage contract for uptime sampling
type UptimeStore interface {
	ListUptimeDomains(ctx context.Context) ([]models.Domain, error)
	InsertUptimeCheck(ctx context.Context, c *models.UptimeCheck) error
	ListUptimeChecksSince(ctx context.Context, domainID uuid.UUID, since time.Time) ([]models.UptimeCheck, error)
	UpdateDomainUptimeSummary(ctx context.Context, domainID uuid.UUID, sum *storage.UptimeSummary) error
}

// UptimeService probes monitored domains and maintains their rolling
// availability percentages. Domains due in the same cycle are checked
// concurrently, bounded by a worker pool; one domain's failure never blocks
// the others.
type UptimeService struct {
	store     UptimeStore
	client    *http.Client
	userAgent string
	workers   int
}

func NewUptimeService(store UptimeStore, client *http.Client, userAgent string, workers int) *UptimeService {
	if workers < 1 {
		workers = 1
	}
	return &UptimeService{
		store:     store,
		client:    client,
		userAgent: userAgent,
		workers:   workers,
	}
}

// UptimeReport summarizes one sampling cycle
type UptimeReport struct {
	Checked int `json:"checked"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// CheckAll probes every monitored domain whose check interval has elapsed
func (s *UptimeService) CheckAll(ctx context.Context) (*UptimeReport, error) {
	domains, err := s.store.ListUptimeDomains(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var due []models.Domain
	for _, d := range domains {
		if isDue(&d, now) {
			due = append(due, d)
		}
	}

	report := &UptimeReport{
		Checked: len(due),
		Skipped: len(domains) - len(due),
		Total:   len(domains),
	}

	if len(due) == 0 {
		return report, nil
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := range due {
		wg.Add(1)
		sem <- struct{}{}
		go func(d *models.Domain) {
			defer wg.Done()
			defer func() { <-sem }()
			s.checkDomain(ctx, d, now)
		}(&due[i])
	}
	wg.Wait()

	return report, nil
}

func isDue(d *models.Domain, now time.Time) bool {
	if d.LastUptimeCheckedAt == nil {
		return true
	}
	interval := d.UptimeIntervalMin
	if interval <= 0 {
		interval = defaultUptimeIntervalMin
	}
	return now.Sub(*d.LastUptimeCheckedAt) >= time.Duration(interval)*time.Minute
}

func (s *UptimeService) checkDomain(ctx context.Context, d *models.Domain, now time.Time) {
	check := s.probe(ctx, d.DomainName)
	check.ID = uuid.New()
	check.DomainID = d.ID
	check.CheckedAt = now

	if err := s.store.InsertUptimeCheck(ctx, check); err != nil {
		log.Printf("Uptime: failed to record check for %s: %v", d.DomainName, err)
		return
	}

	checks, err := s.store.ListUptimeChecksSince(ctx, d.ID, now.Add(-7*24*time.Hour))
	if err != nil {
		log.Printf("Uptime: failed to load window for %s: %v", d.DomainName, err)
		return
	}

	up24, up7 := availability(checks, now)

	err = s.store.UpdateDomainUptimeSummary(ctx, d.ID, &storage.UptimeSummary{
		Status:           check.Status,
		CheckedAt:        now,
		ResponseTimeMs:   check.ResponseTimeMs,
		Uptime24hPercent: up24,
		Uptime7dPercent:  up7,
	})
	if err != nil {
		log.Printf("Uptime: failed to update summary for %s: %v", d.DomainName, err)
		return
	}

	log.Printf("Uptime: %s is %s (24h %.2f%%, 7d %.2f%%)", d.DomainName, check.Status, up24, up7)
}

// probe performs one bounded GET against https://{domain}. A timeout or
// network error is a valid "down" sample, not an error.
func (s *UptimeService) probe(ctx context.Context, domainName string) *models.UptimeCheck {
	target := domainName
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	check := &models.UptimeCheck{Status: models.UptimeDown}

	req, err := http.NewRequestWithContext(ctx, "GET", target, nil)
	if err != nil {
		msg := err.Error()
		check.ErrorMessage = &msg
		return check
	}
	req.Header.Set("User-Agent", s.userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := int(time.Since(start).Milliseconds())

	if err != nil {
		msg := err.Error()
		if isTimeoutErr(err) {
			msg = "Request timeout"
		}
		check.ErrorMessage = &msg
		return check
	}
	resp.Body.Close()

	check.HTTPStatus = &resp.StatusCode
	check.ResponseTimeMs = &elapsed
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		check.Status = models.UptimeUp
	}
	return check
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// availability computes the rolling 24h and 7d up percentages over a 7-day
// window of checks. An empty window is 100%: absence of evidence is not
// downtime.
func availability(checks []models.UptimeCheck, now time.Time) (up24, up7 float64) {
	dayAgo := now.Add(-24 * time.Hour)

	var last24 []models.UptimeCheck
	for _, c := range checks {
		if !c.CheckedAt.Before(dayAgo) {
			last24 = append(last24, c)
		}
	}

	return upPercent(last24), upPercent(checks)
}

func upPercent(checks []models.UptimeCheck) float64 {
	if len(checks) == 0 {
		return 100
	}
	up := 0
	for _, c := range checks {
		if c.Status == models.UptimeUp {
			up++
		}
	}
	return math.Round(float64(up)/float64(len(checks))*10000) / 100
}
