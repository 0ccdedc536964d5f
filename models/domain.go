package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UptimeStatus is the up/down classification of a single probe
type UptimeStatus string

const (
	UptimeUp   UptimeStatus = "up"
	UptimeDown UptimeStatus = "down"
)

// Domain is a monitored website owned by a user
type Domain struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	DomainName string    `json:"domain_name" db:"domain_name"`

	// SEO scan summary, overwritten wholesale on every completed scan
	HealthScore       *int       `json:"health_score" db:"health_score"`
	TotalPagesScanned int        `json:"total_pages_scanned" db:"total_pages_scanned"`
	PagesMissingTitle int        `json:"pages_missing_title" db:"pages_missing_title"`
	PagesMissingMeta  int        `json:"pages_missing_meta" db:"pages_missing_meta"`
	PagesMissingH1    int        `json:"pages_missing_h1" db:"pages_missing_h1"`
	Pages2xx          int        `json:"pages_2xx" db:"pages_2xx"`
	Pages4xx          int        `json:"pages_4xx" db:"pages_4xx"`
	Pages5xx          int        `json:"pages_5xx" db:"pages_5xx"`
	LastScanAt        *time.Time `json:"last_scan_at" db:"last_scan_at"`

	// Uptime monitoring
	UptimeEnabled       bool          `json:"uptime_enabled" db:"uptime_enabled"`
	UptimeIntervalMin   int           `json:"uptime_check_interval_minutes" db:"uptime_check_interval_minutes"`
	LastUptimeStatus    *UptimeStatus `json:"last_uptime_status" db:"last_uptime_status"`
	LastUptimeCheckedAt *time.Time    `json:"last_uptime_checked_at" db:"last_uptime_checked_at"`
	LastResponseTimeMs  *int          `json:"last_response_time_ms" db:"last_response_time_ms"`
	Uptime24hPercent    *float64      `json:"uptime_24h_percent" db:"uptime_24h_percent"`
	Uptime7dPercent     *float64      `json:"uptime_7d_percent" db:"uptime_7d_percent"`

	// Registration metadata (RDAP)
	ExpiryDate    *time.Time `json:"expiry_date" db:"expiry_date"`
	RegistrarName *string    `json:"registrar_name" db:"registrar_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DomainStatus is written by the redirect resolver; the scanner only reads
// final_url to seed a crawl.
type DomainStatus struct {
	DomainID        uuid.UUID       `json:"domain_id" db:"domain_id"`
	FinalURL        *string         `json:"final_url" db:"final_url"`
	FinalStatusCode *int            `json:"final_status_code" db:"final_status_code"`
	RedirectChain   json.RawMessage `json:"redirect_chain" db:"redirect_chain"`
	LastCheckedAt   *time.Time      `json:"last_checked_at" db:"last_checked_at"`
}

// UptimeCheck is one immutable sample in a domain's uptime series
type UptimeCheck struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	DomainID       uuid.UUID    `json:"domain_id" db:"domain_id"`
	CheckedAt      time.Time    `json:"checked_at" db:"checked_at"`
	Status         UptimeStatus `json:"status" db:"status"`
	HTTPStatus     *int         `json:"http_status" db:"http_status"`
	ResponseTimeMs *int         `json:"response_time_ms" db:"response_time_ms"`
	ErrorMessage   *string      `json:"error_message" db:"error_message"`
}
