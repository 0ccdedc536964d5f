package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScanRun records one crawl of a domain from start to finish
type ScanRun struct {
	ID                 int64      `json:"id" db:"id"`
	DomainID           uuid.UUID  `json:"domain_id" db:"domain_id"`
	StartedAt          time.Time  `json:"started_at" db:"started_at"`
	FinishedAt         *time.Time `json:"finished_at" db:"finished_at"`
	Status             RunStatus  `json:"status" db:"status"`
	PagesScanned       int        `json:"pages_scanned" db:"pages_scanned"`
	SuggestionsCreated int        `json:"suggestions_created" db:"suggestions_created"`
	HealthScore        *int       `json:"health_score" db:"health_score"`
	ErrorsCount        int        `json:"errors_count" db:"errors_count"`
	ErrorMessage       *string    `json:"error_message" db:"error_message"`
}
