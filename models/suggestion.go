package models

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Impact buckets group suggestions by what they move for the site owner
type Impact string

const (
	ImpactVisibility   Impact = "visibility"
	ImpactClickThrough Impact = "click_through"
	ImpactTechnical    Impact = "technical"
	ImpactEssentials   Impact = "essentials"
)

// Effort estimates how much work a fix is
type Effort string

const (
	EffortQuickWin   Effort = "quick_win"
	EffortModerate   Effort = "moderate"
	EffortDeepChange Effort = "deep_change"
)

type SuggestionScope string

const (
	ScopePage   SuggestionScope = "page"
	ScopeDomain SuggestionScope = "domain"
)

// Suggestion is one actionable SEO finding tied to a page. The whole set for
// a domain is replaced on every scan; none survives a scan in which its
// triggering condition no longer holds.
type Suggestion struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	DomainID    uuid.UUID       `json:"domain_id" db:"domain_id"`
	PageID      uuid.UUID       `json:"page_id" db:"page_id"`
	Scope       SuggestionScope `json:"scope" db:"scope"`
	Type        string          `json:"suggestion_type" db:"suggestion_type"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Severity    Severity        `json:"severity" db:"severity"`
	Impact      Impact          `json:"impact" db:"impact"`
	Effort      Effort          `json:"effort" db:"effort"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
