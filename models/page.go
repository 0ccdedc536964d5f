package models

import (
	"time"

	"github.com/google/uuid"
)

// SitePage is one crawled page. (domain_id, url) is unique; a rescan updates
// the row in place.
type SitePage struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	DomainID        uuid.UUID `json:"domain_id" db:"domain_id"`
	URL             string    `json:"url" db:"url"`
	HTTPStatus      int       `json:"http_status" db:"http_status"`
	Title           *string   `json:"title" db:"title"`
	MetaDescription *string   `json:"meta_description" db:"meta_description"`
	CanonicalURL    *string   `json:"canonical_url" db:"canonical_url"`
	RobotsDirective *string   `json:"robots_directive" db:"robots_directive"`
	H1              *string   `json:"h1" db:"h1"`
	LastScannedAt   time.Time `json:"last_scanned_at" db:"last_scanned_at"`
}
