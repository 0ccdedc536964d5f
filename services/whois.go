package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"seolens/models"
)

const rdapBootstrapURL = "https://rdap-bootstrap.arin.net/bootstrap/domain/"

// WhoisStore is the storage contract for registration metadata lookups
type WhoisStore interface {
	GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error)
	UpdateDomainWhois(ctx context.Context, domainID uuid.UUID, expiryDate *time.Time, registrarName *string) error
}

// WhoisService fetches registrar and expiration data over RDAP
type WhoisService struct {
	store     WhoisStore
	client    *http.Client
	userAgent string
}

func NewWhoisService(store WhoisStore, client *http.Client, userAgent string) *WhoisService {
	return &WhoisService{
		store:     store,
		client:    client,
		userAgent: userAgent,
	}
}

// WhoisResult reports what the lookup found. Status is ok when both fields
// resolved, partial when only one did, not_found when neither.
type WhoisResult struct {
	DomainName    string     `json:"domain_name"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	RegistrarName *string    `json:"registrar_name"`
	Status        string     `json:"status"`
}

type rdapResponse struct {
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

type rdapEvent struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
}

type rdapEntity struct {
	Roles      []string          `json:"roles"`
	VCardArray []json.RawMessage `json:"vcardArray"`
	Handle     string            `json:"handle"`
	PublicIDs  []rdapPublicID    `json:"publicIds"`
}

type rdapPublicID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Fetch looks up a domain over RDAP and stores whatever it found; fields the
// registry did not return keep their previous values.
func (s *WhoisService) Fetch(ctx context.Context, domainID uuid.UUID) (*WhoisResult, error) {
	domain, err := s.store.GetDomain(ctx, domainID)
	if err != nil {
		return nil, fmt.Errorf("load domain: %w", err)
	}
	if domain == nil {
		return nil, ErrDomainNotFound
	}

	name := rootDomainName(domain.DomainName)

	data, err := s.query(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("rdap lookup for %s: %w", name, err)
	}

	expiry := extractExpiry(data.Events)
	registrar := extractRegistrar(data.Entities)

	result := &WhoisResult{
		DomainName:    name,
		ExpiryDate:    expiry,
		RegistrarName: registrar,
	}
	switch {
	case expiry != nil && registrar != nil:
		result.Status = "ok"
	case expiry != nil || registrar != nil:
		result.Status = "partial"
	default:
		result.Status = "not_found"
	}

	if expiry != nil || registrar != nil {
		if err := s.store.UpdateDomainWhois(ctx, domainID, expiry, registrar); err != nil {
			return nil, fmt.Errorf("save whois data: %w", err)
		}
	}

	log.Printf("Whois: %s registrar=%v expiry=%v (%s)", name, deref(registrar), expiry, result.Status)
	return result, nil
}

func (s *WhoisService) query(ctx context.Context, name string) (*rdapResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rdapBootstrapURL+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rdap+json, application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rdap request failed with status %d", resp.StatusCode)
	}

	var data rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode rdap response: %w", err)
	}
	return &data, nil
}

// rootDomainName strips scheme, www prefix and any path from a stored domain
// name.
func rootDomainName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.TrimPrefix(name, "www.")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	return name
}

func extractExpiry(events []rdapEvent) *time.Time {
	for _, ev := range events {
		if ev.EventAction != "expiration" && ev.EventAction != "registration expiration" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, ev.EventDate); err == nil {
			day := t.UTC().Truncate(24 * time.Hour)
			return &day
		}
	}
	return nil
}

// extractRegistrar walks the registrar entity: vcard full name first, then
// the entity handle, then the IANA registrar id.
func extractRegistrar(entities []rdapEntity) *string {
	for _, entity := range entities {
		if !hasRole(entity.Roles, "registrar") {
			continue
		}

		if name := vcardFullName(entity.VCardArray); name != "" {
			return &name
		}
		if entity.Handle != "" {
			h := entity.Handle
			return &h
		}
		for _, pub := range entity.PublicIDs {
			if pub.Type == "IANA Registrar ID" {
				name := "Registrar #" + pub.Identifier
				return &name
			}
		}
		return nil
	}
	return nil
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

// vcardFullName pulls the "fn" field out of a jCard array:
// ["vcard", [["fn", {}, "text", "Registrar Inc."], ...]]
func vcardFullName(vcard []json.RawMessage) string {
	if len(vcard) < 2 {
		return ""
	}

	var fields [][]json.RawMessage
	if err := json.Unmarshal(vcard[1], &fields); err != nil {
		return ""
	}

	for _, field := range fields {
		if len(field) < 4 {
			continue
		}
		var key string
		if err := json.Unmarshal(field[0], &key); err != nil || key != "fn" {
			continue
		}
		var value string
		if err := json.Unmarshal(field[3], &value); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
