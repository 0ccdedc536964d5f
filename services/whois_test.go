package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"seolens/models"
)

func TestRootDomainName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"https://example.com", "example.com"},
		{"https://www.example.com/some/path", "example.com"},
		{"http://Example.COM/", "example.com"},
		{"blog.example.co.uk", "blog.example.co.uk"},
	}

	for _, tc := range cases {
		if got := rootDomainName(tc.in); got != tc.want {
			t.Fatalf("rootDomainName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractExpiry(t *testing.T) {
	events := []rdapEvent{
		{EventAction: "registration", EventDate: "2020-01-15T10:30:00Z"},
		{EventAction: "expiration", EventDate: "2027-01-15T10:30:00Z"},
	}

	expiry := extractExpiry(events)
	if expiry == nil {
		t.Fatalf("expected expiry date")
	}
	want := time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)
	if !expiry.Equal(want) {
		t.Fatalf("expected %v, got %v", want, expiry)
	}

	if extractExpiry(nil) != nil {
		t.Fatalf("expected nil for no events")
	}
	if extractExpiry([]rdapEvent{{EventAction: "expiration", EventDate: "not-a-date"}}) != nil {
		t.Fatalf("expected nil for unparseable date")
	}
}

func TestExtractRegistrar_VCard(t *testing.T) {
	vcard := []json.RawMessage{
		json.RawMessage(`"vcard"`),
		json.RawMessage(`[["version", {}, "text", "4.0"], ["fn", {}, "text", "Example Registrar Inc."]]`),
	}
	entities := []rdapEntity{
		{Roles: []string{"registrant"}, Handle: "IGNORED"},
		{Roles: []string{"registrar"}, VCardArray: vcard, Handle: "HANDLE-1"},
	}

	registrar := extractRegistrar(entities)
	if registrar == nil || *registrar != "Example Registrar Inc." {
		t.Fatalf("expected vcard name, got %v", registrar)
	}
}

func TestExtractRegistrar_Fallbacks(t *testing.T) {
	// No vcard: falls back to handle
	entities := []rdapEntity{{Roles: []string{"registrar"}, Handle: "HANDLE-42"}}
	registrar := extractRegistrar(entities)
	if registrar == nil || *registrar != "HANDLE-42" {
		t.Fatalf("expected handle fallback, got %v", registrar)
	}

	// No vcard, no handle: falls back to IANA id
	entities = []rdapEntity{{
		Roles:     []string{"registrar"},
		PublicIDs: []rdapPublicID{{Type: "IANA Registrar ID", Identifier: "1910"}},
	}}
	registrar = extractRegistrar(entities)
	if registrar == nil || *registrar != "Registrar #1910" {
		t.Fatalf("expected IANA id fallback, got %v", registrar)
	}

	// No registrar entity at all
	entities = []rdapEntity{{Roles: []string{"registrant"}}}
	if extractRegistrar(entities) != nil {
		t.Fatalf("expected nil without registrar entity")
	}
}

type fakeWhoisStore struct {
	domain    *models.Domain
	expiry    *time.Time
	registrar *string
	updated   bool
}

func (f *fakeWhoisStore) GetDomain(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	if f.domain != nil && f.domain.ID == id {
		return f.domain, nil
	}
	return nil, nil
}

func (f *fakeWhoisStore) UpdateDomainWhois(ctx context.Context, domainID uuid.UUID, expiryDate *time.Time, registrarName *string) error {
	f.expiry = expiryDate
	f.registrar = registrarName
	f.updated = true
	return nil
}

// cannedTransport answers every request with a fixed RDAP body
type cannedTransport struct {
	status int
	body   string
}

func (t *cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestWhoisFetch_OK(t *testing.T) {
	body := `{
		"events": [{"eventAction": "expiration", "eventDate": "2026-11-03T00:00:00Z"}],
		"entities": [{
			"roles": ["registrar"],
			"vcardArray": ["vcard", [["fn", {}, "text", "Acme Domains LLC"]]]
		}]
	}`
	store := &fakeWhoisStore{domain: &models.Domain{ID: uuid.New(), DomainName: "https://www.example.com/"}}
	client := &http.Client{Transport: &cannedTransport{status: 200, body: body}}
	svc := NewWhoisService(store, client, "test-agent")

	result, err := svc.Fetch(context.Background(), store.domain.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Status != "ok" {
		t.Fatalf("expected status ok, got %s", result.Status)
	}
	if result.DomainName != "example.com" {
		t.Fatalf("expected root domain example.com, got %s", result.DomainName)
	}
	if result.RegistrarName == nil || *result.RegistrarName != "Acme Domains LLC" {
		t.Fatalf("unexpected registrar %v", result.RegistrarName)
	}
	if !store.updated {
		t.Fatalf("expected store update")
	}
	if store.registrar == nil || *store.registrar != "Acme Domains LLC" {
		t.Fatalf("store got wrong registrar %v", store.registrar)
	}
}

func TestWhoisFetch_Partial(t *testing.T) {
	body := `{"events": [{"eventAction": "expiration", "eventDate": "2026-11-03T00:00:00Z"}]}`
	store := &fakeWhoisStore{domain: &models.Domain{ID: uuid.New(), DomainName: "example.com"}}
	client := &http.Client{Transport: &cannedTransport{status: 200, body: body}}
	svc := NewWhoisService(store, client, "test-agent")

	result, err := svc.Fetch(context.Background(), store.domain.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Status != "partial" {
		t.Fatalf("expected status partial, got %s", result.Status)
	}
	if !store.updated {
		t.Fatalf("expected store update for partial result")
	}
}

func TestWhoisFetch_NotFound(t *testing.T) {
	store := &fakeWhoisStore{domain: &models.Domain{ID: uuid.New(), DomainName: "example.com"}}
	client := &http.Client{Transport: &cannedTransport{status: 200, body: `{}`}}
	svc := NewWhoisService(store, client, "test-agent")

	result, err := svc.Fetch(context.Background(), store.domain.ID)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if result.Status != "not_found" {
		t.Fatalf("expected status not_found, got %s", result.Status)
	}
	if store.updated {
		t.Fatalf("expected no store update when nothing was found")
	}
}

func TestWhoisFetch_UnknownDomain(t *testing.T) {
	store := &fakeWhoisStore{}
	client := &http.Client{Transport: &cannedTransport{status: 200, body: `{}`}}
	svc := NewWhoisService(store, client, "test-agent")

	if _, err := svc.Fetch(context.Background(), uuid.New()); err != ErrDomainNotFound {
		t.Fatalf("expected ErrDomainNotFound, got %v", err)
	}
}

func TestWhoisFetch_RegistryError(t *testing.T) {
	store := &fakeWhoisStore{domain: &models.Domain{ID: uuid.New(), DomainName: "example.com"}}
	client := &http.Client{Transport: &cannedTransport{status: 404, body: ``}}
	svc := NewWhoisService(store, client, "test-agent")

	if _, err := svc.Fetch(context.Background(), store.domain.ID); err == nil {
		t.Fatalf("expected error for RDAP 404")
	}
}
