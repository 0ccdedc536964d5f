package crawler

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return string(data)
}

func TestExtract_FullPage(t *testing.T) {
	html := loadFixture(t, "page_full.html")
	pageURL := mustParse(t, "https://example.com/")

	signals := Extract(html, pageURL)

	if signals.Title == nil || *signals.Title != "Acme Widgets - Industrial Widgets and Fasteners" {
		t.Fatalf("unexpected title %v", strOrNil(signals.Title))
	}
	if signals.MetaDescription == nil {
		t.Fatalf("expected meta description")
	}
	if signals.Canonical == nil || *signals.Canonical != "https://example.com/products" {
		t.Fatalf("unexpected canonical %v", strOrNil(signals.Canonical))
	}
	if signals.Robots == nil || *signals.Robots != "index, follow" {
		t.Fatalf("unexpected robots %v", strOrNil(signals.Robots))
	}
	if signals.H1 == nil || *signals.H1 != "Industrial Widgets Built to Last" {
		t.Fatalf("unexpected h1 %v", strOrNil(signals.H1))
	}

	// Same-origin document links only, deduped, in markup order.
	// /products and /products/ normalize to the same URL; /about#team drops
	// its fragment; the external, mailto and .pdf links are skipped.
	wantLinks := []string{
		"https://example.com/",
		"https://example.com/products",
		"https://example.com/about",
		"https://example.com/contact",
		"https://example.com/products?category=fasteners",
	}
	if !reflect.DeepEqual(signals.Links, wantLinks) {
		t.Fatalf("unexpected links\n got: %v\nwant: %v", signals.Links, wantLinks)
	}
}

func TestExtract_BarePage(t *testing.T) {
	html := loadFixture(t, "page_bare.html")
	pageURL := mustParse(t, "https://example.com/")

	signals := Extract(html, pageURL)

	if signals.Title != nil {
		t.Fatalf("expected absent title, got %q", *signals.Title)
	}
	if signals.MetaDescription != nil {
		t.Fatalf("expected absent meta description, got %q", *signals.MetaDescription)
	}
	if signals.Canonical != nil {
		t.Fatalf("expected absent canonical, got %q", *signals.Canonical)
	}
	if signals.Robots != nil {
		t.Fatalf("expected absent robots, got %q", *signals.Robots)
	}
	if signals.H1 != nil {
		t.Fatalf("expected absent h1, got %q", *signals.H1)
	}
	if len(signals.Links) != 0 {
		t.Fatalf("expected no links, got %v", signals.Links)
	}
}

func TestExtract_EmptyElementsAreAbsent(t *testing.T) {
	html := loadFixture(t, "page_empty_signals.html")
	pageURL := mustParse(t, "https://example.com/")

	signals := Extract(html, pageURL)

	if signals.Title != nil {
		t.Fatalf("expected empty title to be absent, got %q", *signals.Title)
	}
	if signals.MetaDescription != nil {
		t.Fatalf("expected empty meta description to be absent, got %q", *signals.MetaDescription)
	}
	if signals.Robots != nil {
		t.Fatalf("expected whitespace robots to be absent, got %q", *signals.Robots)
	}
	if signals.Canonical != nil {
		t.Fatalf("expected empty canonical to be absent, got %q", *signals.Canonical)
	}
	if signals.H1 != nil {
		t.Fatalf("expected whitespace h1 to be absent, got %q", *signals.H1)
	}
}

func TestExtract_MalformedPage(t *testing.T) {
	html := loadFixture(t, "page_malformed.html")
	pageURL := mustParse(t, "https://example.com/")

	signals := Extract(html, pageURL)

	if signals.Title == nil || *signals.Title != "Broken page" {
		t.Fatalf("unexpected title %v", strOrNil(signals.Title))
	}
	if signals.MetaDescription == nil || *signals.MetaDescription != "Still readable despite unclosed tags." {
		t.Fatalf("unexpected meta description %v", strOrNil(signals.MetaDescription))
	}
	if signals.H1 == nil || *signals.H1 != "Half a heading" {
		t.Fatalf("unexpected h1 %v", strOrNil(signals.H1))
	}
	if len(signals.Links) != 1 || signals.Links[0] != "https://example.com/next" {
		t.Fatalf("unexpected links %v", signals.Links)
	}
}

func strOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
