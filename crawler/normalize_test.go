package crawler

import (
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", raw, err)
	}
	return u
}

func TestNormalize_SameOrigin(t *testing.T) {
	base := mustParse(t, "https://example.com/blog/")

	cases := []struct {
		raw  string
		want string
	}{
		{"/about", "https://example.com/about"},
		{"/about/", "https://example.com/about"},
		{"post-1", "https://example.com/blog/post-1"},
		{"https://example.com/contact", "https://example.com/contact"},
		{"/pricing#plans", "https://example.com/pricing"},
		{"/search?q=go", "https://example.com/search?q=go"},
		{"/search?q=go&page=2", "https://example.com/search?q=go&page=2"},
	}

	for _, tc := range cases {
		got, ok := Normalize(tc.raw, base)
		if !ok {
			t.Fatalf("Normalize(%q) rejected, want %q", tc.raw, tc.want)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalize_RootKeepsSlash(t *testing.T) {
	base := mustParse(t, "https://example.com/blog")

	got, ok := Normalize("https://example.com/", base)
	if !ok || got != "https://example.com/" {
		t.Fatalf("root slash: got %q ok=%v, want https://example.com/", got, ok)
	}

	got, ok = Normalize("https://example.com", base)
	if !ok || got != "https://example.com/" {
		t.Fatalf("bare origin: got %q ok=%v, want https://example.com/", got, ok)
	}
}

func TestNormalize_Rejections(t *testing.T) {
	base := mustParse(t, "https://example.com/")

	rejected := []string{
		"",
		"   ",
		"#top",
		"javascript:void(0)",
		"mailto:team@example.com",
		"tel:+15551234567",
		"https://other.com/page",
		"http://example.com/page", // scheme differs, different origin
		"https://sub.example.com/page",
		"/assets/logo.png",
		"/files/report.PDF",
		"/styles/site.css",
	}

	for _, raw := range rejected {
		if got, ok := Normalize(raw, base); ok {
			t.Fatalf("Normalize(%q) accepted as %q, want rejection", raw, got)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	base := mustParse(t, "https://example.com/")

	inputs := []string{"/about/", "/", "/search?q=go", "/a/b/c#frag"}
	for _, raw := range inputs {
		first, ok := Normalize(raw, base)
		if !ok {
			t.Fatalf("Normalize(%q) rejected", raw)
		}
		second, ok := Normalize(first, base)
		if !ok {
			t.Fatalf("Normalize(%q) rejected its own output %q", raw, first)
		}
		if second != first {
			t.Fatalf("Normalize not idempotent: %q -> %q -> %q", raw, first, second)
		}
	}
}
