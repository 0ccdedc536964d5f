package crawler

import (
	"net/url"
	"path"
	"strings"
)

// Extensions that never resolve to a crawlable document
var skippedExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {}, ".webp": {},
	".pdf": {}, ".zip": {}, ".css": {}, ".js": {}, ".ico": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
}

// Origin returns scheme://host for a URL; two pages belong to the same site
// exactly when their origins match.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// Normalize resolves rawURL against base and returns its canonical form, or
// ok=false when the link should not be crawled: different origin, fragment-only,
// javascript:/mailto:/tel:, or a non-document file extension.
//
// Canonical form strips the fragment and a single trailing slash, except that
// the origin root keeps its slash. Two URLs that normalize to the same string
// are the same page; query strings are significant.
func Normalize(rawURL string, base *url.URL) (string, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	// Fragment-only links point back at the same page
	if ref.Scheme == "" && ref.Host == "" && ref.Path == "" && ref.RawQuery == "" {
		return "", false
	}

	u := base.ResolveReference(ref)

	if u.Scheme != base.Scheme || u.Host != base.Host {
		return "", false
	}

	if _, skip := skippedExtensions[strings.ToLower(path.Ext(u.Path))]; skip {
		return "", false
	}

	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	normalized := u.String()
	root := Origin(u) + "/"
	if strings.HasSuffix(normalized, "/") && normalized != root {
		normalized = strings.TrimSuffix(normalized, "/")
	}

	return normalized, true
}
