package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageSignals is the fixed signal set extracted from one HTML document.
// Every field except Links is absent (nil) when the document does not carry
// the element, or carries it empty.
type PageSignals struct {
	Title           *string
	MetaDescription *string
	Canonical       *string
	Robots          *string
	H1              *string
	Links           []string
}

// Extract parses an HTML document and pulls the on-page SEO signals plus the
// normalized same-origin outbound links, in the order they appear in the
// markup. A document that cannot be parsed yields all-absent signals, never
// an error.
func Extract(html string, pageURL *url.URL) PageSignals {
	var signals PageSignals

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return signals
	}

	signals.Title = selectionText(doc.Find("title").First())
	signals.MetaDescription = selectionAttr(doc.Find(`meta[name="description"]`).First(), "content")
	signals.Canonical = selectionAttr(doc.Find(`link[rel="canonical"]`).First(), "href")
	signals.Robots = selectionAttr(doc.Find(`meta[name="robots"]`).First(), "content")
	signals.H1 = selectionText(doc.Find("h1").First())

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		normalized, ok := Normalize(href, pageURL)
		if !ok {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		signals.Links = append(signals.Links, normalized)
	})

	return signals
}

// An element that is present but empty counts as absent
func selectionText(s *goquery.Selection) *string {
	if s.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(s.Text())
	if text == "" {
		return nil
	}
	return &text
}

func selectionAttr(s *goquery.Selection, name string) *string {
	val, ok := s.Attr(name)
	if !ok {
		return nil
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}
