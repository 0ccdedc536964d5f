package analyzer

import (
	"math"
	"unicode/utf8"

	"seolens/crawler"
)

// HealthSummary counts the failure categories across all pages of one scan
type HealthSummary struct {
	TotalPagesScanned int `json:"totalPagesScanned"`
	PagesMissingTitle int `json:"pagesMissingTitle"`
	PagesMissingMeta  int `json:"pagesMissingMeta"`
	PagesMissingH1    int `json:"pagesMissingH1"`
	Pages2xx          int `json:"pages2xx"`
	Pages4xx          int `json:"pages4xx"`
	Pages5xx          int `json:"pages5xx"`
}

// Aggregate reduces the visited pages of a scan into per-category counts.
// A title below the rule engine's minimum length counts as missing, matching
// the missing_or_short_title rule.
func Aggregate(pages []*crawler.PageResult) HealthSummary {
	summary := HealthSummary{TotalPagesScanned: len(pages)}

	for _, page := range pages {
		sig := page.Signals

		if sig.Title == nil || utf8.RuneCountInString(*sig.Title) < minTitleLen {
			summary.PagesMissingTitle++
		}
		if sig.MetaDescription == nil {
			summary.PagesMissingMeta++
		}
		if sig.H1 == nil {
			summary.PagesMissingH1++
		}

		switch {
		case page.HTTPStatus >= 200 && page.HTTPStatus < 300:
			summary.Pages2xx++
		case page.HTTPStatus >= 400 && page.HTTPStatus < 500:
			summary.Pages4xx++
		case page.HTTPStatus >= 500:
			summary.Pages5xx++
		}
	}

	return summary
}

// Score computes the 0-100 health score: a linear penalty per category, each
// capped so no single failure mode can drive the score below 100 minus its
// cap. Zero pages scanned scores 100.
func (s HealthSummary) Score() int {
	if s.TotalPagesScanned == 0 {
		return 100
	}

	total := float64(s.TotalPagesScanned)
	score := 100.0
	score -= math.Min(30, 30*float64(s.PagesMissingTitle)/total)
	score -= math.Min(20, 20*float64(s.PagesMissingMeta)/total)
	score -= math.Min(20, 20*float64(s.PagesMissingH1)/total)
	score -= math.Min(20, 20*float64(s.Pages4xx)/total)
	score -= math.Min(10, 10*float64(s.Pages5xx)/total)

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
