// Package analyzer turns extracted page signals into SEO suggestions and
// rolls them up into a domain health score.
package analyzer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"seolens/crawler"
	"seolens/models"
)

// Suggestion types produced by the rule engine
const (
	TypeMissingOrShortTitle      = "missing_or_short_title"
	TypeTitleTooLong             = "title_too_long"
	TypeMissingMetaDescription   = "missing_meta_description"
	TypeShortMetaDescription     = "short_meta_description"
	TypeLongMetaDescription      = "long_meta_description"
	TypeCanonicalPointsElsewhere = "canonical_points_elsewhere"
	TypeInvalidCanonical         = "invalid_canonical"
	TypeMissingH1                = "missing_h1"
	TypeNoindexSet               = "noindex_set"
	TypePageErrorStatus          = "page_error_status"
)

const (
	minTitleLen = 10
	maxTitleLen = 60
	minMetaLen  = 50
	maxMetaLen  = 160
)

// Metadata carries the static impact/effort classification for a suggestion
// type.
type Metadata struct {
	Impact models.Impact
	Effort models.Effort
}

// suggestionMetadata is the single lookup for impact/effort per type; keeping
// it in one table makes the rule inventory auditable.
var suggestionMetadata = map[string]Metadata{
	TypeMissingOrShortTitle:      {models.ImpactVisibility, models.EffortQuickWin},
	TypeTitleTooLong:             {models.ImpactVisibility, models.EffortQuickWin},
	TypeMissingMetaDescription:   {models.ImpactClickThrough, models.EffortQuickWin},
	TypeShortMetaDescription:     {models.ImpactClickThrough, models.EffortQuickWin},
	TypeLongMetaDescription:      {models.ImpactClickThrough, models.EffortQuickWin},
	TypeCanonicalPointsElsewhere: {models.ImpactTechnical, models.EffortModerate},
	TypeInvalidCanonical:         {models.ImpactTechnical, models.EffortModerate},
	TypeMissingH1:                {models.ImpactEssentials, models.EffortQuickWin},
	TypeNoindexSet:               {models.ImpactVisibility, models.EffortModerate},
	TypePageErrorStatus:          {models.ImpactTechnical, models.EffortDeepChange},
}

// MetadataFor returns the impact/effort pair for a suggestion type
func MetadataFor(suggestionType string) Metadata {
	if m, ok := suggestionMetadata[suggestionType]; ok {
		return m
	}
	return Metadata{models.ImpactTechnical, models.EffortModerate}
}

// Finding is one rule hit for a page, before it is bound to database identities
type Finding struct {
	Type        string
	Title       string
	Description string
	Severity    models.Severity
	Impact      models.Impact
	Effort      models.Effort
}

func newFinding(suggestionType, title, description string, severity models.Severity) Finding {
	meta := MetadataFor(suggestionType)
	return Finding{
		Type:        suggestionType,
		Title:       title,
		Description: description,
		Severity:    severity,
		Impact:      meta.Impact,
		Effort:      meta.Effort,
	}
}

// Evaluate maps one page's signals to its suggestions. It is stateless and
// deterministic: same page in, same findings out, independent of any other
// page. The title rules are mutually exclusive, as are the three meta
// description rules; everything else is additive.
func Evaluate(page *crawler.PageResult) []Finding {
	var findings []Finding
	sig := page.Signals

	if sig.Title == nil || utf8.RuneCountInString(*sig.Title) < minTitleLen {
		desc := "This page is missing a title tag. Add a descriptive title to improve SEO."
		if sig.Title != nil {
			desc = fmt.Sprintf("The title %q is very short (%d chars). Aim for 30-60 characters.",
				*sig.Title, utf8.RuneCountInString(*sig.Title))
		}
		findings = append(findings, newFinding(TypeMissingOrShortTitle,
			"Add a better page title", desc, models.SeverityHigh))
	} else if utf8.RuneCountInString(*sig.Title) > maxTitleLen {
		findings = append(findings, newFinding(TypeTitleTooLong,
			"Title tag is too long",
			fmt.Sprintf("The title is %d characters. Search engines typically display 50-60 characters.",
				utf8.RuneCountInString(*sig.Title)),
			models.SeverityLow))
	}

	if sig.MetaDescription == nil {
		findings = append(findings, newFinding(TypeMissingMetaDescription,
			"Add a meta description",
			"This page has no meta description. Add one (150-160 characters) to improve click-through rate.",
			models.SeverityMedium))
	} else if n := utf8.RuneCountInString(*sig.MetaDescription); n < minMetaLen {
		findings = append(findings, newFinding(TypeShortMetaDescription,
			"Meta description is too short",
			fmt.Sprintf("Your meta description is only %d characters. Aim for 150-160 characters.", n),
			models.SeverityLow))
	} else if n > maxMetaLen {
		findings = append(findings, newFinding(TypeLongMetaDescription,
			"Meta description is too long",
			fmt.Sprintf("Your meta description is %d characters. It may be truncated in search results.", n),
			models.SeverityLow))
	}

	if sig.Canonical != nil && *sig.Canonical != "" {
		if f, hit := evaluateCanonical(*sig.Canonical, page.URL); hit {
			findings = append(findings, f)
		}
	}

	if sig.H1 == nil {
		findings = append(findings, newFinding(TypeMissingH1,
			"Add an H1 heading",
			"This page has no H1 heading. Add one to improve SEO structure.",
			models.SeverityMedium))
	}

	if sig.Robots != nil && strings.Contains(strings.ToLower(*sig.Robots), "noindex") {
		findings = append(findings, newFinding(TypeNoindexSet,
			"Page is set to noindex",
			"This page will not appear in search results. Remove noindex if you want it indexed.",
			models.SeverityHigh))
	}

	if page.HTTPStatus >= 400 {
		findings = append(findings, newFinding(TypePageErrorStatus,
			fmt.Sprintf("Page returns %d error", page.HTTPStatus),
			fmt.Sprintf("This page responded with HTTP %d. Fix the error to ensure accessibility.", page.HTTPStatus),
			models.SeverityHigh))
	}

	return findings
}

func evaluateCanonical(canonical, pageURL string) (Finding, bool) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return Finding{}, false
	}

	resolved, err := base.Parse(canonical)
	if err != nil || resolved.Host == "" {
		return newFinding(TypeInvalidCanonical,
			"Invalid canonical URL",
			fmt.Sprintf("The canonical URL %q is malformed.", canonical),
			models.SeverityMedium), true
	}

	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return newFinding(TypeCanonicalPointsElsewhere,
			"Canonical URL points to different domain",
			fmt.Sprintf("The canonical URL points to %s. Search engines may ignore this page.", resolved.Host),
			models.SeverityHigh), true
	}

	return Finding{}, false
}
