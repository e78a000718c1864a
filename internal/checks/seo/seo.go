package seo

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	ruleNotHTTPS     = rule("SEO_NOT_HTTPS", report.SeverityCritical, report.EffortMedium, 10)
	ruleTitleMissing = rule("SEO_TITLE_MISSING", report.SeverityCritical, report.EffortQuickWin, 10)
	ruleTitleShort   = rule("SEO_TITLE_SHORT", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleTitleLong    = rule("SEO_TITLE_LONG", report.SeverityMinor, report.EffortQuickWin, 4)
	ruleMetaMissing  = rule("SEO_META_DESCRIPTION_MISSING", report.SeverityMajor, report.EffortQuickWin, 7)
	ruleOpenGraph    = rule("SEO_OPEN_GRAPH_INCOMPLETE", report.SeverityMinor, report.EffortQuickWin, 4)
	ruleTwitterCard  = rule("SEO_TWITTER_CARD_MISSING", report.SeveritySuggestion, report.EffortQuickWin, 2)
	ruleCanonical    = rule("SEO_CANONICAL_MISSING", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleStructured   = rule("SEO_STRUCTURED_DATA_MISSING", report.SeveritySuggestion, report.EffortMedium, 3)
	ruleNoindex      = rule("SEO_NOINDEX", report.SeverityMajor, report.EffortQuickWin, 9)
	ruleImgAlt       = rule("SEO_IMG_MISSING_ALT", report.SeverityMinor, report.EffortQuickWin, 4)
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategorySEO, Severity: sev, Effort: effort, Impact: impact}
}

const (
	titleMin = 30
	titleMax = 60
)

var openGraphTags = []string{"og:title", "og:description", "og:image", "og:url"}

var (
	reTwitterCard = regexp.MustCompile(`(?i)<meta\b[^>]*name\s*=\s*["']twitter:card["'][^>]*>`)
	reCanonical   = regexp.MustCompile(`(?i)<link\b[^>]*rel\s*=\s*["']canonical["'][^>]*>`)
	reJSONLD      = regexp.MustCompile(`(?i)<script\b[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>`)
	reMicrodata   = regexp.MustCompile(`(?i)\bitemscope\b`)
	reRobots      = regexp.MustCompile(`(?i)<meta\b[^>]*name\s*=\s*["']robots["'][^>]*content\s*=\s*["']([^"']*)["'][^>]*>`)

	openGraphPatterns = compileOpenGraph()
)

func compileOpenGraph() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(openGraphTags))
	for _, tag := range openGraphTags {
		out[tag] = regexp.MustCompile(`(?i)<meta\b[^>]*property\s*=\s*["']` + regexp.QuoteMeta(tag) + `["'][^>]*>`)
	}
	return out
}

func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	var page, html string
	if ctx != nil {
		page, html = ctx.URL, ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	isHTTPS := strings.HasPrefix(page, "https://")
	metadata["isHttps"] = isHTTPS
	if !isHTTPS {
		issues = append(issues, ruleNotHTTPS.Issue())
	}

	title := ""
	if el, ok := markup.First(html, "title"); ok {
		title = strings.TrimSpace(markup.RemoveTags(el.Inner))
	}
	titleLen := utf8.RuneCountInString(title)
	if title != "" {
		metadata["title"] = title
	} else {
		metadata["title"] = nil
	}
	metadata["titleLength"] = titleLen
	switch {
	case title == "":
		issue := ruleTitleMissing.Issue()
		issue.Selector = "head"
		issue.FixSnippet = "<title>Descriptive page title - Site name</title>"
		issues = append(issues, issue)
	case titleLen < titleMin:
		issue := ruleTitleShort.Issue(titleLen)
		issue.Selector = "title"
		issues = append(issues, issue)
	case titleLen > titleMax:
		issue := ruleTitleLong.Issue(titleLen)
		issue.Selector = "title"
		issues = append(issues, issue)
	}

	desc, hasDesc := markup.MetaDescription(html)
	if hasDesc {
		metadata["metaDescription"] = desc
	} else {
		metadata["metaDescription"] = nil
		issue := ruleMetaMissing.Issue()
		issue.FixSnippet = `<meta name="description" content="...">`
		issues = append(issues, issue)
	}

	missingOG := []string{}
	for _, tag := range openGraphTags {
		if !openGraphPatterns[tag].MatchString(html) {
			missingOG = append(missingOG, tag)
		}
	}
	metadata["missingOpenGraph"] = missingOG
	if len(missingOG) > 0 {
		lines := make([]string, 0, len(missingOG))
		for _, tag := range missingOG {
			lines = append(lines, `<meta property="`+tag+`" content="...">`)
		}
		issue := ruleOpenGraph.Issue(strings.Join(missingOG, ", "))
		issue.FixSnippet = strings.Join(lines, "\n")
		issues = append(issues, issue)
	}

	hasTwitter := reTwitterCard.MatchString(html)
	metadata["hasTwitterCard"] = hasTwitter
	if !hasTwitter {
		issue := ruleTwitterCard.Issue()
		issue.FixSnippet = `<meta name="twitter:card" content="summary_large_image">`
		issues = append(issues, issue)
	}

	hasCanonical := reCanonical.MatchString(html)
	metadata["hasCanonical"] = hasCanonical
	if !hasCanonical {
		issue := ruleCanonical.Issue()
		issue.FixSnippet = `<link rel="canonical" href="` + page + `">`
		issues = append(issues, issue)
	}

	structured := reJSONLD.MatchString(html) || reMicrodata.MatchString(html)
	metadata["hasStructuredData"] = structured
	if !structured {
		issues = append(issues, ruleStructured.Issue())
	}

	robots := reRobots.FindStringSubmatch(html)
	noindex := robots != nil && strings.Contains(strings.ToLower(robots[1]), "noindex")
	metadata["hasNoindex"] = noindex
	if noindex {
		issue := ruleNoindex.Issue()
		issue.CodeSnippet = robots[0]
		issues = append(issues, issue)
	}

	missingAlt := 0
	for _, tag := range markup.OpenTags(html, "img") {
		if !markup.HasAttr(tag, "alt") {
			missingAlt++
		}
	}
	metadata["imagesWithoutAlt"] = missingAlt
	if missingAlt > 0 {
		issues = append(issues, ruleImgAlt.Issue(missingAlt))
	}

	return report.NewOutput(issues, metadata), nil
}
