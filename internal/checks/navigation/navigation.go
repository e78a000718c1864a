package navigation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	ruleNavMissing    = rule("NAV_ELEMENT_MISSING", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleNoInternal    = rule("NAV_NO_INTERNAL_LINKS", report.SeverityMinor, report.EffortMedium, 6)
	ruleFewInternal   = rule("NAV_FEW_INTERNAL_LINKS", report.SeveritySuggestion, report.EffortMedium, 3)
	ruleEmptyHref     = rule("NAV_EMPTY_HREF", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleBreadcrumbs   = rule("NAV_BREADCRUMBS_MISSING", report.SeveritySuggestion, report.EffortMedium, 3)
	ruleFooterMissing = rule("NAV_FOOTER_MISSING", report.SeveritySuggestion, report.EffortMedium, 3)
	ruleFooterLinks   = rule("NAV_FOOTER_NO_LINKS", report.SeveritySuggestion, report.EffortQuickWin, 2)
	ruleSearch        = rule("NAV_SEARCH_MISSING", report.SeveritySuggestion, report.EffortMedium, 2)
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryNavigation, Severity: sev, Effort: effort, Impact: impact}
}

const fewInternalLinks = 3

var (
	reLinkHref = regexp.MustCompile(`(?i)<a\b[^>]*href\s*=\s*["']([^"']*)["'][^>]*>`)
	reAnchor   = regexp.MustCompile(`(?i)<a\b`)

	breadcrumbPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<nav\b[^>]*aria-label\s*=\s*["'][^"']*breadcrumb[^"']*["']`),
		regexp.MustCompile(`(?i)<[^>]*class\s*=\s*["'][^"']*breadcrumb[^"']*["']`),
		regexp.MustCompile(`(?i)itemtype\s*=\s*["'][^"']*BreadcrumbList["']`),
	}
	searchPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<input\b[^>]*type\s*=\s*["']search["'][^>]*>`),
		regexp.MustCompile(`(?i)<form\b[^>]*role\s*=\s*["']search["'][^>]*>`),
		regexp.MustCompile(`(?is)<[^>]*class\s*=\s*["'][^"']*search[^"']*["'][^>]*>.*?<input\b`),
	}
)

// Analyze looks at how the page connects to the rest of the site.
func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	var page, html string
	if ctx != nil {
		page, html = ctx.URL, ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	navCount := len(markup.OpenTags(html, "nav"))
	metadata["navElementCount"] = navCount
	if navCount == 0 {
		issue := ruleNavMissing.Issue()
		issue.FixSnippet = "<nav aria-label=\"Main navigation\">\n  <!-- navigation links -->\n</nav>"
		issues = append(issues, issue)
	}

	origin := ""
	if u, err := url.Parse(page); err == nil && u.Scheme != "" && u.Host != "" {
		origin = u.Scheme + "://" + u.Host
	}
	internal, external, hashOnly, total := 0, 0, 0, 0
	for _, m := range reLinkHref.FindAllStringSubmatch(html, -1) {
		total++
		switch href := strings.TrimSpace(m[1]); {
		case href == "" || href == "#":
			hashOnly++
		case isInternal(href, origin):
			internal++
		case strings.HasPrefix(href, "http"):
			external++
		}
	}
	metadata["internalLinkCount"] = internal
	metadata["externalLinkCount"] = external
	metadata["hashOnlyLinks"] = hashOnly
	metadata["totalLinks"] = total
	switch {
	case internal == 0 && total > 0:
		issues = append(issues, ruleNoInternal.Issue(total))
	case internal > 0 && internal < fewInternalLinks:
		issues = append(issues, ruleFewInternal.Issue(internal))
	}
	if hashOnly > 0 {
		issues = append(issues, ruleEmptyHref.Issue(hashOnly))
	}

	hasBreadcrumbs := matchAny(breadcrumbPatterns, html)
	metadata["hasBreadcrumbs"] = hasBreadcrumbs
	if !hasBreadcrumbs {
		issue := ruleBreadcrumbs.Issue()
		issue.FixSnippet = "<nav aria-label=\"Breadcrumb\">\n  <ol>\n    <li><a href=\"/\">Home</a></li>\n    <li aria-current=\"page\">Current page</li>\n  </ol>\n</nav>"
		issues = append(issues, issue)
	}

	footer, hasFooter := markup.First(html, "footer")
	footerLinks := 0
	if hasFooter {
		footerLinks = len(reAnchor.FindAllString(footer.Inner, -1))
	}
	metadata["hasFooter"] = hasFooter
	metadata["footerLinkCount"] = footerLinks
	switch {
	case !hasFooter:
		issues = append(issues, ruleFooterMissing.Issue())
	case footerLinks == 0:
		issue := ruleFooterLinks.Issue()
		issue.Selector = "footer"
		issues = append(issues, issue)
	}

	hasSearch := matchAny(searchPatterns, html)
	metadata["hasSearchInput"] = hasSearch
	if !hasSearch {
		issues = append(issues, ruleSearch.Issue())
	}

	return report.NewOutput(issues, metadata), nil
}

// isInternal treats root-relative, same-origin and scheme-less hrefs as
// internal. mailto: and tel: links are neither internal nor external.
func isInternal(href, origin string) bool {
	if strings.HasPrefix(href, "/") || (origin != "" && strings.HasPrefix(href, origin)) {
		return true
	}
	return !strings.HasPrefix(href, "http") &&
		!strings.HasPrefix(href, "mailto:") &&
		!strings.HasPrefix(href, "tel:")
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
