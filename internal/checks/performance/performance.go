package performance

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	ruleViewport         = rule("PERF_VIEWPORT_MISSING", report.SeverityCritical, report.EffortQuickWin, 10)
	ruleBlockingExternal = rule("PERF_BLOCKING_SCRIPT", report.SeverityMajor, report.EffortQuickWin, 7)
	ruleBlockingLocal    = rule("PERF_BLOCKING_SCRIPT", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleLazy             = rule("PERF_IMG_NO_LAZY", report.SeverityMinor, report.EffortQuickWin, 5)
	ruleInlineScript     = rule("PERF_LARGE_INLINE_SCRIPT", report.SeverityMinor, report.EffortMedium, 4)
	ruleStylesheets      = rule("PERF_TOO_MANY_STYLESHEETS", report.SeverityMinor, report.EffortMedium, 4)
	ruleLegacyImages     = rule("PERF_LEGACY_IMAGE_FORMATS", report.SeverityMinor, report.EffortMedium, 5)
	ruleHTMLTooLarge     = rule("PERF_HTML_TOO_LARGE", report.SeverityMajor, report.EffortLongTerm, 7)
	ruleHTMLLarge        = rule("PERF_HTML_LARGE", report.SeverityMinor, report.EffortMedium, 4)
	rulePreconnect       = rule("PERF_NO_PRECONNECT", report.SeveritySuggestion, report.EffortQuickWin, 3)
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryPerformance, Severity: sev, Effort: effort, Impact: impact}
}

const (
	inlineScriptLimitKB = 5
	stylesheetLimit     = 10
	htmlLargeKB         = 100
	htmlTooLargeKB      = 200
	externalHostLimit   = 2
)

var (
	reViewport     = regexp.MustCompile(`(?i)<meta\b[^>]*name\s*=\s*["']viewport["'][^>]*>`)
	reScriptSrc    = regexp.MustCompile(`(?i)<script\b[^>]*src\s*=\s*["'][^"']+["'][^>]*>`)
	reAsyncDefer   = regexp.MustCompile(`(?i)\b(async|defer)\b`)
	reModuleType   = regexp.MustCompile(`(?i)\btype\s*=\s*["']module["']`)
	reAbsolute     = regexp.MustCompile(`(?i)^https?://`)
	reStylesheet   = regexp.MustCompile(`(?i)<link\b[^>]*rel\s*=\s*["']stylesheet["'][^>]*>`)
	reLegacyImage  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|bmp)(\?|$)`)
	reModernImage  = regexp.MustCompile(`(?i)\.(webp|avif)(\?|$)`)
	rePicture      = regexp.MustCompile(`(?i)<picture\b`)
	rePreconnect   = regexp.MustCompile(`(?i)<link\b[^>]*rel\s*=\s*["']preconnect["'][^>]*>`)
	reDNSPrefetch  = regexp.MustCompile(`(?i)<link\b[^>]*rel\s*=\s*["']dns-prefetch["'][^>]*>`)
	reExternalHost = regexp.MustCompile(`(?i)(?:src|href)\s*=\s*["'](https?://[^/"']+)`)
)

// Analyze estimates loading cost from the rendered markup alone.
func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	var page, html string
	if ctx != nil {
		page, html = ctx.URL, ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	hasViewport := reViewport.MatchString(html)
	metadata["hasMetaViewport"] = hasViewport
	if !hasViewport {
		issue := ruleViewport.Issue()
		issue.Selector = "head"
		issue.FixSnippet = `<meta name="viewport" content="width=device-width, initial-scale=1">`
		issues = append(issues, issue)
	}

	scripts := reScriptSrc.FindAllString(html, -1)
	head := ""
	if el, ok := markup.First(html, "head"); ok {
		head = el.Inner
	}
	headBlocking := 0
	for _, tag := range scripts {
		if reAsyncDefer.MatchString(tag) || reModuleType.MatchString(tag) || !strings.Contains(head, tag) {
			continue
		}
		headBlocking++
		src, _ := markup.Attr(tag, "src")
		r := ruleBlockingLocal
		if reAbsolute.MatchString(src) {
			r = ruleBlockingExternal
		}
		issue := r.Issue(src)
		issue.Selector = `script[src="` + src + `"]`
		issue.CodeSnippet = markup.Truncate(tag, 120)
		issue.FixSnippet = "<script defer" + tag[len("<script"):]
		issues = append(issues, issue)
	}
	metadata["totalScripts"] = len(scripts)
	metadata["blockingScriptsInHead"] = headBlocking

	imgs := markup.OpenTags(html, "img")
	var withoutLazy []string
	for _, tag := range imgs {
		if !markup.AttrIs(tag, "loading", "lazy", "eager") {
			withoutLazy = append(withoutLazy, tag)
		}
	}
	metadata["totalImages"] = len(imgs)
	metadata["imagesWithoutLazyLoading"] = len(withoutLazy)
	if len(withoutLazy) > 0 {
		issue := ruleLazy.Issue(len(withoutLazy))
		issue.CodeSnippet = markup.Truncate(withoutLazy[0], 120)
		issues = append(issues, issue)
	}

	largeInline := 0
	totalInlineKB := 0.0
	for _, el := range markup.Elements(html, "script") {
		if markup.HasAttr(el.Open, "src") {
			continue
		}
		sizeKB := float64(len(strings.TrimSpace(el.Inner))) / 1024
		totalInlineKB += sizeKB
		if sizeKB > inlineScriptLimitKB {
			largeInline++
		}
	}
	metadata["largeInlineScripts"] = largeInline
	metadata["totalInlineScriptSizeKB"] = round2(totalInlineKB)
	if largeInline > 0 {
		issues = append(issues, ruleInlineScript.Issue(largeInline))
	}

	cssCount := len(reStylesheet.FindAllString(html, -1))
	metadata["cssFileCount"] = cssCount
	if cssCount > stylesheetLimit {
		issues = append(issues, ruleStylesheets.Issue(cssCount))
	}

	legacy, modern := false, false
	for _, tag := range imgs {
		src, _ := markup.Attr(tag, "src")
		legacy = legacy || reLegacyImage.MatchString(src)
		modern = modern || reModernImage.MatchString(src)
	}
	hasPicture := rePicture.MatchString(html)
	metadata["usesModernImageFormats"] = modern || hasPicture
	if legacy && !modern && !hasPicture {
		issue := ruleLegacyImages.Issue()
		issue.FixSnippet = "<picture>\n  <source srcset=\"image.avif\" type=\"image/avif\">\n  <source srcset=\"image.webp\" type=\"image/webp\">\n  <img src=\"image.jpg\" alt=\"...\">\n</picture>"
		issues = append(issues, issue)
	}

	sizeKB := float64(len(html)) / 1024
	metadata["htmlSizeKB"] = round2(sizeKB)
	switch {
	case sizeKB > htmlTooLargeKB:
		issues = append(issues, ruleHTMLTooLarge.Issue(int(math.Round(sizeKB))))
	case sizeKB > htmlLargeKB:
		issues = append(issues, ruleHTMLLarge.Issue(int(math.Round(sizeKB))))
	}

	hasPreconnect := rePreconnect.MatchString(html)
	hasDNSPrefetch := reDNSPrefetch.MatchString(html)
	hosts := externalHosts(html, page)
	metadata["externalDomainCount"] = len(hosts)
	metadata["hasPreconnect"] = hasPreconnect
	metadata["hasDnsPrefetch"] = hasDNSPrefetch
	if len(hosts) > externalHostLimit && !hasPreconnect && !hasDNSPrefetch {
		issue := rulePreconnect.Issue(len(hosts))
		issue.FixSnippet = `<link rel="preconnect" href="https://fonts.googleapis.com" crossorigin>`
		issues = append(issues, issue)
	}

	return report.NewOutput(issues, metadata), nil
}

// externalHosts collects the distinct hosts of absolute src/href values,
// leaving out the page's own host.
func externalHosts(html, page string) map[string]struct{} {
	own := ""
	if u, err := url.Parse(page); err == nil {
		own = strings.ToLower(u.Hostname())
	}
	hosts := map[string]struct{}{}
	for _, m := range reExternalHost.FindAllStringSubmatch(html, -1) {
		u, err := url.Parse(m[1])
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == own {
			continue
		}
		hosts[host] = struct{}{}
	}
	return hosts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
