package accessibility

import (
	"regexp"
	"strconv"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

const criterionInfo = "1.3.1 Info and Relationships"

var (
	ruleImgAlt       = rule("A11Y_IMG_MISSING_ALT", report.SeverityMajor, report.EffortQuickWin, 7, "1.1.1 Non-text Content")
	ruleInputLabel   = rule("A11Y_INPUT_MISSING_LABEL", report.SeverityMajor, report.EffortQuickWin, 8, criterionInfo)
	ruleLang         = rule("A11Y_HTML_LANG_MISSING", report.SeverityMajor, report.EffortQuickWin, 8, "3.1.1 Language of Page")
	ruleNoH1         = rule("A11Y_H1_MISSING", report.SeverityMinor, report.EffortQuickWin, 6, criterionInfo)
	ruleManyH1       = rule("A11Y_H1_MULTIPLE", report.SeverityMinor, report.EffortMedium, 4, criterionInfo)
	ruleSkippedLevel = rule("A11Y_HEADING_LEVEL_SKIPPED", report.SeverityMinor, report.EffortQuickWin, 3, criterionInfo)
	ruleSkipLink     = rule("A11Y_SKIP_LINK_MISSING", report.SeverityMinor, report.EffortQuickWin, 5, "2.4.1 Bypass Blocks")
	ruleMain         = rule("A11Y_MAIN_LANDMARK_MISSING", report.SeverityMinor, report.EffortQuickWin, 5, criterionInfo)
	ruleNav          = rule("A11Y_NAV_LANDMARK_MISSING", report.SeveritySuggestion, report.EffortQuickWin, 3, criterionInfo)
	ruleSmallText    = rule("A11Y_SMALL_FONT_SIZE", report.SeverityMinor, report.EffortQuickWin, 4, "1.4.4 Resize Text")
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int, criterion string) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryAccessibility, Severity: sev, Effort: effort, Impact: impact, Criterion: criterion}
}

var (
	reSkipLink  = regexp.MustCompile(`(?i)<a\b[^>]*href\s*=\s*["']#(main|content|maincontent|skip)[^"']*["'][^>]*>`)
	reMain      = regexp.MustCompile(`(?i)<main\b|role\s*=\s*["']main["']`)
	reNav       = regexp.MustCompile(`(?i)<nav\b|role\s*=\s*["']navigation["']`)
	reFontSize  = regexp.MustCompile(`(?i)font-size\s*:\s*(\d+(?:\.\d+)?)\s*px`)
	reLangValue = regexp.MustCompile(`(?i)\blang\s*=\s*["'][^"']+["']`)
)

var unlabelledTypes = []string{"hidden", "submit", "button", "reset", "image"}

// Analyze checks a page against the WCAG rules that can be read from markup.
func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	html := ""
	if ctx != nil {
		html = ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	imgs := markup.OpenTags(html, "img")
	missingAlt := 0
	for _, tag := range imgs {
		if markup.HasAttr(tag, "alt") {
			continue
		}
		missingAlt++
		issue := ruleImgAlt.Issue()
		issue.Selector = "img"
		if src, ok := markup.Attr(tag, "src"); ok {
			issue.Selector = `img[src="` + src + `"]`
		}
		issue.CodeSnippet = markup.Truncate(tag, 120)
		issue.FixSnippet = `<img alt="Image description"` + tag[len("<img"):]
		issues = append(issues, issue)
	}
	metadata["totalImages"] = len(imgs)
	metadata["imagesWithoutAlt"] = missingAlt

	inputs := markup.OpenTags(html, "input")
	unlabelled := 0
	for _, tag := range inputs {
		if markup.AttrIs(tag, "type", unlabelledTypes...) || hasLabel(html, tag) {
			continue
		}
		unlabelled++
		issue := ruleInputLabel.Issue()
		issue.Selector = "input"
		if id, ok := markup.Attr(tag, "id"); ok && id != "" {
			issue.Selector = "#" + id
		} else if name, ok := markup.Attr(tag, "name"); ok && name != "" {
			issue.Selector = `input[name="` + name + `"]`
		}
		issue.CodeSnippet = markup.Truncate(tag, 120)
		issues = append(issues, issue)
	}
	metadata["totalInputs"] = len(inputs)
	metadata["inputsWithoutLabels"] = unlabelled

	htmlTags := markup.OpenTags(html, "html")
	hasLang := len(htmlTags) > 0 && reLangValue.MatchString(htmlTags[0])
	metadata["hasLangAttribute"] = hasLang
	if !hasLang {
		issue := ruleLang.Issue()
		issue.Selector = "html"
		issue.CodeSnippet = "<html>"
		if len(htmlTags) > 0 {
			issue.CodeSnippet = htmlTags[0]
		}
		issue.FixSnippet = `<html lang="en">`
		issues = append(issues, issue)
	}

	headings := markup.Headings(html)
	h1Count := 0
	for _, h := range headings {
		if h.Level == 1 {
			h1Count++
		}
	}
	metadata["headingCount"] = len(headings)
	metadata["h1Count"] = h1Count
	switch {
	case h1Count == 0:
		issues = append(issues, ruleNoH1.Issue())
	case h1Count > 1:
		issues = append(issues, ruleManyH1.Issue(h1Count))
	}
	for i := 1; i < len(headings); i++ {
		if headings[i].Level-headings[i-1].Level > 1 {
			issue := ruleSkippedLevel.Issue(markup.Truncate(headings[i].Text, 50), headings[i].Level, headings[i-1].Level)
			issue.Selector = "h" + strconv.Itoa(headings[i].Level)
			issues = append(issues, issue)
			break
		}
	}

	hasSkip := reSkipLink.MatchString(html)
	metadata["hasSkipNavigation"] = hasSkip
	if !hasSkip {
		issue := ruleSkipLink.Issue()
		issue.FixSnippet = `<a href="#main" class="skip-link">Skip to main content</a>`
		issues = append(issues, issue)
	}

	hasMain := reMain.MatchString(html)
	hasNav := reNav.MatchString(html)
	metadata["hasMainLandmark"] = hasMain
	metadata["hasNavLandmark"] = hasNav
	if !hasMain {
		issues = append(issues, ruleMain.Issue())
	}
	if !hasNav {
		issues = append(issues, ruleNav.Issue())
	}

	small := 0
	for _, m := range reFontSize.FindAllStringSubmatch(html, -1) {
		if size, err := strconv.ParseFloat(m[1], 64); err == nil && size < 12 {
			small++
		}
	}
	metadata["smallTextInstances"] = small
	if small > 0 {
		issues = append(issues, ruleSmallText.Issue(small))
	}

	return report.NewOutput(issues, metadata), nil
}

func hasLabel(html, tag string) bool {
	if id, ok := markup.Attr(tag, "id"); ok && id != "" && markup.HasLabelFor(html, id) {
		return true
	}
	return markup.HasAttr(tag, "aria-label") ||
		markup.HasAttr(tag, "aria-labelledby") ||
		markup.HasAttr(tag, "title")
}
