// Package design measures how many distinct design values a page declares.
// A page that hard-codes dozens of colors or spacings usually lacks a shared
// token set.
package design

import (
	"regexp"
	"sort"
	"strings"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	ruleFonts       = rule("DESIGN_TOO_MANY_FONTS", report.SeverityMinor, report.EffortMedium, 5)
	ruleFontSizes   = rule("DESIGN_TOO_MANY_FONT_SIZES", report.SeverityMinor, report.EffortMedium, 4)
	ruleColors      = rule("DESIGN_TOO_MANY_COLORS", report.SeverityMinor, report.EffortLongTerm, 5)
	ruleColorsMajor = rule("DESIGN_TOO_MANY_COLORS", report.SeverityMajor, report.EffortLongTerm, 7)
	ruleSpacing     = rule("DESIGN_TOO_MANY_SPACINGS", report.SeverityMinor, report.EffortLongTerm, 4)
	ruleRadii       = rule("DESIGN_TOO_MANY_RADII", report.SeveritySuggestion, report.EffortMedium, 2)
	ruleShadows     = rule("DESIGN_TOO_MANY_SHADOWS", report.SeveritySuggestion, report.EffortMedium, 2)
	ruleNoVariables = rule("DESIGN_NO_CSS_VARIABLES", report.SeveritySuggestion, report.EffortLongTerm, 3)
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryDesignConsistency, Severity: sev, Effort: effort, Impact: impact}
}

const (
	fontLimit        = 4
	fontSizeLimit    = 10
	colorLimit       = 20
	colorMajorLimit  = 30
	spacingLimit     = 15
	radiusLimit      = 6
	shadowLimit      = 5
	variableMinColor = 5
)

const colorProps = `(?:color|background-color|background|border-color|border)\s*:\s*`

var (
	reFontFamily   = regexp.MustCompile(`(?i)font-family\s*:\s*([^;}"']+)`)
	reFontSize     = regexp.MustCompile(`(?i)font-size\s*:\s*([^;}"']+)`)
	reBorderRadius = regexp.MustCompile(`(?i)border-radius\s*:\s*([^;}"']+)`)
	reBoxShadow    = regexp.MustCompile(`(?i)box-shadow\s*:\s*([^;}"']+)`)
	reSpacing      = regexp.MustCompile(`(?i)(?:margin|padding)(?:-(?:top|right|bottom|left))?\s*:\s*([^;}"']+)`)
	reVarDecl      = regexp.MustCompile(`--[a-zA-Z][a-zA-Z0-9-]*\s*:`)
	reVarUse       = regexp.MustCompile(`var\(--[^)]+\)`)
	reWhitespace   = regexp.MustCompile(`\s+`)

	colorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + colorProps + `(#[0-9a-fA-F]{3,8})\b`),
		regexp.MustCompile(`(?i)` + colorProps + `(rgb\([^)]+\))`),
		regexp.MustCompile(`(?i)` + colorProps + `(rgba\([^)]+\))`),
		regexp.MustCompile(`(?i)` + colorProps + `(hsl\([^)]+\))`),
	}
)

func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	html := ""
	if ctx != nil {
		html = ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	fonts := uniqueValues(html, reFontFamily)
	metadata["fontFamilies"] = fonts
	metadata["fontFamilyCount"] = len(fonts)
	if len(fonts) > fontLimit {
		issues = append(issues, ruleFonts.Issue(len(fonts)))
	}

	sizes := uniqueValues(html, reFontSize)
	metadata["fontSizes"] = sizes
	metadata["fontSizeCount"] = len(sizes)
	if len(sizes) > fontSizeLimit {
		issues = append(issues, ruleFontSizes.Issue(len(sizes)))
	}

	colorSet := map[string]struct{}{}
	for _, re := range colorPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			colorSet[reWhitespace.ReplaceAllString(strings.ToLower(m[1]), "")] = struct{}{}
		}
	}
	colors := sortedKeys(colorSet)
	metadata["uniqueColors"] = colors
	metadata["colorCount"] = len(colors)
	switch {
	case len(colors) > colorMajorLimit:
		issues = append(issues, ruleColorsMajor.Issue(len(colors)))
	case len(colors) > colorLimit:
		issues = append(issues, ruleColors.Issue(len(colors)))
	}

	spacing := map[string]struct{}{}
	for _, m := range reSpacing.FindAllStringSubmatch(html, -1) {
		for _, v := range strings.Fields(strings.ToLower(m[1])) {
			if v[0] >= '0' && v[0] <= '9' {
				spacing[v] = struct{}{}
			}
		}
	}
	metadata["uniqueSpacingValues"] = len(spacing)
	if len(spacing) > spacingLimit {
		issues = append(issues, ruleSpacing.Issue(len(spacing)))
	}

	radii := uniqueValues(html, reBorderRadius)
	metadata["borderRadiusValues"] = radii
	metadata["borderRadiusCount"] = len(radii)
	if len(radii) > radiusLimit {
		issues = append(issues, ruleRadii.Issue(len(radii)))
	}

	shadows := uniqueValues(html, reBoxShadow)
	metadata["boxShadowValues"] = shadows
	metadata["boxShadowCount"] = len(shadows)
	if len(shadows) > shadowLimit {
		issues = append(issues, ruleShadows.Issue(len(shadows)))
	}

	decls := len(reVarDecl.FindAllString(html, -1))
	metadata["cssVariableDeclarations"] = decls
	metadata["cssVariableUsages"] = len(reVarUse.FindAllString(html, -1))
	if decls == 0 && len(colors) > variableMinColor {
		issue := ruleNoVariables.Issue(len(colors))
		issue.FixSnippet = ":root {\n  --color-primary: #3b82f6;\n  --color-secondary: #6366f1;\n  --font-size-base: 1rem;\n  --spacing-md: 1rem;\n}"
		issues = append(issues, issue)
	}

	return report.NewOutput(issues, metadata), nil
}

// uniqueValues returns the distinct trimmed, lower-cased first groups of re.
func uniqueValues(html string, re *regexp.Regexp) []string {
	set := map[string]struct{}{}
	for _, m := range re.FindAllStringSubmatch(html, -1) {
		set[strings.ToLower(strings.TrimSpace(m[1]))] = struct{}{}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
