package forms

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	rulePlaceholder  = rule("FORM_PLACEHOLDER_AS_LABEL", report.SeverityMajor, report.EffortQuickWin, 7, "")
	ruleEmailType    = rule("FORM_EMAIL_TYPE_MISSING", report.SeverityMinor, report.EffortQuickWin, 5, "")
	ruleTelType      = rule("FORM_TEL_TYPE_MISSING", report.SeverityMinor, report.EffortQuickWin, 4, "")
	ruleAutocomplete = rule("FORM_AUTOCOMPLETE_MISSING", report.SeveritySuggestion, report.EffortQuickWin, 3, "WCAG 1.3.5 Identify Input Purpose")
	ruleSubmit       = rule("FORM_SUBMIT_MISSING", report.SeverityMajor, report.EffortQuickWin, 8, "")
	ruleRequired     = rule("FORM_REQUIRED_MISSING", report.SeverityMinor, report.EffortQuickWin, 5, "")
	ruleFieldset     = rule("FORM_FIELDSET_MISSING", report.SeveritySuggestion, report.EffortMedium, 3, "")
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int, criterion string) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryForms, Severity: sev, Effort: effort, Impact: impact, Criterion: criterion}
}

const longFormFields = 6

var (
	reTextarea     = regexp.MustCompile(`(?i)<textarea\b[^>]*>[^<]*`)
	reEmailHint    = regexp.MustCompile(`(?i)e[-_]?mail|courriel|adresse.*mail`)
	rePhoneHint    = regexp.MustCompile(`(?i)t[ée]l[ée]?phone|phone|mobile|numero`)
	reSubmitButton = regexp.MustCompile(`(?i)<button\b[^>]*type\s*=\s*["']submit["']`)
	reSubmitInput  = regexp.MustCompile(`(?i)<input\b[^>]*type\s*=\s*["']submit["']`)
	reButton       = regexp.MustCompile(`(?i)<button\b`)
	rePlainButton  = regexp.MustCompile(`(?i)<button\b[^>]*type\s*=\s*["']button["']`)
	reRequired     = regexp.MustCompile(`(?i)\brequired\b|\baria-required\s*=\s*["']true["']`)
	reFieldset     = regexp.MustCompile(`(?i)<fieldset\b`)
)

var nonTextTypes = []string{"hidden", "submit", "button", "reset", "image"}

// Analyze inspects every <form> on the page. A page without forms has
// nothing to score and gets 100.
func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	html := ""
	if ctx != nil {
		html = ctx.HTML
	}
	forms := markup.Elements(html, "form")
	if len(forms) == 0 {
		return report.NewOutput(nil, map[string]any{
			"formCount": 0,
			"message":   "No form detected on this page.",
		}), nil
	}

	var issues []report.Issue
	for i, form := range forms {
		suffix := ""
		if len(forms) > 1 {
			suffix = " (form " + strconv.Itoa(i+1) + ")"
		}
		issues = append(issues, analyzeForm(form.Outer, suffix)...)
	}

	return report.NewOutput(issues, map[string]any{
		"formCount":   len(forms),
		"totalIssues": len(issues),
	}), nil
}

func analyzeForm(form, suffix string) []report.Issue {
	var issues []report.Issue
	add := func(issue report.Issue) {
		issue.Title += suffix
		issues = append(issues, issue)
	}

	fields := append(markup.OpenTags(form, "input"), reTextarea.FindAllString(form, -1)...)

	for _, field := range fields {
		if markup.AttrIs(field, "type", nonTextTypes...) || !markup.HasAttr(field, "placeholder") {
			continue
		}
		id, hasID := markup.Attr(field, "id")
		labelled := hasID && id != "" && markup.HasLabelFor(form, id)
		if labelled || markup.HasAttr(field, "aria-label") || markup.HasAttr(field, "aria-labelledby") {
			continue
		}
		issue := rulePlaceholder.Issue()
		issue.Selector = selector(field)
		issue.CodeSnippet = markup.Truncate(field, 120)
		add(issue)
	}

	for _, field := range fields {
		hint := fieldHint(field)
		if reEmailHint.MatchString(hint) && !markup.AttrIs(field, "type", "email") {
			issue := ruleEmailType.Issue()
			issue.Selector = selector(field)
			issue.CodeSnippet = markup.Truncate(field, 120)
			add(issue)
		}
	}
	for _, field := range fields {
		hint := fieldHint(field)
		if rePhoneHint.MatchString(hint) && !markup.AttrIs(field, "type", "tel") {
			issue := ruleTelType.Issue()
			issue.Selector = selector(field)
			issue.CodeSnippet = markup.Truncate(field, 120)
			add(issue)
		}
	}

	missingAutocomplete := 0
	visible := 0
	for _, field := range fields {
		if !markup.AttrIs(field, "type", "hidden") {
			visible++
		}
		if !markup.AttrIs(field, "type", nonTextTypes...) && !markup.HasAttr(field, "autocomplete") {
			missingAutocomplete++
		}
	}
	if missingAutocomplete > 0 {
		add(ruleAutocomplete.Issue(missingAutocomplete))
	}

	hasSubmit := reSubmitButton.MatchString(form) ||
		reSubmitInput.MatchString(form) ||
		(reButton.MatchString(form) && !rePlainButton.MatchString(form))
	if !hasSubmit {
		issue := ruleSubmit.Issue()
		issue.FixSnippet = `<button type="submit">Submit</button>`
		add(issue)
	}

	if !reRequired.MatchString(form) && len(fields) > 1 {
		add(ruleRequired.Issue())
	}

	if visible > longFormFields && !reFieldset.MatchString(form) {
		add(ruleFieldset.Issue(visible))
	}
	return issues
}

// fieldHint joins the attributes that reveal what a field is for.
func fieldHint(field string) string {
	name, _ := markup.Attr(field, "name")
	placeholder, _ := markup.Attr(field, "placeholder")
	id, _ := markup.Attr(field, "id")
	return strings.ToLower(name + " " + placeholder + " " + id)
}

func selector(field string) string {
	if id, ok := markup.Attr(field, "id"); ok && id != "" {
		return "#" + id
	}
	if name, ok := markup.Attr(field, "name"); ok && name != "" {
		return `[name="` + name + `"]`
	}
	if strings.HasPrefix(strings.ToLower(field), "<textarea") {
		return "textarea"
	}
	return "input"
}
