package content

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

const wcag = "WCAG 2.2"

var (
	ruleEmptyHeadings  = rule("CONTENT_EMPTY_HEADINGS", report.SeverityMinor, report.EffortQuickWin, 4, wcag, "1.3.1 Info and Relationships")
	ruleLongParagraphs = rule("CONTENT_LONG_PARAGRAPHS", report.SeverityMinor, report.EffortMedium, 4, "", "")
	ruleMetaMissing    = rule("CONTENT_META_DESCRIPTION_MISSING", report.SeverityMinor, report.EffortQuickWin, 5, "", "")
	ruleMetaShort      = rule("CONTENT_META_DESCRIPTION_SHORT", report.SeveritySuggestion, report.EffortQuickWin, 3, "", "")
	ruleMetaLong       = rule("CONTENT_META_DESCRIPTION_LONG", report.SeveritySuggestion, report.EffortQuickWin, 2, "", "")
	ruleLinkText       = rule("CONTENT_GENERIC_LINK_TEXT", report.SeverityMinor, report.EffortQuickWin, 5, wcag, "2.4.4 Link Purpose (In Context)")
	ruleSentences      = rule("CONTENT_LONG_SENTENCES", report.SeveritySuggestion, report.EffortMedium, 3, "", "")
	ruleDensity        = rule("CONTENT_LOW_TEXT_DENSITY", report.SeveritySuggestion, report.EffortLongTerm, 2, "", "")
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int, framework, criterion string) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryContent, Severity: sev, Effort: effort, Impact: impact, Framework: framework, Criterion: criterion}
}

const (
	paragraphLimit   = 500
	metaMin          = 70
	metaMax          = 160
	sentenceWords    = 25
	minSentences     = 3
	densityPercent   = 10
	densityMinLength = 1000
)

var reSentenceEnd = regexp.MustCompile(`[.!?]+`)

var genericLinkTexts = map[string]bool{
	"cliquez ici":    true,
	"cliquer ici":    true,
	"click here":     true,
	"ici":            true,
	"lire la suite":  true,
	"en savoir plus": true,
	"plus":           true,
	"lien":           true,
	"link":           true,
	"voir plus":      true,
	"here":           true,
	"read more":      true,
	"learn more":     true,
	"more":           true,
}

func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	html := ""
	if ctx != nil {
		html = ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	headings := markup.Headings(html)
	empty := 0
	for _, h := range headings {
		if markup.StripTags(h.Inner) == "" {
			empty++
		}
	}
	metadata["totalHeadings"] = len(headings)
	metadata["emptyHeadings"] = empty
	if empty > 0 {
		issues = append(issues, ruleEmptyHeadings.Issue(empty))
	}

	paragraphs := markup.Elements(html, "p")
	long := 0
	for _, p := range paragraphs {
		if utf8.RuneCountInString(markup.StripTags(p.Inner)) > paragraphLimit {
			long++
		}
	}
	metadata["totalParagraphs"] = len(paragraphs)
	metadata["longParagraphs"] = long
	if long > 0 {
		issues = append(issues, ruleLongParagraphs.Issue(long))
	}

	desc, ok := markup.MetaDescription(html)
	descLen := utf8.RuneCountInString(desc)
	if ok {
		metadata["metaDescription"] = desc
	} else {
		metadata["metaDescription"] = nil
	}
	metadata["metaDescriptionLength"] = descLen
	switch {
	case !ok:
		issue := ruleMetaMissing.Issue()
		issue.FixSnippet = `<meta name="description" content="A concise summary of the page in 120-160 characters.">`
		issues = append(issues, issue)
	case descLen < metaMin:
		issues = append(issues, ruleMetaShort.Issue(descLen))
	case descLen > metaMax:
		issues = append(issues, ruleMetaLong.Issue(descLen))
	}

	links := markup.Elements(html, "a")
	generic := 0
	for _, a := range links {
		if genericLinkTexts[strings.ToLower(markup.StripTags(a.Inner))] {
			generic++
		}
	}
	metadata["totalLinks"] = len(links)
	metadata["badLinkTextCount"] = generic
	if generic > 0 {
		issues = append(issues, ruleLinkText.Issue(generic))
	}

	bodyText := markup.StripTags(markup.Body(html))
	var sentences []string
	for _, s := range reSentenceEnd.Split(bodyText, -1) {
		if s = strings.TrimSpace(s); utf8.RuneCountInString(s) > 10 {
			sentences = append(sentences, s)
		}
	}
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	avg := 0.0
	if len(sentences) > 0 {
		avg = float64(words) / float64(len(sentences))
	}
	metadata["sentenceCount"] = len(sentences)
	metadata["avgWordsPerSentence"] = math.Round(avg*10) / 10
	if avg > sentenceWords && len(sentences) > minSentences {
		issues = append(issues, ruleSentences.Issue(int(math.Round(avg))))
	}

	density := 0.0
	if len(html) > 0 {
		density = float64(len(bodyText)) / float64(len(html)) * 100
	}
	metadata["textDensityPercent"] = math.Round(density*10) / 10
	if density < densityPercent && len(html) > densityMinLength {
		issues = append(issues, ruleDensity.Issue(int(math.Round(density))))
	}

	return report.NewOutput(issues, metadata), nil
}
