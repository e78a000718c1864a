package darkpatterns

import (
	"regexp"
	"strings"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/markup"
	"github.com/MOYARU/uxaudit/internal/report"
)

var (
	ruleUrgency        = rule("DARK_URGENCY", report.SeverityMinor, report.EffortQuickWin, 6)
	ruleConfirmshaming = rule("DARK_CONFIRMSHAMING", report.SeverityMinor, report.EffortQuickWin, 6)
	ruleHiddenCosts    = rule("DARK_HIDDEN_COSTS", report.SeveritySuggestion, report.EffortMedium, 5)
	ruleNewsletter     = rule("DARK_NEWSLETTER_POPUP", report.SeverityMinor, report.EffortMedium, 5)
	ruleMisleading     = rule("DARK_MISLEADING_BUTTONS", report.SeveritySuggestion, report.EffortQuickWin, 5)
)

func rule(id string, sev report.Severity, effort report.EffortLevel, impact int) checks.Rule {
	return checks.Rule{ID: id, Category: checks.CategoryDarkPatterns, Severity: sev, Effort: effort, Impact: impact}
}

// Text patterns run against the lower-cased visible text of <body>.
var (
	urgencyPatterns = compileAll(
		`offre\s+limit[ée]e`,
		`plus\s+que\s+\d+`,
		`derniers?\s+(jours?|heures?|minutes?|places?|articles?)`,
		`d[ée]p[êe]chez[\s-]vous`,
		`ne\s+ratez\s+pas`,
		`limited\s+(time\s+)?offer`,
		`only\s+\d+\s+left`,
		`hurry`,
		`last\s+chance`,
		`countdown|timer|compte\s+[àa]\s+rebours`,
		`expire\s+(dans|bient[ôo]t|aujourd)`,
		`stock\s+(limit[ée]|[ée]puis[ée]|faible)`,
		`vente\s+flash`,
		`\d+\s*%\s*de\s*r[ée]duction.*aujourd`,
	)
	confirmshamingPatterns = compileAll(
		`non\s*(,|\.|\s)\s*(je\s+ne\s+veux\s+pas|merci|je\s+pr[ée]f[èe]re)`,
		`no\s*,?\s*i\s*(don'?t|prefer|would\s+rather)`,
		`no\s+thanks\s*,?\s*i('d|\s+would)?\s+(rather|prefer)`,
		`je\s+ne\s+souhaite\s+pas\s+(am[ée]liorer|profiter|[ée]conomiser)`,
		`je\s+pr[ée]f[èe]re\s+(payer\s+plus|rester|ne\s+pas)`,
		`non\s+merci,?\s+je\s+ne\s+veux\s+pas`,
		`i\s+don'?t\s+want\s+to\s+save`,
		`je\s+refuse\s+de\s+(profiter|b[ée]n[ée]ficier)`,
	)
	hiddenCostPatterns = compileAll(
		`frais\s*(de\s+)?(service|livraison|dossier|traitement|gestion).*ajout[ée]`,
		`service\s+fee`,
		`handling\s+fee`,
		`prix\s+final.*diff[ée]r`,
		`co[ûu]ts?\s+suppl[ée]mentaires?`,
		`frais\s+cach[ée]s`,
		`hidden\s+(fee|cost|charge)`,
		`additional\s+(fees|charges)\s+(may\s+)?apply`,
	)
)

// Markup patterns run against the raw <body> HTML.
var (
	timerPatterns = compileAll(
		`<[^>]*class\s*=\s*["'][^"']*(countdown|timer)[^"']*["']`,
		`<[^>]*id\s*=\s*["'][^"']*(countdown|timer)[^"']*["']`,
	)
	popupPatterns = compileAll(
		`<[^>]*class\s*=\s*["'][^"']*(modal|popup|overlay|lightbox)[^"']*["'][^>]*>[\s\S]*?(newsletter|abonne|inscri|subscribe|sign\s*up)`,
		`<[^>]*class\s*=\s*["'][^"']*(newsletter|subscribe)[^"']*["'][^>]*>[\s\S]*?(modal|popup|overlay)`,
		`<[^>]*class\s*=\s*["'][^"']*(overlay|modal|popup)[^"']*["'][^>]*>[\s\S]*?<input\b[^>]*type\s*=\s*["']email["']`,
	)
	ctaClosePatterns = compileAll(
		`<button\b[^>]*class\s*=\s*["'][^"']*(btn-primary|btn-cta|cta)[^"']*["'][^>]*>[\s\S]*?(fermer|close|non|refuser|×|✕)`,
		`<a\b[^>]*class\s*=\s*["'][^"']*(btn-primary|btn-cta|cta)[^"']*["'][^>]*>[\s\S]*?(fermer|close|non|refuser)`,
	)
	tinyClosePatterns = compileAll(
		`class\s*=\s*["'][^"']*(close|dismiss|fermer)[^"']*["'][^>]*style\s*=\s*["'][^"']*(font-size\s*:\s*[0-9]px|opacity\s*:\s*0?\.[0-3]|color\s*:\s*(#fff|white|transparent))`,
	)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Analyze flags persuasion techniques that work against the visitor.
func Analyze(ctx *ctxpkg.Context) (report.Output, error) {
	html := ""
	if ctx != nil {
		html = ctx.HTML
	}
	var issues []report.Issue
	metadata := map[string]any{}

	body := markup.Body(html)
	text := strings.ToLower(markup.StripTags(body))

	urgency := matchAny(urgencyPatterns, text)
	timers := matchAny(timerPatterns, body)
	metadata["hasUrgencyIndicators"] = urgency
	metadata["hasTimerElements"] = timers
	if urgency || timers {
		issues = append(issues, ruleUrgency.Issue())
	}

	shaming := matchAny(confirmshamingPatterns, text)
	metadata["hasConfirmshaming"] = shaming
	if shaming {
		issues = append(issues, ruleConfirmshaming.Issue())
	}

	hidden := matchAny(hiddenCostPatterns, text)
	metadata["hasHiddenCostIndicators"] = hidden
	if hidden {
		issues = append(issues, ruleHiddenCosts.Issue())
	}

	popup := matchAny(popupPatterns, body)
	metadata["hasNewsletterPopup"] = popup
	if popup {
		issues = append(issues, ruleNewsletter.Issue())
	}

	misleading := matchAny(ctaClosePatterns, body)
	tiny := matchAny(tinyClosePatterns, body)
	metadata["hasMisleadingButtons"] = misleading
	metadata["hasTinyCloseButtons"] = tiny
	if misleading || tiny {
		issues = append(issues, ruleMisleading.Issue())
	}

	return report.NewOutput(issues, metadata), nil
}
