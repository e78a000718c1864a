package output

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MOYARU/uxaudit/internal/app/ui"
	"github.com/MOYARU/uxaudit/internal/audit"
	"github.com/MOYARU/uxaudit/internal/checks"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/scoring"
)

var progressMu sync.Mutex

// PrintScanProgress redraws the progress bar on the same line when stdout
// is a terminal, and prints one line per update otherwise.
func PrintScanProgress(current, total int, phase runstate.Status, target string) {
	progressMu.Lock()
	defer progressMu.Unlock()
	writeProgress(os.Stdout, ui.IsTerminal(), current, total, phase, target)
}

func writeProgress(w io.Writer, tty bool, current, total int, phase runstate.Status, target string) {
	prefix, suffix := "\r", "\033[K"
	if !tty {
		prefix, suffix = "", "\n"
	}
	if total <= 0 {
		fmt.Fprintf(w, "%s [------------------------------] 0%% | %s [0/0]: %s%s", prefix, phase, target, suffix)
		return
	}

	if current > total {
		current = total
	}
	percentage := float64(current) / float64(total) * 100
	// Truncate target URL to prevent line wrapping
	if len(target) > 50 {
		target = target[:47] + "..."
	}
	width := 30
	filled := int(float64(width) * (float64(current) / float64(total)))
	bar := strings.Repeat("#", filled) + strings.Repeat("-", width-filled)
	fmt.Fprintf(w, "%s [%s] %.0f%% | %s [%d/%d]: %s%s", prefix, bar, percentage, phase, current, total, target, suffix)
}

type consoleIssue struct {
	Issue report.Issue
	Pages []string
}

// aggregateIssues merges the same issue found on several pages and orders
// the result CRITICAL first, then by catalogue category and title.
func aggregateIssues(pages []audit.PageResult) []consoleIssue {
	type key struct {
		ID       string
		Severity report.Severity
		Title    string
		Selector string
	}

	grouped := make(map[key]*consoleIssue)
	var order []key
	for _, p := range pages {
		for _, issue := range p.Issues {
			k := key{ID: issue.ID, Severity: issue.Severity, Title: issue.Title, Selector: issue.Selector}
			item, ok := grouped[k]
			if !ok {
				item = &consoleIssue{Issue: issue}
				grouped[k] = item
				order = append(order, k)
			}
			u := report.SanitizeURL(p.URL)
			if len(item.Pages) == 0 || item.Pages[len(item.Pages)-1] != u {
				item.Pages = append(item.Pages, u)
			}
		}
	}

	out := make([]consoleIssue, 0, len(order))
	for _, k := range order {
		out = append(out, *grouped[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := report.Rank(out[i].Issue.Severity), report.Rank(out[j].Issue.Severity)
		if ri != rj {
			return ri < rj
		}
		ci, cj := categoryIndex(out[i].Issue.Category), categoryIndex(out[j].Issue.Category)
		if ci != cj {
			return ci < cj
		}
		return out[i].Issue.Title < out[j].Issue.Title
	})
	return out
}

func categoryIndex(c string) int {
	for i, cat := range checks.Categories {
		if string(cat) == c {
			return i
		}
	}
	return len(checks.Categories)
}

// PrintIssues prints every issue of the audit grouped by severity.
func PrintIssues(pages []audit.PageResult) {
	writeIssues(os.Stdout, pages)
}

func writeIssues(w io.Writer, pages []audit.PageResult) {
	issues := aggregateIssues(pages)
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s%s%s\n", ui.ColorGreen, msges.GetUIMessage("ConsoleNoIssues"), ui.ColorReset)
		return
	}

	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("ConsoleFindingsTitle"), ui.ColorReset)
	var current report.Severity
	for _, item := range issues {
		issue := item.Issue
		if issue.Severity != current {
			current = issue.Severity
			fmt.Fprintf(w, "\n%s== %s ==%s\n", ui.SeverityColor(current), current, ui.ColorReset)
		}

		label := issue.Category
		if c, ok := checks.ParseCategory(issue.Category); ok {
			label = c.Label()
		}
		fmt.Fprintf(w, "\n%s[%s] (%s) %s%s\n", ui.SeverityColor(issue.Severity), issue.Severity, label, issue.Title, ui.ColorReset)
		if len(item.Pages) > 1 {
			fmt.Fprintf(w, "%s - Pages: %d%s\n", ui.ColorGray, len(item.Pages), ui.ColorReset)
		}
		fmt.Fprintf(w, "%s - %s%s\n", ui.ColorGray, issue.Description, ui.ColorReset)
		if issue.Criterion != "" {
			fmt.Fprintf(w, "%s - %s: %s %s%s\n", ui.ColorGray, msges.GetUIMessage("ConsoleCriterionLabel"), issue.Framework, issue.Criterion, ui.ColorReset)
		}
		if issue.Selector != "" {
			fmt.Fprintf(w, "%s - %s: %s%s\n", ui.ColorGray, msges.GetUIMessage("ConsoleSelectorLabel"), issue.Selector, ui.ColorReset)
		}
		fmt.Fprintf(w, "%s - %s: %s (%s, impact %d/10)%s\n", ui.ColorGray, msges.GetUIMessage("ConsoleFixLabel"), issue.Recommendation, issue.EffortLevel, issue.Impact, ui.ColorReset)
		for _, u := range item.Pages {
			fmt.Fprintf(w, "%s   - %s%s\n", ui.ColorGray, u, ui.ColorReset)
		}
	}
}

// PrintScores prints the site score per category and the global score.
func PrintScores(score scoring.GlobalScore) {
	writeScores(os.Stdout, score)
}

func writeScores(w io.Writer, score scoring.GlobalScore) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("ConsoleScoresTitle"), ui.ColorReset)
	for _, cat := range checks.Categories {
		s, ok := score.Categories[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(w, " %-20s %s%3d/100%s  %s\n", cat.Label(), ui.ScoreColor(s), s, ui.ColorReset, scoring.Label(s))
	}
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ScoreColor(score.Global), msges.GetUIMessage("ConsoleGlobalScore", score.Global, scoring.Label(score.Global)), ui.ColorReset)
}

// PrintPages lists the analyzed pages with their status and score.
func PrintPages(pages []audit.PageResult) {
	writePages(os.Stdout, pages)
}

func writePages(w io.Writer, pages []audit.PageResult) {
	if len(pages) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("ConsolePagesTitle"), ui.ColorReset)
	for _, p := range pages {
		fmt.Fprintf(w, " [%d] %s%3d/100%s %s (%d issue(s))\n", p.StatusCode, ui.ScoreColor(p.PageScore), p.PageScore, ui.ColorReset, report.SanitizeURL(p.URL), len(p.Issues))
	}
}

type jsonReport struct {
	Target      string                  `json:"target"`
	AuditID     string                  `json:"auditId"`
	Status      runstate.Status         `json:"status"`
	Summary     string                  `json:"summary,omitempty"`
	StartTime   time.Time               `json:"startTime"`
	EndTime     time.Time               `json:"endTime"`
	GlobalScore int                     `json:"globalScore"`
	Label       string                  `json:"label"`
	Breakdown   map[checks.Category]int `json:"scoreBreakdown"`
	Severities  report.SeverityCounts   `json:"severities"`
	Pages       []audit.PageResult      `json:"pages"`
}

// SaveJSONReport writes the audit result to the working directory and
// returns the file name.
func SaveJSONReport(target string, res audit.Result, startTime, endTime time.Time) (string, error) {
	var all []report.Issue
	pages := make([]audit.PageResult, 0, len(res.Pages))
	for _, p := range res.Pages {
		all = append(all, p.Issues...)
		p.URL = report.SanitizeURL(p.URL)
		pages = append(pages, p)
	}

	doc := jsonReport{
		Target:      report.SanitizeURL(target),
		AuditID:     res.AuditID,
		Status:      res.Status,
		Summary:     res.Summary,
		StartTime:   startTime,
		EndTime:     endTime,
		GlobalScore: res.Score.Global,
		Label:       scoring.Label(res.Score.Global),
		Breakdown:   res.Score.Categories,
		Severities:  report.CountBySeverity(all),
		Pages:       pages,
	}
	if doc.Breakdown == nil {
		doc.Breakdown = map[checks.Category]int{}
	}

	filename := fmt.Sprintf("uxaudit_report_%s_%s.json", reportHost(target), endTime.Format("20060102_150405"))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return "", err
	}
	return filename, nil
}

func reportHost(target string) string {
	host := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		host = u.Host
	}
	return strings.NewReplacer(":", "_", "/", "_", "\\", "_").Replace(host)
}
