package scanner

import (
	"context"
	"fmt"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/registry"
	"github.com/MOYARU/uxaudit/internal/config"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
)

// Result is the merged analysis of one page.
type Result struct {
	Scores   map[checks.Category]int
	Issues   []report.Issue
	Metadata map[string]any
}

type Scanner struct {
	Checks []checks.Check
}

// New returns a scanner over the default catalogue restricted to categories.
// An empty list enables every category.
func New(categories []string) *Scanner {
	filter := config.ScanConfig{Categories: categories}
	var selected []checks.Check
	for _, c := range registry.DefaultChecks() {
		if filter.CategoryEnabled(string(c.Category)) {
			selected = append(selected, c)
		}
	}
	return &Scanner{Checks: selected}
}

// Run executes the checks one after another in catalogue order. A failing
// check scores 0 and records its error in Metadata under its category; the
// remaining checks still run. Only context cancellation aborts the page.
func (s *Scanner) Run(ctx context.Context, page *ctxpkg.Context, onLog func(string)) (Result, error) {
	if onLog == nil {
		onLog = func(string) {}
	}
	res := Result{
		Scores:   make(map[checks.Category]int, len(s.Checks)),
		Issues:   []report.Issue{},
		Metadata: make(map[string]any, len(s.Checks)),
	}
	total := len(s.Checks)
	for i, c := range s.Checks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := i + 1
		onLog(msges.GetUIMessage("LogModuleStart", n, total, c.Title))

		out, err := runCheck(c, page)
		if err != nil {
			onLog(msges.GetUIMessage("LogModuleError", n, total, c.Title, err.Error()))
			res.Scores[c.Category] = 0
			res.Metadata[string(c.Category)] = map[string]any{"error": err.Error()}
			continue
		}

		res.Scores[c.Category] = out.Score
		res.Issues = append(res.Issues, out.Issues...)
		res.Metadata[string(c.Category)] = out.Metadata
		onLog(msges.GetUIMessage("LogModuleDone", n, total, c.Title, out.Score, len(out.Issues)))
	}
	return res, nil
}

func runCheck(c checks.Check, page *ctxpkg.Context) (out report.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", c.ID, r)
		}
	}()
	if c.Run == nil {
		return report.Output{}, fmt.Errorf("%s has no analyzer", c.ID)
	}
	return c.Run(page)
}
