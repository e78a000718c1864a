// Package audit runs one audit from crawl to persisted verdict.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/scanner"
	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/crawler"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/scoring"
	"github.com/MOYARU/uxaudit/internal/store"
)

const (
	defaultGrace = 10 * time.Minute
	cleanupWrite = 5 * time.Second
	logTimeStamp = "15:04:05"
)

type Crawler interface {
	Crawl(ctx context.Context, startURL string, cfg config.ScanConfig, onLog func(string), onProgress func(scanned, total int)) ([]crawler.CrawledPage, error)
}

type Analyzer interface {
	Run(ctx context.Context, page *ctxpkg.Context, onLog func(string)) (scanner.Result, error)
}

type Runner struct {
	Store  store.Store
	States runstate.Registry
	// NewCrawler returns the crawler of one audit; screenshots are filed
	// under auditID.
	NewCrawler  func(auditID string) Crawler
	NewAnalyzer func(categories []string) Analyzer
	// Grace is how long the run state outlives a finished run.
	Grace time.Duration
	Now   func() time.Time
	NewID func() string
}

func NewRunner(st store.Store, states runstate.Registry, newCrawler func(auditID string) Crawler, grace time.Duration) *Runner {
	return &Runner{
		Store:      st,
		States:     states,
		NewCrawler: newCrawler,
		Grace:      grace,
	}
}

type PageResult struct {
	store.Page
	Issues []report.Issue `json:"issues"`
}

type Result struct {
	AuditID     string              `json:"auditId"`
	Status      runstate.Status     `json:"status"`
	Score       scoring.GlobalScore `json:"score"`
	Pages       []PageResult        `json:"pages"`
	IssuesFound int                 `json:"issuesFound"`
	Summary     string              `json:"summary,omitempty"`
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

func (r *Runner) analyzer(categories []string) Analyzer {
	if r.NewAnalyzer != nil {
		return r.NewAnalyzer(categories)
	}
	return scanner.New(categories)
}

func (r *Runner) grace() time.Duration {
	if r.Grace > 0 {
		return r.Grace
	}
	return defaultGrace
}

// Create persists a QUEUED audit for startURL and registers its run state.
func (r *Runner) Create(ctx context.Context, startURL string, cfg config.ScanConfig) (string, error) {
	id := r.newID()
	if err := r.Store.CreateAudit(ctx, store.NewAudit(id, startURL, cfg, r.now())); err != nil {
		return "", fmt.Errorf("create audit: %w", err)
	}
	if err := r.States.Create(ctx, id, cfg.MaxPages); err != nil {
		slog.Warn("run state unavailable", "audit_id", id, "error", err)
	}
	slog.Info("audit queued", "audit_id", id, "url", report.SanitizeURL(startURL), "max_pages", cfg.MaxPages, "max_depth", cfg.MaxDepth)
	return id, nil
}

// Run drives a created audit to COMPLETED or FAILED. A run-level failure is
// recorded on the audit and also returned. The run state expires after the
// grace period either way.
func (r *Runner) Run(ctx context.Context, id, startURL string, cfg config.ScanConfig) (Result, error) {
	a := &auditRun{
		r:      r,
		id:     id,
		url:    startURL,
		cfg:    cfg,
		bg:     context.WithoutCancel(ctx),
		m:      machine{status: runstate.StatusQueued},
		logger: slog.With("audit_id", id),
		res:    Result{AuditID: id, Status: runstate.StatusQueued, Pages: []PageResult{}},
	}
	defer a.expire()

	if err := a.execute(ctx); err != nil {
		a.fail(ctx, err)
		return a.res, err
	}
	return a.res, nil
}

type auditRun struct {
	r      *Runner
	id     string
	url    string
	cfg    config.ScanConfig
	bg     context.Context
	m      machine
	logger *slog.Logger
	res    Result
}

func (a *auditRun) execute(ctx context.Context) error {
	r := a.r
	if err := a.transition(runstate.StatusCrawling); err != nil {
		return err
	}
	if err := r.Store.MarkCrawling(ctx, a.id, r.now()); err != nil {
		return fmt.Errorf("mark crawling: %w", err)
	}
	a.log(msges.GetUIMessage("LogCrawlStart"))

	pages, err := r.NewCrawler(a.id).Crawl(ctx, a.url, a.cfg, a.log, a.progress)
	if err != nil {
		return err
	}

	n := len(pages)
	if err := a.transition(runstate.StatusAnalyzing); err != nil {
		return err
	}
	a.progress(n, n)
	if err := r.Store.MarkAnalyzing(ctx, a.id, n); err != nil {
		return fmt.Errorf("mark analyzing: %w", err)
	}
	a.log(msges.GetUIMessage("LogAnalyzePages", n))

	analyzer := r.analyzer(a.cfg.Categories)
	perCategory := make(map[checks.Category][]int)
	for i, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.log(msges.GetUIMessage("LogAnalyzePage", i+1, n, report.SanitizeURL(p.URL)))
		pr, err := a.analyzePage(ctx, analyzer, p)
		if err != nil {
			return err
		}
		for cat, s := range pr.ScoreBreakdown {
			perCategory[cat] = append(perCategory[cat], s)
		}
		a.res.Pages = append(a.res.Pages, pr)
	}

	final := scoring.ComputeGlobalScore(scoring.AverageCategoryScores(perCategory))
	err = r.Store.Complete(ctx, a.id, store.Summary{
		GlobalScore:    final.Global,
		ScoreBreakdown: final.Categories,
		IssuesFound:    a.res.IssuesFound,
		PagesScanned:   n,
		CompletedAt:    r.now(),
	})
	if err != nil {
		return fmt.Errorf("complete audit: %w", err)
	}
	a.res.Score = final
	if err := a.transition(runstate.StatusCompleted); err != nil {
		return err
	}
	a.log(msges.GetUIMessage("LogAuditDone", final.Global, a.res.IssuesFound))
	return nil
}

func (a *auditRun) analyzePage(ctx context.Context, analyzer Analyzer, p crawler.CrawledPage) (PageResult, error) {
	pc := ctxpkg.New(p.URL, p.Title, p.HTML)
	pc.StatusCode = p.StatusCode
	if p.Screenshots != nil {
		pc.Screenshots = p.Screenshots
	}

	out, err := analyzer.Run(ctx, pc, a.log)
	if err != nil {
		return PageResult{}, err
	}
	score := scoring.ComputeGlobalScore(out.Scores)
	rec := store.Page{
		URL:                p.URL,
		Title:              p.Title,
		Screenshots:        pc.Screenshots,
		PerformanceMetrics: performanceMetrics(out.Metadata),
		PageScore:          score.Global,
		ScoreBreakdown:     score.Categories,
		StatusCode:         p.StatusCode,
	}
	pageID, err := a.r.Store.SavePage(ctx, a.id, rec)
	if err != nil {
		return PageResult{}, fmt.Errorf("save page: %w", err)
	}
	rec.ID = pageID
	if err := a.r.Store.SaveIssues(ctx, a.id, pageID, out.Issues); err != nil {
		return PageResult{}, fmt.Errorf("save issues: %w", err)
	}

	a.res.IssuesFound += len(out.Issues)
	if err := a.r.States.AddIssues(a.bg, a.id, len(out.Issues)); err != nil {
		a.logger.Warn("run state update failed", "error", err)
	}
	return PageResult{Page: rec, Issues: out.Issues}, nil
}

func performanceMetrics(meta map[string]any) map[string]any {
	if m, ok := meta[string(checks.CategoryPerformance)].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func (a *auditRun) transition(to runstate.Status) error {
	if err := a.m.move(to); err != nil {
		return err
	}
	a.res.Status = to
	if err := a.r.States.SetStatus(a.bg, a.id, to); err != nil {
		a.logger.Warn("run state update failed", "status", to, "error", err)
	}
	a.logger.Info("audit status", "status", to)
	return nil
}

func (a *auditRun) log(line string) {
	stamped := "[" + a.r.now().Format(logTimeStamp) + "] " + line
	if err := a.r.States.AppendLog(a.bg, a.id, stamped); err != nil {
		a.logger.Debug("run log dropped", "error", err)
	}
}

func (a *auditRun) progress(scanned, total int) {
	if err := a.r.States.SetProgress(a.bg, a.id, scanned, total); err != nil {
		a.logger.Debug("run progress dropped", "error", err)
	}
}

func (a *auditRun) fail(ctx context.Context, cause error) {
	msg := cause.Error()
	if ctx.Err() != nil || errors.Is(cause, context.Canceled) {
		msg = msges.GetUIMessage("AuditCancelled")
	}
	msg = report.SanitizeText(msg)
	a.log(msges.GetUIMessage("LogAuditError", msg))
	a.logger.Error("audit failed", "error", msg)

	summary := msges.GetUIMessage("SummaryError", msg)
	a.res.Summary = summary
	if err := a.transition(runstate.StatusFailed); err != nil {
		a.logger.Error("audit failed outside a running state", "status", a.m.status, "error", err)
	}

	wctx, cancel := context.WithTimeout(a.bg, cleanupWrite)
	defer cancel()
	if err := a.r.Store.Fail(wctx, a.id, summary, a.r.now()); err != nil {
		a.logger.Error("could not record failure", "error", err)
	}
}

func (a *auditRun) expire() {
	wctx, cancel := context.WithTimeout(a.bg, cleanupWrite)
	defer cancel()
	if err := a.r.States.Expire(wctx, a.id, a.r.grace()); err != nil {
		a.logger.Debug("run state expiry failed", "error", err)
	}
}
