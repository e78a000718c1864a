package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MOYARU/uxaudit/internal/checks"
	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/checks/scanner"
	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/crawler"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/store"
)

var fixedNow = time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)

type fakeCrawler struct {
	pages []crawler.CrawledPage
	err   error
	// during runs inside Crawl before it returns
	during func(onLog func(string), onProgress func(int, int))
}

func (f *fakeCrawler) Crawl(ctx context.Context, startURL string, cfg config.ScanConfig, onLog func(string), onProgress func(scanned, total int)) ([]crawler.CrawledPage, error) {
	if f.during != nil {
		f.during(onLog, onProgress)
	}
	return f.pages, f.err
}

type fakeAnalyzer struct {
	results map[string]scanner.Result
}

func (f *fakeAnalyzer) Run(ctx context.Context, page *ctxpkg.Context, onLog func(string)) (scanner.Result, error) {
	onLog("analyzing " + page.URL)
	return f.results[page.URL], nil
}

// recordingStates records status writes and expiry on top of a real registry.
type recordingStates struct {
	*runstate.Memory
	statuses []runstate.Status
	expired  time.Duration
}

func (s *recordingStates) SetStatus(ctx context.Context, id string, status runstate.Status) error {
	s.statuses = append(s.statuses, status)
	return s.Memory.SetStatus(ctx, id, status)
}

func (s *recordingStates) Expire(ctx context.Context, id string, after time.Duration) error {
	s.expired = after
	return nil
}

type failingStore struct {
	*store.Memory
	failSavePage bool
	failCtxErr   error
}

func (s *failingStore) SavePage(ctx context.Context, auditID string, p store.Page) (string, error) {
	if s.failSavePage {
		return "", errors.New("connection refused")
	}
	return s.Memory.SavePage(ctx, auditID, p)
}

func (s *failingStore) Fail(ctx context.Context, id, summary string, at time.Time) error {
	s.failCtxErr = ctx.Err()
	return s.Memory.Fail(ctx, id, summary, at)
}

type harness struct {
	runner *Runner
	store  *failingStore
	states *recordingStates
}

func newHarness(t *testing.T, c Crawler, a Analyzer) *harness {
	t.Helper()
	mem := runstate.NewMemory()
	t.Cleanup(mem.Close)
	h := &harness{
		store:  &failingStore{Memory: store.NewMemory()},
		states: &recordingStates{Memory: mem},
	}
	h.runner = NewRunner(h.store, h.states, func(string) Crawler { return c }, 0)
	h.runner.Now = func() time.Time { return fixedNow }
	h.runner.NewID = func() string { return "audit-1" }
	if a != nil {
		h.runner.NewAnalyzer = func([]string) Analyzer { return a }
	}
	return h
}

func (h *harness) run(t *testing.T, ctx context.Context) (Result, error) {
	t.Helper()
	cfg := config.NewScanConfig(5, 1, 0, nil, nil)
	id, err := h.runner.Create(ctx, "https://example.com/", cfg)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return h.runner.Run(ctx, id, "https://example.com/", cfg)
}

func statusList(s []runstate.Status) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}

func hasLog(logs []string, want string) bool {
	for _, l := range logs {
		if l == want {
			return true
		}
	}
	return false
}

func TestRunCompletes(t *testing.T) {
	c := &fakeCrawler{
		pages: []crawler.CrawledPage{
			{URL: "https://example.com/", Title: "Home", StatusCode: 200, Screenshots: map[string]string{"desktop": "/screenshots/audit-1/p0-desktop.png"}},
			{URL: "https://example.com/about", Title: "About", StatusCode: 404},
		},
		during: func(onLog func(string), onProgress func(int, int)) {
			onProgress(0, 1)
			onProgress(1, 3)
			onProgress(2, 2)
		},
	}
	a := &fakeAnalyzer{results: map[string]scanner.Result{
		"https://example.com/": {
			Scores:   map[checks.Category]int{checks.CategoryAccessibility: 80, checks.CategorySEO: 60},
			Issues:   []report.Issue{{ID: "A11Y_IMG_ALT"}, {ID: "SEO_TITLE_SHORT"}},
			Metadata: map[string]any{"PERFORMANCE": map[string]any{"htmlSizeKB": 1.5}},
		},
		"https://example.com/about": {
			Scores: map[checks.Category]int{checks.CategoryAccessibility: 100, checks.CategorySEO: 80},
			Issues: []report.Issue{{ID: "SEO_NO_CANONICAL"}},
		},
	}}
	h := newHarness(t, c, a)

	res, err := h.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Status != runstate.StatusCompleted {
		t.Fatalf("status = %s", res.Status)
	}
	// ACCESSIBILITY 90, SEO 70: (90*.20 + 70*.15) / .35 = 81.4
	if res.Score.Global != 81 || res.Score.Categories[checks.CategorySEO] != 70 {
		t.Fatalf("score = %+v", res.Score)
	}
	if res.IssuesFound != 3 || len(res.Pages) != 2 {
		t.Fatalf("issues=%d pages=%d", res.IssuesFound, len(res.Pages))
	}
	// (80*.20 + 60*.15) / .35 = 71.4
	if res.Pages[0].PageScore != 71 {
		t.Fatalf("page score = %d", res.Pages[0].PageScore)
	}
	if res.Pages[0].PerformanceMetrics["htmlSizeKB"] != 1.5 {
		t.Fatalf("performance metrics = %v", res.Pages[0].PerformanceMetrics)
	}
	if res.Pages[1].PerformanceMetrics == nil || len(res.Pages[1].PerformanceMetrics) != 0 {
		t.Fatalf("missing metrics should be empty: %v", res.Pages[1].PerformanceMetrics)
	}
	if res.Pages[1].StatusCode != 404 || res.Pages[0].Screenshots["desktop"] == "" {
		t.Fatalf("page record = %+v", res.Pages)
	}

	if got := statusList(h.states.statuses); got != "CRAWLING,ANALYZING,COMPLETED" {
		t.Fatalf("status sequence = %s", got)
	}
	if h.states.expired != 10*time.Minute {
		t.Fatalf("expire grace = %v", h.states.expired)
	}

	snap, err := h.states.Get(context.Background(), "audit-1")
	if err != nil {
		t.Fatalf("run state: %v", err)
	}
	if snap.Status != runstate.StatusCompleted || snap.PagesScanned != 2 || snap.TotalPages != 2 || snap.IssuesFound != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
	for _, want := range []string{
		"[15:04:05] Starting crawl...",
		"[15:04:05] Crawl finished. Analyzing 2 pages...",
		"[15:04:05] Analyzing page 1/2: https://example.com/",
		"[15:04:05] analyzing https://example.com/about",
		"[15:04:05] Audit finished! Score: 81/100, 3 issues.",
	} {
		if !hasLog(snap.Logs, want) {
			t.Fatalf("missing log %q in %v", want, snap.Logs)
		}
	}

	stored, _ := h.store.Get(context.Background(), "audit-1")
	if stored.Status != runstate.StatusCompleted || stored.GlobalScore == nil || *stored.GlobalScore != 81 {
		t.Fatalf("stored audit = %+v", stored)
	}
	if stored.PagesScanned != 2 || stored.IssuesFound != 3 || stored.StartedAt == nil {
		t.Fatalf("stored audit = %+v", stored)
	}
	if issues := h.store.Issues("audit-1"); len(issues) != 3 || issues[2].PageID != res.Pages[1].ID {
		t.Fatalf("stored issues = %+v", issues)
	}
}

func TestRunZeroPagesCompletesWithZeroScore(t *testing.T) {
	h := newHarness(t, &fakeCrawler{}, &fakeAnalyzer{})
	res, err := h.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Status != runstate.StatusCompleted || res.Score.Global != 0 || len(res.Score.Categories) != 0 {
		t.Fatalf("result = %+v", res)
	}
	stored, _ := h.store.Get(context.Background(), "audit-1")
	if stored.GlobalScore == nil || *stored.GlobalScore != 0 || stored.TotalPages != 0 {
		t.Fatalf("stored audit = %+v", stored)
	}
}

func TestRunCrawlFailure(t *testing.T) {
	h := newHarness(t, &fakeCrawler{err: errors.New("launch browser: chrome missing")}, &fakeAnalyzer{})
	res, err := h.run(t, context.Background())
	if err == nil {
		t.Fatalf("Run() succeeded")
	}
	if res.Status != runstate.StatusFailed || res.Summary != "Error: launch browser: chrome missing" {
		t.Fatalf("result = %+v", res)
	}
	if got := statusList(h.states.statuses); got != "CRAWLING,FAILED" {
		t.Fatalf("status sequence = %s", got)
	}
	snap, _ := h.states.Get(context.Background(), "audit-1")
	if !hasLog(snap.Logs, "[15:04:05] ERROR: launch browser: chrome missing") {
		t.Fatalf("logs = %v", snap.Logs)
	}
	stored, _ := h.store.Get(context.Background(), "audit-1")
	if stored.Status != runstate.StatusFailed || stored.Summary != res.Summary || stored.CompletedAt == nil {
		t.Fatalf("stored audit = %+v", stored)
	}
	if h.states.expired != 10*time.Minute {
		t.Fatalf("run state not expired after failure")
	}
}

func TestRunPersistenceFailureDuringAnalysis(t *testing.T) {
	c := &fakeCrawler{pages: []crawler.CrawledPage{{URL: "https://example.com/"}}}
	h := newHarness(t, c, &fakeAnalyzer{results: map[string]scanner.Result{}})
	h.store.failSavePage = true

	res, err := h.run(t, context.Background())
	if err == nil || !strings.Contains(err.Error(), "save page") {
		t.Fatalf("err = %v", err)
	}
	if got := statusList(h.states.statuses); got != "CRAWLING,ANALYZING,FAILED" {
		t.Fatalf("status sequence = %s", got)
	}
	if res.Summary != "Error: save page: connection refused" {
		t.Fatalf("summary = %q", res.Summary)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &fakeCrawler{
		during: func(func(string), func(int, int)) { cancel() },
		err:    context.Canceled,
	}
	h := newHarness(t, c, &fakeAnalyzer{})

	res, err := h.run(t, ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if res.Summary != "Error: audit cancelled" {
		t.Fatalf("summary = %q", res.Summary)
	}
	if h.store.failCtxErr != nil {
		t.Fatalf("failure was recorded with a dead context: %v", h.store.failCtxErr)
	}
	stored, _ := h.store.Get(context.Background(), "audit-1")
	if stored.Status != runstate.StatusFailed {
		t.Fatalf("stored status = %s", stored.Status)
	}
}

func TestRunProgressNeverDecreases(t *testing.T) {
	var seen []int
	c := &fakeCrawler{
		pages: []crawler.CrawledPage{{URL: "https://example.com/"}},
		during: func(_ func(string), onProgress func(int, int)) {
			onProgress(3, 5)
			onProgress(1, 5)
		},
	}
	h := newHarness(t, c, &fakeAnalyzer{results: map[string]scanner.Result{}})
	h.runner.NewCrawler = func(string) Crawler {
		return &fakeCrawler{pages: c.pages, during: func(onLog func(string), onProgress func(int, int)) {
			c.during(onLog, func(s, total int) {
				onProgress(s, total)
				snap, _ := h.states.Get(context.Background(), "audit-1")
				seen = append(seen, snap.PagesScanned)
			})
		}}
	}

	if _, err := h.run(t, context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 3 {
		t.Fatalf("pagesScanned over time = %v", seen)
	}
}

func TestRunWithDefaultAnalyzers(t *testing.T) {
	c := &fakeCrawler{pages: []crawler.CrawledPage{{
		URL:        "https://example.com/",
		Title:      "Example Domain for testing audits",
		HTML:       `<html lang="en"><head><meta name="viewport" content="width=device-width"></head><body><main><h1>Hello</h1></main></body></html>`,
		StatusCode: 200,
	}}}
	h := newHarness(t, c, nil)

	res, err := h.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Score.Categories) != len(checks.Categories) {
		t.Fatalf("breakdown = %v", res.Score.Categories)
	}
	if res.Score.Global < 0 || res.Score.Global > 100 {
		t.Fatalf("global score out of range: %d", res.Score.Global)
	}
	snap, _ := h.states.Get(context.Background(), "audit-1")
	if !hasLog(snap.Logs, "[15:04:05] [1/8] Analyzing: Accessibility...") {
		t.Fatalf("logs = %v", snap.Logs)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to runstate.Status
		want     bool
	}{
		{runstate.StatusQueued, runstate.StatusCrawling, true},
		{runstate.StatusQueued, runstate.StatusFailed, false},
		{runstate.StatusCrawling, runstate.StatusAnalyzing, true},
		{runstate.StatusCrawling, runstate.StatusFailed, true},
		{runstate.StatusCrawling, runstate.StatusCompleted, false},
		{runstate.StatusAnalyzing, runstate.StatusCompleted, true},
		{runstate.StatusAnalyzing, runstate.StatusFailed, true},
		{runstate.StatusCompleted, runstate.StatusFailed, false},
		{runstate.StatusFailed, runstate.StatusCrawling, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("CanTransition(%s, %s) = %v", tt.from, tt.to, got)
		}
	}

	m := machine{status: runstate.StatusCompleted}
	if err := m.move(runstate.StatusCrawling); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("move from terminal: %v", err)
	}
}
