package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MOYARU/uxaudit/internal/app/output"
	"github.com/MOYARU/uxaudit/internal/app/ui"
	"github.com/MOYARU/uxaudit/internal/artifacts"
	"github.com/MOYARU/uxaudit/internal/audit"
	"github.com/MOYARU/uxaudit/internal/browser"
	"github.com/MOYARU/uxaudit/internal/checks"
	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/crawler"
	"github.com/MOYARU/uxaudit/internal/engine"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/status"
	"github.com/MOYARU/uxaudit/internal/store"
)

// ErrAuditFailed is returned when the audit ran but ended FAILED.
var ErrAuditFailed = errors.New("audit failed")

const progressEvery = 500 * time.Millisecond

type Options struct {
	Target     string
	MaxPages   int
	Depth      int
	DelayMs    int
	Categories []string
	JSON       bool
	// StatusAddr starts the status endpoint when set.
	StatusAddr string
	// Serve keeps the status endpoint up after the audit until interrupted.
	Serve  bool
	Policy config.AuditPolicy
}

// DefaultOptions starts from the policy file; flags override it.
func DefaultOptions() Options {
	return OptionsFromPolicy(config.LoadAuditPolicy())
}

func OptionsFromPolicy(p config.AuditPolicy) Options {
	return Options{
		MaxPages:   p.MaxPages,
		Depth:      p.MaxDepth,
		DelayMs:    p.DelayMs,
		Categories: append([]string(nil), p.Categories...),
		Policy:     p,
	}
}

func RunScan(opts Options) error {
	loadEnv()
	ctx, cancel := ui.WaitForCancel(context.Background())
	defer cancel()
	return run(ctx, opts, config.Load())
}

func loadEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err == nil {
			slog.Debug("environment loaded", "file", f)
		}
	}
}

func run(ctx context.Context, opts Options, cfg config.Config) error {
	target, err := engine.NormalizeTarget(ctx, opts.Target)
	if err != nil {
		return err
	}
	// Fast-fail for invalid/non-existent hosts to improve user feedback.
	if err := engine.ValidateHost(ctx, target); err != nil {
		return fmt.Errorf("target is not reachable: %w", err)
	}

	categories, err := parseCategories(opts.Categories)
	if err != nil {
		return err
	}
	scanCfg := config.NewScanConfig(opts.MaxPages, opts.Depth, opts.DelayMs, opts.Policy.Viewports, categories)

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	launcher := browser.NewLauncher(cfg)
	runner := audit.NewRunner(b.store, b.states, func(auditID string) audit.Crawler {
		return crawler.New(launcher, b.artifacts, auditID, opts.Policy)
	}, opts.Policy.StateGrace)

	id, err := runner.Create(ctx, target, scanCfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("Target", report.SanitizeURL(target)), ui.ColorReset)
	fmt.Printf("%s%s%s\n", ui.ColorWhite, msges.GetUIMessage("AuditID", id), ui.ColorReset)
	fmt.Printf("%s%s%s\n", ui.ColorGray, msges.GetUIMessage("ScanConfigLine", scanCfg.MaxPages, scanCfg.MaxDepth, scanCfg.DelayBetweenRequests, viewportNames(scanCfg.Viewports)), ui.ColorReset)

	statusAddr := opts.StatusAddr
	if statusAddr == "" {
		statusAddr = cfg.StatusAddr
	}

	g, gctx := errgroup.WithContext(ctx)
	srvCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()
	if statusAddr != "" {
		srv := status.NewServer(b.states, b.store)
		fmt.Printf("%s%s%s\n", ui.ColorGray, msges.GetUIMessage("StatusServer", statusAddr), ui.ColorReset)
		g.Go(func() error {
			return srv.ListenAndServe(srvCtx, statusAddr)
		})
	}

	var runErr error
	g.Go(func() error {
		if !opts.Serve {
			defer stopServer()
		}
		runErr = runAudit(gctx, runner, b.states, id, target, scanCfg, opts.JSON)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("status endpoint: %w", err)
	}
	return runErr
}

func runAudit(ctx context.Context, runner *audit.Runner, states runstate.Registry, id, target string, cfg config.ScanConfig, jsonOutput bool) error {
	fmt.Printf("%s%s%s\n", ui.ColorGray, msges.GetUIMessage("StatusReady"), ui.ColorReset)
	startTime := time.Now()

	stopProgress := watchProgress(ctx, states, id)
	res, err := runner.Run(ctx, id, target, cfg)
	stopProgress()
	endTime := time.Now()

	if ctx.Err() != nil {
		fmt.Printf("\n%s%s%s\n", ui.ColorYellow, msges.GetUIMessage("ScanCancelled"), ui.ColorReset)
	}
	if err != nil {
		fmt.Printf("\n%s%s%s\n", ui.ColorRed, msges.GetUIMessage("ConsoleAuditFailed", res.Summary), ui.ColorReset)
		return fmt.Errorf("%w: %s", ErrAuditFailed, res.Summary)
	}

	fmt.Printf("\n%s%s%s\n", ui.ColorGreen, msges.GetUIMessage("AuditCompleted", endTime.Sub(startTime).Seconds()), ui.ColorReset)
	output.PrintPages(res.Pages)
	output.PrintIssues(res.Pages)
	output.PrintScores(res.Score)

	if jsonOutput {
		name, err := output.SaveJSONReport(target, res, startTime, endTime)
		if err != nil {
			fmt.Printf("[Error] %s\n", msges.GetUIMessage("JSONReportFailed", err))
		} else {
			fmt.Printf("\n%s\n", msges.GetUIMessage("JSONReportSaved", name))
		}
	}
	return nil
}

// watchProgress polls the run state and redraws the progress bar until the
// returned stop function is called.
func watchProgress(ctx context.Context, states runstate.Registry, id string) func() {
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(progressEvery)
		defer ticker.Stop()

		var last runstate.Snapshot
		draw := func() {
			snap, err := states.Get(context.WithoutCancel(ctx), id)
			if err != nil {
				return
			}
			if snap.Status == last.Status && snap.PagesScanned == last.PagesScanned && len(snap.Logs) == len(last.Logs) {
				return
			}
			last = snap
			line := ""
			if n := len(snap.Logs); n > 0 {
				line = stripStamp(snap.Logs[n-1])
			}
			output.PrintScanProgress(snap.PagesScanned, snap.TotalPages, snap.Status, line)
		}

		for {
			select {
			case <-stopCh:
				draw()
				fmt.Println()
				return
			case <-ticker.C:
				draw()
			}
		}
	}()

	return func() {
		close(stopCh)
		<-doneCh
	}
}

// stripStamp drops the "[15:04:05] " prefix of a run log line.
func stripStamp(line string) string {
	if len(line) > 11 && line[0] == '[' && line[9] == ']' && line[10] == ' ' {
		return line[11:]
	}
	return line
}

// parseCategories accepts wire names in any case, with '-' or ' ' in place
// of '_', separated by commas.
func parseCategories(values []string) ([]string, error) {
	var out []string
	seen := make(map[checks.Category]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToUpper(part))
			c, ok := checks.ParseCategory(name)
			if !ok {
				return nil, fmt.Errorf("unknown category %q", part)
			}
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, string(c))
		}
	}
	return out, nil
}

func viewportNames(vps []config.Viewport) string {
	names := make([]string, 0, len(vps))
	for _, vp := range vps {
		names = append(names, fmt.Sprintf("%s %dx%d", vp.Name, vp.Width, vp.Height))
	}
	return strings.Join(names, ", ")
}

type backends struct {
	states    runstate.Registry
	store     store.Store
	artifacts artifacts.Store
	closers   []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends picks Redis, Postgres and a bucket when they are configured
// and the in-process fallbacks otherwise.
func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.RedisURL != "" {
		r, err := runstate.NewRedis(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("run state: %w", err)
		}
		b.states = r
		b.closers = append(b.closers, func() { _ = r.Close() })
		slog.Info("run state backend", "kind", "redis", "prefix", cfg.RedisPrefix)
	} else {
		m := runstate.NewMemory()
		b.states = m
		b.closers = append(b.closers, m.Close)
		slog.Debug("run state backend", "kind", "memory")
	}

	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("store: %w", err)
		}
		b.closers = append(b.closers, pg.Close)
		if err := pg.Ping(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("store ping: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("store schema: %w", err)
		}
		b.store = pg
		slog.Info("store backend", "kind", "postgres")
	} else {
		b.store = store.NewMemory()
		slog.Debug("store backend", "kind", "memory")
	}

	arts, err := artifacts.FromConfig(cfg)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("screenshots: %w", err)
	}
	b.artifacts = arts
	return b, nil
}
