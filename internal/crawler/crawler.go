package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/MOYARU/uxaudit/internal/config"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
)

var ErrNoStartURL = errors.New("crawler: start URL must be an absolute http(s) URL")

// CrawledPage is one rendered page. It is not modified after Crawl returns.
type CrawledPage struct {
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	HTML        string            `json:"-"`
	StatusCode  int               `json:"statusCode"`
	Screenshots map[string]string `json:"screenshots"`
	Depth       int               `json:"depth"`
}

// Launcher starts the single browser process used by one crawl.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser hands out isolated pages. Each page gets its own browsing context
// so cookies and storage do not leak between pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Page interface {
	// Navigate loads rawURL and waits for the network to go idle, bounded by
	// timeout.
	Navigate(ctx context.Context, rawURL string, timeout time.Duration) error
	Title(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// StatusCode is the status of the main document response, 200 when
	// none was observed.
	StatusCode() int
	SetViewport(ctx context.Context, width, height int) error
	FullScreenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// ArtifactStore persists screenshots and returns the reference recorded on
// the page.
type ArtifactStore interface {
	Put(ctx context.Context, auditID, name string, data []byte) (string, error)
}

type Crawler struct {
	Launcher  Launcher
	Artifacts ArtifactStore
	AuditID   string

	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ViewportSettle    time.Duration
}

type queueItem struct {
	url   string
	depth int
}

// New returns a crawler for one audit using the timings of policy.
func New(launcher Launcher, artifacts ArtifactStore, auditID string, policy config.AuditPolicy) *Crawler {
	return &Crawler{
		Launcher:          launcher,
		Artifacts:         artifacts,
		AuditID:           auditID,
		NavigationTimeout: policy.NavigationTimeout,
		SettleDelay:       policy.SettleDelay,
		ViewportSettle:    policy.ViewportSettle,
	}
}

// Crawl walks same-host pages breadth first from startURL until the queue
// is empty or cfg.MaxPages pages are collected. A page that fails to load
// or capture is logged and skipped. The browser is closed before Crawl
// returns, whatever the outcome.
func (c *Crawler) Crawl(ctx context.Context, startURL string, cfg config.ScanConfig, onLog func(string), onProgress func(scanned, total int)) ([]CrawledPage, error) {
	if onLog == nil {
		onLog = func(string) {}
	}
	if onProgress == nil {
		onProgress = func(int, int) {}
	}

	start, err := url.Parse(strings.TrimSpace(startURL))
	if err != nil || (start.Scheme != "http" && start.Scheme != "https") || start.Hostname() == "" {
		return nil, ErrNoStartURL
	}
	start.Fragment = ""
	start.RawFragment = ""

	onLog(msges.GetUIMessage("LogBrowserLaunch"))
	browser, err := c.Launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := browser.Close(); cerr != nil {
			slog.Warn("browser close failed", "audit_id", c.AuditID, "error", cerr)
		}
	}()

	pages := make([]CrawledPage, 0, cfg.MaxPages)
	visited := make(map[string]bool)
	queued := make(map[string]bool)
	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && len(pages) < cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		item := queue[0]
		queue = queue[1:]
		key, ok := normalizeURL(item.url)
		if !ok || visited[key] {
			continue
		}
		visited[key] = true

		onLog(msges.GetUIMessage("LogScanPage", len(pages)+1, cfg.MaxPages, report.SanitizeURL(item.url), item.depth))
		onProgress(len(pages), min(len(queue)+len(pages)+1, cfg.MaxPages))

		page, err := c.render(ctx, browser, item, cfg.Viewports, len(pages))
		if err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			slog.Debug("page skipped", "audit_id", c.AuditID, "url", report.SanitizeURL(item.url), "error", err)
			onLog(msges.GetUIMessage("LogPageError", report.SanitizeText(err.Error())))
			continue
		}
		pages = append(pages, page)

		if item.depth < cfg.MaxDepth {
			base, _ := url.Parse(item.url)
			links := extractLinks(base, page.HTML)
			for _, link := range links {
				if len(pages)+len(queue) >= cfg.MaxPages {
					break
				}
				lk, ok := normalizeURL(link)
				if !ok || visited[lk] || queued[lk] {
					continue
				}
				queued[lk] = true
				queue = append(queue, queueItem{url: link, depth: item.depth + 1})
			}
			onLog(msges.GetUIMessage("LogLinksFound", len(links)))
		}

		if len(queue) > 0 && len(pages) < cfg.MaxPages {
			if err := sleep(ctx, cfg.Delay()); err != nil {
				return pages, err
			}
		}
	}

	onProgress(len(pages), len(pages))
	onLog(msges.GetUIMessage("LogCrawlDone", len(pages)))
	return pages, nil
}

// render captures one page in its own browsing context. index is the number
// of pages collected so far and prefixes the screenshot names.
func (c *Crawler) render(ctx context.Context, browser Browser, item queueItem, viewports []config.Viewport, index int) (CrawledPage, error) {
	p, err := browser.NewPage(ctx)
	if err != nil {
		return CrawledPage{}, fmt.Errorf("new page: %w", err)
	}
	defer p.Close()

	if err := p.Navigate(ctx, item.url, c.NavigationTimeout); err != nil {
		return CrawledPage{}, err
	}
	if err := sleep(ctx, c.SettleDelay); err != nil {
		return CrawledPage{}, err
	}

	title, err := p.Title(ctx)
	if err != nil {
		return CrawledPage{}, fmt.Errorf("read title: %w", err)
	}
	doc, err := p.HTML(ctx)
	if err != nil {
		return CrawledPage{}, fmt.Errorf("read html: %w", err)
	}

	shots := make(map[string]string, len(viewports))
	for _, vp := range viewports {
		if err := p.SetViewport(ctx, vp.Width, vp.Height); err != nil {
			return CrawledPage{}, fmt.Errorf("viewport %s: %w", vp.Name, err)
		}
		if err := sleep(ctx, c.ViewportSettle); err != nil {
			return CrawledPage{}, err
		}
		png, err := p.FullScreenshot(ctx)
		if err != nil {
			return CrawledPage{}, fmt.Errorf("screenshot %s: %w", vp.Name, err)
		}
		ref, err := c.Artifacts.Put(ctx, c.AuditID, fmt.Sprintf("p%d-%s.png", index, vp.Name), png)
		if err != nil {
			return CrawledPage{}, fmt.Errorf("store screenshot %s: %w", vp.Name, err)
		}
		shots[vp.Name] = ref
	}

	return CrawledPage{
		URL:         item.url,
		Title:       title,
		HTML:        doc,
		StatusCode:  p.StatusCode(),
		Screenshots: shots,
		Depth:       item.depth,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
