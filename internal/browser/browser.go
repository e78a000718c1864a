// Package browser drives a local Chrome through the DevTools protocol and
// implements the crawler's Launcher.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/crawler"
	"github.com/MOYARU/uxaudit/internal/version"
)

const defaultNavigationTimeout = 30 * time.Second

type Launcher struct {
	ExecPath  string
	Headless  bool
	UserAgent string
}

func NewLauncher(cfg config.Config) *Launcher {
	return &Launcher{
		ExecPath:  cfg.ChromePath,
		Headless:  cfg.Headless,
		UserAgent: version.BrowserUserAgent(),
	}
}

// Launch starts one Chrome process. It stays up until Close.
func (l *Launcher) Launch(ctx context.Context) (crawler.Browser, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", l.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.UserAgent(l.UserAgent),
	)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return &Browser{ctx: browserCtx, cancel: browserCancel, allocCancel: allocCancel}, nil
}

type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	once        sync.Once
}

// NewPage opens a tab in a fresh browser context, so no cookies or storage
// are shared with earlier pages.
func (b *Browser) NewPage(ctx context.Context) (crawler.Page, error) {
	pctx, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(pctx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	p := &Page{ctx: pctx, cancel: cancel, idle: make(chan struct{}, 1)}
	chromedp.ListenTarget(pctx, p.onEvent)
	return p, nil
}

func (b *Browser) Close() error {
	var err error
	b.once.Do(func() {
		err = chromedp.Cancel(b.ctx)
		b.cancel()
		b.allocCancel()
	})
	return err
}

type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	idle   chan struct{}

	mu        sync.Mutex
	requested string
	status    int
}

func (p *Page) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		p.recordStatus(e.Response.URL, int(e.Response.Status))
	case *page.EventLifecycleEvent:
		switch e.Name {
		case "init":
			p.drainIdle()
		case "networkIdle":
			select {
			case p.idle <- struct{}{}:
			default:
			}
		}
	}
}

// recordStatus keeps the first document response for the requested URL.
func (p *Page) recordStatus(responseURL string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != 0 {
		return
	}
	if responseURL == p.requested || responseURL == p.requested+"/" {
		p.status = status
	}
}

func (p *Page) drainIdle() {
	select {
	case <-p.idle:
	default:
	}
}

// Navigate fails when the load does not finish within timeout. Not seeing
// networkIdle before the deadline is fine.
func (p *Page) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultNavigationTimeout
	}
	p.mu.Lock()
	p.requested = rawURL
	p.status = 0
	p.mu.Unlock()
	p.drainIdle()

	tctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(tctx,
		network.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(rawURL),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}

	select {
	case <-p.idle:
	case <-tctx.Done():
	}
	return ctx.Err()
}

func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	rctx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(rctx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	var doc string
	err := p.run(ctx, chromedp.OuterHTML("html", &doc, chromedp.ByQuery))
	return doc, err
}

func (p *Page) StatusCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == 0 {
		return 200
	}
	return p.status
}

func (p *Page) SetViewport(ctx context.Context, width, height int) error {
	return p.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

// FullScreenshot captures the whole page as PNG.
func (p *Page) FullScreenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 100))
	return buf, err
}

func (p *Page) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	return err
}
