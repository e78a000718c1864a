package crawler

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/MOYARU/uxaudit/internal/config"
)

type fakeSite struct {
	pages    map[string]string
	status   map[string]int
	failing  map[string]error
	visited  []string
	opened   int
	closed   int
	shutdown int
}

func (s *fakeSite) Launch(ctx context.Context) (Browser, error) { return s, nil }

func (s *fakeSite) NewPage(ctx context.Context) (Page, error) {
	s.opened++
	return &fakePage{site: s}, nil
}

func (s *fakeSite) Close() error {
	s.shutdown++
	return nil
}

type fakePage struct {
	site *fakeSite
	url  string
}

func (p *fakePage) Navigate(ctx context.Context, rawURL string, timeout time.Duration) error {
	p.site.visited = append(p.site.visited, rawURL)
	if err := p.site.failing[rawURL]; err != nil {
		return err
	}
	if _, ok := p.site.pages[rawURL]; !ok {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	p.url = rawURL
	return nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) { return "title " + p.url, nil }

func (p *fakePage) HTML(ctx context.Context) (string, error) { return p.site.pages[p.url], nil }

func (p *fakePage) StatusCode() int {
	if code, ok := p.site.status[p.url]; ok {
		return code
	}
	return 200
}

func (p *fakePage) SetViewport(ctx context.Context, width, height int) error { return nil }

func (p *fakePage) FullScreenshot(ctx context.Context) ([]byte, error) { return []byte("png"), nil }

func (p *fakePage) Close() error {
	p.site.closed++
	return nil
}

type fakeArtifacts struct {
	names []string
}

func (a *fakeArtifacts) Put(ctx context.Context, auditID, name string, data []byte) (string, error) {
	a.names = append(a.names, name)
	return "/screenshots/" + auditID + "/" + name, nil
}

func newSite() *fakeSite {
	return &fakeSite{
		pages: map[string]string{
			"https://example.com/": `<html><body>
				<a href="/a">A</a>
				<a href="/b#top">B</a>
				<a href="https://other.com/x">elsewhere</a>
				<a href="mailto:hi@example.com">mail</a>
				<a href="/logo.png">logo</a>
				<a href="/a">A again</a>
			</body></html>`,
			"https://example.com/a": `<a href="/c">C</a><a href="/">home</a>`,
			"https://example.com/b": `<p>leaf</p>`,
			"https://example.com/c": `<p>deep</p>`,
		},
		status:  map[string]int{"https://example.com/b": 404},
		failing: map[string]error{},
	}
}

func testConfig(maxPages, maxDepth int) config.ScanConfig {
	return config.NewScanConfig(maxPages, maxDepth, 0, []config.Viewport{
		{Name: "desktop", Width: 1920, Height: 1080},
		{Name: "mobile", Width: 375, Height: 812},
	}, nil)
}

func pageURLs(pages []CrawledPage) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.URL)
	}
	return out
}

func TestCrawlBreadthFirstWithinDepth(t *testing.T) {
	tests := []struct {
		name     string
		maxPages int
		maxDepth int
		want     []string
	}{
		{"depth zero", 10, 0, []string{"https://example.com/"}},
		{"depth one", 10, 1, []string{"https://example.com/", "https://example.com/a", "https://example.com/b"}},
		{"depth two", 10, 2, []string{"https://example.com/", "https://example.com/a", "https://example.com/b", "https://example.com/c"}},
		{"page bound", 2, 5, []string{"https://example.com/", "https://example.com/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newSite()
			c := &Crawler{Launcher: site, Artifacts: &fakeArtifacts{}, AuditID: "aud"}
			pages, err := c.Crawl(context.Background(), "https://example.com/", testConfig(tt.maxPages, tt.maxDepth), nil, nil)
			if err != nil {
				t.Fatalf("Crawl() error: %v", err)
			}
			got := pageURLs(pages)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("pages: got=%v want=%v", got, tt.want)
			}
			if site.shutdown != 1 {
				t.Fatalf("browser closed %d times, want 1", site.shutdown)
			}
			if site.opened != site.closed {
				t.Fatalf("opened %d pages, closed %d", site.opened, site.closed)
			}
		})
	}
}

func TestCrawlSinglePageNeverDequeuesLinks(t *testing.T) {
	site := newSite()
	c := &Crawler{Launcher: site, Artifacts: &fakeArtifacts{}, AuditID: "aud"}
	pages, err := c.Crawl(context.Background(), "https://example.com/", testConfig(1, 5), nil, nil)
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if len(pages) != 1 || pages[0].URL != "https://example.com/" {
		t.Fatalf("pages: %v", pageURLs(pages))
	}
	if strings.Join(site.visited, ",") != "https://example.com/" {
		t.Fatalf("navigated to %v, want only the seed", site.visited)
	}
	if site.opened != 1 {
		t.Fatalf("opened %d pages, want 1", site.opened)
	}
}

func TestCrawlCapturesPageData(t *testing.T) {
	site := newSite()
	store := &fakeArtifacts{}
	c := &Crawler{Launcher: site, Artifacts: store, AuditID: "aud"}
	pages, err := c.Crawl(context.Background(), "https://example.com/#intro", testConfig(10, 1), nil, nil)
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if pages[0].URL != "https://example.com/" {
		t.Fatalf("start URL keeps its fragment: %q", pages[0].URL)
	}
	if pages[2].StatusCode != 404 || pages[0].StatusCode != 200 {
		t.Fatalf("status codes: %d %d", pages[0].StatusCode, pages[2].StatusCode)
	}
	if pages[1].Depth != 1 {
		t.Fatalf("depth of %s = %d", pages[1].URL, pages[1].Depth)
	}
	if got := pages[1].Screenshots["mobile"]; got != "/screenshots/aud/p1-mobile.png" {
		t.Fatalf("screenshot ref = %q", got)
	}
	if len(store.names) != 6 {
		t.Fatalf("stored %d screenshots, want 6: %v", len(store.names), store.names)
	}
	if !strings.Contains(pages[0].HTML, `href="/a"`) {
		t.Fatalf("HTML not captured")
	}
}

func TestCrawlSkipsFailingPage(t *testing.T) {
	site := newSite()
	site.failing["https://example.com/a"] = errors.New("navigation timeout")
	var logs []string
	c := &Crawler{Launcher: site, Artifacts: &fakeArtifacts{}, AuditID: "aud"}
	pages, err := c.Crawl(context.Background(), "https://example.com/", testConfig(10, 1), func(s string) { logs = append(logs, s) }, nil)
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	got := pageURLs(pages)
	if strings.Join(got, ",") != "https://example.com/,https://example.com/b" {
		t.Fatalf("pages: %v", got)
	}
	if pages[1].Screenshots["desktop"] != "/screenshots/aud/p1-desktop.png" {
		t.Fatalf("index after a skipped page: %q", pages[1].Screenshots["desktop"])
	}
	want := []string{
		"Launching headless browser...",
		"[1/10] Scanning: https://example.com/ (depth 0)",
		"  -> 2 internal links found",
		"[2/10] Scanning: https://example.com/a (depth 1)",
		"  x Error: navigation timeout",
		"[2/10] Scanning: https://example.com/b (depth 1)",
		"Crawl finished: 2 pages scanned",
	}
	if strings.Join(logs, "\n") != strings.Join(want, "\n") {
		t.Fatalf("logs:\n%s\nwant:\n%s", strings.Join(logs, "\n"), strings.Join(want, "\n"))
	}
	if site.shutdown != 1 || site.opened != site.closed {
		t.Fatalf("resources leaked: shutdown=%d opened=%d closed=%d", site.shutdown, site.opened, site.closed)
	}
}

func TestCrawlProgress(t *testing.T) {
	site := newSite()
	type call struct{ scanned, total int }
	var calls []call
	c := &Crawler{Launcher: site, Artifacts: &fakeArtifacts{}, AuditID: "aud"}
	_, err := c.Crawl(context.Background(), "https://example.com/", testConfig(3, 2), nil, func(s, total int) {
		calls = append(calls, call{s, total})
	})
	if err != nil {
		t.Fatalf("Crawl() error: %v", err)
	}
	if len(calls) == 0 {
		t.Fatalf("no progress reported")
	}
	prev := 0
	for _, c := range calls {
		if c.scanned < prev {
			t.Fatalf("scanned went backwards: %v", calls)
		}
		if c.total > 3 {
			t.Fatalf("total above max pages: %v", calls)
		}
		prev = c.scanned
	}
	if last := calls[len(calls)-1]; last.scanned != 3 || last.total != 3 {
		t.Fatalf("final progress = %+v", last)
	}
}

func TestCrawlCancelledClosesBrowser(t *testing.T) {
	site := newSite()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Crawler{Launcher: site, Artifacts: &fakeArtifacts{}, AuditID: "aud"}
	_, err := c.Crawl(ctx, "https://example.com/", testConfig(10, 1), nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if site.shutdown != 1 {
		t.Fatalf("browser closed %d times", site.shutdown)
	}
}

type failingLauncher struct{}

func (failingLauncher) Launch(ctx context.Context) (Browser, error) {
	return nil, errors.New("chrome not found")
}

func TestCrawlLaunchFailure(t *testing.T) {
	c := &Crawler{Launcher: failingLauncher{}, Artifacts: &fakeArtifacts{}}
	_, err := c.Crawl(context.Background(), "https://example.com/", testConfig(1, 0), nil, nil)
	if err == nil || !strings.Contains(err.Error(), "chrome not found") {
		t.Fatalf("err = %v", err)
	}
}

func TestCrawlRejectsBadStartURL(t *testing.T) {
	for _, raw := range []string{"", "example.com", "ftp://example.com/", "https://"} {
		c := &Crawler{Launcher: newSite(), Artifacts: &fakeArtifacts{}}
		if _, err := c.Crawl(context.Background(), raw, testConfig(1, 0), nil, nil); !errors.Is(err, ErrNoStartURL) {
			t.Fatalf("Crawl(%q) err = %v", raw, err)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "HTTPS://Example.com", want: "https://example.com/", ok: true},
		{raw: "https://example.com:443/path/", want: "https://example.com/path", ok: true},
		{raw: "http://example.com:8080/a?b=2&a=1#x", want: "http://example.com:8080/a?b=2&a=1", ok: true},
		{raw: "https://example.com/docs/#intro", want: "https://example.com/docs", ok: true},
		{raw: "javascript:alert(1)", want: "", ok: false},
		{raw: "/relative", want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := normalizeURL(tt.raw)
		if ok != tt.ok {
			t.Fatalf("normalizeURL(%q) ok=%v want=%v", tt.raw, ok, tt.ok)
		}
		if got != tt.want {
			t.Fatalf("normalizeURL(%q) got=%q want=%q", tt.raw, got, tt.want)
		}
	}
}

func TestExtractLinks(t *testing.T) {
	base, _ := url.Parse("https://example.com/blog/post")
	doc := `<html><head><base href="/root/"></head><body>
		<a href="next">next</a>
		<a href="#comments">comments</a>
		<a href="tel:+331234">call</a>
		<a href="JavaScript:void(0)">js</a>
		<a href="https://EXAMPLE.com/about#team">about</a>
		<a href="https://cdn.example.org/lib">cdn</a>
		<a href="/styles/site.css">css</a>
		<a href="next">next again</a>
	</body></html>`

	got := extractLinks(base, doc)
	want := []string{"https://example.com/root/next", "https://EXAMPLE.com/about"}
	if len(got) != len(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got=%q want=%q", i, got[i], want[i])
		}
	}
}
