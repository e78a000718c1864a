package performance

import (
	"strings"
	"testing"

	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/report"
)

func analyze(t *testing.T, url, html string) report.Output {
	t.Helper()
	out, err := Analyze(ctxpkg.New(url, "", html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func ids(out report.Output) []string {
	var got []string
	for _, issue := range out.Issues {
		got = append(got, issue.ID)
	}
	return got
}

func TestMissingViewportIsCritical(t *testing.T) {
	out := analyze(t, "https://example.com/", `<html><head><title>x</title></head><body></body></html>`)
	if len(out.Issues) != 1 || out.Issues[0].Severity != report.SeverityCritical {
		t.Fatalf("expected a single critical issue, got %+v", out.Issues)
	}
	if out.Score > 80 {
		t.Fatalf("expected score <= 80, got %d", out.Score)
	}
	if out.Metadata["hasMetaViewport"] != false {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestBlockingScriptsInHead(t *testing.T) {
	html := `<html><head><meta name="viewport" content="width=device-width">
<script src="https://cdn.example.net/lib.js"></script>
<script src="/app.js"></script>
<script src="/deferred.js" defer></script>
<script type="module" src="/mod.js"></script>
</head><body><script src="/late.js"></script></body></html>`
	out := analyze(t, "https://example.com/", html)
	if len(out.Issues) != 2 {
		t.Fatalf("expected 2 blocking scripts, got %+v", out.Issues)
	}
	if out.Issues[0].Severity != report.SeverityMajor || out.Issues[0].Impact != 7 {
		t.Fatalf("external script should be major: %+v", out.Issues[0])
	}
	if out.Issues[1].Severity != report.SeverityMinor || out.Issues[1].Selector != `script[src="/app.js"]` {
		t.Fatalf("local script should be minor: %+v", out.Issues[1])
	}
	if !strings.HasPrefix(out.Issues[1].FixSnippet, "<script defer src=") {
		t.Fatalf("unexpected fix snippet: %q", out.Issues[1].FixSnippet)
	}
	if out.Metadata["totalScripts"] != 5 || out.Metadata["blockingScriptsInHead"] != 2 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestImagesAndFormats(t *testing.T) {
	html := `<meta name="viewport" content="x"><img src="/a.jpg" loading="lazy"><img src="/b.png?v=2">`
	out := analyze(t, "https://example.com/", html)
	got := strings.Join(ids(out), ",")
	if got != "PERF_IMG_NO_LAZY,PERF_LEGACY_IMAGE_FORMATS" {
		t.Fatalf("unexpected issues: %s", got)
	}

	out = analyze(t, "https://example.com/", html+`<img src="/c.webp" loading="eager">`)
	if got := strings.Join(ids(out), ","); got != "PERF_IMG_NO_LAZY" {
		t.Fatalf("a modern format should silence the legacy rule: %s", got)
	}
}

func TestLargeInlineScriptAndDocumentSize(t *testing.T) {
	big := strings.Repeat("a", 6*1024)
	html := `<meta name="viewport" content="x"><script>` + big + `</script><script src="/x.js">` + big + `</script>`
	out := analyze(t, "https://example.com/", html)
	if got := strings.Join(ids(out), ","); got != "PERF_LARGE_INLINE_SCRIPT" {
		t.Fatalf("unexpected issues: %s", got)
	}
	if out.Metadata["largeInlineScripts"] != 1 || out.Metadata["totalInlineScriptSizeKB"] != 6.0 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}

	tests := []struct {
		size int
		want string
	}{
		{90 * 1024, ""},
		{150 * 1024, "PERF_HTML_LARGE"},
		{250 * 1024, "PERF_HTML_TOO_LARGE"},
	}
	for _, tt := range tests {
		doc := `<meta name="viewport" content="x">` + strings.Repeat("x", tt.size)
		if got := strings.Join(ids(analyze(t, "https://example.com/", doc)), ","); got != tt.want {
			t.Fatalf("size %d: want %q, got %q", tt.size, tt.want, got)
		}
	}
}

func TestStylesheetsAndPreconnect(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<meta name="viewport" content="x">`)
	for i := 0; i < 11; i++ {
		b.WriteString(`<link rel="stylesheet" href="/s.css">`)
	}
	b.WriteString(`<script async src="https://a.example.net/x.js"></script>`)
	b.WriteString(`<img loading="lazy" src="https://b.example.org/i.webp">`)
	b.WriteString(`<a href="https://c.example.io/">c</a><a href="https://example.com/self">self</a>`)
	out := analyze(t, "https://example.com/", b.String())
	if got := strings.Join(ids(out), ","); got != "PERF_TOO_MANY_STYLESHEETS,PERF_NO_PRECONNECT" {
		t.Fatalf("unexpected issues: %s", got)
	}
	if out.Metadata["externalDomainCount"] != 3 {
		t.Fatalf("own host must not count as external: %+v", out.Metadata)
	}

	out = analyze(t, "https://example.com/", b.String()+`<link rel="dns-prefetch" href="//a.example.net">`)
	if got := strings.Join(ids(out), ","); got != "PERF_TOO_MANY_STYLESHEETS" {
		t.Fatalf("dns-prefetch should silence preconnect rule: %s", got)
	}
}

func TestEmptyInput(t *testing.T) {
	out := analyze(t, "", "")
	if out.Score < 0 || out.Score > 100 || len(out.Issues) != 1 {
		t.Fatalf("unexpected output for empty page: %+v", out)
	}
}
