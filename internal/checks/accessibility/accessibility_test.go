package accessibility

import (
	"strings"
	"testing"

	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/report"
)

const cleanPage = `<!doctype html><html lang="en"><head><title>Home</title></head><body>
<a href="#main">Skip to content</a>
<nav><a href="/about">About</a></nav>
<main id="main"><h1>Welcome</h1><h2>Intro</h2>%s</main>
</body></html>`

func analyze(t *testing.T, html string) report.Output {
	t.Helper()
	out, err := Analyze(ctxpkg.New("https://example.com/", "", html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func page(body string) string {
	return strings.Replace(cleanPage, "%s", body, 1)
}

func TestCleanPageScoresPerfect(t *testing.T) {
	out := analyze(t, page(`<img src="/a.png" alt="Logo">`))
	if out.Score != 100 || len(out.Issues) != 0 {
		t.Fatalf("expected a clean page, got score=%d issues=%+v", out.Score, out.Issues)
	}
}

func TestImageWithoutAlt(t *testing.T) {
	out := analyze(t, page(`<img src="/hero.jpg" class="big">`))
	if len(out.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", out.Issues)
	}
	issue := out.Issues[0]
	if issue.Severity != report.SeverityMajor || issue.Impact != 7 {
		t.Fatalf("unexpected classification: %+v", issue)
	}
	if issue.Selector != `img[src="/hero.jpg"]` {
		t.Fatalf("unexpected selector: %q", issue.Selector)
	}
	if issue.FixSnippet != `<img alt="Image description" src="/hero.jpg" class="big">` {
		t.Fatalf("unexpected fix snippet: %q", issue.FixSnippet)
	}
	if out.Score != 90 {
		t.Fatalf("expected score 90, got %d", out.Score)
	}
	if out.Metadata["imagesWithoutAlt"] != 1 || out.Metadata["totalImages"] != 1 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestInputLabels(t *testing.T) {
	body := `<label for="email">Email</label><input id="email" type="email">
<input type="hidden" name="csrf">
<input name="q">
<input id="phone" aria-label="Phone">`
	out := analyze(t, page(body))
	if len(out.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", out.Issues)
	}
	if out.Issues[0].ID != "A11Y_INPUT_MISSING_LABEL" || out.Issues[0].Selector != `input[name="q"]` {
		t.Fatalf("unexpected issue: %+v", out.Issues[0])
	}
	if out.Metadata["totalInputs"] != 4 || out.Metadata["inputsWithoutLabels"] != 1 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestHeadingRules(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "skipped level reported once",
			html: `<html lang="en"><body><a href="#content">skip</a><nav></nav><main><h1>A</h1><h3>B</h3><h2>C</h2><h5>D</h5></main></body></html>`,
			want: []string{"A11Y_HEADING_LEVEL_SKIPPED"},
		},
		{
			name: "no h1",
			html: `<html lang="en"><body><a href="#skip-nav">skip</a><nav></nav><main><h2>A</h2></main></body></html>`,
			want: []string{"A11Y_H1_MISSING"},
		},
		{
			name: "two h1",
			html: `<html lang="en"><body><a href="#maincontent">skip</a><div role="navigation"></div><div role="main"><h1>A</h1><h1>B</h1></div></body></html>`,
			want: []string{"A11Y_H1_MULTIPLE"},
		},
		{
			name: "h1 in a comment still counts",
			html: `<html lang="en"><body><a href="#main">skip</a><nav></nav><main><!-- <h1>Old</h1> --><h1>New</h1></main></body></html>`,
			want: []string{"A11Y_H1_MULTIPLE"},
		},
		{
			name: "noscript heading joins the hierarchy",
			html: `<html lang="en"><body><a href="#main">skip</a><nav></nav><main><h1>A</h1><noscript><h3>Enable JS</h3></noscript></main></body></html>`,
			want: []string{"A11Y_HEADING_LEVEL_SKIPPED"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := analyze(t, tt.html)
			if len(out.Issues) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, out.Issues)
			}
			for i, id := range tt.want {
				if out.Issues[i].ID != id {
					t.Fatalf("issue %d: want %s, got %s", i, id, out.Issues[i].ID)
				}
			}
		})
	}
}

func TestBarePage(t *testing.T) {
	out := analyze(t, `<p style="font-size: 10px">tiny</p><p style="font-size:11.5px">x</p><p style="font-size:14px">ok</p>`)
	want := map[string]bool{
		"A11Y_HTML_LANG_MISSING":     true,
		"A11Y_H1_MISSING":            true,
		"A11Y_SKIP_LINK_MISSING":     true,
		"A11Y_MAIN_LANDMARK_MISSING": true,
		"A11Y_NAV_LANDMARK_MISSING":  true,
		"A11Y_SMALL_FONT_SIZE":       true,
	}
	if len(out.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), out.Issues)
	}
	for _, issue := range out.Issues {
		if !want[issue.ID] {
			t.Fatalf("unexpected issue %s", issue.ID)
		}
	}
	if out.Metadata["smallTextInstances"] != 2 {
		t.Fatalf("expected 2 small text instances, got %v", out.Metadata["smallTextInstances"])
	}
	// 10 (lang) + 4 + 4 + 4 + 1 + 4
	if out.Score != 73 {
		t.Fatalf("expected score 73, got %d", out.Score)
	}
}

func TestMalformedInputIsDeterministic(t *testing.T) {
	for _, html := range []string{"", "<<<", "<img", "<html lang=", strings.Repeat("<div>", 500)} {
		a := analyze(t, html)
		b := analyze(t, html)
		if a.Score < 0 || a.Score > 100 {
			t.Fatalf("score out of range for %q: %d", html, a.Score)
		}
		if a.Score != b.Score || len(a.Issues) != len(b.Issues) {
			t.Fatalf("non-deterministic result for %q", html)
		}
	}
}
