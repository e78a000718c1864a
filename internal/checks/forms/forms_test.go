package forms

import (
	"strings"
	"testing"

	ctxpkg "github.com/MOYARU/uxaudit/internal/checks/context"
	"github.com/MOYARU/uxaudit/internal/report"
)

func analyze(t *testing.T, html string) report.Output {
	t.Helper()
	out, err := Analyze(ctxpkg.New("https://example.com/contact", "", html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func ids(out report.Output) string {
	var got []string
	for _, issue := range out.Issues {
		got = append(got, issue.ID)
	}
	return strings.Join(got, ",")
}

func TestNoFormsScoresPerfect(t *testing.T) {
	out := analyze(t, `<html><body><p>Hello</p></body></html>`)
	if out.Score != 100 || len(out.Issues) != 0 {
		t.Fatalf("expected a perfect score, got %+v", out)
	}
	if out.Metadata["formCount"] != 0 || out.Metadata["message"] == nil {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestSingleFieldFormSkipsRequiredRule(t *testing.T) {
	out := analyze(t, `<form><label for="q">Search</label><input id="q" name="q" autocomplete="off"><button>Go</button></form>`)
	if len(out.Issues) != 0 {
		t.Fatalf("expected no issues, got %s", ids(out))
	}
}

func TestWellFormedForm(t *testing.T) {
	html := `<form>
<label for="email">Email</label><input id="email" type="email" name="email" autocomplete="email" required>
<label for="phone">Phone</label><input id="phone" type="tel" name="phone" autocomplete="tel">
<input type="hidden" name="token">
<button type="submit">Send</button>
</form>`
	out := analyze(t, html)
	if len(out.Issues) != 0 {
		t.Fatalf("expected no issues, got %s", ids(out))
	}
	if out.Metadata["formCount"] != 1 || out.Metadata["totalIssues"] != 0 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}

func TestPoorForm(t *testing.T) {
	html := `<form>
<input name="user_email" placeholder="Your e-mail">
<input id="mobile" placeholder="Mobile number">
<button type="button">Cancel</button>
</form>`
	out := analyze(t, html)
	want := "FORM_PLACEHOLDER_AS_LABEL,FORM_PLACEHOLDER_AS_LABEL,FORM_EMAIL_TYPE_MISSING,FORM_TEL_TYPE_MISSING,FORM_AUTOCOMPLETE_MISSING,FORM_SUBMIT_MISSING,FORM_REQUIRED_MISSING"
	if got := ids(out); got != want {
		t.Fatalf("want %s\ngot  %s", want, got)
	}
	if out.Issues[0].Selector != `[name="user_email"]` || out.Issues[1].Selector != "#mobile" {
		t.Fatalf("unexpected selectors: %q %q", out.Issues[0].Selector, out.Issues[1].Selector)
	}
	if out.Issues[5].FixSnippet != `<button type="submit">Submit</button>` {
		t.Fatalf("unexpected fix snippet: %q", out.Issues[5].FixSnippet)
	}
	// 2*10 + 4 + 4 + 1 + 10 + 4
	if out.Score != 57 {
		t.Fatalf("expected score 57, got %d", out.Score)
	}
}

func TestLongFormAndMultipleForms(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<form><input type="submit">`)
	for i := 0; i < 7; i++ {
		b.WriteString(`<input aria-label="f" autocomplete="off" required>`)
	}
	b.WriteString(`</form><form><textarea aria-label="msg" autocomplete="off">hi</textarea><button>Send</button></form>`)
	out := analyze(t, b.String())
	if got := ids(out); got != "FORM_FIELDSET_MISSING" {
		t.Fatalf("unexpected issues: %s", got)
	}
	if !strings.HasSuffix(out.Issues[0].Title, " (form 1)") {
		t.Fatalf("expected form suffix in title, got %q", out.Issues[0].Title)
	}
	if out.Metadata["formCount"] != 2 {
		t.Fatalf("unexpected metadata: %+v", out.Metadata)
	}
}
