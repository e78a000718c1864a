package scan

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/runstate"
	"github.com/MOYARU/uxaudit/internal/store"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		in      []string
		want    string
		wantErr bool
	}{
		{in: nil, want: ""},
		{in: []string{"seo"}, want: "SEO"},
		{in: []string{"dark-patterns, Accessibility", "SEO,seo"}, want: "DARK_PATTERNS,ACCESSIBILITY,SEO"},
		{in: []string{"design consistency"}, want: "DESIGN_CONSISTENCY"},
		{in: []string{"seo,,"}, want: "SEO"},
		{in: []string{"security"}, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseCategories(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseCategories(%v) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseCategories(%v): %v", tt.in, err)
		}
		if strings.Join(got, ",") != tt.want {
			t.Fatalf("parseCategories(%v) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestStripStamp(t *testing.T) {
	if got := stripStamp("[12:30:05] Starting crawl..."); got != "Starting crawl..." {
		t.Fatalf("got %q", got)
	}
	if got := stripStamp("[1/8] Analyzing: SEO..."); got != "[1/8] Analyzing: SEO..." {
		t.Fatalf("got %q", got)
	}
}

func TestOptionsFromPolicy(t *testing.T) {
	p := config.DefaultAuditPolicy()
	p.MaxPages = 25
	p.Categories = []string{"SEO"}
	opts := OptionsFromPolicy(p)
	if opts.MaxPages != 25 || opts.Depth != config.DefaultMaxDepth || opts.DelayMs != config.DefaultDelayMs {
		t.Fatalf("unexpected options: %+v", opts)
	}
	opts.Categories[0] = "FORMS"
	if p.Categories[0] != "SEO" {
		t.Fatalf("options share the policy category slice")
	}
	if opts.Policy.StateGrace != 10*time.Minute {
		t.Fatalf("policy not carried: %+v", opts.Policy)
	}
}

func TestOpenBackendsFallsBackToMemory(t *testing.T) {
	cfg := config.Config{ScreenshotsDir: t.TempDir()}
	b, err := openBackends(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openBackends: %v", err)
	}
	defer b.close()
	if _, ok := b.states.(*runstate.Memory); !ok {
		t.Fatalf("states = %T", b.states)
	}
	if _, ok := b.store.(*store.Memory); !ok {
		t.Fatalf("store = %T", b.store)
	}
	ref, err := b.artifacts.Put(context.Background(), "a1", "p0-desktop.png", []byte("png"))
	if err != nil || ref != "/screenshots/a1/p0-desktop.png" {
		t.Fatalf("Put = %q, %v", ref, err)
	}
}

func TestViewportNames(t *testing.T) {
	got := viewportNames(config.DefaultViewports())
	if got != "desktop 1920x1080, tablet 768x1024, mobile 375x812" {
		t.Fatalf("got %q", got)
	}
}
