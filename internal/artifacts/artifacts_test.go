package artifacts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MOYARU/uxaudit/internal/config"
)

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir)
	ref, err := l.Put(context.Background(), "aud-1", "p0-desktop.png", []byte("\x89PNG"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if ref != "/screenshots/aud-1/p0-desktop.png" {
		t.Fatalf("ref = %q", ref)
	}
	got, err := os.ReadFile(filepath.Join(dir, "screenshots", "aud-1", "p0-desktop.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, []byte("\x89PNG")) {
		t.Fatalf("content = %q", got)
	}
}

func TestLocalPutRejectsTraversal(t *testing.T) {
	l := NewLocal(t.TempDir())
	for _, tc := range []struct{ id, name string }{
		{"..", "x.png"},
		{"aud", "../x.png"},
		{"aud", ""},
		{"a/b", "x.png"},
	} {
		if _, err := l.Put(context.Background(), tc.id, tc.name, nil); err == nil {
			t.Fatalf("Put(%q, %q) accepted", tc.id, tc.name)
		}
	}
}

func TestFromConfigDefaultsToLocal(t *testing.T) {
	s, err := FromConfig(config.Config{ScreenshotsDir: "public"})
	if err != nil {
		t.Fatalf("FromConfig() error: %v", err)
	}
	l, ok := s.(*Local)
	if !ok || l.Dir != "public" {
		t.Fatalf("got %T %+v", s, s)
	}
}
