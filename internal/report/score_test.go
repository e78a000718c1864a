package report

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		issues []Issue
		want   int
	}{
		{name: "no issues", issues: nil, want: 100},
		{name: "one major", issues: []Issue{{Severity: SeverityMajor}}, want: 90},
		{name: "mixed", issues: []Issue{
			{Severity: SeverityCritical},
			{Severity: SeverityMinor},
			{Severity: SeveritySuggestion},
		}, want: 75},
		{name: "unknown severity", issues: []Issue{{Severity: "WHATEVER"}}, want: 100},
	}

	for _, tt := range tests {
		if got := Score(tt.issues); got != tt.want {
			t.Fatalf("%s: Score()=%d want=%d", tt.name, got, tt.want)
		}
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	issues := make([]Issue, 6)
	for i := range issues {
		issues[i].Severity = SeverityCritical
	}
	if got := Score(issues); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}

func TestSortBySeverityIsStable(t *testing.T) {
	issues := []Issue{
		{ID: "a", Severity: SeverityMinor},
		{ID: "b", Severity: SeverityCritical},
		{ID: "c", Severity: SeverityMinor},
		{ID: "d", Severity: SeveritySuggestion},
		{ID: "e", Severity: SeverityMajor},
	}
	SortBySeverity(issues)

	want := []string{"b", "e", "a", "c", "d"}
	for i, id := range want {
		if issues[i].ID != id {
			t.Fatalf("index %d: got=%s want=%s", i, issues[i].ID, id)
		}
	}
}

func TestNewOutputNeverNil(t *testing.T) {
	out := NewOutput(nil, nil)
	if out.Issues == nil || out.Metadata == nil {
		t.Fatalf("expected non-nil issues and metadata: %+v", out)
	}
	if out.Score != 100 {
		t.Fatalf("expected 100, got %d", out.Score)
	}
}
