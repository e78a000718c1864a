package scoring

import (
	"testing"

	"github.com/MOYARU/uxaudit/internal/checks"
)

func TestComputeGlobalScore(t *testing.T) {
	all100 := map[checks.Category]int{}
	for _, c := range checks.Categories {
		all100[c] = 100
	}
	tests := []struct {
		name   string
		scores map[checks.Category]int
		want   int
	}{
		{"empty", map[checks.Category]int{}, 0},
		{"nil", nil, 0},
		{"all perfect", all100, 100},
		{"renormalized pair", map[checks.Category]int{checks.CategoryAccessibility: 50, checks.CategoryPerformance: 100}, 75},
		{"uneven weights", map[checks.Category]int{checks.CategoryAccessibility: 100, checks.CategoryDarkPatterns: 0}, 80},
		{"single category", map[checks.Category]int{checks.CategoryForms: 42}, 42},
		{"unknown only", map[checks.Category]int{"OTHER": 80}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeGlobalScore(tt.scores)
			if got.Global != tt.want {
				t.Fatalf("want %d, got %d", tt.want, got.Global)
			}
			if len(got.Categories) != len(tt.scores) {
				t.Fatalf("categories should echo the input, got %+v", got.Categories)
			}
		})
	}
}

func TestAverageCategoryScores(t *testing.T) {
	got := AverageCategoryScores(map[checks.Category][]int{
		checks.CategorySEO:     {90, 81},
		checks.CategoryForms:   {100},
		checks.CategoryContent: {},
	})
	if got[checks.CategorySEO] != 86 || got[checks.CategoryForms] != 100 {
		t.Fatalf("unexpected averages: %+v", got)
	}
	if _, ok := got[checks.CategoryContent]; ok {
		t.Fatal("categories without pages should be left out")
	}
}

func TestLabel(t *testing.T) {
	tests := map[int]string{100: "Excellent", 90: "Excellent", 89: "Good", 75: "Good", 74: "Average", 50: "Average", 49: "Poor", 25: "Poor", 24: "Critical", 0: "Critical"}
	for score, want := range tests {
		if got := Label(score); got != want {
			t.Fatalf("Label(%d): want %s, got %s", score, want, got)
		}
	}
}
