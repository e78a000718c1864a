package scoring

import (
	"math"

	"github.com/MOYARU/uxaudit/internal/checks"
)

// GlobalScore is the weighted site or page verdict.
type GlobalScore struct {
	Global     int                     `json:"global"`
	Categories map[checks.Category]int `json:"categories"`
}

// ComputeGlobalScore averages the category scores with their weights,
// renormalized over the categories present. Unknown categories are ignored.
func ComputeGlobalScore(categoryScores map[checks.Category]int) GlobalScore {
	categories := make(map[checks.Category]int, len(categoryScores))
	weighted, weights := 0.0, 0.0
	for cat, score := range categoryScores {
		categories[cat] = score
		w, ok := checks.Weights[cat]
		if !ok {
			continue
		}
		weighted += float64(score) * w
		weights += w
	}
	global := 0
	if weights > 0 {
		global = clamp(int(math.Round(weighted / weights)))
	}
	return GlobalScore{Global: global, Categories: categories}
}

// AverageCategoryScores rounds the mean of each category's per-page scores.
func AverageCategoryScores(perPage map[checks.Category][]int) map[checks.Category]int {
	out := make(map[checks.Category]int, len(perPage))
	for cat, scores := range perPage {
		if len(scores) == 0 {
			continue
		}
		sum := 0
		for _, s := range scores {
			sum += s
		}
		out[cat] = int(math.Round(float64(sum) / float64(len(scores))))
	}
	return out
}

// Label names the band a score falls in.
func Label(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Average"
	case score >= 25:
		return "Poor"
	default:
		return "Critical"
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
