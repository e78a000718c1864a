package report

import "sort"

// Penalty returns the points a single issue of the given severity removes
// from a category score.
func Penalty(s Severity) int {
	switch s {
	case SeverityCritical:
		return 20
	case SeverityMajor:
		return 10
	case SeverityMinor:
		return 4
	case SeveritySuggestion:
		return 1
	default:
		return 0
	}
}

// Score computes a category score in range [0,100].
func Score(issues []Issue) int {
	score := 100
	for _, issue := range issues {
		score -= Penalty(issue.Severity)
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Rank orders severities with CRITICAL first.
func Rank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityMajor:
		return 1
	case SeverityMinor:
		return 2
	case SeveritySuggestion:
		return 3
	default:
		return 4
	}
}

// SortBySeverity sorts in place, keeping analyzer order inside a severity.
func SortBySeverity(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return Rank(issues[i].Severity) < Rank(issues[j].Severity)
	})
}

type SeverityCounts struct {
	Critical   int `json:"critical"`
	Major      int `json:"major"`
	Minor      int `json:"minor"`
	Suggestion int `json:"suggestion"`
	Total      int `json:"total"`
}

func CountBySeverity(issues []Issue) SeverityCounts {
	var c SeverityCounts
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityMajor:
			c.Major++
		case SeverityMinor:
			c.Minor++
		case SeveritySuggestion:
			c.Suggestion++
		}
	}
	c.Total = len(issues)
	return c
}
