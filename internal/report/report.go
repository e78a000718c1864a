package report

type Severity string
type EffortLevel string

const (
	SeverityCritical   Severity = "CRITICAL"
	SeverityMajor      Severity = "MAJOR"
	SeverityMinor      Severity = "MINOR"
	SeveritySuggestion Severity = "SUGGESTION"

	EffortQuickWin EffortLevel = "QUICK_WIN"
	EffortMedium   EffortLevel = "MEDIUM"
	EffortLongTerm EffortLevel = "LONG_TERM"
)

// Issue is one problem detected by an analyzer. Optional fields are left
// empty when the rule has nothing to say about them.
type Issue struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Severity       Severity    `json:"severity"`
	Category       string      `json:"category"`
	Framework      string      `json:"framework"`
	Criterion      string      `json:"criterion,omitempty"`
	Selector       string      `json:"selector,omitempty"`
	Recommendation string      `json:"recommendation"`
	EffortLevel    EffortLevel `json:"effortLevel"`
	Impact         int         `json:"impact"`
	CodeSnippet    string      `json:"codeSnippet,omitempty"`
	FixSnippet     string      `json:"fixSnippet,omitempty"`
}

type Output struct {
	Score    int            `json:"score"`
	Issues   []Issue        `json:"issues"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewOutput scores issues and wraps them with the analyzer metadata.
func NewOutput(issues []Issue, metadata map[string]any) Output {
	if issues == nil {
		issues = []Issue{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Output{
		Score:    Score(issues),
		Issues:   issues,
		Metadata: metadata,
	}
}
