package checks

import (
	"fmt"

	context "github.com/MOYARU/uxaudit/internal/checks/context"
	msges "github.com/MOYARU/uxaudit/internal/messages"
	"github.com/MOYARU/uxaudit/internal/report"
)

type Category string

const (
	CategoryAccessibility     Category = "ACCESSIBILITY"
	CategoryPerformance       Category = "PERFORMANCE"
	CategoryDesignConsistency Category = "DESIGN_CONSISTENCY"
	CategoryForms             Category = "FORMS"
	CategoryContent           Category = "CONTENT"
	CategorySEO               Category = "SEO"
	CategoryNavigation        Category = "NAVIGATION"
	CategoryDarkPatterns      Category = "DARK_PATTERNS"
)

// Categories lists every category in catalogue order.
var Categories = []Category{
	CategoryAccessibility,
	CategoryPerformance,
	CategoryDesignConsistency,
	CategoryForms,
	CategoryContent,
	CategorySEO,
	CategoryNavigation,
	CategoryDarkPatterns,
}

// Weights sum to 1.
var Weights = map[Category]float64{
	CategoryAccessibility:     0.20,
	CategoryPerformance:       0.20,
	CategoryDesignConsistency: 0.12,
	CategoryForms:             0.08,
	CategoryContent:           0.10,
	CategorySEO:               0.15,
	CategoryNavigation:        0.10,
	CategoryDarkPatterns:      0.05,
}

var labels = map[Category]string{
	CategoryAccessibility:     "Accessibility",
	CategoryPerformance:       "Performance",
	CategoryDesignConsistency: "Design Consistency",
	CategoryForms:             "Forms",
	CategoryContent:           "Content",
	CategorySEO:               "SEO",
	CategoryNavigation:        "Navigation",
	CategoryDarkPatterns:      "Dark Patterns",
}

var frameworks = map[Category]string{
	CategoryAccessibility:     "WCAG 2.2",
	CategoryPerformance:       "Core Web Vitals",
	CategoryDesignConsistency: "Design System Consistency",
	CategoryForms:             "Form Standards",
	CategoryContent:           "Content Standards",
	CategorySEO:               "Technical SEO",
	CategoryNavigation:        "Information Architecture",
	CategoryDarkPatterns:      "Dark Patterns Detection",
}

func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) Framework() string {
	return frameworks[c]
}

func (c Category) Weight() float64 {
	return Weights[c]
}

// ParseCategory accepts the wire name of a category.
func ParseCategory(v string) (Category, bool) {
	c := Category(v)
	_, ok := Weights[c]
	return c, ok
}

type Check struct {
	ID       string
	Category Category
	Title    string
	Run      func(*context.Context) (report.Output, error)
}

// Rule is the fixed classification of one violation type. Text comes from
// the message catalogue under the same ID.
type Rule struct {
	ID        string
	Category  Category
	Severity  report.Severity
	Effort    report.EffortLevel
	Impact    int
	Framework string
	Criterion string
}

// Issue builds the issue for r. args fill the verbs of the catalogue message.
func (r Rule) Issue(args ...any) report.Issue {
	msg := msges.GetMessage(r.ID)
	description := msg.Message
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	framework := r.Framework
	if framework == "" {
		framework = r.Category.Framework()
	}
	return report.Issue{
		ID:             r.ID,
		Title:          msg.Title,
		Description:    description,
		Severity:       r.Severity,
		Category:       string(r.Category),
		Framework:      framework,
		Criterion:      r.Criterion,
		Recommendation: msg.Fix,
		EffortLevel:    r.Effort,
		Impact:         r.Impact,
	}
}
