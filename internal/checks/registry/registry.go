package registry

import (
	"github.com/MOYARU/uxaudit/internal/checks"
	"github.com/MOYARU/uxaudit/internal/checks/accessibility"
	"github.com/MOYARU/uxaudit/internal/checks/content"
	"github.com/MOYARU/uxaudit/internal/checks/darkpatterns"
	"github.com/MOYARU/uxaudit/internal/checks/design"
	"github.com/MOYARU/uxaudit/internal/checks/forms"
	"github.com/MOYARU/uxaudit/internal/checks/navigation"
	"github.com/MOYARU/uxaudit/internal/checks/performance"
	"github.com/MOYARU/uxaudit/internal/checks/seo"
)

// DefaultChecks returns the analyzers in catalogue order.
func DefaultChecks() []checks.Check {
	return []checks.Check{
		{ID: "accessibility", Category: checks.CategoryAccessibility, Title: "Accessibility", Run: accessibility.Analyze},
		{ID: "performance", Category: checks.CategoryPerformance, Title: "Performance", Run: performance.Analyze},
		{ID: "design", Category: checks.CategoryDesignConsistency, Title: "Design Consistency", Run: design.Analyze},
		{ID: "forms", Category: checks.CategoryForms, Title: "Forms", Run: forms.Analyze},
		{ID: "content", Category: checks.CategoryContent, Title: "Content", Run: content.Analyze},
		{ID: "seo", Category: checks.CategorySEO, Title: "SEO", Run: seo.Analyze},
		{ID: "navigation", Category: checks.CategoryNavigation, Title: "Navigation", Run: navigation.Analyze},
		{ID: "dark-patterns", Category: checks.CategoryDarkPatterns, Title: "Dark Patterns", Run: darkpatterns.Analyze},
	}
}
