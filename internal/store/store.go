// Package store persists audits, their pages and their issues.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MOYARU/uxaudit/internal/checks"
	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
)

var ErrNotFound = errors.New("store: audit not found")

type Audit struct {
	ID             string                  `json:"id"`
	URL            string                  `json:"url"`
	Status         runstate.Status         `json:"status"`
	Config         config.ScanConfig       `json:"configSnapshot"`
	TotalPages     int                     `json:"totalPages"`
	PagesScanned   int                     `json:"pagesScanned"`
	IssuesFound    int                     `json:"issuesFound"`
	GlobalScore    *int                    `json:"globalScore,omitempty"`
	ScoreBreakdown map[checks.Category]int `json:"scoreBreakdown,omitempty"`
	Summary        string                  `json:"summary,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	StartedAt      *time.Time              `json:"startedAt,omitempty"`
	CompletedAt    *time.Time              `json:"completedAt,omitempty"`
}

// NewAudit is a QUEUED audit sized by cfg.MaxPages.
func NewAudit(id, url string, cfg config.ScanConfig, createdAt time.Time) Audit {
	return Audit{
		ID:         id,
		URL:        url,
		Status:     runstate.StatusQueued,
		Config:     cfg,
		TotalPages: cfg.MaxPages,
		CreatedAt:  createdAt,
	}
}

type Page struct {
	ID                 string                  `json:"id"`
	URL                string                  `json:"url"`
	Title              string                  `json:"title"`
	Screenshots        map[string]string       `json:"screenshots"`
	PerformanceMetrics map[string]any          `json:"performanceMetrics"`
	PageScore          int                     `json:"pageScore"`
	ScoreBreakdown     map[checks.Category]int `json:"scoreBreakdown"`
	StatusCode         int                     `json:"statusCode"`
}

// Summary is written once when an audit completes.
type Summary struct {
	GlobalScore    int
	ScoreBreakdown map[checks.Category]int
	IssuesFound    int
	PagesScanned   int
	CompletedAt    time.Time
}

type Store interface {
	CreateAudit(ctx context.Context, a Audit) error
	MarkCrawling(ctx context.Context, id string, startedAt time.Time) error
	MarkAnalyzing(ctx context.Context, id string, totalPages int) error
	// SavePage stores one analyzed page and returns its id.
	SavePage(ctx context.Context, auditID string, p Page) (string, error)
	SaveIssues(ctx context.Context, auditID, pageID string, issues []report.Issue) error
	Complete(ctx context.Context, id string, s Summary) error
	Fail(ctx context.Context, id, summary string, at time.Time) error
	Get(ctx context.Context, id string) (Audit, error)
}
