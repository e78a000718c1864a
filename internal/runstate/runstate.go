// Package runstate keeps the live progress of running audits for polling
// clients. It is not the system of record: an entry disappears a grace
// period after its run ends.
package runstate

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("runstate: audit not found")

type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusCrawling  Status = "CRAWLING"
	StatusAnalyzing Status = "ANALYZING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type Snapshot struct {
	Status       Status   `json:"status"`
	PagesScanned int      `json:"pagesScanned"`
	TotalPages   int      `json:"totalPages"`
	IssuesFound  int      `json:"issuesFound"`
	Logs         []string `json:"logs"`
}

// Registry is the process-wide table of run states keyed by audit id.
// PagesScanned and IssuesFound never decrease; TotalPages is stored as given.
type Registry interface {
	Create(ctx context.Context, id string, totalPages int) error
	Get(ctx context.Context, id string) (Snapshot, error)
	SetStatus(ctx context.Context, id string, status Status) error
	SetProgress(ctx context.Context, id string, scanned, total int) error
	AddIssues(ctx context.Context, id string, n int) error
	AppendLog(ctx context.Context, id, line string) error
	// Expire drops the entry after the given grace period.
	Expire(ctx context.Context, id string, after time.Duration) error
}
