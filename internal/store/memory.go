package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MOYARU/uxaudit/internal/config"
	"github.com/MOYARU/uxaudit/internal/report"
	"github.com/MOYARU/uxaudit/internal/runstate"
)

type IssueRecord struct {
	AuditID string `json:"auditId"`
	PageID  string `json:"pageId,omitempty"`
	report.Issue
}

// Memory keeps everything in process memory. It backs the CLI when no
// database is configured.
type Memory struct {
	mu     sync.RWMutex
	audits map[string]*Audit
	pages  map[string][]Page
	issues map[string][]IssueRecord
}

func NewMemory() *Memory {
	return &Memory{
		audits: make(map[string]*Audit),
		pages:  make(map[string][]Page),
		issues: make(map[string][]IssueRecord),
	}
}

func (m *Memory) CreateAudit(ctx context.Context, a Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneAudit(a)
	m.audits[a.ID] = &cp
	return nil
}

func (m *Memory) update(id string, fn func(*Audit)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.audits[id]
	if !ok {
		return ErrNotFound
	}
	fn(a)
	return nil
}

func (m *Memory) MarkCrawling(ctx context.Context, id string, startedAt time.Time) error {
	return m.update(id, func(a *Audit) {
		a.Status = runstate.StatusCrawling
		a.StartedAt = &startedAt
	})
}

func (m *Memory) MarkAnalyzing(ctx context.Context, id string, totalPages int) error {
	return m.update(id, func(a *Audit) {
		a.Status = runstate.StatusAnalyzing
		a.TotalPages = totalPages
		a.PagesScanned = totalPages
	})
}

func (m *Memory) SavePage(ctx context.Context, auditID string, p Page) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.audits[auditID]; !ok {
		return "", ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.pages[auditID] = append(m.pages[auditID], p)
	return p.ID, nil
}

func (m *Memory) SaveIssues(ctx context.Context, auditID, pageID string, issues []report.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.audits[auditID]; !ok {
		return ErrNotFound
	}
	for _, is := range issues {
		m.issues[auditID] = append(m.issues[auditID], IssueRecord{AuditID: auditID, PageID: pageID, Issue: is})
	}
	return nil
}

func (m *Memory) Complete(ctx context.Context, id string, s Summary) error {
	return m.update(id, func(a *Audit) {
		score := s.GlobalScore
		completed := s.CompletedAt
		a.Status = runstate.StatusCompleted
		a.GlobalScore = &score
		a.ScoreBreakdown = maps.Clone(s.ScoreBreakdown)
		a.IssuesFound = s.IssuesFound
		a.PagesScanned = s.PagesScanned
		a.CompletedAt = &completed
	})
}

func (m *Memory) Fail(ctx context.Context, id, summary string, at time.Time) error {
	return m.update(id, func(a *Audit) {
		a.Status = runstate.StatusFailed
		a.Summary = summary
		a.CompletedAt = &at
	})
}

func (m *Memory) Get(ctx context.Context, id string) (Audit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.audits[id]
	if !ok {
		return Audit{}, ErrNotFound
	}
	return cloneAudit(*a), nil
}

// cloneAudit detaches a from the maps, slices and pointers held by the store.
func cloneAudit(a Audit) Audit {
	a.ScoreBreakdown = maps.Clone(a.ScoreBreakdown)
	a.Config.Viewports = append([]config.Viewport(nil), a.Config.Viewports...)
	a.Config.Categories = append([]string(nil), a.Config.Categories...)
	a.GlobalScore = clonePtr(a.GlobalScore)
	a.StartedAt = clonePtr(a.StartedAt)
	a.CompletedAt = clonePtr(a.CompletedAt)
	return a
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (m *Memory) Pages(auditID string) []Page {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Page(nil), m.pages[auditID]...)
}

func (m *Memory) Issues(auditID string) []IssueRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IssueRecord(nil), m.issues[auditID]...)
}
