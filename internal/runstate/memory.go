package runstate

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// Memory is a Registry held in process memory.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	stopCh  chan struct{}
	once    sync.Once

	now func() time.Time
}

func NewMemory() *Memory {
	m := newMemory(time.Now)
	go m.cleanupLoop(time.Minute)
	return m
}

func newMemory(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		stopCh:  make(chan struct{}),
		now:     now,
	}
}

func (m *Memory) Create(ctx context.Context, id string, totalPages int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = &memoryEntry{snap: Snapshot{Status: StatusQueued, TotalPages: totalPages, Logs: []string{}}}
	return nil
}

// live returns the entry for id unless it has expired. Callers hold mu.
func (m *Memory) live(id string) (*memoryEntry, bool) {
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e, true
}

func (m *Memory) Get(ctx context.Context, id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.live(id)
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	snap := e.snap
	snap.Logs = append([]string(nil), e.snap.Logs...)
	return snap, nil
}

func (m *Memory) update(id string, fn func(*Snapshot)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return ErrNotFound
	}
	fn(&e.snap)
	return nil
}

func (m *Memory) SetStatus(ctx context.Context, id string, status Status) error {
	return m.update(id, func(s *Snapshot) { s.Status = status })
}

func (m *Memory) SetProgress(ctx context.Context, id string, scanned, total int) error {
	return m.update(id, func(s *Snapshot) {
		if scanned > s.PagesScanned {
			s.PagesScanned = scanned
		}
		s.TotalPages = total
	})
}

func (m *Memory) AddIssues(ctx context.Context, id string, n int) error {
	return m.update(id, func(s *Snapshot) {
		if n > 0 {
			s.IssuesFound += n
		}
	})
}

func (m *Memory) AppendLog(ctx context.Context, id, line string) error {
	return m.update(id, func(s *Snapshot) { s.Logs = append(s.Logs, line) })
}

func (m *Memory) Expire(ctx context.Context, id string, after time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.expiresAt = m.now().Add(after)
	return nil
}

func (m *Memory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, id)
		}
	}
}

func (m *Memory) Close() {
	m.once.Do(func() { close(m.stopCh) })
}
