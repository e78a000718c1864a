package audit

import (
	"errors"
	"fmt"

	"github.com/MOYARU/uxaudit/internal/runstate"
)

var ErrInvalidTransition = errors.New("audit: invalid status transition")

var transitions = map[runstate.Status][]runstate.Status{
	runstate.StatusQueued:    {runstate.StatusCrawling},
	runstate.StatusCrawling:  {runstate.StatusAnalyzing, runstate.StatusFailed},
	runstate.StatusAnalyzing: {runstate.StatusCompleted, runstate.StatusFailed},
}

// CanTransition reports whether an audit in from may move to to. Terminal
// states have no way out and runs are never retried in place.
func CanTransition(from, to runstate.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type machine struct {
	status runstate.Status
}

func (m *machine) move(to runstate.Status) error {
	if !CanTransition(m.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.status, to)
	}
	m.status = to
	return nil
}
