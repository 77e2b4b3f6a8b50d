package scenario

import (
	"sort"
	"sync"

	"github.com/good-yellow-bee/snapdiag/internal/models"
)

// IssueSink receives issues raised by firing scenarios. Sinks own
// deduplication across repeated runs/sections and final rendering.
type IssueSink interface {
	Raise(issue models.Issue)
}

// CollectingSink gathers issues in memory, deduplicating on
// (type, origin, message).
type CollectingSink struct {
	mu     sync.Mutex
	seen   map[models.Issue]struct{}
	issues []models.Issue
}

// NewCollectingSink creates an empty sink.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{seen: make(map[models.Issue]struct{})}
}

// Raise records an issue unless an identical one was already raised.
func (s *CollectingSink) Raise(issue models.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[issue]; ok {
		return
	}
	s.seen[issue] = struct{}{}
	s.issues = append(s.issues, issue)
}

// Issues returns the collected issues sorted by origin, type and
// message for reproducible reports.
func (s *CollectingSink) Issues() []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Issue, len(s.issues))
	copy(out, s.issues)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Origin != out[b].Origin {
			return out[a].Origin < out[b].Origin
		}
		if out[a].Type != out[b].Type {
			return out[a].Type < out[b].Type
		}
		return out[a].Message < out[b].Message
	})
	return out
}
