package conflict

import (
	"sort"
	"sync"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/metrics"
)

// Store holds conflicts awaiting a human decision. It is in-memory only;
// conflicted operations stay in the queue, so a restart re-detects them.
type Store struct {
	mu        sync.RWMutex
	conflicts map[string]domain.SyncConflict
}

// NewStore creates an empty conflict store
func NewStore() *Store {
	return &Store{conflicts: make(map[string]domain.SyncConflict)}
}

// Put records a conflict keyed by its contested record id, replacing any
// earlier conflict on the same record
func (s *Store) Put(c domain.SyncConflict) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts[c.ID] = c
	metrics.ConflictsPending.Set(float64(len(s.conflicts)))
}

// Get returns the conflict with the given id
func (s *Store) Get(id string) (domain.SyncConflict, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conflicts[id]
	return c, ok
}

// Remove deletes a conflict
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conflicts, id)
	metrics.ConflictsPending.Set(float64(len(s.conflicts)))
}

// List returns all pending conflicts, oldest first
func (s *Store) List() []domain.SyncConflict {
	s.mu.RLock()
	out := make([]domain.SyncConflict, 0, len(s.conflicts))
	for _, c := range s.conflicts {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// HasOperation reports whether the queue entry is held by a pending conflict
func (s *Store) HasOperation(queueEntryID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.conflicts {
		if c.Operation.QueueEntryID == queueEntryID {
			return true
		}
	}
	return false
}

// Len returns the number of pending conflicts
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conflicts)
}
