// Package viewmodel holds the records currently shown to the user. It is only
// mutated after a confirmed remote operation; observers receive a copy of the
// snapshot after every change, in the order the changes were applied.
package viewmodel

import (
	"sync"

	"github.com/mmcdole/roster/internal/domain"
)

// Store is the ordered snapshot of displayed records
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex // held from mutation until every observer ran
	records   []domain.Record
	observers map[int]domain.SnapshotObserver
	nextID    int
}

// NewStore creates an empty store (session start)
func NewStore() *Store {
	return &Store{observers: make(map[int]domain.SnapshotObserver)}
}

// Snapshot returns a copy of the displayed records
func (s *Store) Snapshot() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.records)
}

// Len returns the number of displayed records
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run once per mutation, outside the data lock; they may read the
// store but must not mutate it from inside OnSnapshot.
func (s *Store) Subscribe(o domain.SnapshotObserver) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Replace swaps the whole snapshot (bulk load)
func (s *Store) Replace(records []domain.Record) {
	s.mutate(func() bool {
		s.records = copyRecords(records)
		return true
	})
}

// Append adds a record at the end (creation order, not sort order)
func (s *Store) Append(rec domain.Record) {
	s.mutate(func() bool {
		s.records = append(s.records, rec)
		return true
	})
}

// SetTitle replaces the first record with id by a copy carrying title.
// Order and every other field are preserved. Returns false if id is not shown.
func (s *Store) SetTitle(id int, title string) bool {
	var found bool
	s.mutate(func() bool {
		for i, r := range s.records {
			if r.ID == id {
				r.Title = title
				// New backing array so earlier snapshots are never aliased
				next := copyRecords(s.records)
				next[i] = r
				s.records = next
				found = true
				return true
			}
		}
		return false
	})
	return found
}

// Remove drops every record with id and returns how many were removed
func (s *Store) Remove(id int) int {
	var removed int
	s.mutate(func() bool {
		next := make([]domain.Record, 0, len(s.records))
		for _, r := range s.records {
			if r.ID == id {
				removed++
				continue
			}
			next = append(next, r)
		}
		if removed == 0 {
			return false
		}
		s.records = next
		return true
	})
	return removed
}

// Reset empties the snapshot and drops all observers (session end)
func (s *Store) Reset() {
	s.mu.Lock()
	s.records = nil
	s.observers = make(map[int]domain.SnapshotObserver)
	s.mu.Unlock()
}

// mutate applies fn under the lock and notifies observers if it changed anything.
// Lock order is always notifyMu then mu, so observers see mutations in the
// order they were applied and may call Snapshot while another mutation waits.
func (s *Store) mutate(fn func() bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	snap := copyRecords(s.records)
	observers := make([]domain.SnapshotObserver, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.OnSnapshot(copyRecords(snap))
	}
}

func copyRecords(in []domain.Record) []domain.Record {
	if in == nil {
		return []domain.Record{}
	}
	out := make([]domain.Record, len(in))
	copy(out, in)
	return out
}
