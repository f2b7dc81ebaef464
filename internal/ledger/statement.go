package ledger

import "sync"

// Statement is the ordered, append-only log of entries belonging to a single
// account. Insertion order is recording order. Only Engine appends to it.
type Statement struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStatement returns an empty statement.
func NewStatement() *Statement {
	return &Statement{entries: make([]Entry, 0)}
}

// Entries returns a copy of the recorded entries.
func (s *Statement) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Entry, len(s.entries))
	copy(copied, s.entries)
	return copied
}

// Len returns the number of recorded entries.
func (s *Statement) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// append must be called with the write lock held.
func (s *Statement) append(entry Entry) {
	if n := len(s.entries); n > 0 {
		if last := s.entries[n-1].CreatedAt; entry.CreatedAt.Before(last) {
			entry.CreatedAt = last
		}
	}
	s.entries = append(s.entries, entry)
}
