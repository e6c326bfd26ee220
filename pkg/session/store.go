// Package session holds per-conversation dialog state between turns.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/agendavoz/agendavoz/pkg/dialog"
)

// DefaultTTL is how long an idle session survives before the reaper drops it.
const DefaultTTL = 30 * time.Minute

type entry struct {
	mu       sync.Mutex
	attrs    dialog.Attributes
	lastSeen time.Time
}

// Store keeps session attributes in memory, keyed by session id. Get never
// fails: a missing session yields the default attribute set. Set replaces
// the full attribute set, last-writer-wins.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*entry
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*entry),
	}
}

// Get returns the session's current attributes, or the default set when the
// session is unknown.
func (s *Store) Get(id string) dialog.Attributes {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return dialog.DefaultAttributes()
	}
	return e.attrs.Clone()
}

// Set replaces the session's attribute set.
func (s *Store) Set(id string, attrs dialog.Attributes) {
	e := s.entry(id)
	e.attrs = attrs.Clone()
	e.lastSeen = time.Now()
}

// Lock serializes turns for one session: the returned func releases the
// session. Turns for different sessions interleave freely.
func (s *Store) Lock(id string) func() {
	e := s.entry(id)
	e.mu.Lock()
	return e.mu.Unlock
}

// Delete drops the session, e.g. when the conversation ends.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reap removes sessions idle longer than the TTL and reports how many.
func (s *Store) Reap() int {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			slog.Warn("reaping stale session", slog.String("session_id", id))
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{attrs: dialog.DefaultAttributes(), lastSeen: time.Now()}
		s.sessions[id] = e
	}
	return e
}
