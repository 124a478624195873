// Package session holds in-progress batch state between "start batch" and
// "save/cancel batch". State lives in process memory only: a restart resets
// every open session, which the caller logs at startup as documented
// behavior rather than silent loss.
package session

import (
	"sync"
	"time"
)

// Batch is one user's open batch.
type Batch struct {
	Codes     []string
	StartedAt time.Time
	UpdatedAt time.Time
}

// Store is keyed by user id. Rapid uploads from the same user can hit it
// from concurrent handlers, so every read-modify-write holds the lock.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*Batch
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[int64]*Batch),
		now:      time.Now,
	}
}

// Open starts a batch for the user. Returns false if one is already open.
func (s *Store) Open(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; ok {
		return false
	}
	now := s.now()
	s.sessions[userID] = &Batch{StartedAt: now, UpdatedAt: now}
	return true
}

// Active reports whether the user has an open batch.
func (s *Store) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}

// Append adds a code to the user's open batch and returns the new member
// count. Returns false when no batch is open.
func (s *Store) Append(userID int64, code string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[userID]
	if !ok {
		return 0, false
	}
	b.Codes = append(b.Codes, code)
	b.UpdatedAt = s.now()
	return len(b.Codes), true
}

// Take removes and returns the user's open batch for finalization.
func (s *Store) Take(userID int64) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, userID)
	return b.Codes, true
}

// Cancel discards the user's open batch. Returns false if none was open.
func (s *Store) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; !ok {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// Sweep drops sessions idle past the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, b := range s.sessions {
		if b.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
