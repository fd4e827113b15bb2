// Package session tracks the bot's last sent message per user and
// implements the replace-in-place protocol that keeps each chat to a
// single active screen.
package session

import "sync"

// Store holds the identifier of the last bot-sent message per user.
// State is in-memory only: losing it across restarts just means one stale
// message survives in the chat, which the next interaction cleans up.
type Store struct {
	mu   sync.Mutex
	last map[int64]int
}

// NewStore creates an empty conversation-state store.
func NewStore() *Store {
	return &Store{last: make(map[int64]int)}
}

// Get returns the last bot message ID for the user, if any.
func (s *Store) Get(userID int64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.last[userID]
	return id, ok
}

// Set overwrites the last bot message ID for the user.
func (s *Store) Set(userID int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[userID] = messageID
}

// Clear removes the stored message ID for the user.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, userID)
}
