package session

import "sync"

// Slot is the single process-wide "current connection" holder: written
// only by the factory on a successful connect, read by every downstream
// command. A failed connect never touches it, so the prior connection
// (or absence) survives exactly as it was.
type Slot struct {
	mu      sync.RWMutex
	current *Connection
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Current returns the active connection, if any.
func (s *Slot) Current() (*Connection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// replace installs a new connection wholesale, dropping the previous
// one. Only the factory calls this, and only with a fully constructed
// connection.
func (s *Slot) replace(conn *Connection) {
	s.mu.Lock()
	s.current = conn
	s.mu.Unlock()
}
