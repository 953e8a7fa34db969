package order

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned when a call id has no live session, e.g. a
// stream event that arrived before (or after) the session existed.
var ErrSessionNotFound = errors.New("session not found")

// Store is the registry of live call sessions. Creation, lookup and the
// webhook path all run concurrently, so implementations must be safe for
// concurrent use. The payment-reference lookup exists for webhook
// deliveries that carry only a provider reference.
type Store interface {
	Create(callID, caller string) *Session
	Get(callID string) (*Session, bool)
	Delete(callID string)
	FindByPaymentRef(reference string) (*Session, bool)
}

// MemoryStore keeps sessions in process memory. Sessions are transient per
// call; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create registers a new session for the call, replacing any stale entry
// with the same call id.
func (m *MemoryStore) Create(callID, caller string) *Session {
	s := NewSession(callID, caller)
	m.mu.Lock()
	m.sessions[callID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by call id.
func (m *MemoryStore) Get(callID string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[callID]
	m.mu.RUnlock()
	return s, ok
}

// Delete removes a session. Background watchers hold only the call id and
// treat a missing session as a signal to stop.
func (m *MemoryStore) Delete(callID string) {
	m.mu.Lock()
	delete(m.sessions, callID)
	m.mu.Unlock()
}

// FindByPaymentRef scans for the session holding the given payment
// reference. The active-call population is small enough that a scan beats
// maintaining a second index.
func (m *MemoryStore) FindByPaymentRef(reference string) (*Session, bool) {
	if reference == "" {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if ref, ok := s.PaymentRef(); ok && ref == reference {
			return s, true
		}
	}
	return nil, false
}

// Count returns the number of live sessions.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
