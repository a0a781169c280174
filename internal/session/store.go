package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the process-wide registry of live sessions, keyed by user
// identity. Sessions are created on first contact and evicted only by
// explicit reset; no timeout policy is imposed here.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	admins   map[int64]struct{}
}

// NewStore creates a session store. Identities listed in admins get the
// admin flag on their sessions.
func NewStore(admins []int64) *Store {
	st := &Store{
		sessions: make(map[int64]*Session),
		admins:   make(map[int64]struct{}, len(admins)),
	}
	for _, id := range admins {
		st.admins[id] = struct{}{}
	}
	return st
}

// Resolve returns the session for identity, creating it on first contact.
func (st *Store) Resolve(identity int64, firstName string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[identity]; ok {
		return s
	}
	_, admin := st.admins[identity]
	s := &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		FirstName: firstName,
		Admin:     admin,
	}
	st.sessions[identity] = s
	return s
}

// Get returns the session for identity without creating one.
func (st *Store) Get(identity int64) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[identity]
	return s, ok
}

// Reset drops the session for identity, including any in-flight quiz
// attempt or authoring state. The next contact starts fresh.
func (st *Store) Reset(identity int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, identity)
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
