package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skohli21/utility-bill-analyzer/utils"
)

// Session owns the bill collection accumulated across one user's uploads.
// The collection itself is not safe for concurrent writers, so all access
// goes through Update.
type Session struct {
	ID         uuid.UUID
	collection *utils.BillCollection
	mu         sync.Mutex
}

// Update runs fn with exclusive access to the session's collection.
func (s *Session) Update(fn func(*utils.BillCollection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.collection)
}

// SessionStore keeps sessions in memory, keyed by UUID. Sessions idle past
// the TTL are removed by Sweep, which the cron janitor calls periodically.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*Session
	lastAccess map[uuid.UUID]time.Time
	ttl        time.Duration
	logger     *logrus.Logger
}

func NewSessionStore(ttl time.Duration, logger *logrus.Logger) *SessionStore {
	return &SessionStore{
		sessions:   make(map[uuid.UUID]*Session),
		lastAccess: make(map[uuid.UUID]time.Time),
		ttl:        ttl,
		logger:     logger,
	}
}

// GetOrCreate returns the session with the given ID, creating a fresh one
// when the ID is empty, unknown or not a UUID.
func (st *SessionStore) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if parsed, err := uuid.Parse(id); err == nil {
		if s, ok := st.sessions[parsed]; ok {
			st.lastAccess[parsed] = time.Now()
			return s
		}
	}

	s := &Session{
		ID:         uuid.New(),
		collection: utils.NewBillCollection(),
	}
	st.sessions[s.ID] = s
	st.lastAccess[s.ID] = time.Now()
	st.logger.Infof("Created session %s", s.ID)
	return s
}

// Get looks up an existing session.
func (st *SessionStore) Get(id string) (*Session, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[parsed]
	if ok {
		st.lastAccess[parsed] = time.Now()
	}
	return s, ok
}

// Delete ends a session explicitly.
func (st *SessionStore) Delete(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[parsed]; !ok {
		return false
	}
	delete(st.sessions, parsed)
	delete(st.lastAccess, parsed)
	return true
}

// Sweep drops sessions idle past the TTL.
func (st *SessionStore) Sweep() {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-st.ttl)
	for id, last := range st.lastAccess {
		if last.Before(cutoff) {
			delete(st.sessions, id)
			delete(st.lastAccess, id)
			st.logger.Infof("Expired session %s", id)
		}
	}
}

// Count reports the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
