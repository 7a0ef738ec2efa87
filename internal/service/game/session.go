package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// session is the envelope shared by the multi-step games. Exactly one of the
// variant payloads is non-nil. Callers mutate a session only while holding mu,
// and a session is removed from the store the moment it reaches a terminal
// status.
type session struct {
	id        string
	userID    int64
	bet       decimal.Decimal
	createdAt time.Time

	mu        sync.Mutex
	blackjack *blackjackState
	poker     *pokerState
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) create(userID int64, bet decimal.Decimal) *session {
	sess := &session{
		id:        uuid.NewString(),
		userID:    userID,
		bet:       bet,
		createdAt: time.Now(),
	}
	st.mu.Lock()
	st.sessions[sess.id] = sess
	st.mu.Unlock()
	return sess
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

func (st *sessionStore) remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *sessionStore) count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
