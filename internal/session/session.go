package session

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Session struct {
	ID        string
	UserID    string
	CSRF      string
	AdminMode bool
	Flash     *Flash

	// ChallengeBag holds the challenge indices not drawn yet, in draw order.
	ChallengeBag []int
}

// Reset logs the session out while keeping its id and csrf token.
func (s *Session) Reset() {
	s.UserID = ""
	s.AdminMode = false
	s.ChallengeBag = nil
}

func (s *Session) SetFlash(kind, message string) {
	s.Flash = &Flash{Type: kind, Message: message}
}

// TakeFlash returns the pending flash and clears it.
func (s *Session) TakeFlash() *Flash {
	f := s.Flash
	s.Flash = nil

	return f
}

// Store keeps sessions in memory. Sessions do not survive a restart; the remember cookie restores the login.
// A session untouched for idleTTL is evicted by a background sweep.
type Store struct {
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stop chan struct{}
	once sync.Once
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewStore starts a store with background eviction. Call Stop() on shutdown.
func NewStore(idleTTL, cleanupInterval time.Duration) *Store {
	st := &Store{
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
	go st.cleanup(cleanupInterval)

	return st
}

// Stop terminates the background eviction goroutine.
func (st *Store) Stop() {
	st.once.Do(func() { close(st.stop) })
}

// Get returns a copy of the session with the given id, creating a fresh one when id is unknown.
func (st *Store) Get(id string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	if e, ok := st.sessions[id]; ok && id != "" {
		e.lastSeen = now
		return clone(e.session)
	}

	s := &Session{
		ID:   uuid.NewString(),
		CSRF: NewCSRFToken(),
	}
	st.sessions[s.ID] = &entry{session: s, lastSeen: now}

	return clone(s)
}

// Update applies fn to the stored session and returns the result.
func (st *Store) Update(id string, fn func(s *Session)) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return Session{}, false
	}
	e.lastSeen = st.now()
	fn(e.session)

	return clone(e.session), true
}

// Len reports how many sessions are held.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

func (st *Store) evictIdle() {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) >= st.idleTTL {
			delete(st.sessions, id)
		}
	}
}

func (st *Store) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			st.evictIdle()
		}
	}
}

// ResetUser logs out every session bound to userID.
func (st *Store) ResetUser(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, e := range st.sessions {
		if e.session.UserID == userID {
			e.session.Reset()
		}
	}
}

// NewCSRFToken returns 16 random bytes, hex encoded.
func NewCSRFToken() string {
	id := uuid.New()

	return hex.EncodeToString(id[:])
}

func clone(s *Session) Session {
	out := *s
	if s.Flash != nil {
		f := *s.Flash
		out.Flash = &f
	}
	out.ChallengeBag = append([]int(nil), s.ChallengeBag...)

	return out
}
