package draft

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sessions keeps one Engine per user.
//
// Go Pattern: Two levels of locking. The registry mutex only guards the
// map; each session has its own mutex held for the whole operation, so
// one user's slow save never blocks another user's edit.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*session
	newEngine func() *Engine
	idle      time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

type session struct {
	mu       sync.Mutex
	engine   *Engine
	lastUsed time.Time
	evicted  bool
}

// NewSessions creates a registry. idle <= 0 disables eviction.
func NewSessions(newEngine func() *Engine, idle time.Duration, log zerolog.Logger) *Sessions {
	return &Sessions{
		sessions:  make(map[string]*session),
		newEngine: newEngine,
		idle:      idle,
		now:       time.Now,
		log:       log,
	}
}

// With runs fn on uid's engine, creating it on first use. Calls for the
// same uid run one at a time.
func (s *Sessions) With(uid string, fn func(*Engine) error) error {
	for {
		sess := s.get(uid)
		sess.mu.Lock()
		if sess.evicted {
			// Lost a race with the janitor; take the fresh session
			sess.mu.Unlock()
			continue
		}
		err := fn(sess.engine)
		sess.lastUsed = s.now()
		sess.mu.Unlock()
		return err
	}
}

func (s *Sessions) get(uid string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[uid]
	if !ok {
		sess = &session{engine: s.newEngine(), lastUsed: s.now()}
		s.sessions[uid] = sess
	}
	return sess
}

// Discard drops uid's draft.
func (s *Sessions) Discard(uid string) {
	s.mu.Lock()
	sess, ok := s.sessions[uid]
	delete(s.sessions, uid)
	s.mu.Unlock()

	if ok {
		sess.mu.Lock()
		sess.evicted = true
		sess.mu.Unlock()
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes sessions idle for longer than the idle timeout. Sessions
// in use are skipped.
func (s *Sessions) Evict() int {
	if s.idle <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idle)
	evicted := 0
	for uid, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) {
			sess.evicted = true
			delete(s.sessions, uid)
			evicted++
		}
		sess.mu.Unlock()
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.log.Info().Int("evicted", n).Int("active", s.Len()).Msg("🧹 Evicted idle draft sessions")
			}
		}
	}
}
