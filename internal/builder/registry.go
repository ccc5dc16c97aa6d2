package builder

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/enade/internal/bank"
)

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 12 * time.Hour

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry keeps one Session per browser, keyed by an opaque id. Sessions
// idle for longer than the idle timeout are evicted, draft included.
type Registry struct {
	mu        sync.Mutex
	bank      *bank.Bank
	sessions  map[string]*entry
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// NewRegistry creates an empty registry over the given bank.
func NewRegistry(b *bank.Bank) *Registry {
	return &Registry{
		bank:     b,
		sessions: make(map[string]*entry),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
	}
}

// SetIdleTimeout changes how long an untouched session survives.
func (r *Registry) SetIdleTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idle = d
}

// SetClock replaces the time source used for idle tracking.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// NewID returns a fresh session id.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// Valid reports whether id is a well-formed session id.
func (r *Registry) Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// With runs fn on the session for id, creating it on first use. Calls for
// the same registry are serialized so a mutation runs to completion before
// the next one starts.
func (r *Registry) With(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(r.bank)}
		r.sessions[id] = e
	}
	e.lastUsed = now
	return fn(e.session)
}

// View runs fn on the session for id without registering it. Unknown ids get
// a throwaway session with no draft, so callers that cannot start one never
// grow the registry.
func (r *Registry) View(id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.sessions[id]
	if !ok {
		return fn(NewSession(r.bank))
	}
	e.lastUsed = now
	return fn(e.session)
}

// sweep evicts idle sessions, at most once per tenth of the idle timeout.
// Callers hold r.mu.
func (r *Registry) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.idle/10 {
		return
	}
	r.lastSweep = now
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.idle {
			delete(r.sessions, id)
		}
	}
}

// Drop forgets the session for id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
