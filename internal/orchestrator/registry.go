package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Registry keeps live sessions in memory keyed by a random id. Sessions idle
// for longer than the timeout are closed by Sweep.
type Registry struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*entry
	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func NewRegistry(idleTimeout time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:    make(map[uuid.UUID]*entry),
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logger,
	}
}

func (r *Registry) Add(session *Session) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	r.sessions[id] = &entry{session: session, lastSeen: r.now()}
	r.mu.Unlock()

	return id
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}

	e.lastSeen = r.now()

	return e.session, true
}

func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}

	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep closes and forgets every session idle for longer than the timeout and
// returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	var expired []*Session

	r.mu.Lock()
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}

	if len(expired) > 0 {
		r.logger.Info("expired idle booking sessions", "count", len(expired))
	}

	return len(expired)
}

// Run sweeps at every interval until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}
