package scansession

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry keeps the live sessions of a process by name.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrStart returns the named session, creating and starting it with
// create when it does not exist yet.
func (r *Registry) GetOrStart(ctx context.Context, name string, create func() (*Session, error)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[name]; ok {
		return s, nil
	}

	s, err := create()
	if err != nil {
		return nil, fmt.Errorf("create session %q: %w", name, err)
	}
	if err := s.Start(ctx); err != nil {
		// A rejected initial zoom does not stop scanning.
		log.Warn().Err(err).Str("name", name).Msg("Session started without initial zoom")
	}
	r.sessions[name] = s
	log.Info().Str("name", name).Str("session", s.ID.String()).Msg("Session started")
	return s, nil
}

// Get returns the named session if it is live.
func (r *Registry) Get(name string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Close closes and forgets the named session.
func (r *Registry) Close(name string) bool {
	r.mu.Lock()
	s, ok := r.sessions[name]
	delete(r.sessions, name)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
