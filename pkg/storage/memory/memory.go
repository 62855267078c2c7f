// Package memory provides an in-memory Store used by tests and by
// development mode when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/mockmate/mockmate/pkg/core"
	"github.com/mockmate/mockmate/pkg/interview"
)

// Store keeps sessions in process memory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
	order    []string // creation order of session ids
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*interview.Session),
	}
}

var _ interview.Store = (*Store)(nil)

func (s *Store) CreateSession(ctx context.Context, session *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return core.NewStorageError("create session", errDuplicateID)
	}
	s.sessions[session.ID] = cloneSession(session)
	s.order = append(s.order, session.ID)
	return nil
}

func (s *Store) LoadSession(ctx context.Context, id, owner string) (*interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || session.Owner != owner {
		return nil, core.NewNotFoundError("interview not found")
	}
	return cloneSession(session), nil
}

func (s *Store) ListSessions(ctx context.Context, owner string) ([]*interview.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*interview.Session
	for i := len(s.order) - 1; i >= 0; i-- {
		session := s.sessions[s.order[i]]
		if session.Owner == owner {
			out = append(out, cloneSession(session))
		}
	}
	return out, nil
}

func (s *Store) AppendExchange(ctx context.Context, sessionID string, answer, question interview.Message, closeSession bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return core.NewNotFoundError("interview not found")
	}
	session.Messages = append(session.Messages, answer, question)
	if closeSession {
		session.Status = interview.StatusClosed
	}
	return nil
}

func cloneSession(in *interview.Session) *interview.Session {
	out := *in
	out.Messages = make([]interview.Message, len(in.Messages))
	copy(out.Messages, in.Messages)
	return &out
}

var errDuplicateID = duplicateIDError{}

type duplicateIDError struct{}

func (duplicateIDError) Error() string { return "duplicate session id" }
