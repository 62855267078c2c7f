package interview

import "context"

// Store is the durable session/message persistence collaborator. Each method
// is one logical operation and must apply atomically: session creation is a
// session row plus the seed message, an exchange is an answer row plus a
// question row (plus the status flip when the exchange closes the session).
//
// Implementations return a not-found error for unknown session ids and for
// sessions owned by someone else, and wrap persistence failures as storage
// errors.
type Store interface {
	// CreateSession persists a new session together with its seed message.
	CreateSession(ctx context.Context, session *Session) error

	// LoadSession returns the session with its full ordered message log.
	LoadSession(ctx context.Context, id, owner string) (*Session, error)

	// ListSessions returns the owner's sessions most-recent-first, each with
	// its full message log.
	ListSessions(ctx context.Context, owner string) ([]*Session, error)

	// AppendExchange persists an answer/question pair in a single
	// transaction, closing the session when closeSession is set.
	AppendExchange(ctx context.Context, sessionID string, answer, question Message, closeSession bool) error
}
