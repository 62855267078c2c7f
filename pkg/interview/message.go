// Package interview implements the interview session engine: session
// lifecycle, the append-only message log, and question generation with a
// deterministic fallback.
package interview

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind identifies whose turn a message is.
type Kind string

const (
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Message is one turn in a session's log. Messages are immutable once
// appended; position equals creation order within the session.
type Message struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one interview conversation.
type Session struct {
	ID        string    `json:"id"`
	Owner     string    `json:"-"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return "i_" + ulid.Make().String()
}

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return "m_" + ulid.Make().String()
}
