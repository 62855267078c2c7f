package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mockmate/mockmate/pkg/core"
)

// Engine owns session lifecycle and is the only mutation surface for a
// session. Answer submissions are serialized per session; different sessions
// are fully independent.
type Engine struct {
	store     Store
	generator *Generator
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a session engine.
func NewEngine(store Store, generator *Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     store,
		generator: generator,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// CreateSession starts a new interview for the owner, seeded with the opening
// question at position 0. Each call creates a new, independent session; a
// user may run multiple interviews.
func (e *Engine) CreateSession(ctx context.Context, owner string) (*Session, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, core.NewAuthenticationError("missing owner")
	}

	now := e.now().UTC()
	session := &Session{
		ID:        NewSessionID(),
		Owner:     owner,
		Status:    StatusActive,
		CreatedAt: now,
		Messages: []Message{{
			ID:        NewMessageID(),
			Kind:      KindQuestion,
			Content:   SeedQuestion,
			Position:  0,
			CreatedAt: now,
		}},
	}

	if err := e.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("interview created", "interview_id", session.ID)
	return session, nil
}

// SubmitAnswer appends the candidate's answer, generates the next question,
// appends it, and returns it. When the fallback bank is exhausted the
// returned question is the closing remark and the session transitions to
// closed; submissions against a closed session fail validation.
func (e *Engine) SubmitAnswer(ctx context.Context, owner, sessionID, answer string) (Message, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Message{}, core.NewInvalidRequestErrorWithParam("answer must not be empty", "answer")
	}
	if strings.TrimSpace(sessionID) == "" {
		return Message{}, core.NewInvalidRequestErrorWithParam("interview id is required", "interviewId")
	}

	// At most one in-flight submission per session; anything else races the
	// alternation invariant and sequence positions.
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := e.store.LoadSession(ctx, sessionID, owner)
	if err != nil {
		return Message{}, err
	}
	if session.Status != StatusActive {
		return Message{}, core.NewInvalidRequestError("interview is closed")
	}

	now := e.now().UTC()
	log := NewLog(session.Messages)
	answerMsg, err := log.Append(KindAnswer, answer, now)
	if err != nil {
		return Message{}, err
	}

	questionText, closing := e.generator.NextQuestion(ctx, session.Messages, answer)
	questionMsg, err := log.Append(KindQuestion, questionText, now)
	if err != nil {
		return Message{}, err
	}

	if err := e.store.AppendExchange(ctx, session.ID, answerMsg, questionMsg, closing); err != nil {
		return Message{}, err
	}

	if closing {
		e.logger.Info("interview closed", "interview_id", session.ID, "messages", log.Len())
	}
	return questionMsg, nil
}

// GetSession returns the session with its full ordered log, read-only.
func (e *Engine) GetSession(ctx context.Context, owner, sessionID string) (*Session, error) {
	return e.store.LoadSession(ctx, sessionID, owner)
}

// ListSessions returns the owner's sessions, most recent first.
func (e *Engine) ListSessions(ctx context.Context, owner string) ([]*Session, error) {
	return e.store.ListSessions(ctx, owner)
}

func (e *Engine) lockFor(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[sessionID] = lock
	}
	return lock
}
