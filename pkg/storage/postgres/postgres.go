// Package postgres provides the durable Store backed by PostgreSQL.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mockmate/mockmate/pkg/core"
	"github.com/mockmate/mockmate/pkg/interview"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists sessions and messages in PostgreSQL through a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database, runs pending migrations, and returns the
// store.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrate(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ interview.Store = (*Store)(nil)

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return goose.Up(db, "migrations")
}

func (s *Store) CreateSession(ctx context.Context, session *interview.Session) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.NewStorageError("create session", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, owner_id, status, created_at) VALUES ($1, $2, $3, $4)`,
		session.ID, session.Owner, session.Status, session.CreatedAt,
	)
	if err != nil {
		return core.NewStorageError("create session", err)
	}
	for _, msg := range session.Messages {
		if err := insertMessage(ctx, tx, session.ID, msg); err != nil {
			return core.NewStorageError("create session", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return core.NewStorageError("create session", err)
	}
	return nil
}

func (s *Store) LoadSession(ctx context.Context, id, owner string) (*interview.Session, error) {
	session := &interview.Session{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, status, created_at FROM sessions WHERE id = $1 AND owner_id = $2`,
		id, owner,
	).Scan(&session.ID, &session.Owner, &session.Status, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.NewNotFoundError("interview not found")
	}
	if err != nil {
		return nil, core.NewStorageError("load session", err)
	}

	session.Messages, err = s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) ListSessions(ctx context.Context, owner string) ([]*interview.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, status, created_at FROM sessions WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, core.NewStorageError("list sessions", err)
	}
	defer rows.Close()

	var sessions []*interview.Session
	for rows.Next() {
		session := &interview.Session{}
		if err := rows.Scan(&session.ID, &session.Owner, &session.Status, &session.CreatedAt); err != nil {
			return nil, core.NewStorageError("list sessions", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list sessions", err)
	}

	for _, session := range sessions {
		session.Messages, err = s.loadMessages(ctx, session.ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *Store) AppendExchange(ctx context.Context, sessionID string, answer, question interview.Message, closeSession bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.NewStorageError("append exchange", err)
	}
	defer tx.Rollback(ctx)

	if err := insertMessage(ctx, tx, sessionID, answer); err != nil {
		return core.NewStorageError("append exchange", err)
	}
	if err := insertMessage(ctx, tx, sessionID, question); err != nil {
		return core.NewStorageError("append exchange", err)
	}
	if closeSession {
		if _, err := tx.Exec(ctx,
			`UPDATE sessions SET status = $1 WHERE id = $2`,
			interview.StatusClosed, sessionID,
		); err != nil {
			return core.NewStorageError("append exchange", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return core.NewStorageError("append exchange", err)
	}
	return nil
}

func (s *Store) loadMessages(ctx context.Context, sessionID string) ([]interview.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, content, position, created_at FROM messages WHERE session_id = $1 ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, core.NewStorageError("load messages", err)
	}
	defer rows.Close()

	var msgs []interview.Message
	for rows.Next() {
		var msg interview.Message
		if err := rows.Scan(&msg.ID, &msg.Kind, &msg.Content, &msg.Position, &msg.CreatedAt); err != nil {
			return nil, core.NewStorageError("load messages", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("load messages", err)
	}
	return msgs, nil
}

func insertMessage(ctx context.Context, tx pgx.Tx, sessionID string, msg interview.Message) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO messages (id, session_id, kind, content, position, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, sessionID, msg.Kind, msg.Content, msg.Position, msg.CreatedAt,
	)
	return err
}
