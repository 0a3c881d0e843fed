package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ad/autoreply-bot/internal/logger"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session outlived its TTL
	ErrSessionExpired = errors.New("session expired")
)

// DefaultSessionTTL is how long an untouched wizard session survives
const DefaultSessionTTL = 30 * time.Minute

// FSMStorage implements persistent storage for wizard sessions
type FSMStorage struct {
	queue  *DBQueue
	logger *logger.Logger
	ttl    time.Duration
}

// NewFSMStorage creates a new FSM storage backed by SQLite. A non-positive
// ttl falls back to DefaultSessionTTL.
func NewFSMStorage(queue *DBQueue, log *logger.Logger, ttl time.Duration) *FSMStorage {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &FSMStorage{
		queue:  queue,
		logger: log.With("component", "fsm_storage"),
		ttl:    ttl,
	}
}

// TTL returns the session lifetime
func (s *FSMStorage) TTL() time.Duration {
	return s.ttl
}

// threshold renders the TTL as an SQLite datetime modifier
func (s *FSMStorage) threshold() string {
	return fmt.Sprintf("-%d seconds", int64(s.ttl/time.Second))
}

// Get retrieves state and draft data for a user. An expired session is
// deleted and reported as ErrSessionExpired.
func (s *FSMStorage) Get(ctx context.Context, userID int64) (state string, data map[string]interface{}, err error) {
	var contextJSON string
	var expired bool

	err = s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `
			SELECT state, context_json, updated_at < datetime('now', ?)
			FROM fsm_sessions
			WHERE user_id = ?
		`, s.threshold(), userID)

		return row.Scan(&state, &contextJSON, &expired)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("session not found", "user_id", userID)
			return "", nil, ErrSessionNotFound
		}
		s.logger.Error("failed to get session", "user_id", userID, "error", err)
		return "", nil, err
	}

	if expired {
		s.logger.Info("session expired", "user_id", userID, "state", state)
		_ = s.Delete(ctx, userID)
		return "", nil, ErrSessionExpired
	}

	if err := json.Unmarshal([]byte(contextJSON), &data); err != nil {
		s.logger.Error("failed to unmarshal context", "user_id", userID, "error", err)
		// Corrupted drafts cannot be resumed
		_ = s.Delete(ctx, userID)
		return "", nil, err
	}
	if data == nil {
		data = make(map[string]interface{})
	}

	s.logger.Debug("session retrieved", "user_id", userID, "state", state)
	return state, data, nil
}

// Set stores state and draft data for a user, replacing any previous session
func (s *FSMStorage) Set(ctx context.Context, userID int64, state string, data map[string]interface{}) error {
	contextJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal context", "user_id", userID, "error", err)
		return err
	}

	err = s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO fsm_sessions (user_id, state, context_json, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				state = excluded.state,
				context_json = excluded.context_json,
				updated_at = CURRENT_TIMESTAMP
		`, userID, state, string(contextJSON))
		return err
	})

	if err != nil {
		s.logger.Error("failed to set session", "user_id", userID, "state", state, "error", err)
		return err
	}

	s.logger.Debug("session stored", "user_id", userID, "state", state)
	return nil
}

// Delete removes the session for a user. Deleting a missing session is not an error.
func (s *FSMStorage) Delete(ctx context.Context, userID int64) error {
	var rowsAffected int64
	err := s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `DELETE FROM fsm_sessions WHERE user_id = ?`, userID)
		if err != nil {
			return err
		}
		rowsAffected, err = result.RowsAffected()
		return err
	})

	if err != nil {
		s.logger.Error("failed to delete session", "user_id", userID, "error", err)
		return err
	}

	if rowsAffected == 0 {
		s.logger.Debug("session not found for deletion", "user_id", userID)
		return nil
	}
	s.logger.Debug("session deleted", "user_id", userID)
	return nil
}

// CleanupStale removes sessions that were not updated within the TTL and
// returns how many were removed
func (s *FSMStorage) CleanupStale(ctx context.Context) (int64, error) {
	var deletedCount int64
	err := s.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `
			DELETE FROM fsm_sessions
			WHERE updated_at < datetime('now', ?)
		`, s.threshold())
		if err != nil {
			return err
		}

		deletedCount, err = result.RowsAffected()
		return err
	})

	if err != nil {
		s.logger.Error("failed to cleanup stale sessions", "error", err)
		return 0, err
	}

	if deletedCount > 0 {
		s.logger.Info("cleaned up stale sessions", "count", deletedCount)
	} else {
		s.logger.Debug("no stale sessions to cleanup")
	}

	return deletedCount, nil
}

// RunSweeper calls CleanupStale every interval until ctx is done. Cleanup
// failures are logged and the sweeper keeps running.
func (s *FSMStorage) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started", "interval", interval.String(), "ttl", s.ttl.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return nil
		case <-ticker.C:
			_, _ = s.CleanupStale(ctx)
		}
	}
}
