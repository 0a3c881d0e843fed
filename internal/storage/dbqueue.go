package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrQueueClosed is returned for requests submitted after Close
var ErrQueueClosed = errors.New("database queue is closed")

// DBQueue serializes all access to the SQLite database through one goroutine
type DBQueue struct {
	db         *sql.DB
	queryQueue chan *dbRequest
	done       chan struct{}
	closeOnce  sync.Once
	maxRetries int
	backoff    time.Duration
}

// dbRequest represents a database operation request
type dbRequest struct {
	query    func(*sql.DB) error
	response chan error
}

// NewDBQueue creates a new DBQueue instance
func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		db:         db,
		queryQueue: make(chan *dbRequest, 100),
		done:       make(chan struct{}),
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
	}
	go q.processQueue()
	return q
}

// processQueue processes database requests sequentially
func (q *DBQueue) processQueue() {
	for {
		select {
		case req := <-q.queryQueue:
			req.response <- q.executeWithRetry(req.query)
		case <-q.done:
			return
		}
	}
}

// executeWithRetry retries a query on SQLITE_BUSY with linear backoff. Other
// errors are returned immediately.
func (q *DBQueue) executeWithRetry(query func(*sql.DB) error) error {
	for i := 0; i < q.maxRetries; i++ {
		err := query(q.db)
		if err == nil {
			return nil
		}
		if isBusyError(err) {
			time.Sleep(q.backoff * time.Duration(i+1))
			continue
		}
		return err
	}
	return errors.New("max retries exceeded for SQLITE_BUSY")
}

// isBusyError checks if the error is a SQLITE_BUSY error
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY")
}

// isUniqueViolation checks if the error is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "SQLITE_CONSTRAINT_UNIQUE")
}

// Execute executes a database operation through the queue
func (q *DBQueue) Execute(query func(*sql.DB) error) error {
	return q.ExecuteContext(context.Background(), query)
}

// ExecuteContext is Execute that stops waiting when ctx is done. A request
// that already reached the worker still runs to completion.
func (q *DBQueue) ExecuteContext(ctx context.Context, query func(*sql.DB) error) error {
	req := &dbRequest{
		query:    query,
		response: make(chan error, 1),
	}

	select {
	case q.queryQueue <- req:
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.response:
		return err
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops processing. It is safe to call more than once.
func (q *DBQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
