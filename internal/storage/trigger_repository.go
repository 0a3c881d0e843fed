package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ad/autoreply-bot/internal/domain"
)

const triggerColumns = `key, kind, content_type, content_ref, category, created_at, updated_at`

// TriggerRepository handles trigger data operations
type TriggerRepository struct {
	queue  *DBQueue
	logger domain.Logger
}

// NewTriggerRepository creates a new TriggerRepository
func NewTriggerRepository(queue *DBQueue, logger domain.Logger) *TriggerRepository {
	return &TriggerRepository{
		queue:  queue,
		logger: logger,
	}
}

// triggerRow is the raw, nullable shape of a triggers row
type triggerRow struct {
	key         sql.NullString
	kind        sql.NullString
	contentType sql.NullString
	contentRef  sql.NullString
	category    sql.NullString
	createdAt   sql.NullString
	updatedAt   sql.NullString
}

func (r *triggerRow) dest() []interface{} {
	return []interface{}{
		&r.key, &r.kind, &r.contentType, &r.contentRef,
		&r.category, &r.createdAt, &r.updatedAt,
	}
}

// decode converts a row into a Trigger. Content types are not checked so an
// unsupported stored type still reaches the reply path.
func (r *triggerRow) decode() (*domain.Trigger, error) {
	if !r.key.Valid || r.key.String == "" {
		return nil, domain.ErrEmptyKey
	}
	kind := domain.TriggerKind(r.kind.String)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, r.kind.String)
	}
	if !r.contentRef.Valid || r.contentRef.String == "" {
		return nil, domain.ErrEmptyContentRef
	}

	createdAt, err := parseTimestamp(r.createdAt.String)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}

	t := &domain.Trigger{
		Key:         r.key.String,
		Kind:        kind,
		ContentType: domain.ContentType(r.contentType.String),
		ContentRef:  r.contentRef.String,
		CreatedAt:   createdAt,
	}
	if r.category.Valid && r.category.String != "" {
		category := r.category.String
		t.Category = &category
	}
	if r.updatedAt.Valid && r.updatedAt.String != "" {
		updatedAt, err := parseTimestamp(r.updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid updated_at: %w", err)
		}
		t.UpdatedAt = &updatedAt
	}
	if kind == domain.TriggerKindNumeric && t.Category == nil {
		return nil, domain.ErrMissingCategory
	}
	return t, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Insert stores a new trigger. An existing key yields domain.ErrTriggerExists
// and the stored trigger is left untouched.
func (r *TriggerRepository) Insert(ctx context.Context, trigger *domain.Trigger) error {
	if err := trigger.Validate(); err != nil {
		return fmt.Errorf("invalid trigger %q: %w", trigger.Key, err)
	}
	if trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}

	var category, updatedAt sql.NullString
	if trigger.Category != nil {
		category = sql.NullString{String: *trigger.Category, Valid: true}
	}
	if trigger.UpdatedAt != nil {
		updatedAt = sql.NullString{String: formatTimestamp(*trigger.UpdatedAt), Valid: true}
	}

	err := r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO triggers (`+triggerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			trigger.Key, string(trigger.Kind), string(trigger.ContentType), trigger.ContentRef,
			category, formatTimestamp(trigger.CreatedAt), updatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", domain.ErrTriggerExists, trigger.Key)
		}
		return fmt.Errorf("failed to insert trigger %q: %w", trigger.Key, err)
	}

	r.logger.Debug("trigger inserted", "key", trigger.Key, "kind", trigger.Kind)
	return nil
}

// FindByKey returns the trigger with exactly this key
func (r *TriggerRepository) FindByKey(ctx context.Context, key string) (*domain.Trigger, error) {
	var row triggerRow
	err := r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT `+triggerColumns+` FROM triggers WHERE key = ?`, key,
		).Scan(row.dest()...)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTriggerNotFound
		}
		return nil, fmt.Errorf("failed to find trigger %q: %w", key, err)
	}

	t, err := row.decode()
	if err != nil {
		return nil, fmt.Errorf("stored trigger %q is malformed: %w", key, err)
	}
	return t, nil
}

// FindByCategory lists numeric triggers of a bucket in numeric key order
func (r *TriggerRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Trigger, error) {
	return r.list(ctx, "category "+category,
		`SELECT `+triggerColumns+` FROM triggers WHERE category = ? ORDER BY CAST(key AS INTEGER), key`,
		category,
	)
}

// FindByKind lists triggers of one kind ordered by key
func (r *TriggerRepository) FindByKind(ctx context.Context, kind domain.TriggerKind) ([]*domain.Trigger, error) {
	return r.list(ctx, "kind "+string(kind),
		`SELECT `+triggerColumns+` FROM triggers WHERE kind = ? ORDER BY key`,
		string(kind),
	)
}

// ListAll returns every readable trigger ordered by key
func (r *TriggerRepository) ListAll(ctx context.Context) ([]*domain.Trigger, error) {
	return r.list(ctx, "all", `SELECT `+triggerColumns+` FROM triggers ORDER BY key`)
}

// list runs a multi-row query. Rows that do not decode are logged and skipped.
func (r *TriggerRepository) list(ctx context.Context, scope string, query string, args ...interface{}) ([]*domain.Trigger, error) {
	triggers := []*domain.Trigger{}

	err := r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var row triggerRow
			if err := rows.Scan(row.dest()...); err != nil {
				return err
			}
			t, err := row.decode()
			if err != nil {
				r.logger.Warn("skipping malformed trigger", "key", row.key.String, "scope", scope, "error", err)
				continue
			}
			triggers = append(triggers, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers (%s): %w", scope, err)
	}

	return triggers, nil
}

// Delete removes a trigger and reports whether a row was removed
func (r *TriggerRepository) Delete(ctx context.Context, key string) (bool, error) {
	var affected int64
	err := r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		result, err := db.ExecContext(ctx, `DELETE FROM triggers WHERE key = ?`, key)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete trigger %q: %w", key, err)
	}
	return affected > 0, nil
}

// Count returns the number of stored triggers
func (r *TriggerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.queue.ExecuteContext(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triggers`).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count triggers: %w", err)
	}
	return count, nil
}
