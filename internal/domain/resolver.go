package domain

import (
	"context"
	"errors"
	"fmt"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// TriggerRepository is the storage contract for triggers. Keys are matched
// exactly; callers normalize before calling.
type TriggerRepository interface {
	Insert(ctx context.Context, trigger *Trigger) error
	FindByKey(ctx context.Context, key string) (*Trigger, error)
	FindByCategory(ctx context.Context, category string) ([]*Trigger, error)
	FindByKind(ctx context.Context, kind TriggerKind) ([]*Trigger, error)
	Delete(ctx context.Context, key string) (bool, error)
	ListAll(ctx context.Context) ([]*Trigger, error)
	Count(ctx context.Context) (int, error)
}

// Reply describes what to send back for a matched trigger
type Reply struct {
	Key         string
	ContentType ContentType
	Ref         string
	Caption     string
}

// Resolver answers end-user messages with stored trigger content
type Resolver struct {
	repo   TriggerRepository
	logger Logger
}

// NewResolver creates a new Resolver
func NewResolver(repo TriggerRepository, logger Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: logger,
	}
}

// Resolve looks up the trimmed input and builds a reply. It returns
// ErrNoMatch when no trigger has that key.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Reply, error) {
	key := NormalizeKey(raw)
	if key == "" {
		return nil, ErrNoMatch
	}

	trigger, err := r.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrTriggerNotFound) {
			r.logger.Debug("no trigger for input", "key", key)
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to look up trigger %q: %w", key, err)
	}

	return ReplyFor(trigger), nil
}

// ReplyFor builds the reply for a stored trigger. Unknown content types are
// passed through so the sender can report them as unsupported.
func ReplyFor(t *Trigger) *Reply {
	reply := &Reply{
		Key:         t.Key,
		ContentType: t.ContentType,
		Ref:         t.ContentRef,
	}
	if t.ContentType.HasCaption() {
		reply.Caption = t.Key
	}
	return reply
}
