// Package transfer writes and reads YAML backups of the trigger store.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ad/autoreply-bot/internal/domain"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the backup layout written by Export
const FormatVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported backup version")

// Document is the top level of a backup file
type Document struct {
	Version    int       `yaml:"version"`
	ExportedAt time.Time `yaml:"exported_at"`
	Triggers   []Record  `yaml:"triggers"`
}

// Record is one trigger in a backup. Category is informational; import
// recomputes it from the configured partition.
type Record struct {
	Key         string    `yaml:"key"`
	Kind        string    `yaml:"kind"`
	ContentType string    `yaml:"content_type"`
	ContentRef  string    `yaml:"content_ref"`
	Category    string    `yaml:"category,omitempty"`
	CreatedAt   time.Time `yaml:"created_at,omitempty"`
}

// ImportResult counts what happened to each record
type ImportResult struct {
	Imported int
	Skipped  int // key already present
	Invalid  int
}

// Service moves triggers between the store and backup files
type Service struct {
	repo        domain.TriggerRepository
	partitioner *domain.Partitioner
	logger      domain.Logger
	now         func() time.Time
}

// NewService creates a new transfer Service
func NewService(repo domain.TriggerRepository, partitioner *domain.Partitioner, logger domain.Logger) *Service {
	return &Service{
		repo:        repo,
		partitioner: partitioner,
		logger:      logger,
		now:         time.Now,
	}
}

// Export writes every readable trigger to w and returns how many were written
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	triggers, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	doc := Document{
		Version:    FormatVersion,
		ExportedAt: s.now().UTC(),
		Triggers:   make([]Record, 0, len(triggers)),
	}
	for _, t := range triggers {
		doc.Triggers = append(doc.Triggers, Record{
			Key:         t.Key,
			Kind:        string(t.Kind),
			ContentType: string(t.ContentType),
			ContentRef:  t.ContentRef,
			Category:    t.CategoryOrEmpty(),
			CreatedAt:   t.CreatedAt.UTC(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("triggers exported", "count", len(doc.Triggers))
	return len(doc.Triggers), nil
}

// Import reads a backup and inserts its triggers. Existing keys are never
// overwritten. Records that fail validation are counted and skipped; a store
// failure aborts the import.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &ImportResult{}, nil
		}
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	result := &ImportResult{}
	for i, rec := range doc.Triggers {
		trigger, err := s.toTrigger(rec)
		if err != nil {
			s.logger.Warn("skipping invalid backup record", "index", i, "key", rec.Key, "error", err)
			result.Invalid++
			continue
		}

		err = s.repo.Insert(ctx, trigger)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, domain.ErrTriggerExists):
			s.logger.Debug("trigger already present, skipping", "key", trigger.Key)
			result.Skipped++
		default:
			return result, fmt.Errorf("failed to import trigger %q: %w", trigger.Key, err)
		}
	}

	s.logger.Info("triggers imported",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"invalid", result.Invalid,
	)
	return result, nil
}

func (s *Service) toTrigger(rec Record) (*domain.Trigger, error) {
	t := &domain.Trigger{
		Key:         domain.NormalizeKey(rec.Key),
		Kind:        domain.TriggerKind(rec.Kind),
		ContentType: domain.ContentType(rec.ContentType),
		ContentRef:  rec.ContentRef,
		CreatedAt:   rec.CreatedAt.UTC(),
	}
	if rec.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}

	if t.Kind == domain.TriggerKindNumeric {
		n, err := domain.ParseNumericKey(t.Key)
		if err != nil {
			return nil, err
		}
		label, err := s.partitioner.BucketFor(n)
		if err != nil {
			return nil, err
		}
		t.Category = &label
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
