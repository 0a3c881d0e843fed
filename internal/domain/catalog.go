package domain

import (
	"context"
	"errors"
	"fmt"
)

// TextSection is the browsing section for text triggers, which have no
// numeric category.
const TextSection = "text"

// DefaultPageSize is the number of triggers shown per listing page
const DefaultPageSize = 25

var ErrUnknownSection = errors.New("unknown trigger section")

// TriggerPage is one page of a section listing
type TriggerPage struct {
	Section  string
	Number   int
	Triggers []*Trigger
	Total    int
	HasPrev  bool
	HasNext  bool
}

// Catalog implements the browsing and deletion flow over the trigger store.
// It keeps no state between calls; the section and page travel in each
// request.
type Catalog struct {
	repo        TriggerRepository
	partitioner *Partitioner
	pageSize    int
	logger      Logger
}

// NewCatalog creates a new Catalog. A non-positive pageSize falls back to
// DefaultPageSize.
func NewCatalog(repo TriggerRepository, partitioner *Partitioner, pageSize int, logger Logger) *Catalog {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Catalog{
		repo:        repo,
		partitioner: partitioner,
		pageSize:    pageSize,
		logger:      logger,
	}
}

// PageSize returns the configured page size
func (c *Catalog) PageSize() int { return c.pageSize }

// ListCategories returns every numeric bucket followed by the text section
func (c *Catalog) ListCategories() []string {
	sections := c.partitioner.AllBuckets()
	return append(sections, TextSection)
}

// DefaultSection is shown when the section of a trigger cannot be determined
func (c *Catalog) DefaultSection() string {
	return c.partitioner.First()
}

// SectionOf returns the browsing section a trigger is listed under
func SectionOf(t *Trigger) string {
	if t.Category != nil && *t.Category != "" {
		return *t.Category
	}
	return TextSection
}

// ListTriggers returns one page of a section. Pages past the end are empty,
// not an error.
func (c *Catalog) ListTriggers(ctx context.Context, section string, page int) (*TriggerPage, error) {
	var (
		all []*Trigger
		err error
	)

	switch {
	case section == TextSection:
		all, err = c.repo.FindByKind(ctx, TriggerKindText)
	case c.partitioner.IsBucket(section):
		all, err = c.repo.FindByCategory(ctx, section)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list section %q: %w", section, err)
	}

	return Paginate(section, all, page, c.pageSize), nil
}

// Paginate slices items into the requested page. A page past the end is
// returned empty.
func Paginate(section string, items []*Trigger, page, pageSize int) *TriggerPage {
	if page < 0 {
		page = 0
	}
	total := len(items)
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	result := &TriggerPage{
		Section:  section,
		Number:   page,
		Total:    total,
		Triggers: []*Trigger{},
		HasPrev:  page > 0,
		HasNext:  page < pages-1,
	}

	// Bounds are checked before multiplying so huge page numbers cannot wrap
	if page >= pages {
		return result
	}
	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	result.Triggers = items[start:end]
	return result
}

// Count returns how many triggers are stored
func (c *Catalog) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

// ShowDetail returns the trigger with the given key or ErrTriggerNotFound
func (c *Catalog) ShowDetail(ctx context.Context, key string) (*Trigger, error) {
	return c.repo.FindByKey(ctx, key)
}

// Delete removes a trigger and reports the section whose listing should be
// shown afterwards. When the trigger is already gone the default section is
// returned with deleted=false.
func (c *Catalog) Delete(ctx context.Context, key string) (section string, deleted bool, err error) {
	section = c.DefaultSection()

	trigger, err := c.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		section = SectionOf(trigger)
	case errors.Is(err, ErrTriggerNotFound):
		c.logger.Debug("trigger to delete not found", "key", key)
	default:
		return section, false, fmt.Errorf("failed to load trigger %q: %w", key, err)
	}

	deleted, err = c.repo.Delete(ctx, key)
	if err != nil {
		return section, false, fmt.Errorf("failed to delete trigger %q: %w", key, err)
	}

	c.logger.Info("trigger deleted", "key", key, "deleted", deleted, "section", section)
	return section, deleted, nil
}
