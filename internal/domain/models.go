package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Validation errors
var (
	ErrEmptyKey           = errors.New("trigger key cannot be empty")
	ErrNonNumericKey      = errors.New("numeric trigger key must be a non-negative integer")
	ErrInvalidKind        = errors.New("invalid trigger kind")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrEmptyContentRef    = errors.New("content reference cannot be empty")
	ErrUnexpectedCategory = errors.New("text trigger cannot have a category")
	ErrMissingCategory    = errors.New("numeric trigger must have a category")
	ErrKeyTooLong         = errors.New("trigger key is too long")
)

// MaxKeyLength is the longest key in bytes that still fits an inline button
// payload such as "delete-confirm:<key>" within Telegram's 64 byte limit.
const MaxKeyLength = 49

// Store conditions
var (
	ErrTriggerExists   = errors.New("trigger already exists")
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrNoMatch         = errors.New("no trigger matches input")
)

// TriggerKind determines how a trigger key is validated and whether it is
// placed into a category.
type TriggerKind string

const (
	TriggerKindNumeric TriggerKind = "numeric"
	TriggerKindText    TriggerKind = "text"
)

// Valid reports whether k is a known kind
func (k TriggerKind) Valid() bool {
	switch k {
	case TriggerKindNumeric, TriggerKindText:
		return true
	default:
		return false
	}
}

// ContentType is the closed set of reply payloads a trigger can carry
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypePhoto    ContentType = "photo"
	ContentTypeVideo    ContentType = "video"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeVoice    ContentType = "voice"
	ContentTypeDocument ContentType = "document"
	ContentTypeSticker  ContentType = "sticker"
)

// AllContentTypes lists every supported content type in menu order
var AllContentTypes = []ContentType{
	ContentTypeText,
	ContentTypePhoto,
	ContentTypeVideo,
	ContentTypeAudio,
	ContentTypeVoice,
	ContentTypeDocument,
	ContentTypeSticker,
}

// Valid reports whether c is one of the supported content types
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypePhoto, ContentTypeVideo, ContentTypeAudio,
		ContentTypeVoice, ContentTypeDocument, ContentTypeSticker:
		return true
	default:
		return false
	}
}

// HasCaption reports whether replies of this type carry the trigger key as
// caption. Text replies are the caption themselves; stickers have none.
func (c ContentType) HasCaption() bool {
	switch c {
	case ContentTypePhoto, ContentTypeVideo, ContentTypeAudio, ContentTypeVoice, ContentTypeDocument:
		return true
	default:
		return false
	}
}

// Trigger maps a user input to a stored reply
type Trigger struct {
	Key         string
	Kind        TriggerKind
	ContentType ContentType
	// ContentRef is the literal reply for text content, otherwise a
	// Telegram file_id.
	ContentRef string
	Category   *string // set iff Kind is numeric
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// CategoryOrEmpty returns the category label or "" for text triggers
func (t *Trigger) CategoryOrEmpty() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// Validate validates a Trigger before it is persisted
func (t *Trigger) Validate() error {
	if t.Key == "" || strings.TrimSpace(t.Key) != t.Key {
		return ErrEmptyKey
	}
	if len(t.Key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if !t.ContentType.Valid() {
		return ErrInvalidContentType
	}
	if t.ContentRef == "" {
		return ErrEmptyContentRef
	}

	switch t.Kind {
	case TriggerKindNumeric:
		if _, err := ParseNumericKey(t.Key); err != nil {
			return err
		}
		if t.Category == nil || *t.Category == "" {
			return ErrMissingCategory
		}
	case TriggerKindText:
		if t.Category != nil {
			return ErrUnexpectedCategory
		}
	default:
		return ErrInvalidKind
	}

	return nil
}

// NormalizeKey trims surrounding whitespace. No case folding is applied.
func NormalizeKey(raw string) string {
	return strings.TrimSpace(raw)
}

// ParseNumericKey parses a key made only of ASCII digits
func ParseNumericKey(key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, ErrNonNumericKey
		}
	}
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, ErrNonNumericKey
	}
	return n, nil
}
