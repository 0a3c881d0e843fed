package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTriggerValidation(t *testing.T) {
	tests := []struct {
		name        string
		trigger     Trigger
		expectedErr error
	}{
		{
			name: "valid numeric photo trigger",
			trigger: Trigger{
				Key:         "7",
				Kind:        TriggerKindNumeric,
				ContentType: ContentTypePhoto,
				ContentRef:  "AgACAgIAAxkBAAIB",
				Category:    strPtr("1-25"),
				CreatedAt:   time.Now(),
			},
		},
		{
			name: "valid text trigger",
			trigger: Trigger{
				Key:         "hello",
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
				ContentRef:  "Hi there",
			},
		},
		{
			name: "empty key",
			trigger: Trigger{
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
				ContentRef:  "x",
			},
			expectedErr: ErrEmptyKey,
		},
		{
			name: "untrimmed key",
			trigger: Trigger{
				Key:         " hello",
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
				ContentRef:  "x",
			},
			expectedErr: ErrEmptyKey,
		},
		{
			name: "key longer than a button payload allows",
			trigger: Trigger{
				Key:         strings.Repeat("k", MaxKeyLength+1),
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
				ContentRef:  "x",
			},
			expectedErr: ErrKeyTooLong,
		},
		{
			name: "empty content ref",
			trigger: Trigger{
				Key:         "hello",
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
			},
			expectedErr: ErrEmptyContentRef,
		},
		{
			name: "unknown content type",
			trigger: Trigger{
				Key:         "hello",
				Kind:        TriggerKindText,
				ContentType: ContentType("gif"),
				ContentRef:  "x",
			},
			expectedErr: ErrInvalidContentType,
		},
		{
			name: "unknown kind",
			trigger: Trigger{
				Key:         "hello",
				Kind:        TriggerKind("regex"),
				ContentType: ContentTypeText,
				ContentRef:  "x",
			},
			expectedErr: ErrInvalidKind,
		},
		{
			name: "numeric without category",
			trigger: Trigger{
				Key:         "7",
				Kind:        TriggerKindNumeric,
				ContentType: ContentTypeText,
				ContentRef:  "x",
			},
			expectedErr: ErrMissingCategory,
		},
		{
			name: "numeric with letters",
			trigger: Trigger{
				Key:         "7a",
				Kind:        TriggerKindNumeric,
				ContentType: ContentTypeText,
				ContentRef:  "x",
				Category:    strPtr("1-25"),
			},
			expectedErr: ErrNonNumericKey,
		},
		{
			name: "text with category",
			trigger: Trigger{
				Key:         "hello",
				Kind:        TriggerKindText,
				ContentType: ContentTypeText,
				ContentRef:  "x",
				Category:    strPtr("1-25"),
			},
			expectedErr: ErrUnexpectedCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.trigger.Validate()
			if tt.expectedErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.expectedErr)
			}
		})
	}
}

func TestParseNumericKey(t *testing.T) {
	valid := map[string]int64{"0": 0, "7": 7, "007": 7, "500": 500}
	for in, want := range valid {
		got, err := ParseNumericKey(in)
		if err != nil || got != want {
			t.Errorf("ParseNumericKey(%q) = %d, %v; want %d", in, got, err, want)
		}
	}

	for _, in := range []string{"", "abc", "-1", "+1", "1.5", " 7", "١٢", "99999999999999999999"} {
		if _, err := ParseNumericKey(in); err == nil {
			t.Errorf("ParseNumericKey(%q) expected error", in)
		}
	}
}

func TestContentTypeCaption(t *testing.T) {
	for _, ct := range AllContentTypes {
		want := ct != ContentTypeText && ct != ContentTypeSticker
		if ct.HasCaption() != want {
			t.Errorf("%s.HasCaption() = %v, want %v", ct, ct.HasCaption(), want)
		}
		if !ct.Valid() {
			t.Errorf("%s should be valid", ct)
		}
	}
	if ContentType("gif").Valid() {
		t.Error("gif should not be valid")
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  Hello World \n"); got != "Hello World" {
		t.Errorf("NormalizeKey() = %q", got)
	}
}
