package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidContextData is returned when session data is invalid
	ErrInvalidContextData = errors.New("invalid context data")
	// ErrMissingRequiredField is returned when a required field is missing
	ErrMissingRequiredField = errors.New("missing required field")
)

// TriggerDraft holds the data collected while an admin authors a trigger.
// It lives only in the session store and is never written to the trigger
// table until every field is present.
type TriggerDraft struct {
	SessionID       string      `json:"session_id"`
	ChatID          int64       `json:"chat_id"`
	PromptMessageID int         `json:"prompt_message_id"`
	Kind            TriggerKind `json:"kind"`
	Key             string      `json:"key"`
	ContentType     ContentType `json:"content_type"`
	ContentRef      string      `json:"content_ref"`
}

// ToMap converts TriggerDraft to a map for JSON serialization
func (d *TriggerDraft) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"session_id":        d.SessionID,
		"chat_id":           d.ChatID,
		"prompt_message_id": d.PromptMessageID,
		"kind":              string(d.Kind),
		"key":               d.Key,
		"content_type":      string(d.ContentType),
		"content_ref":       d.ContentRef,
	}
}

// FromMap populates TriggerDraft from a map after JSON deserialization
func (d *TriggerDraft) FromMap(data map[string]interface{}) error {
	if data == nil {
		return ErrInvalidContextData
	}

	if v, ok := data["session_id"].(string); ok {
		d.SessionID = v
	}

	// Numbers arrive as float64 after a JSON round trip, as int64/int when the
	// map was built in process.
	d.ChatID = int64Field(data, "chat_id")
	d.PromptMessageID = int(int64Field(data, "prompt_message_id"))

	if v, ok := data["kind"].(string); ok {
		d.Kind = TriggerKind(v)
	}
	if v, ok := data["key"].(string); ok {
		d.Key = v
	}
	if v, ok := data["content_type"].(string); ok {
		d.ContentType = ContentType(v)
	}
	if v, ok := data["content_ref"].(string); ok {
		d.ContentRef = v
	}

	if d.Kind != "" && !d.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidContextData, d.Kind)
	}
	if d.ContentType != "" && !d.ContentType.Valid() {
		return fmt.Errorf("%w: content type %q", ErrInvalidContextData, d.ContentType)
	}

	return nil
}

// Complete reports an error naming the first missing field, or nil when the
// draft can be committed.
func (d *TriggerDraft) Complete() error {
	switch {
	case d.Kind == "":
		return fmt.Errorf("%w: kind", ErrMissingRequiredField)
	case d.Key == "":
		return fmt.Errorf("%w: key", ErrMissingRequiredField)
	case d.ContentType == "":
		return fmt.Errorf("%w: content_type", ErrMissingRequiredField)
	case d.ContentRef == "":
		return fmt.Errorf("%w: content_ref", ErrMissingRequiredField)
	}
	return nil
}

func int64Field(data map[string]interface{}, key string) int64 {
	switch v := data[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
