package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest title a task may have.
const MaxTitleLength = 255

// Task is a unit of work, optionally owned by a Client.
type Task struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title"`
	ClientID *int64 `json:"client_id,omitempty"`
}

// IsNew reports whether the task has not been persisted yet.
func (t *Task) IsNew() bool {
	return t.ID == 0
}

// Normalize trims surrounding whitespace from the title.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
}

// Validate checks the task's fields. Whether the referenced client exists is
// left to the store.
func (t *Task) Validate() error {
	if t.ID < 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required", nil)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", "is too long", nil)
	}

	if t.ClientID != nil && *t.ClientID <= 0 {
		return NewValidationError("client_id", "must be positive", ErrInvalidID)
	}

	return nil
}
