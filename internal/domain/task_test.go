package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValidate(t *testing.T) {
	owner := int64(7)
	badOwner := int64(0)

	tests := []struct {
		name      string
		task      Task
		wantField string
	}{
		{name: "title only", task: Task{Title: "Test"}},
		{name: "with owner", task: Task{Title: "Test", ClientID: &owner}},
		{name: "missing title", task: Task{}, wantField: "title"},
		{name: "blank title", task: Task{Title: "\t "}, wantField: "title"},
		{
			name:      "title too long",
			task:      Task{Title: strings.Repeat("t", MaxTitleLength+1)},
			wantField: "title",
		},
		{
			name:      "padded title over the limit",
			task:      Task{Title: strings.Repeat("t", MaxTitleLength) + "  "},
			wantField: "title",
		},
		{name: "zero owner", task: Task{Title: "Test", ClientID: &badOwner}, wantField: "client_id"},
		{name: "negative id", task: Task{ID: -4, Title: "Test"}, wantField: "id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidID))
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required", nil)
	assert.Equal(t, "title is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	err = NewValidationError("id", "has invalid format", ErrInvalidID)
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestTaskNormalize(t *testing.T) {
	task := Task{Title: strings.Repeat("t", MaxTitleLength) + "  "}
	task.Normalize()
	assert.Len(t, task.Title, MaxTitleLength)
	assert.NoError(t, task.Validate())
}
