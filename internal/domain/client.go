package domain

import (
	"strings"
	"unicode/utf8"
)

// Limits for Client fields.
const (
	MaxLoginLength    = 64
	MinPasswordLength = 8
	// bcrypt ignores anything past 72 bytes
	MaxPasswordLength = 72
)

// Client is an account that owns tasks.
//
// Password carries a plaintext password on input only. Stores hash it before
// writing and never populate it on read, so it is omitted from responses.
// The tasks a client owns are not held here; they are queried through the
// task repository by client ID.
type Client struct {
	ID             int64  `json:"id,omitempty"`
	Login          string `json:"login"`
	Password       string `json:"password,omitempty"`
	HashedPassword string `json:"-"`
}

// IsNew reports whether the client has not been persisted yet.
func (c *Client) IsNew() bool {
	return c.ID == 0
}

// Normalize trims surrounding whitespace from the login, so " a" and "a"
// name the same client.
func (c *Client) Normalize() {
	c.Login = strings.TrimSpace(c.Login)
}

// Validate checks the client's fields. A password is mandatory for a new
// client and optional for an update, where an empty value keeps the stored
// hash.
func (c *Client) Validate() error {
	if c.ID < 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}

	if strings.TrimSpace(c.Login) == "" {
		return NewValidationError("login", "is required", nil)
	}
	if utf8.RuneCountInString(c.Login) > MaxLoginLength {
		return NewValidationError("login", "is too long", nil)
	}

	if c.Password == "" {
		if c.IsNew() {
			return NewValidationError("password", "is required", nil)
		}
		return nil
	}
	if len(c.Password) < MinPasswordLength {
		return NewValidationError("password", "is too short", nil)
	}
	if len(c.Password) > MaxPasswordLength {
		return NewValidationError("password", "is too long", nil)
	}

	return nil
}
