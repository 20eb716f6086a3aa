package api

import (
	"strconv"

	"github.com/phrazzld/taskhub-api/internal/domain"
)

// ParseInt64ID parses a positive decimal surrogate key.
func ParseInt64ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}
