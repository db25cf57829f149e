package fares

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for fare table storage.
type Repository interface {
	// ListEntries returns every entry of the fare table.
	ListEntries(ctx context.Context) ([]Entry, error)
}

// Writer replaces a stored fare table as a whole.
type Writer interface {
	ReplaceEntries(ctx context.Context, entries []Entry) error
}

var validate = validator.New()

// ValidateEntries checks every entry and rejects duplicate tiers.
func ValidateEntries(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if err := validate.Struct(e); err != nil {
			return fmt.Errorf("%w: entry %d (%s): %w", ErrInvalidEntry, i, e.Tier, err)
		}
		if _, dup := seen[e.Tier]; dup {
			return fmt.Errorf("%w: duplicate tier %q", ErrInvalidEntry, e.Tier)
		}
		seen[e.Tier] = struct{}{}
	}
	return nil
}
