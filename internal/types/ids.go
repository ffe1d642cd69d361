package types

import "github.com/google/uuid"

// OptionID identifies a predefined custom-field option. String alias keeps
// type safety while scanning directly from a TEXT column.
type OptionID string

// NewOptionID generates a UUIDv7 option identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewOptionID() OptionID {
	return OptionID(uuid.Must(uuid.NewV7()).String())
}

// ParseOptionID validates and converts a string to OptionID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseOptionID(s string) (OptionID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return OptionID(s), nil
}
