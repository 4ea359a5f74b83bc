package util

import "github.com/google/uuid"

// NewID returns a random identifier such as "std-9b2f0c1e-...". An empty
// prefix yields the bare UUID.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
