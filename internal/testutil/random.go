package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RandomEmail returns a unique email address for test fixtures.
func RandomEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// RandomName returns a unique user or store name long enough to pass
// the 20-character minimum.
func RandomName(prefix string) string {
	return fmt.Sprintf("%s Account %s", prefix, uuid.NewString()[:13])
}
