package ratings

import "errors"

var (
	ErrStoreNotFound  = errors.New("store not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrInvalidValue   = errors.New("rating must be between 1 and 5")

	// ErrDuplicate signals a unique-key violation on the (user, store)
	// pair. The ledger resolves it by retrying as an update; it reaches
	// the caller only when that retry also fails.
	ErrDuplicate = errors.New("rating already exists")
)
