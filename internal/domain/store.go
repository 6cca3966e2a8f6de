package domain

import "time"

// Store always references exactly one owner. The owner's role is switched
// to STORE_OWNER in the same transaction that creates the store.
type Store struct {
	ID        int64
	Name      string
	Email     string
	Address   string
	OwnerID   int64
	CreatedAt time.Time
}
