package stores

import (
	"context"
	"time"

	"github.com/ratehub/ratehub/internal/domain"
)

// ListFilter represents filter and sort criteria for store listings.
// Zero-valued fields are ignored.
type ListFilter struct {
	Name      string
	Email     string
	Address   string
	SortBy    string // name, email, address, created_at, rating
	SortOrder string // asc or desc
}

// StoreWithRating is a store joined with its aggregate and owner profile.
// The administrative listing row.
type StoreWithRating struct {
	domain.Store
	Owner       domain.Profile
	Average     float64
	RatingCount int64
}

// StoreForUser is the browsing row for normal users: the aggregate plus
// the caller's own rating, when one exists.
type StoreForUser struct {
	ID          int64
	Name        string
	Address     string
	Average     float64
	RatingCount int64
	UserRating  *int32
}

// RatingWithAuthor is a store's rating joined with its author's public profile.
type RatingWithAuthor struct {
	Value     int32
	Author    domain.Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for store data operations.
type Repository interface {
	// CreateStoreWithOwner inserts the store and promotes its owner to
	// STORE_OWNER in a single transaction, so no state exists where the
	// store is visible but its owner still has another role.
	CreateStoreWithOwner(ctx context.Context, store *domain.Store) error

	GetStoreByID(ctx context.Context, id int64) (*domain.Store, error)
	GetStoreByOwner(ctx context.Context, ownerID int64) (*domain.Store, error)
	StoreExists(ctx context.Context, id int64) (bool, error)

	ListWithAggregates(ctx context.Context, filter ListFilter) ([]StoreWithRating, error)
	ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]StoreForUser, error)

	// ListRatingsWithAuthors returns every rating on the store joined
	// with its author, most recently modified first.
	ListRatingsWithAuthors(ctx context.Context, storeID int64) ([]RatingWithAuthor, error)
}
