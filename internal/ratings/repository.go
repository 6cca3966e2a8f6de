package ratings

import (
	"context"

	"github.com/ratehub/ratehub/internal/domain"
)

// RatingWithStore is a user's rating joined with the store it belongs to.
type RatingWithStore struct {
	domain.Rating
	StoreName    string
	StoreAddress string
}

// Repository defines the interface for rating ledger data operations.
// The backing store must enforce uniqueness of the (user, store) pair;
// Insert reports a violation as ErrDuplicate.
type Repository interface {
	Find(ctx context.Context, userID, storeID int64) (*domain.Rating, error)
	Insert(ctx context.Context, rating *domain.Rating) error
	Update(ctx context.Context, rating *domain.Rating) error
	Delete(ctx context.Context, userID, storeID int64) error

	// ListByUser returns the user's ratings, most recently modified first.
	ListByUser(ctx context.Context, userID int64) ([]RatingWithStore, error)

	// AggregateForStore computes average and count over the current set
	// of ratings for the store. Empty set yields (0, 0).
	AggregateForStore(ctx context.Context, storeID int64) (average float64, count int64, err error)
}

// StoreDirectory answers store existence checks for submit preconditions.
type StoreDirectory interface {
	StoreExists(ctx context.Context, storeID int64) (bool, error)
}
