package ratings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/pkg/metrics"
)

// Summary is the aggregate over all ratings of a store, recomputed from
// the current ledger on every call.
type Summary struct {
	Average float64
	Count   int64
}

// RoundAverage rounds an average to one decimal place, half-up.
func RoundAverage(v float64) float64 {
	return math.Round(v*10) / 10
}

// Service owns the one-rating-per-(user,store) ledger.
type Service struct {
	repo   Repository
	stores StoreDirectory
}

// NewService creates a new rating ledger service.
func NewService(repo Repository, stores StoreDirectory) *Service {
	return &Service{repo: repo, stores: stores}
}

// Submit upserts the caller's rating for a store. Returns the resulting
// rating and whether it was created (true) or updated in place (false).
//
// Concurrent submissions for the same (user, store) pair are serialized
// by the backing store's uniqueness constraint: a writer that loses the
// insert race observes ErrDuplicate and retries as an update exactly once.
func (s *Service) Submit(ctx context.Context, userID, storeID int64, value int32) (*domain.Rating, bool, error) {
	if !domain.ValidRatingValue(value) {
		return nil, false, ErrInvalidValue
	}

	exists, err := s.stores.StoreExists(ctx, storeID)
	if err != nil {
		return nil, false, fmt.Errorf("check store: %w", err)
	}
	if !exists {
		return nil, false, ErrStoreNotFound
	}

	rating := &domain.Rating{UserID: userID, StoreID: storeID, Value: value}

	_, err = s.repo.Find(ctx, userID, storeID)
	switch {
	case err == nil:
		if err := s.repo.Update(ctx, rating); err != nil {
			return nil, false, err
		}
		metrics.RatingsSubmitted.WithLabelValues("updated").Inc()
		return rating, false, nil

	case errors.Is(err, ErrRatingNotFound):
		err := s.repo.Insert(ctx, rating)
		if errors.Is(err, ErrDuplicate) {
			// A concurrent writer inserted first; take the update path.
			if err := s.repo.Update(ctx, rating); err != nil {
				return nil, false, fmt.Errorf("resolve concurrent submit: %w", ErrDuplicate)
			}
			metrics.RatingsSubmitted.WithLabelValues("updated").Inc()
			return rating, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		metrics.RatingsSubmitted.WithLabelValues("created").Inc()
		return rating, true, nil

	default:
		return nil, false, fmt.Errorf("find rating: %w", err)
	}
}

// Remove deletes the caller's rating for a store.
func (s *Service) Remove(ctx context.Context, userID, storeID int64) error {
	return s.repo.Delete(ctx, userID, storeID)
}

// ListForUser returns the caller's ratings, most recently modified first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]RatingWithStore, error) {
	return s.repo.ListByUser(ctx, userID)
}

// StoreSummary computes the aggregate for a store from the full current
// rating set. A store with no ratings yields {Average: 0, Count: 0}.
func (s *Service) StoreSummary(ctx context.Context, storeID int64) (*Summary, error) {
	avg, count, err := s.repo.AggregateForStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("aggregate for store: %w", err)
	}
	return &Summary{Average: RoundAverage(avg), Count: count}, nil
}
