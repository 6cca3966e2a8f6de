package stores

import (
	"context"
	"fmt"

	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/ratings"
)

// Service implements store business logic and the read-only projections
// built over the rating ledger.
type Service struct {
	repo Repository
}

// NewService creates a new store service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateStoreInput holds data for creating a store.
type CreateStoreInput struct {
	Name    string
	Email   string
	Address string
	OwnerID int64
}

// Create creates a store for the given owner. The owner's promotion to
// STORE_OWNER happens in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, input CreateStoreInput) (*domain.Store, error) {
	store := &domain.Store{
		Name:    input.Name,
		Email:   input.Email,
		Address: input.Address,
		OwnerID: input.OwnerID,
	}

	if err := s.repo.CreateStoreWithOwner(ctx, store); err != nil {
		return nil, err
	}

	return store, nil
}

// List returns all stores with their aggregates. Admin operation.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]StoreWithRating, error) {
	list, err := s.repo.ListWithAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Average = ratings.RoundAverage(list[i].Average)
	}
	return list, nil
}

// ListForUser returns the browsing view for a normal user, including the
// caller's own rating per store.
func (s *Service) ListForUser(ctx context.Context, userID int64, filter ListFilter) ([]StoreForUser, error) {
	list, err := s.repo.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Average = ratings.RoundAverage(list[i].Average)
	}
	return list, nil
}

// OwnerDashboard is the owner's view of their store: aggregate plus every
// rating joined with its author.
type OwnerDashboard struct {
	Store       domain.Store
	Average     float64
	RatingCount int64
	Ratings     []RatingWithAuthor
}

// Dashboard returns the dashboard for the store owned by ownerID.
// Fails with ErrStoreNotFound when the user owns no store.
func (s *Service) Dashboard(ctx context.Context, ownerID int64) (*OwnerDashboard, error) {
	store, err := s.repo.GetStoreByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ListRatingsWithAuthors(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("list store ratings: %w", err)
	}

	var sum int64
	for _, r := range list {
		sum += int64(r.Value)
	}
	var average float64
	if len(list) > 0 {
		average = ratings.RoundAverage(float64(sum) / float64(len(list)))
	}

	return &OwnerDashboard{
		Store:       *store,
		Average:     average,
		RatingCount: int64(len(list)),
		Ratings:     list,
	}, nil
}

// StoreExists reports whether a store exists. Satisfies
// ratings.StoreDirectory.
func (s *Service) StoreExists(ctx context.Context, storeID int64) (bool, error) {
	return s.repo.StoreExists(ctx, storeID)
}
