// Package postgres provides the PostgreSQL implementation of the ratings repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/ratings"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Repository implements ratings.Repository using PostgreSQL. The primary
// key on (user_id, store_id) is the source of truth for the
// one-rating-per-user-per-store invariant.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Find retrieves the rating for a (user, store) pair.
func (r *Repository) Find(ctx context.Context, userID, storeID int64) (*domain.Rating, error) {
	query := `
		SELECT user_id, store_id, rating, created_at, updated_at
		FROM ratings
		WHERE user_id = $1 AND store_id = $2
	`
	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, userID, storeID).Scan(
		&rating.UserID,
		&rating.StoreID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ratings.ErrRatingNotFound
		}
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return &rating, nil
}

// Insert creates a new rating row. A concurrent insert for the same pair
// surfaces as ErrDuplicate; a dangling store reference as ErrStoreNotFound.
func (r *Repository) Insert(ctx context.Context, rating *domain.Rating) error {
	query := `
		INSERT INTO ratings (user_id, store_id, rating)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		rating.UserID,
		rating.StoreID,
		rating.Value,
	).Scan(&rating.CreatedAt, &rating.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return ratings.ErrDuplicate
			case foreignKeyViolation:
				return ratings.ErrStoreNotFound
			}
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// Update overwrites the value and modification timestamp of an existing rating.
func (r *Repository) Update(ctx context.Context, rating *domain.Rating) error {
	query := `
		UPDATE ratings
		SET rating = $3, updated_at = NOW()
		WHERE user_id = $1 AND store_id = $2
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		rating.UserID,
		rating.StoreID,
		rating.Value,
	).Scan(&rating.CreatedAt, &rating.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ratings.ErrRatingNotFound
		}
		return fmt.Errorf("update rating: %w", err)
	}
	return nil
}

// Delete removes the rating for a (user, store) pair.
func (r *Repository) Delete(ctx context.Context, userID, storeID int64) error {
	query := `DELETE FROM ratings WHERE user_id = $1 AND store_id = $2`
	tag, err := r.db.Exec(ctx, query, userID, storeID)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ratings.ErrRatingNotFound
	}
	return nil
}

// ListByUser retrieves the user's ratings joined with their stores,
// most recently modified first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]ratings.RatingWithStore, error) {
	query := `
		SELECT r.user_id, r.store_id, r.rating, r.created_at, r.updated_at,
		       s.name, s.address
		FROM ratings r
		JOIN stores s ON s.id = r.store_id
		WHERE r.user_id = $1
		ORDER BY r.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by user: %w", err)
	}
	defer rows.Close()

	out := make([]ratings.RatingWithStore, 0)
	for rows.Next() {
		var rws ratings.RatingWithStore
		err := rows.Scan(
			&rws.UserID,
			&rws.StoreID,
			&rws.Value,
			&rws.CreatedAt,
			&rws.UpdatedAt,
			&rws.StoreName,
			&rws.StoreAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return out, nil
}

// AggregateForStore computes average and count over the store's current ratings.
func (r *Repository) AggregateForStore(ctx context.Context, storeID int64) (float64, int64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
		FROM ratings
		WHERE store_id = $1
	`
	var avg float64
	var count int64
	if err := r.db.QueryRow(ctx, query, storeID).Scan(&avg, &count); err != nil {
		return 0, 0, fmt.Errorf("aggregate ratings: %w", err)
	}
	return avg, count, nil
}
