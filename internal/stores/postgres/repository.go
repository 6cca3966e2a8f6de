// Package postgres provides the PostgreSQL implementation of the stores repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/stores"
)

const uniqueViolation = "23505"

// Repository implements stores.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateStoreWithOwner inserts the store and promotes its owner inside one
// transaction. The owner row is locked first so a concurrent creation for
// the same owner serializes here.
func (r *Repository) CreateStoreWithOwner(ctx context.Context, store *domain.Store) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerRole domain.Role
	err = tx.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, store.OwnerID).Scan(&ownerRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stores.ErrOwnerNotFound
		}
		return fmt.Errorf("lock owner: %w", err)
	}

	insertQuery := `
		INSERT INTO stores (name, email, address, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		store.Name,
		store.Email,
		store.Address,
		store.OwnerID,
	).Scan(&store.ID, &store.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return stores.ErrEmailExists
		}
		return fmt.Errorf("insert store: %w", err)
	}

	if ownerRole != domain.RoleStoreOwner {
		if _, err := tx.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, store.OwnerID, domain.RoleStoreOwner); err != nil {
			return fmt.Errorf("promote owner: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const storeColumns = `id, name, email, address, owner_id, created_at`

func scanStore(row pgx.Row) (*domain.Store, error) {
	var store domain.Store
	err := row.Scan(
		&store.ID,
		&store.Name,
		&store.Email,
		&store.Address,
		&store.OwnerID,
		&store.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stores.ErrStoreNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return &store, nil
}

// GetStoreByID retrieves a store by ID.
func (r *Repository) GetStoreByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	return scanStore(r.db.QueryRow(ctx, query, id))
}

// GetStoreByOwner retrieves the store owned by the given user.
func (r *Repository) GetStoreByOwner(ctx context.Context, ownerID int64) (*domain.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE owner_id = $1`
	return scanStore(r.db.QueryRow(ctx, query, ownerID))
}

// StoreExists reports whether a store with the given ID exists.
func (r *Repository) StoreExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store exists: %w", err)
	}
	return exists, nil
}

// storeSortColumns whitelists sortable columns to keep user input out of SQL.
var storeSortColumns = map[string]string{
	"name":       "s.name",
	"email":      "s.email",
	"address":    "s.address",
	"created_at": "s.created_at",
	"rating":     "COALESCE(AVG(r.rating), 0)",
}

func orderClause(filter stores.ListFilter) string {
	sortCol, ok := storeSortColumns[filter.SortBy]
	if !ok {
		sortCol = "s.name"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", sortCol, direction)
}

// ListWithAggregates retrieves all stores matching the filter, each joined
// with its owner profile and rating aggregate. Aggregates come from the
// current rating set; nothing precomputed is read.
func (r *Repository) ListWithAggregates(ctx context.Context, filter stores.ListFilter) ([]stores.StoreWithRating, error) {
	query := `
		SELECT s.id, s.name, s.email, s.address, s.owner_id, s.created_at,
		       u.id, u.name, u.email,
		       COALESCE(AVG(r.rating), 0)::float8, COUNT(r.rating)
		FROM stores s
		JOIN users u ON u.id = s.owner_id
		LEFT JOIN ratings r ON r.store_id = s.id
	`

	var conditions []string
	var args []any

	addCondition := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Name != "" {
		addCondition(`s.name ILIKE '%%' || $%d || '%%'`, filter.Name)
	}
	if filter.Email != "" {
		addCondition(`s.email ILIKE '%%' || $%d || '%%'`, filter.Email)
	}
	if filter.Address != "" {
		addCondition(`s.address ILIKE '%%' || $%d || '%%'`, filter.Address)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY s.id, u.id"
	query += orderClause(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	out := make([]stores.StoreWithRating, 0)
	for rows.Next() {
		var swr stores.StoreWithRating
		err := rows.Scan(
			&swr.ID,
			&swr.Name,
			&swr.Email,
			&swr.Address,
			&swr.OwnerID,
			&swr.CreatedAt,
			&swr.Owner.ID,
			&swr.Owner.Name,
			&swr.Owner.Email,
			&swr.Average,
			&swr.RatingCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, swr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	return out, nil
}

// ListForUser retrieves the browsing view for a user: every store with its
// aggregate and the caller's own rating when present.
func (r *Repository) ListForUser(ctx context.Context, userID int64, filter stores.ListFilter) ([]stores.StoreForUser, error) {
	query := `
		SELECT s.id, s.name, s.address,
		       COALESCE(AVG(r.rating), 0)::float8, COUNT(r.rating),
		       MAX(r.rating) FILTER (WHERE r.user_id = $1)
		FROM stores s
		LEFT JOIN ratings r ON r.store_id = s.id
	`

	args := []any{userID}
	var conditions []string

	addCondition := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Name != "" {
		addCondition(`s.name ILIKE '%%' || $%d || '%%'`, filter.Name)
	}
	if filter.Address != "" {
		addCondition(`s.address ILIKE '%%' || $%d || '%%'`, filter.Address)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " GROUP BY s.id"
	query += orderClause(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stores for user: %w", err)
	}
	defer rows.Close()

	out := make([]stores.StoreForUser, 0)
	for rows.Next() {
		var sfu stores.StoreForUser
		err := rows.Scan(
			&sfu.ID,
			&sfu.Name,
			&sfu.Address,
			&sfu.Average,
			&sfu.RatingCount,
			&sfu.UserRating,
		)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		out = append(out, sfu)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}

	return out, nil
}

// ListRatingsWithAuthors retrieves every rating on a store joined with its
// author's public profile, most recently modified first.
func (r *Repository) ListRatingsWithAuthors(ctx context.Context, storeID int64) ([]stores.RatingWithAuthor, error) {
	query := `
		SELECT r.rating, r.created_at, r.updated_at,
		       u.id, u.name, u.email
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.store_id = $1
		ORDER BY r.updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store ratings: %w", err)
	}
	defer rows.Close()

	out := make([]stores.RatingWithAuthor, 0)
	for rows.Next() {
		var rwa stores.RatingWithAuthor
		err := rows.Scan(
			&rwa.Value,
			&rwa.CreatedAt,
			&rwa.UpdatedAt,
			&rwa.Author.ID,
			&rwa.Author.Name,
			&rwa.Author.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, rwa)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return out, nil
}
