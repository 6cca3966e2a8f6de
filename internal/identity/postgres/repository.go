// Package postgres provides the PostgreSQL implementation of the identity repository.
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
	"github.com/ratehub/ratehub/internal/identity"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// Repository implements identity.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user. The unique index on email enforces the
// email-uniqueness invariant.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, address, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Address,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password_hash, address, role, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Address,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// UpdatePassword replaces a user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// userSortColumns whitelists sortable columns to keep user input out of SQL.
var userSortColumns = map[string]string{
	"name":       "u.name",
	"email":      "u.email",
	"address":    "u.address",
	"role":       "u.role",
	"created_at": "u.created_at",
}

// summarySelect joins each user with the average rating of the store they
// own, if any. Owners whose store has no ratings get 0, non-owners get NULL.
const summarySelect = `
	SELECT u.id, u.name, u.email, u.address, u.role, u.created_at,
	       CASE WHEN u.role = 'STORE_OWNER' THEN owned.avg_rating END
	FROM users u
	LEFT JOIN (
		SELECT s.owner_id, COALESCE(AVG(r.rating), 0)::float8 AS avg_rating
		FROM stores s
		LEFT JOIN ratings r ON r.store_id = s.id
		GROUP BY s.owner_id
	) owned ON owned.owner_id = u.id
`

func scanUserSummary(row pgx.Row) (*identity.UserSummary, error) {
	var u identity.UserSummary
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Address,
		&u.Role,
		&u.CreatedAt,
		&u.StoreRating,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user summary: %w", err)
	}
	return &u, nil
}

// ListUsers retrieves users matching the filter.
func (r *Repository) ListUsers(ctx context.Context, filter identity.UserFilter) ([]identity.UserSummary, error) {
	query := summarySelect

	var conditions []string
	var args []any

	addCondition := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Name != "" {
		addCondition(`u.name ILIKE '%%' || $%d || '%%'`, filter.Name)
	}
	if filter.Email != "" {
		addCondition(`u.email ILIKE '%%' || $%d || '%%'`, filter.Email)
	}
	if filter.Address != "" {
		addCondition(`u.address ILIKE '%%' || $%d || '%%'`, filter.Address)
	}
	if filter.Role != "" {
		addCondition(`u.role = $%d`, filter.Role)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortCol, ok := userSortColumns[filter.SortBy]
	if !ok {
		sortCol = "u.name"
	}
	direction := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortCol, direction)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]identity.UserSummary, 0)
	for rows.Next() {
		u, err := scanUserSummary(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// GetUserSummary retrieves the administrative projection of one user.
func (r *Repository) GetUserSummary(ctx context.Context, id int64) (*identity.UserSummary, error) {
	query := summarySelect + ` WHERE u.id = $1`
	return scanUserSummary(r.db.QueryRow(ctx, query, id))
}

// PlatformStats returns platform-wide totals.
func (r *Repository) PlatformStats(ctx context.Context) (*identity.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM stores),
			(SELECT COUNT(*) FROM ratings)
	`
	var stats identity.Stats
	err := r.db.QueryRow(ctx, query).Scan(&stats.TotalUsers, &stats.TotalStores, &stats.TotalRatings)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return &stats, nil
}
