package identity

import (
	"context"
	"time"

	"github.com/ratehub/ratehub/internal/domain"
)

// UserFilter represents filter and sort criteria for listing users.
// Zero-valued fields are ignored.
type UserFilter struct {
	Name      string
	Email     string
	Address   string
	Role      domain.Role
	SortBy    string // name, email, address, role, created_at
	SortOrder string // asc or desc
}

// UserSummary is the administrative projection of a user. StoreRating is
// populated for store owners whose store has ratings.
type UserSummary struct {
	ID          int64
	Name        string
	Email       string
	Address     string
	Role        domain.Role
	CreatedAt   time.Time
	StoreRating *float64
}

// Stats holds platform-wide totals for the admin dashboard.
type Stats struct {
	TotalUsers   int64
	TotalStores  int64
	TotalRatings int64
}

// Repository defines the interface for user data operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	ListUsers(ctx context.Context, filter UserFilter) ([]UserSummary, error)
	GetUserSummary(ctx context.Context, id int64) (*UserSummary, error)
	PlatformStats(ctx context.Context) (*Stats, error)
}
