package domain

import "time"

// RatingMin and RatingMax bound the accepted rating values.
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is identified by its (UserID, StoreID) pair. The ratings table
// carries that pair as its primary key, so at most one row can exist per
// user per store.
type Rating struct {
	UserID    int64
	StoreID   int64
	Value     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidRatingValue reports whether v is inside [RatingMin, RatingMax].
func ValidRatingValue(v int32) bool {
	return v >= RatingMin && v <= RatingMax
}
