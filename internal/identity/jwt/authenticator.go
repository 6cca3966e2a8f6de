// Package jwt implements token issuance and validation for identity claims.
package jwt

import (
	"context"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ratehub/ratehub/internal/domain"
)

// ErrInvalidToken is returned for any token defect: bad signature,
// malformed payload, unexpected signing method, or expiry. Callers get
// no detail about which check failed.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is the claim lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Config contains authenticator settings. SecretKey is process-wide
// configuration loaded once at startup; rotating it invalidates all
// outstanding tokens.
type Config struct {
	SecretKey string
	TokenTTL  time.Duration
}

// Claims is the payload encoded into every issued token.
type Claims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwtlib.RegisteredClaims
}

// Authenticator mints and verifies HS256-signed identity claims.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates an authenticator from config.
func NewAuthenticator(cfg Config) *Authenticator {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{
		secret: []byte(cfg.SecretKey),
		ttl:    ttl,
	}
}

// GenerateToken issues a signed token encoding the user's identity claim.
func (a *Authenticator) GenerateToken(userID int64, role domain.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(a.ttl)),
		},
	}

	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(a.secret)
}

// ValidateToken verifies signature and expiry and returns the decoded claim.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (int64, domain.Role, error) {
	token, err := jwtlib.ParseWithClaims(
		tokenString,
		&Claims{},
		func(_ *jwtlib.Token) (interface{}, error) { return a.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 || !claims.Role.IsValid() {
		return 0, "", ErrInvalidToken
	}

	return claims.UserID, claims.Role, nil
}
