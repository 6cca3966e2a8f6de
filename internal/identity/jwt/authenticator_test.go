package jwt

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/ratehub/ratehub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	token, err := auth.GenerateToken(7, domain.RoleNormalUser)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, role, err := auth.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.Equal(t, domain.RoleNormalUser, role)
}

func TestValidate_ExpiredToken(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret", TokenTTL: -time.Minute})

	token, err := auth.GenerateToken(7, domain.RoleNormalUser)
	require.NoError(t, err)

	_, _, err = auth.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewAuthenticator(Config{SecretKey: "secret-a"})
	verifier := NewAuthenticator(Config{SecretKey: "secret-b"})

	token, err := issuer.GenerateToken(7, domain.RoleAdmin)
	require.NoError(t, err)

	_, _, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Malformed(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, _, err := auth.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestValidate_TamperedPayload(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	token, err := auth.GenerateToken(7, domain.RoleNormalUser)
	require.NoError(t, err)

	// Flip a character inside the payload segment
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	_, _, err = auth.ValidateToken(context.Background(), string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsUnexpectedSigningMethod(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	claims := Claims{
		UserID: 7,
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = auth.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsUnknownRole(t *testing.T) {
	auth := NewAuthenticator(Config{SecretKey: "test-secret"})

	claims := Claims{
		UserID: 7,
		Role:   "SUPER_USER",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = auth.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
