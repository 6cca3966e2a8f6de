package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret!pass")
	require.NoError(t, err)
	require.NotEqual(t, "Secret!pass", hash)

	assert.True(t, CheckPassword("Secret!pass", hash))
	assert.False(t, CheckPassword("Secret!pas", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("Secret!pass")
	require.NoError(t, err)
	second, err := HashPassword("Secret!pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Valid!pass", false},
		{"valid at min length", "Aa!bcdef", false},
		{"valid at max length", "Abcdefghijklmn!x", false},
		{"too short", "Ab!cdef", true},
		{"too long", "Abcdefghijklmno!x", true},
		{"no uppercase", "valid!pass", true},
		{"no special", "ValidPass1", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
