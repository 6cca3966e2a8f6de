//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/ratehub/internal/testutil"
)

func TestRegister_CreatesNormalUser(t *testing.T) {
	client := newTestClient(t)

	email := testutil.RandomEmail("register")
	resp, err := client.POST("/api/v1/auth/register", map[string]interface{}{
		"name":     testutil.RandomName("Register"),
		"email":    email,
		"password": testPassword,
		"address":  "42 Test Avenue",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				ID    int64  `json:"id"`
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	assert.NotEmpty(t, result.Data.Token)
	assert.NotZero(t, result.Data.User.ID)
	assert.Equal(t, email, result.Data.User.Email)
	assert.Equal(t, "NORMAL_USER", result.Data.User.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	client := newTestClient(t)
	_, email, _ := registerTestUser(t, client, "dup")

	resp, err := client.POST("/api/v1/auth/register", map[string]interface{}{
		"name":     testutil.RandomName("Duplicate"),
		"email":    email,
		"password": testPassword,
		"address":  "42 Test Avenue",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	client := newTestClientWithoutValidation()

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "name too short",
			payload: map[string]interface{}{
				"name":     "Short Name",
				"email":    testutil.RandomEmail("val"),
				"password": testPassword,
				"address":  "42 Test Avenue",
			},
		},
		{
			name: "weak password",
			payload: map[string]interface{}{
				"name":     testutil.RandomName("Validation"),
				"email":    testutil.RandomEmail("val"),
				"password": "weakpassword",
				"address":  "42 Test Avenue",
			},
		},
		{
			name: "password too long",
			payload: map[string]interface{}{
				"name":     testutil.RandomName("Validation"),
				"email":    testutil.RandomEmail("val"),
				"password": "Valid!password12345",
				"address":  "42 Test Avenue",
			},
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"name":     testutil.RandomName("Validation"),
				"email":    "not-an-email",
				"password": testPassword,
				"address":  "42 Test Avenue",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.POST("/api/v1/auth/register", tt.payload)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	client := newTestClient(t)
	_, email, _ := registerTestUser(t, client, "login")

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "Wrong!pass1",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UnknownEmail(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    testutil.RandomEmail("nobody"),
		"password": testPassword,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_ReturnsCurrentUser(t *testing.T) {
	client := newTestClient(t)
	id, email, token := registerTestUser(t, client, "me")

	resp, err := client.WithToken(token).GET("/api/v1/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			ID        int64  `json:"id"`
			Email     string `json:"email"`
			RoleLabel string `json:"role_label"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	assert.Equal(t, id, result.Data.ID)
	assert.Equal(t, email, result.Data.Email)
	assert.Equal(t, "Normal User", result.Data.RoleLabel)
}

func TestMe_RequiresToken(t *testing.T) {
	client := newTestClientWithoutValidation()

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.WithToken("garbage-token").GET("/api/v1/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChangePassword(t *testing.T) {
	client := newTestClient(t)
	_, email, token := registerTestUser(t, client, "passwd")
	authed := client.WithToken(token)

	const newPassword = "Fresh!pass2"

	resp, err := authed.PUT("/api/v1/auth/password", map[string]string{
		"current_password": testPassword,
		"new_password":     newPassword,
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Old password must stop working, new one must work.
	resp, err = client.POST("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client.LoginAs(t, email, newPassword)
	assert.NotEmpty(t, client.Token)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	client := newTestClient(t)
	_, _, token := registerTestUser(t, client, "passwd2")

	resp, err := client.WithToken(token).PUT("/api/v1/auth/password", map[string]string{
		"current_password": "Wrong!pass1",
		"new_password":     "Fresh!pass2",
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
