//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratehub/ratehub/internal/testutil"
)

const testPassword = "Valid!pass1"

// registerTestUser registers a normal user and returns its ID, email and token.
func registerTestUser(t *testing.T, client *testutil.Client, prefix string) (id int64, email, token string) {
	t.Helper()

	email = testutil.RandomEmail(prefix)
	resp, err := client.POST("/api/v1/auth/register", map[string]interface{}{
		"name":     testutil.RandomName("Registered"),
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
				ID int64 `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.User.ID, email, result.Data.Token
}

// adminClient returns a client logged in as the seed admin.
func adminClient(t *testing.T) *testutil.Client {
	t.Helper()
	client := newTestClient(t)
	client.LoginAs(t, adminEmail, adminPassword)
	return client
}

// createTestStore creates a store owned by ownerID and returns the store ID.
// The owner is promoted to STORE_OWNER as a side effect.
func createTestStore(t *testing.T, admin *testutil.Client, ownerID int64) int64 {
	t.Helper()

	resp, err := admin.POST("/api/v1/stores", map[string]interface{}{
		"name":     testutil.RandomName("Store"),
		"email":    testutil.RandomEmail("store"),
		"address":  "7 Market Square",
		"owner_id": ownerID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	return result.Data.ID
}

// submitRating submits a rating and returns the response status code.
func submitRating(t *testing.T, client *testutil.Client, storeID int64, value int) int {
	t.Helper()

	resp, err := client.POST("/api/v1/ratings", map[string]interface{}{
		"store_id": storeID,
		"rating":   value,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}
