//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/ratehub/internal/testutil"
)

func TestSubmitRating_CreateThenUpdate(t *testing.T) {
	admin := adminClient(t)
	client := newTestClient(t)

	ownerID, _, _ := registerTestUser(t, client, "upsert-owner")
	storeID := createTestStore(t, admin, ownerID)

	userID, _, token := registerTestUser(t, client, "upsert")
	rater := client.WithToken(token)

	// First submission creates, second replaces.
	assert.Equal(t, http.StatusCreated, submitRating(t, rater, storeID, 2))
	assert.Equal(t, http.StatusOK, submitRating(t, rater, storeID, 5))

	var count int64
	var value int32
	err := testDB.QueryRow(context.Background(),
		`SELECT COUNT(*), MAX(rating) FROM ratings WHERE user_id = $1 AND store_id = $2`,
		userID, storeID).Scan(&count, &value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int32(5), value)
}

func TestSubmitRating_ValueOutOfRange(t *testing.T) {
	admin := adminClient(t)
	client := newTestClient(t)

	ownerID, _, _ := registerTestUser(t, client, "range-owner")
	storeID := createTestStore(t, admin, ownerID)

	_, _, token := registerTestUser(t, client, "range")
	rater := client.WithToken(token).WithoutValidation()

	for _, v := range []int{0, -1, 6, 42} {
		resp, err := rater.POST("/api/v1/ratings", map[string]interface{}{
			"store_id": storeID,
			"rating":   v,
		})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "rating %d", v)
	}
}

func TestSubmitRating_UnknownStore(t *testing.T) {
	client := newTestClient(t)
	_, _, token := registerTestUser(t, client, "no-store")

	resp, err := client.WithToken(token).WithoutValidation().POST("/api/v1/ratings", map[string]interface{}{
		"store_id": 99999999,
		"rating":   3,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMyRatings(t *testing.T) {
	admin := adminClient(t)
	client := newTestClient(t)

	ownerA, _, _ := registerTestUser(t, client, "mine-owner-a")
	ownerB, _, _ := registerTestUser(t, client, "mine-owner-b")
	storeA := createTestStore(t, admin, ownerA)
	storeB := createTestStore(t, admin, ownerB)

	_, _, token := registerTestUser(t, client, "mine")
	rater := client.WithToken(token)

	require.Equal(t, http.StatusCreated, submitRating(t, rater, storeA, 4))
	require.Equal(t, http.StatusCreated, submitRating(t, rater, storeB, 2))
	// Touch storeA again so it becomes the most recently modified.
	require.Equal(t, http.StatusOK, submitRating(t, rater, storeA, 5))

	resp, err := rater.GET("/api/v1/ratings/mine")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []struct {
			StoreID   int64  `json:"store_id"`
			Rating    int32  `json:"rating"`
			StoreName string `json:"store_name"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	require.Len(t, result.Data, 2)
	assert.Equal(t, storeA, result.Data[0].StoreID)
	assert.Equal(t, int32(5), result.Data[0].Rating)
	assert.NotEmpty(t, result.Data[0].StoreName)
	assert.Equal(t, storeB, result.Data[1].StoreID)
}

func TestRemoveRating_RestoresAggregate(t *testing.T) {
	admin := adminClient(t)
	client := newTestClient(t)

	ownerID, _, _ := registerTestUser(t, client, "remove-owner")
	storeID := createTestStore(t, admin, ownerID)

	_, _, keepToken := registerTestUser(t, client, "remove-keep")
	_, _, dropToken := registerTestUser(t, client, "remove-drop")
	keeper := client.WithToken(keepToken)
	dropper := client.WithToken(dropToken)

	require.Equal(t, http.StatusCreated, submitRating(t, keeper, storeID, 4))
	require.Equal(t, http.StatusCreated, submitRating(t, dropper, storeID, 1))

	resp, err := dropper.DELETE(fmt.Sprintf("/api/v1/ratings/stores/%d", storeID))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Only the remaining rating drives the aggregate.
	resp, err = keeper.GET("/api/v1/stores/browse")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data []struct {
			ID            int64   `json:"id"`
			OverallRating float64 `json:"overall_rating"`
			RatingCount   int64   `json:"rating_count"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)

	for _, s := range result.Data {
		if s.ID == storeID {
			assert.Equal(t, 4.0, s.OverallRating)
			assert.Equal(t, int64(1), s.RatingCount)
		}
	}
}

func TestRemoveRating_Nonexistent(t *testing.T) {
	admin := adminClient(t)
	client := newTestClient(t)

	ownerID, _, _ := registerTestUser(t, client, "noop-owner")
	storeID := createTestStore(t, admin, ownerID)

	_, _, token := registerTestUser(t, client, "noop")

	resp, err := client.WithToken(token).WithoutValidation().
		DELETE(fmt.Sprintf("/api/v1/ratings/stores/%d", storeID))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRatings_ForbiddenForAdmin(t *testing.T) {
	admin := adminClient(t)

	resp, err := admin.WithoutValidation().POST("/api/v1/ratings", map[string]interface{}{
		"store_id": 1,
		"rating":   3,
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
