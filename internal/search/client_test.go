package search_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loupelabs/loupe/internal/search"
	domain "github.com/loupelabs/loupe/pkg/types"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	var got search.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"itemId":      "v1|100|0",
					"title":       "14K Gold Ring",
					"price":       150.0,
					"currency":    "USD",
					"listingUrl":  "https://example.com/itm/100",
					"listingType": "FIXED_PRICE",
					"sellerInfo":  map[string]any{"username": "estateseller", "feedbackScore": 5200, "feedbackPercentage": 99.8},
				},
			},
		})
	}))
	defer srv.Close()

	client := search.New(srv.URL, 5, time.Minute)

	items, err := client.Search(context.Background(), search.Request{
		Keywords: "14k gold ring",
		ItemType: "jewelry",
		Offset:   200,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "v1|100|0", items[0].ItemID)
	assert.Equal(t, 5200, items[0].Seller.FeedbackScore)

	assert.Equal(t, "14k gold ring", got.Keywords)
	assert.Equal(t, 200, got.Offset)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := search.New(srv.URL, 2, time.Minute)
	ctx := context.Background()

	_, err := client.Search(ctx, search.Request{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, search.ErrBreakerOpen)

	_, err = client.Search(ctx, search.Request{})
	require.Error(t, err)

	// Breaker is now open: no request reaches the adapter.
	_, err = client.Search(ctx, search.Request{})
	assert.ErrorIs(t, err, search.ErrBreakerOpen)
	assert.Equal(t, 2, calls)
}

func TestBuildRequest_Jewelry(t *testing.T) {
	t.Parallel()

	minPrice := 50.0
	task := &domain.Task{
		ID:                "t1",
		Type:              domain.ItemJewelry,
		MinPrice:          &minPrice,
		MinSellerFeedback: 100,
		ListingFormats:    []string{"Fixed Price (BIN)"},
		Conditions:        []string{"Pre-owned"},
		JewelryFilters: &domain.JewelryFilters{
			Metal:                 []string{"Yellow Gold"},
			Keywords:              "estate ring",
			SelectedSubcategories: []int{261994, 50637},
		},
	}

	req := search.BuildRequest(task, "14K Gold estate ring", 400)

	assert.Equal(t, "14K Gold estate ring", req.Keywords)
	assert.Equal(t, "jewelry", req.ItemType)
	assert.Equal(t, 400, req.Offset)
	assert.Equal(t, []string{"261994", "50637"}, req.CategoryIDs)
	assert.Equal(t, task.JewelryFilters, req.TypeSpecificFilters)
	require.NotNil(t, req.MinPrice)
	assert.InDelta(t, 50.0, *req.MinPrice, 0.001)
}

func TestBuildRequest_Gemstone(t *testing.T) {
	t.Parallel()

	task := &domain.Task{
		ID:              "t2",
		Type:            domain.ItemGemstone,
		GemstoneFilters: &domain.GemstoneFilters{StoneTypes: []string{"Sapphire"}},
	}

	req := search.BuildRequest(task, "natural sapphire", 0)
	assert.Equal(t, "gemstone", req.ItemType)
	assert.Equal(t, task.GemstoneFilters, req.TypeSpecificFilters)
	assert.Empty(t, req.CategoryIDs)
}
