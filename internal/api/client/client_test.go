package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/loupelabs/loupe/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListTasks(context.Background(), 50, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loupe server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListTasks(context.Background(), 50, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error (HTTP 500)")
}

func TestClient_ListTasks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"tasks": []domain.Task{{ID: "t1", Name: "Gold Chains"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tasks, err := c.ListTasks(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}

func TestClient_GetTask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks/t1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.Task{ID: "t1", Name: "Gold Chains"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	task, err := c.GetTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Gold Chains", task.Name)
}

func TestClient_ListGemstoneMatches(t *testing.T) {
	t.Parallel()

	minScore := 80
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/matches/gemstone", r.URL.Path)
		assert.Equal(t, "t1", r.URL.Query().Get("task_id"))
		assert.Equal(t, "80", r.URL.Query().Get("min_deal_score"))
		assert.Equal(t, "deal_score", r.URL.Query().Get("order_by"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"item_type": "gemstone",
			"gemstone": []domain.GemstoneMatch{
				{Match: domain.Match{ID: 7, EbayTitle: "Sapphire"}, DealScore: 88},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	matches, err := c.ListGemstoneMatches(context.Background(), &MatchFilter{
		TaskID:       "t1",
		MinDealScore: &minScore,
		OrderBy:      "deal_score",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 88, matches[0].DealScore)
}

func TestClient_ListJewelryMatches_NilFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/matches/jewelry", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"item_type": "jewelry"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	matches, err := c.ListJewelryMatches(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClient_WorkerHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/worker/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"cycles": []domain.HealthMetric{{TasksProcessed: 4, TotalMatches: 1}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	cycles, err := c.WorkerHealth(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, 4, cycles[0].TasksProcessed)
}

func TestClient_TriggerCycle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/worker/trigger", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]bool{"queued": true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	queued, err := c.TriggerCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, queued)
}

func TestClient_ListCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/credentials", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"rotation_strategy": "least_used",
			"keys": []map[string]any{
				{"label": "primary", "app_id": "AppI***********", "status": "active"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	pool, err := c.ListCredentials(context.Background())
	require.NoError(t, err)
	require.Len(t, pool.Keys, 1)
	assert.Equal(t, "AppI***********", pool.Keys[0].AppID)
}
