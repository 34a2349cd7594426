// Package main implements a mock marketplace for local development. It serves
// canned responses for the search adapter RPC, the eBay Browse item and OAuth
// endpoints, and the Slack chat/webhook surface, so a full loupe stack runs
// without real credentials.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// fixture carries everything the mock serves: adapter listings (searched by
// title substring) and Browse item details keyed by item id.
type fixture struct {
	Listings []json.RawMessage          `json:"listings"`
	Items    map[string]json.RawMessage `json:"items"`
}

type listingTitle struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
}

type searchRequest struct {
	Keywords string `json:"keywords"`
	ItemType string `json:"itemType"`
	Offset   int    `json:"offset"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-marketplace/testdata/fixture.json", "path to fixture file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "listings", len(fx.Listings), "items", len(fx.Items))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", searchHandler(logger, fx))
	mux.HandleFunc("POST /identity/v1/oauth2/token", tokenHandler(logger))
	mux.HandleFunc("GET /buy/browse/v1/item/{id}", itemHandler(logger, fx))
	mux.HandleFunc("POST /api/chat.postMessage", postMessageHandler(logger))
	mux.HandleFunc("POST /api/conversations.create", conversationsCreateHandler(logger))
	mux.HandleFunc("POST /api/conversations.invite", slackOKHandler(logger, "conversations.invite"))
	mux.HandleFunc("POST /webhook", webhookHandler(logger))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock marketplace", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// searchHandler implements the adapter RPC: filter by keyword substring on
// title, slice by offset, answer {"items": [...]}.
func searchHandler(logger *slog.Logger, fx *fixture) http.HandlerFunc {
	const pageSize = 200

	type indexed struct {
		raw   json.RawMessage
		title string
	}
	items := make([]indexed, 0, len(fx.Listings))
	for _, raw := range fx.Listings {
		var lt listingTitle
		//nolint:errcheck,gosec // fixture data is trusted; title extraction is best-effort
		json.Unmarshal(raw, &lt)
		items = append(items, indexed{raw: raw, title: strings.ToLower(lt.Title)})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
			return
		}

		// Every whitespace-separated keyword must appear in the title.
		words := strings.Fields(strings.ToLower(req.Keywords))
		var matched []json.RawMessage
		for _, item := range items {
			ok := true
			for _, word := range words {
				if !strings.Contains(item.title, word) {
					ok = false
					break
				}
			}
			if ok {
				matched = append(matched, item.raw)
			}
		}

		total := len(matched)
		if req.Offset >= total {
			matched = nil
		} else {
			end := min(req.Offset+pageSize, total)
			matched = matched[req.Offset:end]
		}
		if matched == nil {
			matched = []json.RawMessage{}
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{"items": matched})
		logger.Info("search",
			"keywords", req.Keywords, "type", req.ItemType,
			"matched", total, "returned", len(matched), "offset", req.Offset)
	}
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Validate Basic Auth header is present (don't verify creds).
		if _, _, ok := r.BasicAuth(); !ok {
			logger.Warn("token request missing Basic Auth header")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_client",
				"error_description": "client authentication failed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mock-token-v1-" + strconv.FormatInt(int64(os.Getpid()), 16),
			"expires_in":   7200,
			"token_type":   "Application Access Token",
		})
		logger.Info("issued mock token")
	}
}

func itemHandler(logger *slog.Logger, fx *fixture) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		id := r.PathValue("id")
		raw, ok := fx.Items[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
			json.NewEncoder(w).Encode(map[string]any{
				"errors": []map[string]any{{"errorId": 11001, "message": "item not found"}},
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(raw)
		logger.Info("item", "id", id)
	}
}

// messageSeq numbers mock Slack timestamps so consecutive posts stay unique.
var messageSeq atomic.Int64

func postMessageHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck,gosec // best-effort parse in mock server
		r.ParseForm()
		channel := r.FormValue("channel")
		if channel == "" {
			channel = "C0MOCK"
		}

		ts := fmt.Sprintf("%d.%06d", time.Now().Unix(), messageSeq.Add(1))
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"channel": channel,
			"ts":      ts,
		})
		logger.Info("chat.postMessage", "channel", channel, "ts", ts)
	}
}

func conversationsCreateHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		//nolint:errcheck,gosec // best-effort parse in mock server
		r.ParseForm()
		name := r.FormValue("name")

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"channel": map[string]any{
				"id":   "C" + strings.ToUpper(strconv.FormatInt(messageSeq.Add(1), 36)),
				"name": name,
			},
		})
		logger.Info("conversations.create", "name", name)
	}
}

func slackOKHandler(logger *slog.Logger, method string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
		logger.Info(method)
	}
}

func webhookHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write([]byte("ok"))
		logger.Info("webhook delivery")
	}
}
