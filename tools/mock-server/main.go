// Package main implements a mock Mercado Livre API server for local
// development. It serves canned responses from a JSON fixture to simulate the
// user, items, and OAuth token endpoints without real marketplace credentials.
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
	"time"
)

type fixtureData struct {
	User  json.RawMessage   `json:"user"`
	Items []json.RawMessage `json:"items"`
}

type itemID struct {
	ID string `json:"id"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/seller.json", "path to seller fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(fixture.Items))

	mux := newMux(logger, fixture)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Mercado Livre server", "addr", addr)

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

func newMux(logger *slog.Logger, fixture *fixtureData) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", tokenHandler(logger))
	mux.HandleFunc("GET /users/me", userHandler(logger, fixture))
	mux.HandleFunc("GET /users/{id}/items/search", searchHandler(logger, fixture))
	mux.HandleFunc("GET /items/{id}", itemHandler(logger, fixture))
	mux.HandleFunc("GET /users/{id}/metrics", metricsHandler(fixture))
	return mux
}

func loadFixture(path string) (*fixtureData, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f fixtureData
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

// bearerToken extracts the Authorization bearer token, empty when absent.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	return strings.TrimPrefix(h, "Bearer ")
}

func tokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid_request",
			})
			return
		}

		grant := r.PostFormValue("grant_type")
		switch grant {
		case "authorization_code":
			if !strings.HasPrefix(r.PostFormValue("code"), "TG-") {
				logger.Warn("rejecting malformed authorization code")
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":             "invalid_grant",
					"error_description": "the authorization code is invalid or expired",
					"status":            400,
				})
				return
			}
		case "refresh_token":
			if r.PostFormValue("refresh_token") == "" {
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error":             "invalid_grant",
					"error_description": "refresh token is required",
					"status":            400,
				})
				return
			}
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":             "unsupported_grant_type",
				"error_description": "grant_type must be authorization_code or refresh_token",
				"status":            400,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "APP_USR-mock-" + strconv.FormatInt(time.Now().Unix(), 16),
			"token_type":    "Bearer",
			"expires_in":    21600,
			"scope":         "offline_access read write",
			"user_id":       123456789,
			"refresh_token": "TG-mock-refresh",
		})
		logger.Info("issued mock token", "grant", grant)
	}
}

func userHandler(logger *slog.Logger, fixture *fixtureData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if !strings.HasPrefix(token, "APP_USR-") {
			logger.Warn("rejecting request without valid bearer token")
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"message": "invalid access token",
				"status":  401,
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(fixture.User)
	}
}

func searchHandler(logger *slog.Logger, fixture *fixtureData) http.HandlerFunc {
	// Pre-extract IDs so pagination works on a stable slice.
	ids := make([]string, 0, len(fixture.Items))
	for _, raw := range fixture.Items {
		var it itemID
		//nolint:errcheck,gosec // fixture data is trusted; id extraction is best-effort
		json.Unmarshal(raw, &it)
		ids = append(ids, it.ID)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		offset := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}

		page := []string{}
		if offset < len(ids) {
			end := min(offset+limit, len(ids))
			page = ids[offset:end]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"seller_id": r.PathValue("id"),
			"results":   page,
			"paging": map[string]int{
				"total":  len(ids),
				"offset": offset,
				"limit":  limit,
			},
		})
		logger.Info("items search", "seller", r.PathValue("id"), "returned", len(page), "total", len(ids))
	}
}

func itemHandler(logger *slog.Logger, fixture *fixtureData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		want := r.PathValue("id")
		for _, raw := range fixture.Items {
			var it itemID
			//nolint:errcheck,gosec // fixture data is trusted
			json.Unmarshal(raw, &it)
			if it.ID == want {
				w.Header().Set("Content-Type", "application/json")
				//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
				w.Write(raw)
				return
			}
		}
		logger.Warn("item not found", "id", want)
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Item with id " + want + " not found",
			"status":  404,
		})
	}
}

func metricsHandler(fixture *fixtureData) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		// Total sales derives from the fixture items' sold counters.
		total := 0
		for _, raw := range fixture.Items {
			var it struct {
				SoldQuantity int `json:"sold_quantity"`
			}
			//nolint:errcheck,gosec // fixture data is trusted
			json.Unmarshal(raw, &it)
			total += it.SoldQuantity
		}
		writeJSON(w, http.StatusOK, map[string]int{"total_sales": total})
	}
}
