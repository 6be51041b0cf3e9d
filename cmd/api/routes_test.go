package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/domain/user"
	httphandlers "pricetrack/internal/interfaces/http"
	"pricetrack/internal/shared/auth"
	"pricetrack/internal/shared/config"
	"pricetrack/internal/shared/prompts"
)

func newTestDependencies(t *testing.T) *Dependencies {
	t.Helper()
	log := zap.NewNop()

	catalog, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() failed: %v", err)
	}
	sessions, err := auth.NewSessions("routes-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() failed: %v", err)
	}

	userService := user.NewService(nil, log)
	itemService := item.NewService(nil, nil, catalog, nil, log)

	pages, err := httphandlers.NewPages(itemService, log)
	if err != nil {
		t.Fatalf("NewPages() failed: %v", err)
	}

	return &Dependencies{
		Sessions:    sessions,
		Pages:       pages,
		AuthHandler: httphandlers.NewAuthHandler(userService, auth.NewGitHubOAuthProvider("id", "secret", "http://localhost/cb"), sessions, log),
		ItemHandler: httphandlers.NewItemHandler(itemService, 1<<20, log),
		UserHandler: httphandlers.NewUserHandler(userService, log),
		log:         log,
	}
}

func TestSetupRoutes(t *testing.T) {
	handler := SetupRoutes(newTestDependencies(t), &config.Config{}, zap.NewNop())

	tests := []struct {
		name         string
		method       string
		path         string
		expectedCode int
		expectedBody string
	}{
		{"health", http.MethodGet, "/health", http.StatusOK, `{"status":"ok"}`},
		{"home", http.MethodGet, "/", http.StatusOK, "Login with GitHub"},
		{"unknown page", http.MethodGet, "/nope", http.StatusNotFound, ""},
		{"dashboard anonymous", http.MethodGet, "/dashboard", http.StatusUnauthorized, "You are not logged in"},
		{"submit-url anonymous", http.MethodGet, "/submit-url", http.StatusUnauthorized, "You are not logged in"},
		{"submit-description anonymous", http.MethodGet, "/submit-description", http.StatusUnauthorized, "You are not logged in"},
		{"submit-item anonymous", http.MethodGet, "/submit-item", http.StatusUnauthorized, "You are not logged in"},
		{"add-url anonymous", http.MethodPost, "/add-url", http.StatusUnauthorized, "Unauthorized"},
		{"add-item anonymous", http.MethodPost, "/add-item", http.StatusUnauthorized, "Unauthorized"},
		{"add-description anonymous", http.MethodPost, "/add-description", http.StatusUnauthorized, "Unauthorized"},
		{"api items anonymous", http.MethodGet, "/api/items", http.StatusUnauthorized, "Unauthorized"},
		{"add-url wrong method", http.MethodGet, "/add-url", http.StatusMethodNotAllowed, ""},
		{"github login redirects", http.MethodGet, "/auth/github", http.StatusFound, ""},
		{"logout redirects", http.MethodGet, "/logout", http.StatusFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedCode)
			}
			if tt.expectedBody != "" && !strings.Contains(rec.Body.String(), tt.expectedBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestSetupRoutes_TLSAddsHSTS(t *testing.T) {
	cfg := &config.Config{TLS: config.TLSConfig{Enabled: true}}
	handler := SetupRoutes(newTestDependencies(t), cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected Strict-Transport-Security header when TLS is enabled")
	}
}

func TestRedirectHandler(t *testing.T) {
	handler := redirectHandler([]string{"track.example.com"})

	t.Run("allowed host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://track.example.com:80/dashboard?x=1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusMovedPermanently)
		}
		if got := rec.Header().Get("Location"); got != "https://track.example.com/dashboard?x=1" {
			t.Errorf("Location = %q", got)
		}
	})

	t.Run("foreign host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://evil.example.net/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}
