package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricetrack/internal/shared/auth"
)

func TestSessionAuth(t *testing.T) {
	sessions, err := auth.NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() failed: %v", err)
	}
	validToken, _ := sessions.Issue("user-1", "octocat")

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUser   bool
	}{
		{
			name: "Valid Session Cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: validToken})
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name: "Valid Token in Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name:           "No Session",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
		{
			name: "Invalid Cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "invalid"})
			},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
		{
			name: "Malformed Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Token "+validToken)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedUser:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r.Context())
				if !ok && tt.expectedUser {
					t.Error("Expected user ID in context, got none")
				}
				if ok && userID != "user-1" {
					t.Errorf("Expected user ID user-1, got %q", userID)
				}
				if ok && Username(r.Context()) != "octocat" {
					t.Errorf("Expected username octocat, got %q", Username(r.Context()))
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := SessionAuth(sessions, "You are not logged in")(nextHandler)

			req := httptest.NewRequest("GET", "/", nil)
			tt.setupRequest(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if rr.Code == http.StatusUnauthorized && rr.Body.String() != "You are not logged in\n" {
				t.Errorf("unexpected body %q", rr.Body.String())
			}
		})
	}
}

func TestOptionalSession(t *testing.T) {
	sessions, _ := auth.NewSessions("test-secret", time.Hour)
	validToken, _ := sessions.Issue("user-1", "octocat")

	var gotUser string
	handler := OptionalSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || gotUser != "" {
		t.Errorf("anonymous request: status %d, user %q", rr.Code, gotUser)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: validToken})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if gotUser != "user-1" {
		t.Errorf("expected user-1, got %q", gotUser)
	}
}
