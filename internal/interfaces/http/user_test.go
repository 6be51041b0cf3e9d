package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pricetrack/internal/domain/user"
)

func TestHandleMe(t *testing.T) {
	tests := []struct {
		name           string
		getByID        func(ctx context.Context, id string) (*user.User, error)
		anonymous      bool
		expectedStatus int
	}{
		{
			name: "Success",
			getByID: func(ctx context.Context, id string) (*user.User, error) {
				return &user.User{ID: id, GitHubID: "583231", Username: "octocat"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Anonymous",
			anonymous:      true,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Not Found",
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Repository Error",
			getByID: func(ctx context.Context, id string) (*user.User, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewUserHandler(user.NewService(&MockUserRepo{GetByIDFunc: tt.getByID}, zapNop()), zapNop())

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if !tt.anonymous {
				req = withUser(req, "user-1", "octocat")
			}
			rr := httptest.NewRecorder()
			handler.HandleMe(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectedStatus == http.StatusOK {
				var body map[string]any
				json.NewDecoder(rr.Body).Decode(&body)
				if body["username"] != "octocat" {
					t.Errorf("username = %v", body["username"])
				}
				if _, leaked := body["GitHubID"]; leaked {
					t.Error("GitHub id must not be serialized")
				}
			}
		})
	}
}
