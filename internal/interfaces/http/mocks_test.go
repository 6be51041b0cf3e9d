package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/domain/user"
	"pricetrack/internal/shared/auth"
	"pricetrack/internal/shared/middleware"
	"pricetrack/internal/shared/prompts"
)

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	FindOrCreateFunc func(ctx context.Context, profile user.Profile) (*user.User, error)
	GetByIDFunc      func(ctx context.Context, id string) (*user.User, error)
	ListFunc         func(ctx context.Context) ([]*user.User, error)
}

func (m *MockUserRepo) FindOrCreate(ctx context.Context, profile user.Profile) (*user.User, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, profile)
	}
	return &user.User{ID: "user-1", GitHubID: profile.ID, Username: profile.Username}, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, user.ErrUserNotFound
}

func (m *MockUserRepo) List(ctx context.Context) ([]*user.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

// MockItemRepo implements item.Repository for testing
type MockItemRepo struct {
	CreateFunc       func(ctx context.Context, it *item.Item) error
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*item.Item, error)
}

func (m *MockItemRepo) Create(ctx context.Context, it *item.Item) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, it)
	}
	return nil
}

func (m *MockItemRepo) ListByUserID(ctx context.Context, userID string) ([]*item.Item, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockCompleter implements item.Completer for testing
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "", nil
}

// MockOAuthProvider implements auth.OAuthProvider for testing
type MockOAuthProvider struct {
	ExchangeCodeFunc func(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfoFunc  func(ctx context.Context, token *oauth2.Token) (*auth.OAuthUserInfo, error)
}

func (m *MockOAuthProvider) GetAuthURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + state
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	return &oauth2.Token{AccessToken: "gho_token"}, nil
}

func (m *MockOAuthProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (*auth.OAuthUserInfo, error) {
	if m.GetUserInfoFunc != nil {
		return m.GetUserInfoFunc(ctx, token)
	}
	return &auth.OAuthUserInfo{ID: "583231", Username: "octocat"}, nil
}

// newItemService builds an item service over mocks. A nil completer means no
// API key is configured.
func newItemService(t *testing.T, repo item.Repository, completer item.Completer) *item.Service {
	t.Helper()
	catalog, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts.Default() failed: %v", err)
	}
	if completer == nil {
		return item.NewService(repo, nil, catalog, nil, zap.NewNop())
	}
	return item.NewService(repo, completer, catalog, nil, zap.NewNop())
}

func withUser(r *http.Request, userID, username string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.UsernameKey, username)
	return r.WithContext(ctx)
}

func newSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	sessions, err := auth.NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() failed: %v", err)
	}
	return sessions
}

func zapNop() *zap.Logger {
	return zap.NewNop()
}
