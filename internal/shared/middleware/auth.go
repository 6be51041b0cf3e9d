package middleware

import (
	"context"
	"net/http"
	"strings"

	"pricetrack/internal/shared/auth"
)

type ContextKey string

const (
	UserIDKey   ContextKey = "user_id"
	UsernameKey ContextKey = "username"
)

// UserID returns the authenticated user's id stored by SessionAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// Username returns the authenticated user's GitHub login.
func Username(ctx context.Context) string {
	name, _ := ctx.Value(UsernameKey).(string)
	return name
}

// SessionAuth rejects requests without a valid session with 401 and the given
// plain-text message.
func SessionAuth(sessions *auth.Sessions, unauthorized string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(sessions, r)
			if !ok {
				http.Error(w, unauthorized, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the session user when present and never rejects.
func OptionalSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := authenticate(sessions, r); ok {
				ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
				ctx = context.WithValue(ctx, UsernameKey, claims.Username)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(sessions *auth.Sessions, r *http.Request) (*auth.SessionClaims, bool) {
	var token string

	// Browser requests carry the session cookie; API clients may send a bearer token.
	if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
		token = cookie.Value
	} else {
		parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, false
		}
		token = parts[1]
	}

	claims, err := sessions.Parse(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
