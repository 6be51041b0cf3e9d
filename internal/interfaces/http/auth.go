package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricetrack/internal/domain/user"
	"pricetrack/internal/shared/auth"
)

const stateCookieTTL = 10 * time.Minute

type AuthHandler struct {
	users         *user.Service
	oauthProvider auth.OAuthProvider
	sessions      *auth.Sessions
	log           *zap.Logger
}

func NewAuthHandler(users *user.Service, oauthProvider auth.OAuthProvider, sessions *auth.Sessions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		oauthProvider: oauthProvider,
		sessions:      sessions,
		log:           log.Named("auth"),
	}
}

// HandleLogin redirects to GitHub's authorize page. The state is kept in a
// short-lived cookie and checked on callback.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewState()
	if err != nil {
		h.log.Error("Failed to generate OAuth state", zap.Error(err))
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.StateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauthProvider.GetAuthURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth flow. Every failure sends the browser
// back to the home page.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, r, auth.StateCookie, "/auth/github")

	query := r.URL.Query()
	if oauthError := query.Get("error"); oauthError != "" {
		h.fail(w, r, "provider returned an error", zap.String("error", oauthError))
		return
	}

	stateCookie, err := r.Cookie(auth.StateCookie)
	state := query.Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
		h.fail(w, r, "state mismatch")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.fail(w, r, "missing code")
		return
	}

	ctx := r.Context()

	token, err := h.oauthProvider.ExchangeCode(ctx, code)
	if err != nil {
		h.fail(w, r, "code exchange failed", zap.Error(err))
		return
	}

	info, err := h.oauthProvider.GetUserInfo(ctx, token)
	if err != nil {
		h.fail(w, r, "user info request failed", zap.Error(err))
		return
	}

	u, err := h.users.Login(ctx, user.Profile{ID: info.ID, Username: info.Username})
	if err != nil {
		h.fail(w, r, "user lookup failed", zap.Error(err))
		return
	}

	session, err := h.sessions.Issue(u.ID, u.Username)
	if err != nil {
		h.fail(w, r, "session issue failed", zap.Error(err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleLogout clears the session cookie and returns to the home page.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, r, auth.SessionCookie, "/")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, reason string, fields ...zap.Field) {
	h.log.Warn("GitHub login failed", append([]zap.Field{zap.String("reason", reason)}, fields...)...)
	http.Redirect(w, r, "/", http.StatusFound)
}

func clearCookie(w http.ResponseWriter, r *http.Request, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
