package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// oauthCallbackPath is reached by a top-level redirect from GitHub, so its
// Origin never matches the allowed hosts.
const oauthCallbackPath = "/auth/github/callback"

// CORS applies Cross-Origin Resource Sharing headers. With no allowed hosts
// every origin is accepted; otherwise requests from other origins get 403.
func CORS(allowedHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case len(allowedHosts) == 0 || r.URL.Path == oauthCallbackPath:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin == "":
				// Same-origin and non-browser requests carry no Origin.
			case isOriginAllowed(origin, allowedHosts):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			default:
				http.Error(w, "Origin not allowed", http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isOriginAllowed matches the origin's host against allowedHosts. An allowed
// entry with a port must match exactly; one without a port matches any port.
func isOriginAllowed(origin string, allowedHosts []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Host)
	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if _, _, err := net.SplitHostPort(allowed); err == nil {
			if allowed == host {
				return true
			}
			continue
		}
		if allowed == hostname(host) {
			return true
		}
	}
	return false
}
