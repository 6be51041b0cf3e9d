package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry starts the server span for each request, picking up W3C trace
// context from the caller. Health probes are not traced.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "pricetrack-api",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method + " " + operation
		}),
	)
}
