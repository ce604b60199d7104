package chi

import (
	"net/http"
	"strings"
)

// DefaultAllowedOrigin is the local front end.
const DefaultAllowedOrigin = "http://localhost:5173"

// exemptPaths are routes that bypass origin validation.
var exemptPaths = map[string]struct{}{
	"/health":       {},
	"/metrics":      {},
	"/docs":         {},
	"/openapi.json": {},
}

// OriginMiddleware rejects browser-less calls and foreign origins.
// The Origin header is checked first, then Referer; the value must start
// with one of allowed. An empty allowed list falls back to DefaultAllowedOrigin.
func OriginMiddleware(allowed []string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			source := r.Header.Get("Origin")
			if source == "" {
				source = r.Header.Get("Referer")
			}
			if source == "" {
				writeError(w, http.StatusForbidden, ErrorCodeForbidden, "Origin header required")
				return
			}

			if !originAllowed(source, origins) {
				writeError(w, http.StatusForbidden, ErrorCodeForbidden, "Origin not allowed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed matches an exact origin or a referer URL under it.
func originAllowed(source string, origins []string) bool {
	for _, o := range origins {
		if source == o || strings.HasPrefix(source, o+"/") {
			return true
		}
	}
	return false
}
