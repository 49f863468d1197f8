package middleware

import (
	"net/http"

	"github.com/cloo-solutions/justicesearch/internal/api"
)

// Limits bounds what a search request may carry. Zero disables a bound.
type Limits struct {
	// MaxQueryBytes caps the raw query string.
	MaxQueryBytes int
	MaxBodyBytes  int64
}

// RequestLimits rejects requests whose query string or body exceed lim.
// Bodies of unknown length are cut off at MaxBodyBytes while being read.
func RequestLimits(lim Limits) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if lim.MaxQueryBytes > 0 && len(r.URL.RawQuery) > lim.MaxQueryBytes {
				api.Error(w, http.StatusRequestURITooLong, "search query too long")
				return
			}
			if lim.MaxBodyBytes > 0 && r.Body != nil {
				if r.ContentLength > lim.MaxBodyBytes {
					api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, lim.MaxBodyBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
