package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gnx-solutions/interview-scheduler/internal/handler/http/response"
)

// APIKey guards the administrative endpoints with a shared internal key
// carried in the X-API-KEY header.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-KEY")
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				response.Unauthorized(w, "Invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
