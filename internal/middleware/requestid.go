package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jakehq/jaketodo/internal/request"
)

// RequestID assigns each request a UUID, exposed on the response and in the
// request context for log correlation. An incoming X-Request-ID is kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(request.WithID(r.Context(), id)))
	})
}
