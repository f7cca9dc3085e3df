package middleware

import (
	"net/http"
	"strings"
)

// ContentType validates Content-Type headers for requests that carry bodies.
// Body-less POSTs (complete, reopen) pass through unchecked.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")

			if contentType == "" {
				respondDetail(w, http.StatusBadRequest, "Content-Type header is required")
				return
			}

			// Allow application/json with or without a charset suffix
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				respondDetail(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
