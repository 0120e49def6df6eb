package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID is the request id header read and written by RequestID.
const HeaderRequestID = "X-Request-Id"

// RequestID ensures every request carries an X-Request-Id header, on the
// request (so loggers pick it up) and on the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(HeaderRequestID, id)
			}
			w.Header().Set(HeaderRequestID, id)
			next.ServeHTTP(w, r)
		})
	}
}
