package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
)

// RequestLogger logs every request with method, path, status and duration.
// Fallback responses are tagged with their incident id. Health checks are
// skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := dispatch.NewTrackingWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				logger.FieldStatus, sw.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if id := sw.Header().Get(dispatch.HeaderErrorID); id != "" {
				fields[logger.FieldErrorID] = id
			}
			logByStatus(log.WithRequest(r), fields, sw.Status())
		})
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/alive", "/ready":
		return true
	}
	return false
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
