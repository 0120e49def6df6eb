package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
)

// Recovery recovers panics that escaped error dispatch, typically a failing
// error handler. It logs the stack and, if nothing was written yet, sends the
// production fallback body.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := dispatch.NewTrackingWriter(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.WithRequest(r).Error("panic recovered", logger.Fields(
					logger.FieldError, fmt.Sprintf("%v", v),
					logger.FieldStack, string(debug.Stack()),
				))
				if sw.Written() {
					return
				}
				res := dispatch.NewResponse()
				res.SetStatus(http.StatusInternalServerError)
				res.SetText(dispatch.ProductionBody)
				_ = res.Send(sw)
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
