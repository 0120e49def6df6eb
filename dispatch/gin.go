package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKeyErrorID is the gin context key holding the incident id of an
// unhandled error.
const ContextKeyErrorID = "error_id"

// Gin returns a gin middleware that dispatches the last error a view
// attached with c.Error, or a panic it raised.
//
// Handled errors are removed from c.Errors. Unhandled errors go to the
// Reporter and stay in c.Errors after the fallback response is written, so
// outer middleware sees them. A failing error handler panics with its error.
func (d *Dispatcher) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if perr := nextRecovering(c); perr != nil {
			_ = c.Error(perr)
			c.Abort()
		}
		if len(c.Errors) == 0 {
			return
		}

		result := d.DispatchResult(c.Writer, c.Request, c.Errors.Last().Err)
		switch result.Outcome {
		case OutcomeHandled:
			c.Errors = c.Errors[:0]
		case OutcomeUnhandled:
			if result.ErrorID != "" {
				c.Set(ContextKeyErrorID, result.ErrorID)
			}
			d.reporter.Report(c.Request, result.Err, result.ErrorID)
		case OutcomeHandlerFailed:
			panic(result.Err)
		}
	}
}

func nextRecovering(c *gin.Context) (perr *PanicError) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			perr = NewPanicError(v)
		}
	}()
	c.Next()
	return nil
}
