package observability

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/errtype"
)

// SpanReporter records re-raised errors on the request span and forwards
// them to the next reporter (usually a dispatch.LogReporter).
type SpanReporter struct {
	next dispatch.Reporter
}

var _ dispatch.Reporter = (*SpanReporter)(nil)

// NewSpanReporter creates a SpanReporter. next may be nil.
func NewSpanReporter(next dispatch.Reporter) *SpanReporter {
	return &SpanReporter{next: next}
}

// Report implements dispatch.Reporter.
func (sr *SpanReporter) Report(r *http.Request, err error, errorID string) {
	attrs := []attribute.KeyValue{attribute.String(AttrErrorType, errtype.Of(err).Name())}
	if errorID != "" {
		attrs = append(attrs, attribute.String(AttrErrorID, errorID))
	}
	SetSpanError(r.Context(), err, attrs...)
	if sr.next != nil {
		sr.next.Report(r, err, errorID)
	}
}
