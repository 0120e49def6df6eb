package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/observability"
)

// Tracing starts a server span per request, continuing any trace propagated
// in the request headers. Re-raised errors are recorded on it by
// observability.SpanReporter.
func Tracing(propagator propagation.TextMapPropagator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			sw := dispatch.NewTrackingWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int(observability.AttrStatus, sw.Status()))
			if sw.Status() >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(sw.Status()))
			}
		})
	}
}
