package dispatch

import "net/http"

// TrackingWriter records the status code and whether the response has been
// started. Its Written method is what the dispatcher's commit guard checks,
// so views and middleware that wrap the writer with it let dispatch know a
// response is already on the wire. Flush and Unwrap are delegated so
// streaming and http.ResponseController keep working.
type TrackingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// NewTrackingWriter wraps w. The status is 200 until WriteHeader is called.
func NewTrackingWriter(w http.ResponseWriter) *TrackingWriter {
	return &TrackingWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader records the first status code and forwards it.
func (tw *TrackingWriter) WriteHeader(code int) {
	if !tw.wroteHeader {
		tw.status = code
		tw.wroteHeader = true
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *TrackingWriter) Write(b []byte) (int, error) {
	tw.wroteHeader = true
	return tw.ResponseWriter.Write(b)
}

// Written reports whether the response has been started.
func (tw *TrackingWriter) Written() bool { return tw.wroteHeader }

// Status returns the status written so far.
func (tw *TrackingWriter) Status() int { return tw.status }

// Flush implements http.Flusher.
func (tw *TrackingWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		tw.wroteHeader = true
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter.
func (tw *TrackingWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
