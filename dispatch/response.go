package dispatch

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// Content types set by the Response helpers.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeJSON = "application/json"
)

// Response is the response state a handler mutates. It is owned by a single
// dispatch and written to the client once the handler returns.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{Status: http.StatusOK, Header: make(http.Header)}
}

// SetStatus sets the status code.
func (r *Response) SetStatus(code int) { r.Status = code }

// SetText sets a plain-text body.
func (r *Response) SetText(text string) {
	r.Header.Set("Content-Type", ContentTypeText)
	r.Body = []byte(text)
}

// SetHTML sets an HTML body. The caller is responsible for escaping.
func (r *Response) SetHTML(html string) {
	r.Header.Set("Content-Type", ContentTypeHTML)
	r.Body = []byte(html)
}

// SetMedia sets a JSON body encoding v.
func (r *Response) SetMedia(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", ContentTypeJSON)
	r.Body = body
	return nil
}

// Send writes the status, headers and body to w.
func (r *Response) Send(w http.ResponseWriter) error {
	h := w.Header()
	for k, v := range r.Header {
		h[k] = v
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	if h.Get("Content-Type") == "" && len(r.Body) > 0 {
		h.Set("Content-Type", ContentTypeText)
	}
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body)
	return err
}
