package dispatch

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kbukum/errdispatch/errors"
)

// Renderer names accepted by ConventionHandler and Config.Renderer.
const (
	RendererText  = "text"
	RendererHTML  = "html"
	RendererJSON  = "json"
	RendererMedia = "media"
)

// ErrorToText renders an HTTPError as plain text: the detail when present,
// otherwise the status title. Unlike a "title\ndetail" page, the body is the
// detail alone so clients can match it exactly.
//
// All convention handlers answer 500 for a status net/http cannot write.
func ErrorToText(_ *http.Request, res *Response, err error) error {
	httpErr := asConvention(err)
	res.SetStatus(httpErr.Status)
	if httpErr.HasDetail() {
		res.SetText(detailText(httpErr.Detail))
		return nil
	}
	res.SetText(httpErr.Title())
	return nil
}

// ErrorToHTML renders an HTTPError as an HTML fragment with the title as a
// heading and the detail as a paragraph.
func ErrorToHTML(_ *http.Request, res *Response, err error) error {
	httpErr := asConvention(err)
	res.SetStatus(httpErr.Status)
	var b strings.Builder
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(httpErr.Title()))
	b.WriteString("</h1>")
	if httpErr.HasDetail() {
		b.WriteString("\n<p>")
		b.WriteString(html.EscapeString(detailText(httpErr.Detail)))
		b.WriteString("</p>")
	}
	res.SetHTML(b.String())
	return nil
}

// ErrorToMedia renders an HTTPError as a JSON errors.ErrorResponse.
func ErrorToMedia(_ *http.Request, res *Response, err error) error {
	httpErr := asConvention(err)
	res.SetStatus(httpErr.Status)
	return res.SetMedia(httpErr.ToResponse())
}

// ConventionHandler returns the convention handler for a renderer name. An
// empty name selects the text renderer.
func ConventionHandler(name string) (Handler, error) {
	switch strings.ToLower(name) {
	case "", RendererText:
		return ErrorToText, nil
	case RendererHTML:
		return ErrorToHTML, nil
	case RendererJSON, RendererMedia:
		return ErrorToMedia, nil
	default:
		return nil, fmt.Errorf("dispatch: unknown renderer %q", name)
	}
}

// asConvention extracts the HTTPError from err. Errors outside the convention
// are treated as an internal server error wrapping err. A status outside
// 100-999 is replaced by 500 on a copy.
func asConvention(err error) *errors.HTTPError {
	httpErr, ok := errors.AsHTTPError(err)
	if !ok {
		return errors.Internal(err)
	}
	if httpErr.Status < 100 || httpErr.Status > 999 {
		clamped := *httpErr
		clamped.Status = http.StatusInternalServerError
		return &clamped
	}
	return httpErr
}

func detailText(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case fmt.Stringer:
		return d.String()
	case error:
		return d.Error()
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return fmt.Sprintf("%v", d)
		}
		return string(b)
	}
}
