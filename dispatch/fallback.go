package dispatch

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/errdispatch/errtype"
)

// Fallback renders the response for errors no handler resolves. The
// response status must be a server error.
type Fallback interface {
	Render(req *http.Request, err error, debug bool) *Response
}

// FallbackFunc adapts a function to Fallback.
type FallbackFunc func(req *http.Request, err error, debug bool) *Response

// Render implements Fallback.
func (f FallbackFunc) Render(req *http.Request, err error, debug bool) *Response {
	return f(req, err, debug)
}

// ProductionBody is the fallback body outside debug mode.
const ProductionBody = "Internal Server Error"

// FallbackRenderer is the default Fallback. In debug mode it renders an HTML
// diagnostic page; otherwise a fixed plain-text body that reveals nothing
// about the error.
type FallbackRenderer struct{}

// Render implements Fallback.
func (FallbackRenderer) Render(req *http.Request, err error, debug bool) *Response {
	res := NewResponse()
	res.SetStatus(http.StatusInternalServerError)
	if !debug {
		res.SetText(ProductionBody)
		return res
	}

	var buf bytes.Buffer
	if tplErr := debugPage.Execute(&buf, newDiagnostic(req, err)); tplErr != nil {
		res.SetText(fmt.Sprintf("%s\n\n%s\n\n(debug page failed: %v)", ProductionBody, err, tplErr))
		return res
	}
	res.SetHTML(buf.String())
	return res
}

// diagnostic is the view model of the debug page.
type diagnostic struct {
	TypeName    string
	GoType      string
	Message     string
	Method      string
	Path        string
	Causes      []cause
	Stack       string
	StackOrigin string
}

type cause struct {
	GoType  string
	Message string
}

type stackCarrier interface {
	Stack() []byte
}

func newDiagnostic(req *http.Request, err error) diagnostic {
	d := diagnostic{
		TypeName: errtype.Of(err).Name(),
		GoType:   fmt.Sprintf("%T", err),
		Message:  err.Error(),
	}
	if req != nil {
		d.Method = req.Method
		d.Path = req.URL.Path
	}
	for c := stderrors.Unwrap(err); c != nil; c = stderrors.Unwrap(c) {
		d.Causes = append(d.Causes, cause{GoType: fmt.Sprintf("%T", c), Message: c.Error()})
	}

	d.Stack, d.StackOrigin = stackOf(err)
	if d.Stack == "" {
		d.Stack, d.StackOrigin = string(debug.Stack()), "dispatch site"
	}
	return d
}

func stackOf(err error) (stack, origin string) {
	var carrier stackCarrier
	if stderrors.As(err, &carrier) {
		return string(carrier.Stack()), "recovered panic"
	}
	var tracer errtype.StackTracer
	if stderrors.As(err, &tracer) {
		return fmt.Sprintf("%+v", tracer.StackTrace()), "error origin"
	}
	return "", ""
}

var debugPage = template.Must(template.New("debug").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.TypeName}} at {{.Path}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
pre { background: #f6f6f6; padding: 1em; overflow-x: auto; }
.meta { color: #666; }
</style>
</head>
<body>
<h1>{{.TypeName}}</h1>
<p class="meta">{{.GoType}}{{if .Method}} &middot; {{.Method}} {{.Path}}{{end}}</p>
<h2>Message</h2>
<pre>{{.Message}}</pre>
{{- if .Causes}}
<h2>Causes</h2>
<ol>
{{- range .Causes}}
<li><code>{{.GoType}}</code>: {{.Message}}</li>
{{- end}}
</ol>
{{- end}}
<h2>Stack ({{.StackOrigin}})</h2>
<pre>{{.Stack}}</pre>
</body>
</html>
`))
