package dispatch

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFallbackRenderer_Production(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	res := FallbackRenderer{}.Render(req, fmt.Errorf("password=hunter2"), false)

	if res.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", res.Status)
	}
	if string(res.Body) != ProductionBody {
		t.Errorf("expected %q, got %q", ProductionBody, res.Body)
	}
	if strings.Contains(string(res.Body), "hunter2") {
		t.Error("production body must not reveal the error")
	}
}

func TestFallbackRenderer_Debug(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/play", nil)
	err := fmt.Errorf("round failed: %w", errLose.New("out of lives"))
	res := FallbackRenderer{}.Render(req, err, true)

	if res.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", res.Status)
	}
	if ct := res.Header.Get("Content-Type"); ct != ContentTypeHTML {
		t.Errorf("expected HTML content type, got %q", ct)
	}
	body := html.UnescapeString(string(res.Body))
	for _, want := range []string{
		"<h1>Lose</h1>",
		"*fmt.wrapError",
		"round failed: out of lives",
		"POST /play",
		"*errtype.Error",
		"Stack (error origin)",
		"fallback_test.go",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("debug page missing %q", want)
		}
	}
}

func TestFallbackRenderer_DebugPanicStack(t *testing.T) {
	res := FallbackRenderer{}.Render(nil, NewPanicError("kaboom"), true)
	body := string(res.Body)
	if !strings.Contains(body, "panic: kaboom") {
		t.Error("debug page missing panic message")
	}
	if !strings.Contains(body, "Stack (recovered panic)") {
		t.Error("expected panic stack")
	}
}

func TestFallbackRenderer_DebugDispatchSiteStack(t *testing.T) {
	res := FallbackRenderer{}.Render(nil, fmt.Errorf("plain"), true)
	if !strings.Contains(string(res.Body), "Stack (dispatch site)") {
		t.Error("expected dispatch-site stack for an error without one")
	}
}

func TestFallbackFunc(t *testing.T) {
	var f Fallback = FallbackFunc(func(_ *http.Request, _ error, debug bool) *Response {
		res := NewResponse()
		res.SetStatus(http.StatusServiceUnavailable)
		res.SetText(fmt.Sprintf("debug=%v", debug))
		return res
	})
	res := f.Render(nil, fmt.Errorf("x"), true)
	if res.Status != http.StatusServiceUnavailable || string(res.Body) != "debug=true" {
		t.Errorf("unexpected response %d %q", res.Status, res.Body)
	}
}
