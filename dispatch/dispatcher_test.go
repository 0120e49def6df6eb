package dispatch

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/errdispatch/errors"
	"github.com/kbukum/errdispatch/logger"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) ObserveDispatch(_ context.Context, ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

// committedWriter reports an already started response.
type committedWriter struct {
	*httptest.ResponseRecorder
}

func (committedWriter) Written() bool { return true }

func newGameDispatcher(opts ...Option) *Dispatcher {
	reg := NewRegistry()
	reg.Register(errGame, textHandler(http.StatusInternalServerError, "Game over"))
	reg.Register(errWin, textHandler(http.StatusOK, "You win!"))
	base := []Option{WithRegistry(reg), WithLogger(logger.Nop())}
	return NewDispatcher(append(base, opts...)...)
}

func TestDispatch_GameScenario(t *testing.T) {
	d := newGameDispatcher()
	runtimeErr := fmt.Errorf("index out of range")

	tests := []struct {
		name        string
		err         error
		wantOutcome Outcome
		wantErr     error
		wantStatus  int
		wantBody    string
	}{
		{"win", errWin.New("jackpot"), OutcomeHandled, nil, http.StatusOK, "You win!"},
		{"lose", errLose.New("no lives"), OutcomeHandled, nil, http.StatusInternalServerError, "Game over"},
		{"runtime error", runtimeErr, OutcomeUnhandled, runtimeErr, http.StatusInternalServerError, ProductionBody},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/play", nil)
			result := d.DispatchResult(rec, req, tc.err)

			if result.Outcome != tc.wantOutcome {
				t.Errorf("expected outcome %s, got %s", tc.wantOutcome, result.Outcome)
			}
			if result.Err != tc.wantErr {
				t.Errorf("expected err %v, got %v", tc.wantErr, result.Err)
			}
			if rec.Code != tc.wantStatus || result.Status != tc.wantStatus {
				t.Errorf("expected status %d, got %d (result %d)", tc.wantStatus, rec.Code, result.Status)
			}
			if rec.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestDispatch_HTTPErrorConvention(t *testing.T) {
	d := NewDispatcher(WithRegistry(NewRegistry()), WithLogger(logger.Nop()))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)

	if err := d.Dispatch(rec, req, errors.NotFound("not found")); err != nil {
		t.Fatalf("expected handled, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Body.String() != "not found" {
		t.Errorf("expected body exactly %q, got %q", "not found", rec.Body.String())
	}
	if rec.Header().Get("Content-Length") != "9" {
		t.Errorf("expected content length 9, got %q", rec.Header().Get("Content-Length"))
	}
}

func TestDispatch_NilError(t *testing.T) {
	d := newGameDispatcher()
	rec := httptest.NewRecorder()
	result := d.DispatchResult(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if result.Outcome != OutcomeNone || result.Err != nil {
		t.Errorf("expected no-op, got %+v", result)
	}
	if rec.Body.Len() != 0 {
		t.Error("nothing should be written for a nil error")
	}
	if d.Registry().Frozen() {
		t.Error("a nil dispatch should not freeze the registry")
	}
}

func TestDispatch_FreezesRegistry(t *testing.T) {
	d := newGameDispatcher()
	_ = d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), errWin.New("x"))
	if !d.Registry().Frozen() {
		t.Fatal("expected registry frozen after first dispatch")
	}
	mustPanic(t, "register after dispatch", func() {
		d.Registry().Register(errLose, textHandler(200, "late"))
	})
}

func TestDispatch_HandlerFailure(t *testing.T) {
	handlerErr := stderrors.New("template missing")
	reg := NewRegistry()
	reg.Register(errGame, func(_ *http.Request, res *Response, _ error) error {
		res.SetText("partial")
		return handlerErr
	})
	obs := &recordingObserver{}
	d := NewDispatcher(WithRegistry(reg), WithLogger(logger.Nop()), WithObserver(obs))

	rec := httptest.NewRecorder()
	result := d.DispatchResult(rec, httptest.NewRequest(http.MethodGet, "/", nil), errLose.New("x"))
	if result.Outcome != OutcomeHandlerFailed {
		t.Errorf("expected handler failure, got %s", result.Outcome)
	}
	if result.Err != handlerErr {
		t.Errorf("expected the handler's error, got %v", result.Err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("no response should be written, got %q", rec.Body.String())
	}
	if len(obs.events) != 1 || obs.events[0].Outcome != OutcomeHandlerFailed {
		t.Errorf("expected one handler_failed event, got %+v", obs.events)
	}
}

func TestDispatch_CommittedResponse(t *testing.T) {
	d := newGameDispatcher()
	w := committedWriter{httptest.NewRecorder()}
	err := errWin.New("x")

	result := d.DispatchResult(w, httptest.NewRequest(http.MethodGet, "/", nil), err)
	if result.Outcome != OutcomeUnhandled {
		t.Errorf("expected unhandled for committed response, got %s", result.Outcome)
	}
	if result.Err != err {
		t.Errorf("expected original error, got %v", result.Err)
	}
	if w.Body.Len() != 0 {
		t.Errorf("committed response must not be written, got %q", w.Body.String())
	}
}

func TestDispatch_ErrorID(t *testing.T) {
	d := newGameDispatcher(WithErrorID(true))
	rec := httptest.NewRecorder()
	result := d.DispatchResult(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))

	id := rec.Header().Get(HeaderErrorID)
	if id == "" || id != result.ErrorID {
		t.Fatalf("expected matching error id header, got %q and %q", id, result.ErrorID)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a UUID, got %q", id)
	}

	rec = httptest.NewRecorder()
	result = d.DispatchResult(rec, httptest.NewRequest(http.MethodGet, "/", nil), errWin.New("x"))
	if rec.Header().Get(HeaderErrorID) != "" || result.ErrorID != "" {
		t.Error("handled errors must not carry an error id")
	}
}

func TestDispatch_DebugToggle(t *testing.T) {
	d := newGameDispatcher()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := fmt.Errorf("secret detail")

	rec := httptest.NewRecorder()
	_ = d.Dispatch(rec, req, err)
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Error("production fallback leaked the error message")
	}

	d.SetDebug(true)
	if !d.Debug() {
		t.Fatal("expected debug mode")
	}
	rec = httptest.NewRecorder()
	_ = d.Dispatch(rec, req, err)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "secret detail") {
		t.Error("debug fallback should include the error message")
	}
}

func TestDispatch_CustomFallback(t *testing.T) {
	d := newGameDispatcher(WithFallback(FallbackFunc(func(_ *http.Request, err error, _ bool) *Response {
		res := NewResponse()
		res.SetStatus(http.StatusBadGateway)
		res.SetText("custom: " + err.Error())
		return res
	})))
	rec := httptest.NewRecorder()
	err := fmt.Errorf("upstream")
	if got := d.Dispatch(rec, httptest.NewRequest(http.MethodGet, "/", nil), err); got != err {
		t.Errorf("expected original error, got %v", got)
	}
	if rec.Code != http.StatusBadGateway || rec.Body.String() != "custom: upstream" {
		t.Errorf("unexpected fallback response %d %q", rec.Code, rec.Body.String())
	}
}

func TestDispatch_WithConvention(t *testing.T) {
	d := NewDispatcher(WithRegistry(NewRegistry()), WithLogger(logger.Nop()), WithConvention(ErrorToMedia))
	rec := httptest.NewRecorder()
	_ = d.Dispatch(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.Conflict("taken"))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentTypeJSON {
		t.Errorf("expected JSON, got %q", ct)
	}
}

func TestDispatch_ConventionIsPerDispatcher(t *testing.T) {
	reg := NewRegistry()
	text, err := FromConfig(Config{}, WithRegistry(reg), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	_ = text.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), errors.NotFound("x"))

	media, err := FromConfig(Config{Renderer: RendererJSON}, WithRegistry(reg), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("FromConfig on a frozen registry: %v", err)
	}

	tests := []struct {
		name     string
		d        *Dispatcher
		wantType string
		wantBody string
	}{
		{"text", text, ContentTypeText, "not found"},
		{"json", media, ContentTypeJSON, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			_ = tc.d.Dispatch(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.NotFound("not found"))
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tc.wantType {
				t.Errorf("expected %q, got %q", tc.wantType, ct)
			}
			if tc.wantBody != "" && rec.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, rec.Body.String())
			}
		})
	}

	if b, _ := reg.ResolveType(errors.HTTPErrorType); b.Handler == nil || b.Seq != 1 {
		t.Errorf("registry seed must be untouched, got %+v", b)
	}
	if b, _ := media.Resolve(errors.NotFound("x")); !b.Convention {
		t.Errorf("expected the convention binding, got %+v", b)
	}
}

func TestDispatch_ApplicationBindingBeatsDispatcherConvention(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errors.HTTPErrorType, textHandler(http.StatusGone, "custom"))
	d := NewDispatcher(WithRegistry(reg), WithLogger(logger.Nop()), WithConvention(ErrorToMedia))
	rec := httptest.NewRecorder()
	_ = d.Dispatch(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.NotFound("x"))
	if rec.Code != http.StatusGone || rec.Body.String() != "custom" {
		t.Errorf("expected the application binding, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestDispatch_ObserverEvents(t *testing.T) {
	obs := &recordingObserver{}
	d := newGameDispatcher(WithObserver(obs))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_ = d.Dispatch(httptest.NewRecorder(), req, errWin.New("x"))
	_ = d.Dispatch(httptest.NewRecorder(), req, fmt.Errorf("plain"))

	want := []Event{
		{Outcome: OutcomeHandled, ErrorType: "Win", Status: http.StatusOK},
		{Outcome: OutcomeUnhandled, ErrorType: "error", Status: http.StatusInternalServerError},
	}
	if len(obs.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(obs.events))
	}
	for i, ev := range want {
		if obs.events[i] != ev {
			t.Errorf("event %d: expected %+v, got %+v", i, ev, obs.events[i])
		}
	}
}

func TestDispatch_LogsServerErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	d := newGameDispatcher(WithLogger(log))

	_ = d.Dispatch(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/play", nil), errLose.New("x"))
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"error_type":"Lose"`) {
		t.Errorf("expected error log for a 5xx handled response, got %s", out)
	}
}

func TestDispatch_Concurrent(t *testing.T) {
	d := newGameDispatcher()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if i%2 == 0 {
				_ = d.Dispatch(rec, req, errWin.New("x"))
				if rec.Body.String() != "You win!" {
					t.Errorf("unexpected body %q", rec.Body.String())
				}
				return
			}
			_ = d.Dispatch(rec, req, errLose.New("x"))
			if rec.Body.String() != "Game over" {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		}(i)
	}
	wg.Wait()
}

func TestOutcome_String(t *testing.T) {
	want := map[Outcome]string{
		OutcomeNone:          "none",
		OutcomeHandled:       "handled",
		OutcomeUnhandled:     "unhandled",
		OutcomeHandlerFailed: "handler_failed",
	}
	for o, s := range want {
		if o.String() != s {
			t.Errorf("expected %q, got %q", s, o.String())
		}
	}
}
