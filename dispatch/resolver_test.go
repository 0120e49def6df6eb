package dispatch

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/kbukum/errdispatch/errors"
	"github.com/kbukum/errdispatch/errtype"
)

// bodyOf runs the resolved handler for err and returns the body.
func bodyOf(t *testing.T, reg *Registry, err error) string {
	t.Helper()
	b, ok := reg.Resolve(err)
	if !ok {
		t.Fatalf("expected a binding for %v", err)
	}
	res := NewResponse()
	if herr := b.Handler(nil, res, err); herr != nil {
		t.Fatalf("handler failed: %v", herr)
	}
	return string(res.Body)
}

func TestResolve_ExactMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errWin, textHandler(200, "win"))
	if got := bodyOf(t, reg, errWin.New("x")); got != "win" {
		t.Errorf("expected exact handler, got %q", got)
	}
}

func TestResolve_AncestorFallback(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errGame, textHandler(500, "game"))
	if got := bodyOf(t, reg, errLose.New("x")); got != "game" {
		t.Errorf("expected ancestor handler for Lose, got %q", got)
	}
	if got := bodyOf(t, reg, errJack.New("x")); got != "game" {
		t.Errorf("expected grandparent handler for Jackpot, got %q", got)
	}
}

func TestResolve_SpecificityBeatsOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(reg *Registry)
	}{
		{"broad first", func(reg *Registry) {
			reg.Register(errGame, textHandler(500, "game"))
			reg.Register(errWin, textHandler(200, "win"))
		}},
		{"narrow first", func(reg *Registry) {
			reg.Register(errWin, textHandler(200, "win"))
			reg.Register(errGame, textHandler(500, "game"))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			tc.setup(reg)
			if got := bodyOf(t, reg, errWin.New("x")); got != "win" {
				t.Errorf("expected Win handler, got %q", got)
			}
			if got := bodyOf(t, reg, errLose.New("x")); got != "game" {
				t.Errorf("expected GameException handler for Lose, got %q", got)
			}
		})
	}
}

func TestResolve_CloserAncestorWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errWin, textHandler(200, "win"))
	reg.Register(errGame, textHandler(500, "game"))
	if got := bodyOf(t, reg, errJack.New("x")); got != "win" {
		t.Errorf("expected the parent over the grandparent, got %q", got)
	}
}

func TestResolve_LastWinsOnReRegistration(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errWin, textHandler(200, "first"))
	reg.Register(errWin, textHandler(200, "second"))
	if got := bodyOf(t, reg, errWin.New("x")); got != "second" {
		t.Errorf("expected the second registration, got %q", got)
	}
}

func TestResolve_RootIsLeastSpecific(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errGame, textHandler(500, "game"))
	reg.Register(errtype.Root, textHandler(500, "root"))

	if got := bodyOf(t, reg, errWin.New("x")); got != "game" {
		t.Errorf("root registered later must not beat GameException, got %q", got)
	}
	if got := bodyOf(t, reg, fmt.Errorf("untyped")); got != "root" {
		t.Errorf("expected root catch-all for untyped error, got %q", got)
	}
}

func TestResolve_RootListedAsDirectParent(t *testing.T) {
	mid := errtype.New("Mid")
	leaf := errtype.New("Leaf", errtype.Root, mid)

	reg := NewRegistry()
	reg.Register(mid, textHandler(500, "mid"))
	reg.Register(errtype.Root, textHandler(500, "root"))
	if got := bodyOf(t, reg, leaf.New("x")); got != "mid" {
		t.Errorf("root must stay least specific even at distance 1, got %q", got)
	}
}

func TestResolve_DiamondTieGoesToLatest(t *testing.T) {
	left := errtype.New("Left")
	right := errtype.New("Right")
	bottom := errtype.New("Bottom", left, right)

	reg := NewRegistry()
	reg.Register(right, textHandler(500, "right"))
	reg.Register(left, textHandler(500, "left"))
	if got := bodyOf(t, reg, bottom.New("x")); got != "left" {
		t.Errorf("expected the later registration at equal distance, got %q", got)
	}

	reg = NewRegistry()
	reg.Register(left, textHandler(500, "left"))
	reg.Register(right, textHandler(500, "right"))
	if got := bodyOf(t, reg, bottom.New("x")); got != "right" {
		t.Errorf("expected the later registration at equal distance, got %q", got)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errGame, textHandler(500, "game"))
	if _, ok := reg.Resolve(fmt.Errorf("runtime error")); ok {
		t.Error("expected no binding for an unrelated error")
	}
	if _, ok := reg.Resolve(nil); ok {
		t.Error("expected no binding for nil")
	}
	if _, ok := reg.ResolveType(nil); ok {
		t.Error("expected no binding for nil type")
	}
}

func TestResolve_WrappedError(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errWin, textHandler(200, "win"))
	wrapped := fmt.Errorf("round 2: %w", errWin.New("x"))
	if got := bodyOf(t, reg, wrapped); got != "win" {
		t.Errorf("expected Win handler through wrapping, got %q", got)
	}
}

func TestResolve_ConventionOverride(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errors.HTTPErrorType, textHandler(418, "custom"))
	if got := bodyOf(t, reg, errors.NotFound("x")); got != "custom" {
		t.Errorf("expected application override of the convention, got %q", got)
	}
}

func TestResolve_FrozenMemoizesConsistently(t *testing.T) {
	reg := NewRegistry()
	reg.Register(errGame, textHandler(500, "game"))
	reg.Register(errWin, textHandler(200, "win"))
	before, _ := reg.ResolveType(errJack)
	reg.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b, ok := reg.ResolveType(errJack)
				if !ok || b.Seq != before.Seq {
					t.Errorf("frozen resolution changed: %v %d", ok, b.Seq)
					return
				}
				if _, ok := reg.ResolveType(errtype.Root); ok {
					t.Error("expected no root binding")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolve_HandlerReceivesOriginalError(t *testing.T) {
	reg := NewRegistry()
	var got error
	reg.Register(errGame, func(_ *http.Request, _ *Response, err error) error {
		got = err
		return nil
	})
	orig := fmt.Errorf("wrapped: %w", errLose.New("x"))
	b, _ := reg.Resolve(orig)
	_ = b.Handler(nil, NewResponse(), orig)
	if got != orig {
		t.Error("handler must receive the original error value")
	}
}
