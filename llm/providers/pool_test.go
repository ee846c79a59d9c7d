package providers

import (
	"math"
	"testing"

	"github.com/initializ/copilot-relay/types"
)

func testPool(t *testing.T) *Pool {
	t.Helper()
	p, err := NewPool(&types.EndpointsConfig{Endpoints: []types.EndpointConfig{
		{Name: "a", Type: types.TypeCopilot, Weight: 1},
		{Name: "b", Type: types.TypeCopilot, Weight: 3},
		{Type: types.TypeCopilot},
	}})
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}
	return p
}

func TestNewPool(t *testing.T) {
	p := testPool(t)
	backends := p.Backends()
	if len(backends) != 3 {
		t.Fatalf("got %d backends, want 3", len(backends))
	}
	if backends[2].Name != "copilot-2" || backends[2].Weight != 1 {
		t.Errorf("defaults not applied: %+v", backends[2])
	}
	if p.total != 5 {
		t.Errorf("total weight: got %d, want 5", p.total)
	}
}

func TestNewPool_Errors(t *testing.T) {
	if _, err := NewPool(&types.EndpointsConfig{}); err == nil {
		t.Error("expected error for empty config")
	}
	_, err := NewPool(&types.EndpointsConfig{Endpoints: []types.EndpointConfig{{Type: "other"}}})
	if err == nil {
		t.Error("expected error for invalid endpoint")
	}
}

func TestPool_Pick(t *testing.T) {
	p := testPool(t)
	want := []string{"a", "b", "b", "b", "copilot-2"}
	for n, name := range want {
		p.intN = func(int) int { return n }
		if got := p.Pick().Name; got != name {
			t.Errorf("pick(%d): got %q, want %q", n, got, name)
		}
	}
}

func TestPool_GetAndShare(t *testing.T) {
	p := testPool(t)
	if _, ok := p.Get("b"); !ok {
		t.Error("expected backend b")
	}
	if _, ok := p.Get("missing"); ok {
		t.Error("unexpected backend")
	}
	if got := p.Share("b"); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("share(b): got %v, want 0.6", got)
	}
	if got := p.Share("missing"); got != 0 {
		t.Errorf("share(missing): got %v", got)
	}
}
