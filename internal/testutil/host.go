package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// UnitFunc scripts one entry point of a fake compute unit. It receives the
// decoded "context" member of the unit input and returns the output document.
type UnitFunc func(ctx map[string]any) (map[string]any, error)

// Call records one invocation seen by FakeHost.
type Call struct {
	Code       string
	EntryPoint string
	Context    map[string]any
}

// FakeHost is an in-process stand-in for the sandbox host. Entry points are
// looked up first by "<code>#<entry>" and then by entry point alone, so tests
// can either script a unit per binary or share one script across binaries.
type FakeHost struct {
	mu    sync.Mutex
	units map[string]UnitFunc
	raw   map[string][]byte
	calls []Call
}

// NewFakeHost creates a host with no entry points.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		units: make(map[string]UnitFunc),
		raw:   make(map[string][]byte),
	}
}

// Handle scripts entryPoint for any code.
func (h *FakeHost) Handle(entryPoint string, fn UnitFunc) *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.units[entryPoint] = fn
	return h
}

// HandleCode scripts entryPoint only for the given code bytes.
func (h *FakeHost) HandleCode(code, entryPoint string, fn UnitFunc) *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.units[code+"#"+entryPoint] = fn
	return h
}

// HandleRaw makes entryPoint return raw bytes verbatim, bypassing encoding.
func (h *FakeHost) HandleRaw(entryPoint string, raw []byte) *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raw[entryPoint] = raw
	return h
}

// Invoke satisfies the sandbox host contract.
func (h *FakeHost) Invoke(_ context.Context, code []byte, entryPoint string, input []byte) ([]byte, error) {
	h.mu.Lock()
	fn, ok := h.units[string(code)+"#"+entryPoint]
	if !ok {
		fn, ok = h.units[entryPoint]
	}
	raw, rawOK := h.raw[entryPoint]
	h.mu.Unlock()

	var wrapped struct {
		Context map[string]any `json:"context"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &wrapped); err != nil {
			return nil, fmt.Errorf("fake host: bad input: %w", err)
		}
	}

	h.mu.Lock()
	h.calls = append(h.calls, Call{Code: string(code), EntryPoint: entryPoint, Context: wrapped.Context})
	h.mu.Unlock()

	if rawOK {
		return raw, nil
	}
	if !ok {
		return nil, fmt.Errorf("fake host: function %q not found", entryPoint)
	}
	out, err := fn(wrapped.Context)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return json.Marshal(out)
}

// Calls returns a copy of all recorded invocations in order.
func (h *FakeHost) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Call, len(h.calls))
	copy(out, h.calls)
	return out
}

// CallsTo returns the recorded invocations of one entry point.
func (h *FakeHost) CallsTo(entryPoint string) []Call {
	var out []Call
	for _, c := range h.Calls() {
		if c.EntryPoint == entryPoint {
			out = append(out, c)
		}
	}
	return out
}

// MapLoader serves compute unit code from memory. Unknown sources fail.
type MapLoader map[string][]byte

// Load satisfies the unit loader contract.
func (l MapLoader) Load(_ context.Context, source string) ([]byte, error) {
	code, ok := l[source]
	if !ok {
		return nil, fmt.Errorf("no such unit: %s", source)
	}
	return code, nil
}
