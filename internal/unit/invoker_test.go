package unit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/document"
	"github.com/vk/flowgrid/internal/flowerr"
	"github.com/vk/flowgrid/internal/state"
	"github.com/vk/flowgrid/internal/testutil"
)

func newNode(name, source string) *state.Node {
	return &state.Node{ID: "n1", Name: name, Source: source}
}

func TestInvoker_Invoke(t *testing.T) {
	// Arrange
	host := testutil.NewFakeHost().HandleCode("MATH", "add", func(ctx map[string]any) (map[string]any, error) {
		return map[string]any{"sum": ctx["a"].(float64) + ctx["b"].(float64)}, nil
	})
	inv := NewInvoker(testutil.MapLoader{"math.wasm": []byte("MATH")}, host)

	// Act
	out, err := inv.Invoke(context.Background(), newNode("add", "math.wasm"), document.Document{"a": 2.0, "b": 3.0})

	// Assert
	require.NoError(t, err)
	sum, ok := out.Field("sum")
	require.True(t, ok)
	assert.Equal(t, "5", sum)

	calls := host.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "add", calls[0].EntryPoint)
	assert.Equal(t, map[string]any{"a": 2.0, "b": 3.0}, calls[0].Context)
}

func TestInvoker_EntryPointIsNodeName(t *testing.T) {
	host := testutil.NewFakeHost().
		Handle("double", func(map[string]any) (map[string]any, error) { return map[string]any{"v": "double"}, nil }).
		Handle("halve", func(map[string]any) (map[string]any, error) { return map[string]any{"v": "halve"}, nil })
	inv := NewInvoker(testutil.MapLoader{"shared.wasm": []byte("X")}, host)

	for _, name := range []string{"double", "halve"} {
		out, err := inv.Invoke(context.Background(), newNode(name, "shared.wasm"), document.Document{})
		require.NoError(t, err)
		v, _ := out.Field("v")
		assert.Equal(t, `"`+name+`"`, v)
	}
}

func TestInvoker_Failures(t *testing.T) {
	loader := testutil.MapLoader{"u.wasm": []byte("U")}
	boom := errors.New("boom")

	testCases := []struct {
		name     string
		host     *testutil.FakeHost
		source   string
		sentinel error
	}{
		{
			name:     "missing unit",
			host:     testutil.NewFakeHost(),
			source:   "missing.wasm",
			sentinel: flowerr.ErrLoad,
		},
		{
			name:     "unknown entry point",
			host:     testutil.NewFakeHost(),
			source:   "u.wasm",
			sentinel: flowerr.ErrInvocation,
		},
		{
			name: "unit fails",
			host: testutil.NewFakeHost().Handle("f", func(map[string]any) (map[string]any, error) {
				return nil, boom
			}),
			source:   "u.wasm",
			sentinel: flowerr.ErrInvocation,
		},
		{
			name:     "output not an object",
			host:     testutil.NewFakeHost().HandleRaw("f", []byte(`[1,2]`)),
			source:   "u.wasm",
			sentinel: flowerr.ErrInvocation,
		},
		{
			name:     "output not json",
			host:     testutil.NewFakeHost().HandleRaw("f", []byte(`nope`)),
			source:   "u.wasm",
			sentinel: flowerr.ErrInvocation,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv := NewInvoker(loader, tc.host)
			_, err := inv.Invoke(context.Background(), newNode("f", tc.source), document.Document{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}

	t.Run("unit error is preserved", func(t *testing.T) {
		host := testutil.NewFakeHost().Handle("f", func(map[string]any) (map[string]any, error) { return nil, boom })
		_, err := NewInvoker(loader, host).Invoke(context.Background(), newNode("f", "u.wasm"), document.Document{})

		var invErr *flowerr.InvocationError
		require.ErrorAs(t, err, &invErr)
		assert.Equal(t, "n1", invErr.NodeID)
		assert.Equal(t, "f", invErr.EntryPoint)
		assert.ErrorIs(t, err, boom)
	})
}

func TestInvoker_Describe(t *testing.T) {
	host := testutil.NewFakeHost().HandleRaw(DescribeEntryPoint, []byte(`{
		"inputs": {"a": {"type": ["Number"]}, "b": {"type": ["Number"]}},
		"Output": {"sum": {"type": ["Number"]}}
	}`))
	inv := NewInvoker(testutil.MapLoader{"math.wasm": []byte("M")}, host)

	d, err := inv.Describe(context.Background(), newNode("add", "math.wasm"))
	require.NoError(t, err)
	assert.Equal(t, &Descriptor{
		Inputs: map[string]Port{"a": {Type: []string{"Number"}}, "b": {Type: []string{"Number"}}},
		Output: map[string]Port{"sum": {Type: []string{"Number"}}},
	}, d)
	assert.Empty(t, host.CallsTo("add"), "describe never runs the node's entry point")

	_, err = NewInvoker(testutil.MapLoader{"math.wasm": []byte("M")}, testutil.NewFakeHost()).
		Describe(context.Background(), newNode("add", "math.wasm"))
	assert.ErrorIs(t, err, flowerr.ErrInvocation)

	bad := testutil.NewFakeHost().HandleRaw(DescribeEntryPoint, []byte(`{"inputs": 3}`))
	_, err = NewInvoker(testutil.MapLoader{"math.wasm": []byte("M")}, bad).
		Describe(context.Background(), newNode("add", "math.wasm"))
	assert.ErrorIs(t, err, flowerr.ErrInvocation)
}
