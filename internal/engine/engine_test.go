package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/events"
	"github.com/vk/flowgrid/internal/flowerr"
	"github.com/vk/flowgrid/internal/scheduler"
	"github.com/vk/flowgrid/internal/state"
	"github.com/vk/flowgrid/internal/testutil"
	"github.com/vk/flowgrid/internal/unit"
)

const addAndPrint = `{
  "version": "0.1",
  "graph": {
    "nodes": [
      {
        "id": "n_add",
        "name": "add",
        "source": "math.wasm",
        "context": "{\"a\": 2, \"b\": 3}",
        "inlets": [],
        "outlets": [{"id": "o_sum", "name": "sum", "type": "Number"}]
      },
      {
        "id": "n_print",
        "name": "print",
        "source": "io.wasm",
        "context": "{\"prefix\": \"sum=\"}",
        "inlets": [{"id": "i_value", "name": "value", "type": "String", "required": true}],
        "outlets": []
      }
    ],
    "edges": [
      {"id": "e1", "start": "o_sum", "end": "i_value", "last_value": "\"stale\""}
    ]
  }
}`

type fixture struct {
	host     *testutil.FakeHost
	recorder *events.Recorder
	engine   *Engine
}

func newFixture(opts Options) *fixture {
	host := testutil.NewFakeHost().
		Handle("add", func(ctx map[string]any) (map[string]any, error) {
			return map[string]any{"sum": ctx["a"].(float64) + ctx["b"].(float64)}, nil
		}).
		Handle("print", func(map[string]any) (map[string]any, error) { return nil, nil })
	loader := testutil.MapLoader{"math.wasm": []byte("MATH"), "io.wasm": []byte("IO")}
	rec := &events.Recorder{}
	opts.Observer = rec
	return &fixture{
		host:     host,
		recorder: rec,
		engine:   New(unit.NewInvoker(loader, host), opts),
	}
}

func parse(t *testing.T, raw string) *state.State {
	t.Helper()
	st, err := state.Parse([]byte(raw))
	require.NoError(t, err)
	return st
}

func TestRun_AddAndPrint(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	st := parse(t, addAndPrint)

	// Act
	res, err := f.engine.Run(context.Background(), st, "n_add")

	// Assert
	require.NoError(t, err)
	_, uuidErr := uuid.Parse(res.RunID)
	assert.NoError(t, uuidErr)
	assert.Equal(t, []string{"n_add", "n_print"}, res.Fired)
	assert.Equal(t, map[string]string{"e1": "5"}, testutil.Values(st))

	calls := f.host.CallsTo("print")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"prefix": "sum=", "value": float64(5)}, calls[0].Context)
}

func TestRun_IdempotentRestart(t *testing.T) {
	f := newFixture(Options{})
	st := parse(t, addAndPrint)

	_, err := f.engine.Run(context.Background(), st, "n_add")
	require.NoError(t, err)
	first := testutil.Values(st)

	_, err = f.engine.Run(context.Background(), st, "n_add")
	require.NoError(t, err)

	assert.Equal(t, first, testutil.Values(st))
}

func TestRun_ClearsStaleValuesBeforeStarting(t *testing.T) {
	// Triggering the sink directly: the stale value must not make it ready.
	f := newFixture(Options{})
	st := parse(t, addAndPrint)

	res, err := f.engine.Run(context.Background(), st, "n_print")

	require.NoError(t, err)
	assert.Empty(t, res.Fired)
	assert.Equal(t, []string{"n_print"}, res.Stalled)
	assert.Equal(t, map[string]string{"e1": ""}, testutil.Values(st))
	assert.Empty(t, f.host.Calls())
}

func TestRun_DanglingReference(t *testing.T) {
	// Arrange
	f := newFixture(Options{})
	st := parse(t, addAndPrint)
	st.Graph.Edges[0].End = "i_missing"

	// Act
	res, err := f.engine.Run(context.Background(), st, "n_add")

	// Assert
	var refErr *flowerr.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "i_missing", refErr.ID)
	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, f.host.Calls(), "no unit runs when the graph does not resolve")

	failed := f.recorder.Of(events.RunFailed)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, flowerr.ErrGraphReference)
}

func TestRun_EventsCarryRunID(t *testing.T) {
	f := newFixture(Options{Order: scheduler.FIFO})
	st := parse(t, addAndPrint)

	res, err := f.engine.Run(context.Background(), st, "n_add")
	require.NoError(t, err)

	all := f.recorder.Events()
	require.NotEmpty(t, all)
	assert.Equal(t, events.RunStarted, all[0].Kind)
	assert.Equal(t, "n_add", all[0].NodeID)
	assert.Equal(t, events.RunFinished, all[len(all)-1].Kind)
	assert.Equal(t, 2, all[len(all)-1].Firing)
	for _, e := range all {
		assert.Equal(t, res.RunID, e.RunID, "event %s", e.Kind)
		assert.False(t, e.Time.IsZero())
	}
}

func TestRun_NonConvergingCycle(t *testing.T) {
	f := newFixture(Options{})
	st := testutil.NewState().
		Node("A", "add", testutil.WithSource("math.wasm"), testutil.WithInlet("A.in", "in", true), testutil.WithOutlet("A.out", "sum")).
		Node("B", "add", testutil.WithSource("math.wasm"), testutil.WithInlet("B.in", "in", true), testutil.WithOutlet("B.out", "sum")).
		Edge("ab", "A.out", "B.in").
		Edge("ba", "B.out", "A.in").
		State()

	_, err := f.engine.Run(context.Background(), st, "A")

	assert.ErrorIs(t, err, flowerr.ErrCycleNotConverging)
	assert.Len(t, f.recorder.Of(events.RunFailed), 1)
}

func TestDescribe(t *testing.T) {
	f := newFixture(Options{})
	f.host.HandleCode("MATH", unit.DescribeEntryPoint, func(map[string]any) (map[string]any, error) {
		return map[string]any{
			"inputs": map[string]any{},
			"Output": map[string]any{"sum": map[string]any{"type": []any{"Number"}}},
		}, nil
	})
	st := parse(t, addAndPrint)

	d, err := f.engine.Describe(context.Background(), st, "n_add")
	require.NoError(t, err)
	assert.Equal(t, []string{"Number"}, d.Output["sum"].Type)

	_, err = f.engine.Describe(context.Background(), st, "nope")
	assert.ErrorIs(t, err, flowerr.ErrGraphReference)
	assert.Empty(t, f.host.CallsTo("add"))
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := newFixture(Options{})
		assert.NoError(t, f.engine.Validate(context.Background(), parse(t, addAndPrint), false))
	})

	t.Run("bad type tag", func(t *testing.T) {
		f := newFixture(Options{})
		st := parse(t, addAndPrint)
		st.Graph.Nodes[1].Inlets[0].Type = "banana"

		err := f.engine.Validate(context.Background(), st, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inlet 'i_value'")
	})

	t.Run("descriptors", func(t *testing.T) {
		f := newFixture(Options{})
		f.host.
			HandleCode("MATH", unit.DescribeEntryPoint, func(map[string]any) (map[string]any, error) {
				return map[string]any{"inputs": map[string]any{}, "Output": map[string]any{"sum": map[string]any{"type": []any{"Number"}}}}, nil
			}).
			HandleCode("IO", unit.DescribeEntryPoint, func(map[string]any) (map[string]any, error) {
				return map[string]any{"inputs": map[string]any{}, "Output": map[string]any{}}, nil
			})

		err := f.engine.Validate(context.Background(), parse(t, addAndPrint), true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inlet 'value' is not an input")
		assert.NotContains(t, err.Error(), "n_add")
	})

	t.Run("does not touch values", func(t *testing.T) {
		f := newFixture(Options{})
		st := parse(t, addAndPrint)
		require.NoError(t, f.engine.Validate(context.Background(), st, false))
		assert.Equal(t, `"stale"`, testutil.Values(st)["e1"])
		assert.Empty(t, f.host.Calls())
	})
}
