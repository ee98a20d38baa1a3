package unit

import (
	"context"
	"fmt"
	"time"

	extism "github.com/extism/go-sdk"
	"github.com/vk/flowgrid/internal/ctxlog"
)

// Host runs one exported function of a compute unit in a sandbox.
type Host interface {
	Invoke(ctx context.Context, code []byte, entryPoint string, input []byte) ([]byte, error)
}

// ExtismHost runs WebAssembly compute units through the Extism runtime. A fresh
// plugin instance is created per call so no guest memory survives between
// firings.
type ExtismHost struct {
	// Timeout bounds a single call. Zero means no limit beyond ctx.
	Timeout time.Duration
	// EnableWasi exposes WASI to the guest.
	EnableWasi bool
}

// Invoke instantiates code and calls entryPoint with input.
func (h *ExtismHost) Invoke(ctx context.Context, code []byte, entryPoint string, input []byte) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)

	manifest := extism.Manifest{
		Wasm: []extism.Wasm{extism.WasmData{Data: code}},
	}
	manifest.Timeout = timeoutMillis(h.Timeout)

	plugin, err := extism.NewPlugin(ctx, manifest, extism.PluginConfig{EnableWasi: h.EnableWasi}, nil)
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin: %w", err)
	}
	defer func() {
		if cerr := plugin.CloseWithContext(ctx); cerr != nil {
			logger.Warn("Failed to close plugin.", "error", cerr)
		}
	}()

	if !plugin.FunctionExists(entryPoint) {
		return nil, fmt.Errorf("function '%s' is not exported", entryPoint)
	}

	exit, out, err := plugin.CallWithContext(ctx, entryPoint, input)
	if err != nil {
		return nil, fmt.Errorf("call exited with code %d: %w", exit, err)
	}

	// The output buffer belongs to the plugin and is released on close.
	result := make([]byte, len(out))
	copy(result, out)
	return result, nil
}

// timeoutMillis converts d to the manifest's millisecond timeout, where 0
// means unlimited. Positive durations below a millisecond round up to 1.
func timeoutMillis(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return uint64(ms)
}
