package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/flowerr"
)

func noEnv(t *testing.T) string {
	t.Helper()
	return "-env-file=" + filepath.Join(t.TempDir(), "none.env")
}

func TestParse_Run(t *testing.T) {
	// Arrange
	out := &bytes.Buffer{}

	// Act
	cfg, exit, err := Parse([]string{noEnv(t), "-trigger", "n1", "-order", "FIFO", "-max-firings", "5", "state.json"}, out)

	// Assert
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "state.json", cfg.StatePath)
	assert.Equal(t, "n1", cfg.Trigger)
	assert.Equal(t, "-", cfg.OutPath)
	assert.Equal(t, "fifo", cfg.Engine.Order)
	assert.Equal(t, 5, cfg.Engine.MaxFiringsPerNode)
}

func TestParse_HelpAndNoArgs(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {}} {
		out := &bytes.Buffer{}
		cfg, exit, err := Parse(args, out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-workers", "3", "s.json"}},
		{name: "no operation", args: []string{"s.json"}},
		{name: "bad log level", args: []string{"-trigger", "a", "-log-level", "loud", "s.json"}},
		{name: "bad order", args: []string{"-trigger", "a", "-order", "random", "s.json"}},
		{name: "conflicting operations", args: []string{"-trigger", "a", "-validate", "s.json"}},
		{name: "missing config file", args: []string{"-trigger", "a", "-config", "/nonexistent/flowgrid.hcl", "s.json"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{noEnv(t)}, tc.args...)
			_, _, err := Parse(args, &bytes.Buffer{})

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
		})
	}
}

func TestParse_FlagsOverrideConfigFile(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "flowgrid.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log_level = "debug"
scheduler {
  order                = "fifo"
  max_firings_per_node = 9
}
`), 0o600))

	// Act
	cfg, _, err := Parse([]string{noEnv(t), "-config", cfgPath, "-max-firings", "3", "-validate", "s.json"}, &bytes.Buffer{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Engine.LogLevel, "from file")
	assert.Equal(t, "fifo", cfg.Engine.Order, "from file, flag not given")
	assert.Equal(t, 3, cfg.Engine.MaxFiringsPerNode, "flag wins")
	assert.True(t, cfg.Validate)
}

func TestFromRunError(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{err: &flowerr.ParseError{Err: errors.New("eof")}, code: ExitStateParse},
		{err: &flowerr.ReferenceError{Kind: "node", ID: "x"}, code: ExitRunFailed},
		{err: &flowerr.LoadError{NodeID: "a", Source: "a.wasm", Err: errors.New("nope")}, code: ExitRunFailed},
		{err: fmt.Errorf("wrapped: %w", &flowerr.InvocationError{NodeID: "a", Err: errors.New("trap")}), code: ExitRunFailed},
		{err: &flowerr.CycleError{NodeIDs: []string{"a", "b"}}, code: ExitRunFailed},
		{err: errors.New("disk full"), code: 1},
		{err: &ExitError{Code: ExitUsage, Message: "bad flag"}, code: ExitUsage},
	}
	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			exitErr := FromRunError(tc.err)
			assert.Equal(t, tc.code, exitErr.Code)
			assert.Equal(t, tc.err.Error(), exitErr.Message)
		})
	}
}
