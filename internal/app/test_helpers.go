package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/vk/flowgrid/internal/testutil"
)

// SetupAppTest creates an App wired to the given fake host and loader with
// debug logging captured in a buffer. State output goes to the returned
// bytes.Buffer unless cfg sets an output path.
func SetupAppTest(t *testing.T, cfg *Config, opts ...Option) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	out := &bytes.Buffer{}
	cfg.Engine.LogLevel = "debug"
	testApp := NewApp(out, logBuffer, cfg, opts...)

	t.Cleanup(func() {
		if os.Getenv("FLOWGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
