package events

import (
	"context"
	"log/slog"

	"github.com/vk/flowgrid/internal/ctxlog"
)

// LogObserver writes events as structured log records. With a nil Logger it
// uses the logger carried by the context.
type LogObserver struct {
	Logger *slog.Logger
}

// Observe logs e. Skips and per-node progress go to debug; run boundaries
// to info; failures to error.
func (o *LogObserver) Observe(ctx context.Context, e Event) {
	logger := o.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	attrs := []any{"run_id", e.RunID}
	if e.NodeID != "" {
		attrs = append(attrs, "node_id", e.NodeID)
	}

	switch e.Kind {
	case RunStarted:
		logger.Info("Run started.", attrs...)
	case NodeStarted:
		logger.Debug("Node firing.", attrs...)
	case NodeFired:
		logger.Debug("Node fired.", append(attrs, "firing", e.Firing)...)
	case NodeSkippedNotReady:
		logger.Debug("Node not ready, skipped.", append(attrs, "missing", e.Missing)...)
	case RunFinished:
		logger.Info("Run finished.", append(attrs, "firings", e.Firing)...)
	case RunFailed:
		logger.Error("Run failed.", append(attrs, "error", e.Err)...)
	default:
		logger.Warn("Unknown event.", append(attrs, "kind", string(e.Kind))...)
	}
}
