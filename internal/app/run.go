package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
)

// Run executes the configured operation: a run, a describe or a validation.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer func() { _ = a.closeHealthCheckServer() }()

	st, err := a.readState()
	if err != nil {
		return err
	}
	a.logger.Debug("State loaded.", "version", st.Version, "nodes", len(st.Graph.Nodes), "edges", len(st.Graph.Edges))

	eng, cleanup, err := a.buildEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case a.config.DescribeNode != "":
		d, err := eng.Describe(ctx, st, a.config.DescribeNode)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		return a.writeOutput(append(data, '\n'))

	case a.config.Validate:
		if err := eng.Validate(ctx, st, a.config.CheckUnits); err != nil {
			return fmt.Errorf("state is invalid:\n%w", err)
		}
		a.logger.Info("State is valid.", "nodes", len(st.Graph.Nodes), "edges", len(st.Graph.Edges))
		return nil
	}

	res, runErr := eng.Run(ctx, st, a.config.Trigger)
	// The state is written even when the run failed: edge values as of the
	// last successful firing are the diagnostic.
	if err := a.writeState(st); err != nil {
		if runErr != nil {
			a.logger.Error("Failed to write state after failed run.", "error", err)
			return runErr
		}
		return err
	}
	if runErr != nil {
		return runErr
	}

	a.logger.Debug("App.Run method finished.", "run_id", res.RunID, "firings", len(res.Fired), "stalled", res.Stalled)
	return nil
}
