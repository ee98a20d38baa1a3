package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/config"
	"github.com/vk/flowgrid/internal/flowerr"
)

const (
	ExitUsage      = 2
	ExitStateParse = 3
	ExitRunFailed  = 4
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// FromRunError maps an application error to an exit code.
func FromRunError(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	code := 1
	switch {
	case errors.Is(err, flowerr.ErrStateParse):
		code = ExitStateParse
	case errors.Is(err, flowerr.ErrGraphReference),
		errors.Is(err, flowerr.ErrLoad),
		errors.Is(err, flowerr.ErrInvocation),
		errors.Is(err, flowerr.ErrCycleNotConverging):
		code = ExitRunFailed
	}
	return &ExitError{Code: code, Message: err.Error(), Err: err}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flowgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
flowgrid - Run a dataflow graph of sandboxed compute units.

Usage:
  flowgrid [options] -trigger NODE_ID STATE_PATH
  flowgrid [options] -describe NODE_ID STATE_PATH
  flowgrid [options] -validate [-check-units] STATE_PATH

Arguments:
  STATE_PATH
    Path to the JSON state document, or "-" for stdin.

Options:
`)
		flagSet.PrintDefaults()
	}

	stateFlag := flagSet.String("state", "", "Path to the state document (alternative to STATE_PATH).")
	triggerFlag := flagSet.String("trigger", "", "Id of the node that starts the run.")
	outFlag := flagSet.String("out", "-", "Where to write the resulting state. '-' is stdout.")
	configFlag := flagSet.String("config", "", "Path to an HCL configuration file.")
	envFileFlag := flagSet.String("env-file", ".env", "Path to a .env file. A missing file is ignored.")
	describeFlag := flagSet.String("describe", "", "Print the unit descriptor of the given node instead of running.")
	validateFlag := flagSet.Bool("validate", false, "Check references and edge types instead of running.")
	checkUnitsFlag := flagSet.Bool("check-units", false, "With -validate, also compare every node against its unit descriptor.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	orderFlag := flagSet.String("order", "lifo", "Worklist order. Options: 'lifo' or 'fifo'.")
	maxFiringsFlag := flagSet.Int("max-firings", 100, "Maximum firings per node in one run.")
	unitsDirFlag := flagSet.String("units-dir", "", "Base directory for relative unit sources.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *stateFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		slog.Debug("No state path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	engineCfg, err := config.Load(*configFlag, *envFileFlag)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}

	// Flags only override the file and environment when given explicitly.
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-format":
			engineCfg.LogFormat = strings.ToLower(*logFormatFlag)
		case "log-level":
			engineCfg.LogLevel = strings.ToLower(*logLevelFlag)
		case "order":
			engineCfg.Order = strings.ToLower(*orderFlag)
		case "max-firings":
			engineCfg.MaxFiringsPerNode = *maxFiringsFlag
		case "units-dir":
			engineCfg.UnitsDir = *unitsDirFlag
		case "healthcheck-port":
			engineCfg.HealthcheckPort = *healthPortFlag
		}
	})
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		StatePath:    path,
		OutPath:      *outFlag,
		Trigger:      *triggerFlag,
		DescribeNode: *describeFlag,
		Validate:     *validateFlag,
		CheckUnits:   *checkUnitsFlag,
		Engine:       engineCfg,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	}

	slog.Debug("CLI parser finished successfully.", "state", cfg.StatePath, "trigger", cfg.Trigger)
	return cfg, false, nil
}
