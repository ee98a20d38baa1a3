package app

import (
	"fmt"
	"io"
	"os"

	"github.com/vk/flowgrid/internal/state"
)

// readState loads and parses the configured state document.
func (a *App) readState() (*state.State, error) {
	var (
		data []byte
		err  error
	)
	if a.config.StatePath == "-" {
		in := a.inR
		if in == nil {
			in = os.Stdin
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(a.config.StatePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return state.Parse(data)
}

// writeState serializes st to the configured output.
func (a *App) writeState(st *state.State) error {
	data, err := state.Marshal(st)
	if err != nil {
		return err
	}
	return a.writeOutput(data)
}

func (a *App) writeOutput(data []byte) error {
	if a.config.OutPath == "" || a.config.OutPath == "-" {
		_, err := a.outW.Write(data)
		return err
	}
	if err := os.WriteFile(a.config.OutPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.config.OutPath, err)
	}
	return nil
}
