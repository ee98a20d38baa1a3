// Package app wires the engine to the outside world: it builds the logger,
// the unit loaders and sandbox host, and the event observers from
// configuration, reads the state file, runs the requested operation, and
// writes the resulting state. It is decoupled from any specific entrypoint
// like a CLI.
package app
