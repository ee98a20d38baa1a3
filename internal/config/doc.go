// Package config defines the engine's runtime configuration and how it is
// assembled. Sources are layered, later ones winning:
//
//  1. Built-in defaults (Default).
//  2. An optional HCL file (LoadFile).
//  3. Environment variables, including any from a .env file (ApplyEnv).
//
// Command-line flags are applied on top by the cli package.
package config
