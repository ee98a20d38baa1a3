// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
//
// Exit codes: 2 for usage errors, 3 for a malformed state document, 4 for a
// run that started and failed, 1 for anything else.
package cli
