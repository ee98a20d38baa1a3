// Package flowerr defines the failure kinds a flow run can end with.
//
// Every kind is a concrete type so callers can recover the details with
// errors.As, and every kind also matches a sentinel with errors.Is so callers
// that only care about the category don't need the type.
package flowerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStateParse         = errors.New("malformed state document")
	ErrGraphReference     = errors.New("dangling graph reference")
	ErrLoad               = errors.New("compute unit load failed")
	ErrInvocation         = errors.New("compute unit invocation failed")
	ErrCycleNotConverging = errors.New("cycle not converging")
)

// ParseError reports a state document that could not be decoded. The run
// never starts.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed state document: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrStateParse }

// ReferenceError reports an id that was referenced but could not be resolved.
// Kind names what was being looked up ("node", "inlet", "outlet", "edge").
type ReferenceError struct {
	Kind string
	ID   string
	// From optionally names the referencing element, e.g. the edge id whose
	// end could not be resolved.
	From string
	// Duplicate is set when the id resolves to more than one element.
	Duplicate bool
}

func (e *ReferenceError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("%s '%s' declared more than once", e.Kind, e.ID)
	}
	if e.From != "" {
		return fmt.Sprintf("%s '%s' referenced by '%s' not found", e.Kind, e.ID, e.From)
	}
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrGraphReference }

// LoadError reports a compute unit source that could not be read.
type LoadError struct {
	NodeID string
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("node '%s': failed to load compute unit '%s': %v", e.NodeID, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// InvocationError reports a sandbox host rejection or a failure inside the
// compute unit itself.
type InvocationError struct {
	NodeID     string
	EntryPoint string
	Err        error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("node '%s': invoking '%s' failed: %v", e.NodeID, e.EntryPoint, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }

// CycleError reports nodes that kept re-firing past the configured bound, or
// nodes that wait on each other's required inputs and can never fire.
type CycleError struct {
	NodeIDs []string
	// Limit is the per-node firing bound that was exceeded. It is zero when the
	// cycle was found as a readiness deadlock.
	Limit int
}

func (e *CycleError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("cycle not converging: node(s) %s exceeded %d firings", strings.Join(e.NodeIDs, ", "), e.Limit)
	}
	return fmt.Sprintf("cycle not converging: node(s) %s wait on each other's required inputs", strings.Join(e.NodeIDs, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycleNotConverging }
