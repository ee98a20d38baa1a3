package flowerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds_MatchSentinels(t *testing.T) {
	cause := errors.New("boom")
	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"parse", &ParseError{Err: cause}, ErrStateParse},
		{"reference", &ReferenceError{Kind: "inlet", ID: "i1", From: "e1"}, ErrGraphReference},
		{"load", &LoadError{NodeID: "n1", Source: "a.wasm", Err: cause}, ErrLoad},
		{"invocation", &InvocationError{NodeID: "n1", EntryPoint: "add", Err: cause}, ErrInvocation},
		{"cycle", &CycleError{NodeIDs: []string{"a", "b"}, Limit: 3}, ErrCycleNotConverging},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("run failed: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
			for _, other := range []error{ErrStateParse, ErrGraphReference, ErrLoad, ErrInvocation, ErrCycleNotConverging} {
				if other != tc.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestErrorKinds_UnwrapCause(t *testing.T) {
	cause := errors.New("trap: unreachable")
	err := fmt.Errorf("wrapped: %w", &InvocationError{NodeID: "n1", EntryPoint: "add", Err: cause})

	assert.ErrorIs(t, err, cause)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "n1", invErr.NodeID)
	assert.Equal(t, "add", invErr.EntryPoint)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "inlet 'i9' referenced by 'e1' not found", (&ReferenceError{Kind: "inlet", ID: "i9", From: "e1"}).Error())
	assert.Equal(t, "node 'x' not found", (&ReferenceError{Kind: "node", ID: "x"}).Error())
	assert.Contains(t, (&CycleError{NodeIDs: []string{"a"}, Limit: 5}).Error(), "exceeded 5 firings")
	assert.Contains(t, (&CycleError{NodeIDs: []string{"a", "b", "a"}}).Error(), "a -> b -> a")
	assert.Contains(t, (&LoadError{NodeID: "n", Source: "s3://b/k", Err: errors.New("nope")}).Error(), "s3://b/k")
}
