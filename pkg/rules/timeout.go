package rules

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single evaluation when Engine.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a script runs longer than the engine allows.
var ErrTimeout = errors.New("policy evaluation timed out")

type evalResult struct {
	policy *Policy
	errors []EvalError
	err    error
}

// await blocks until the evaluation goroutine reports on ch or ctx ends.
// The goroutine may outlive a timeout; ch must be buffered so it can still
// deliver and exit.
func await(ctx context.Context, ch <-chan evalResult) (*Policy, []EvalError, error) {
	select {
	case res := <-ch:
		return res.policy, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, ErrTimeout
		}
		return nil, nil, fmt.Errorf("policy evaluation canceled: %w", ctx.Err())
	}
}
