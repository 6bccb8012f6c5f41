package ai

import (
	"context"
	"fmt"
)

// Reasoner asks a language model to work through inputs in the persona of
// role. Inputs are ordered oldest first.
type Reasoner interface {
	Invoke(ctx context.Context, role Role, inputs []string) (string, error)
}

// InvocationError reports a failure of the model call itself, such as
// rejected credentials or exhausted quota.
type InvocationError struct {
	Role Role
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invocation: %v", e.Role, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
