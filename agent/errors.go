package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReport is returned when the Router hands off to the final report
	// before any Reporter draft exists.
	ErrNoReport = errors.New("no reporter response in state")

	// ErrNoUserTurn is returned when a chat history has no user message.
	ErrNoUserTurn = errors.New("no user message found in history")
)

// SchemaValidationError is returned when a structured agent's output does
// not conform to its schema.
type SchemaValidationError struct {
	Role Role
	Err  error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s response failed schema validation: %v", e.Role, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the model client.
type TransportError struct {
	Role Role
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s model call failed: %v", e.Role, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RoutingError reports a next_agent value that names no known router target.
type RoutingError struct {
	Value string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("router chose unknown agent %q", e.Value)
}
