package tools

import (
	"errors"
	"fmt"
)

// ErrorPrefix marks every failed execution so the model can tell it apart from a result
const ErrorPrefix = "Tool Execution Error: "

var (
	// ErrEmptyName is returned when a tool is registered without a name
	ErrEmptyName = errors.New("tool name must not be empty")

	// ErrNotStruct is returned when a tool's argument type is not a struct
	ErrNotStruct = errors.New("tool arguments must be a struct")

	// ErrToolNotFound is returned when a call names an unregistered tool
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidCall is returned when call text does not match name(key=value, ...)
	ErrInvalidCall = errors.New("invalid tool call")
)

// ArgumentError reports a keyword argument that does not fit the tool's signature
type ArgumentError struct {
	Tool     string
	Argument string // empty when the failure is not tied to one argument
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e.Argument == "" {
		return fmt.Sprintf("%s: invalid arguments: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: argument %q %s", e.Tool, e.Argument, e.Reason)
}

// ExecutionError wraps an error returned, or a panic raised, by a tool body
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
