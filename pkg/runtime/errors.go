package runtime

import (
	"fmt"

	"github.com/FoundationINCCorporateTeam/RIFT/pkg/ast"
)

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	NameError             ErrorKind = "NameError"
	ImmutableBindingError ErrorKind = "ImmutableBindingError"
	TypeError             ErrorKind = "TypeError"
	NoMatchError          ErrorKind = "NoMatchError"
	UserError             ErrorKind = "UserError"
	AsyncRejection        ErrorKind = "AsyncRejection"
)

// RuntimeError is a raised RIFT error. Value carries the payload of `fail`;
// Cause links an AsyncRejection to the failure that rejected the task.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Value   Value
	Pos     ast.Position
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Errorf builds a RuntimeError of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
