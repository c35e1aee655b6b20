package script

import (
	"errors"
	"fmt"
)

var (
	// ErrFunctionNotFound is returned by Invoke for a name the unit does not define.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrNotTensor is returned when a function result is not a tensor.
	ErrNotTensor = errors.New("result is not a tensor")
)

// Error is a compile-time diagnostic with its source position.
type Error struct {
	Pos Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

func errorf(pos Pos, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// RuntimeError reports a failure while running a function, including
// engine faults such as shape mismatches.
type RuntimeError struct {
	Func string
	Pos  Pos
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s (line %d:%d): %s", e.Func, e.Pos.Line, e.Pos.Col, e.Msg)
}

// rtErr is raised by the interpreter with panic and recovered in Invoke.
type rtErr struct {
	msg string
}

func fail(format string, args ...any) {
	panic(rtErr{msg: fmt.Sprintf(format, args...)})
}
