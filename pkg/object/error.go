package object

import (
	"fmt"
	"strings"
)

// ErrorKind classifies runtime errors. Language code only ever sees the
// message text; the kind is for hosts and tests.
type ErrorKind string

const (
	ErrUnknownIdentifier ErrorKind = "UNKNOWN_IDENTIFIER"
	ErrArity             ErrorKind = "ARITY"
	ErrType              ErrorKind = "TYPE"
	ErrDivisionByZero    ErrorKind = "DIVISION_BY_ZERO"
	ErrOutOfBounds       ErrorKind = "OUT_OF_BOUNDS"
	ErrNotCallable       ErrorKind = "NOT_CALLABLE"
	ErrThrown            ErrorKind = "THROWN"
	ErrStackOverflow     ErrorKind = "STACK_OVERFLOW"
	ErrHost              ErrorKind = "HOST"

	// Sandbox limits. These stop the run and cannot be caught.
	ErrLoopLimit   ErrorKind = "LOOP_LIMIT"
	ErrInterrupted ErrorKind = "INTERRUPTED"
)

// Error is a runtime failure. It is both an Object and a Go error, so it can
// travel through the evaluator's error return and be handed to builtins.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int // 0 when unknown

	// Trace lists the active calls, innermost first, when the error was raised.
	Trace []string
}

func (e *Error) Type() Type      { return ERROR_OBJ }
func (e *Error) Inspect() string { return "bhul: " + e.Message }
func (e *Error) object()         {}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] %s at line %d", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Catchable reports whether dhoro_bhul may recover from the error.
func (e *Error) Catchable() bool {
	switch e.Kind {
	case ErrLoopLimit, ErrInterrupted:
		return false
	default:
		return true
	}
}

// WithLine sets the line if none is recorded yet.
func (e *Error) WithLine(line int) *Error {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}

// TraceString renders the call trace as "in f, in g".
func (e *Error) TraceString() string {
	parts := make([]string, 0, len(e.Trace))
	for _, name := range e.Trace {
		parts = append(parts, "in "+name)
	}
	return strings.Join(parts, ", ")
}

// NewError creates an Error with a formatted message.
func NewError(kind ErrorKind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func NewUnknownIdentifierError(name string) *Error {
	return NewError(ErrUnknownIdentifier, "identifier not found: %s", name)
}

// NewArityError reports a builtin called with the wrong number of arguments.
func NewArityError(name string, want string, got int) *Error {
	return NewError(ErrArity, "wrong number of arguments to %s: want %s, got %d", name, want, got)
}

func NewTypeError(format string, a ...any) *Error {
	return NewError(ErrType, format, a...)
}

func NewDivisionByZeroError() *Error {
	return NewError(ErrDivisionByZero, "division by zero")
}

func NewOutOfBoundsError(index float64, length int) *Error {
	return NewError(ErrOutOfBounds, "index %s out of range (length %d)", FormatNumber(index), length)
}

func NewNotCallableError(obj Object) *Error {
	return NewError(ErrNotCallable, "not a function: %s", obj.Type())
}

// NewThrownError wraps a felo value; the message is the value's text.
func NewThrownError(value Object) *Error {
	if e, ok := value.(*Error); ok {
		return &Error{Kind: ErrThrown, Message: e.Message}
	}
	return &Error{Kind: ErrThrown, Message: value.Inspect()}
}

func NewStackOverflowError(depth int) *Error {
	return NewError(ErrStackOverflow, "maximum call depth %d exceeded", depth)
}

// NewHostError reports a host capability that is missing or failed.
func NewHostError(format string, a ...any) *Error {
	return NewError(ErrHost, format, a...)
}

func NewLoopLimitError(limit int) *Error {
	return NewError(ErrLoopLimit, "loop iteration limit %d exceeded", limit)
}

func NewInterruptedError(cause error) *Error {
	if cause == nil {
		return NewError(ErrInterrupted, "execution interrupted")
	}
	return NewError(ErrInterrupted, "execution interrupted: %v", cause)
}
