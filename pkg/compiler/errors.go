package compiler

import (
	"fmt"

	"github.com/zurustar/bangla/pkg/compiler/parser"
)

// CompileError represents a structured compilation error with location information.
type CompileError struct {
	// Phase indicates which phase generated the error: "lexer" or "parser".
	Phase string

	// Message is the human-readable error description.
	Message string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context contains the source code around the error location,
	// with a pointer (^) indicating the error column.
	Context string
}

// Error implements the error interface.
// It returns a formatted error message including phase, location, message, and context.
func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

// Short returns the message with its position but without source context.
func (e *CompileError) Short() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func newCompileError(pe *parser.ParseError) *CompileError {
	phase := "parser"
	if pe.Lexical {
		phase = "lexer"
	}
	return &CompileError{
		Phase:   phase,
		Message: pe.Message,
		Line:    pe.Line,
		Column:  pe.Column,
		Context: pe.Context,
	}
}
