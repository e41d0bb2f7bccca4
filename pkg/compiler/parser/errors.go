package parser

import (
	"fmt"
	"strings"
)

// ParseError is a syntax error with its source location.
//
// Context holds up to two lines before and after the error line, with a
// pointer (^) under the error column.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Context string

	// AtEOF is set when the parser ran out of input. Interactive callers
	// treat such errors as "needs more input" rather than as failures.
	AtEOF bool

	// Lexical is set for errors raised on a token the lexer could not read.
	Lexical bool
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Detailed returns the error message followed by its source context.
func (e *ParseError) Detailed() string {
	if e.Context == "" {
		return e.Error()
	}
	return e.Error() + "\n" + e.Context
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers
// and a pointer (^) indicating the error column.
//
// Example output:
//
//	  2 | dhoro x = 5;
//	  3 | dhoro y = 10;
//	> 4 | dhoro z = ;
//	    |           ^
//	  5 | dekho(x);
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder

	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := lines[i]

		if lineNum == line {
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lineContent))
			pointerIndent := 2 + lineNumWidth + 3 // "> " + lineNumWidth + " | "
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n", strings.Repeat(" ", pointerIndent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", pointerIndent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lineContent))
		}
	}

	return buf.String()
}
