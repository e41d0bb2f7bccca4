// Package compiler provides the front end for bangla scripts.
// It chains the lexer and parser and turns their diagnostics into
// CompileErrors:
//
//  1. Lexer: Tokenization
//  2. Parser: AST generation
//
// ProgramCache keeps parsed programs keyed by a hash of their source so
// re-running the same text skips both phases.
package compiler

import (
	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/compiler/lexer"
	"github.com/zurustar/bangla/pkg/compiler/parser"
)

// Compile parses source into a program.
// If any error occurs the program is nil and every error found is returned.
func Compile(source string) (*ast.Program, []*CompileError) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if parseErrs := p.ParseErrors(); len(parseErrs) > 0 {
		errs := make([]*CompileError, 0, len(parseErrs))
		for _, pe := range parseErrs {
			errs = append(errs, newCompileError(pe))
		}
		return nil, errs
	}

	return program, nil
}

// Incomplete reports whether source failed to parse only because it ended
// early, such as an unclosed block or argument list. Interactive front ends
// use it to keep reading lines.
func Incomplete(source string) bool {
	p := parser.New(lexer.New(source))
	p.ParseProgram()

	errs := p.ParseErrors()
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !e.AtEOF {
			return false
		}
	}
	return true
}

// Messages returns the short form of each error.
func Messages(errs []*CompileError) []string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Short())
	}
	return msgs
}
