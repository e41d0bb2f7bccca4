// Package lexer provides lexical analysis for bangla scripts.
package lexer

import (
	"github.com/zurustar/bangla/pkg/compiler/token"
)

// Lexer tokenizes bangla source code.
// It never fails: characters it does not recognize become ILLEGAL tokens.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token, or EOF once the input is exhausted.
func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespaceAndComments()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '=':
		tok = l.twoCharToken('=', token.EQ, token.ASSIGN)
	case '!':
		tok = l.twoCharToken('=', token.NOT_EQ, token.BANG)
	case '<':
		tok = l.twoCharToken('=', token.LTE, token.LT)
	case '>':
		tok = l.twoCharToken('=', token.GTE, token.GT)
	case '+':
		tok = l.twoCharToken('=', token.PLUS_EQ, token.PLUS)
	case '-':
		tok = l.twoCharToken('=', token.MINUS_EQ, token.MINUS)
	case '/':
		tok = l.twoCharToken('=', token.DIVIDE_EQ, token.SLASH)
	case '*':
		switch l.peekChar() {
		case '*':
			tok = l.twoCharToken('*', token.POWER, token.ASTERISK)
		default:
			tok = l.twoCharToken('=', token.TIMES_EQ, token.ASTERISK)
		}
	case '%':
		tok = l.newToken(token.PERCENT, l.ch)
	case '(':
		tok = l.newToken(token.LPAREN, l.ch)
	case ')':
		tok = l.newToken(token.RPAREN, l.ch)
	case '{':
		tok = l.newToken(token.LBRACE, l.ch)
	case '}':
		tok = l.newToken(token.RBRACE, l.ch)
	case '[':
		tok = l.newToken(token.LBRACKET, l.ch)
	case ']':
		tok = l.newToken(token.RBRACKET, l.ch)
	case ',':
		tok = l.newToken(token.COMMA, l.ch)
	case ';':
		tok = l.newToken(token.SEMICOLON, l.ch)
	case ':':
		tok = l.newToken(token.COLON, l.ch)
	case '.':
		tok = l.newToken(token.DOT, l.ch)
	case '"', '\'':
		literal, ok := l.readString(l.ch)
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: literal, Line: tok.Line, Column: tok.Column}
		}
		tok.Type = token.STRING
		tok.Literal = literal
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			return tok
		}
		tok = l.newToken(token.ILLEGAL, l.ch)
	}

	l.readChar()
	return tok
}

// Tokenize drains the lexer, returning every token up to and including EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// twoCharToken emits the two-character operator when the next char is second,
// otherwise the single-character operator. The longer match always wins.
func (l *Lexer) twoCharToken(second byte, double, single token.TokenType) token.Token {
	line, column := l.line, l.column
	if l.peekChar() == second {
		ch := l.ch
		l.readChar()
		return token.Token{Type: double, Literal: string(ch) + string(l.ch), Line: line, Column: column}
	}
	return l.newToken(single, l.ch)
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier: [A-Za-z_][A-Za-z0-9_]*.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or a decimal. Exponents, hex and signs are not
// part of the number syntax.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[position:l.position]
}

// readString reads a string delimited by quote. A backslash copies the
// following character verbatim. Reports false when the input ends before the
// closing quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var out []byte
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return string(quote) + string(out), false
		case quote:
			return string(out), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return string(quote) + string(out), false
			}
			out = append(out, l.ch)
		default:
			out = append(out, l.ch)
		}
	}
}

// skipWhitespaceAndComments skips whitespace and // line comments, in any order.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

// newToken creates a new single-character token at the current position.
func (l *Lexer) newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// isLetter checks if a character may start an identifier.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Source returns the source code being tokenized.
func (l *Lexer) Source() string {
	return l.input
}
