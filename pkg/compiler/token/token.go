// Package token defines the lexical tokens of bangla source code.
package token

import (
	"fmt"
	"sort"
)

type TokenType string

// Token is the smallest lexical unit, tagged with the position of its first character.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Column)
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + Literals
	IDENT  = "IDENT"  // dhoro, x, amar_list
	NUMBER = "NUMBER" // 123, 4.5
	STRING = "STRING" // "abc", 'abc'

	// Operators
	ASSIGN    = "="
	PLUS      = "+"
	MINUS     = "-"
	ASTERISK  = "*"
	SLASH     = "/"
	PERCENT   = "%"
	POWER     = "**"
	BANG      = "!"
	EQ        = "=="
	NOT_EQ    = "!="
	LT        = "<"
	GT        = ">"
	LTE       = "<="
	GTE       = ">="
	PLUS_EQ   = "+="
	MINUS_EQ  = "-="
	TIMES_EQ  = "*="
	DIVIDE_EQ = "/="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	DOT       = "."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"

	// Keywords
	LET         = "LET"
	IF          = "IF"
	ELSE        = "ELSE"
	WHILE       = "WHILE"
	FOR         = "FOR"
	FUNCTION    = "FUNCTION"
	RETURN      = "RETURN"
	CLASS       = "CLASS"
	CONSTRUCTOR = "CONSTRUCTOR"
	NEW         = "NEW"
	THIS        = "THIS"
	TRUE        = "TRUE"
	FALSE       = "FALSE"
	NULL        = "NULL"
	AND         = "AND"
	OR          = "OR"
	NOT         = "NOT"
	BREAK       = "BREAK"
	CONTINUE    = "CONTINUE"
	TRY         = "TRY"
	CATCH       = "CATCH"
	FINALLY     = "FINALLY"
	THROW       = "THROW"
	IMPORT      = "IMPORT"
	EXPORT      = "EXPORT"
	AS          = "AS"
)

// keywords maps keyword spellings to their TokenType. Lookup is case-sensitive.
var keywords = map[string]TokenType{
	"dhoro":      LET,
	"jodi":       IF,
	"nahole":     ELSE,
	"jotokkhon":  WHILE,
	"ghuriye":    FOR,
	"kaj":        FUNCTION,
	"ferao":      RETURN,
	"sreni":      CLASS,
	"shuru":      CONSTRUCTOR,
	"notun":      NEW,
	"ei":         THIS,
	"sotti":      TRUE,
	"mittha":     FALSE,
	"khali":      NULL,
	"ebong":      AND,
	"ba":         OR,
	"na":         NOT,
	"thamo":      BREAK,
	"chharo":     CONTINUE,
	"chesta":     TRY,
	"dhoro_bhul": CATCH,
	"shesh":      FINALLY,
	"felo":       THROW,
	"ano":        IMPORT,
	"pathao":     EXPORT,
	"hisabe":     AS,
}

// LookupIdent returns the keyword TokenType for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keyword returns the source spelling of a keyword token type.
func Keyword(t TokenType) (string, bool) {
	for spelling, tt := range keywords {
		if tt == t {
			return spelling, true
		}
	}
	return "", false
}

// IsKeyword reports whether t is one of the keyword token types.
func (t TokenType) IsKeyword() bool {
	_, ok := Keyword(t)
	return ok
}

// Keywords returns every keyword spelling in sorted order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for spelling := range keywords {
		words = append(words, spelling)
	}
	sort.Strings(words)
	return words
}
