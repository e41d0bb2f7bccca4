// Package parser builds the bangla syntax tree with a Pratt (precedence
// climbing) parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/compiler/lexer"
	"github.com/zurustar/bangla/pkg/compiler/token"
)

// Precedence levels for operators, lowest first.
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -= *= /=
	OR          // ba
	AND         // ebong
	EQUALS      // == !=
	LESSGREATER // > < >= <=
	SUM         // + -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // -X !X na X
	CALL        // fn(X) a[i] a.b
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:    ASSIGN,
	token.PLUS_EQ:   ASSIGN,
	token.MINUS_EQ:  ASSIGN,
	token.TIMES_EQ:  ASSIGN,
	token.DIVIDE_EQ: ASSIGN,
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LTE:       LESSGREATER,
	token.GT:        LESSGREATER,
	token.GTE:       LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.PERCENT:   PRODUCT,
	token.POWER:     POWER,
	token.LPAREN:    CALL,
	token.LBRACKET:  CALL,
	token.DOT:       CALL,
}

// Parser parses bangla source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []*ParseError
	source string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*ParseError{},
		source: l.Source(),
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseMapLiteral)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(token.CLASS, p.parseClassLiteral)
	p.registerPrefix(token.NEW, p.parseNewExpression)
	p.registerPrefix(token.THIS, p.parseThisExpression)
	p.registerPrefix(token.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, op := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT, token.POWER,
		token.EQ, token.NOT_EQ, token.LT, token.LTE, token.GT, token.GTE,
		token.AND, token.OR,
	} {
		p.registerInfix(op, p.parseInfixExpression)
	}
	for _, op := range []token.TokenType{
		token.ASSIGN, token.PLUS_EQ, token.MINUS_EQ, token.TIMES_EQ, token.DIVIDE_EQ,
	} {
		p.registerInfix(op, p.parseAssignmentExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parser errors as line-tagged messages.
func (p *Parser) Errors() []string {
	msgs := make([]string, 0, len(p.errors))
	for _, e := range p.errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

// ParseErrors returns the structured parser errors.
func (p *Parser) ParseErrors() []*ParseError {
	return p.errors
}

// ParseProgram parses the entire program. Parsing continues after an error
// so that one pass reports as many problems as possible.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for p.curToken.Type != token.EOF {
		if p.curToken.Type == token.SEMICOLON {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.TRY:
		return p.parseTryStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.EXPORT:
		return p.parseExportStatement()
	case token.LBRACE:
		block := p.parseBlockStatement()
		if block == nil {
			return nil
		}
		return block
	case token.FUNCTION:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionDeclaration()
		}
		return p.parseExpressionStatement()
	case token.CLASS:
		if p.peekTokenIs(token.IDENT) {
			return p.parseClassDeclaration()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseLetStatement parses `dhoro name` or `dhoro name = value`.
func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.peekTokenIs(token.ASSIGN) {
		return stmt
	}
	p.nextToken()
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	nameAnonymous(stmt.Value, stmt.Name.Value)

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}

	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseForStatement parses `ghuriye (init; condition; update) { body }`.
// Each header part may be empty.
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		if p.curTokenIs(token.LET) {
			stmt.Init = p.parseLetStatement()
		} else {
			stmt.Init = p.parseExpressionStatement()
		}
		if stmt.Init == nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}

	p.nextToken()
	if !p.curTokenIs(token.SEMICOLON) {
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
	}

	p.nextToken()
	if !p.curTokenIs(token.RPAREN) {
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			return nil
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseTryStatement parses `chesta {} dhoro_bhul (e) {} shesh {}`.
func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Block = p.parseBlockStatement()
	if stmt.Block == nil {
		return nil
	}

	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		if !p.expectPeek(token.LPAREN) {
			return nil
		}
		if p.peekTokenIs(token.IDENT) {
			p.nextToken()
			stmt.CatchParam = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.CatchBlock = p.parseBlockStatement()
		if stmt.CatchBlock == nil {
			return nil
		}
	}

	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.FinallyBlock = p.parseBlockStatement()
		if stmt.FinallyBlock == nil {
			return nil
		}
	}

	if stmt.CatchBlock == nil && stmt.FinallyBlock == nil {
		p.addError(p.peekToken, "chesta requires a dhoro_bhul or shesh block")
		return nil
	}

	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	return stmt
}

// parseImportStatement parses `ano "path"` with an optional `hisabe alias`.
func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}

	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path = p.curToken.Literal

	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Alias = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	return stmt
}

func (p *Parser) parseExportStatement() ast.Statement {
	stmt := &ast.ExportStatement{Token: p.curToken}

	p.nextToken()
	stmt.Statement = p.parseStatement()
	if stmt.Statement == nil {
		return nil
	}

	return stmt
}

// parseFunctionDeclaration parses `kaj name(params) { body }`.
func (p *Parser) parseFunctionDeclaration() ast.Statement {
	decl := &ast.FunctionDeclaration{Token: p.curToken}

	p.nextToken()
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	fn := p.parseFunctionRest(decl.Token, decl.Name.Value)
	if fn == nil {
		return nil
	}
	decl.Function = fn

	return decl
}

// parseClassDeclaration parses `sreni Name { ... }`.
func (p *Parser) parseClassDeclaration() ast.Statement {
	decl := &ast.ClassDeclaration{Token: p.curToken}

	class := p.parseClassLiteral()
	if class == nil {
		return nil
	}
	decl.Class = class.(*ast.ClassLiteral)
	decl.Name = &ast.Identifier{Token: decl.Token, Value: decl.Class.Name}

	return decl
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(p.curToken, "expected } to close block, got EOF instead")
			return nil
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as number", p.curToken.Literal))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.ThisExpression{Token: p.curToken}
}

func (p *Parser) parseIllegal() ast.Expression {
	p.addError(p.curToken, fmt.Sprintf("illegal token %q", p.curToken.Literal))
	p.errors[len(p.errors)-1].Lexical = true
	return nil
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	array.Elements = elements
	return array
}

// parseMapLiteral parses `{ key: value, ... }`. A bare identifier key names a
// string key.
func (p *Parser) parseMapLiteral() ast.Expression {
	m := &ast.MapLiteral{Token: p.curToken}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		var key ast.Expression
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
			key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
		} else {
			key = p.parseExpression(LOWEST)
			if key == nil {
				return nil
			}
		}

		if !p.expectPeek(token.COLON) {
			return nil
		}

		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		m.Pairs = append(m.Pairs, ast.MapPair{Key: key, Value: value})

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return m
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseAssignmentExpression parses `target op value`. Assignment is
// right-associative: the value is parsed one level below ASSIGN so that
// a = b = 5 groups as a = (b = 5).
func (p *Parser) parseAssignmentExpression(target ast.Expression) ast.Expression {
	switch target.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.MemberExpression:
	default:
		p.addError(p.curToken, fmt.Sprintf("invalid assignment target %s", target.String()))
		return nil
	}

	expression := &ast.AssignmentExpression{
		Token:    p.curToken,
		Target:   target,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}
	if ident, ok := target.(*ast.Identifier); ok {
		nameAnonymous(expression.Value, ident.Value)
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return exp
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Object: object}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	return exp
}

// parseIfExpression parses `jodi (cond) { } nahole { }`. `nahole jodi` chains
// are stored as an alternative block holding the nested if.
func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	expression.Consequence = p.parseBlockStatement()
	if expression.Consequence == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()

		if p.peekTokenIs(token.IF) {
			p.nextToken()
			nestedTok := p.curToken
			nested := p.parseIfExpression()
			if nested == nil {
				return nil
			}
			expression.Alternative = &ast.BlockStatement{
				Token:      nestedTok,
				Statements: []ast.Statement{&ast.ExpressionStatement{Token: nestedTok, Expression: nested}},
			}
		} else if p.expectPeek(token.LBRACE) {
			expression.Alternative = p.parseBlockStatement()
			if expression.Alternative == nil {
				return nil
			}
		} else {
			return nil
		}
	}

	return expression
}

// parseFunctionLiteral parses `kaj(params) { body }`, optionally named.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	tok := p.curToken
	name := ""
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name = p.curToken.Literal
	}

	fn := p.parseFunctionRest(tok, name)
	if fn == nil {
		return nil
	}
	return fn
}

// parseFunctionRest parses the parameter list and body that follow a
// function name; curToken is the token just before `(`.
func (p *Parser) parseFunctionRest(tok token.Token, name string) *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{Token: tok, Name: name}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}

	return fn
}

func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers, true
	}

	if !p.expectPeek(token.IDENT) {
		return nil, false
	}
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return identifiers, true
}

// parseClassLiteral parses `sreni [Name] { members }`. Members are the
// constructor `shuru(...) {}` and methods `name(...) {}` (optionally written
// `kaj name(...) {}`). A repeated member name replaces the earlier one.
func (p *Parser) parseClassLiteral() ast.Expression {
	class := &ast.ClassLiteral{
		Token:   p.curToken,
		Methods: make(map[string]*ast.FunctionLiteral),
	}

	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		class.Name = p.curToken.Literal
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		switch p.curToken.Type {
		case token.EOF:
			p.addError(p.curToken, "expected } to close class body, got EOF instead")
			return nil
		case token.SEMICOLON:
		case token.CONSTRUCTOR:
			fn := p.parseFunctionRest(p.curToken, "shuru")
			if fn == nil {
				return nil
			}
			class.Constructor = fn
		case token.FUNCTION, token.IDENT:
			if p.curTokenIs(token.FUNCTION) && !p.expectPeek(token.IDENT) {
				return nil
			}
			name := p.curToken.Literal
			fn := p.parseFunctionRest(p.curToken, name)
			if fn == nil {
				return nil
			}
			if _, exists := class.Methods[name]; !exists {
				class.MethodOrder = append(class.MethodOrder, name)
			}
			class.Methods[name] = fn
		default:
			p.addError(p.curToken, fmt.Sprintf("unexpected %s in class body", p.curToken.Type))
			return nil
		}
		p.nextToken()
	}

	return class
}

// parseNewExpression parses `notun Class(args)`. The class operand is a
// primary expression optionally followed by member accesses; the argument
// list may be omitted. Anything after the closing parenthesis applies to the
// new instance, so `notun Point(1, 2).x` reads the x of the new Point.
func (p *Parser) parseNewExpression() ast.Expression {
	exp := &ast.NewExpression{Token: p.curToken, Arguments: []ast.Expression{}}

	p.nextToken()
	class := p.parseExpression(CALL)
	if class == nil {
		return nil
	}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		class = p.parseMemberExpression(class)
		if class == nil {
			return nil
		}
	}
	exp.Class = class

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		exp.Arguments = args
	}

	return exp
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

// nameAnonymous gives an unnamed function or class literal the name it is
// bound to, so runtime messages can refer to it.
func nameAnonymous(value ast.Expression, name string) {
	switch v := value.(type) {
	case *ast.FunctionLiteral:
		if v.Name == "" {
			v.Name = name
		}
	case *ast.ClassLiteral:
		if v.Name == "" {
			v.Name = name
		}
	}
}

// Helper functions
func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(p.peekToken, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.addError(tok, fmt.Sprintf("no prefix parse function for %s found", tok.Type))
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, &ParseError{
		Message: msg,
		Line:    tok.Line,
		Column:  tok.Column,
		Context: GenerateErrorContext(p.source, tok.Line, tok.Column),
		AtEOF:   tok.Type == token.EOF,
	})
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
