// Package ast defines the syntax tree produced by the parser.
// Nodes are built once and treated as read-only by the interpreter.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/zurustar/bangla/pkg/compiler/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// String re-prints the program one statement per line. The output parses
// back into an equivalent program.
func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Identifier
type Identifier struct {
	Token token.Token // token.IDENT
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral holds every numeric literal; there is a single numeric kind.
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) String() string       { return strconv.FormatFloat(nl.Value, 'f', -1, 64) }

// StringLiteral
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return Quote(sl.Value) }

// Quote renders s as a double-quoted literal the lexer reads back unchanged.
func Quote(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out.WriteByte('\\')
		}
		out.WriteByte(s[i])
	}
	out.WriteByte('"')
	return out.String()
}

// BooleanLiteral: sotti / mittha
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

// NullLiteral: khali
type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "khali" }

// ArrayLiteral: [a, b, c]
type ArrayLiteral struct {
	Token    token.Token // token.LBRACKET
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

// MapLiteral: { key: value, ... }. Pairs keep their source order.
type MapLiteral struct {
	Token token.Token // token.LBRACE
	Pairs []MapPair
}

// MapPair is one entry of a map literal. An identifier key names a string
// key; any other key expression is evaluated.
type MapPair struct {
	Key   Expression
	Value Expression
}

func (ml *MapLiteral) expressionNode()      {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Literal }
func (ml *MapLiteral) String() string {
	pairs := make([]string, 0, len(ml.Pairs))
	for _, pair := range ml.Pairs {
		pairs = append(pairs, pair.Key.String()+": "+pair.Value.String())
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// PrefixExpression: -x, !x, na x
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	if pe.Token.Type == token.NOT {
		return "(na " + pe.Right.String() + ")"
	}
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression: left op right. Operator holds the source spelling
// ("+", "==", "ebong", ...).
type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// IndexExpression: left[index]
type IndexExpression struct {
	Token token.Token // token.LBRACKET
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// MemberExpression: object.property
type MemberExpression struct {
	Token    token.Token // token.DOT
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Property.String()
}

// CallExpression: function(arguments)
type CallExpression struct {
	Token     token.Token // token.LPAREN
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

// AssignmentExpression: target = value, or a compound form such as target += value.
// Target is an *Identifier, *IndexExpression or *MemberExpression.
type AssignmentExpression struct {
	Token    token.Token // the assignment operator
	Target   Expression
	Operator string
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return "(" + ae.Target.String() + " " + ae.Operator + " " + ae.Value.String() + ")"
}

// BinaryOperator returns the arithmetic operator a compound assignment applies,
// or "" for plain assignment.
func (ae *AssignmentExpression) BinaryOperator() string {
	if ae.Operator == "=" {
		return ""
	}
	return strings.TrimSuffix(ae.Operator, "=")
}

// IfExpression: jodi (condition) { ... } nahole { ... }
type IfExpression struct {
	Token       token.Token // token.IF
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	out.WriteString("jodi (")
	out.WriteString(ie.Condition.String())
	out.WriteString(") ")
	out.WriteString(ie.Consequence.String())
	if ie.Alternative != nil {
		out.WriteString(" nahole ")
		out.WriteString(ie.Alternative.String())
	}
	return out.String()
}

// FunctionLiteral: kaj(params) { body }. Name is set for declarations and methods.
type FunctionLiteral struct {
	Token      token.Token // token.FUNCTION
	Name       string
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	return "kaj(" + fl.ParameterList() + ") " + fl.Body.String()
}

// ParameterList returns the comma separated parameter names.
func (fl *FunctionLiteral) ParameterList() string {
	params := make([]string, 0, len(fl.Parameters))
	for _, p := range fl.Parameters {
		params = append(params, p.String())
	}
	return strings.Join(params, ", ")
}

// ClassLiteral: sreni Name { shuru(...) {...} method(...) {...} }
// A later method with the same name replaces an earlier one.
type ClassLiteral struct {
	Token       token.Token // token.CLASS
	Name        string
	Constructor *FunctionLiteral
	Methods     map[string]*FunctionLiteral
	MethodOrder []string
}

func (cl *ClassLiteral) expressionNode()      {}
func (cl *ClassLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *ClassLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("sreni ")
	if cl.Name != "" {
		out.WriteString(cl.Name)
		out.WriteString(" ")
	}
	out.WriteString("{ ")
	if cl.Constructor != nil {
		out.WriteString("shuru(" + cl.Constructor.ParameterList() + ") " + cl.Constructor.Body.String() + " ")
	}
	for _, name := range cl.MethodOrder {
		m := cl.Methods[name]
		out.WriteString(name + "(" + m.ParameterList() + ") " + m.Body.String() + " ")
	}
	out.WriteString("}")
	return out.String()
}

// NewExpression: notun Class(args)
type NewExpression struct {
	Token     token.Token // token.NEW
	Class     Expression
	Arguments []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) String() string {
	return "notun " + ne.Class.String() + "(" + joinExpressions(ne.Arguments) + ")"
}

// ThisExpression: ei
type ThisExpression struct {
	Token token.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "ei" }

// BlockStatement: { statements }
type BlockStatement struct {
	Token      token.Token // token.LBRACE
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// LetStatement: dhoro name = value;
type LetStatement struct {
	Token token.Token // token.LET
	Name  *Identifier
	Value Expression // nil for a bare declaration
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) String() string {
	if ls.Value == nil {
		return "dhoro " + ls.Name.String() + ";"
	}
	return "dhoro " + ls.Name.String() + " = " + ls.Value.String() + ";"
}

// ReturnStatement: ferao value;
type ReturnStatement struct {
	Token       token.Token // token.RETURN
	ReturnValue Expression  // nil returns khali
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "ferao;"
	}
	return "ferao " + rs.ReturnValue.String() + ";"
}

// ExpressionStatement
type ExpressionStatement struct {
	Token      token.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	switch e := es.Expression.(type) {
	case nil:
		return ";"
	case *MapLiteral:
		// a leading brace would read back as a block
		return "(" + e.String() + ");"
	default:
		return e.String() + ";"
	}
}

// WhileStatement: jotokkhon (condition) { body }
type WhileStatement struct {
	Token     token.Token // token.WHILE
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) String() string {
	return "jotokkhon (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement: ghuriye (init; condition; update) { body }. Any of the three
// header parts may be nil.
type ForStatement struct {
	Token     token.Token // token.FOR
	Init      Statement
	Condition Expression
	Update    Expression
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("ghuriye (")
	if fs.Init != nil {
		out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Update != nil {
		out.WriteString(fs.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// BreakStatement: thamo;
type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) String() string       { return "thamo;" }

// ContinueStatement: chharo;
type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) String() string       { return "chharo;" }

// TryStatement: chesta { } dhoro_bhul (e) { } shesh { }
// At least one of CatchBlock or FinallyBlock is present.
type TryStatement struct {
	Token        token.Token // token.TRY
	Block        *BlockStatement
	CatchParam   *Identifier
	CatchBlock   *BlockStatement
	FinallyBlock *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) String() string {
	var out bytes.Buffer
	out.WriteString("chesta ")
	out.WriteString(ts.Block.String())
	if ts.CatchBlock != nil {
		out.WriteString(" dhoro_bhul (")
		if ts.CatchParam != nil {
			out.WriteString(ts.CatchParam.String())
		}
		out.WriteString(") ")
		out.WriteString(ts.CatchBlock.String())
	}
	if ts.FinallyBlock != nil {
		out.WriteString(" shesh ")
		out.WriteString(ts.FinallyBlock.String())
	}
	return out.String()
}

// ThrowStatement: felo value;
type ThrowStatement struct {
	Token token.Token // token.THROW
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) String() string       { return "felo " + ts.Value.String() + ";" }

// ImportStatement: ano "path" hisabe name;
type ImportStatement struct {
	Token token.Token // token.IMPORT
	Path  string
	Alias *Identifier
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string {
	if is.Alias == nil {
		return "ano " + Quote(is.Path) + ";"
	}
	return "ano " + Quote(is.Path) + " hisabe " + is.Alias.String() + ";"
}

// ExportStatement: pathao <declaration>
type ExportStatement struct {
	Token     token.Token // token.EXPORT
	Statement Statement
}

func (es *ExportStatement) statementNode()       {}
func (es *ExportStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExportStatement) String() string       { return "pathao " + es.Statement.String() }

// FunctionDeclaration: kaj name(params) { body }
type FunctionDeclaration struct {
	Token    token.Token // token.FUNCTION
	Name     *Identifier
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) String() string {
	return "kaj " + fd.Name.String() + "(" + fd.Function.ParameterList() + ") " + fd.Function.Body.String()
}

// ClassDeclaration: sreni Name { ... }
type ClassDeclaration struct {
	Token token.Token // token.CLASS
	Name  *Identifier
	Class *ClassLiteral
}

func (cd *ClassDeclaration) statementNode()       {}
func (cd *ClassDeclaration) TokenLiteral() string { return cd.Token.Literal }
func (cd *ClassDeclaration) String() string       { return cd.Class.String() }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
