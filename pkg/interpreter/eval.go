package interpreter

import (
	"errors"

	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/object"
)

// selfName is the name the current instance is bound to inside methods.
const selfName = "ei"

// eval evaluates one node. Control flow (ferao, thamo, chharo) travels as
// ReturnValue, Break and Continue results; failures travel as *object.Error
// in the error result.
func (in *Interpreter) eval(node ast.Node, env *object.Environment) (object.Object, error) {
	val, err := in.dispatch(node, env)
	if err != nil {
		var rtErr *object.Error
		if errors.As(err, &rtErr) {
			rtErr.WithLine(nodeLine(node))
		}
		return nil, err
	}
	return val, nil
}

func (in *Interpreter) dispatch(node ast.Node, env *object.Environment) (object.Object, error) {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return in.evalProgram(node, env)
	case *ast.BlockStatement:
		return in.evalBlockStatement(node, env)
	case *ast.ExpressionStatement:
		return in.eval(node.Expression, env)
	case *ast.LetStatement:
		return in.evalLetStatement(node, env)
	case *ast.ReturnStatement:
		return in.evalReturnStatement(node, env)
	case *ast.WhileStatement:
		return in.evalWhileStatement(node, env)
	case *ast.ForStatement:
		return in.evalForStatement(node, env)
	case *ast.BreakStatement:
		return object.BREAK, nil
	case *ast.ContinueStatement:
		return object.CONTINUE, nil
	case *ast.TryStatement:
		return in.evalTryStatement(node, env)
	case *ast.ThrowStatement:
		return in.evalThrowStatement(node, env)
	case *ast.ImportStatement:
		// module resolution belongs to the host; imports have no effect here
		in.log.Debug("import ignored", "path", node.Path)
		return object.NULL, nil
	case *ast.ExportStatement:
		return in.eval(node.Statement, env)
	case *ast.FunctionDeclaration:
		env.Declare(node.Name.Value, in.newFunction(node.Function, env))
		return object.NULL, nil
	case *ast.ClassDeclaration:
		env.Declare(node.Name.Value, in.newClass(node.Class, env))
		return object.NULL, nil

	// Expressions
	case *ast.Identifier:
		return in.evalIdentifier(node, env)
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}, nil
	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil
	case *ast.BooleanLiteral:
		return object.NativeBool(node.Value), nil
	case *ast.NullLiteral:
		return object.NULL, nil
	case *ast.ArrayLiteral:
		elements, err := in.evalExpressions(node.Elements, env)
		if err != nil {
			return nil, err
		}
		return &object.Array{Elements: elements}, nil
	case *ast.MapLiteral:
		return in.evalMapLiteral(node, env)
	case *ast.PrefixExpression:
		right, err := in.eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		// both operands are always evaluated, ebong and ba included
		left, err := in.eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		return evalInfixExpression(node.Operator, left, right)
	case *ast.IndexExpression:
		return in.evalIndexExpression(node, env)
	case *ast.MemberExpression:
		return in.evalMemberExpression(node, env)
	case *ast.CallExpression:
		return in.evalCallExpression(node, env)
	case *ast.AssignmentExpression:
		return in.evalAssignmentExpression(node, env)
	case *ast.IfExpression:
		return in.evalIfExpression(node, env)
	case *ast.FunctionLiteral:
		return in.newFunction(node, env), nil
	case *ast.ClassLiteral:
		return in.newClass(node, env), nil
	case *ast.NewExpression:
		return in.evalNewExpression(node, env)
	case *ast.ThisExpression:
		if self, ok := env.Get(selfName); ok {
			return self, nil
		}
		return nil, object.NewUnknownIdentifierError(selfName)
	}

	return nil, object.NewHostError("cannot evaluate %T", node)
}

func (in *Interpreter) evalProgram(program *ast.Program, env *object.Environment) (object.Object, error) {
	var result object.Object = object.NULL

	for _, statement := range program.Statements {
		val, err := in.eval(statement, env)
		if err != nil {
			return nil, err
		}

		switch val := val.(type) {
		case *object.ReturnValue:
			return val.Value, nil
		case *object.Break, *object.Continue:
			return nil, object.NewTypeError("%s outside of a loop", val.Inspect()).WithLine(nodeLine(statement))
		}
		result = val
	}

	return result, nil
}

// evalBlockStatement runs statements in env; blocks do not open a scope.
// The first control-flow signal stops the block and is passed up.
func (in *Interpreter) evalBlockStatement(block *ast.BlockStatement, env *object.Environment) (object.Object, error) {
	var result object.Object = object.NULL

	for _, statement := range block.Statements {
		val, err := in.eval(statement, env)
		if err != nil {
			return nil, err
		}

		switch val.(type) {
		case *object.ReturnValue, *object.Break, *object.Continue:
			return val, nil
		}
		result = val
	}

	return result, nil
}

func (in *Interpreter) evalLetStatement(stmt *ast.LetStatement, env *object.Environment) (object.Object, error) {
	var val object.Object = object.NULL
	if stmt.Value != nil {
		v, err := in.eval(stmt.Value, env)
		if err != nil {
			return nil, err
		}
		val = v
	}

	env.Declare(stmt.Name.Value, val)
	return object.NULL, nil
}

func (in *Interpreter) evalReturnStatement(stmt *ast.ReturnStatement, env *object.Environment) (object.Object, error) {
	if stmt.ReturnValue == nil {
		return &object.ReturnValue{Value: object.NULL}, nil
	}

	val, err := in.eval(stmt.ReturnValue, env)
	if err != nil {
		return nil, err
	}
	return &object.ReturnValue{Value: val}, nil
}

// loopStep is called before each loop iteration.
func (in *Interpreter) loopStep(iterations *int) error {
	*iterations++
	if in.maxIterations > 0 && *iterations > in.maxIterations {
		return object.NewLoopLimitError(in.maxIterations)
	}
	return in.checkInterrupt()
}

func (in *Interpreter) evalWhileStatement(stmt *ast.WhileStatement, env *object.Environment) (object.Object, error) {
	iterations := 0

	for {
		cond, err := in.eval(stmt.Condition, env)
		if err != nil {
			return nil, err
		}
		if !object.IsTruthy(cond) {
			break
		}

		if err := in.loopStep(&iterations); err != nil {
			return nil, err
		}

		val, err := in.evalBlockStatement(stmt.Body, env)
		if err != nil {
			return nil, err
		}
		if _, ok := val.(*object.Break); ok {
			break
		}
		if _, ok := val.(*object.ReturnValue); ok {
			return val, nil
		}
	}

	return object.NULL, nil
}

// evalForStatement runs a ghuriye loop. The header bindings live in one
// scope shared by all iterations.
func (in *Interpreter) evalForStatement(stmt *ast.ForStatement, env *object.Environment) (object.Object, error) {
	loopEnv := object.NewEnclosedEnvironment(env)
	iterations := 0

	if stmt.Init != nil {
		if _, err := in.eval(stmt.Init, loopEnv); err != nil {
			return nil, err
		}
	}

	for {
		if stmt.Condition != nil {
			cond, err := in.eval(stmt.Condition, loopEnv)
			if err != nil {
				return nil, err
			}
			if !object.IsTruthy(cond) {
				break
			}
		}

		if err := in.loopStep(&iterations); err != nil {
			return nil, err
		}

		val, err := in.evalBlockStatement(stmt.Body, loopEnv)
		if err != nil {
			return nil, err
		}
		if _, ok := val.(*object.Break); ok {
			break
		}
		if _, ok := val.(*object.ReturnValue); ok {
			return val, nil
		}

		// chharo falls through to the update
		if stmt.Update != nil {
			if _, err := in.eval(stmt.Update, loopEnv); err != nil {
				return nil, err
			}
		}
	}

	return object.NULL, nil
}

// evalTryStatement runs chesta/dhoro_bhul/shesh. A caught error yields
// khali; the catch parameter holds the error's message. shesh runs in the
// enclosing scope after either path, and its own error or control signal
// replaces the outcome. Sandbox errors (loop limit, interrupt) skip both
// handlers.
func (in *Interpreter) evalTryStatement(stmt *ast.TryStatement, env *object.Environment) (object.Object, error) {
	result, err := in.evalBlockStatement(stmt.Block, env)

	if err != nil {
		rtErr := toError(err)
		if !rtErr.Catchable() {
			return nil, rtErr
		}

		if stmt.CatchBlock != nil {
			catchEnv := object.NewEnclosedEnvironment(env)
			if stmt.CatchParam != nil {
				catchEnv.Declare(stmt.CatchParam.Value, &object.String{Value: rtErr.Message})
			}
			in.log.Debug("error caught", "kind", rtErr.Kind, "message", rtErr.Message)

			val, catchErr := in.evalBlockStatement(stmt.CatchBlock, catchEnv)
			switch {
			case catchErr != nil:
				err = catchErr
			case isSignal(val):
				result, err = val, nil
			default:
				result, err = object.NULL, nil
			}
		}
	}

	if stmt.FinallyBlock != nil {
		if err != nil && !toError(err).Catchable() {
			return nil, err
		}
		val, finallyErr := in.evalBlockStatement(stmt.FinallyBlock, env)
		if finallyErr != nil {
			return nil, finallyErr
		}
		if isSignal(val) {
			return val, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (in *Interpreter) evalThrowStatement(stmt *ast.ThrowStatement, env *object.Environment) (object.Object, error) {
	val, err := in.eval(stmt.Value, env)
	if err != nil {
		return nil, err
	}
	return nil, object.NewThrownError(val).WithLine(stmt.Token.Line)
}

// isSignal reports whether obj is a control-flow signal.
func isSignal(obj object.Object) bool {
	switch obj.(type) {
	case *object.ReturnValue, *object.Break, *object.Continue:
		return true
	}
	return false
}

func (in *Interpreter) evalExpressions(exps []ast.Expression, env *object.Environment) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))

	for _, e := range exps {
		evaluated, err := in.eval(e, env)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}

	return result, nil
}

// nodeLine returns the source line a node starts on.
func nodeLine(node ast.Node) int {
	switch n := node.(type) {
	case *ast.Identifier:
		return n.Token.Line
	case *ast.NumberLiteral:
		return n.Token.Line
	case *ast.StringLiteral:
		return n.Token.Line
	case *ast.BooleanLiteral:
		return n.Token.Line
	case *ast.NullLiteral:
		return n.Token.Line
	case *ast.ArrayLiteral:
		return n.Token.Line
	case *ast.MapLiteral:
		return n.Token.Line
	case *ast.PrefixExpression:
		return n.Token.Line
	case *ast.InfixExpression:
		return n.Token.Line
	case *ast.IndexExpression:
		return n.Token.Line
	case *ast.MemberExpression:
		return n.Token.Line
	case *ast.CallExpression:
		return n.Token.Line
	case *ast.AssignmentExpression:
		return n.Token.Line
	case *ast.IfExpression:
		return n.Token.Line
	case *ast.FunctionLiteral:
		return n.Token.Line
	case *ast.ClassLiteral:
		return n.Token.Line
	case *ast.NewExpression:
		return n.Token.Line
	case *ast.ThisExpression:
		return n.Token.Line
	case *ast.BlockStatement:
		return n.Token.Line
	case *ast.LetStatement:
		return n.Token.Line
	case *ast.ReturnStatement:
		return n.Token.Line
	case *ast.ExpressionStatement:
		return n.Token.Line
	case *ast.WhileStatement:
		return n.Token.Line
	case *ast.ForStatement:
		return n.Token.Line
	case *ast.BreakStatement:
		return n.Token.Line
	case *ast.ContinueStatement:
		return n.Token.Line
	case *ast.TryStatement:
		return n.Token.Line
	case *ast.ThrowStatement:
		return n.Token.Line
	case *ast.ImportStatement:
		return n.Token.Line
	case *ast.ExportStatement:
		return n.Token.Line
	case *ast.FunctionDeclaration:
		return n.Token.Line
	case *ast.ClassDeclaration:
		return n.Token.Line
	}
	return 0
}
