package interpreter

import (
	"unicode/utf8"

	"github.com/zurustar/bangla/pkg/compiler/ast"
	"github.com/zurustar/bangla/pkg/object"
)

// evalIdentifier resolves a name through the scope chain, then the builtins.
func (in *Interpreter) evalIdentifier(node *ast.Identifier, env *object.Environment) (object.Object, error) {
	if val, ok := env.Get(node.Value); ok {
		return val, nil
	}
	if builtin, ok := in.builtins[node.Value]; ok {
		return builtin, nil
	}
	return nil, object.NewUnknownIdentifierError(node.Value)
}

func (in *Interpreter) evalMapLiteral(node *ast.MapLiteral, env *object.Environment) (object.Object, error) {
	m := object.NewMap()

	for _, pair := range node.Pairs {
		key, err := in.eval(pair.Key, env)
		if err != nil {
			return nil, err
		}
		str, ok := key.(*object.String)
		if !ok {
			return nil, object.NewTypeError("map key must be STRING, got %s", key.Type())
		}

		value, err := in.eval(pair.Value, env)
		if err != nil {
			return nil, err
		}
		m.Set(str.Value, value)
	}

	return m, nil
}

func (in *Interpreter) evalIfExpression(ie *ast.IfExpression, env *object.Environment) (object.Object, error) {
	condition, err := in.eval(ie.Condition, env)
	if err != nil {
		return nil, err
	}

	if object.IsTruthy(condition) {
		return in.evalBlockStatement(ie.Consequence, env)
	} else if ie.Alternative != nil {
		return in.evalBlockStatement(ie.Alternative, env)
	}
	return object.NULL, nil
}

func (in *Interpreter) evalIndexExpression(node *ast.IndexExpression, env *object.Environment) (object.Object, error) {
	left, err := in.eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	index, err := in.eval(node.Index, env)
	if err != nil {
		return nil, err
	}
	return in.getIndex(left, index)
}

func (in *Interpreter) getIndex(left, index object.Object) (object.Object, error) {
	switch left := left.(type) {
	case *object.Array:
		i, err := arrayIndex(index, len(left.Elements))
		if err != nil {
			return nil, err
		}
		return left.Elements[i], nil
	case *object.String:
		runes := []rune(left.Value)
		i, err := arrayIndex(index, len(runes))
		if err != nil {
			return nil, err
		}
		return &object.String{Value: string(runes[i])}, nil
	case *object.Map:
		key, ok := index.(*object.String)
		if !ok {
			return nil, object.NewTypeError("map key must be STRING, got %s", index.Type())
		}
		if val, ok := left.Get(key.Value); ok {
			return val, nil
		}
		return object.NULL, nil
	case *object.Instance:
		key, ok := index.(*object.String)
		if !ok {
			return nil, object.NewTypeError("property name must be STRING, got %s", index.Type())
		}
		return in.instanceMember(left, key.Value), nil
	}

	return nil, object.NewTypeError("index operator not supported: %s", left.Type())
}

// arrayIndex checks that index is an integer inside [0, length).
func arrayIndex(index object.Object, length int) (int, error) {
	num, ok := index.(*object.Number)
	if !ok {
		return 0, object.NewTypeError("index must be NUMBER, got %s", index.Type())
	}
	if !object.IsInteger(num.Value) {
		return 0, object.NewTypeError("index must be an integer, got %s", num.Inspect())
	}
	if num.Value < 0 || num.Value >= float64(length) {
		return 0, object.NewOutOfBoundsError(num.Value, length)
	}
	return int(num.Value), nil
}

func (in *Interpreter) evalMemberExpression(node *ast.MemberExpression, env *object.Environment) (object.Object, error) {
	obj, err := in.eval(node.Object, env)
	if err != nil {
		return nil, err
	}
	return in.getMember(obj, node.Property.Value)
}

func (in *Interpreter) getMember(obj object.Object, name string) (object.Object, error) {
	switch obj := obj.(type) {
	case *object.Instance:
		return in.instanceMember(obj, name), nil
	case *object.Map:
		if val, ok := obj.Get(name); ok {
			return val, nil
		}
		return object.NULL, nil
	}

	return nil, object.NewTypeError("cannot read property %s of %s", name, obj.Type())
}

// instanceMember looks in the instance's own properties, then its class's
// methods. Every method access returns a new function bound to inst.
func (in *Interpreter) instanceMember(inst *object.Instance, name string) object.Object {
	if val, ok := inst.Props.Get(name); ok {
		return val
	}
	if method, ok := inst.Class.Method(name); ok {
		return bindMethod(inst, method)
	}
	return object.NULL
}

func bindMethod(inst *object.Instance, method *object.Function) *object.Function {
	env := object.NewEnclosedEnvironment(method.Env)
	env.Declare(selfName, inst)
	return &object.Function{
		Name:       inst.Class.Name + "." + method.Name,
		Parameters: method.Parameters,
		Body:       method.Body,
		Env:        env,
	}
}

func (in *Interpreter) evalCallExpression(node *ast.CallExpression, env *object.Environment) (object.Object, error) {
	function, err := in.eval(node.Function, env)
	if err != nil {
		return nil, err
	}

	args, err := in.evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}

	return in.applyFunction(function, args)
}

// applyFunction calls fn with args, from a call expression or a builtin.
func (in *Interpreter) applyFunction(fn object.Object, args []object.Object) (object.Object, error) {
	if err := in.checkInterrupt(); err != nil {
		return nil, err
	}

	switch fn := fn.(type) {
	case *object.Function:
		return in.callFunction(fn, args)

	case *object.Builtin:
		in.log.Debug("builtin call", "name", fn.Name, "args", len(args))
		result, err := fn.Fn(in, args...)
		if err != nil {
			return nil, err
		}
		if rtErr, ok := result.(*object.Error); ok {
			return nil, rtErr
		}
		if result == nil {
			return object.NULL, nil
		}
		return result, nil

	case *object.Class:
		return nil, object.NewError(object.ErrNotCallable, "class %s must be created with notun", fn.Name)
	}

	return nil, object.NewNotCallableError(fn)
}

// callFunction runs a user function in a new scope chained to the scope it
// was defined in. Missing arguments are khali; extra ones are ignored.
func (in *Interpreter) callFunction(fn *object.Function, args []object.Object) (object.Object, error) {
	if in.frames.Len() >= in.maxDepth {
		return nil, object.NewStackOverflowError(in.maxDepth)
	}

	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	in.frames.PushBack(&frame{name: name})
	defer in.frames.PopBack()

	env := object.NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Parameters {
		if i < len(args) {
			env.Declare(param.Value, args[i])
		} else {
			env.Declare(param.Value, object.NULL)
		}
	}

	result, err := in.evalBlockStatement(fn.Body, env)
	if err != nil {
		rtErr := toError(err)
		if rtErr.Trace == nil {
			rtErr.Trace = in.callTrace()
		}
		return nil, rtErr
	}

	switch result := result.(type) {
	case *object.ReturnValue:
		return result.Value, nil
	case *object.Break, *object.Continue:
		return nil, object.NewTypeError("%s outside of a loop in %s", result.Inspect(), name)
	}
	return result, nil
}

func (in *Interpreter) evalNewExpression(node *ast.NewExpression, env *object.Environment) (object.Object, error) {
	target, err := in.eval(node.Class, env)
	if err != nil {
		return nil, err
	}
	class, ok := target.(*object.Class)
	if !ok {
		return nil, object.NewError(object.ErrNotCallable, "notun requires a class, got %s", target.Type())
	}

	args, err := in.evalExpressions(node.Arguments, env)
	if err != nil {
		return nil, err
	}

	return in.instantiate(class, args)
}

// instantiate creates an instance and runs the constructor with ei bound to
// it. The constructor's own result is discarded.
func (in *Interpreter) instantiate(class *object.Class, args []object.Object) (object.Object, error) {
	inst := object.NewInstance(class)

	if class.Constructor != nil {
		if _, err := in.callFunction(bindMethod(inst, class.Constructor), args); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func (in *Interpreter) newFunction(fl *ast.FunctionLiteral, env *object.Environment) *object.Function {
	return &object.Function{
		Name:       fl.Name,
		Parameters: fl.Parameters,
		Body:       fl.Body,
		Env:        env,
	}
}

func (in *Interpreter) newClass(cl *ast.ClassLiteral, env *object.Environment) *object.Class {
	class := &object.Class{
		Name:    cl.Name,
		Methods: make(map[string]*object.Function, len(cl.Methods)),
	}
	if class.Name == "" {
		class.Name = "<anonymous>"
	}
	if cl.Constructor != nil {
		class.Constructor = in.newFunction(cl.Constructor, env)
	}
	for name, method := range cl.Methods {
		class.Methods[name] = in.newFunction(method, env)
	}
	return class
}

// place is an assignment target whose container and key have been
// evaluated, so a compound operator reads and writes the same slot.
type place struct {
	ident     *ast.Identifier
	container object.Object
	index     object.Object
	property  string
}

func (in *Interpreter) resolvePlace(target ast.Expression, env *object.Environment) (*place, error) {
	switch target := target.(type) {
	case *ast.Identifier:
		return &place{ident: target}, nil

	case *ast.IndexExpression:
		left, err := in.eval(target.Left, env)
		if err != nil {
			return nil, err
		}
		index, err := in.eval(target.Index, env)
		if err != nil {
			return nil, err
		}
		return &place{container: left, index: index}, nil

	case *ast.MemberExpression:
		obj, err := in.eval(target.Object, env)
		if err != nil {
			return nil, err
		}
		return &place{container: obj, property: target.Property.Value}, nil
	}

	return nil, object.NewTypeError("invalid assignment target %s", target.String())
}

func (in *Interpreter) readPlace(p *place, env *object.Environment) (object.Object, error) {
	switch {
	case p.ident != nil:
		return in.evalIdentifier(p.ident, env)
	case p.index != nil:
		return in.getIndex(p.container, p.index)
	default:
		return in.getMember(p.container, p.property)
	}
}

func (in *Interpreter) writePlace(p *place, value object.Object, env *object.Environment) error {
	switch {
	case p.ident != nil:
		env.Assign(p.ident.Value, value)
		return nil
	case p.index != nil:
		return setIndex(p.container, p.index, value)
	}

	switch obj := p.container.(type) {
	case *object.Map:
		obj.Set(p.property, value)
		return nil
	case *object.Instance:
		obj.Props.Set(p.property, value)
		return nil
	}
	return object.NewTypeError("cannot set property %s of %s", p.property, p.container.Type())
}

// evalAssignmentExpression assigns to an identifier, index or member
// target. A compound operator evaluates the target once, reads it, applies
// the operator, then writes back to the same slot.
func (in *Interpreter) evalAssignmentExpression(node *ast.AssignmentExpression, env *object.Environment) (object.Object, error) {
	if op := node.BinaryOperator(); op != "" {
		p, err := in.resolvePlace(node.Target, env)
		if err != nil {
			return nil, err
		}
		current, err := in.readPlace(p, env)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		value, err := evalInfixExpression(op, current, right)
		if err != nil {
			return nil, err
		}
		if err := in.writePlace(p, value, env); err != nil {
			return nil, err
		}
		return value, nil
	}

	value, err := in.eval(node.Value, env)
	if err != nil {
		return nil, err
	}
	p, err := in.resolvePlace(node.Target, env)
	if err != nil {
		return nil, err
	}
	if err := in.writePlace(p, value, env); err != nil {
		return nil, err
	}
	return value, nil
}

func setIndex(left, index, value object.Object) error {
	switch left := left.(type) {
	case *object.Array:
		i, err := arrayIndex(index, len(left.Elements))
		if err != nil {
			return err
		}
		left.Elements[i] = value
		return nil
	case *object.Map:
		key, ok := index.(*object.String)
		if !ok {
			return object.NewTypeError("map key must be STRING, got %s", index.Type())
		}
		left.Set(key.Value, value)
		return nil
	case *object.Instance:
		key, ok := index.(*object.String)
		if !ok {
			return object.NewTypeError("property name must be STRING, got %s", index.Type())
		}
		left.Props.Set(key.Value, value)
		return nil
	case *object.String:
		return object.NewTypeError("strings are immutable")
	}
	return object.NewTypeError("index assignment not supported: %s", left.Type())
}

// runeLen is the length of s in characters.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
