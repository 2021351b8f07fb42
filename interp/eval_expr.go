package interp

import (
	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

func (in *Interpreter) evalExpr(expr ast.Expr) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return runtime.IntegerValue(e.Value), nil
	case *ast.FloatLiteral:
		return runtime.FloatValue(e.Value), nil
	case *ast.StringLiteral:
		return runtime.StringValue(e.Value), nil
	case *ast.BoolLiteral:
		return runtime.BoolValue(e.Value), nil
	case *ast.NullLiteral:
		return runtime.NullValue(), nil

	case *ast.ArrayLiteral:
		elems := make([]runtime.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := in.evalExpr(el)
			if err != nil {
				return runtime.NullValue(), err
			}
			elems[i] = v.Copy()
		}
		return runtime.ArrayValue(&runtime.Array{Elems: elems}), nil

	case *ast.MapLiteral:
		entries := make(map[string]runtime.Value, len(e.Entries))
		for _, entry := range e.Entries {
			v, err := in.evalExpr(entry.Value)
			if err != nil {
				return runtime.NullValue(), err
			}
			entries[entry.Key] = v.Copy()
		}
		return runtime.MapValue(&runtime.Map{Entries: entries}), nil

	case *ast.Variable:
		return in.resolveVariable(e.Name, e.Pos())

	case *ast.Me:
		if in.self == nil {
			return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
				"'me' is only valid inside methods").At(e.Pos())
		}
		return runtime.InstanceValue(in.self), nil

	case *ast.FieldAccess:
		return in.evalFieldAccess(e)

	case *ast.MethodCall:
		return in.evalMethodCall(e)

	case *ast.New:
		return in.newBox(e)

	case *ast.FromCall:
		return in.evalFromCall(e)

	case *ast.Binary:
		return in.evalBinary(e)

	case *ast.Await:
		v, err := in.evalExpr(e.Target)
		if err != nil {
			return runtime.NullValue(), err
		}
		if v.Type == runtime.TypeFuture {
			return v.FutureVal.Wait()
		}
		return v, nil
	}
	return runtime.NullValue(), runtime.NewError(runtime.RuntimeFailure,
		"unhandled expression %T", expr).At(expr.Pos())
}

// evalFieldTarget evaluates the receiver of a field access. A bare name that
// denotes a singleton routes through ensure-initialized first.
func (in *Interpreter) evalFieldTarget(e *ast.FieldAccess) (runtime.Value, error) {
	if v, ok := e.Target.(*ast.Variable); ok {
		if _, isStatic := in.sess.Classes.LookupStatic(v.Name); isStatic {
			if _, shadowed := in.locals[v.Name]; !shadowed {
				inst, err := in.ensureStatic(v.Name, e.Pos())
				if err != nil {
					return runtime.NullValue(), err
				}
				return runtime.InstanceValue(inst), nil
			}
		}
	}
	return in.evalExpr(e.Target)
}

func (in *Interpreter) evalFieldAccess(e *ast.FieldAccess) (runtime.Value, error) {
	recv, err := in.evalFieldTarget(e)
	if err != nil {
		return runtime.NullValue(), err
	}
	return in.readField(recv, e)
}

// readField reads e.Field from an already evaluated receiver, applying
// visibility and weak-read semantics.
func (in *Interpreter) readField(recv runtime.Value, e *ast.FieldAccess) (runtime.Value, error) {
	if recv.Type != runtime.TypeInstance {
		return runtime.NullValue(), runtime.NewError(runtime.TypeError,
			"cannot access field '%s' on %s", e.Field, recv.TypeName()).At(e.Pos())
	}
	inst := recv.InstanceVal
	if err := in.checkFieldVisibility(inst, e.Field, e.Pos()); err != nil {
		return runtime.NullValue(), err
	}
	v, err := inst.GetField(e.Field)
	if err != nil {
		if re, ok := runtime.AsError(err); ok {
			re.At(e.Pos())
		}
		return runtime.NullValue(), err
	}
	return v, nil
}

// checkFieldVisibility enforces the public/private partition for external
// access. Access from within the instance's own methods (me is the same
// instance) bypasses the check.
func (in *Interpreter) checkFieldVisibility(inst *runtime.Instance, field string, pos ast.Position) error {
	if in.self != nil && in.self.Equals(inst) {
		return nil
	}
	if !inst.IsPublic(field) {
		return runtime.NewError(runtime.InvalidOperation,
			"field '%s' of %s is private", field, inst.ClassName).At(pos)
	}
	return nil
}

func (in *Interpreter) evalBinary(e *ast.Binary) (runtime.Value, error) {
	// Short-circuit logic first.
	if e.Op == ast.OpAnd || e.Op == ast.OpOr {
		left, err := in.evalExpr(e.Left)
		if err != nil {
			return runtime.NullValue(), err
		}
		if e.Op == ast.OpAnd && !left.IsTruthy() {
			return runtime.BoolValue(false), nil
		}
		if e.Op == ast.OpOr && left.IsTruthy() {
			return runtime.BoolValue(true), nil
		}
		right, err := in.evalExpr(e.Right)
		if err != nil {
			return runtime.NullValue(), err
		}
		return runtime.BoolValue(right.IsTruthy()), nil
	}

	left, err := in.evalExpr(e.Left)
	if err != nil {
		return runtime.NullValue(), err
	}
	right, err := in.evalExpr(e.Right)
	if err != nil {
		return runtime.NullValue(), err
	}

	switch e.Op {
	case ast.OpEq:
		return runtime.BoolValue(left.Equals(right)), nil
	case ast.OpNe:
		return runtime.BoolValue(!left.Equals(right)), nil
	}

	if e.Op == ast.OpAdd && (left.Type == runtime.TypeString || right.Type == runtime.TypeString) {
		return runtime.StringValue(left.AsString() + right.AsString()), nil
	}

	return numericOp(e.Op, left, right, e.Pos())
}

func numericOp(op ast.BinaryOp, left, right runtime.Value, pos ast.Position) (runtime.Value, error) {
	lInt := left.Type == runtime.TypeInteger
	rInt := right.Type == runtime.TypeInteger
	lNum := lInt || left.Type == runtime.TypeFloat
	rNum := rInt || right.Type == runtime.TypeFloat
	if !lNum || !rNum {
		if op == ast.OpLt || op == ast.OpLe || op == ast.OpGt || op == ast.OpGe {
			if left.Type == runtime.TypeString && right.Type == runtime.TypeString {
				return compareStrings(op, left.StringVal, right.StringVal), nil
			}
		}
		return runtime.NullValue(), runtime.NewError(runtime.TypeError,
			"operator %s not defined for %s and %s", op, left.TypeName(), right.TypeName()).At(pos)
	}

	if lInt && rInt {
		a, b := left.IntVal, right.IntVal
		switch op {
		case ast.OpAdd:
			return runtime.IntegerValue(a + b), nil
		case ast.OpSub:
			return runtime.IntegerValue(a - b), nil
		case ast.OpMul:
			return runtime.IntegerValue(a * b), nil
		case ast.OpDiv:
			if b == 0 {
				return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
					"division by zero").At(pos)
			}
			return runtime.IntegerValue(a / b), nil
		case ast.OpLt:
			return runtime.BoolValue(a < b), nil
		case ast.OpLe:
			return runtime.BoolValue(a <= b), nil
		case ast.OpGt:
			return runtime.BoolValue(a > b), nil
		case ast.OpGe:
			return runtime.BoolValue(a >= b), nil
		}
	}

	a := asF(left)
	b := asF(right)
	switch op {
	case ast.OpAdd:
		return runtime.FloatValue(a + b), nil
	case ast.OpSub:
		return runtime.FloatValue(a - b), nil
	case ast.OpMul:
		return runtime.FloatValue(a * b), nil
	case ast.OpDiv:
		if b == 0 {
			return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
				"division by zero").At(pos)
		}
		return runtime.FloatValue(a / b), nil
	case ast.OpLt:
		return runtime.BoolValue(a < b), nil
	case ast.OpLe:
		return runtime.BoolValue(a <= b), nil
	case ast.OpGt:
		return runtime.BoolValue(a > b), nil
	case ast.OpGe:
		return runtime.BoolValue(a >= b), nil
	}
	return runtime.NullValue(), runtime.NewError(runtime.RuntimeFailure,
		"unhandled operator %s", op).At(pos)
}

func compareStrings(op ast.BinaryOp, a, b string) runtime.Value {
	switch op {
	case ast.OpLt:
		return runtime.BoolValue(a < b)
	case ast.OpLe:
		return runtime.BoolValue(a <= b)
	case ast.OpGt:
		return runtime.BoolValue(a > b)
	default:
		return runtime.BoolValue(a >= b)
	}
}

func asF(v runtime.Value) float64 {
	if v.Type == runtime.TypeInteger {
		return float64(v.IntVal)
	}
	return v.FloatVal
}
