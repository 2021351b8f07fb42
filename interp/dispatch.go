package interp

import (
	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// evalMethodCall is the dispatcher's entry point. Resolution order for
// receiver.method(args), stopping at the first match:
//
//  1. a static function registered under Name.method
//  2. a standard-library namespace method under the same qualified name
//  3. a declared singleton: ensure-initialize, then its own method table
//  4. the evaluated receiver's runtime type: builtin fixed tables, or the
//     instance's own class table, then the implicit builtin-extends fallback
func (in *Interpreter) evalMethodCall(n *ast.MethodCall) (runtime.Value, error) {
	if v, ok := n.Target.(*ast.Variable); ok {
		if _, shadowed := in.locals[v.Name]; !shadowed {
			if fn, ok := in.sess.LookupStaticFunction(v.Name, n.Method); ok {
				return in.callStaticFunction(fn, n)
			}
			if fn, ok := lookupStdlib(v.Name, n.Method); ok {
				args, err := in.evalArgs(n.Args)
				if err != nil {
					return runtime.NullValue(), err
				}
				return fn(in, args)
			}
			if _, ok := in.sess.Classes.LookupStatic(v.Name); ok {
				inst, err := in.ensureStatic(v.Name, n.Pos())
				if err != nil {
					return runtime.NullValue(), err
				}
				args, err := in.evalArgs(n.Args)
				if err != nil {
					return runtime.NullValue(), err
				}
				return in.invokeOn(runtime.InstanceValue(inst), n.Method, args, n.Pos())
			}
			// A name that only denotes a function group has nothing to
			// dispatch on as a value; a miss inside the group is final.
			if in.sess.HasFunctionGroup(v.Name) && !in.sess.Global.HasField(v.Name) {
				return runtime.NullValue(), runtime.NewError(runtime.UndefinedFunction,
					"undefined static function %s.%s", v.Name, n.Method).At(n.Pos())
			}
		}
	}

	// fini through a weak field is rejected before anything runs: a weak
	// handle is non-owning and may not destroy its referent. The owner
	// expression is evaluated exactly once and reused for the field read,
	// so its side effects never duplicate.
	if n.Method == "fini" {
		if fa, ok := n.Target.(*ast.FieldAccess); ok {
			owner, err := in.evalFieldTarget(fa)
			if err != nil {
				return runtime.NullValue(), err
			}
			if owner.Type == runtime.TypeInstance && owner.InstanceVal.Decl != nil &&
				owner.InstanceVal.Decl.IsWeak(fa.Field) {
				return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
					"cannot finalize a non-owning reference ('%s' is weak)", fa.Field).At(n.Pos())
			}
			recv, err := in.readField(owner, fa)
			if err != nil {
				return runtime.NullValue(), err
			}
			args, err := in.evalArgs(n.Args)
			if err != nil {
				return runtime.NullValue(), err
			}
			return in.invokeOn(recv, n.Method, args, n.Pos())
		}
	}

	recv, err := in.evalExpr(n.Target)
	if err != nil {
		return runtime.NullValue(), err
	}
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return runtime.NullValue(), err
	}
	return in.invokeOn(recv, n.Method, args, n.Pos())
}

func (in *Interpreter) evalArgs(exprs []ast.Expr) ([]runtime.Value, error) {
	args := make([]runtime.Value, len(exprs))
	for i, e := range exprs {
		v, err := in.evalExpr(e)
		if err != nil {
			return nil, err
		}
		args[i] = v.Copy()
	}
	return args, nil
}

// invokeOn dispatches method on an evaluated receiver value.
func (in *Interpreter) invokeOn(recv runtime.Value, method string, args []runtime.Value, pos ast.Position) (runtime.Value, error) {
	switch recv.Type {
	case runtime.TypeInstance:
		return in.invokeOnInstance(recv.InstanceVal, method, args, pos)

	case runtime.TypeHandle:
		v, err := recv.HandleVal.Call(method, args)
		if err != nil {
			if re, ok := runtime.AsError(err); ok {
				re.At(pos)
			}
			return runtime.NullValue(), err
		}
		return v, nil

	case runtime.TypeFuture:
		switch method {
		case "get":
			if len(args) != 0 {
				return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
					"FutureBox.get expects 0 arguments, got %d", len(args)).At(pos)
			}
			return recv.FutureVal.Wait()
		case "ready":
			if len(args) != 0 {
				return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
					"FutureBox.ready expects 0 arguments, got %d", len(args)).At(pos)
			}
			return runtime.BoolValue(recv.FutureVal.Ready()), nil
		}
		return runtime.NullValue(), runtime.NewError(runtime.UndefinedMethod,
			"undefined method '%s' on FutureBox", method).At(pos)

	default:
		v, err := runtime.CallBuiltinMethod(recv, method, args)
		if err != nil {
			if re, ok := runtime.AsError(err); ok {
				re.At(pos)
			}
			return runtime.NullValue(), err
		}
		return v, nil
	}
}

func (in *Interpreter) invokeOnInstance(inst *runtime.Instance, method string, args []runtime.Value, pos ast.Position) (runtime.Value, error) {
	if method == "fini" {
		if len(args) != 0 {
			return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
				"fini takes no arguments, got %d", len(args)).At(pos)
		}
		return in.finalizeInstance(inst, pos)
	}

	if inst.Decl != nil {
		if m, ok := inst.Decl.Methods[method]; ok {
			return in.callMethod(inst, m, args, pos)
		}

		// Implicit fallback: a class extending a builtin type transparently
		// reuses the builtin's method table. This is the only implicit
		// delegation in the system; user-to-user reuse must go through from.
		for _, parent := range inst.Decl.Extends {
			if !runtime.IsBuiltinType(parent) {
				continue
			}
			base := inst.Inner
			if base.IsNull() || base.TypeName() != parent {
				base, _ = runtime.DefaultBoxValue(parent)
			}
			if runtime.HasBuiltinMethod(base, method) {
				v, err := runtime.CallBuiltinMethod(base, method, args)
				if err != nil {
					if re, ok := runtime.AsError(err); ok {
						re.At(pos)
					}
					return runtime.NullValue(), err
				}
				return v, nil
			}
		}
	}

	return runtime.NullValue(), runtime.NewError(runtime.UndefinedMethod,
		"undefined method '%s' on %s", method, inst.ClassName).At(pos)
}

// callMethod executes a method body in a fresh local frame with me bound to
// inst and parameters bound positionally.
func (in *Interpreter) callMethod(inst *runtime.Instance, m *ast.Method, args []runtime.Value, pos ast.Position) (runtime.Value, error) {
	if len(args) != m.Arity() {
		return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
			"%s.%s expects %d argument(s), got %d", inst.ClassName, m.Name, m.Arity(), len(args)).At(pos)
	}

	saved := in.pushFrame()
	savedSelf := in.self
	in.self = inst
	for i, p := range m.Params {
		in.locals[p] = args[i]
	}

	val, ctrl, err := in.execBlock(m.Body)

	in.self = savedSelf
	in.popFrame(saved)

	if err != nil {
		return runtime.NullValue(), err
	}
	if ctrl == ctrlReturn {
		return val, nil
	}
	return runtime.NullValue(), nil
}

// callStaticFunction executes a free function: no receiver, fresh frame.
func (in *Interpreter) callStaticFunction(fn *ast.FunctionDecl, n *ast.MethodCall) (runtime.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return runtime.NullValue(), err
	}
	if len(args) != len(fn.Params) {
		return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
			"static function %s.%s expects %d argument(s), got %d",
			fn.BoxName, fn.Name, len(fn.Params), len(args)).At(n.Pos())
	}

	saved := in.pushFrame()
	savedSelf := in.self
	in.self = nil
	for i, p := range fn.Params {
		in.locals[p] = args[i]
	}

	val, ctrl, err := in.execBlock(fn.Body)

	in.self = savedSelf
	in.popFrame(saved)

	if err != nil {
		return runtime.NullValue(), err
	}
	if ctrl == ctrlReturn {
		return val, nil
	}
	return runtime.NullValue(), nil
}
