package interp

import (
	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// evalFromCall resolves explicit delegation: from Parent.method(args).
//
// The ancestor is named at the call site, so there is no method resolution
// order to walk and no diamond ambiguity. The executed body always runs with
// me re-bound to the original receiver; delegation reuses code, never
// identity or field storage.
func (in *Interpreter) evalFromCall(n *ast.FromCall) (runtime.Value, error) {
	if in.self == nil {
		return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
			"'from' can only be used inside methods").At(n.Pos())
	}
	recv := in.self
	if recv.Decl == nil || !recv.Decl.DelegatesTo(n.Parent) {
		return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
			"class '%s' does not delegate to '%s'", recv.ClassName, n.Parent).At(n.Pos())
	}

	args, err := in.evalArgs(n.Args)
	if err != nil {
		return runtime.NullValue(), err
	}

	if runtime.IsBuiltinType(n.Parent) {
		return in.delegateToBuiltin(recv, n, args)
	}

	parentDecl, ok := in.sess.Classes.Lookup(n.Parent)
	if !ok {
		return runtime.NullValue(), runtime.NewError(runtime.UndefinedClass,
			"unknown parent class '%s'", n.Parent).At(n.Pos())
	}

	if isConstructorName(n.Method, n.Parent) {
		ctor := findConstructor(parentDecl, n.Parent, len(args))
		if ctor == nil {
			return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
				"no constructor of '%s' takes %d argument(s)", n.Parent, len(args)).At(n.Pos())
		}
		// Constructors act by mutating the shared field storage; the
		// original receiver is the result.
		if _, err := in.callMethod(recv, ctor, args, n.Pos()); err != nil {
			return runtime.NullValue(), err
		}
		return runtime.InstanceValue(recv), nil
	}

	m, ok := parentDecl.Methods[n.Method]
	if !ok {
		return runtime.NullValue(), runtime.NewError(runtime.UndefinedMethod,
			"method '%s' not found in parent class '%s'", n.Method, n.Parent).At(n.Pos())
	}
	return in.callMethod(recv, m, args, n.Pos())
}

// delegateToBuiltin handles from BuiltinBox.method(...). A constructor-style
// call initializes the instance's builtin backing storage; an ordinary call
// dispatches against that backing value (or the builtin's default).
func (in *Interpreter) delegateToBuiltin(recv *runtime.Instance, n *ast.FromCall, args []runtime.Value) (runtime.Value, error) {
	if isConstructorName(n.Method, n.Parent) {
		v, err := in.sess.Boxes.Create(n.Parent, args)
		if err != nil {
			if re, ok := runtime.AsError(err); ok {
				re.At(n.Pos())
			}
			return runtime.NullValue(), err
		}
		recv.Inner = v
		return runtime.InstanceValue(recv), nil
	}

	base := recv.Inner
	if base.IsNull() || base.TypeName() != n.Parent {
		base, _ = runtime.DefaultBoxValue(n.Parent)
	}
	v, err := runtime.CallBuiltinMethod(base, n.Method, args)
	if err != nil {
		if re, ok := runtime.AsError(err); ok {
			re.At(n.Pos())
		}
		return runtime.NullValue(), err
	}
	return v, nil
}

// isConstructorName recognizes the constructor spellings: birth, pack, init
// and the parent class's own name.
func isConstructorName(method, parent string) bool {
	return method == "birth" || method == "pack" || method == "init" || method == parent
}

// findConstructor tries constructor keys in the fixed precedence order
// birth/N, pack/N, init/N, <Parent>/N.
func findConstructor(decl *ast.BoxDecl, parent string, arity int) *ast.Method {
	for _, name := range []string{"birth", "pack", "init", parent} {
		if m, ok := decl.Constructors[ast.ConstructorKey(name, arity)]; ok {
			return m
		}
	}
	return nil
}
