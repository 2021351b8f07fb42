package interp

import (
	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// newBox constructs a Box through the factory registry and, for user-defined
// instances, runs the matching constructor on the freshly allocated storage.
// There is no implicit chaining to ancestor constructors; each delegation
// must be an explicit from call inside the constructor body.
func (in *Interpreter) newBox(n *ast.New) (runtime.Value, error) {
	args, err := in.evalArgs(n.Args)
	if err != nil {
		return runtime.NullValue(), err
	}

	v, err := in.sess.Boxes.Create(n.TypeName, args)
	if err != nil {
		if re, ok := runtime.AsError(err); ok {
			re.At(n.Pos())
		}
		return runtime.NullValue(), err
	}

	if v.Type == runtime.TypeInstance && v.InstanceVal.Decl != nil {
		inst := v.InstanceVal
		ctor := findConstructor(inst.Decl, n.TypeName, len(args))
		if ctor != nil {
			if _, err := in.callMethod(inst, ctor, args, n.Pos()); err != nil {
				return runtime.NullValue(), err
			}
		} else if len(args) > 0 {
			return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
				"no constructor of '%s' takes %d argument(s)", n.TypeName, len(args)).At(n.Pos())
		}
	}
	return v, nil
}

// finalizeInstance implements fini(): idempotent, user-requested
// destruction. The first call runs the class's own fini body (if declared),
// commits the sticky finalized flag and emits the diagnostic weak
// notification. Every later call is a successful no-op.
func (in *Interpreter) finalizeInstance(inst *runtime.Instance, pos ast.Position) (runtime.Value, error) {
	if !inst.BeginFinalize() {
		return runtime.NullValue(), nil
	}
	// The flag commits even when the fini body fails; destruction is not
	// retryable and weak reads must degrade from now on.
	defer func() {
		inst.EndFinalize()
		runtime.NotifyFinalized(inst)
	}()

	if inst.Decl != nil {
		if m, ok := inst.Decl.Methods["fini"]; ok {
			if _, err := in.callMethod(inst, m, nil, pos); err != nil {
				return runtime.NullValue(), err
			}
		}
	}
	return runtime.NullValue(), nil
}

// ensureStatic lazily materializes the named singleton, publishing it into
// the singleton namespace (and GlobalBox.statics) before its initializer
// body runs with me bound to it.
func (in *Interpreter) ensureStatic(name string, pos ast.Position) (*runtime.Instance, error) {
	decl, ok := in.sess.Classes.LookupStatic(name)
	if !ok {
		return nil, runtime.NewError(runtime.UndefinedClass,
			"undefined static box '%s'", name).At(pos)
	}

	inst, err := in.sess.Singletons.EnsureInitialized(name,
		func() (*runtime.Instance, error) {
			singleton := runtime.NewInstance(&decl.BoxDecl)
			if err := in.sess.statics.DefineField(name, runtime.InstanceValue(singleton)); err != nil {
				return nil, err
			}
			return singleton, nil
		},
		func(singleton *runtime.Instance) error {
			if len(decl.Init) == 0 {
				return nil
			}
			saved := in.pushFrame()
			savedSelf := in.self
			in.self = singleton

			_, _, err := in.execBlock(decl.Init)

			in.self = savedSelf
			in.popFrame(saved)
			return err
		})
	if err != nil {
		if re, ok := runtime.AsError(err); ok {
			re.At(pos)
		}
		return nil, err
	}
	return inst, nil
}
