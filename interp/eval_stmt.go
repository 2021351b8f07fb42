package interp

import (
	"fmt"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// ctrlKind is the control signal produced by statement execution.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlReturn
)

// thrownError carries a user-thrown exception value through Go error
// propagation until a try/catch intercepts it.
type thrownError struct {
	value runtime.Value
}

func (t *thrownError) Error() string {
	return "uncaught exception: " + t.value.AsString()
}

// execBlock runs statements until a control signal or error.
func (in *Interpreter) execBlock(stmts []ast.Stmt) (runtime.Value, ctrlKind, error) {
	for _, stmt := range stmts {
		val, ctrl, err := in.execStatement(stmt)
		if err != nil {
			return runtime.NullValue(), ctrlNone, err
		}
		if ctrl != ctrlNone {
			return val, ctrl, nil
		}
	}
	return runtime.NullValue(), ctrlNone, nil
}

func (in *Interpreter) execStatement(stmt ast.Stmt) (runtime.Value, ctrlKind, error) {
	switch s := stmt.(type) {
	case *ast.Local:
		for _, name := range s.Names {
			in.locals[name] = runtime.NullValue()
		}
		return runtime.NullValue(), ctrlNone, nil

	case *ast.Assign:
		return runtime.NullValue(), ctrlNone, in.execAssign(s)

	case *ast.ExprStmt:
		_, err := in.evalExpr(s.X)
		return runtime.NullValue(), ctrlNone, err

	case *ast.Return:
		val := runtime.NullValue()
		if s.Value != nil {
			var err error
			val, err = in.evalExpr(s.Value)
			if err != nil {
				return runtime.NullValue(), ctrlNone, err
			}
		}
		return val, ctrlReturn, nil

	case *ast.Break:
		return runtime.NullValue(), ctrlBreak, nil

	case *ast.If:
		cond, err := in.evalExpr(s.Cond)
		if err != nil {
			return runtime.NullValue(), ctrlNone, err
		}
		if cond.IsTruthy() {
			return in.execBlock(s.Then)
		}
		return in.execBlock(s.Else)

	case *ast.Loop:
		for {
			if s.Cond != nil {
				cond, err := in.evalExpr(s.Cond)
				if err != nil {
					return runtime.NullValue(), ctrlNone, err
				}
				if !cond.IsTruthy() {
					break
				}
			}
			val, ctrl, err := in.execBlock(s.Body)
			if err != nil {
				return runtime.NullValue(), ctrlNone, err
			}
			if ctrl == ctrlBreak {
				break
			}
			if ctrl == ctrlReturn {
				return val, ctrlReturn, nil
			}
		}
		return runtime.NullValue(), ctrlNone, nil

	case *ast.TryCatch:
		return in.execTryCatch(s)

	case *ast.Throw:
		val, err := in.evalExpr(s.Value)
		if err != nil {
			return runtime.NullValue(), ctrlNone, err
		}
		return runtime.NullValue(), ctrlNone, &thrownError{value: val}

	case *ast.Nowait:
		return runtime.NullValue(), ctrlNone, in.execNowait(s)

	case *ast.Print:
		val, err := in.evalExpr(s.Value)
		if err != nil {
			return runtime.NullValue(), ctrlNone, err
		}
		fmt.Fprintln(in.out, val.AsString())
		return runtime.NullValue(), ctrlNone, nil

	case *ast.BoxDecl:
		return runtime.NullValue(), ctrlNone, in.sess.Classes.Register(s)

	case *ast.StaticBoxDecl:
		return runtime.NullValue(), ctrlNone, in.sess.Classes.RegisterStatic(s)

	case *ast.FunctionDecl:
		return runtime.NullValue(), ctrlNone, in.sess.RegisterStaticFunction(s)
	}
	return runtime.NullValue(), ctrlNone, runtime.NewError(runtime.RuntimeFailure,
		"unhandled statement %T", stmt).At(stmt.Pos())
}

func (in *Interpreter) execAssign(s *ast.Assign) error {
	val, err := in.evalExpr(s.Value)
	if err != nil {
		return err
	}
	// Assignment copies: value clone for primitives and collections, share
	// for instances, futures and plugin handles.
	val = val.Copy()

	switch target := s.Target.(type) {
	case *ast.Variable:
		return in.assignVariable(target.Name, val, s.Pos())
	case *ast.FieldAccess:
		recv, err := in.evalFieldTarget(target)
		if err != nil {
			return err
		}
		if recv.Type != runtime.TypeInstance {
			return runtime.NewError(runtime.TypeError,
				"cannot assign field '%s' on %s", target.Field, recv.TypeName()).At(s.Pos())
		}
		inst := recv.InstanceVal
		if err := in.checkFieldVisibility(inst, target.Field, s.Pos()); err != nil {
			return err
		}
		if err := inst.SetField(target.Field, val); err != nil {
			if re, ok := runtime.AsError(err); ok {
				re.At(s.Pos())
			}
			return err
		}
		return nil
	}
	return runtime.NewError(runtime.InvalidOperation,
		"invalid assignment target %T", s.Target).At(s.Pos())
}

func (in *Interpreter) execTryCatch(s *ast.TryCatch) (runtime.Value, ctrlKind, error) {
	val, ctrl, err := in.execBlock(s.Try)
	if err == nil {
		return val, ctrl, nil
	}

	exc, catchable := exceptionValue(err)
	if !catchable {
		return runtime.NullValue(), ctrlNone, err
	}

	if s.CatchVar != "" {
		in.locals[s.CatchVar] = exc
	}
	return in.execBlock(s.Catch)
}

// exceptionValue converts a propagating error into the catchable exception
// value a catch clause binds. RuntimeFailure is never converted; it keeps
// terminating the execution.
func exceptionValue(err error) (runtime.Value, bool) {
	if t, ok := err.(*thrownError); ok {
		return t.value, true
	}
	re, ok := runtime.AsError(err)
	if !ok || !re.Catchable() {
		return runtime.NullValue(), false
	}
	m := &runtime.Map{Entries: map[string]runtime.Value{
		"kind":    runtime.StringValue(re.Kind.String()),
		"message": runtime.StringValue(re.Message),
	}}
	if re.Pos.Line > 0 {
		m.Entries["at"] = runtime.StringValue(re.Pos.String())
	}
	return runtime.MapValue(m), true
}
