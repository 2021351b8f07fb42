package interp

import (
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// Interpreter walks an instruction tree. Execution is single-threaded per
// interpreter; the only suspension point is reading a future. Concurrent
// interpreters exist only via nowait and touch shared state exclusively
// through the session's guarded structures.
type Interpreter struct {
	sess   *Session
	locals map[string]runtime.Value
	self   *runtime.Instance // current receiver, nil outside methods
	depth  int               // call depth; 0 means top level
	out    io.Writer
	log    commonlog.Logger
}

// New creates an interpreter bound to a session.
func New(sess *Session) *Interpreter {
	return &Interpreter{
		sess:   sess,
		locals: make(map[string]runtime.Value),
		out:    os.Stdout,
		log:    commonlog.GetLogger("nyash.interp"),
	}
}

// SetOutput redirects print/console output.
func (in *Interpreter) SetOutput(w io.Writer) {
	in.out = w
}

// Session returns the shared session.
func (in *Interpreter) Session() *Session {
	return in.sess
}

// Run executes a program. A top-level return yields its value; otherwise the
// result is the null Box.
func (in *Interpreter) Run(program []ast.Stmt) (runtime.Value, error) {
	val, ctrl, err := in.execBlock(program)
	if err != nil {
		return runtime.NullValue(), err
	}
	if ctrl == ctrlReturn {
		return val, nil
	}
	return runtime.NullValue(), nil
}

// pushFrame installs a fresh local frame and returns the previous one.
func (in *Interpreter) pushFrame() map[string]runtime.Value {
	saved := in.locals
	in.locals = make(map[string]runtime.Value)
	in.depth++
	return saved
}

// popFrame restores a saved local frame, discarding the current one.
func (in *Interpreter) popFrame(saved map[string]runtime.Value) {
	in.locals = saved
	in.depth--
}

// resolveVariable applies the name resolution order: local frame, me,
// singleton name, GlobalBox field.
func (in *Interpreter) resolveVariable(name string, pos ast.Position) (runtime.Value, error) {
	if v, ok := in.locals[name]; ok {
		return v, nil
	}
	if name == "me" && in.self != nil {
		return runtime.InstanceValue(in.self), nil
	}
	if _, ok := in.sess.Classes.LookupStatic(name); ok {
		inst, err := in.ensureStatic(name, pos)
		if err != nil {
			return runtime.NullValue(), err
		}
		return runtime.InstanceValue(inst), nil
	}
	if in.sess.Global.HasField(name) {
		return in.sess.Global.GetField(name)
	}
	return runtime.NullValue(), runtime.NewError(runtime.UndefinedVariable,
		"undefined variable '%s'", name).At(pos)
}

// assignVariable applies assignment resolution: an existing local, then an
// existing GlobalBox field. At top level an unknown name is created on
// GlobalBox; inside a call frame it is an error.
func (in *Interpreter) assignVariable(name string, v runtime.Value, pos ast.Position) error {
	if _, ok := in.locals[name]; ok {
		in.locals[name] = v
		return nil
	}
	if in.sess.Global.HasField(name) {
		return in.sess.Global.SetField(name, v)
	}
	if in.depth == 0 {
		return in.sess.Global.DefineField(name, v)
	}
	return runtime.NewError(runtime.UndefinedVariable,
		"assignment to undeclared variable '%s'", name).At(pos)
}
