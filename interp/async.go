package interp

import (
	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// execNowait spawns a fresh interpreter over the shared session and binds a
// future to the target name. The spawned task runs to completion; there is
// no cancellation. Its result (or catchable failure) surfaces when the
// future is first read.
func (in *Interpreter) execNowait(s *ast.Nowait) error {
	future := runtime.NewFuture()

	worker := New(in.sess)
	worker.out = in.out
	expr := s.Call

	in.log.Debugf("nowait: spawning task for '%s'", s.Name)
	go func() {
		v, err := worker.evalExpr(expr)
		future.Complete(v, err)
	}()

	// nowait declares its binding when the name is new, like local does.
	if _, ok := in.locals[s.Name]; !ok && !in.sess.Global.HasField(s.Name) && in.depth > 0 {
		in.locals[s.Name] = runtime.FutureValue(future)
		return nil
	}
	return in.assignVariable(s.Name, runtime.FutureValue(future), s.Pos())
}
