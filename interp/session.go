// Package interp executes Nyash instruction trees. It hosts the method
// dispatcher, the delegation resolver, the birth/fini lifecycle and the
// nowait/future machinery on top of the runtime package's object model.
package interp

import (
	"sync"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// Session is the process-wide shared state of one runtime session: the class
// table, the factory registry, the singleton namespace, the GlobalBox and
// the static function table. Interpreters spawned by nowait share a session;
// every structure behind it is lock-guarded.
type Session struct {
	Classes    *runtime.ClassTable
	Boxes      *runtime.Registry
	Singletons *runtime.SingletonSet

	// Global is the runtime's own namespace object, the only instance whose
	// field set may grow at runtime. The statics namespace hangs off it.
	Global  *runtime.Instance
	statics *runtime.Instance

	mu          sync.RWMutex
	staticFuncs map[string]map[string]*ast.FunctionDecl
}

// NewSession builds a session with the builtin and user-defined construction
// tiers registered, in that priority order. Plugin factories are registered
// by the embedder afterwards.
func NewSession() *Session {
	classes := runtime.NewClassTable()
	boxes := runtime.NewRegistry()
	boxes.Register(runtime.NewBuiltinFactory(), runtime.ProviderBuiltin)
	boxes.Register(runtime.NewUserFactory(classes), runtime.ProviderUserDefined)

	global := runtime.NewNamespace("GlobalBox")
	statics := runtime.NewNamespace("statics")
	// GlobalBox.statics always exists, even before the first singleton.
	_ = global.DefineField("statics", runtime.InstanceValue(statics))

	return &Session{
		Classes:     classes,
		Boxes:       boxes,
		Singletons:  runtime.NewSingletonSet(),
		Global:      global,
		statics:     statics,
		staticFuncs: make(map[string]map[string]*ast.FunctionDecl),
	}
}

// RegisterStaticFunction adds a free function under its box name. The first
// registration for a given qualified name wins.
func (s *Session) RegisterStaticFunction(fn *ast.FunctionDecl) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.staticFuncs[fn.BoxName]
	if !ok {
		group = make(map[string]*ast.FunctionDecl)
		s.staticFuncs[fn.BoxName] = group
	}
	if _, dup := group[fn.Name]; dup {
		return runtime.NewError(runtime.InvalidOperation,
			"static function %s.%s already declared", fn.BoxName, fn.Name)
	}
	group[fn.Name] = fn
	return nil
}

// HasFunctionGroup reports whether any static function is registered under
// boxName.
func (s *Session) HasFunctionGroup(boxName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.staticFuncs[boxName]
	return ok
}

// LookupStaticFunction resolves a qualified static function name.
func (s *Session) LookupStaticFunction(boxName, name string) (*ast.FunctionDecl, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	group, ok := s.staticFuncs[boxName]
	if !ok {
		return nil, false
	}
	fn, ok := group[name]
	return fn, ok
}
