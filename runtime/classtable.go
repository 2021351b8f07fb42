package runtime

import (
	"sync"

	"github.com/moe-charm/nyash/ast"
)

// ClassTable holds parsed box and static box declarations. It is populated
// by whatever loads the instruction tree and read on every dispatch, so it
// sits behind a read/write lock.
type ClassTable struct {
	mu      sync.RWMutex
	boxes   map[string]*ast.BoxDecl
	statics map[string]*ast.StaticBoxDecl
}

// NewClassTable creates an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		boxes:   make(map[string]*ast.BoxDecl),
		statics: make(map[string]*ast.StaticBoxDecl),
	}
}

// Register adds a box declaration after validating its field invariants.
func (t *ClassTable) Register(decl *ast.BoxDecl) error {
	if err := validateDecl(decl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.boxes[decl.Name]; dup {
		return NewError(InvalidOperation, "box '%s' already declared", decl.Name)
	}
	if _, dup := t.statics[decl.Name]; dup {
		return NewError(InvalidOperation, "'%s' already declared as a static box", decl.Name)
	}
	t.boxes[decl.Name] = decl
	return nil
}

// RegisterStatic adds a singleton declaration.
func (t *ClassTable) RegisterStatic(decl *ast.StaticBoxDecl) error {
	if err := validateDecl(&decl.BoxDecl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.statics[decl.Name]; dup {
		return NewError(InvalidOperation, "static box '%s' already declared", decl.Name)
	}
	if _, dup := t.boxes[decl.Name]; dup {
		return NewError(InvalidOperation, "'%s' already declared as a box", decl.Name)
	}
	t.statics[decl.Name] = decl
	return nil
}

// Lookup returns the declaration for name.
func (t *ClassTable) Lookup(name string) (*ast.BoxDecl, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.boxes[name]
	return d, ok
}

// LookupStatic returns the singleton declaration for name.
func (t *ClassTable) LookupStatic(name string) (*ast.StaticBoxDecl, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.statics[name]
	return d, ok
}

// Names returns the declared (non-static) box names, unsorted.
func (t *ClassTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.boxes))
	for n := range t.boxes {
		names = append(names, n)
	}
	return names
}

// KnownTarget reports whether name is usable as a delegation target: a
// declared box, a declared static box, or a builtin type name.
func (t *ClassTable) KnownTarget(name string) bool {
	if IsBuiltinType(name) {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, box := t.boxes[name]
	_, st := t.statics[name]
	return box || st
}

func validateDecl(decl *ast.BoxDecl) error {
	seen := make(map[string]bool, len(decl.Fields))
	for _, f := range decl.Fields {
		if seen[f] {
			return NewError(InvalidOperation,
				"box '%s' declares field '%s' twice", decl.Name, f)
		}
		seen[f] = true
	}
	weakSeen := make(map[string]bool, len(decl.WeakFields))
	for _, f := range decl.WeakFields {
		if !seen[f] {
			return NewError(InvalidOperation,
				"box '%s' marks undeclared field '%s' as weak", decl.Name, f)
		}
		if weakSeen[f] {
			return NewError(InvalidOperation,
				"box '%s' marks field '%s' weak twice", decl.Name, f)
		}
		weakSeen[f] = true
	}
	for _, f := range decl.PublicFields {
		if !seen[f] {
			return NewError(InvalidOperation,
				"box '%s' lists undeclared field '%s' as public", decl.Name, f)
		}
	}
	return nil
}
