package runtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/moe-charm/nyash/ast"
)

// FieldStore is the mutable field storage shared by every handle derived
// from the same construction.
type FieldStore struct {
	mu         sync.RWMutex
	values     map[string]Value
	finalized  bool
	finalizing bool
}

// Instance is the runtime representation of a user-defined Box.
//
// All handles to one construction share the same FieldStore and identity;
// equality is identity-based. The finalized flag is sticky: fini may be
// requested many times but only the first run has effects, and the flag
// outlives the logical state so weak reads can consult it at any time.
type Instance struct {
	ClassName string
	ID        string
	Decl      *ast.BoxDecl // owning class's method table; nil for namespaces

	// Inner is the builtin backing value set by delegating a constructor to
	// a builtin parent (from StringBox.birth(...)). The implicit builtin
	// fallback dispatches against it when present.
	Inner Value

	store *FieldStore

	// dynamic marks the runtime's own namespace objects (GlobalBox and the
	// statics namespace), the only instances whose field set can grow.
	dynamic bool
}

// NewInstance allocates an instance of decl with every declared field null.
func NewInstance(decl *ast.BoxDecl) *Instance {
	values := make(map[string]Value, len(decl.Fields))
	for _, f := range decl.Fields {
		values[f] = NullValue()
	}
	return &Instance{
		ClassName: decl.Name,
		ID:        uuid.NewString(),
		Decl:      decl,
		Inner:     NullValue(),
		store:     &FieldStore{values: values},
	}
}

// NewNamespace allocates a dynamic namespace instance (GlobalBox, statics).
// Unlike ordinary instances its field set is extensible at runtime.
func NewNamespace(name string) *Instance {
	return &Instance{
		ClassName: name,
		ID:        uuid.NewString(),
		Inner:     NullValue(),
		store:     &FieldStore{values: make(map[string]Value)},
		dynamic:   true,
	}
}

// GetField returns a shared handle to the current field value. Weak fields
// whose referent has been finalized read as null (see weak.go).
func (inst *Instance) GetField(name string) (Value, error) {
	inst.store.mu.RLock()
	v, ok := inst.store.values[name]
	inst.store.mu.RUnlock()
	if !ok {
		return NullValue(), NewError(InvalidOperation,
			"field '%s' not found on %s", name, inst.ClassName)
	}
	if inst.Decl != nil && inst.Decl.IsWeak(name) {
		return loadWeak(name, v), nil
	}
	return v, nil
}

// SetField assigns a declared field. Fields are fixed at class-declaration
// time; only dynamic namespace instances accept new names.
func (inst *Instance) SetField(name string, v Value) error {
	inst.store.mu.Lock()
	defer inst.store.mu.Unlock()
	if _, ok := inst.store.values[name]; !ok && !inst.dynamic {
		return NewError(InvalidOperation,
			"field '%s' not declared on %s", name, inst.ClassName)
	}
	inst.store.values[name] = v
	return nil
}

// DefineField adds a field to a dynamic namespace instance.
func (inst *Instance) DefineField(name string, v Value) error {
	if !inst.dynamic {
		return NewError(InvalidOperation,
			"cannot extend fields of %s at runtime", inst.ClassName)
	}
	inst.store.mu.Lock()
	inst.store.values[name] = v
	inst.store.mu.Unlock()
	return nil
}

// HasField reports whether the field currently exists in storage.
func (inst *Instance) HasField(name string) bool {
	inst.store.mu.RLock()
	_, ok := inst.store.values[name]
	inst.store.mu.RUnlock()
	return ok
}

// FieldNames returns a snapshot of the stored field names.
func (inst *Instance) FieldNames() []string {
	inst.store.mu.RLock()
	defer inst.store.mu.RUnlock()
	names := make([]string, 0, len(inst.store.values))
	for k := range inst.store.values {
		names = append(names, k)
	}
	return names
}

// IsPublic reports whether the field may be touched from outside the
// instance's own methods.
func (inst *Instance) IsPublic(name string) bool {
	if inst.Decl == nil {
		return true
	}
	return inst.Decl.IsPublic(name)
}

// Finalized reports the sticky finalized flag.
func (inst *Instance) Finalized() bool {
	inst.store.mu.RLock()
	defer inst.store.mu.RUnlock()
	return inst.store.finalized
}

// BeginFinalize attempts to start finalization. It returns false when the
// instance is already finalized or currently mid-fini (a fini method body
// that reaches its own instance again must not recurse).
func (inst *Instance) BeginFinalize() bool {
	inst.store.mu.Lock()
	defer inst.store.mu.Unlock()
	if inst.store.finalized || inst.store.finalizing {
		return false
	}
	inst.store.finalizing = true
	return true
}

// EndFinalize commits the sticky finalized flag. The flag never resets; the
// identity and flag stay readable for the life of the process so weak reads
// remain safe after logical destruction.
func (inst *Instance) EndFinalize() {
	inst.store.mu.Lock()
	inst.store.finalized = true
	inst.store.finalizing = false
	inst.store.mu.Unlock()
}

// Equals is identity equality: same construction, regardless of handle.
func (inst *Instance) Equals(other *Instance) bool {
	return other != nil && inst.ID == other.ID
}
