package runtime

import (
	"sort"
	"sync"

	"github.com/tliron/commonlog"
)

// ProviderKind identifies which construction tier a factory belongs to.
type ProviderKind int

const (
	ProviderBuiltin ProviderKind = iota
	ProviderUserDefined
	ProviderPlugin
)

func (k ProviderKind) String() string {
	switch k {
	case ProviderBuiltin:
		return "builtin"
	case ProviderUserDefined:
		return "user-defined"
	case ProviderPlugin:
		return "plugin"
	}
	return "unknown"
}

// BoxFactory is the unified interface for Box construction providers.
type BoxFactory interface {
	// CreateBox constructs a Box of the named type.
	CreateBox(name string, args []Value) (Value, error)
	// BoxTypes lists the type names this factory can create.
	BoxTypes() []string
	// IsAvailable reports whether the factory can currently serve requests
	// (a plugin factory with no plugins loaded reports false).
	IsAvailable() bool
}

type registration struct {
	factory BoxFactory
	kind    ProviderKind
}

// Registry resolves type names to constructed Boxes across an ordered set
// of providers: builtin before user-defined before plugin.
//
// The first provider claiming a name wins and its index is cached for that
// name; registering another factory for an already-known name is a defined
// no-op, not an error.
type Registry struct {
	mu        sync.RWMutex
	providers []registration
	cache     map[string]int // type name -> provider index

	log commonlog.Logger
}

// NewRegistry creates an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[string]int),
		log:   commonlog.GetLogger("nyash.runtime.registry"),
	}
}

// Register appends a factory at the end of the provider order.
func (r *Registry) Register(f BoxFactory, kind ProviderKind) {
	r.mu.Lock()
	r.providers = append(r.providers, registration{factory: f, kind: kind})
	r.mu.Unlock()
	r.log.Debugf("registered %s factory providing %d type(s)", kind, len(f.BoxTypes()))
}

// Create constructs a Box of the named type, or fails with UnknownType.
func (r *Registry) Create(name string, args []Value) (Value, error) {
	r.mu.RLock()
	idx, hit := r.cache[name]
	var reg registration
	if hit {
		reg = r.providers[idx]
	}
	r.mu.RUnlock()

	if !hit {
		r.mu.Lock()
		idx, hit = r.cache[name]
		if !hit {
			idx = r.resolveLocked(name)
			if idx >= 0 {
				r.cache[name] = idx
				hit = true
			}
		}
		if hit {
			reg = r.providers[idx]
		}
		r.mu.Unlock()
	}

	if !hit {
		return NullValue(), NewError(UnknownType, "no factory provides Box type '%s'", name)
	}
	return reg.factory.CreateBox(name, args)
}

// resolveLocked scans providers in registration order for the first one
// claiming name. Availability is not consulted here: once a name is bound
// to a provider, that provider answers for it even if it later reports
// itself unavailable.
func (r *Registry) resolveLocked(name string) int {
	for i, reg := range r.providers {
		for _, t := range reg.factory.BoxTypes() {
			if t == name {
				return i
			}
		}
	}
	return -1
}

// Provider returns the kind of the provider bound to name, if any.
func (r *Registry) Provider(name string) (ProviderKind, bool) {
	r.mu.RLock()
	idx, hit := r.cache[name]
	if hit {
		kind := r.providers[idx].kind
		r.mu.RUnlock()
		return kind, true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, hit = r.cache[name]; !hit {
		idx = r.resolveLocked(name)
		if idx < 0 {
			return 0, false
		}
		r.cache[name] = idx
	}
	return r.providers[idx].kind, true
}

// AvailableTypes returns the de-duplicated sorted union of type names across
// all currently available providers.
func (r *Registry) AvailableTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	for _, reg := range r.providers {
		if !reg.factory.IsAvailable() {
			continue
		}
		for _, t := range reg.factory.BoxTypes() {
			seen[t] = true
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
