package runtime

import (
	"sync"

	"github.com/tliron/commonlog"
)

// InitState is the lifecycle state of one singleton Box.
// States only ever advance: NotInitialized -> Initializing -> Initialized.
type InitState int

const (
	NotInitialized InitState = iota
	Initializing
	Initialized
)

func (s InitState) String() string {
	switch s {
	case NotInitialized:
		return "NotInitialized"
	case Initializing:
		return "Initializing"
	case Initialized:
		return "Initialized"
	}
	return "unknown"
}

// SingletonSet lazily materializes singleton Boxes at most once per process
// and doubles as the process-wide singleton namespace.
type SingletonSet struct {
	mu        sync.Mutex
	states    map[string]InitState
	instances map[string]*Instance

	log commonlog.Logger
}

// NewSingletonSet creates an empty singleton namespace.
func NewSingletonSet() *SingletonSet {
	return &SingletonSet{
		states:    make(map[string]InitState),
		instances: make(map[string]*Instance),
		log:       commonlog.GetLogger("nyash.runtime.singleton"),
	}
}

// Get returns the published instance for name, if any. An instance is
// observable from the moment it is published, which happens before its
// initializer body runs, so reentrant initializers can see partially
// initialized singletons instead of nothing.
func (s *SingletonSet) Get(name string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[name]
	return inst, ok
}

// State returns the current lifecycle state for name.
func (s *SingletonSet) State(name string) InitState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[name]
}

// EnsureInitialized drives the three-state init protocol for name.
//
// construct allocates the singleton's instance; run executes its initializer
// body with me bound to the published instance. Both run without the set's
// lock held. The Initializing state, not the lock, is what detects cyclic
// initialization: a request observing Initializing on its own singleton is
// a cycle and fails fatally rather than deadlocking or retrying.
func (s *SingletonSet) EnsureInitialized(name string,
	construct func() (*Instance, error), run func(*Instance) error) (*Instance, error) {

	s.mu.Lock()
	switch s.states[name] {
	case Initialized:
		inst := s.instances[name]
		s.mu.Unlock()
		return inst, nil
	case Initializing:
		s.mu.Unlock()
		return nil, NewError(InvalidOperation,
			"circular dependency detected during initialization of static box '%s'", name)
	}
	s.states[name] = Initializing
	s.mu.Unlock()

	s.log.Debugf("initializing static box '%s'", name)
	inst, err := construct()
	if err != nil {
		return nil, err
	}

	// Publish before running the initializer so reentrant lookups triggered
	// by the body observe the partially built singleton.
	s.mu.Lock()
	s.instances[name] = inst
	s.mu.Unlock()

	if err := run(inst); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.states[name] = Initialized
	s.mu.Unlock()
	s.log.Debugf("static box '%s' initialized", name)
	return inst, nil
}

// Names returns the names of all published singletons.
func (s *SingletonSet) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.instances))
	for n := range s.instances {
		names = append(names, n)
	}
	return names
}
