package plugin

import (
	"fmt"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/moe-charm/nyash/runtime"
)

// Method IDs reserved by the plugin ABI.
const (
	// BirthMethodID constructs a plugin instance.
	BirthMethodID uint32 = 0
	// FiniMethodID destroys a plugin instance. Idempotence is the plugin's
	// obligation, mirroring instance fini semantics.
	FiniMethodID uint32 = ^uint32(0)
)

// Invoker is the execution contract a plugin library exposes to the host.
// Arguments and results are opaque BID-1 frames; the host never interprets
// plugin-internal state.
type Invoker interface {
	// Catalog returns the library's CBOR-encoded type catalog.
	Catalog() ([]byte, error)
	// Invoke dispatches method methodID on instance instanceID of type
	// typeID, with TLV-encoded arguments.
	Invoke(typeID, methodID, instanceID uint32, args []byte) ([]byte, error)
}

type binding struct {
	info    BoxTypeInfo
	methods map[string]MethodSig
	invoker Invoker
}

// Factory is the plugin tier of the Box construction registry. It reports
// itself unavailable until at least one library is attached.
type Factory struct {
	mu    sync.RWMutex
	types map[string]*binding

	log commonlog.Logger
}

// NewFactory creates an empty plugin factory.
func NewFactory() *Factory {
	return &Factory{
		types: make(map[string]*binding),
		log:   commonlog.GetLogger("nyash.plugin"),
	}
}

// AttachLibrary performs the catalog handshake with a plugin library and
// binds the Box types it provides. The first library claiming a type name
// wins; later claims are ignored with a warning.
func (f *Factory) AttachLibrary(inv Invoker) error {
	raw, err := inv.Catalog()
	if err != nil {
		return fmt.Errorf("plugin handshake: %w", err)
	}
	catalog, err := UnmarshalCatalog(raw)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, bt := range catalog.BoxTypes {
		if _, taken := f.types[bt.Name]; taken {
			f.log.Warningf("library %s re-claims Box type %s; keeping first binding",
				catalog.Library, bt.Name)
			continue
		}
		methods := make(map[string]MethodSig, len(bt.Methods))
		for _, m := range bt.Methods {
			methods[m.Name] = m
		}
		f.types[bt.Name] = &binding{info: bt, methods: methods, invoker: inv}
		f.log.Infof("library %s provides %s (type_id %d, %d methods)",
			catalog.Library, bt.Name, bt.TypeID, len(bt.Methods))
	}
	return nil
}

// Attached reports how many Box types are currently bound.
func (f *Factory) Attached() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.types)
}

func (f *Factory) BoxTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.types))
	for n := range f.types {
		names = append(names, n)
	}
	return names
}

func (f *Factory) IsAvailable() bool {
	return f.Attached() > 0
}

// CreateBox constructs a plugin Box by invoking its birth method. The
// resulting handle shares state by identity, like an Instance.
func (f *Factory) CreateBox(name string, args []runtime.Value) (runtime.Value, error) {
	f.mu.RLock()
	b, ok := f.types[name]
	f.mu.RUnlock()
	if !ok {
		return runtime.NullValue(), runtime.NewError(runtime.UnknownType,
			"no plugin provides Box type '%s'", name)
	}

	frame, err := EncodeArgs(args)
	if err != nil {
		return runtime.NullValue(), err
	}
	result, err := b.invoker.Invoke(b.info.TypeID, BirthMethodID, 0, frame)
	if err != nil {
		return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
			"plugin birth of %s failed: %v", name, err)
	}

	v, err := DecodeResult(result, f.resolveHandle)
	if err != nil {
		return runtime.NullValue(), err
	}
	if v.Type != runtime.TypeHandle {
		return runtime.NullValue(), runtime.NewError(runtime.TypeError,
			"plugin birth of %s returned %s, want a handle", name, v.TypeName())
	}
	return v, nil
}

// resolveHandle materializes a runtime handle for a plugin instance and
// wires its method invoker.
func (f *Factory) resolveHandle(typeID, instanceID uint32) (runtime.Value, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for name, b := range f.types {
		if b.info.TypeID != typeID {
			continue
		}
		bound := b
		h := &runtime.Handle{
			BoxType:    name,
			TypeID:     typeID,
			InstanceID: instanceID,
		}
		h.Invoke = func(method string, args []runtime.Value) (runtime.Value, error) {
			return f.invokeMethod(bound, h, method, args)
		}
		return runtime.HandleValue(h), nil
	}
	return runtime.NullValue(), runtime.NewError(runtime.UnknownType,
		"no plugin binding for type_id %d", typeID)
}

func (f *Factory) invokeMethod(b *binding, h *runtime.Handle, method string, args []runtime.Value) (runtime.Value, error) {
	methodID := FiniMethodID
	arity := 0
	if method != "fini" {
		sig, ok := b.methods[method]
		if !ok {
			return runtime.NullValue(), runtime.NewError(runtime.UndefinedMethod,
				"undefined method '%s' on %s", method, h.BoxType)
		}
		methodID = sig.MethodID
		arity = sig.Arity
	}
	if len(args) != arity {
		return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
			"%s.%s expects %d argument(s), got %d", h.BoxType, method, arity, len(args))
	}

	frame, err := EncodeArgs(args)
	if err != nil {
		return runtime.NullValue(), err
	}
	result, err := b.invoker.Invoke(h.TypeID, methodID, h.InstanceID, frame)
	if err != nil {
		return runtime.NullValue(), runtime.NewError(runtime.InvalidOperation,
			"plugin call %s.%s failed: %v", h.BoxType, method, err)
	}
	return DecodeResult(result, f.resolveHandle)
}

// Activate attaches every library named in cfg using the given opener,
// which maps a library's plugin_path to a live Invoker. Libraries that
// fail to open are skipped with a warning so one broken plugin does not
// take down the session.
func (f *Factory) Activate(cfg *Config, open func(lib Library) (Invoker, error)) error {
	for name, lib := range cfg.Libraries {
		inv, err := open(lib)
		if err != nil {
			f.log.Warningf("skipping plugin library %s (%s): %v", name, lib.PluginPath, err)
			continue
		}
		if err := f.AttachLibrary(inv); err != nil {
			return fmt.Errorf("library %s: %w", name, err)
		}
	}
	return nil
}
