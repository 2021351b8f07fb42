package runtime

// Handle is a share-semantics reference to a Box living behind the native
// plugin boundary. Method calls are marshaled by the plugin package; the
// core sees only the opaque invoke function.
type Handle struct {
	BoxType    string
	TypeID     uint32
	InstanceID uint32

	// Invoke dispatches a named method on the plugin instance. Set by the
	// plugin factory at construction time.
	Invoke func(method string, args []Value) (Value, error)
}

// Call invokes a plugin method through the handle.
func (h *Handle) Call(method string, args []Value) (Value, error) {
	if h.Invoke == nil {
		return NullValue(), NewError(RuntimeFailure,
			"plugin handle for %s has no invoker", h.BoxType)
	}
	return h.Invoke(method, args)
}
