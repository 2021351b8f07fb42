package runtime

import "github.com/tliron/commonlog"

var weakLog = commonlog.GetLogger("nyash.runtime.weak")

// Weak fields never keep their referent alive. Liveness is decided lazily at
// read time against the referent's own sticky finalized flag, so no reverse
// reference bookkeeping exists anywhere in the runtime.

// loadWeak applies weak-read semantics: a finalized referent degrades to the
// null Box, anything else passes through as a normal shared handle.
func loadWeak(field string, v Value) Value {
	if v.Type == TypeInstance && v.InstanceVal.Finalized() {
		weakLog.Debugf("weak field '%s' referent %s is finalized, reading null",
			field, v.InstanceVal.ID)
		return NullValue()
	}
	return v
}

// NotifyFinalized is diagnostics only. Correctness comes from the lazy read
// check above; this merely records that weak references to inst are dead
// from now on.
func NotifyFinalized(inst *Instance) {
	weakLog.Debugf("instance %s (%s) finalized; weak references now read null",
		inst.ID, inst.ClassName)
}
