// Package runtime implements the Nyash Box object model: values, instances,
// the class table, the Box factory registry, singleton lifecycle and weak
// reference semantics. Everything the interpreter manipulates is a Box.
package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ValueType is the runtime type tag of a Box value.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInteger
	TypeFloat
	TypeString
	TypeArray
	TypeMap
	TypeInstance
	TypeFuture
	TypeHandle
)

// Builtin Box type names, as they appear in declarations and factory calls.
const (
	NullBoxName    = "NullBox"
	BoolBoxName    = "BoolBox"
	IntegerBoxName = "IntegerBox"
	FloatBoxName   = "FloatBox"
	StringBoxName  = "StringBox"
	ArrayBoxName   = "ArrayBox"
	MapBoxName     = "MapBox"
	FutureBoxName  = "FutureBox"
)

// Value is the Go representation of a Nyash Box value.
//
// Primitive and collection Boxes carry their payload directly and copy by
// value clone. Instance, Future and plugin Handle Boxes copy by sharing the
// underlying state, preserving identity across aliases.
type Value struct {
	Type        ValueType
	BoolVal     bool
	IntVal      int64
	FloatVal    float64
	StringVal   string
	ArrayVal    *Array
	MapVal      *Map
	InstanceVal *Instance
	FutureVal   *Future
	HandleVal   *Handle
}

// Array is the backing store of an ArrayBox. It is shared by every handle
// aliasing the collection, so all access after construction goes through the
// guarded methods below; Elems may be touched directly only while building a
// value that no other interpreter can see yet.
type Array struct {
	mu    sync.Mutex
	Elems []Value
}

// Len returns the element count.
func (a *Array) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Elems)
}

// Append adds v at the end.
func (a *Array) Append(v Value) {
	a.mu.Lock()
	a.Elems = append(a.Elems, v)
	a.mu.Unlock()
}

// Pop removes and returns the last element.
func (a *Array) Pop() (Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.Elems)
	if n == 0 {
		return NullValue(), false
	}
	last := a.Elems[n-1]
	a.Elems = a.Elems[:n-1]
	return last, true
}

// At returns the element at i, reporting whether i is in range.
func (a *Array) At(i int64) (Value, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= int64(len(a.Elems)) {
		return NullValue(), false
	}
	return a.Elems[i], true
}

// SetAt replaces the element at i, reporting whether i is in range.
func (a *Array) SetAt(i int64, v Value) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= int64(len(a.Elems)) {
		return false
	}
	a.Elems[i] = v
	return true
}

// Snapshot returns an independent copy of the element slice, so iteration
// never holds the lock and self-referential structures cannot deadlock.
func (a *Array) Snapshot() []Value {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Value(nil), a.Elems...)
}

// Map is the backing store of a MapBox, keyed by string. The same sharing
// discipline as Array applies.
type Map struct {
	mu      sync.Mutex
	Entries map[string]Value
}

// Len returns the entry count.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Entries[key]
	return v, ok
}

// Set stores v under key.
func (m *Map) Set(key string, v Value) {
	m.mu.Lock()
	if m.Entries == nil {
		m.Entries = make(map[string]Value)
	}
	m.Entries[key] = v
	m.mu.Unlock()
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Entries[key]
	return ok
}

// Keys returns the sorted key set.
func (m *Map) Keys() []string {
	m.mu.Lock()
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	m.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Snapshot returns an independent copy of the entries.
func (m *Map) Snapshot() map[string]Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make(map[string]Value, len(m.Entries))
	for k, v := range m.Entries {
		entries[k] = v
	}
	return entries
}

// NullValue returns the null Box.
func NullValue() Value {
	return Value{Type: TypeNull}
}

// BoolValue creates a BoolBox value.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, BoolVal: b}
}

// IntegerValue creates an IntegerBox value.
func IntegerValue(n int64) Value {
	return Value{Type: TypeInteger, IntVal: n}
}

// FloatValue creates a FloatBox value.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, FloatVal: f}
}

// StringValue creates a StringBox value.
func StringValue(s string) Value {
	return Value{Type: TypeString, StringVal: s}
}

// ArrayValue creates an ArrayBox value backed by arr.
func ArrayValue(arr *Array) Value {
	if arr == nil {
		arr = &Array{}
	}
	return Value{Type: TypeArray, ArrayVal: arr}
}

// MapValue creates a MapBox value backed by m.
func MapValue(m *Map) Value {
	if m == nil {
		m = &Map{Entries: make(map[string]Value)}
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Value)
	}
	return Value{Type: TypeMap, MapVal: m}
}

// InstanceValue creates a handle to an Instance.
func InstanceValue(inst *Instance) Value {
	return Value{Type: TypeInstance, InstanceVal: inst}
}

// FutureValue creates a handle to a Future.
func FutureValue(f *Future) Value {
	return Value{Type: TypeFuture, FutureVal: f}
}

// HandleValue creates a handle to a plugin-backed Box.
func HandleValue(h *Handle) Value {
	return Value{Type: TypeHandle, HandleVal: h}
}

// IsNull reports whether the value is the null Box.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// TypeName returns the Box type name for this value.
func (v Value) TypeName() string {
	switch v.Type {
	case TypeNull:
		return NullBoxName
	case TypeBool:
		return BoolBoxName
	case TypeInteger:
		return IntegerBoxName
	case TypeFloat:
		return FloatBoxName
	case TypeString:
		return StringBoxName
	case TypeArray:
		return ArrayBoxName
	case TypeMap:
		return MapBoxName
	case TypeInstance:
		return v.InstanceVal.ClassName
	case TypeFuture:
		return FutureBoxName
	case TypeHandle:
		return v.HandleVal.BoxType
	default:
		return fmt.Sprintf("UnknownBox(%d)", int(v.Type))
	}
}

// SharesState reports whether assignment of this value aliases mutable state
// rather than cloning it.
func (v Value) SharesState() bool {
	switch v.Type {
	case TypeInstance, TypeFuture, TypeHandle:
		return true
	}
	return false
}

// Copy implements the assignment copy policy: value clone for primitive and
// collection Boxes, share for Instance, Future and plugin Handle Boxes.
func (v Value) Copy() Value {
	if v.SharesState() {
		return v
	}
	return v.Clone()
}

// Clone produces an independent deep copy of primitive and collection Boxes.
// Share-semantics Boxes return another handle to the same state; their
// identity is never duplicated.
func (v Value) Clone() Value {
	switch v.Type {
	case TypeArray:
		src := v.ArrayVal.Snapshot()
		elems := make([]Value, len(src))
		for i, e := range src {
			elems[i] = e.Clone()
		}
		return ArrayValue(&Array{Elems: elems})
	case TypeMap:
		src := v.MapVal.Snapshot()
		entries := make(map[string]Value, len(src))
		for k, e := range src {
			entries[k] = e.Clone()
		}
		return MapValue(&Map{Entries: entries})
	default:
		return v
	}
}

// IsTruthy reports whether the value counts as true in conditionals.
func (v Value) IsTruthy() bool {
	switch v.Type {
	case TypeNull:
		return false
	case TypeBool:
		return v.BoolVal
	case TypeInteger:
		return v.IntVal != 0
	case TypeFloat:
		return v.FloatVal != 0
	case TypeString:
		return v.StringVal != ""
	default:
		return true
	}
}

// Equals compares two values. Instance and Handle Boxes compare by identity;
// primitives compare by payload.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		// Integer/float comparison crosses the tag boundary.
		if v.isNumeric() && other.isNumeric() {
			return v.asFloat() == other.asFloat()
		}
		return false
	}
	switch v.Type {
	case TypeNull:
		return true
	case TypeBool:
		return v.BoolVal == other.BoolVal
	case TypeInteger:
		return v.IntVal == other.IntVal
	case TypeFloat:
		return v.FloatVal == other.FloatVal
	case TypeString:
		return v.StringVal == other.StringVal
	case TypeInstance:
		return v.InstanceVal.ID == other.InstanceVal.ID
	case TypeFuture:
		return v.FutureVal == other.FutureVal
	case TypeHandle:
		return v.HandleVal.TypeID == other.HandleVal.TypeID &&
			v.HandleVal.InstanceID == other.HandleVal.InstanceID
	case TypeArray:
		a, b := v.ArrayVal.Snapshot(), other.ArrayVal.Snapshot()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equals(b[i]) {
				return false
			}
		}
		return true
	case TypeMap:
		a, b := v.MapVal.Snapshot(), other.MapVal.Snapshot()
		if len(a) != len(b) {
			return false
		}
		for k, e := range a {
			o, ok := b[k]
			if !ok || !e.Equals(o) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) isNumeric() bool {
	return v.Type == TypeInteger || v.Type == TypeFloat
}

func (v Value) asFloat() float64 {
	if v.Type == TypeInteger {
		return float64(v.IntVal)
	}
	return v.FloatVal
}

// AsString renders the value for printing.
func (v Value) AsString() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeBool:
		if v.BoolVal {
			return "true"
		}
		return "false"
	case TypeInteger:
		return strconv.FormatInt(v.IntVal, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.FloatVal, 'f', -1, 64)
	case TypeString:
		return v.StringVal
	case TypeArray:
		elems := v.ArrayVal.Snapshot()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.AsString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeMap:
		entries := v.MapVal.Snapshot()
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + entries[k].AsString()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case TypeInstance:
		return fmt.Sprintf("<%s %s>", v.InstanceVal.ClassName, v.InstanceVal.ID)
	case TypeFuture:
		return "<FutureBox>"
	case TypeHandle:
		return fmt.Sprintf("<%s #%d>", v.HandleVal.BoxType, v.HandleVal.InstanceID)
	}
	return "<?>"
}
