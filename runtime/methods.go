package runtime

import (
	"strings"
)

// BuiltinMethod is one entry in a builtin type's fixed method table.
type BuiltinMethod struct {
	Name  string
	Arity int
	Fn    func(recv Value, args []Value) (Value, error)
}

// The builtin method tables form a closed, enumerable capability set; the
// dispatcher reaches them through a single type-tag lookup rather than any
// per-type virtual mechanism.
var builtinMethods = map[ValueType]map[string]*BuiltinMethod{}

func register(t ValueType, name string, arity int, fn func(Value, []Value) (Value, error)) {
	table, ok := builtinMethods[t]
	if !ok {
		table = make(map[string]*BuiltinMethod)
		builtinMethods[t] = table
	}
	table[name] = &BuiltinMethod{Name: name, Arity: arity, Fn: fn}
}

// CallBuiltinMethod dispatches a method on a builtin Box value, checking
// the method name and arity against the fixed table.
func CallBuiltinMethod(recv Value, name string, args []Value) (Value, error) {
	table, ok := builtinMethods[recv.Type]
	if !ok {
		return NullValue(), NewError(UndefinedMethod,
			"%s has no methods", recv.TypeName())
	}
	m, ok := table[name]
	if !ok {
		return NullValue(), NewError(UndefinedMethod,
			"undefined method '%s' on %s", name, recv.TypeName())
	}
	if len(args) != m.Arity {
		return NullValue(), NewError(WrongNumberOfArguments,
			"%s.%s expects %d argument(s), got %d", recv.TypeName(), name, m.Arity, len(args))
	}
	return m.Fn(recv, args)
}

// HasBuiltinMethod reports whether the builtin type of recv defines name.
func HasBuiltinMethod(recv Value, name string) bool {
	table, ok := builtinMethods[recv.Type]
	if !ok {
		return false
	}
	_, ok = table[name]
	return ok
}

func wantInt(v Value, what string) (int64, error) {
	if v.Type != TypeInteger {
		return 0, NewError(TypeError, "%s must be an IntegerBox, got %s", what, v.TypeName())
	}
	return v.IntVal, nil
}

func init() {
	// Every builtin understands toString and equals.
	for _, t := range []ValueType{TypeNull, TypeBool, TypeInteger, TypeFloat, TypeString, TypeArray, TypeMap} {
		tt := t
		register(tt, "toString", 0, func(recv Value, _ []Value) (Value, error) {
			return StringValue(recv.AsString()), nil
		})
		register(tt, "equals", 1, func(recv Value, args []Value) (Value, error) {
			return BoolValue(recv.Equals(args[0])), nil
		})
	}

	register(TypeBool, "not", 0, func(recv Value, _ []Value) (Value, error) {
		return BoolValue(!recv.BoolVal), nil
	})

	register(TypeInteger, "abs", 0, func(recv Value, _ []Value) (Value, error) {
		if recv.IntVal < 0 {
			return IntegerValue(-recv.IntVal), nil
		}
		return recv, nil
	})

	register(TypeFloat, "floor", 0, func(recv Value, _ []Value) (Value, error) {
		return IntegerValue(int64(recv.FloatVal)), nil
	})

	register(TypeString, "length", 0, func(recv Value, _ []Value) (Value, error) {
		return IntegerValue(int64(len(recv.StringVal))), nil
	})
	register(TypeString, "concat", 1, func(recv Value, args []Value) (Value, error) {
		return StringValue(recv.StringVal + args[0].AsString()), nil
	})
	register(TypeString, "contains", 1, func(recv Value, args []Value) (Value, error) {
		if args[0].Type != TypeString {
			return NullValue(), NewError(TypeError,
				"contains expects a StringBox, got %s", args[0].TypeName())
		}
		return BoolValue(strings.Contains(recv.StringVal, args[0].StringVal)), nil
	})
	register(TypeString, "split", 1, func(recv Value, args []Value) (Value, error) {
		if args[0].Type != TypeString {
			return NullValue(), NewError(TypeError,
				"split expects a StringBox, got %s", args[0].TypeName())
		}
		parts := strings.Split(recv.StringVal, args[0].StringVal)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = StringValue(p)
		}
		return ArrayValue(&Array{Elems: elems}), nil
	})

	register(TypeArray, "length", 0, func(recv Value, _ []Value) (Value, error) {
		return IntegerValue(int64(recv.ArrayVal.Len())), nil
	})
	register(TypeArray, "push", 1, func(recv Value, args []Value) (Value, error) {
		recv.ArrayVal.Append(args[0].Copy())
		return recv, nil
	})
	register(TypeArray, "pop", 0, func(recv Value, _ []Value) (Value, error) {
		last, ok := recv.ArrayVal.Pop()
		if !ok {
			return NullValue(), nil
		}
		return last, nil
	})
	register(TypeArray, "get", 1, func(recv Value, args []Value) (Value, error) {
		i, err := wantInt(args[0], "array index")
		if err != nil {
			return NullValue(), err
		}
		v, ok := recv.ArrayVal.At(i)
		if !ok {
			return NullValue(), NewError(InvalidOperation,
				"array index %d out of range (length %d)", i, recv.ArrayVal.Len())
		}
		return v, nil
	})
	register(TypeArray, "set", 2, func(recv Value, args []Value) (Value, error) {
		i, err := wantInt(args[0], "array index")
		if err != nil {
			return NullValue(), err
		}
		if !recv.ArrayVal.SetAt(i, args[1].Copy()) {
			return NullValue(), NewError(InvalidOperation,
				"array index %d out of range (length %d)", i, recv.ArrayVal.Len())
		}
		return recv, nil
	})

	register(TypeMap, "size", 0, func(recv Value, _ []Value) (Value, error) {
		return IntegerValue(int64(recv.MapVal.Len())), nil
	})
	register(TypeMap, "get", 1, func(recv Value, args []Value) (Value, error) {
		if args[0].Type != TypeString {
			return NullValue(), NewError(TypeError,
				"map key must be a StringBox, got %s", args[0].TypeName())
		}
		v, ok := recv.MapVal.Get(args[0].StringVal)
		if !ok {
			return NullValue(), nil
		}
		return v, nil
	})
	register(TypeMap, "set", 2, func(recv Value, args []Value) (Value, error) {
		if args[0].Type != TypeString {
			return NullValue(), NewError(TypeError,
				"map key must be a StringBox, got %s", args[0].TypeName())
		}
		recv.MapVal.Set(args[0].StringVal, args[1].Copy())
		return recv, nil
	})
	register(TypeMap, "has", 1, func(recv Value, args []Value) (Value, error) {
		if args[0].Type != TypeString {
			return NullValue(), NewError(TypeError,
				"map key must be a StringBox, got %s", args[0].TypeName())
		}
		return BoolValue(recv.MapVal.Has(args[0].StringVal)), nil
	})
	register(TypeMap, "keys", 0, func(recv Value, _ []Value) (Value, error) {
		keys := recv.MapVal.Keys()
		elems := make([]Value, len(keys))
		for i, k := range keys {
			elems[i] = StringValue(k)
		}
		return ArrayValue(&Array{Elems: elems}), nil
	})
}
