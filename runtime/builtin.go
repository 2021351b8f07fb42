package runtime

import "github.com/moe-charm/nyash/ast"

var builtinTypeNames = []string{
	NullBoxName, BoolBoxName, IntegerBoxName, FloatBoxName,
	StringBoxName, ArrayBoxName, MapBoxName,
}

// IsBuiltinType reports whether name is a recognized builtin Box type.
func IsBuiltinType(name string) bool {
	for _, n := range builtinTypeNames {
		if n == name {
			return true
		}
	}
	return false
}

// DefaultBoxValue synthesizes the default value of a builtin type. It backs
// the implicit builtin-extends fallback and builtin constructor delegation.
func DefaultBoxValue(name string) (Value, bool) {
	switch name {
	case NullBoxName:
		return NullValue(), true
	case BoolBoxName:
		return BoolValue(false), true
	case IntegerBoxName:
		return IntegerValue(0), true
	case FloatBoxName:
		return FloatValue(0), true
	case StringBoxName:
		return StringValue(""), true
	case ArrayBoxName:
		return ArrayValue(nil), true
	case MapBoxName:
		return MapValue(nil), true
	}
	return Value{}, false
}

// BuiltinFactory constructs the primitive and collection Box types. It is
// always registered first, so builtin names can never be shadowed.
type BuiltinFactory struct{}

// NewBuiltinFactory creates the builtin construction provider.
func NewBuiltinFactory() *BuiltinFactory { return &BuiltinFactory{} }

func (f *BuiltinFactory) BoxTypes() []string { return builtinTypeNames }

func (f *BuiltinFactory) IsAvailable() bool { return true }

// CreateBox builds a builtin Box. Zero arguments yield the type's default
// value; one argument initializes from it.
func (f *BuiltinFactory) CreateBox(name string, args []Value) (Value, error) {
	if len(args) > 1 {
		return NullValue(), NewError(WrongNumberOfArguments,
			"%s constructor takes at most 1 argument, got %d", name, len(args))
	}
	if len(args) == 0 {
		v, ok := DefaultBoxValue(name)
		if !ok {
			return NullValue(), NewError(UnknownType, "unknown builtin Box type '%s'", name)
		}
		return v, nil
	}

	arg := args[0]
	switch name {
	case NullBoxName:
		return NullValue(), nil
	case BoolBoxName:
		return BoolValue(arg.IsTruthy()), nil
	case IntegerBoxName:
		switch arg.Type {
		case TypeInteger:
			return arg, nil
		case TypeFloat:
			return IntegerValue(int64(arg.FloatVal)), nil
		case TypeBool:
			if arg.BoolVal {
				return IntegerValue(1), nil
			}
			return IntegerValue(0), nil
		}
		return NullValue(), NewError(TypeError,
			"cannot build IntegerBox from %s", arg.TypeName())
	case FloatBoxName:
		switch arg.Type {
		case TypeFloat:
			return arg, nil
		case TypeInteger:
			return FloatValue(float64(arg.IntVal)), nil
		}
		return NullValue(), NewError(TypeError,
			"cannot build FloatBox from %s", arg.TypeName())
	case StringBoxName:
		return StringValue(arg.AsString()), nil
	case ArrayBoxName:
		if arg.Type == TypeArray {
			return arg.Clone(), nil
		}
		return ArrayValue(&Array{Elems: []Value{arg.Copy()}}), nil
	case MapBoxName:
		if arg.Type == TypeMap {
			return arg.Clone(), nil
		}
		return NullValue(), NewError(TypeError,
			"cannot build MapBox from %s", arg.TypeName())
	}
	return NullValue(), NewError(UnknownType, "unknown builtin Box type '%s'", name)
}

// UserFactory constructs bare instances of declared box classes. Running the
// constructor body is the interpreter's job; construction here only allocates
// storage and binds the method table handle.
type UserFactory struct {
	classes *ClassTable
}

// NewUserFactory creates the user-defined construction provider.
func NewUserFactory(classes *ClassTable) *UserFactory {
	return &UserFactory{classes: classes}
}

func (f *UserFactory) BoxTypes() []string { return f.classes.Names() }

func (f *UserFactory) IsAvailable() bool { return true }

func (f *UserFactory) CreateBox(name string, args []Value) (Value, error) {
	decl, ok := f.classes.Lookup(name)
	if !ok {
		return NullValue(), NewError(UnknownType, "no declaration for Box type '%s'", name)
	}
	if decl.Interface {
		return NullValue(), NewError(InvalidOperation,
			"cannot instantiate interface box '%s'", name)
	}
	if err := checkDelegationTargets(f.classes, decl); err != nil {
		return NullValue(), err
	}
	return InstanceValue(NewInstance(decl)), nil
}

// checkDelegationTargets enforces, at first use, that every extends and
// implements entry names a declared box or a builtin type.
func checkDelegationTargets(classes *ClassTable, decl *ast.BoxDecl) error {
	for _, parent := range decl.Extends {
		if !classes.KnownTarget(parent) {
			return NewError(UndefinedClass,
				"box '%s' extends unknown type '%s'", decl.Name, parent)
		}
	}
	for _, parent := range decl.Implements {
		if !classes.KnownTarget(parent) {
			return NewError(UndefinedClass,
				"box '%s' implements unknown type '%s'", decl.Name, parent)
		}
	}
	return nil
}
