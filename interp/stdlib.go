package interp

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/moe-charm/nyash/runtime"
)

// stdlibFunc is a standard-library namespace method. These form dispatch
// tier 2: qualified free calls like console.log("x") that are neither static
// functions nor singleton methods.
type stdlibFunc func(in *Interpreter, args []runtime.Value) (runtime.Value, error)

var consoleLog = commonlog.GetLogger("nyash.console")

var stdlibNamespaces = map[string]map[string]stdlibFunc{
	"console": {
		"log": func(in *Interpreter, args []runtime.Value) (runtime.Value, error) {
			parts := make([]any, len(args))
			for i, a := range args {
				parts[i] = a.AsString()
			}
			fmt.Fprintln(in.out, parts...)
			return runtime.NullValue(), nil
		},
		"error": func(in *Interpreter, args []runtime.Value) (runtime.Value, error) {
			for _, a := range args {
				consoleLog.Errorf("%s", a.AsString())
			}
			return runtime.NullValue(), nil
		},
	},
	"math": {
		"min": func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			return pickNumeric(args, "math.min", func(a, b float64) bool { return a < b })
		},
		"max": func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			return pickNumeric(args, "math.max", func(a, b float64) bool { return a > b })
		},
		"abs": func(_ *Interpreter, args []runtime.Value) (runtime.Value, error) {
			if len(args) != 1 {
				return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
					"math.abs expects 1 argument, got %d", len(args))
			}
			switch args[0].Type {
			case runtime.TypeInteger:
				if args[0].IntVal < 0 {
					return runtime.IntegerValue(-args[0].IntVal), nil
				}
				return args[0], nil
			case runtime.TypeFloat:
				if args[0].FloatVal < 0 {
					return runtime.FloatValue(-args[0].FloatVal), nil
				}
				return args[0], nil
			}
			return runtime.NullValue(), runtime.NewError(runtime.TypeError,
				"math.abs expects a number, got %s", args[0].TypeName())
		},
	},
}

func lookupStdlib(namespace, method string) (stdlibFunc, bool) {
	group, ok := stdlibNamespaces[namespace]
	if !ok {
		return nil, false
	}
	fn, ok := group[method]
	return fn, ok
}

func pickNumeric(args []runtime.Value, what string, better func(a, b float64) bool) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NullValue(), runtime.NewError(runtime.WrongNumberOfArguments,
			"%s expects at least 1 argument", what)
	}
	best := args[0]
	for _, a := range args {
		if a.Type != runtime.TypeInteger && a.Type != runtime.TypeFloat {
			return runtime.NullValue(), runtime.NewError(runtime.TypeError,
				"%s expects numbers, got %s", what, a.TypeName())
		}
		if better(asF(a), asF(best)) {
			best = a
		}
	}
	return best, nil
}
