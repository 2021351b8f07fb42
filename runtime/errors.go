package runtime

import (
	"errors"
	"fmt"

	"github.com/moe-charm/nyash/ast"
)

// ErrorKind classifies runtime failures.
type ErrorKind int

const (
	// UnknownType: no factory can construct the requested Box type.
	UnknownType ErrorKind = iota
	// UndefinedClass: a class or singleton name is not declared.
	UndefinedClass
	// UndefinedVariable: a variable name resolves to nothing.
	UndefinedVariable
	// UndefinedFunction: a static function name resolves to nothing.
	UndefinedFunction
	// UndefinedMethod: method lookup failed on the receiver.
	UndefinedMethod
	// WrongNumberOfArguments: arity mismatch at a call site.
	WrongNumberOfArguments
	// TypeError: wrong runtime type for an operation.
	TypeError
	// InvalidOperation: policy violation (private-field access, weak fini,
	// non-delegating from, cyclic singleton init, ...).
	InvalidOperation
	// RuntimeFailure: internal invariant violation. Never catchable.
	RuntimeFailure
)

var kindNames = [...]string{
	UnknownType:            "UnknownType",
	UndefinedClass:         "UndefinedClass",
	UndefinedVariable:      "UndefinedVariable",
	UndefinedFunction:      "UndefinedFunction",
	UndefinedMethod:        "UndefinedMethod",
	WrongNumberOfArguments: "WrongNumberOfArguments",
	TypeError:              "TypeError",
	InvalidOperation:       "InvalidOperation",
	RuntimeFailure:         "RuntimeFailure",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single concrete error type produced by the runtime.
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     ast.Position
}

func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Catchable reports whether a user-level try/catch may intercept this error.
// RuntimeFailure terminates the current execution instead.
func (e *Error) Catchable() bool {
	return e.Kind != RuntimeFailure
}

// NewError builds a runtime error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At attaches a source position when one is known. The first position wins;
// later wrapping never overwrites where the error originated.
func (e *Error) At(pos ast.Position) *Error {
	if e.Pos.Line == 0 {
		e.Pos = pos
	}
	return e
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsKind reports whether err is a runtime error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	re, ok := AsError(err)
	return ok && re.Kind == kind
}
