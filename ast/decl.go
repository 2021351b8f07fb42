package ast

import "fmt"

// Method is a method or constructor body attached to a box declaration.
type Method struct {
	PosVal Position
	Name   string
	Params []string
	Body   []Stmt
}

func (n *Method) Pos() Position { return n.PosVal }
func (n *Method) node()         {}

// Arity returns the number of declared parameters.
func (n *Method) Arity() int { return len(n.Params) }

// ConstructorKey builds the "<name>/<arity>" key used to index constructors.
func ConstructorKey(name string, arity int) string {
	return fmt.Sprintf("%s/%d", name, arity)
}

// BoxDecl declares a user-defined Box class.
//
// PublicFields is nil when the declaration has no public/private partition,
// in which case every field is public. WeakFields marks non-owning fields.
// Extends is an ordered multi-delegation list; delegation to user-defined
// entries is only ever explicit (via FromCall).
type BoxDecl struct {
	PosVal       Position
	Name         string
	Fields       []string
	PublicFields []string
	WeakFields   []string
	Methods      map[string]*Method
	Constructors map[string]*Method // keyed "<ctorName>/<arity>"
	Extends      []string
	Implements   []string
	Interface    bool
}

func (n *BoxDecl) Pos() Position { return n.PosVal }
func (n *BoxDecl) node()         {}
func (n *BoxDecl) stmt()         {}

// HasField reports whether name is a declared field.
func (n *BoxDecl) HasField(name string) bool {
	for _, f := range n.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// IsPublic reports whether name may be accessed from outside the instance.
func (n *BoxDecl) IsPublic(name string) bool {
	if n.PublicFields == nil {
		return true
	}
	for _, f := range n.PublicFields {
		if f == name {
			return true
		}
	}
	return false
}

// IsWeak reports whether name is marked as a weak (non-owning) field.
func (n *BoxDecl) IsWeak(name string) bool {
	for _, f := range n.WeakFields {
		if f == name {
			return true
		}
	}
	return false
}

// DelegatesTo reports whether parent appears in extends or implements.
func (n *BoxDecl) DelegatesTo(parent string) bool {
	for _, e := range n.Extends {
		if e == parent {
			return true
		}
	}
	for _, e := range n.Implements {
		if e == parent {
			return true
		}
	}
	return false
}

// StaticBoxDecl declares a singleton Box. Init is the optional one-shot
// initializer body run with me bound to the freshly published instance.
type StaticBoxDecl struct {
	BoxDecl
	Init []Stmt
}

// FunctionDecl declares a free static function grouped under a box name:
// static function BoxName.fn(params) { body }.
type FunctionDecl struct {
	PosVal  Position
	BoxName string
	Name    string
	Params  []string
	Body    []Stmt
}

func (n *FunctionDecl) Pos() Position { return n.PosVal }
func (n *FunctionDecl) node()         {}
func (n *FunctionDecl) stmt()         {}
