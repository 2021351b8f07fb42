// Package ast defines the instruction tree consumed by the Nyash runtime.
//
// The tree is produced by an external parser; the runtime only walks it.
// Every datum in Nyash is a Box, so the declaration nodes here describe Box
// classes (`box`), singleton Boxes (`static box`) and free static functions.
package ast

import "fmt"

// Position represents a source location.
type Position struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
}

func (p Position) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Node is the interface implemented by all instruction tree nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	PosVal Position
	Value  int64
}

func (n *IntLiteral) Pos() Position { return n.PosVal }
func (n *IntLiteral) node()         {}
func (n *IntLiteral) expr()         {}

// FloatLiteral represents a floating-point literal.
type FloatLiteral struct {
	PosVal Position
	Value  float64
}

func (n *FloatLiteral) Pos() Position { return n.PosVal }
func (n *FloatLiteral) node()         {}
func (n *FloatLiteral) expr()         {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	PosVal Position
	Value  string
}

func (n *StringLiteral) Pos() Position { return n.PosVal }
func (n *StringLiteral) node()         {}
func (n *StringLiteral) expr()         {}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	PosVal Position
	Value  bool
}

func (n *BoolLiteral) Pos() Position { return n.PosVal }
func (n *BoolLiteral) node()         {}
func (n *BoolLiteral) expr()         {}

// NullLiteral represents the null Box.
type NullLiteral struct {
	PosVal Position
}

func (n *NullLiteral) Pos() Position { return n.PosVal }
func (n *NullLiteral) node()         {}
func (n *NullLiteral) expr()         {}

// ArrayLiteral represents an array literal [a, b, c].
type ArrayLiteral struct {
	PosVal   Position
	Elements []Expr
}

func (n *ArrayLiteral) Pos() Position { return n.PosVal }
func (n *ArrayLiteral) node()         {}
func (n *ArrayLiteral) expr()         {}

// MapEntry is a single key/value pair in a MapLiteral.
type MapEntry struct {
	Key   string
	Value Expr
}

// MapLiteral represents a map literal {"k": v}.
type MapLiteral struct {
	PosVal  Position
	Entries []MapEntry
}

func (n *MapLiteral) Pos() Position { return n.PosVal }
func (n *MapLiteral) node()         {}
func (n *MapLiteral) expr()         {}

// Variable references a named variable. Name may also denote a class,
// singleton or function namespace; the dispatcher decides at call time.
type Variable struct {
	PosVal Position
	Name   string
}

func (n *Variable) Pos() Position { return n.PosVal }
func (n *Variable) node()         {}
func (n *Variable) expr()         {}

// Me references the current receiver inside a method body.
type Me struct {
	PosVal Position
}

func (n *Me) Pos() Position { return n.PosVal }
func (n *Me) node()         {}
func (n *Me) expr()         {}

// FieldAccess reads a field: target.field.
type FieldAccess struct {
	PosVal Position
	Target Expr
	Field  string
}

func (n *FieldAccess) Pos() Position { return n.PosVal }
func (n *FieldAccess) node()         {}
func (n *FieldAccess) expr()         {}

// MethodCall invokes target.method(args).
type MethodCall struct {
	PosVal Position
	Target Expr
	Method string
	Args   []Expr
}

func (n *MethodCall) Pos() Position { return n.PosVal }
func (n *MethodCall) node()         {}
func (n *MethodCall) expr()         {}

// New constructs a Box: new TypeName(args).
type New struct {
	PosVal   Position
	TypeName string
	Args     []Expr
}

func (n *New) Pos() Position { return n.PosVal }
func (n *New) node()         {}
func (n *New) expr()         {}

// FromCall is explicit delegation: from Parent.method(args).
// Parent must appear in the receiver class's extends or implements list.
type FromCall struct {
	PosVal Position
	Parent string
	Method string
	Args   []Expr
}

func (n *FromCall) Pos() Position { return n.PosVal }
func (n *FromCall) node()         {}
func (n *FromCall) expr()         {}

// BinaryOp identifies a binary operator.
type BinaryOp string

const (
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpEq  BinaryOp = "=="
	OpNe  BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLe  BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGe  BinaryOp = ">="
	OpAnd BinaryOp = "&&"
	OpOr  BinaryOp = "||"
)

// Binary applies a binary operator.
type Binary struct {
	PosVal Position
	Op     BinaryOp
	Left   Expr
	Right  Expr
}

func (n *Binary) Pos() Position { return n.PosVal }
func (n *Binary) node()         {}
func (n *Binary) expr()         {}

// Await blocks until a future produced by nowait has a result.
// Awaiting a non-future value yields the value itself.
type Await struct {
	PosVal Position
	Target Expr
}

func (n *Await) Pos() Position { return n.PosVal }
func (n *Await) node()         {}
func (n *Await) expr()         {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// Local declares local variables in the current frame.
type Local struct {
	PosVal Position
	Names  []string
}

func (n *Local) Pos() Position { return n.PosVal }
func (n *Local) node()         {}
func (n *Local) stmt()         {}

// Assign stores Value into Target (a Variable or FieldAccess).
type Assign struct {
	PosVal Position
	Target Expr
	Value  Expr
}

func (n *Assign) Pos() Position { return n.PosVal }
func (n *Assign) node()         {}
func (n *Assign) stmt()         {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	PosVal Position
	X      Expr
}

func (n *ExprStmt) Pos() Position { return n.PosVal }
func (n *ExprStmt) node()         {}
func (n *ExprStmt) stmt()         {}

// Return exits the current method or function. Value may be nil.
type Return struct {
	PosVal Position
	Value  Expr
}

func (n *Return) Pos() Position { return n.PosVal }
func (n *Return) node()         {}
func (n *Return) stmt()         {}

// Break exits the innermost loop.
type Break struct {
	PosVal Position
}

func (n *Break) Pos() Position { return n.PosVal }
func (n *Break) node()         {}
func (n *Break) stmt()         {}

// If is a conditional statement. Else may be nil.
type If struct {
	PosVal Position
	Cond   Expr
	Then   []Stmt
	Else   []Stmt
}

func (n *If) Pos() Position { return n.PosVal }
func (n *If) node()         {}
func (n *If) stmt()         {}

// Loop repeats Body while Cond is truthy. A nil Cond loops until break.
type Loop struct {
	PosVal Position
	Cond   Expr
	Body   []Stmt
}

func (n *Loop) Pos() Position { return n.PosVal }
func (n *Loop) node()         {}
func (n *Loop) stmt()         {}

// TryCatch runs Try; a catchable error binds CatchVar and runs Catch.
type TryCatch struct {
	PosVal   Position
	Try      []Stmt
	CatchVar string
	Catch    []Stmt
}

func (n *TryCatch) Pos() Position { return n.PosVal }
func (n *TryCatch) node()         {}
func (n *TryCatch) stmt()         {}

// Throw raises a user exception value.
type Throw struct {
	PosVal Position
	Value  Expr
}

func (n *Throw) Pos() Position { return n.PosVal }
func (n *Throw) node()         {}
func (n *Throw) stmt()         {}

// Nowait spawns Call on a fresh interpreter sharing the session and binds
// a future to Name: nowait f = expr.
type Nowait struct {
	PosVal Position
	Name   string
	Call   Expr
}

func (n *Nowait) Pos() Position { return n.PosVal }
func (n *Nowait) node()         {}
func (n *Nowait) stmt()         {}

// Print writes a value to the interpreter's output.
type Print struct {
	PosVal Position
	Value  Expr
}

func (n *Print) Pos() Position { return n.PosVal }
func (n *Print) node()         {}
func (n *Print) stmt()         {}
