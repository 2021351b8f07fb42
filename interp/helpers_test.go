package interp

import (
	"io"
	"testing"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

// Tree builders keeping test programs readable.

func id(name string) *ast.Variable    { return &ast.Variable{Name: name} }
func me() *ast.Me                     { return &ast.Me{} }
func num(n int64) *ast.IntLiteral     { return &ast.IntLiteral{Value: n} }
func str(s string) *ast.StringLiteral { return &ast.StringLiteral{Value: s} }

func field(t ast.Expr, f string) *ast.FieldAccess {
	return &ast.FieldAccess{Target: t, Field: f}
}

func call(t ast.Expr, method string, args ...ast.Expr) *ast.MethodCall {
	return &ast.MethodCall{Target: t, Method: method, Args: args}
}

func from(parent, method string, args ...ast.Expr) *ast.FromCall {
	return &ast.FromCall{Parent: parent, Method: method, Args: args}
}

func newBox(typeName string, args ...ast.Expr) *ast.New {
	return &ast.New{TypeName: typeName, Args: args}
}

func bin(op ast.BinaryOp, l, r ast.Expr) *ast.Binary {
	return &ast.Binary{Op: op, Left: l, Right: r}
}

func assign(target ast.Expr, value ast.Expr) *ast.Assign {
	return &ast.Assign{Target: target, Value: value}
}

func exprStmt(e ast.Expr) *ast.ExprStmt { return &ast.ExprStmt{X: e} }
func ret(e ast.Expr) *ast.Return        { return &ast.Return{Value: e} }

func method(name string, params []string, body ...ast.Stmt) *ast.Method {
	return &ast.Method{Name: name, Params: params, Body: body}
}

func boxDecl(name string) *ast.BoxDecl {
	return &ast.BoxDecl{
		Name:         name,
		Methods:      map[string]*ast.Method{},
		Constructors: map[string]*ast.Method{},
	}
}

// runProgram executes stmts on a fresh session and fails the test on error.
func runProgram(t *testing.T, stmts ...ast.Stmt) runtime.Value {
	t.Helper()
	in := New(NewSession())
	in.SetOutput(io.Discard)
	v, err := in.Run(stmts)
	if err != nil {
		t.Fatalf("program failed: %v", err)
	}
	return v
}

// runExpectError executes stmts and returns the error, failing if there is none.
func runExpectError(t *testing.T, stmts ...ast.Stmt) error {
	t.Helper()
	in := New(NewSession())
	in.SetOutput(io.Discard)
	if _, err := in.Run(stmts); err != nil {
		return err
	}
	t.Fatal("program unexpectedly succeeded")
	return nil
}
