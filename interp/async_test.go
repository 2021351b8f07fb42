package interp

import (
	"testing"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

func TestNowaitProducesFuture(t *testing.T) {
	fn := &ast.FunctionDecl{
		BoxName: "Jobs", Name: "work",
		Body: []ast.Stmt{ret(bin(ast.OpMul, num(6), num(7)))},
	}
	got := runProgram(t, fn,
		&ast.Nowait{Name: "f", Call: call(id("Jobs"), "work")},
		ret(call(id("f"), "get")),
	)
	if got.IntVal != 42 {
		t.Fatalf("f.get() = %s, want 42", got.AsString())
	}
}

func TestAwaitUnwrapsFuture(t *testing.T) {
	fn := &ast.FunctionDecl{
		BoxName: "Jobs", Name: "work",
		Body: []ast.Stmt{ret(str("done"))},
	}
	got := runProgram(t, fn,
		&ast.Nowait{Name: "f", Call: call(id("Jobs"), "work")},
		ret(&ast.Await{Target: id("f")}),
	)
	if got.StringVal != "done" {
		t.Fatalf("await f = %q", got.AsString())
	}
}

func TestAwaitOnPlainValue(t *testing.T) {
	got := runProgram(t, ret(&ast.Await{Target: num(5)}))
	if got.IntVal != 5 {
		t.Fatalf("await 5 = %s", got.AsString())
	}
}

func TestFutureReadyAfterGet(t *testing.T) {
	fn := &ast.FunctionDecl{
		BoxName: "Jobs", Name: "work",
		Body: []ast.Stmt{ret(num(1))},
	}
	got := runProgram(t, fn,
		&ast.Nowait{Name: "f", Call: call(id("Jobs"), "work")},
		exprStmt(call(id("f"), "get")),
		ret(call(id("f"), "ready")),
	)
	if !got.BoolVal {
		t.Fatal("f.ready() = false after a completed get")
	}
}

func TestFutureSurfacesTaskFailure(t *testing.T) {
	got := runProgram(t,
		&ast.Nowait{Name: "f", Call: bin(ast.OpDiv, num(1), num(0))},
		&ast.TryCatch{
			Try:      []ast.Stmt{exprStmt(call(id("f"), "get"))},
			CatchVar: "e",
			Catch:    []ast.Stmt{ret(call(id("e"), "get", str("kind")))},
		},
	)
	if got.StringVal != "InvalidOperation" {
		t.Fatalf("surfaced kind = %q", got.AsString())
	}
}

func TestNowaitTasksShareSession(t *testing.T) {
	counter := &ast.StaticBoxDecl{
		BoxDecl: ast.BoxDecl{
			Name:   "Tally",
			Fields: []string{"n"},
			Methods: map[string]*ast.Method{
				"bump": method("bump", nil,
					assign(field(me(), "n"), bin(ast.OpAdd, field(me(), "n"), num(1))),
					ret(field(me(), "n"))),
			},
			Constructors: map[string]*ast.Method{},
		},
		Init: []ast.Stmt{assign(field(me(), "n"), num(0))},
	}
	got := runProgram(t, counter,
		exprStmt(call(id("Tally"), "bump")),
		&ast.Nowait{Name: "f", Call: call(id("Tally"), "bump")},
		exprStmt(call(id("f"), "get")),
		ret(field(id("Tally"), "n")),
	)
	if got.IntVal != 2 {
		t.Fatalf("Tally.n = %s, want 2 (worker must see the same singleton)", got.AsString())
	}
}

func TestFutureReadyIsNonBlocking(t *testing.T) {
	f := runtime.NewFuture()
	if f.Ready() {
		t.Fatal("fresh future reports ready")
	}
	f.Complete(runtime.IntegerValue(9), nil)
	if !f.Ready() {
		t.Fatal("completed future reports not ready")
	}
	v, err := f.Wait()
	if err != nil || v.IntVal != 9 {
		t.Fatalf("Wait = %v, %v", v, err)
	}
}
