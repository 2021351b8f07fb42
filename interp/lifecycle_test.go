package interp

import (
	"testing"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

func TestFiniBodyRunsOnce(t *testing.T) {
	res := boxDecl("Res")
	res.Methods["fini"] = method("fini", nil,
		assign(id("finis"), bin(ast.OpAdd, id("finis"), num(1))))

	got := runProgram(t, res,
		assign(id("finis"), num(0)),
		assign(id("r"), newBox("Res")),
		exprStmt(call(id("r"), "fini")),
		exprStmt(call(id("r"), "fini")),
		ret(id("finis")),
	)
	if got.IntVal != 1 {
		t.Fatalf("fini body ran %d times, want 1", got.IntVal)
	}
}

func TestFiniWithoutBodySucceeds(t *testing.T) {
	plain := boxDecl("Plain")
	got := runProgram(t, plain,
		assign(id("p"), newBox("Plain")),
		exprStmt(call(id("p"), "fini")),
		ret(str("ok")),
	)
	if got.StringVal != "ok" {
		t.Fatal("fini on a class without a fini body should be a no-op")
	}
}

func TestWeakFieldReadsNullAfterFini(t *testing.T) {
	pet := boxDecl("Pet")
	holder := boxDecl("Holder")
	holder.Fields = []string{"ref"}
	holder.WeakFields = []string{"ref"}

	got := runProgram(t, pet, holder,
		assign(id("p"), newBox("Pet")),
		assign(id("h"), newBox("Holder")),
		assign(field(id("h"), "ref"), id("p")),
		exprStmt(call(id("p"), "fini")),
		ret(field(id("h"), "ref")),
	)
	if got.Type != runtime.TypeNull {
		t.Fatalf("h.ref after p.fini() = %s, want null", got.AsString())
	}
}

func TestWeakFieldStaysLiveBeforeFini(t *testing.T) {
	pet := boxDecl("Pet")
	holder := boxDecl("Holder")
	holder.Fields = []string{"ref"}
	holder.WeakFields = []string{"ref"}

	got := runProgram(t, pet, holder,
		assign(id("p"), newBox("Pet")),
		assign(id("h"), newBox("Holder")),
		assign(field(id("h"), "ref"), id("p")),
		ret(&ast.Binary{Op: ast.OpEq, Left: field(id("h"), "ref"), Right: id("p")}),
	)
	if !got.BoolVal {
		t.Fatal("weak field lost its referent while it was still alive")
	}
}

func TestFiniThroughWeakFieldRejected(t *testing.T) {
	pet := boxDecl("Pet")
	holder := boxDecl("Holder")
	holder.Fields = []string{"ref"}
	holder.WeakFields = []string{"ref"}

	err := runExpectError(t, pet, holder,
		assign(id("p"), newBox("Pet")),
		assign(id("h"), newBox("Holder")),
		assign(field(id("h"), "ref"), id("p")),
		exprStmt(call(field(id("h"), "ref"), "fini")),
	)
	if !runtime.IsKind(err, runtime.InvalidOperation) {
		t.Fatalf("fini through weak field: %v, want InvalidOperation", err)
	}
}

func TestFiniThroughStrongFieldAllowed(t *testing.T) {
	pet := boxDecl("Pet")
	owner := boxDecl("Owner")
	owner.Fields = []string{"pet"}

	got := runProgram(t, pet, owner,
		assign(id("p"), newBox("Pet")),
		assign(id("o"), newBox("Owner")),
		assign(field(id("o"), "pet"), id("p")),
		exprStmt(call(field(id("o"), "pet"), "fini")),
		ret(str("ok")),
	)
	if got.StringVal != "ok" {
		t.Fatal("fini through owning field should succeed")
	}
}

func TestFiniFlagCommitsEvenWhenBodyFails(t *testing.T) {
	bomb := boxDecl("Bomb")
	bomb.Methods["fini"] = method("fini", nil, &ast.Throw{Value: str("bang")})
	holder := boxDecl("Holder")
	holder.Fields = []string{"ref"}
	holder.WeakFields = []string{"ref"}

	got := runProgram(t, bomb, holder,
		assign(id("b"), newBox("Bomb")),
		assign(id("h"), newBox("Holder")),
		assign(field(id("h"), "ref"), id("b")),
		&ast.TryCatch{
			Try:   []ast.Stmt{exprStmt(call(id("b"), "fini"))},
			Catch: []ast.Stmt{},
		},
		ret(field(id("h"), "ref")),
	)
	if got.Type != runtime.TypeNull {
		t.Fatal("finalized flag must commit even when the fini body throws")
	}
}

func TestFiniReceiverEvaluatedOnce(t *testing.T) {
	pet := boxDecl("Pet")
	owner := boxDecl("Owner")
	owner.Fields = []string{"pet"}

	registry := &ast.StaticBoxDecl{
		BoxDecl: ast.BoxDecl{
			Name:   "Registry",
			Fields: []string{"calls", "owner"},
			Methods: map[string]*ast.Method{
				"get": method("get", nil,
					assign(field(me(), "calls"), bin(ast.OpAdd, field(me(), "calls"), num(1))),
					ret(field(me(), "owner"))),
			},
			Constructors: map[string]*ast.Method{},
		},
		Init: []ast.Stmt{assign(field(me(), "calls"), num(0))},
	}

	got := runProgram(t, pet, owner, registry,
		assign(id("p"), newBox("Pet")),
		assign(id("o"), newBox("Owner")),
		assign(field(id("o"), "pet"), id("p")),
		assign(field(id("Registry"), "owner"), id("o")),
		exprStmt(call(field(call(id("Registry"), "get"), "pet"), "fini")),
		ret(field(id("Registry"), "calls")),
	)
	if got.IntVal != 1 {
		t.Fatalf("Registry.get ran %d times for one fini call, want 1", got.IntVal)
	}
}

func TestFiniTakesNoArguments(t *testing.T) {
	plain := boxDecl("Plain")
	err := runExpectError(t, plain,
		assign(id("p"), newBox("Plain")),
		exprStmt(call(id("p"), "fini", num(1))),
	)
	if !runtime.IsKind(err, runtime.WrongNumberOfArguments) {
		t.Fatalf("fini(1): %v", err)
	}
}
