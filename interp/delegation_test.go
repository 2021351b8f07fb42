package interp

import (
	"testing"

	"github.com/moe-charm/nyash/ast"
	"github.com/moe-charm/nyash/runtime"
)

func animalDecl() *ast.BoxDecl {
	d := boxDecl("Animal")
	d.Fields = []string{"name"}
	d.Constructors[ast.ConstructorKey("birth", 1)] = method("birth", []string{"n"},
		assign(field(me(), "name"), id("n")))
	d.Methods["who"] = method("who", nil, ret(field(me(), "name")))
	d.Methods["kind"] = method("kind", nil, ret(str("animal")))
	return d
}

func dogDecl() *ast.BoxDecl {
	d := boxDecl("Dog")
	d.Fields = []string{"name"}
	d.Extends = []string{"Animal"}
	d.Constructors[ast.ConstructorKey("birth", 1)] = method("birth", []string{"n"},
		exprStmt(from("Animal", "birth", id("n"))))
	d.Methods["speak"] = method("speak", nil,
		ret(bin(ast.OpAdd, from("Animal", "who"), str("!"))))
	return d
}

func TestNoImplicitUserInheritance(t *testing.T) {
	err := runExpectError(t, animalDecl(), dogDecl(),
		assign(id("d"), newBox("Dog", str("Rex"))),
		ret(call(id("d"), "kind")),
	)
	if !runtime.IsKind(err, runtime.UndefinedMethod) {
		t.Fatalf("d.kind() without explicit delegation: %v, want UndefinedMethod", err)
	}
}

func TestFromRebindsMeToReceiver(t *testing.T) {
	// from Animal.who reads me.name, which the Dog constructor wrote through
	// the delegated Animal constructor into the Dog's own storage.
	got := runProgram(t, animalDecl(), dogDecl(),
		assign(id("d"), newBox("Dog", str("Rex"))),
		ret(call(id("d"), "speak")),
	)
	if got.StringVal != "Rex!" {
		t.Fatalf("d.speak() = %q, want \"Rex!\"", got.AsString())
	}
}

func TestFromRequiresDeclaredParent(t *testing.T) {
	lone := boxDecl("Lone")
	lone.Methods["go"] = method("go", nil, ret(from("Animal", "who")))
	err := runExpectError(t, animalDecl(), lone,
		assign(id("l"), newBox("Lone")),
		ret(call(id("l"), "go")),
	)
	if !runtime.IsKind(err, runtime.InvalidOperation) {
		t.Fatalf("from without extends: %v, want InvalidOperation", err)
	}
}

func TestFromOutsideMethod(t *testing.T) {
	err := runExpectError(t, animalDecl(), ret(from("Animal", "who")))
	if !runtime.IsKind(err, runtime.InvalidOperation) {
		t.Fatalf("top-level from: %v, want InvalidOperation", err)
	}
}

func TestConstructorKeyPrecedence(t *testing.T) {
	parent := boxDecl("Base")
	parent.Fields = []string{"tag"}
	parent.Constructors[ast.ConstructorKey("pack", 1)] = method("pack", []string{"x"},
		assign(field(me(), "tag"), str("pack")))
	parent.Constructors[ast.ConstructorKey("init", 1)] = method("init", []string{"x"},
		assign(field(me(), "tag"), str("init")))

	child := boxDecl("Child")
	child.Fields = []string{"tag"}
	child.Extends = []string{"Base"}
	// The spelled name selects constructor-style dispatch; the key lookup
	// still walks birth, pack, init, Base in order, so pack/1 wins.
	child.Constructors[ast.ConstructorKey("birth", 1)] = method("birth", []string{"x"},
		exprStmt(from("Base", "init", id("x"))))

	got := runProgram(t, parent, child,
		assign(id("c"), newBox("Child", num(0))),
		ret(field(id("c"), "tag")),
	)
	if got.StringVal != "pack" {
		t.Fatalf("c.tag = %q, want \"pack\"", got.AsString())
	}
}

func TestConstructorStyleFromReturnsReceiver(t *testing.T) {
	parent := boxDecl("Base")
	parent.Fields = []string{"tag"}
	parent.Constructors[ast.ConstructorKey("birth", 0)] = method("birth", nil,
		assign(field(me(), "tag"), str("built")))

	child := boxDecl("Child")
	child.Fields = []string{"tag"}
	child.Extends = []string{"Base"}
	child.Constructors[ast.ConstructorKey("birth", 0)] = method("birth", nil)
	child.Methods["chain"] = method("chain", nil, ret(from("Base", "birth")))

	got := runProgram(t, parent, child,
		assign(id("c"), newBox("Child")),
		assign(id("r"), call(id("c"), "chain")),
		ret(&ast.Binary{Op: ast.OpEq, Left: id("r"), Right: id("c")}),
	)
	if !got.BoolVal {
		t.Fatal("constructor-style from did not return the original receiver")
	}
}

func TestBuiltinExtendsFallback(t *testing.T) {
	cat := boxDecl("Cat")
	cat.Extends = []string{"StringBox"}
	cat.Constructors[ast.ConstructorKey("birth", 0)] = method("birth", nil,
		exprStmt(from("StringBox", "birth", str("meow"))))

	got := runProgram(t, cat,
		assign(id("c"), newBox("Cat")),
		ret(call(id("c"), "length")),
	)
	if got.IntVal != 4 {
		t.Fatalf("c.length() = %d, want 4 via the builtin backing value", got.IntVal)
	}
}

func TestBuiltinFallbackWithoutBirthUsesDefault(t *testing.T) {
	blank := boxDecl("Blank")
	blank.Extends = []string{"StringBox"}

	got := runProgram(t, blank,
		assign(id("b"), newBox("Blank")),
		ret(call(id("b"), "length")),
	)
	if got.IntVal != 0 {
		t.Fatalf("length of default backing string = %d, want 0", got.IntVal)
	}
}

func TestFromBuiltinOrdinaryMethod(t *testing.T) {
	shout := boxDecl("Shout")
	shout.Extends = []string{"StringBox"}
	shout.Constructors[ast.ConstructorKey("birth", 0)] = method("birth", nil,
		exprStmt(from("StringBox", "birth", str("hey"))))
	shout.Methods["twice"] = method("twice", nil,
		ret(from("StringBox", "concat", str("hey"))))

	got := runProgram(t, shout,
		assign(id("s"), newBox("Shout")),
		ret(call(id("s"), "twice")),
	)
	if got.StringVal != "heyhey" {
		t.Fatalf("s.twice() = %q", got.AsString())
	}
}

func TestDelegationToUndeclaredClassFailsAtCreation(t *testing.T) {
	orphan := boxDecl("Orphan")
	orphan.Extends = []string{"Missing"}
	err := runExpectError(t, orphan, ret(newBox("Orphan")))
	if !runtime.IsKind(err, runtime.UndefinedClass) {
		t.Fatalf("new Orphan with unknown parent: %v, want UndefinedClass", err)
	}
}
