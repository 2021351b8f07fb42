package runtime

import (
	"testing"

	"github.com/moe-charm/nyash/ast"
)

func TestRegisterRejectsDuplicateField(t *testing.T) {
	tab := NewClassTable()
	err := tab.Register(&ast.BoxDecl{Name: "Point", Fields: []string{"x", "x"}})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("duplicate field: %v, want InvalidOperation", err)
	}
}

func TestRegisterRejectsBadWeakMarks(t *testing.T) {
	tab := NewClassTable()
	err := tab.Register(&ast.BoxDecl{
		Name:       "Node",
		Fields:     []string{"next"},
		WeakFields: []string{"prev"},
	})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("weak on undeclared field: %v", err)
	}
	err = tab.Register(&ast.BoxDecl{
		Name:       "Node",
		Fields:     []string{"next"},
		WeakFields: []string{"next", "next"},
	})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("field marked weak twice: %v", err)
	}
}

func TestRegisterRejectsUndeclaredPublicField(t *testing.T) {
	tab := NewClassTable()
	err := tab.Register(&ast.BoxDecl{
		Name:         "User",
		Fields:       []string{"name"},
		PublicFields: []string{"email"},
	})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("public on undeclared field: %v", err)
	}
}

func TestNameCollisionAcrossKinds(t *testing.T) {
	tab := NewClassTable()
	if err := tab.Register(&ast.BoxDecl{Name: "Log"}); err != nil {
		t.Fatal(err)
	}
	err := tab.RegisterStatic(&ast.StaticBoxDecl{BoxDecl: ast.BoxDecl{Name: "Log"}})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("static shadowing box: %v", err)
	}
	if err := tab.RegisterStatic(&ast.StaticBoxDecl{BoxDecl: ast.BoxDecl{Name: "Env"}}); err != nil {
		t.Fatal(err)
	}
	err = tab.Register(&ast.BoxDecl{Name: "Env"})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("box shadowing static: %v", err)
	}
}

func TestKnownTarget(t *testing.T) {
	tab := NewClassTable()
	if err := tab.Register(&ast.BoxDecl{Name: "Animal"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Animal", "StringBox", "IntegerBox"} {
		if !tab.KnownTarget(name) {
			t.Errorf("KnownTarget(%q) = false", name)
		}
	}
	if tab.KnownTarget("Ghost") {
		t.Error("KnownTarget(Ghost) = true")
	}
}
