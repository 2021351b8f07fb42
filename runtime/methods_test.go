package runtime

import (
	"sync"
	"testing"
)

func TestBuiltinMethodResolution(t *testing.T) {
	s := StringValue("hello,world")

	got, err := CallBuiltinMethod(s, "length", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntVal != 11 {
		t.Fatalf("length = %d, want 11", got.IntVal)
	}

	_, err = CallBuiltinMethod(s, "shout", nil)
	if !IsKind(err, UndefinedMethod) {
		t.Fatalf("unknown method: %v, want UndefinedMethod", err)
	}

	_, err = CallBuiltinMethod(s, "concat", nil)
	if !IsKind(err, WrongNumberOfArguments) {
		t.Fatalf("bad arity: %v, want WrongNumberOfArguments", err)
	}
}

func TestStringSplit(t *testing.T) {
	got, err := CallBuiltinMethod(StringValue("a,b,c"), "split", []Value{StringValue(",")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != TypeArray || len(got.ArrayVal.Elems) != 3 {
		t.Fatalf("split = %s", got.AsString())
	}
	if got.ArrayVal.Elems[2].StringVal != "c" {
		t.Fatalf("split[2] = %q", got.ArrayVal.Elems[2].StringVal)
	}
}

func TestArrayMutators(t *testing.T) {
	arr := ArrayValue(&Array{})
	if _, err := CallBuiltinMethod(arr, "push", []Value{IntegerValue(7)}); err != nil {
		t.Fatal(err)
	}
	got, err := CallBuiltinMethod(arr, "get", []Value{IntegerValue(0)})
	if err != nil {
		t.Fatal(err)
	}
	if got.IntVal != 7 {
		t.Fatalf("get(0) = %d", got.IntVal)
	}
	_, err = CallBuiltinMethod(arr, "get", []Value{IntegerValue(3)})
	if !IsKind(err, InvalidOperation) {
		t.Fatalf("out-of-range get: %v", err)
	}
	_, err = CallBuiltinMethod(arr, "get", []Value{StringValue("0")})
	if !IsKind(err, TypeError) {
		t.Fatalf("string index: %v", err)
	}
	popped, err := CallBuiltinMethod(arr, "pop", nil)
	if err != nil || popped.IntVal != 7 {
		t.Fatalf("pop = %v, %v", popped, err)
	}
	empty, err := CallBuiltinMethod(arr, "pop", nil)
	if err != nil || empty.Type != TypeNull {
		t.Fatalf("pop on empty = %v, %v", empty, err)
	}
}

func TestMapMethods(t *testing.T) {
	m := MapValue(&Map{Entries: map[string]Value{}})
	if _, err := CallBuiltinMethod(m, "set", []Value{StringValue("b"), IntegerValue(2)}); err != nil {
		t.Fatal(err)
	}
	if _, err := CallBuiltinMethod(m, "set", []Value{StringValue("a"), IntegerValue(1)}); err != nil {
		t.Fatal(err)
	}
	has, err := CallBuiltinMethod(m, "has", []Value{StringValue("a")})
	if err != nil || !has.BoolVal {
		t.Fatalf("has(a) = %v, %v", has, err)
	}
	missing, err := CallBuiltinMethod(m, "get", []Value{StringValue("z")})
	if err != nil || missing.Type != TypeNull {
		t.Fatalf("get(z) = %v, %v", missing, err)
	}
	keys, err := CallBuiltinMethod(m, "keys", nil)
	if err != nil {
		t.Fatal(err)
	}
	if keys.ArrayVal.Elems[0].StringVal != "a" || keys.ArrayVal.Elems[1].StringVal != "b" {
		t.Fatalf("keys not sorted: %s", keys.AsString())
	}
}

func TestConcurrentCollectionMutation(t *testing.T) {
	// Collections are aliased by share-semantics instance fields, so their
	// backing stores must tolerate mutation from concurrent interpreters.
	arr := ArrayValue(&Array{})
	m := MapValue(&Map{})
	const writers = 2
	const perWriter = 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := CallBuiltinMethod(arr, "push", []Value{IntegerValue(1)}); err != nil {
					t.Errorf("push: %v", err)
					return
				}
				if _, err := CallBuiltinMethod(m, "set",
					[]Value{StringValue("k"), IntegerValue(int64(w))}); err != nil {
					t.Errorf("map set: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if got := arr.ArrayVal.Len(); got != writers*perWriter {
		t.Fatalf("array length = %d, want %d", got, writers*perWriter)
	}
	if got := m.MapVal.Len(); got != 1 {
		t.Fatalf("map size = %d, want 1", got)
	}
}

func BenchmarkBuiltinDispatch(b *testing.B) {
	recv := StringValue("benchmark")
	for i := 0; i < b.N; i++ {
		if _, err := CallBuiltinMethod(recv, "length", nil); err != nil {
			b.Fatal(err)
		}
	}
}
