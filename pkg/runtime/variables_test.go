package runtime

import (
	"errors"
	"testing"
)

func mustSet(t *testing.T, s *Store, name, value string) {
	t.Helper()
	if err := s.Set(name, value); err != nil {
		t.Fatalf("Set(%s): %v", name, err)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	s := NewStore()
	mustSet(t, s, "greeting", "hello")
	got, err := s.Get("greeting")
	if err != nil || got != "hello" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if !s.IsSet("greeting") || s.IsSet("other") {
		t.Fatalf("IsSet mismatch")
	}
}

func TestIndexedArrayNegativeIndex(t *testing.T) {
	s := NewStore()
	if err := s.SetIndex("arr", 5, "five"); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	// Negative indices count back from max_key+1, so -1 is slot 5.
	got, err := s.GetIndex("arr", -1)
	if err != nil || got != "five" {
		t.Fatalf("GetIndex(-1) = %q, %v", got, err)
	}
	got, _ = s.GetIndex("arr", 3)
	if got != "" {
		t.Fatalf("sparse hole = %q, want empty", got)
	}
	if s.Length("arr") != 1 {
		t.Fatalf("Length = %d, want 1", s.Length("arr"))
	}
	if err := s.SetIndex("arr", -10, "x"); err == nil {
		t.Fatalf("index below zero accepted")
	}
}

func TestScalarPromotesToIndexed(t *testing.T) {
	s := NewStore()
	mustSet(t, s, "v", "zero")
	if err := s.SetIndex("v", 2, "two"); err != nil {
		t.Fatalf("SetIndex: %v", err)
	}
	if s.Kind("v") != KindIndexed {
		t.Fatalf("kind = %v", s.Kind("v"))
	}
	got, _ := s.GetIndex("v", 0)
	if got != "zero" {
		t.Fatalf("slot 0 = %q, want zero", got)
	}
	if keys := s.Keys("v"); len(keys) != 2 || keys[0] != "0" || keys[1] != "2" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestAssocArray(t *testing.T) {
	s := NewStore()
	if err := s.DeclareAssoc("m"); err != nil {
		t.Fatalf("DeclareAssoc: %v", err)
	}
	if err := s.SetKey("m", "color", "red"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	got, err := s.GetKey("m", "color")
	if err != nil || got != "red" {
		t.Fatalf("GetKey = %q, %v", got, err)
	}
	// Missing keys read empty, never fail.
	got, err = s.GetKey("m", "absent")
	if err != nil || got != "" {
		t.Fatalf("missing key = %q, %v", got, err)
	}
	if !s.IsAssociative("m") {
		t.Fatalf("IsAssociative false")
	}
}

func TestReadonlyRejectsWithoutMutation(t *testing.T) {
	s := NewStore()
	mustSet(t, s, "r", "fixed")
	if err := s.SetAttr("r", AttrReadonly); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	err := s.Set("r", "changed")
	var ve *VariableError
	if !errors.As(err, &ve) || ve.Kind != ErrReadonly {
		t.Fatalf("want readonly error, got %v", err)
	}
	got, _ := s.Get("r")
	if got != "fixed" {
		t.Fatalf("readonly variable mutated: %q", got)
	}
	if err := s.Unset("r"); err == nil {
		t.Fatalf("unset of readonly accepted")
	}
}

func TestNameref(t *testing.T) {
	s := NewStore()
	mustSet(t, s, "target", "payload")
	if err := s.SetNameref("alias", "target"); err != nil {
		t.Fatalf("SetNameref: %v", err)
	}
	got, err := s.Get("alias")
	if err != nil || got != "payload" {
		t.Fatalf("Get through nameref = %q, %v", got, err)
	}
	mustSet(t, s, "alias", "updated")
	got, _ = s.Get("target")
	if got != "updated" {
		t.Fatalf("write through nameref missed target: %q", got)
	}
}

func TestNamerefCycleFails(t *testing.T) {
	s := NewStore()
	if err := s.SetNameref("a", "b"); err != nil {
		t.Fatalf("SetNameref a: %v", err)
	}
	if err := s.SetNameref("b", "a"); err != nil {
		t.Fatalf("SetNameref b: %v", err)
	}
	_, err := s.Get("a")
	var ve *VariableError
	if !errors.As(err, &ve) || ve.Kind != ErrCircularNameref {
		t.Fatalf("want circular nameref error, got %v", err)
	}
}

func TestAttrCoercion(t *testing.T) {
	s := NewStore()
	if err := s.SetAttr("n", AttrInteger); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	mustSet(t, s, "n", "not a number")
	got, _ := s.Get("n")
	if got != "0" {
		t.Fatalf("integer coercion = %q, want 0", got)
	}
	if err := s.SetAttr("u", AttrUpper); err != nil {
		t.Fatalf("SetAttr upper: %v", err)
	}
	mustSet(t, s, "u", "shout")
	got, _ = s.Get("u")
	if got != "SHOUT" {
		t.Fatalf("upper fold = %q", got)
	}
}

func TestEnviron(t *testing.T) {
	s := NewStore()
	mustSet(t, s, "PATH", "/bin")
	mustSet(t, s, "HIDDEN", "no")
	if err := s.SetAttr("PATH", AttrExport); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	env := s.Environ()
	if len(env) != 1 || env[0] != "PATH=/bin" {
		t.Fatalf("Environ = %v", env)
	}
}
