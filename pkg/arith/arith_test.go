package arith

import (
	"errors"
	"testing"
)

func evalOK(t *testing.T, expr string, env map[string]string) (int64, map[string]string) {
	t.Helper()
	v, out, err := Eval(expr, env)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", expr, err)
	}
	return v, out
}

func TestPrecedence(t *testing.T) {
	cases := []struct {
		expr string
		want int64
	}{
		{"2+3*4", 14},
		{"(1+2)*3", 9},
		{"10%3", 1},
		{"2**10", 1024},
		{"2**3**2", 512},
		{"1 << 4", 16},
		{"256 >> 4", 16},
		{"7 & 3", 3},
		{"5 | 2", 7},
		{"5 ^ 1", 4},
		{"~0", -1},
		{"-3 * -2", 6},
		{"!0", 1},
		{"!5", 0},
		{"1 < 2", 1},
		{"2 <= 1", 0},
		{"3 == 3", 1},
		{"3 != 3", 0},
		{"1 && 0", 0},
		{"0 || 2", 1},
		{"1, 2, 3", 3},
	}
	for _, c := range cases {
		v, _ := evalOK(t, c.expr, nil)
		if v != c.want {
			t.Fatalf("Eval(%q) = %d, want %d", c.expr, v, c.want)
		}
	}
}

func TestVariablesAndAssignment(t *testing.T) {
	v, env := evalOK(t, "x = 5, x * 2", map[string]string{})
	if v != 10 {
		t.Fatalf("got %d, want 10", v)
	}
	if env["x"] != "5" {
		t.Fatalf("x = %q, want 5", env["x"])
	}

	v, env = evalOK(t, "n += 3", map[string]string{"n": "4"})
	if v != 7 || env["n"] != "7" {
		t.Fatalf("got %d env %v", v, env)
	}

	// Missing variables read as zero.
	v, _ = evalOK(t, "nope + 1", nil)
	if v != 1 {
		t.Fatalf("unset read = %d, want 1", v)
	}
}

func TestIncrementDecrement(t *testing.T) {
	v, env := evalOK(t, "i++", map[string]string{"i": "5"})
	if v != 5 || env["i"] != "6" {
		t.Fatalf("postfix: value %d env %v", v, env)
	}
	v, env = evalOK(t, "++i", map[string]string{"i": "5"})
	if v != 6 || env["i"] != "6" {
		t.Fatalf("prefix: value %d env %v", v, env)
	}
	v, env = evalOK(t, "i--", map[string]string{"i": "0"})
	if v != 0 || env["i"] != "-1" {
		t.Fatalf("postfix decrement: value %d env %v", v, env)
	}
}

func TestTernaryLaziness(t *testing.T) {
	v, env := evalOK(t, "1 ? 10 : (x = 99)", map[string]string{})
	if v != 10 {
		t.Fatalf("got %d, want 10", v)
	}
	if _, ok := env["x"]; ok {
		t.Fatalf("dead branch assigned x: %v", env)
	}

	// Dead branches also suppress division faults.
	v, _ = evalOK(t, "0 ? 1/0 : 7", nil)
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
	v, _ = evalOK(t, "0 && 1/0", nil)
	if v != 0 {
		t.Fatalf("short circuit got %d, want 0", v)
	}
}

func TestDivideByZero(t *testing.T) {
	_, _, err := Eval("1/0", nil)
	var ee *EvaluationError
	if !errors.As(err, &ee) {
		t.Fatalf("want EvaluationError, got %v", err)
	}
	if ee.Kind != ErrDivideByZero {
		t.Fatalf("kind = %v, want divide by zero", ee.Kind)
	}
	_, _, err = Eval("5 % 0", nil)
	if !errors.As(err, &ee) || ee.Kind != ErrDivideByZero {
		t.Fatalf("modulo by zero: %v", err)
	}
}

func TestShiftRange(t *testing.T) {
	_, _, err := Eval("1 << 64", nil)
	var ee *EvaluationError
	if !errors.As(err, &ee) || ee.Kind != ErrShiftOutOfRange {
		t.Fatalf("want shift range error, got %v", err)
	}
	_, _, err = Eval("1 >> -1", nil)
	if !errors.As(err, &ee) || ee.Kind != ErrShiftOutOfRange {
		t.Fatalf("negative shift: %v", err)
	}
}

func TestNegativeExponent(t *testing.T) {
	_, _, err := Eval("2 ** -1", nil)
	var ee *EvaluationError
	if !errors.As(err, &ee) || ee.Kind != ErrNegativeExponent {
		t.Fatalf("want negative exponent error, got %v", err)
	}
}

func TestSyntaxErrors(t *testing.T) {
	for _, expr := range []string{"", "1 +", "(1", "1 ? 2", "5 = 3", "@"} {
		_, _, err := Eval(expr, nil)
		var ee *EvaluationError
		if !errors.As(err, &ee) {
			t.Fatalf("Eval(%q): want EvaluationError, got %v", expr, err)
		}
		if ee.Kind != ErrSyntax {
			t.Fatalf("Eval(%q): kind = %v, want syntax", expr, ee.Kind)
		}
	}
}

func TestEnvIsCopied(t *testing.T) {
	in := map[string]string{"a": "1"}
	_, out := evalOK(t, "a = 2", in)
	if in["a"] != "1" {
		t.Fatalf("input env mutated: %v", in)
	}
	if out["a"] != "2" {
		t.Fatalf("output env missing assignment: %v", out)
	}
}
