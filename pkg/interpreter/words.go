package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"bsh/engine-go/pkg/arith"
	"bsh/engine-go/pkg/ast"
	"bsh/engine-go/pkg/runtime"
)

// expandWord resolves a word's parts against the session: literals pass
// through, variable references read the store (or the current frame's
// positional parameters), and inline arithmetic evaluates with its side
// effects applied back to the store.
func (e *execEnv) expandWord(w *ast.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *ast.LiteralPart:
			sb.WriteString(p.Text)
		case *ast.VarPart:
			v, err := e.expandVar(p)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		case *ast.ArithPart:
			v, err := e.evalArith(p.Expr)
			if err != nil {
				return "", err
			}
			sb.WriteString(strconv.FormatInt(v, 10))
		default:
			return "", fmt.Errorf("unsupported word part %T", part)
		}
	}
	return sb.String(), nil
}

func (e *execEnv) expandVar(p *ast.VarPart) (string, error) {
	if v, ok := e.specialParam(p.Name); ok {
		return v, nil
	}
	store := e.s.vars
	if p.Index == nil {
		if e.s.OptionEnabled(OptNoUnset) && !store.IsSet(p.Name) {
			return "", &runtime.VariableError{Kind: runtime.ErrUnset, Name: p.Name, Message: "unbound variable"}
		}
		return store.Get(p.Name)
	}
	index, err := e.expandWord(p.Index)
	if err != nil {
		return "", err
	}
	if index == "@" || index == "*" {
		return strings.Join(store.Values(p.Name), " "), nil
	}
	if store.IsAssociative(p.Name) {
		return store.GetKey(p.Name, index)
	}
	idx, err := strconv.ParseInt(index, 10, 64)
	if err != nil {
		return "", &runtime.VariableError{Kind: runtime.ErrBadIndex, Name: p.Name, Message: fmt.Sprintf("invalid index %q", index)}
	}
	return store.GetIndex(p.Name, idx)
}

// specialParam resolves $?, $#, $@, $* and positional parameters from
// the innermost function frame.
func (e *execEnv) specialParam(name string) (string, bool) {
	switch name {
	case "?":
		return strconv.Itoa(e.s.LastExit()), true
	case "#":
		if fr := e.currentFrame(); fr != nil {
			return strconv.Itoa(len(fr.params)), true
		}
		return "0", true
	case "@", "*":
		if fr := e.currentFrame(); fr != nil {
			return strings.Join(fr.params, " "), true
		}
		return "", true
	}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		if fr := e.currentFrame(); fr != nil && n <= len(fr.params) {
			return fr.params[n-1], true
		}
		return "", true
	}
	return "", false
}

// evalArith runs an arithmetic expression against a snapshot of the
// store's scalar variables and writes any assignments back, so
// $((x = 5)) and (( i++ )) behave like their shell counterparts.
func (e *execEnv) evalArith(expr string) (int64, error) {
	store := e.s.vars
	env := make(map[string]string)
	for _, name := range store.Names() {
		if store.Kind(name) != runtime.KindScalar {
			continue
		}
		v, err := store.Get(name)
		if err != nil {
			continue
		}
		env[name] = v
	}
	value, updated, err := arith.Eval(expr, env)
	if err != nil {
		return 0, err
	}
	for name, v := range updated {
		if old, ok := env[name]; ok && old == v {
			continue
		}
		if err := store.Set(name, v); err != nil {
			return 0, err
		}
	}
	return value, nil
}
