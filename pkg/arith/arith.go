// Package arith evaluates C-style integer expressions against a
// string-keyed variable environment, the way (( )) and $(( )) contexts
// behave in a POSIX-family shell. Assignments both produce a value and
// mutate the environment returned from Eval; the caller's map is never
// touched.
package arith

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind discriminates evaluation failures.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota
	ErrDivideByZero
	ErrShiftOutOfRange
	ErrNegativeExponent
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrDivideByZero:
		return "divide_by_zero"
	case ErrShiftOutOfRange:
		return "shift_out_of_range"
	case ErrNegativeExponent:
		return "negative_exponent"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// EvaluationError reports a malformed or undefined arithmetic operation.
// Offset is the byte offset of the offending token within the expression.
type EvaluationError struct {
	Kind    ErrorKind
	Message string
	Offset  int
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("arithmetic: %s at offset %d", e.Message, e.Offset)
}

// Eval evaluates expr against env and returns the value along with the
// updated environment. Bare identifiers missing from env read as zero.
func Eval(expr string, env map[string]string) (int64, map[string]string, error) {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	toks, err := lex(expr)
	if err != nil {
		return 0, nil, err
	}
	p := &parser{toks: toks, env: out}
	v, err := p.parseComma(true)
	if err != nil {
		return 0, nil, err
	}
	if p.peek().kind != tokEOF {
		return 0, nil, p.syntaxErr("unexpected %q", p.peek().text)
	}
	return v.val, out, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	num  int64
	off  int
}

// Longest operators first so the lexer never splits "<<=" into "<" "<=".
var operators = []string{
	"<<=", ">>=",
	"**", "++", "--", "&&", "||", "<<", ">>", "<=", ">=", "==", "!=",
	"+=", "-=", "*=", "/=", "%=", "&=", "^=", "|=",
	"+", "-", "*", "/", "%", "(", ")", "&", "|", "^", "~", "!",
	"<", ">", "=", "?", ":", ",",
}

func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(expr) && isNumChar(expr[i]) {
				i++
			}
			text := expr[start:i]
			n, err := strconv.ParseInt(text, 0, 64)
			if err != nil {
				return nil, &EvaluationError{Kind: ErrSyntax, Message: fmt.Sprintf("invalid number %q", text), Offset: start}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n, off: start})
		case isIdentStart(c):
			start := i
			for i < len(expr) && isIdentChar(expr[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: expr[start:i], off: start})
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(expr[i:], op) {
					toks = append(toks, token{kind: tokOp, text: op, off: i})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, &EvaluationError{Kind: ErrSyntax, Message: fmt.Sprintf("unexpected character %q", string(c)), Offset: i}
			}
		}
	}
	toks = append(toks, token{kind: tokEOF, off: len(expr)})
	return toks, nil
}

func isNumChar(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F' || c == 'x' || c == 'X'
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

// operand is a computed value plus, for bare variable reads, the name it
// came from so postfix operators can treat it as an lvalue.
type operand struct {
	val   int64
	ident string
}

type parser struct {
	toks []token
	pos  int
	env  map[string]string
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.next()
			return op, true
		}
	}
	return "", false
}

func (p *parser) syntaxErr(format string, args ...any) error {
	return &EvaluationError{Kind: ErrSyntax, Message: fmt.Sprintf(format, args...), Offset: p.peek().off}
}

func (p *parser) lookup(name string) int64 {
	raw, ok := p.env[name]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
	if err != nil {
		return 0
	}
	return n
}

func (p *parser) assign(name string, v int64, live bool) {
	if live {
		p.env[name] = strconv.FormatInt(v, 10)
	}
}

// Tiers follow C precedence, lowest first. The live flag suppresses side
// effects and undefined-operation errors inside untaken ternary branches
// and short-circuited logical operands; dead code still has to parse.

func (p *parser) parseComma(live bool) (operand, error) {
	v, err := p.parseAssign(live)
	if err != nil {
		return operand{}, err
	}
	for {
		if _, ok := p.acceptOp(","); !ok {
			return v, nil
		}
		v, err = p.parseAssign(live)
		if err != nil {
			return operand{}, err
		}
	}
}

var assignOps = []string{"=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "^=", "|="}

func (p *parser) parseAssign(live bool) (operand, error) {
	if p.peek().kind == tokIdent && p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == tokOp && isAssignOp(p.toks[p.pos+1].text) {
		name := p.next().text
		op := p.next().text
		rhs, err := p.parseAssign(live)
		if err != nil {
			return operand{}, err
		}
		result, err := p.applyCompound(name, op, rhs.val, live)
		if err != nil {
			return operand{}, err
		}
		p.assign(name, result, live)
		return operand{val: result}, nil
	}
	return p.parseTernary(live)
}

func isAssignOp(op string) bool {
	for _, a := range assignOps {
		if op == a {
			return true
		}
	}
	return false
}

func (p *parser) applyCompound(name, op string, rhs int64, live bool) (int64, error) {
	if op == "=" {
		return rhs, nil
	}
	cur := p.lookup(name)
	switch op {
	case "+=":
		return cur + rhs, nil
	case "-=":
		return cur - rhs, nil
	case "*=":
		return cur * rhs, nil
	case "/=":
		if rhs == 0 {
			if !live {
				return 0, nil
			}
			return 0, &EvaluationError{Kind: ErrDivideByZero, Message: "division by zero", Offset: p.peek().off}
		}
		return cur / rhs, nil
	case "%=":
		if rhs == 0 {
			if !live {
				return 0, nil
			}
			return 0, &EvaluationError{Kind: ErrDivideByZero, Message: "modulo by zero", Offset: p.peek().off}
		}
		return cur % rhs, nil
	case "<<=":
		return p.shift(cur, rhs, true, live)
	case ">>=":
		return p.shift(cur, rhs, false, live)
	case "&=":
		return cur & rhs, nil
	case "^=":
		return cur ^ rhs, nil
	case "|=":
		return cur | rhs, nil
	}
	return 0, p.syntaxErr("unknown assignment operator %q", op)
}

func (p *parser) parseTernary(live bool) (operand, error) {
	cond, err := p.parseLogicalOr(live)
	if err != nil {
		return operand{}, err
	}
	if _, ok := p.acceptOp("?"); !ok {
		return cond, nil
	}
	taken := cond.val != 0
	thenV, err := p.parseAssign(live && taken)
	if err != nil {
		return operand{}, err
	}
	if _, ok := p.acceptOp(":"); !ok {
		return operand{}, p.syntaxErr("expected ':' in ternary expression")
	}
	elseV, err := p.parseAssign(live && !taken)
	if err != nil {
		return operand{}, err
	}
	if taken {
		return operand{val: thenV.val}, nil
	}
	return operand{val: elseV.val}, nil
}

func (p *parser) parseLogicalOr(live bool) (operand, error) {
	l, err := p.parseLogicalAnd(live)
	if err != nil {
		return operand{}, err
	}
	truth := l.val != 0
	seen := false
	for {
		if _, ok := p.acceptOp("||"); !ok {
			break
		}
		seen = true
		r, err := p.parseLogicalAnd(live && !truth)
		if err != nil {
			return operand{}, err
		}
		truth = truth || r.val != 0
	}
	if !seen {
		return l, nil
	}
	return operand{val: boolToInt(truth)}, nil
}

func (p *parser) parseLogicalAnd(live bool) (operand, error) {
	l, err := p.parseBitOr(live)
	if err != nil {
		return operand{}, err
	}
	truth := l.val != 0
	seen := false
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			break
		}
		seen = true
		r, err := p.parseBitOr(live && truth)
		if err != nil {
			return operand{}, err
		}
		truth = truth && r.val != 0
	}
	if !seen {
		return l, nil
	}
	return operand{val: boolToInt(truth)}, nil
}

func (p *parser) parseBitOr(live bool) (operand, error) {
	l, err := p.parseBitXor(live)
	if err != nil {
		return operand{}, err
	}
	for {
		if _, ok := p.acceptOp("|"); !ok {
			return l, nil
		}
		r, err := p.parseBitXor(live)
		if err != nil {
			return operand{}, err
		}
		l = operand{val: l.val | r.val}
	}
}

func (p *parser) parseBitXor(live bool) (operand, error) {
	l, err := p.parseBitAnd(live)
	if err != nil {
		return operand{}, err
	}
	for {
		if _, ok := p.acceptOp("^"); !ok {
			return l, nil
		}
		r, err := p.parseBitAnd(live)
		if err != nil {
			return operand{}, err
		}
		l = operand{val: l.val ^ r.val}
	}
}

func (p *parser) parseBitAnd(live bool) (operand, error) {
	l, err := p.parseEquality(live)
	if err != nil {
		return operand{}, err
	}
	for {
		if _, ok := p.acceptOp("&"); !ok {
			return l, nil
		}
		r, err := p.parseEquality(live)
		if err != nil {
			return operand{}, err
		}
		l = operand{val: l.val & r.val}
	}
}

func (p *parser) parseEquality(live bool) (operand, error) {
	l, err := p.parseRelational(live)
	if err != nil {
		return operand{}, err
	}
	for {
		op, ok := p.acceptOp("==", "!=")
		if !ok {
			return l, nil
		}
		r, err := p.parseRelational(live)
		if err != nil {
			return operand{}, err
		}
		if op == "==" {
			l = operand{val: boolToInt(l.val == r.val)}
		} else {
			l = operand{val: boolToInt(l.val != r.val)}
		}
	}
}

func (p *parser) parseRelational(live bool) (operand, error) {
	l, err := p.parseShift(live)
	if err != nil {
		return operand{}, err
	}
	for {
		op, ok := p.acceptOp("<=", ">=", "<", ">")
		if !ok {
			return l, nil
		}
		r, err := p.parseShift(live)
		if err != nil {
			return operand{}, err
		}
		var v bool
		switch op {
		case "<":
			v = l.val < r.val
		case ">":
			v = l.val > r.val
		case "<=":
			v = l.val <= r.val
		case ">=":
			v = l.val >= r.val
		}
		l = operand{val: boolToInt(v)}
	}
}

func (p *parser) parseShift(live bool) (operand, error) {
	l, err := p.parseAdditive(live)
	if err != nil {
		return operand{}, err
	}
	for {
		op, ok := p.acceptOp("<<", ">>")
		if !ok {
			return l, nil
		}
		r, err := p.parseAdditive(live)
		if err != nil {
			return operand{}, err
		}
		v, err := p.shift(l.val, r.val, op == "<<", live)
		if err != nil {
			return operand{}, err
		}
		l = operand{val: v}
	}
}

func (p *parser) shift(v, count int64, left, live bool) (int64, error) {
	if count < 0 || count > 63 {
		if !live {
			return 0, nil
		}
		return 0, &EvaluationError{Kind: ErrShiftOutOfRange, Message: fmt.Sprintf("shift count %d out of range", count), Offset: p.peek().off}
	}
	if left {
		return v << uint(count), nil
	}
	return v >> uint(count), nil
}

func (p *parser) parseAdditive(live bool) (operand, error) {
	l, err := p.parseMultiplicative(live)
	if err != nil {
		return operand{}, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return l, nil
		}
		r, err := p.parseMultiplicative(live)
		if err != nil {
			return operand{}, err
		}
		if op == "+" {
			l = operand{val: l.val + r.val}
		} else {
			l = operand{val: l.val - r.val}
		}
	}
}

func (p *parser) parseMultiplicative(live bool) (operand, error) {
	l, err := p.parsePower(live)
	if err != nil {
		return operand{}, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "%")
		if !ok {
			return l, nil
		}
		r, err := p.parsePower(live)
		if err != nil {
			return operand{}, err
		}
		switch op {
		case "*":
			l = operand{val: l.val * r.val}
		case "/":
			if r.val == 0 {
				if !live {
					l = operand{}
					continue
				}
				return operand{}, &EvaluationError{Kind: ErrDivideByZero, Message: "division by zero", Offset: p.peek().off}
			}
			l = operand{val: l.val / r.val}
		case "%":
			if r.val == 0 {
				if !live {
					l = operand{}
					continue
				}
				return operand{}, &EvaluationError{Kind: ErrDivideByZero, Message: "modulo by zero", Offset: p.peek().off}
			}
			l = operand{val: l.val % r.val}
		}
	}
}

func (p *parser) parsePower(live bool) (operand, error) {
	base, err := p.parseUnary(live)
	if err != nil {
		return operand{}, err
	}
	if _, ok := p.acceptOp("**"); !ok {
		return base, nil
	}
	// Right associative: 2 ** 3 ** 2 == 2 ** 9.
	exp, err := p.parsePower(live)
	if err != nil {
		return operand{}, err
	}
	if exp.val < 0 {
		if !live {
			return operand{}, nil
		}
		return operand{}, &EvaluationError{Kind: ErrNegativeExponent, Message: fmt.Sprintf("exponent %d less than 0", exp.val), Offset: p.peek().off}
	}
	result := int64(1)
	for n := exp.val; n > 0; n-- {
		result *= base.val
	}
	return operand{val: result}, nil
}

func (p *parser) parseUnary(live bool) (operand, error) {
	if op, ok := p.acceptOp("+", "-", "!", "~"); ok {
		v, err := p.parseUnary(live)
		if err != nil {
			return operand{}, err
		}
		switch op {
		case "+":
			return operand{val: v.val}, nil
		case "-":
			return operand{val: -v.val}, nil
		case "!":
			return operand{val: boolToInt(v.val == 0)}, nil
		default:
			return operand{val: ^v.val}, nil
		}
	}
	if op, ok := p.acceptOp("++", "--"); ok {
		v, err := p.parseUnary(live)
		if err != nil {
			return operand{}, err
		}
		if v.ident == "" {
			return operand{}, p.syntaxErr("%s requires a variable", op)
		}
		updated := v.val + 1
		if op == "--" {
			updated = v.val - 1
		}
		p.assign(v.ident, updated, live)
		return operand{val: updated}, nil
	}
	return p.parsePostfix(live)
}

func (p *parser) parsePostfix(live bool) (operand, error) {
	v, err := p.parsePrimary(live)
	if err != nil {
		return operand{}, err
	}
	for v.ident != "" {
		op, ok := p.acceptOp("++", "--")
		if !ok {
			break
		}
		updated := v.val + 1
		if op == "--" {
			updated = v.val - 1
		}
		p.assign(v.ident, updated, live)
		v = operand{val: v.val}
	}
	return v, nil
}

func (p *parser) parsePrimary(live bool) (operand, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return operand{val: t.num}, nil
	case tokIdent:
		p.next()
		return operand{val: p.lookup(t.text), ident: t.text}, nil
	case tokOp:
		if t.text == "(" {
			p.next()
			v, err := p.parseComma(live)
			if err != nil {
				return operand{}, err
			}
			if _, ok := p.acceptOp(")"); !ok {
				return operand{}, p.syntaxErr("expected ')'")
			}
			return operand{val: v.val}, nil
		}
	}
	return operand{}, p.syntaxErr("unexpected %q", t.text)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
