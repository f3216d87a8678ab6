package ast

// Constructor helpers used by embedders and tests to assemble trees
// without spelling out every struct literal. Positions default to zero;
// parsers attach real positions themselves.

// Lit builds a word holding a single literal part.
func Lit(text string) *Word {
	return &Word{Parts: []WordPart{&LiteralPart{Text: text}}}
}

// Var builds a word holding a bare variable reference.
func Var(name string) *Word {
	return &Word{Parts: []WordPart{&VarPart{Name: name}}}
}

// VarIndex builds a word referencing one array slot.
func VarIndex(name string, index *Word) *Word {
	return &Word{Parts: []WordPart{&VarPart{Name: name, Index: index}}}
}

// ArithWord builds a word holding an inline $(( )) expansion.
func ArithWord(expr string) *Word {
	return &Word{Parts: []WordPart{&ArithPart{Expr: expr}}}
}

// W concatenates parts into a word.
func W(parts ...WordPart) *Word {
	return &Word{Parts: parts}
}

// Cmd builds a simple command from literal words.
func Cmd(name string, args ...string) *Command {
	c := &Command{Name: Lit(name)}
	for _, a := range args {
		c.Args = append(c.Args, Lit(a))
	}
	return c
}

// CmdW builds a simple command from pre-built words.
func CmdW(name *Word, args ...*Word) *Command {
	return &Command{Name: name, Args: args}
}

// Pipe chains statements into a pipeline.
func Pipe(cmds ...Statement) *Pipeline {
	return &Pipeline{Cmds: cmds}
}

// Assign builds a scalar assignment from a literal value.
func Assign(name, value string) *Assignment {
	return &Assignment{Name: name, Value: Lit(value)}
}

// AssignW builds a scalar assignment from a word.
func AssignW(name string, value *Word) *Assignment {
	return &Assignment{Name: name, Value: value}
}

// IndexAssign builds a single array-slot assignment.
func IndexAssign(name string, index, value *Word) *Assignment {
	return &Assignment{Name: name, Index: index, Value: value}
}

// ArrayLit builds an indexed array initialisation from literal values.
func ArrayLit(name string, values ...string) *ArrayAssignment {
	a := &ArrayAssignment{Name: name}
	for _, v := range values {
		a.Elems = append(a.Elems, ArrayElem{Value: Lit(v)})
	}
	return a
}

// AssocLit builds an associative array initialisation from key/value
// literal pairs.
func AssocLit(name string, pairs ...[2]string) *ArrayAssignment {
	a := &ArrayAssignment{Name: name, Assoc: true}
	for _, p := range pairs {
		a.Elems = append(a.Elems, ArrayElem{Key: Lit(p[0]), Value: Lit(p[1])})
	}
	return a
}

// IfStmt builds an if with optional else body.
func IfStmt(cond Statement, then []Statement, els ...Statement) *If {
	return &If{Cond: cond, Then: then, Else: els}
}

// ForLoop builds a for over literal items.
func ForLoop(name string, items []*Word, body ...Statement) *For {
	return &For{Var: name, Items: items, Body: body}
}

// WhileLoop builds a while loop.
func WhileLoop(cond Statement, body ...Statement) *While {
	return &While{Cond: cond, Body: body}
}

// UntilLoop builds an until loop.
func UntilLoop(cond Statement, body ...Statement) *While {
	return &While{Cond: cond, Body: body, Until: true}
}

// Clause builds one case pattern group.
func Clause(patterns []*Word, body ...Statement) *CaseClause {
	return &CaseClause{Patterns: patterns, Body: body}
}

// CaseStmt builds a case statement.
func CaseStmt(subject *Word, clauses ...*CaseClause) *Case {
	return &Case{Subject: subject, Clauses: clauses}
}

// FuncDef registers a function body under name.
func FuncDef(name string, body ...Statement) *FunctionDef {
	return &FunctionDef{Name: name, Body: body}
}

// And composes two statements with &&.
func And(left, right Statement) *Logical {
	return &Logical{Op: LogicalAnd, Left: left, Right: right}
}

// Or composes two statements with ||.
func Or(left, right Statement) *Logical {
	return &Logical{Op: LogicalOr, Left: left, Right: right}
}

// Bg wraps a statement for background launch.
func Bg(child Statement) *Background {
	return &Background{Child: child}
}

// Arith builds a (( )) statement.
func Arith(expr string) *Arithmetic {
	return &Arithmetic{Expr: expr}
}

// Mod wraps statements into a script root.
func Mod(stmts ...Statement) *Script {
	return &Script{Stmts: stmts}
}
