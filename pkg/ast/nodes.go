// Package ast defines the typed tree consumed by the execution engine.
// Trees are produced by an external parser/validator pair; the engine
// assumes structural validity and never mutates a node in place. Every
// transformation builds new nodes.
package ast

// Position locates a node in the original source text.
type Position struct {
	Line int
	Col  int
}

// Node is the capability shared by every tree variant. Children returns
// the node's direct children in a stable order; WithChildren rebuilds the
// same variant from an equally sized slice in that order. A nil entry
// marks a child that was dropped by a traversal; slice-valued fields
// compact nil entries away, scalar fields keep the hole as nil.
type Node interface {
	Pos() Position
	Children() []Node
	WithChildren(children []Node) Node
}

// Statement is implemented by every node that may appear in a statement
// list.
type Statement interface {
	Node
	stmtNode()
}

// WordPart is one segment of a Word: literal text, a variable reference,
// or an inline arithmetic expansion.
type WordPart interface {
	Node
	wordPart()
}

// LogicalOp selects the short-circuit behaviour of a Logical node.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

func (op LogicalOp) String() string {
	if op == LogicalAnd {
		return "&&"
	}
	return "||"
}

// Script is the root node: an ordered statement list.
type Script struct {
	Position Position
	Stmts    []Statement
}

// Command is a simple command: a name word plus argument words, with an
// optional heredoc feeding its standard input.
type Command struct {
	Position Position
	Name     *Word
	Args     []*Word
	Heredoc  *Heredoc
}

// Heredoc carries literal standard-input content for a Command. The body
// must not contain a line equal to the delimiter; RenderHeredoc enforces
// that.
type Heredoc struct {
	Delimiter string
	Body      string
}

// Pipeline chains the stdout of each stage into the stdin of the next.
type Pipeline struct {
	Position Position
	Cmds     []Statement
}

// Assignment writes a scalar (or one array slot, when Index is set) in
// the variable store. Local marks a function-scoped assignment.
type Assignment struct {
	Position Position
	Name     string
	Index    *Word
	Value    *Word
	Local    bool
}

// ArrayElem is one element of an ArrayAssignment; Key is nil for
// positional (indexed) elements.
type ArrayElem struct {
	Key   *Word
	Value *Word
}

// ArrayAssignment initialises a whole indexed or associative array.
type ArrayAssignment struct {
	Position Position
	Name     string
	Assoc    bool
	Elems    []ArrayElem
}

// If runs Then when the condition exits zero, Else otherwise. An elif
// chain is represented as an Else list holding a single nested If.
type If struct {
	Position Position
	Cond     Statement
	Then     []Statement
	Else     []Statement
}

// For iterates a fully pre-resolved item list, assigning Var each round.
type For struct {
	Position Position
	Var      string
	Items    []*Word
	Body     []Statement
}

// While re-evaluates Cond each iteration; with Until set the loop
// continues while the condition fails instead.
type While struct {
	Position Position
	Cond     Statement
	Body     []Statement
	Until    bool
}

// CaseClause is one pattern group of a Case statement.
type CaseClause struct {
	Position Position
	Patterns []*Word
	Body     []Statement
}

// Case matches Subject against its clauses in order; the first clause
// with a matching pattern wins.
type Case struct {
	Position Position
	Subject  *Word
	Clauses  []*CaseClause
}

// FunctionDef registers Name in the session's function registry.
type FunctionDef struct {
	Position Position
	Name     string
	Body     []Statement
}

// Subshell groups its body as one statement whose exit is the body's.
type Subshell struct {
	Position Position
	Body     []Statement
}

// Group executes its body in the current context.
type Group struct {
	Position Position
	Body     []Statement
}

// Logical composes two statements with && or ||.
type Logical struct {
	Position Position
	Op       LogicalOp
	Left     Statement
	Right    Statement
}

// Background launches its child without waiting, registering a job.
type Background struct {
	Position Position
	Child    Statement
}

// Arithmetic evaluates a (( )) expression; the statement exits zero when
// the value is nonzero.
type Arithmetic struct {
	Position Position
	Expr     string
}

// Test is a [[ ]]-style predicate. Unary operators leave Left nil.
type Test struct {
	Position Position
	Op       string
	Left     *Word
	Right    *Word
}

// Break unwinds Levels enclosing loops (minimum one).
type Break struct {
	Position Position
	Levels   int
}

// Continue resumes the next iteration of the Levels-th enclosing loop.
type Continue struct {
	Position Position
	Levels   int
}

// Return terminates the current function invocation. Code is the exit
// word; nil reuses the last command's exit code.
type Return struct {
	Position Position
	Code     *Word
}

// Comment is preserved source commentary; executing it is a no-op.
type Comment struct {
	Position Position
	Text     string
}

// Word is a sequence of parts concatenated after expansion.
type Word struct {
	Position Position
	Parts    []WordPart
}

// LiteralPart is verbatim text.
type LiteralPart struct {
	Position Position
	Text     string
}

// VarPart references a variable, optionally with a subscript word.
type VarPart struct {
	Position Position
	Name     string
	Index    *Word
}

// ArithPart is an inline $(( )) expansion.
type ArithPart struct {
	Position Position
	Expr     string
}

func (s *Script) stmtNode()          {}
func (c *Command) stmtNode()         {}
func (p *Pipeline) stmtNode()        {}
func (a *Assignment) stmtNode()      {}
func (a *ArrayAssignment) stmtNode() {}
func (i *If) stmtNode()              {}
func (f *For) stmtNode()             {}
func (w *While) stmtNode()           {}
func (c *Case) stmtNode()            {}
func (f *FunctionDef) stmtNode()     {}
func (s *Subshell) stmtNode()        {}
func (g *Group) stmtNode()           {}
func (l *Logical) stmtNode()         {}
func (b *Background) stmtNode()      {}
func (a *Arithmetic) stmtNode()      {}
func (t *Test) stmtNode()            {}
func (b *Break) stmtNode()           {}
func (c *Continue) stmtNode()        {}
func (r *Return) stmtNode()          {}
func (c *Comment) stmtNode()         {}

func (p *LiteralPart) wordPart() {}
func (p *VarPart) wordPart()     {}
func (p *ArithPart) wordPart()   {}

func (s *Script) Pos() Position          { return s.Position }
func (c *Command) Pos() Position         { return c.Position }
func (p *Pipeline) Pos() Position        { return p.Position }
func (a *Assignment) Pos() Position      { return a.Position }
func (a *ArrayAssignment) Pos() Position { return a.Position }
func (i *If) Pos() Position              { return i.Position }
func (f *For) Pos() Position             { return f.Position }
func (w *While) Pos() Position           { return w.Position }
func (c *Case) Pos() Position            { return c.Position }
func (c *CaseClause) Pos() Position      { return c.Position }
func (f *FunctionDef) Pos() Position     { return f.Position }
func (s *Subshell) Pos() Position        { return s.Position }
func (g *Group) Pos() Position           { return g.Position }
func (l *Logical) Pos() Position         { return l.Position }
func (b *Background) Pos() Position      { return b.Position }
func (a *Arithmetic) Pos() Position      { return a.Position }
func (t *Test) Pos() Position            { return t.Position }
func (b *Break) Pos() Position           { return b.Position }
func (c *Continue) Pos() Position        { return c.Position }
func (r *Return) Pos() Position          { return r.Position }
func (c *Comment) Pos() Position         { return c.Position }
func (w *Word) Pos() Position            { return w.Position }
func (p *LiteralPart) Pos() Position     { return p.Position }
func (p *VarPart) Pos() Position         { return p.Position }
func (p *ArithPart) Pos() Position       { return p.Position }
