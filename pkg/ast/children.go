package ast

// Helpers shared by the WithChildren implementations. Traversals hand
// back a slice of the same length as Children(); nil entries mark
// dropped children and mismatched kinds are discarded rather than
// panicking, so partially transformed trees still rebuild.

func appendStmts(dst []Node, stmts []Statement) []Node {
	for _, s := range stmts {
		dst = append(dst, s)
	}
	return dst
}

func appendWords(dst []Node, words []*Word) []Node {
	for _, w := range words {
		dst = append(dst, w)
	}
	return dst
}

func asStmt(n Node) Statement {
	if s, ok := n.(Statement); ok {
		return s
	}
	return nil
}

func asWord(n Node) *Word {
	if w, ok := n.(*Word); ok {
		return w
	}
	return nil
}

func takeStmts(children []Node, n int) ([]Statement, []Node) {
	out := make([]Statement, 0, n)
	for _, c := range children[:n] {
		if c == nil {
			continue
		}
		if s := asStmt(c); s != nil {
			out = append(out, s)
		}
	}
	return out, children[n:]
}

func takeWords(children []Node, n int) ([]*Word, []Node) {
	out := make([]*Word, 0, n)
	for _, c := range children[:n] {
		if c == nil {
			continue
		}
		if w := asWord(c); w != nil {
			out = append(out, w)
		}
	}
	return out, children[n:]
}

func takeWord(children []Node) (*Word, []Node) {
	var w *Word
	if children[0] != nil {
		w = asWord(children[0])
	}
	return w, children[1:]
}

func takeStmt(children []Node) (Statement, []Node) {
	var s Statement
	if children[0] != nil {
		s = asStmt(children[0])
	}
	return s, children[1:]
}

func (s *Script) Children() []Node { return appendStmts(nil, s.Stmts) }

func (s *Script) WithChildren(children []Node) Node {
	stmts, _ := takeStmts(children, len(children))
	return &Script{Position: s.Position, Stmts: stmts}
}

func (c *Command) Children() []Node {
	out := []Node{}
	if c.Name != nil {
		out = append(out, c.Name)
	}
	return appendWords(out, c.Args)
}

func (c *Command) WithChildren(children []Node) Node {
	out := &Command{Position: c.Position, Heredoc: c.Heredoc}
	rest := children
	if c.Name != nil {
		out.Name, rest = takeWord(rest)
	}
	out.Args, _ = takeWords(rest, len(rest))
	return out
}

func (p *Pipeline) Children() []Node { return appendStmts(nil, p.Cmds) }

func (p *Pipeline) WithChildren(children []Node) Node {
	cmds, _ := takeStmts(children, len(children))
	return &Pipeline{Position: p.Position, Cmds: cmds}
}

func (a *Assignment) Children() []Node {
	out := []Node{}
	if a.Index != nil {
		out = append(out, a.Index)
	}
	if a.Value != nil {
		out = append(out, a.Value)
	}
	return out
}

func (a *Assignment) WithChildren(children []Node) Node {
	out := &Assignment{Position: a.Position, Name: a.Name, Local: a.Local}
	rest := children
	if a.Index != nil {
		out.Index, rest = takeWord(rest)
	}
	if a.Value != nil {
		out.Value, _ = takeWord(rest)
	}
	return out
}

func (a *ArrayAssignment) Children() []Node {
	out := []Node{}
	for _, el := range a.Elems {
		if el.Key != nil {
			out = append(out, el.Key)
		}
		out = append(out, el.Value)
	}
	return out
}

func (a *ArrayAssignment) WithChildren(children []Node) Node {
	out := &ArrayAssignment{Position: a.Position, Name: a.Name, Assoc: a.Assoc}
	rest := children
	for _, el := range a.Elems {
		var key, val *Word
		if el.Key != nil {
			key, rest = takeWord(rest)
		}
		val, rest = takeWord(rest)
		if val == nil {
			continue
		}
		out.Elems = append(out.Elems, ArrayElem{Key: key, Value: val})
	}
	return out
}

func (i *If) Children() []Node {
	out := []Node{}
	if i.Cond != nil {
		out = append(out, i.Cond)
	}
	out = appendStmts(out, i.Then)
	return appendStmts(out, i.Else)
}

func (i *If) WithChildren(children []Node) Node {
	out := &If{Position: i.Position}
	rest := children
	if i.Cond != nil {
		out.Cond, rest = takeStmt(rest)
	}
	out.Then, rest = takeStmts(rest, len(i.Then))
	out.Else, _ = takeStmts(rest, len(rest))
	return out
}

func (f *For) Children() []Node {
	out := appendWords(nil, f.Items)
	return appendStmts(out, f.Body)
}

func (f *For) WithChildren(children []Node) Node {
	out := &For{Position: f.Position, Var: f.Var}
	rest := children
	out.Items, rest = takeWords(rest, len(f.Items))
	out.Body, _ = takeStmts(rest, len(rest))
	return out
}

func (w *While) Children() []Node {
	out := []Node{}
	if w.Cond != nil {
		out = append(out, w.Cond)
	}
	return appendStmts(out, w.Body)
}

func (w *While) WithChildren(children []Node) Node {
	out := &While{Position: w.Position, Until: w.Until}
	rest := children
	if w.Cond != nil {
		out.Cond, rest = takeStmt(rest)
	}
	out.Body, _ = takeStmts(rest, len(rest))
	return out
}

func (c *CaseClause) Children() []Node {
	out := appendWords(nil, c.Patterns)
	return appendStmts(out, c.Body)
}

func (c *CaseClause) WithChildren(children []Node) Node {
	out := &CaseClause{Position: c.Position}
	rest := children
	out.Patterns, rest = takeWords(rest, len(c.Patterns))
	out.Body, _ = takeStmts(rest, len(rest))
	return out
}

func (c *Case) Children() []Node {
	out := []Node{}
	if c.Subject != nil {
		out = append(out, c.Subject)
	}
	for _, cl := range c.Clauses {
		out = append(out, cl)
	}
	return out
}

func (c *Case) WithChildren(children []Node) Node {
	out := &Case{Position: c.Position}
	rest := children
	if c.Subject != nil {
		out.Subject, rest = takeWord(rest)
	}
	for _, child := range rest {
		if child == nil {
			continue
		}
		if cl, ok := child.(*CaseClause); ok {
			out.Clauses = append(out.Clauses, cl)
		}
	}
	return out
}

func (f *FunctionDef) Children() []Node { return appendStmts(nil, f.Body) }

func (f *FunctionDef) WithChildren(children []Node) Node {
	body, _ := takeStmts(children, len(children))
	return &FunctionDef{Position: f.Position, Name: f.Name, Body: body}
}

func (s *Subshell) Children() []Node { return appendStmts(nil, s.Body) }

func (s *Subshell) WithChildren(children []Node) Node {
	body, _ := takeStmts(children, len(children))
	return &Subshell{Position: s.Position, Body: body}
}

func (g *Group) Children() []Node { return appendStmts(nil, g.Body) }

func (g *Group) WithChildren(children []Node) Node {
	body, _ := takeStmts(children, len(children))
	return &Group{Position: g.Position, Body: body}
}

func (l *Logical) Children() []Node {
	out := []Node{}
	if l.Left != nil {
		out = append(out, l.Left)
	}
	if l.Right != nil {
		out = append(out, l.Right)
	}
	return out
}

func (l *Logical) WithChildren(children []Node) Node {
	out := &Logical{Position: l.Position, Op: l.Op}
	rest := children
	if l.Left != nil {
		out.Left, rest = takeStmt(rest)
	}
	if l.Right != nil {
		out.Right, _ = takeStmt(rest)
	}
	return out
}

func (b *Background) Children() []Node {
	if b.Child == nil {
		return nil
	}
	return []Node{b.Child}
}

func (b *Background) WithChildren(children []Node) Node {
	out := &Background{Position: b.Position}
	if len(children) > 0 {
		out.Child, _ = takeStmt(children)
	}
	return out
}

func (t *Test) Children() []Node {
	out := []Node{}
	if t.Left != nil {
		out = append(out, t.Left)
	}
	if t.Right != nil {
		out = append(out, t.Right)
	}
	return out
}

func (t *Test) WithChildren(children []Node) Node {
	out := &Test{Position: t.Position, Op: t.Op}
	rest := children
	if t.Left != nil {
		out.Left, rest = takeWord(rest)
	}
	if t.Right != nil {
		out.Right, _ = takeWord(rest)
	}
	return out
}

func (r *Return) Children() []Node {
	if r.Code == nil {
		return nil
	}
	return []Node{r.Code}
}

func (r *Return) WithChildren(children []Node) Node {
	out := &Return{Position: r.Position}
	if len(children) > 0 {
		out.Code, _ = takeWord(children)
	}
	return out
}

func (w *Word) Children() []Node {
	out := make([]Node, 0, len(w.Parts))
	for _, p := range w.Parts {
		out = append(out, p)
	}
	return out
}

func (w *Word) WithChildren(children []Node) Node {
	out := &Word{Position: w.Position}
	for _, c := range children {
		if c == nil {
			continue
		}
		if p, ok := c.(WordPart); ok {
			out.Parts = append(out.Parts, p)
		}
	}
	return out
}

func (p *VarPart) Children() []Node {
	if p.Index == nil {
		return nil
	}
	return []Node{p.Index}
}

func (p *VarPart) WithChildren(children []Node) Node {
	out := &VarPart{Position: p.Position, Name: p.Name}
	if len(children) > 0 {
		out.Index, _ = takeWord(children)
	}
	return out
}

func (a *Arithmetic) Children() []Node                { return nil }
func (a *Arithmetic) WithChildren(children []Node) Node { return a }
func (b *Break) Children() []Node                     { return nil }
func (b *Break) WithChildren(children []Node) Node    { return b }
func (c *Continue) Children() []Node                  { return nil }
func (c *Continue) WithChildren(children []Node) Node { return c }
func (c *Comment) Children() []Node                   { return nil }
func (c *Comment) WithChildren(children []Node) Node  { return c }
func (p *LiteralPart) Children() []Node               { return nil }
func (p *LiteralPart) WithChildren(children []Node) Node { return p }
func (p *ArithPart) Children() []Node                 { return nil }
func (p *ArithPart) WithChildren(children []Node) Node   { return p }
