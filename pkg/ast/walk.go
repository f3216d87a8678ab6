package ast

// WalkFunc transforms a node while threading an accumulator. Returning a
// nil node drops it from the parent's child list.
type WalkFunc func(node Node, acc any) (Node, any)

// Walk applies pre before descending into a node's children and post
// after. Either hook may replace the node or drop it by returning nil;
// the accumulator threads through the whole traversal in visit order.
func Walk(node Node, acc any, pre, post WalkFunc) (Node, any) {
	if node == nil {
		return nil, acc
	}
	if pre != nil {
		node, acc = pre(node, acc)
		if node == nil {
			return nil, acc
		}
	}
	if children := node.Children(); len(children) > 0 {
		rebuilt := make([]Node, len(children))
		for i, child := range children {
			rebuilt[i], acc = Walk(child, acc, pre, post)
		}
		node = node.WithChildren(rebuilt)
	}
	if post != nil {
		node, acc = post(node, acc)
	}
	return node, acc
}

// Prewalk rewrites the tree top-down with a pure transform.
func Prewalk(node Node, fn func(Node) Node) Node {
	out, _ := Walk(node, nil, func(n Node, acc any) (Node, any) {
		return fn(n), acc
	}, nil)
	return out
}

// Postwalk rewrites the tree bottom-up with a pure transform.
func Postwalk(node Node, fn func(Node) Node) Node {
	out, _ := Walk(node, nil, nil, func(n Node, acc any) (Node, any) {
		return fn(n), acc
	})
	return out
}

// Reduce folds fn over every node in pre-order without transforming.
func Reduce(node Node, acc any, fn func(acc any, node Node) any) any {
	_, out := Walk(node, acc, func(n Node, a any) (Node, any) {
		return n, fn(a, n)
	}, nil)
	return out
}

// Action is the per-node verdict of a Traverse callback.
type Action int

const (
	// Keep retains the node and descends into its children.
	Keep Action = iota
	// Replace substitutes the returned node without descending into it.
	Replace
	// Drop removes the node; structurally dependent ancestors cascade.
	Drop
)

// TraverseFunc inspects a node and decides its fate. The second return
// value is only consulted for Replace.
type TraverseFunc func(Node) (Action, Node)

// Traverse filters the tree. Dropping a node cascades structurally: a
// Pipeline losing every command is itself dropped, an If losing its
// condition is dropped entirely, and a CaseClause losing all patterns is
// dropped from its Case. Containers such as Script, Group, and Subshell
// simply shrink.
func Traverse(node Node, fn TraverseFunc) Node {
	if node == nil {
		return nil
	}
	switch action, repl := fn(node); action {
	case Drop:
		return nil
	case Replace:
		return repl
	}
	if children := node.Children(); len(children) > 0 {
		rebuilt := make([]Node, len(children))
		for i, child := range children {
			rebuilt[i] = Traverse(child, fn)
		}
		node = node.WithChildren(rebuilt)
	}
	return cascade(node)
}

// cascade drops nodes whose structural core was removed underneath them.
func cascade(node Node) Node {
	switch n := node.(type) {
	case *Command:
		if n.Name == nil {
			return nil
		}
	case *Pipeline:
		if len(n.Cmds) == 0 {
			return nil
		}
	case *If:
		if n.Cond == nil {
			return nil
		}
	case *While:
		if n.Cond == nil {
			return nil
		}
	case *Case:
		if n.Subject == nil {
			return nil
		}
	case *CaseClause:
		if len(n.Patterns) == 0 {
			return nil
		}
	case *Logical:
		if n.Left == nil || n.Right == nil {
			return nil
		}
	case *Background:
		if n.Child == nil {
			return nil
		}
	}
	return node
}
