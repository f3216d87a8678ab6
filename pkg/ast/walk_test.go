package ast

import "testing"

func countNodes(root Node) int {
	n := Reduce(root, 0, func(acc any, _ Node) any {
		return acc.(int) + 1
	})
	return n.(int)
}

func TestReduceCountsEveryNode(t *testing.T) {
	script := Mod(
		Cmd("echo", "hi"),
		IfStmt(Cmd("test-cond"), []Statement{Cmd("then-branch")}),
	)
	// Script, Command(+Word,Lit x2 each side), If, two more commands.
	got := countNodes(script)
	if got < 8 {
		t.Fatalf("Reduce visited %d nodes, expected a full traversal", got)
	}
}

func TestPrewalkRewritesCommands(t *testing.T) {
	script := Mod(Cmd("ls"), Cmd("pwd"))
	out := Prewalk(script, func(n Node) Node {
		if lit, ok := n.(*LiteralPart); ok && lit.Text == "ls" {
			return &LiteralPart{Text: "dir"}
		}
		return n
	})
	root := out.(*Script)
	name := root.Stmts[0].(*Command).Name.Parts[0].(*LiteralPart)
	if name.Text != "dir" {
		t.Fatalf("rewrite missed: %q", name.Text)
	}
	// The original tree is untouched only where unchanged; the second
	// command keeps its name.
	second := root.Stmts[1].(*Command).Name.Parts[0].(*LiteralPart)
	if second.Text != "pwd" {
		t.Fatalf("second command corrupted: %q", second.Text)
	}
}

func TestTraverseDropsNestedCommand(t *testing.T) {
	script := Mod(
		Cmd("echo", "keep"),
		IfStmt(Cmd("check"), []Statement{
			Cmd("rm", "-rf", "/data"),
			Cmd("echo", "survivor"),
		}),
	)
	out := Traverse(script, func(n Node) (Action, Node) {
		if cmd, ok := n.(*Command); ok {
			if lit, ok := cmd.Name.Parts[0].(*LiteralPart); ok && lit.Text == "rm" {
				return Drop, nil
			}
		}
		return Keep, nil
	})
	root := out.(*Script)
	if len(root.Stmts) != 2 {
		t.Fatalf("script lost a statement: %d", len(root.Stmts))
	}
	then := root.Stmts[1].(*If).Then
	if len(then) != 1 {
		t.Fatalf("then branch = %d statements, want 1", len(then))
	}
	name := then[0].(*Command).Name.Parts[0].(*LiteralPart)
	if name.Text != "echo" {
		t.Fatalf("wrong survivor: %q", name.Text)
	}
}

func TestTraversePipelineCascade(t *testing.T) {
	script := Mod(Pipe(Cmd("cat"), Cmd("sort")), Cmd("after"))
	out := Traverse(script, func(n Node) (Action, Node) {
		if _, ok := n.(*Command); ok {
			return Drop, nil
		}
		return Keep, nil
	})
	root := out.(*Script)
	// Every pipeline stage dropped, so the pipeline itself cascades away
	// and only the empty script scaffolding remains.
	if len(root.Stmts) != 0 {
		t.Fatalf("cascade failed, %d statements remain", len(root.Stmts))
	}
}

func TestTraverseIfConditionCascade(t *testing.T) {
	script := Mod(IfStmt(Cmd("gate"), []Statement{Cmd("body")}))
	out := Traverse(script, func(n Node) (Action, Node) {
		if cmd, ok := n.(*Command); ok {
			if lit, ok := cmd.Name.Parts[0].(*LiteralPart); ok && lit.Text == "gate" {
				return Drop, nil
			}
		}
		return Keep, nil
	})
	root := out.(*Script)
	if len(root.Stmts) != 0 {
		t.Fatalf("if without condition survived: %v", root.Stmts)
	}
}

func TestTraverseReplaceDoesNotDescend(t *testing.T) {
	script := Mod(Cmd("old", "arg"))
	visitedArg := false
	out := Traverse(script, func(n Node) (Action, Node) {
		switch v := n.(type) {
		case *Command:
			return Replace, Cmd("new")
		case *LiteralPart:
			if v.Text == "arg" {
				visitedArg = true
			}
		}
		return Keep, nil
	})
	if visitedArg {
		t.Fatalf("Replace descended into the replaced node")
	}
	name := out.(*Script).Stmts[0].(*Command).Name.Parts[0].(*LiteralPart)
	if name.Text != "new" {
		t.Fatalf("replacement missed: %q", name.Text)
	}
}

func TestWalkAccumulator(t *testing.T) {
	script := Mod(Cmd("a"), Cmd("b"), Cmd("c"))
	_, acc := Walk(script, []string{}, func(n Node, acc any) (Node, any) {
		names := acc.([]string)
		if cmd, ok := n.(*Command); ok {
			names = append(names, cmd.Name.Parts[0].(*LiteralPart).Text)
		}
		return n, names
	}, nil)
	names := acc.([]string)
	if len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Fatalf("accumulator = %v", names)
	}
}
