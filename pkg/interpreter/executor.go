package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bsh/engine-go/pkg/ast"
	"bsh/engine-go/pkg/process"
	"bsh/engine-go/pkg/runtime"
)

// ExecOption adjusts one Execute call without touching session state.
type ExecOption func(*execOptions)

type execOptions struct {
	stdin  io.Reader
	stdout runtime.Sink
	stderr runtime.Sink
}

// WithStdin supplies standard input for commands that read it.
func WithStdin(r io.Reader) ExecOption {
	return func(o *execOptions) { o.stdin = r }
}

// WithStdout overrides the stdout sink for this execution.
func WithStdout(sink runtime.Sink) ExecOption {
	return func(o *execOptions) { o.stdout = sink }
}

// WithStderr overrides the stderr sink for this execution.
func WithStderr(sink runtime.Sink) ExecOption {
	return func(o *execOptions) { o.stderr = sink }
}

// Execute runs a pre-validated node against the session. Statement
// lists fold left to right: each statement's session effects feed the
// next, and a typed failure (never a plain nonzero exit code) halts the
// remaining statements. Stray break/continue/return at the top level
// are absorbed, matching how a shell treats them outside any construct.
func (s *Session) Execute(ctx context.Context, node ast.Node, opts ...ExecOption) (*Result, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	cfg := execOptions{stdout: s.collector, stderr: s.collector}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &execEnv{s: s, ctx: ctx, stdin: cfg.stdin, stdout: cfg.stdout, stderr: cfg.stderr}
	code, err := e.execNode(node)
	if err != nil {
		var brk *breakSignal
		var cont *continueSignal
		var ret *returnSignal
		switch {
		case errors.As(err, &brk), errors.As(err, &cont):
			err = nil
		case errors.As(err, &ret):
			code, err = ret.code, nil
		}
	}
	if err != nil {
		return nil, err
	}
	s.setLastExit(code)
	result := &Result{exitCode: code}
	if c, ok := cfg.stdout.(*runtime.Collector); ok {
		result.collector = c
	}
	return result, nil
}

// execEnv threads per-execution context: stdio, sink overrides, and the
// function-call frame stack.
type execEnv struct {
	s      *Session
	ctx    context.Context
	stdin  io.Reader
	stdout runtime.Sink
	stderr runtime.Sink
	frames []*frame

	// guardConsumed marks that the statement just executed was a logical
	// list whose nonzero code came from a short-circuited guard, not from
	// its final operand; errexit must not act on it.
	guardConsumed bool
}

// frame is one function invocation: its positional parameters plus the
// saved values of variables declared local inside it.
type frame struct {
	params []string
	saved  []savedVar
}

type savedVar struct {
	name  string
	had   bool
	value string
}

func (e *execEnv) execNode(node ast.Node) (int, error) {
	switch n := node.(type) {
	case *ast.Script:
		return e.execStatements(n.Stmts)
	case ast.Statement:
		return e.execStatement(n)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot execute node %T", node)
	}
}

// execStatements is the sequential fold. A failure halts the remaining
// statements immediately; with errexit set, so does a plain nonzero
// exit. Constructs that consume exit codes themselves (if conditions,
// logical operands, loop conditions) evaluate outside this fold and are
// therefore exempt from errexit.
func (e *execEnv) execStatements(stmts []ast.Statement) (int, error) {
	code := 0
	for _, stmt := range stmts {
		e.guardConsumed = false
		c, err := e.execStatement(stmt)
		if err != nil {
			return c, err
		}
		code = c
		e.s.setLastExit(c)
		if c != 0 && !e.guardConsumed && e.s.OptionEnabled(OptErrExit) {
			return c, nil
		}
	}
	return code, nil
}

func (e *execEnv) execStatement(stmt ast.Statement) (int, error) {
	select {
	case <-e.ctx.Done():
		return 0, e.ctx.Err()
	default:
	}
	switch n := stmt.(type) {
	case *ast.Comment:
		return 0, nil
	case *ast.Command:
		return e.execCommand(n)
	case *ast.Pipeline:
		return e.execPipeline(n)
	case *ast.Assignment:
		return e.execAssignment(n)
	case *ast.ArrayAssignment:
		return e.execArrayAssignment(n)
	case *ast.If:
		return e.execIf(n)
	case *ast.For:
		return e.execFor(n)
	case *ast.While:
		return e.execWhile(n)
	case *ast.Case:
		return e.execCase(n)
	case *ast.FunctionDef:
		e.s.defineFunction(n)
		return 0, nil
	case *ast.Subshell:
		return e.execStatements(n.Body)
	case *ast.Group:
		return e.execStatements(n.Body)
	case *ast.Logical:
		return e.execLogical(n)
	case *ast.Background:
		return e.execBackground(n)
	case *ast.Arithmetic:
		return e.execArithmeticStmt(n)
	case *ast.Test:
		return e.execTest(n)
	case *ast.Break:
		return 0, &breakSignal{levels: maxInt(1, n.Levels)}
	case *ast.Continue:
		return 0, &continueSignal{levels: maxInt(1, n.Levels)}
	case *ast.Return:
		return e.execReturn(n)
	case *ast.Script:
		return e.execStatements(n.Stmts)
	default:
		return 0, fmt.Errorf("cannot execute statement %T", stmt)
	}
}

func (e *execEnv) expandArgv(cmd *ast.Command) ([]string, error) {
	name, err := e.expandWord(cmd.Name)
	if err != nil {
		return nil, err
	}
	argv := []string{name}
	for _, arg := range cmd.Args {
		v, err := e.expandWord(arg)
		if err != nil {
			return nil, err
		}
		argv = append(argv, v)
	}
	return argv, nil
}

func (e *execEnv) heredocStdin(cmd *ast.Command, fallback io.Reader) (io.Reader, error) {
	if cmd.Heredoc == nil {
		return fallback, nil
	}
	body, err := ast.RenderHeredoc(cmd.Heredoc, cmd.Position)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(body), nil
}

func (e *execEnv) execCommand(n *ast.Command) (int, error) {
	argv, err := e.expandArgv(n)
	if err != nil {
		return 0, err
	}
	if e.s.OptionEnabled(OptVerbose) {
		line := strings.Join(argv, " ") + "\n"
		_ = e.stderr.Write(runtime.Chunk{Stream: runtime.TagStderr, Data: []byte(line)})
	}

	if fn, ok := e.s.Function(argv[0]); ok {
		return e.invokeFunction(fn, argv[1:])
	}

	stdin, err := e.heredocStdin(n, e.stdin)
	if err != nil {
		return 0, err
	}

	if builtin, ok := e.s.builtins.Lookup(argv[0]); ok {
		bc := &BuiltinContext{Session: e.s, Stdin: stdin, Stdout: e.stdout, Stderr: e.stderr}
		return builtin(bc, argv[1:]), nil
	}

	job, err := process.Spawn(process.SpawnSpec{
		Argv:   argv,
		Env:    e.s.vars.Environ(),
		Stdin:  stdin,
		Stdout: sinkWriter{sink: e.stdout, tag: runtime.TagStdout},
		Stderr: sinkWriter{sink: e.stderr, tag: runtime.TagStderr},
	})
	if err != nil {
		return 0, err
	}
	code, err := job.Wait(e.ctx)
	if err != nil {
		// The caller abandoned the wait; a foreground command must not
		// keep running unsupervised.
		_ = job.Signal(process.SigKill)
		return 0, err
	}
	return code, nil
}

// execPipeline wires every stage through named pipes and runs them
// concurrently; only kernel backpressure synchronises them. Stages are
// simple external commands by the validator's contract.
func (e *execEnv) execPipeline(n *ast.Pipeline) (int, error) {
	specs := make([]process.SpawnSpec, 0, len(n.Cmds))
	for i, stmt := range n.Cmds {
		cmd, ok := stmt.(*ast.Command)
		if !ok {
			return 0, fmt.Errorf("pipeline stage %d: unsupported statement %T", i, stmt)
		}
		argv, err := e.expandArgv(cmd)
		if err != nil {
			return 0, err
		}
		spec := process.SpawnSpec{
			Argv:   argv,
			Env:    e.s.vars.Environ(),
			Stderr: sinkWriter{sink: e.stderr, tag: runtime.TagStderr},
		}
		if i == 0 {
			spec.Stdin, err = e.heredocStdin(cmd, e.stdin)
			if err != nil {
				return 0, err
			}
		}
		if i == len(n.Cmds)-1 {
			spec.Stdout = sinkWriter{sink: e.stdout, tag: runtime.TagStdout}
		}
		specs = append(specs, spec)
	}
	return process.RunPipeline(e.ctx, specs, e.s.OptionEnabled(OptPipeFail))
}

func (e *execEnv) execAssignment(n *ast.Assignment) (int, error) {
	value, err := e.expandWord(n.Value)
	if err != nil {
		return 0, err
	}
	if n.Local {
		e.saveLocal(n.Name)
	}
	store := e.s.vars
	if n.Index == nil {
		if err := store.Set(n.Name, value); err != nil {
			return 0, err
		}
		return 0, nil
	}
	index, err := e.expandWord(n.Index)
	if err != nil {
		return 0, err
	}
	if store.IsAssociative(n.Name) {
		if err := store.SetKey(n.Name, index, value); err != nil {
			return 0, err
		}
		return 0, nil
	}
	idx, err := strconv.ParseInt(index, 10, 64)
	if err != nil {
		return 0, &runtime.VariableError{Kind: runtime.ErrBadIndex, Name: n.Name, Message: fmt.Sprintf("invalid index %q", index)}
	}
	if err := store.SetIndex(n.Name, idx, value); err != nil {
		return 0, err
	}
	return 0, nil
}

func (e *execEnv) execArrayAssignment(n *ast.ArrayAssignment) (int, error) {
	store := e.s.vars
	if store.IsReadonly(n.Name) {
		return 0, &runtime.VariableError{Kind: runtime.ErrReadonly, Name: n.Name, Message: "readonly variable"}
	}
	if n.Assoc {
		if err := store.DeclareAssoc(n.Name); err != nil {
			return 0, err
		}
		for _, el := range n.Elems {
			key, err := e.expandWord(el.Key)
			if err != nil {
				return 0, err
			}
			value, err := e.expandWord(el.Value)
			if err != nil {
				return 0, err
			}
			if err := store.SetKey(n.Name, key, value); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}
	if err := store.Unset(n.Name); err != nil {
		return 0, err
	}
	next := int64(0)
	for _, el := range n.Elems {
		value, err := e.expandWord(el.Value)
		if err != nil {
			return 0, err
		}
		if el.Key != nil {
			keyStr, err := e.expandWord(el.Key)
			if err != nil {
				return 0, err
			}
			idx, err := strconv.ParseInt(keyStr, 10, 64)
			if err != nil {
				return 0, &runtime.VariableError{Kind: runtime.ErrBadIndex, Name: n.Name, Message: fmt.Sprintf("invalid index %q", keyStr)}
			}
			next = idx
		}
		if err := store.SetIndex(n.Name, next, value); err != nil {
			return 0, err
		}
		next++
	}
	return 0, nil
}

func (e *execEnv) execIf(n *ast.If) (int, error) {
	cond, err := e.execStatement(n.Cond)
	if err != nil {
		return cond, err
	}
	e.s.setLastExit(cond)
	if cond == 0 {
		return e.execStatements(n.Then)
	}
	if len(n.Else) > 0 {
		return e.execStatements(n.Else)
	}
	// No branch taken: the if itself succeeds.
	return 0, nil
}

// execFor resolves the whole item list before the first iteration; body
// mutations cannot change the remaining items.
func (e *execEnv) execFor(n *ast.For) (int, error) {
	items := make([]string, 0, len(n.Items))
	for _, w := range n.Items {
		v, err := e.expandWord(w)
		if err != nil {
			return 0, err
		}
		items = append(items, v)
	}
	code := 0
	for _, item := range items {
		if err := e.s.vars.Set(n.Var, item); err != nil {
			return 0, err
		}
		c, brk, err := e.runLoopBody(n.Body)
		if err != nil {
			return c, err
		}
		code = c
		if brk {
			break
		}
	}
	return code, nil
}

func (e *execEnv) execWhile(n *ast.While) (int, error) {
	code := 0
	for {
		cond, err := e.execStatement(n.Cond)
		if err != nil {
			return cond, err
		}
		e.s.setLastExit(cond)
		proceed := cond == 0
		if n.Until {
			proceed = !proceed
		}
		if !proceed {
			return code, nil
		}
		c, brk, err := e.runLoopBody(n.Body)
		if err != nil {
			return c, err
		}
		code = c
		if brk {
			return code, nil
		}
	}
}

// runLoopBody executes one iteration and consumes break/continue
// signals addressed to this loop; outer-loop signals pass through with
// their level decremented.
func (e *execEnv) runLoopBody(body []ast.Statement) (code int, brk bool, err error) {
	c, err := e.execStatements(body)
	if err == nil {
		return c, false, nil
	}
	var b *breakSignal
	if errors.As(err, &b) {
		if b.levels > 1 {
			b.levels--
			return c, true, b
		}
		return c, true, nil
	}
	var cont *continueSignal
	if errors.As(err, &cont) {
		if cont.levels > 1 {
			cont.levels--
			return c, true, cont
		}
		return c, false, nil
	}
	return c, false, err
}

func (e *execEnv) execCase(n *ast.Case) (int, error) {
	subject, err := e.expandWord(n.Subject)
	if err != nil {
		return 0, err
	}
	for _, clause := range n.Clauses {
		for _, pat := range clause.Patterns {
			pattern, err := e.expandWord(pat)
			if err != nil {
				return 0, err
			}
			if matchGlob(pattern, subject) {
				return e.execStatements(clause.Body)
			}
		}
	}
	return 0, nil
}

func (e *execEnv) execLogical(n *ast.Logical) (int, error) {
	left, err := e.execStatement(n.Left)
	if err != nil {
		return left, err
	}
	e.s.setLastExit(left)
	switch n.Op {
	case ast.LogicalAnd:
		if left != 0 {
			// The && consumed the guard's failure; only a failing final
			// operand may trip errexit.
			e.guardConsumed = true
			return left, nil
		}
	case ast.LogicalOr:
		if left == 0 {
			return left, nil
		}
	}
	e.guardConsumed = false
	return e.execStatement(n.Right)
}

// execBackground launches the child without waiting and registers it in
// the session's job table; the statement itself always exits zero.
func (e *execEnv) execBackground(n *ast.Background) (int, error) {
	cmd, ok := n.Child.(*ast.Command)
	if !ok {
		return 0, fmt.Errorf("background launch requires a simple command, got %T", n.Child)
	}
	argv, err := e.expandArgv(cmd)
	if err != nil {
		return 0, err
	}
	stdin, err := e.heredocStdin(cmd, nil)
	if err != nil {
		return 0, err
	}
	job, err := process.Spawn(process.SpawnSpec{
		Argv:   argv,
		Env:    e.s.vars.Environ(),
		Stdin:  stdin,
		Stdout: sinkWriter{sink: e.stdout, tag: runtime.TagStdout},
		Stderr: sinkWriter{sink: e.stderr, tag: runtime.TagStderr},
	})
	if err != nil {
		return 0, err
	}
	e.s.jobs.Add(job)
	return 0, nil
}

func (e *execEnv) execArithmeticStmt(n *ast.Arithmetic) (int, error) {
	v, err := e.evalArith(n.Expr)
	if err != nil {
		return 0, err
	}
	if v != 0 {
		return 0, nil
	}
	return 1, nil
}

func (e *execEnv) execReturn(n *ast.Return) (int, error) {
	code := e.s.LastExit()
	if n.Code != nil {
		raw, err := e.expandWord(n.Code)
		if err != nil {
			return 0, err
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, fmt.Errorf("return: invalid exit code %q", raw)
		}
		code = parsed & 0xff
	}
	return code, &returnSignal{code: code}
}

// invokeFunction pushes a parameter frame, runs the body, and consumes
// the return signal. Locals declared inside are restored on exit.
func (e *execEnv) invokeFunction(fn *ast.FunctionDef, args []string) (int, error) {
	fr := &frame{params: args}
	e.frames = append(e.frames, fr)
	defer func() {
		e.restoreLocals(fr)
		e.frames = e.frames[:len(e.frames)-1]
	}()
	code, err := e.execStatements(fn.Body)
	if err != nil {
		var ret *returnSignal
		if errors.As(err, &ret) {
			return ret.code, nil
		}
		return code, err
	}
	return code, nil
}

func (e *execEnv) currentFrame() *frame {
	if len(e.frames) == 0 {
		return nil
	}
	return e.frames[len(e.frames)-1]
}

// saveLocal records the current value of name so the enclosing function
// invocation can restore it; outside a function the flag is inert.
func (e *execEnv) saveLocal(name string) {
	fr := e.currentFrame()
	if fr == nil {
		return
	}
	for _, sv := range fr.saved {
		if sv.name == name {
			return
		}
	}
	had := e.s.vars.IsSet(name)
	value := ""
	if had {
		value, _ = e.s.vars.Get(name)
	}
	fr.saved = append(fr.saved, savedVar{name: name, had: had, value: value})
}

func (e *execEnv) restoreLocals(fr *frame) {
	for i := len(fr.saved) - 1; i >= 0; i-- {
		sv := fr.saved[i]
		if sv.had {
			_ = e.s.vars.Set(sv.name, sv.value)
		} else {
			_ = e.s.vars.Unset(sv.name)
		}
	}
}

// sinkWriter adapts a Sink to io.Writer for process stdio wiring.
type sinkWriter struct {
	sink runtime.Sink
	tag  runtime.Tag
}

func (w sinkWriter) Write(p []byte) (int, error) {
	if err := w.sink.Write(runtime.Chunk{Stream: w.tag, Data: p}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
