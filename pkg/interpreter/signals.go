package interpreter

import "fmt"

// Control-flow signals travel the error channel so they unwind the
// statement fold like failures do, but dispatch consumes them at the
// matching construct instead of surfacing them. They never reach an
// embedder.

type breakSignal struct {
	levels int
}

func (b *breakSignal) Error() string {
	if b.levels > 1 {
		return fmt.Sprintf("break %d", b.levels)
	}
	return "break"
}

type continueSignal struct {
	levels int
}

func (c *continueSignal) Error() string {
	if c.levels > 1 {
		return fmt.Sprintf("continue %d", c.levels)
	}
	return "continue"
}

type returnSignal struct {
	code int
}

func (r *returnSignal) Error() string {
	return fmt.Sprintf("return %d", r.code)
}
