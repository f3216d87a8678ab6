package interpreter

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"bsh/engine-go/pkg/ast"
	"bsh/engine-go/pkg/runtime"
)

// execTest evaluates a [[ ]]-style predicate. True is exit 0, false is
// exit 1; a malformed predicate (unknown operator, non-numeric operand
// to a numeric comparison) reports to stderr and exits 2, the way test
// itself behaves.
func (e *execEnv) execTest(n *ast.Test) (int, error) {
	left, err := e.expandWord(n.Left)
	if err != nil {
		return 0, err
	}
	right, err := e.expandWord(n.Right)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case "-z":
		return boolExit(right == ""), nil
	case "-n":
		return boolExit(right != ""), nil
	case "-e":
		_, err := os.Stat(right)
		return boolExit(err == nil), nil
	case "-f":
		info, err := os.Stat(right)
		return boolExit(err == nil && info.Mode().IsRegular()), nil
	case "-d":
		info, err := os.Stat(right)
		return boolExit(err == nil && info.IsDir()), nil
	case "-v":
		return boolExit(e.s.vars.IsSet(right)), nil
	case "=", "==":
		// == matches the right side as a glob pattern, like [[ ]].
		return boolExit(matchGlob(right, left)), nil
	case "!=":
		return boolExit(!matchGlob(right, left)), nil
	case "<":
		return boolExit(left < right), nil
	case ">":
		return boolExit(left > right), nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		l, lerr := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
		r, rerr := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
		if lerr != nil || rerr != nil {
			e.testComplaint("integer expression expected")
			return 2, nil
		}
		switch n.Op {
		case "-eq":
			return boolExit(l == r), nil
		case "-ne":
			return boolExit(l != r), nil
		case "-lt":
			return boolExit(l < r), nil
		case "-le":
			return boolExit(l <= r), nil
		case "-gt":
			return boolExit(l > r), nil
		default:
			return boolExit(l >= r), nil
		}
	default:
		e.testComplaint(fmt.Sprintf("unknown operator %q", n.Op))
		return 2, nil
	}
}

func (e *execEnv) testComplaint(msg string) {
	_ = e.stderr.Write(runtime.Chunk{Stream: runtime.TagStderr, Data: []byte("test: " + msg + "\n")})
}

func boolExit(b bool) int {
	if b {
		return 0
	}
	return 1
}
