package interpreter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"bsh/engine-go/pkg/runtime"
)

// BuiltinContext is what a builtin sees when invoked: the owning
// session and the stdio of the call site.
type BuiltinContext struct {
	Session *Session
	Stdin   io.Reader
	Stdout  runtime.Sink
	Stderr  runtime.Sink
}

// Out writes s to the builtin's stdout sink.
func (bc *BuiltinContext) Out(s string) {
	_ = bc.Stdout.Write(runtime.Chunk{Stream: runtime.TagStdout, Data: []byte(s)})
}

// Errf writes a formatted diagnostic to the builtin's stderr sink.
func (bc *BuiltinContext) Errf(format string, args ...any) {
	_ = bc.Stderr.Write(runtime.Chunk{Stream: runtime.TagStderr, Data: []byte(fmt.Sprintf(format, args...))})
}

// Builtin runs in-process instead of spawning; it returns the exit
// code.
type Builtin func(*BuiltinContext, []string) int

// Registry resolves a command name to a builtin before external spawn
// is attempted. The registry is consulted for simple commands only:
// pipeline stages always spawn external processes, so a name that
// exists solely as a builtin fails to spawn inside a pipeline.
type Registry interface {
	Lookup(name string) (Builtin, bool)
}

// MapRegistry is the plain map-backed Registry.
type MapRegistry map[string]Builtin

func (m MapRegistry) Lookup(name string) (Builtin, bool) {
	b, ok := m[name]
	return b, ok
}

// DefaultRegistry returns the builtins every new session starts with.
func DefaultRegistry() MapRegistry {
	return MapRegistry{
		"echo":   builtinEcho,
		"printf": builtinPrintf,
		"true":   func(*BuiltinContext, []string) int { return 0 },
		"false":  func(*BuiltinContext, []string) int { return 1 },
		"pwd":    builtinPwd,
	}
}

func builtinEcho(bc *BuiltinContext, args []string) int {
	newline := true
	if len(args) > 0 && args[0] == "-n" {
		newline = false
		args = args[1:]
	}
	out := strings.Join(args, " ")
	if newline {
		out += "\n"
	}
	bc.Out(out)
	return 0
}

// builtinPrintf supports the %s %d %x %% verbs and the \n \t escapes;
// surplus arguments re-run the format, like printf(1).
func builtinPrintf(bc *BuiltinContext, args []string) int {
	if len(args) == 0 {
		bc.Errf("printf: missing format\n")
		return 2
	}
	format := unescapePrintf(args[0])
	args = args[1:]
	var sb strings.Builder
	for {
		rest, err := formatOnce(&sb, format, args)
		if err != nil {
			bc.Errf("printf: %v\n", err)
			return 1
		}
		// A verb-free format consumes nothing; reusing it would loop
		// forever on surplus arguments.
		if len(rest) == len(args) {
			break
		}
		args = rest
		if len(args) == 0 {
			break
		}
	}
	bc.Out(sb.String())
	return 0
}

func unescapePrintf(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case 't':
				sb.WriteByte('\t')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func formatOnce(sb *strings.Builder, format string, args []string) ([]string, error) {
	next := func() string {
		if len(args) == 0 {
			return ""
		}
		v := args[0]
		args = args[1:]
		return v
	}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			sb.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case '%':
			sb.WriteByte('%')
		case 's':
			sb.WriteString(next())
		case 'd':
			n, err := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%v", err)
			}
			sb.WriteString(strconv.FormatInt(n, 10))
		case 'x':
			n, err := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%v", err)
			}
			sb.WriteString(strconv.FormatInt(n, 16))
		default:
			return nil, fmt.Errorf("unsupported verb %%%c", format[i])
		}
	}
	return args, nil
}

func builtinPwd(bc *BuiltinContext, _ []string) int {
	dir, err := os.Getwd()
	if err != nil {
		bc.Errf("pwd: %v\n", err)
		return 1
	}
	bc.Out(dir + "\n")
	return 0
}
