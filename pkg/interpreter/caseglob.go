package interpreter

import "path"

// matchGlob matches s against a shell glob pattern (* ? [...]). A
// malformed pattern falls back to a literal comparison rather than
// failing the whole case statement.
func matchGlob(pattern, s string) bool {
	ok, err := path.Match(pattern, s)
	if err != nil {
		return pattern == s
	}
	return ok
}
