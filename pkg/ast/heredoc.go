package ast

import (
	"fmt"
	"strings"
)

// EscapeError reports content that cannot be represented safely, such as
// a heredoc body containing its own delimiter line. It carries enough
// context for the embedder to point the user at a fix.
type EscapeError struct {
	Position  Position
	Delimiter string
	Hint      string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("heredoc body contains its own delimiter %q: %s", e.Delimiter, e.Hint)
}

// RenderHeredoc returns the byte content a heredoc feeds to a command's
// standard input. The body always ends with a trailing newline, matching
// how shells terminate the final heredoc line. A body line equal to the
// delimiter would truncate the document when re-serialised, so it fails
// with an EscapeError instead of being passed through silently.
func RenderHeredoc(h *Heredoc, pos Position) (string, error) {
	if h == nil {
		return "", nil
	}
	for _, line := range strings.Split(h.Body, "\n") {
		if line == h.Delimiter {
			return "", &EscapeError{
				Position:  pos,
				Delimiter: h.Delimiter,
				Hint:      "choose a delimiter that does not occur as a body line",
			}
		}
	}
	body := h.Body
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body, nil
}
