package ast

import (
	"errors"
	"testing"
)

func TestRenderHeredocAddsTrailingNewline(t *testing.T) {
	h := &Heredoc{Delimiter: "EOF", Body: "line one\nline two"}
	body, err := RenderHeredoc(h, Position{})
	if err != nil {
		t.Fatalf("RenderHeredoc: %v", err)
	}
	if body != "line one\nline two\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestRenderHeredocEmpty(t *testing.T) {
	body, err := RenderHeredoc(&Heredoc{Delimiter: "EOF"}, Position{})
	if err != nil || body != "" {
		t.Fatalf("empty heredoc = %q, %v", body, err)
	}
	body, err = RenderHeredoc(nil, Position{})
	if err != nil || body != "" {
		t.Fatalf("nil heredoc = %q, %v", body, err)
	}
}

func TestRenderHeredocDelimiterCollision(t *testing.T) {
	h := &Heredoc{Delimiter: "END", Body: "safe\nEND\nmore"}
	_, err := RenderHeredoc(h, Position{Line: 3})
	var ee *EscapeError
	if !errors.As(err, &ee) {
		t.Fatalf("want EscapeError, got %v", err)
	}
	if ee.Delimiter != "END" || ee.Position.Line != 3 {
		t.Fatalf("error context = %+v", ee)
	}
}
