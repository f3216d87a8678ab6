package interpreter

import (
	"strings"
	"testing"
	"time"
)

const presetYAML = `
options:
  errexit: true
  pipefail: true
vars:
  APP_ENV: staging
detach_timeout: 500ms
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(presetYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Options["errexit"] || !cfg.Options["pipefail"] {
		t.Fatalf("options = %v", cfg.Options)
	}
	if cfg.Vars["APP_ENV"] != "staging" {
		t.Fatalf("vars = %v", cfg.Vars)
	}
	if cfg.DetachTimeout != "500ms" {
		t.Fatalf("detach_timeout = %q", cfg.DetachTimeout)
	}
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("optoins:\n  errexit: true\n"))
	if err == nil {
		t.Fatalf("typoed field accepted")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(presetYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	s, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer s.Close()

	if !s.OptionEnabled(OptErrExit) || !s.OptionEnabled(OptPipeFail) {
		t.Fatalf("options not applied")
	}
	if s.OptionEnabled(OptNoUnset) {
		t.Fatalf("unrequested option enabled")
	}
	got, _ := s.Vars().Get("APP_ENV")
	if got != "staging" {
		t.Fatalf("APP_ENV = %q", got)
	}
	// Preset vars are exported so spawned commands inherit them.
	env := s.Vars().Environ()
	if len(env) != 1 || env[0] != "APP_ENV=staging" {
		t.Fatalf("Environ = %v", env)
	}
	if s.detachTimeout != 500*time.Millisecond {
		t.Fatalf("detachTimeout = %v", s.detachTimeout)
	}
}

func TestNewFromConfigUnknownOption(t *testing.T) {
	_, err := NewFromConfig(&SessionConfig{Options: map[string]bool{"xtrace": true}})
	if err == nil {
		t.Fatalf("unknown option accepted")
	}
}

func TestNewFromConfigBadTimeout(t *testing.T) {
	_, err := NewFromConfig(&SessionConfig{DetachTimeout: "soon"})
	if err == nil {
		t.Fatalf("malformed duration accepted")
	}
}
