package interpreter

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"bsh/engine-go/pkg/runtime"
)

// SessionConfig is the YAML shape for preset sessions: shell options,
// pre-seeded exported variables, and the disown handshake bound.
type SessionConfig struct {
	Options       map[string]bool   `yaml:"options"`
	Vars          map[string]string `yaml:"vars"`
	DetachTimeout string            `yaml:"detach_timeout"`
}

var optionNames = map[string]Option{
	"errexit":  OptErrExit,
	"pipefail": OptPipeFail,
	"nounset":  OptNoUnset,
	"verbose":  OptVerbose,
}

// LoadConfig decodes a session preset. Unknown fields are rejected so a
// typo in a preset file fails loudly instead of silently dropping an
// option.
func LoadConfig(r io.Reader) (*SessionConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var cfg SessionConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode session config: %w", err)
	}
	return &cfg, nil
}

// NewFromConfig builds a session with the preset applied. Variables
// are set exported so spawned commands see them.
func NewFromConfig(cfg *SessionConfig) (*Session, error) {
	s := New()
	for name, on := range cfg.Options {
		opt, ok := optionNames[name]
		if !ok {
			s.Close()
			return nil, fmt.Errorf("unknown option %q", name)
		}
		s.SetOption(opt, on)
	}
	for name, value := range cfg.Vars {
		if err := s.vars.Set(name, value); err != nil {
			s.Close()
			return nil, err
		}
		if err := s.vars.SetAttr(name, runtime.AttrExport); err != nil {
			s.Close()
			return nil, err
		}
	}
	if cfg.DetachTimeout != "" {
		d, err := time.ParseDuration(cfg.DetachTimeout)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("detach_timeout: %w", err)
		}
		s.SetDetachTimeout(d)
	}
	return s, nil
}
