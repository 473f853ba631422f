package modscope

import (
	"fmt"
	"strings"

	"github.com/modscope/modscope/session"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from JSON, YAML, TOML, environment variables, etc. The
// zero-value is useful – all nested fields inherit their package defaults.

type Config struct {
	// SearchPath holds the ordered base URLs manifests are resolved against.
	SearchPath []string `json:"searchPath,omitempty" yaml:"searchPath,omitempty"`

	// Env seeds the runtime environment table.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// Protected adds names to the protected set beyond the builtin host
	// modules and the entry module.
	Protected []string `json:"protected,omitempty" yaml:"protected,omitempty"`

	Session SessionConfig `json:"session" yaml:"session"`
}

// SessionConfig holds the defaults applied to every session constructed by
// the runtime; explicit session options win.
type SessionConfig struct {
	InheritEnv   *bool `json:"inheritEnv,omitempty" yaml:"inheritEnv,omitempty"`
	InheritPaths *bool `json:"inheritPaths,omitempty" yaml:"inheritPaths,omitempty"`
}

func (c SessionConfig) options() []session.Option {
	var ret []session.Option
	if c.InheritEnv != nil {
		ret = append(ret, session.WithInheritEnv(*c.InheritEnv))
	}
	if c.InheritPaths != nil {
		ret = append(ret, session.WithInheritPaths(*c.InheritPaths))
	}
	return ret
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New via
// WithConfig.
func DefaultConfig() *Config {
	return &Config{}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	for _, entry := range c.SearchPath {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("searchPath entries must not be empty")
		}
	}
	for _, name := range c.Protected {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("protected names must not be empty")
		}
	}
	return nil
}
