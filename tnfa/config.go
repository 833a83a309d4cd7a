package tnfa

import (
	"github.com/coregx/tre/internal/stack"
	"github.com/coregx/tre/syntax"
)

// Config controls compilation limits and search behavior.
//
// Example:
//
//	config := tnfa.DefaultConfig()
//	config.EnablePrefilter = false // always run the automaton from every offset
//	t, err := tnfa.Compile(`a[0-9]+`, syntax.Extended, config)
type Config struct {
	// MaxNodes caps the number of AST nodes created while parsing and while
	// expanding bounded repetitions. Patterns such as (a{255}){255} fail
	// with REG_ESPACE instead of exhausting memory. 0 disables the cap.
	// Default: 1<<20
	MaxNodes int

	// StackInitial, StackMax and StackIncrement size the explicit work
	// stacks used by every tree walk.
	// Default: 512, 1024000, 128
	StackInitial   int
	StackMax       int
	StackIncrement int

	// EnablePrefilter builds a literal prefilter when every match must start
	// with one of a small set of byte strings.
	// Default: true
	EnablePrefilter bool

	// MaxLiterals limits the size of the extracted literal set.
	// Default: 64
	MaxLiterals int

	// MaxLiteralLen limits the length of each extracted literal.
	// Default: 32
	MaxLiteralLen int

	// MaxClassSize is the largest character range expanded into literals.
	// Default: 10
	MaxClassSize int

	// MaxBacktrackFrames caps the backtracking stack. A search that needs
	// more frames fails with REG_ESPACE.
	// Default: 1<<22
	MaxBacktrackFrames int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxNodes:           1 << 20,
		StackInitial:       stack.DefaultInitial,
		StackMax:           stack.DefaultMax,
		StackIncrement:     stack.DefaultIncrement,
		EnablePrefilter:    true,
		MaxLiterals:        64,
		MaxLiteralLen:      32,
		MaxClassSize:       10,
		MaxBacktrackFrames: 1 << 22,
	}
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.MaxNodes < 0 {
		return &ConfigError{Field: "MaxNodes", Message: "must not be negative"}
	}
	if c.StackInitial < 1 {
		return &ConfigError{Field: "StackInitial", Message: "must be at least 1"}
	}
	if c.StackMax < c.StackInitial {
		return &ConfigError{Field: "StackMax", Message: "must be at least StackInitial"}
	}
	if c.StackIncrement < 1 {
		return &ConfigError{Field: "StackIncrement", Message: "must be at least 1"}
	}
	if c.EnablePrefilter {
		if c.MaxLiterals < 1 || c.MaxLiterals > 1_000 {
			return &ConfigError{Field: "MaxLiterals", Message: "must be between 1 and 1,000"}
		}
		if c.MaxLiteralLen < 1 || c.MaxLiteralLen > 256 {
			return &ConfigError{Field: "MaxLiteralLen", Message: "must be between 1 and 256"}
		}
		if c.MaxClassSize < 1 || c.MaxClassSize > 256 {
			return &ConfigError{Field: "MaxClassSize", Message: "must be between 1 and 256"}
		}
	}
	if c.MaxBacktrackFrames < 1 {
		return &ConfigError{Field: "MaxBacktrackFrames", Message: "must be at least 1"}
	}
	return nil
}

func (c Config) limits() syntax.Limits {
	return syntax.Limits{
		MaxNodes:       c.MaxNodes,
		StackInitial:   c.StackInitial,
		StackMax:       c.StackMax,
		StackIncrement: c.StackIncrement,
	}
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "tre: invalid config: " + e.Field + ": " + e.Message
}
