// Package config loads default option values from a TOML file. Every field
// is optional; command-line flags always win over file values, which in turn
// win over the built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Error definitions for the config package
var (
	// ErrConfigNotFound is returned when an explicitly named config file
	// does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidConfig is returned when the file is not valid TOML or names
	// unknown keys.
	ErrInvalidConfig = errors.New("invalid config file")
)

// EnvConfigPath names the environment variable that supplies a default
// config file path when no --config flag is given.
const EnvConfigPath = "SHQ_CONFIG"

// File holds the option defaults read from a config file. Pointer fields
// distinguish "unset" from an explicit false.
type File struct {
	EscapeMore           *bool  `toml:"escape_more"`
	EscapeInvisible      *bool  `toml:"escape_invisible"`
	Minimal              *bool  `toml:"minimal"`
	IgnoreNullInput      *bool  `toml:"ignore_null_input"`
	UnicodeEscapes       *bool  `toml:"unicode_escapes"`
	NullTerminatedOutput *bool  `toml:"null_terminated_output"`
	FlushRecords         *bool  `toml:"flush_records"`
	NoAutoFlush          *bool  `toml:"no_auto_flush"`
	LogLevel             string `toml:"log_level"`
}

// Load reads and parses the config file at path. Unknown keys are rejected
// so that a misspelled option fails loudly instead of being ignored.
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	return Parse(content)
}

// Parse decodes TOML config content.
func Parse(content []byte) (*File, error) {
	var cfg File
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// DefaultPath returns the config path from the environment, or "" when no
// default file is configured.
func DefaultPath(getenv func(string) string) string {
	return getenv(EnvConfigPath)
}

// Bools returns the boolean fields keyed by their long flag name, so the
// caller can merge file values under flags set explicitly on the command
// line.
func (f *File) Bools() map[string]*bool {
	return map[string]*bool{
		"escape-more":            f.EscapeMore,
		"escape-invisible":       f.EscapeInvisible,
		"minimal":                f.Minimal,
		"ignore-null-input":      f.IgnoreNullInput,
		"unicode-escapes":        f.UnicodeEscapes,
		"null-terminated-output": f.NullTerminatedOutput,
		"flush-arguments":        f.FlushRecords,
		"no-auto-flush":          f.NoAutoFlush,
	}
}
