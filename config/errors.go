package config

import "errors"

// Sentinel errors for configuration loading.
var (
	// ErrUnknownFormat is returned for file extensions other than
	// .yaml/.yml/.toml.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrInvalid is returned by Validate for structural problems.
	ErrInvalid = errors.New("invalid config")
)

// ParseError wraps a YAML or TOML decode failure with its source path.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Err is the decoder's error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return "parsing config " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the decoder's error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
