package course

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedUnit = errors.New("malformed unit")
	ErrConversion    = errors.New("markdown conversion failed")
	ErrIO            = errors.New("io failure")
	ErrConfig        = errors.New("invalid course metadata")
)

// MalformedUnitError reports a unit file the classifier cannot accept.
type MalformedUnitError struct {
	Path   string
	Reason string
}

func (e *MalformedUnitError) Error() string {
	return describe(ErrMalformedUnit, e.Path, e.Reason, nil)
}

func (e *MalformedUnitError) Unwrap() error { return ErrMalformedUnit }

// ConversionError reports a failed Markdown to HTML conversion, including
// timeouts of the external converter.
type ConversionError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	return describe(ErrConversion, e.Path, e.Stderr, e.Err)
}

func (e *ConversionError) Unwrap() []error { return []error{ErrConversion, e.Err} }

// IOError reports a read, write or copy failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return describe(ErrIO, e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// ConfigError reports a missing or invalid metadata document.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return describe(ErrConfig, e.Path, e.Reason, e.Err)
}

func (e *ConfigError) Unwrap() []error { return []error{ErrConfig, e.Err} }

// WithPath fills in the path on a course error that was raised without one,
// such as a classifier failure. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var (
		malformed  *MalformedUnitError
		conversion *ConversionError
	)
	switch {
	case errors.As(err, &malformed) && malformed.Path == "":
		malformed.Path = path
	case errors.As(err, &conversion) && conversion.Path == "":
		conversion.Path = path
	}
	return err
}

// IsUnitLevel reports whether err only affects the unit it came from.
func IsUnitLevel(err error) bool {
	return errors.Is(err, ErrMalformedUnit) || errors.Is(err, ErrConversion)
}

func describe(kind error, path, detail string, cause error) string {
	msg := kind.Error()
	if path != "" {
		msg = fmt.Sprintf("%s: %s", msg, path)
	}
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return msg
}
