package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-coursegen/internal/course"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	CodeCommandInvalid   = "COURSEGEN_COMMAND_INVALID"
	CodeCommandCancelled = "COURSEGEN_COMMAND_CANCELLED"
	CodeCommandTimeout   = "COURSEGEN_COMMAND_TIMEOUT"
	CodeCommandContext   = "COURSEGEN_COMMAND_CONTEXT"
	CodeUnitMalformed    = "COURSEGEN_UNIT_MALFORMED"
	CodeUnitConversion   = "COURSEGEN_UNIT_CONVERSION_FAILED"
	CodeMetadataInvalid  = "COURSEGEN_METADATA_INVALID"
	CodeOutputIO         = "COURSEGEN_IO_FAILED"
	CodeCommandFailed    = "COURSEGEN_COMMAND_FAILED"
)

// ErrorCode returns the text code carried by err, or "" when err was not
// produced by a Handler.
func ErrorCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}

func wrapValidationError(err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(CodeCommandInvalid).
		WithMetadata(meta)
}

func wrapContextError(err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(CodeCommandCancelled).
			WithMetadata(meta)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(CodeCommandTimeout).
			WithMetadata(meta)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(CodeCommandContext).
			WithMetadata(meta)
	}
}

// wrapExecuteError tags compile failures by the course error they carry.
// Unit failures are bad input, so a keep-going run that skipped units is
// reported differently from a run that could not write its output.
func wrapExecuteError(err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	category, code, message := goerrors.CategoryCommand, CodeCommandFailed, "command execution failed"
	switch {
	case errors.Is(err, course.ErrMalformedUnit):
		category, code, message = goerrors.CategoryBadInput, CodeUnitMalformed, "course unit is malformed"
	case errors.Is(err, course.ErrConversion):
		category, code, message = goerrors.CategoryExternal, CodeUnitConversion, "course unit conversion failed"
	case errors.Is(err, course.ErrConfig):
		category, code, message = goerrors.CategoryBadInput, CodeMetadataInvalid, "course metadata is invalid"
	case errors.Is(err, course.ErrIO):
		category, code, message = goerrors.CategoryOperation, CodeOutputIO, "course files could not be read or written"
	}
	return goerrors.Wrap(err, category, message).
		WithTextCode(code).
		WithMetadata(meta)
}
