package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	// TelemetryStatusPartial marks a run that skipped malformed or
	// unconvertible units but still wrote the rest of the course.
	TelemetryStatusPartial      TelemetryStatus = "partial"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks once a command returns.
// Error is the tagged error returned to the caller and Code its text code.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Code      string
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every command run.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one coursegen.command.* entry per run with the
// outcome status, elapsed time and, on failure, the error code.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"status", string(info.Status), "elapsed", info.Duration}
		if info.Code != "" {
			args = append(args, "error_code", info.Code)
		}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("coursegen.command.completed", args...)
		case TelemetryStatusPartial:
			entry.Warn("coursegen.command.partial", append(args, "error", info.Error)...)
		case TelemetryStatusContextError:
			entry.Error("coursegen.command.interrupted", append(args, "error", info.Error)...)
		default:
			entry.Error("coursegen.command.failed", append(args, "error", info.Error)...)
		}
	}
}
