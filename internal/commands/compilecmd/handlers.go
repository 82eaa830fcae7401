package compilecmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-coursegen/internal/commands"
	"github.com/goliatone/go-coursegen/internal/compiler"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

const compileOperation = "course.compile"

// ErrServiceRequired is returned when the handler has nothing to compile with.
var ErrServiceRequired = errors.New("compile command: service is required")

// Service runs a compile for a request.
type Service interface {
	Compile(ctx context.Context, req Request) (*compiler.Result, error)
}

var _ command.Commander[CompileCourseCommand] = (*CompileCourseHandler)(nil)

// CompileCourseHandler runs compiles through the shared command handler.
type CompileCourseHandler struct {
	inner *commands.Handler[CompileCourseCommand]
}

// NewCompileCourseHandler builds a handler bound to service. Pass
// commands.WithTimeout through opts to bound a compile.
func NewCompileCourseHandler(service Service, logger interfaces.Logger, opts ...commands.HandlerOption[CompileCourseCommand]) *CompileCourseHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CompileCourseCommand) error {
		if service == nil {
			return ErrServiceRequired
		}

		result, err := service.Compile(ctx, msg.request())
		if result != nil {
			invokeCallback(msg.ResultCallback, ResultEnvelope{
				Result: result,
				Metadata: map[string]any{
					"operation": compileOperation,
					"dry_run":   msg.DryRun,
				},
			})
			logging.WithFields(baseLogger, map[string]any{
				"chapters":    result.Counts.Chapters,
				"sequentials": result.Counts.Sequentials,
				"verticals":   result.Counts.Verticals,
				"failures":    len(result.Failures),
				"dry_run":     result.DryRun,
			}).Info("coursegen.course.compile.summary")
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[CompileCourseCommand]{
		commands.WithLogger[CompileCourseCommand](baseLogger),
		commands.WithOperation[CompileCourseCommand](compileOperation),
		commands.WithMessageFields(func(msg CompileCourseCommand) map[string]any {
			fields := map[string]any{
				"source": msg.Source,
			}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.KeepGoing {
				fields["keep_going"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CompileCourseCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CompileCourseHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CompileCourseCommand].
func (h *CompileCourseHandler) Execute(ctx context.Context, msg CompileCourseCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
