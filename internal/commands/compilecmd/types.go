package compilecmd

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-coursegen/internal/compiler"
	"github.com/goliatone/go-coursegen/internal/runtimeconfig"
)

const compileCourseMessageType = "coursegen.course.compile"

// ResultCallback receives the compile result. It is optional and runs
// synchronously inside the handler, including for keep-going runs that
// return an error alongside a result.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a compile command.
type ResultEnvelope struct {
	Result   *compiler.Result
	Metadata map[string]any
}

// Request is what a Service needs to run one compile.
type Request struct {
	Source    string
	Output    string
	DryRun    bool
	KeepGoing bool
}

// CompileCourseCommand compiles the course tree under Source into Output.
type CompileCourseCommand struct {
	// Source is the course root directory.
	Source string `json:"source"`
	// Output defaults to <Source>/course when empty.
	Output         string         `json:"output,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	KeepGoing      bool           `json:"keep_going,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (CompileCourseCommand) Type() string { return compileCourseMessageType }

// Validate ensures a source is present and that wiping the output cannot
// remove the source.
func (m CompileCourseCommand) Validate() error {
	errs := validation.Errors{}
	source := strings.TrimSpace(m.Source)
	if source == "" {
		errs["source"] = validation.NewError("coursegen.course.compile.source_required", "source is required")
	}
	if output := strings.TrimSpace(m.Output); output != "" && source != "" {
		switch err := runtimeconfig.CheckOutput(source, output); {
		case err == nil:
		case errors.Is(err, runtimeconfig.ErrOutputIsSource):
			errs["output"] = validation.NewError("coursegen.course.compile.output_is_source", "output must differ from source")
		case errors.Is(err, runtimeconfig.ErrOutputContainsSource):
			errs["output"] = validation.NewError("coursegen.course.compile.output_contains_source", "output must not contain source")
		default:
			errs["output"] = validation.NewError("coursegen.course.compile.output_invalid", err.Error())
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m CompileCourseCommand) request() Request {
	return Request{
		Source:    strings.TrimSpace(m.Source),
		Output:    strings.TrimSpace(m.Output),
		DryRun:    m.DryRun,
		KeepGoing: m.KeepGoing,
	}
}
