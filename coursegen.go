// Package coursegen compiles a directory of Markdown course content into an
// OLX course package.
package coursegen

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-coursegen/internal/commands"
	"github.com/goliatone/go-coursegen/internal/commands/compilecmd"
	"github.com/goliatone/go-coursegen/internal/compiler"
	"github.com/goliatone/go-coursegen/internal/emitter"
	"github.com/goliatone/go-coursegen/internal/identity"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/internal/logging/console"
	"github.com/goliatone/go-coursegen/internal/logging/gologger"
	"github.com/goliatone/go-coursegen/internal/markdown"
	"github.com/goliatone/go-coursegen/internal/metadata"
	"github.com/goliatone/go-coursegen/internal/runtimeconfig"
	"github.com/goliatone/go-coursegen/internal/scan"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

type (
	// Result summarises a compile run.
	Result = compiler.Result
	// CompileRequest selects the source and output of one run. Empty fields
	// fall back to the module Config.
	CompileRequest = compilecmd.Request
	// CompileCourseCommand is the go-command message handled by CompileHandler.
	CompileCourseCommand = compilecmd.CompileCourseCommand
	ResultEnvelope       = compilecmd.ResultEnvelope
	// IDGenerator hands out component identifiers.
	IDGenerator = identity.Generator
)

// Option customises a Module.
type Option func(*Module)

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// WithConverter replaces the converter selected by Config.Markdown.
func WithConverter(converter interfaces.MarkdownConverter) Option {
	return func(m *Module) {
		if converter != nil {
			m.converter = converter
		}
	}
}

// WithTemplateRenderer replaces the embedded pongo2 templates.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(m *Module) {
		if renderer != nil {
			m.renderer = renderer
		}
	}
}

// WithIDGenerator fixes the generator used by every run. Config.IDSeed is
// ignored when set.
func WithIDGenerator(ids IDGenerator) Option {
	return func(m *Module) {
		if ids != nil {
			m.ids = ids
		}
	}
}

// Module is the compiler facade.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	converter interfaces.MarkdownConverter
	renderer  interfaces.TemplateRenderer
	ids       IDGenerator
	logger    interfaces.Logger
}

// New validates cfg and wires the default collaborators.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}
	if m.converter == nil {
		m.converter = newConverter(cfg.Markdown)
	}
	if m.renderer == nil {
		templates, err := emitter.NewTemplateSet(cfg.TemplateDir)
		if err != nil {
			return nil, err
		}
		m.renderer = templates
	}
	m.logger = logging.ModuleLogger(m.provider, "coursegen")
	return m, nil
}

// Config returns the module configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider exposes the provider in use.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Compile runs one compile. With keep-going enabled, unit failures come
// back joined alongside a non-nil Result.
func (m *Module) Compile(ctx context.Context, req CompileRequest) (*Result, error) {
	cfg := m.cfg
	if source := strings.TrimSpace(req.Source); source != "" {
		cfg.Source = source
		cfg.Output = ""
	}
	if output := strings.TrimSpace(req.Output); output != "" {
		cfg.Output = output
	}
	cfg.DryRun = cfg.DryRun || req.DryRun
	cfg.KeepGoing = cfg.KeepGoing || req.KeepGoing
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	output := cfg.ResolvedOutput()

	var writer emitter.Writer = emitter.NewFSWriter(output)
	if cfg.DryRun {
		writer = emitter.NewDryRunWriter()
	}

	scanOpts := scan.Options{
		Exclude:       append([]string(nil), cfg.Scan.Exclude...),
		ImagePatterns: cfg.Scan.ImagePatterns,
	}
	if name, ok := childOf(cfg.Source, output); ok {
		scanOpts.Exclude = append(scanOpts.Exclude, name)
	}

	ids := m.ids
	if ids == nil {
		ids = identity.Random{}
		if seed := strings.TrimSpace(cfg.IDSeed); seed != "" {
			ids = identity.NewSeeded(seed)
		}
	}

	sourceFS := os.DirFS(cfg.Source)
	c, err := compiler.New(compiler.CompileContext{
		Source:   cfg.Source,
		SourceFS: sourceFS,
		Emitter:  emitter.New(m.renderer, writer, emitter.WithLogger(logging.EmitterLogger(m.provider))),
		Renderer: markdown.NewBridge(m.converter,
			markdown.WithTimeout(cfg.Markdown.ConversionTimeout),
			markdown.WithLogger(logging.MarkdownLogger(m.provider)),
		),
		Metadata: metadata.NewLoader(sourceFS, metadata.WithLogger(logging.MetadataLogger(m.provider))),
		IDs:      ids,
		Logger:   logging.CompilerLogger(m.provider),
		Scan:     scanOpts,
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("coursegen.compile.start", "source", cfg.Source, "output", output, "dry_run", cfg.DryRun, "keep_going", cfg.KeepGoing)
	return c.Compile(ctx, compiler.Options{KeepGoing: cfg.KeepGoing, DryRun: cfg.DryRun})
}

// CompileHandler returns a go-command handler that compiles through m.
func (m *Module) CompileHandler(opts ...commands.HandlerOption[CompileCourseCommand]) *compilecmd.CompileCourseHandler {
	return compilecmd.NewCompileCourseHandler(m, commands.CommandLogger(m.provider, "course"), opts...)
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "gologger") {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	opts := console.Options{}
	if level, ok := console.ParseLevel(cfg.Level); ok {
		opts.MinLevel = &level
	}
	return console.NewProvider(opts), nil
}

func newConverter(cfg runtimeconfig.MarkdownConfig) interfaces.MarkdownConverter {
	if strings.EqualFold(strings.TrimSpace(cfg.Converter), runtimeconfig.ConverterExec) {
		return markdown.NewExecConverter(cfg.Command)
	}
	return markdown.NewGoldmarkConverter(interfaces.ParseOptions{
		Extensions: cfg.Parser.Extensions,
		HardWraps:  cfg.Parser.HardWraps,
		SafeMode:   cfg.Parser.SafeMode,
	})
}

// childOf reports the first path element of output when it sits inside
// source, so the walk can skip it.
func childOf(source, output string) (string, bool) {
	src, err := filepath.Abs(source)
	if err != nil {
		return "", false
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(src, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first, true
}
