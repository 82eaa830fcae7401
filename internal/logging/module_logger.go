package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

const (
	rootModule     = "coursegen"
	compilerModule = "coursegen.compiler"
	markdownModule = "coursegen.markdown"
	emitterModule  = "coursegen.emitter"
	metadataModule = "coursegen.metadata"
)

const (
	fieldChapter = "chapter"
	fieldSection = "section"
	fieldUnit    = "unit"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger so callers never have to nil-check.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// CompilerLogger returns the logger namespace used by the tree walker.
func CompilerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, compilerModule)
}

// MarkdownLogger returns the logger namespace used by the converter bridge.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// EmitterLogger returns the logger namespace used by document emission.
func EmitterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, emitterModule)
}

// MetadataLogger returns the logger namespace used by metadata loading.
func MetadataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, metadataModule)
}

// WithUnitContext annotates logger with the chapter, section and unit being
// compiled. Empty values are skipped.
func WithUnitContext(logger interfaces.Logger, chapter, section, unit string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(chapter); trimmed != "" {
		fields[fieldChapter] = trimmed
	}
	if trimmed := strings.TrimSpace(section); trimmed != "" {
		fields[fieldSection] = trimmed
	}
	if trimmed := strings.TrimSpace(unit); trimmed != "" {
		fields[fieldUnit] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
