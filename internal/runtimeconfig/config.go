package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var ErrSourceRequired = errors.New("coursegen config: source directory is required")
var ErrConverterUnknown = errors.New("coursegen config: converter is invalid")

// ErrConverterCommandRequired guards the exec converter against an empty argv.
var ErrConverterCommandRequired = errors.New("coursegen config: exec converter requires a command")
var ErrConversionTimeoutInvalid = errors.New("coursegen config: conversion timeout must be zero or positive")
var ErrOutputIsSource = errors.New("coursegen config: output directory must differ from the source directory")

// ErrOutputContainsSource rejects an output directory that is an ancestor of
// the source, since the output tree is removed before each compile.
var ErrOutputContainsSource = errors.New("coursegen config: output directory must not contain the source directory")
var ErrLoggingProviderRequired = errors.New("coursegen config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("coursegen config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("coursegen config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("coursegen config: logging format is invalid")

const (
	ConverterGoldmark = "goldmark"
	ConverterExec     = "exec"

	// DefaultOutputDir is joined to Source when Output is empty.
	DefaultOutputDir = "course"
)

// Config aggregates the inputs of a compile run.
type Config struct {
	Source string
	// Output defaults to <Source>/course.
	Output string
	// TemplateDir optionally overrides embedded templates file by file.
	TemplateDir string
	KeepGoing   bool
	DryRun      bool
	// IDSeed switches to deterministic identifiers. Empty means random.
	IDSeed   string
	Markdown MarkdownConfig
	Scan     ScanConfig
	Logging  LoggingConfig
}

// MarkdownConfig selects and tunes the Markdown converter.
type MarkdownConfig struct {
	Converter         string
	Command           []string
	ConversionTimeout time.Duration
	Parser            MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// ScanConfig tunes source enumeration.
type ScanConfig struct {
	ImagePatterns []string
	Exclude       []string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults used by the CLI before flags apply.
func DefaultConfig() Config {
	return Config{
		Markdown: MarkdownConfig{
			Converter:         ConverterGoldmark,
			Command:           []string{"pandoc", "-f", "markdown-implicit_figures", "-t", "html", "--no-highlight"},
			ConversionTimeout: 30 * time.Second,
			Parser: MarkdownParserConfig{
				Extensions: []string{"table", "strikethrough"},
			},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks. Only the output/source guard reads
// the filesystem, to resolve symlinks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Source) == "" {
		return ErrSourceRequired
	}
	if output := strings.TrimSpace(cfg.Output); output != "" {
		if err := CheckOutput(cfg.Source, output); err != nil {
			return err
		}
	}

	switch converter := normalize(cfg.Markdown.Converter); converter {
	case "", ConverterGoldmark:
	case ConverterExec:
		if len(cfg.Markdown.Command) == 0 || strings.TrimSpace(cfg.Markdown.Command[0]) == "" {
			return ErrConverterCommandRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrConverterUnknown, converter)
	}
	if cfg.Markdown.ConversionTimeout < 0 {
		return ErrConversionTimeoutInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ResolvedOutput returns Output, or the default directory under Source.
func (cfg Config) ResolvedOutput() string {
	if output := strings.TrimSpace(cfg.Output); output != "" {
		return output
	}
	return filepath.Join(cfg.Source, DefaultOutputDir)
}

// CheckOutput reports whether output may be wiped and rewritten without
// touching source. Both paths are made absolute and symlinks are resolved
// as far as the directories exist.
func CheckOutput(source, output string) error {
	src, err := resolveDir(source)
	if err != nil {
		return err
	}
	out, err := resolveDir(output)
	if err != nil {
		return err
	}
	if out == src {
		return ErrOutputIsSource
	}
	rel, err := filepath.Rel(out, src)
	if err != nil {
		return nil
	}
	if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrOutputContainsSource
	}
	return nil
}

// resolveDir evaluates symlinks on the deepest existing ancestor of dir and
// joins the missing tail back on.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(strings.TrimSpace(dir))
	if err != nil {
		return "", fmt.Errorf("coursegen config: resolve %q: %w", dir, err)
	}
	existing, tail := abs, ""
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(resolved, tail), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		tail = filepath.Join(filepath.Base(existing), tail)
		existing = parent
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
