package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-coursegen"
	goerrors "github.com/goliatone/go-errors"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := coursegen.DefaultConfig()

	fs := flag.NewFlagSet("coursegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: coursegen [flags] [source-dir]")
		fs.PrintDefaults()
	}
	output := fs.String("output", "", "Output directory (defaults to <source>/course)")
	converter := fs.String("converter", cfg.Markdown.Converter, "Markdown converter: goldmark or exec")
	converterCmd := fs.String("converter-cmd", strings.Join(cfg.Markdown.Command, " "), "Command used by the exec converter, reads Markdown on stdin")
	timeout := fs.Duration("timeout", cfg.Markdown.ConversionTimeout, "Per unit conversion timeout, 0 disables")
	templates := fs.String("templates", "", "Directory with template overrides")
	keepGoing := fs.Bool("keep-going", false, "Skip malformed units and report them at the end")
	dryRun := fs.Bool("dry-run", false, "List the documents that would be written without writing them")
	seed := fs.String("seed", "", "Derive identifiers from this seed for reproducible output")
	images := fs.String("images", "", "Comma separated image patterns copied from images/")
	exclude := fs.String("exclude", "", "Comma separated top level directories to skip")
	logLevel := fs.String("log-level", cfg.Logging.Level, "Log level: trace, debug, info, warn, error")
	logFormat := fs.String("log-format", "plain", "Log format: plain, console, json or pretty")
	logSource := fs.Bool("log-source", false, "Add source locations to go-logger output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "coursegen: expected at most one source directory, got %d\n", fs.NArg())
		fs.Usage()
		return exitUsage
	}

	cfg.Source = "."
	if fs.NArg() == 1 {
		cfg.Source = fs.Arg(0)
	}
	cfg.Output = *output
	cfg.TemplateDir = *templates
	cfg.KeepGoing = *keepGoing
	cfg.DryRun = *dryRun
	cfg.IDSeed = *seed
	cfg.Markdown.Converter = *converter
	cfg.Markdown.Command = strings.Fields(*converterCmd)
	cfg.Markdown.ConversionTimeout = *timeout
	cfg.Scan.ImagePatterns = splitList(*images)
	cfg.Scan.Exclude = splitList(*exclude)
	cfg.Logging.Level = *logLevel
	cfg.Logging.AddSource = *logSource
	if format := strings.ToLower(strings.TrimSpace(*logFormat)); format != "plain" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}

	if info, err := os.Stat(cfg.Source); err != nil || !info.IsDir() {
		fmt.Fprintf(stderr, "coursegen: source %q is not a directory\n", cfg.Source)
		return exitUsage
	}

	module, err := coursegen.New(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "coursegen: %v\n", err)
		return exitUsage
	}

	var result *coursegen.Result
	err = module.CompileHandler().Execute(ctx, coursegen.CompileCourseCommand{
		Source:    cfg.Source,
		Output:    cfg.Output,
		DryRun:    cfg.DryRun,
		KeepGoing: cfg.KeepGoing,
		ResultCallback: func(env coursegen.ResultEnvelope) {
			result = env.Result
		},
	})
	if result != nil {
		printSummary(stdout, cfg, result)
	}
	if err != nil {
		fmt.Fprintf(stderr, "coursegen: %s\n", describe(err))
		return exitError
	}
	return exitOK
}

func printSummary(w io.Writer, cfg coursegen.Config, result *coursegen.Result) {
	if result.DryRun {
		for _, rel := range result.Written {
			fmt.Fprintln(w, rel)
		}
	}
	counts := result.Counts
	fmt.Fprintf(w, "%d chapters, %d sequentials, %d verticals (%d html, %d video, %d problem), %d assets -> %s\n",
		counts.Chapters, counts.Sequentials, counts.Verticals,
		counts.HTML, counts.Videos, counts.Problems,
		len(result.Assets), cfg.ResolvedOutput())
	for _, failure := range result.Failures {
		fmt.Fprintf(w, "skipped %s\n", failure.Path)
	}
}

// describe drops the command layer wrapper so the message names the path.
func describe(err error) string {
	if goerrors.IsWrapped(err) {
		if inner := errors.Unwrap(err); inner != nil {
			return inner.Error()
		}
	}
	return err.Error()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
