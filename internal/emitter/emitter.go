// Package emitter renders course documents from templates and writes them,
// together with copied chapter assets, below the output root.
package emitter

import (
	"context"
	"strings"

	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// Vars are the placeholder values handed to a template.
type Vars = map[string]any

// Asset is one chapter file to publish under static/.
type Asset struct {
	Source string
	Name   string
}

// Emitter fills templates and routes the results through a Writer. It
// remembers every relative path it wrote, in order.
type Emitter struct {
	renderer interfaces.TemplateRenderer
	writer   Writer
	logger   interfaces.Logger
	written  []string
}

// Option configures an Emitter.
type Option func(*Emitter)

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func New(renderer interfaces.TemplateRenderer, writer Writer, opts ...Option) *Emitter {
	e := &Emitter{
		renderer: renderer,
		writer:   writer,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset clears the output root.
func (e *Emitter) Reset(ctx context.Context) error {
	return e.writer.Clean(ctx)
}

// Emit renders template with vars and writes it to relPath. Rendering
// failures are reported as IO errors on relPath since no document could be
// produced for it.
func (e *Emitter) Emit(ctx context.Context, template, relPath string, vars Vars) error {
	out, err := e.renderer.RenderTemplate(template, vars)
	if err != nil {
		return &course.IOError{Op: "render " + template, Path: relPath, Err: err}
	}
	return e.write(ctx, relPath, []byte(out), categoryFor(relPath))
}

// WriteRaw writes data as is, used for problem fragments and unit HTML.
func (e *Emitter) WriteRaw(ctx context.Context, relPath string, data []byte) error {
	return e.write(ctx, relPath, data, categoryFor(relPath))
}

// CopyAssets publishes chapter assets as static/<prefix>_<name>.
func (e *Emitter) CopyAssets(ctx context.Context, prefix string, assets []Asset) ([]string, error) {
	copied := make([]string, 0, len(assets))
	for _, asset := range assets {
		dst := StaticPath(prefix + "_" + asset.Name)
		if err := e.writer.Copy(ctx, asset.Source, dst); err != nil {
			return copied, err
		}
		e.written = append(e.written, dst)
		copied = append(copied, dst)
	}
	if len(copied) > 0 {
		e.logger.Debug("emitter.assets.copied", "prefix", prefix, "count", len(copied))
	}
	return copied, nil
}

// EmitStatic writes the fixed overview, asset manifest and policy documents.
func (e *Emitter) EmitStatic(ctx context.Context) error {
	for _, doc := range staticDocs {
		if err := e.Emit(ctx, doc.template, doc.path, nil); err != nil {
			return err
		}
	}
	return nil
}

// Written returns the relative paths written so far.
func (e *Emitter) Written() []string {
	return append([]string(nil), e.written...)
}

func (e *Emitter) write(ctx context.Context, relPath string, data []byte, category Category) error {
	req := WriteRequest{Path: relPath, Content: reader(data), Category: category}
	if err := e.writer.WriteFile(ctx, req); err != nil {
		return err
	}
	e.written = append(e.written, relPath)
	e.logger.Trace("emitter.write", "path", relPath, "category", category, "bytes", len(data))
	return nil
}

func categoryFor(relPath string) Category {
	dir, _, found := strings.Cut(relPath, "/")
	if !found {
		return CategoryStructure
	}
	switch dir {
	case "chapter", "sequential", "vertical", "course":
		return CategoryStructure
	case "html":
		if strings.HasSuffix(relPath, ".html") {
			return CategoryContent
		}
		return CategoryComponent
	case "video", "problem":
		return CategoryComponent
	case StaticDir:
		return CategoryAsset
	default:
		return CategoryStatic
	}
}

// String is used in log fields.
func (c Category) String() string { return string(c) }
