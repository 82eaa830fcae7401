package emitter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-coursegen/internal/course"
)

// Category tags a write so summaries can count artifacts per kind.
type Category string

const (
	CategoryStructure Category = "structure"
	CategoryComponent Category = "component"
	CategoryContent   Category = "content"
	CategoryAsset     Category = "asset"
	CategoryStatic    Category = "static"
)

// WriteRequest describes a file write routed through a Writer. Path is
// slash separated and relative to the output root.
type WriteRequest struct {
	Path     string
	Content  io.Reader
	Category Category
}

// Writer persists compiler output.
type Writer interface {
	// Clean removes everything under the output root and recreates it.
	Clean(ctx context.Context) error
	WriteFile(ctx context.Context, req WriteRequest) error
	// Copy copies the local file src to the relative path dst.
	Copy(ctx context.Context, src, dst string) error
}

// FSWriter writes below a directory on the local filesystem, creating
// parent directories on demand.
type FSWriter struct {
	root string
}

var _ Writer = (*FSWriter)(nil)

func NewFSWriter(root string) *FSWriter {
	return &FSWriter{root: filepath.Clean(root)}
}

// Root returns the output directory.
func (w *FSWriter) Root() string { return w.root }

func (w *FSWriter) Clean(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.root == "" || w.root == "." || filepath.Dir(w.root) == w.root {
		return &course.IOError{Op: "clean", Path: w.root, Err: errors.New("refusing to clean this directory")}
	}
	if err := os.RemoveAll(w.root); err != nil {
		return &course.IOError{Op: "clean", Path: w.root, Err: err}
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return &course.IOError{Op: "mkdir", Path: w.root, Err: err}
	}
	return nil
}

func (w *FSWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return &course.IOError{Op: "write", Path: req.Path, Err: errors.New("write requires content")}
	}
	target, err := w.resolve(req.Path)
	if err != nil {
		return err
	}
	return writeTo(target, req.Path, req.Content)
}

func (w *FSWriter) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := w.resolve(dst)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return &course.IOError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()
	return writeTo(target, dst, in)
}

func (w *FSWriter) resolve(rel string) (string, error) {
	clean := path.Clean(strings.TrimSpace(rel))
	if clean == "." || clean == "" || strings.HasPrefix(clean, "../") || clean == ".." || path.IsAbs(clean) {
		return "", &course.IOError{Op: "write", Path: rel, Err: errors.New("path escapes output root")}
	}
	return filepath.Join(w.root, filepath.FromSlash(clean)), nil
}

func writeTo(target, rel string, content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &course.IOError{Op: "mkdir", Path: rel, Err: err}
	}
	out, err := os.Create(target)
	if err != nil {
		return &course.IOError{Op: "write", Path: rel, Err: err}
	}
	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		return &course.IOError{Op: "write", Path: rel, Err: err}
	}
	if err := out.Close(); err != nil {
		return &course.IOError{Op: "write", Path: rel, Err: err}
	}
	return nil
}

// DryRunWriter records what would be written and touches nothing. Content
// is drained so template and read errors still surface.
type DryRunWriter struct {
	mu      sync.Mutex
	entries []DryRunEntry
}

// DryRunEntry is one recorded write.
type DryRunEntry struct {
	Path     string
	Category Category
	Size     int64
	Source   string
}

var _ Writer = (*DryRunWriter)(nil)

func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{}
}

func (w *DryRunWriter) Clean(ctx context.Context) error {
	return ctx.Err()
}

func (w *DryRunWriter) WriteFile(ctx context.Context, req WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var size int64
	if req.Content != nil {
		n, err := io.Copy(io.Discard, req.Content)
		if err != nil {
			return &course.IOError{Op: "write", Path: req.Path, Err: err}
		}
		size = n
	}
	w.record(DryRunEntry{Path: req.Path, Category: req.Category, Size: size})
	return nil
}

func (w *DryRunWriter) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return &course.IOError{Op: "copy", Path: src, Err: err}
	}
	w.record(DryRunEntry{Path: dst, Category: CategoryAsset, Size: info.Size(), Source: src})
	return nil
}

// Entries returns the recorded writes in call order.
func (w *DryRunWriter) Entries() []DryRunEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]DryRunEntry(nil), w.entries...)
}

func (w *DryRunWriter) record(entry DryRunEntry) {
	w.mu.Lock()
	w.entries = append(w.entries, entry)
	w.mu.Unlock()
}

func reader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
