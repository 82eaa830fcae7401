package compiler

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/internal/emitter"
	"github.com/goliatone/go-coursegen/internal/identity"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/internal/scan"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// Renderer converts a unit body to post-processed HTML.
type Renderer interface {
	Render(ctx context.Context, markdown string, assetPrefix string) (string, error)
}

// MetadataSource resolves the course level and per directory documents.
type MetadataSource interface {
	Course() (course.Element, error)
	Structure() (course.Element, error)
	ChapterTitle(dir string) (string, error)
	SectionTitle(dir string) (string, error)
}

// DocumentEmitter writes rendered documents and assets.
type DocumentEmitter interface {
	Reset(ctx context.Context) error
	Emit(ctx context.Context, template, relPath string, vars emitter.Vars) error
	WriteRaw(ctx context.Context, relPath string, data []byte) error
	CopyAssets(ctx context.Context, prefix string, assets []emitter.Asset) ([]string, error)
	EmitStatic(ctx context.Context) error
	Written() []string
}

// CompileContext carries every collaborator a compile run needs. Nothing
// is looked up globally.
type CompileContext struct {
	// Source is the course root on disk; asset copies read from it.
	Source string
	// SourceFS reads units and metadata. Defaults to os.DirFS(Source).
	SourceFS fs.FS
	Emitter  DocumentEmitter
	Renderer Renderer
	Metadata MetadataSource
	IDs      identity.Generator
	Logger   interfaces.Logger
	Scan     scan.Options
}

var (
	ErrSourceRequired   = errors.New("compiler: source directory is required")
	ErrEmitterRequired  = errors.New("compiler: emitter is required")
	ErrRendererRequired = errors.New("compiler: renderer is required")
	ErrMetadataRequired = errors.New("compiler: metadata source is required")
)

func (cc CompileContext) withDefaults() (CompileContext, error) {
	if strings.TrimSpace(cc.Source) == "" && cc.SourceFS == nil {
		return cc, ErrSourceRequired
	}
	if cc.Emitter == nil {
		return cc, ErrEmitterRequired
	}
	if cc.Renderer == nil {
		return cc, ErrRendererRequired
	}
	if cc.Metadata == nil {
		return cc, ErrMetadataRequired
	}
	if cc.SourceFS == nil {
		cc.SourceFS = os.DirFS(cc.Source)
	}
	if cc.IDs == nil {
		cc.IDs = identity.Random{}
	}
	if cc.Logger == nil {
		cc.Logger = logging.NoOp()
	}
	return cc, nil
}
