package emitter

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// Template names shipped with the emitter.
const (
	TemplateCourse          = "course.xml"
	TemplateCourseStructure = "course_structure.xml"
	TemplateChapter         = "chapter.xml"
	TemplateSequential      = "sequential.xml"
	TemplateVertical        = "vertical.xml"
	TemplateVerticalVideo   = "vertical-video.xml"
	TemplateVerticalProblem = "vertical-problem.xml"
	TemplateVideo           = "video.xml"
	TemplateHTML            = "html.xml"
	TemplateOverview        = "overview.html"
	TemplateAssetsXML       = "assets.xml"
	TemplateAssetsJSON      = "assets.json"
	TemplateGradingPolicy   = "grading_policy.json"
	TemplatePolicy          = "policy.json"
)

//go:embed templates/*
var embedded embed.FS

// TemplateSet renders named pongo2 templates. Values are autoescaped, so
// titles and attribute values are always safe inside XML attributes.
type TemplateSet struct {
	set   *pongo2.TemplateSet
	mu    sync.Mutex
	cache map[string]*pongo2.Template
}

var _ interfaces.TemplateRenderer = (*TemplateSet)(nil)

// NewTemplateSet returns the embedded templates. When overrideDir is set, a
// file there with the same name replaces the embedded one.
func NewTemplateSet(overrideDir string) (*TemplateSet, error) {
	builtin, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, err
	}
	loader := &overlayLoader{layers: []fs.FS{builtin}}
	if dir := strings.TrimSpace(overrideDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template dir: %s is not a directory", dir)
		}
		loader.layers = append([]fs.FS{os.DirFS(dir)}, loader.layers...)
	}
	return &TemplateSet{
		set:   pongo2.NewSet("coursegen", loader),
		cache: map[string]*pongo2.Template{},
	}, nil
}

// RenderTemplate satisfies interfaces.TemplateRenderer. data must be a
// map[string]any or nil.
func (t *TemplateSet) RenderTemplate(name string, data any) (string, error) {
	tpl, err := t.template(name)
	if err != nil {
		return "", err
	}
	ctx := pongo2.Context{}
	switch typed := data.(type) {
	case nil:
	case map[string]any:
		for key, value := range typed {
			ctx[key] = value
		}
	case pongo2.Context:
		ctx = typed
	default:
		return "", fmt.Errorf("template %s: unsupported data type %T", name, data)
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, err)
	}
	return out, nil
}

func (t *TemplateSet) template(name string) (*pongo2.Template, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tpl, ok := t.cache[name]; ok {
		return tpl, nil
	}
	tpl, err := t.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	t.cache[name] = tpl
	return tpl, nil
}

// overlayLoader implements pongo2.TemplateLoader over a stack of fs.FS
// layers, first match wins.
type overlayLoader struct {
	layers []fs.FS
}

func (l *overlayLoader) Abs(_, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l *overlayLoader) Get(name string) (io.Reader, error) {
	for _, layer := range l.layers {
		data, err := fs.ReadFile(layer, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}
