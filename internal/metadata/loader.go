// Package metadata reads the JSON (or YAML) documents that describe a course:
// course.json and course_meta.json at the root, module.json per chapter and
// section.json per section.
package metadata

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/internal/validation"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

const (
	CourseDocument    = "course"
	StructureDocument = "course_meta"
	ChapterDocument   = "module"
	SectionDocument   = "section"

	attrKey = "attr"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	elementSchema = validation.MustCompile("element.json", mustRead("schemas/element.json"))
	titleSchema   = validation.MustCompile("title.json", mustRead("schemas/title.json"))
)

// Loader resolves metadata documents inside a source tree. Paths are slash
// separated and relative to the tree root.
type Loader struct {
	fsys   fs.FS
	logger interfaces.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a Loader reading from fsys.
func NewLoader(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{fsys: fsys, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Course loads the root element written to course.xml.
func (l *Loader) Course() (course.Element, error) {
	return l.element(CourseDocument)
}

// Structure loads the structure element written to course/course.xml.
func (l *Loader) Structure() (course.Element, error) {
	return l.element(StructureDocument)
}

// ChapterTitle reads the display title from dir/module.json.
func (l *Loader) ChapterTitle(dir string) (string, error) {
	return l.title(path.Join(dir, ChapterDocument))
}

// SectionTitle reads the display title from dir/section.json.
func (l *Loader) SectionTitle(dir string) (string, error) {
	return l.title(path.Join(dir, SectionDocument))
}

func (l *Loader) title(base string) (string, error) {
	doc, err := l.read(base)
	if err != nil {
		return "", err
	}
	var decoded any
	if err := doc.decode(&decoded); err != nil {
		return "", doc.fail("unparsable document", err)
	}
	decoded = normalize(decoded)
	if err := titleSchema.Validate(decoded); err != nil {
		return "", doc.fail("", err)
	}
	title, _ := decoded.(map[string]any)["title"].(string)
	return strings.TrimSpace(title), nil
}

func (l *Loader) element(base string) (course.Element, error) {
	doc, err := l.read(base)
	if err != nil {
		return course.Element{}, err
	}
	var decoded any
	if err := doc.decode(&decoded); err != nil {
		return course.Element{}, doc.fail("unparsable document", err)
	}
	if err := elementSchema.Validate(normalize(decoded)); err != nil {
		return course.Element{}, doc.fail("", err)
	}

	var element course.Element
	if doc.format == formatYAML {
		element, err = yamlElement(doc.data)
	} else {
		element, err = jsonElement(doc.data)
	}
	if err != nil {
		return course.Element{}, doc.fail("unparsable document", err)
	}
	l.logger.Debug("metadata.element.loaded", "path", doc.path, "element", element.Name, "attrs", len(element.Attrs))
	return element, nil
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

type document struct {
	path   string
	format format
	data   []byte
}

func (d document) decode(target *any) error {
	if d.format == formatYAML {
		return yaml.Unmarshal(d.data, target)
	}
	return json.Unmarshal(d.data, target)
}

func (d document) fail(reason string, err error) error {
	if reason == "" {
		reason = "does not match schema"
	}
	return &course.ConfigError{Path: d.path, Reason: reason, Err: err}
}

// read looks for base.json, then base.yaml and base.yml.
func (l *Loader) read(base string) (document, error) {
	candidates := []struct {
		ext    string
		format format
	}{
		{".json", formatJSON},
		{".yaml", formatYAML},
		{".yml", formatYAML},
	}
	for _, candidate := range candidates {
		name := base + candidate.ext
		data, err := fs.ReadFile(l.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return document{}, &course.IOError{Op: "read", Path: name, Err: err}
		}
		return document{path: name, format: candidate.format, data: data}, nil
	}
	return document{}, &course.ConfigError{Path: base + ".json", Reason: "missing"}
}

// jsonElement walks the token stream so attribute order follows the file.
func jsonElement(data []byte) (course.Element, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return course.Element{}, err
	}
	var element course.Element
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return course.Element{}, err
		}
		if key != attrKey {
			element.Name = key
			var skip any
			if err := dec.Decode(&skip); err != nil {
				return course.Element{}, err
			}
			continue
		}
		if err := expectDelim(dec, '{'); err != nil {
			return course.Element{}, err
		}
		for dec.More() {
			name, err := stringToken(dec)
			if err != nil {
				return course.Element{}, err
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return course.Element{}, err
			}
			value, err := jsonScalar(raw)
			if err != nil {
				return course.Element{}, fmt.Errorf("attr %s: %w", name, err)
			}
			element.Attrs = append(element.Attrs, course.Attr{Name: name, Value: value})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return course.Element{}, err
		}
	}
	return element, nil
}

// jsonScalar renders an attribute value as text. Objects and arrays are
// kept as compact JSON.
func jsonScalar(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return "", nil
	case trimmed[0] == '"':
		var s string
		err := json.Unmarshal(trimmed, &s)
		return s, err
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(trimmed), nil
	}
}

func yamlElement(data []byte) (course.Element, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return course.Element{}, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return course.Element{}, errors.New("expected a mapping")
	}
	var element course.Element
	mapping := root.Content[0].Content
	for i := 0; i+1 < len(mapping); i += 2 {
		key, value := mapping[i].Value, mapping[i+1]
		if key != attrKey {
			element.Name = key
			continue
		}
		for j := 0; j+1 < len(value.Content); j += 2 {
			rendered, err := yamlScalar(value.Content[j+1])
			if err != nil {
				return course.Element{}, fmt.Errorf("attr %s: %w", value.Content[j].Value, err)
			}
			element.Attrs = append(element.Attrs, course.Attr{Name: value.Content[j].Value, Value: rendered})
		}
	}
	return element, nil
}

func yamlScalar(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			return "", nil
		}
		return node.Value, nil
	}
	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(normalize(decoded))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// normalize converts yaml.v3 output into the shapes the schema validator
// and encoding/json understand.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(typed))
	case float64:
		return json.Number(strconv.FormatFloat(typed, 'f', -1, 64))
	default:
		return value
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func mustRead(name string) []byte {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}
