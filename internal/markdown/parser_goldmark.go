package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// GoldmarkConverter implements interfaces.MarkdownConverter in process.
// The engine is built once and is safe for sequential reuse.
type GoldmarkConverter struct {
	engine goldmark.Markdown
}

var _ interfaces.MarkdownConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter builds a converter with GFM tables and
// strikethrough. Raw HTML is passed through unless SafeMode is set, since
// course units routinely embed markup.
func NewGoldmarkConverter(opts interfaces.ParseOptions) *GoldmarkConverter {
	return &GoldmarkConverter{engine: newGoldmarkEngine(opts)}
}

// Convert renders markdown to HTML. ctx is only checked up front; goldmark
// does not block.
func (c *GoldmarkConverter) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("goldmark convert: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// collectExtensions maps configured names onto goldmark extenders. Unknown
// names are ignored.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.Table, extension.Strikethrough}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		extenders = append(extenders, ext)
	}
	return extenders
}
