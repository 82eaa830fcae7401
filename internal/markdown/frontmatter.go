package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// ParseFrontMatter splits an optional YAML front matter block off a unit
// file. Sources without a block come back unchanged with an empty
// UnitFrontMatter. A leading "---" that is not closed, or whose block is
// not a YAML mapping, is treated as a horizontal rule and left in place.
func ParseFrontMatter(source []byte) (interfaces.UnitFrontMatter, []byte, error) {
	block, ok := frontMatterBlock(source)
	if !ok {
		return interfaces.UnitFrontMatter{}, source, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(block, &fields); err != nil || len(fields) == 0 {
		return interfaces.UnitFrontMatter{}, source, nil
	}

	var meta interfaces.UnitFrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.UnitFrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Custom == nil {
		meta.Custom = map[string]any{}
	}
	return meta, body, nil
}

// frontMatterBlock returns the lines between an opening "---" on the very
// first line and the next "---" line. A unit that starts with a [meta]
// marker never matches.
func frontMatterBlock(source []byte) ([]byte, bool) {
	first, rest, found := bytes.Cut(source, []byte("\n"))
	if !found || string(bytes.TrimSuffix(first, []byte("\r"))) != "---" {
		return nil, false
	}
	offset := 0
	for offset < len(rest) {
		line, _, _ := bytes.Cut(rest[offset:], []byte("\n"))
		if string(bytes.TrimRight(line, " \t\r")) == "---" {
			return rest[:offset], true
		}
		offset += len(line) + 1
	}
	return nil, false
}
