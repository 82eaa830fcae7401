package interfaces

import "context"

// MarkdownConverter turns Markdown source into HTML. Converters may run
// in-process or shell out to an external tool; callers treat the call as
// blocking and bound it with ctx.
type MarkdownConverter interface {
	Convert(ctx context.Context, markdown []byte) ([]byte, error)
}

// ParseOptions customises in-process Markdown rendering. Option names stay
// readable for configuration and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// UnitFrontMatter is the optional YAML block a unit file may start with.
type UnitFrontMatter struct {
	Title  string         `yaml:"title" json:"title"`
	Custom map[string]any `yaml:",inline" json:"custom"`
}
