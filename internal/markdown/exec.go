package markdown

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// DefaultExecCommand is the pandoc invocation the course tooling has always
// used: no implicit figures, no highlighting so prettify can take over.
var DefaultExecCommand = []string{"pandoc", "-f", "markdown-implicit_figures", "-t", "html", "--no-highlight"}

// waitDelay caps how long Convert waits for output pipes after the process
// was killed on timeout.
const waitDelay = 2 * time.Second

// ExecConverter pipes Markdown through an external command's stdin and
// reads HTML from its stdout.
type ExecConverter struct {
	command []string
}

var _ interfaces.MarkdownConverter = (*ExecConverter)(nil)

// NewExecConverter returns a converter running command. An empty command
// selects DefaultExecCommand.
func NewExecConverter(command []string) *ExecConverter {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		command = DefaultExecCommand
	}
	return &ExecConverter{command: append([]string(nil), command...)}
}

// Command returns the argv the converter runs.
func (c *ExecConverter) Command() []string {
	return append([]string(nil), c.command...)
}

// Convert runs the command once. A non-zero exit, a missing binary or a
// cancelled ctx all surface as *course.ConversionError.
func (c *ExecConverter) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Stdin = bytes.NewReader(markdown)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &course.ConversionError{
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("%s: %w", c.command[0], err),
		}
	}
	return stdout.Bytes(), nil
}
