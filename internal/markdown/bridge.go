package markdown

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-coursegen/internal/course"
	"github.com/goliatone/go-coursegen/internal/logging"
	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

// DefaultConversionTimeout bounds a single converter call.
const DefaultConversionTimeout = 30 * time.Second

// Bridge runs a converter under a timeout and post-processes its output.
type Bridge struct {
	converter interfaces.MarkdownConverter
	timeout   time.Duration
	logger    interfaces.Logger
	now       func() time.Time
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithTimeout overrides DefaultConversionTimeout. Zero or negative disables
// the bound.
func WithTimeout(timeout time.Duration) BridgeOption {
	return func(b *Bridge) {
		b.timeout = max(timeout, 0)
	}
}

// WithLogger sets the logger used for conversion diagnostics.
func WithLogger(logger interfaces.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge wraps converter. A nil converter selects goldmark with default
// options.
func NewBridge(converter interfaces.MarkdownConverter, opts ...BridgeOption) *Bridge {
	if converter == nil {
		converter = NewGoldmarkConverter(interfaces.ParseOptions{})
	}
	b := &Bridge{
		converter: converter,
		timeout:   DefaultConversionTimeout,
		logger:    logging.NoOp(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Render converts markdown and applies PostProcess with assetPrefix.
// Converter failures and timeouts are returned as *course.ConversionError;
// cancellation of the parent ctx is returned as is so callers can stop.
func (b *Bridge) Render(ctx context.Context, markdown string, assetPrefix string) (string, error) {
	callCtx, cancel := b.withTimeout(ctx)
	defer cancel()

	started := b.now()
	raw, err := b.converter.Convert(callCtx, []byte(markdown))
	elapsed := b.now().Sub(started)
	if err != nil {
		if parentErr := ctx.Err(); parentErr != nil {
			return "", parentErr
		}
		b.logger.Warn("markdown.convert.failed", "error", err, "elapsed", elapsed)
		return "", asConversionError(err)
	}
	if err := callCtx.Err(); err != nil {
		return "", &course.ConversionError{Err: err}
	}
	b.logger.Debug("markdown.convert", "bytes_in", len(markdown), "bytes_out", len(raw), "elapsed", elapsed)

	out, err := PostProcess(raw, assetPrefix)
	if err != nil {
		return "", &course.ConversionError{Err: err}
	}
	return out, nil
}

func (b *Bridge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

func asConversionError(err error) error {
	var conv *course.ConversionError
	if errors.As(err, &conv) {
		return conv
	}
	return &course.ConversionError{Err: err}
}
