package markdown

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-coursegen/internal/course"
)

type converterFunc func(ctx context.Context, markdown []byte) ([]byte, error)

func (f converterFunc) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	return f(ctx, markdown)
}

func TestBridgeRenderConvertsAndRewrites(t *testing.T) {
	bridge := NewBridge(nil)
	out, err := bridge.Render(context.Background(), "### Welcome\nHello.\n\n![d](../images/d.png)\n", "mod01")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "Hello.") {
		t.Fatalf("expected body text, got %q", out)
	}
	if !strings.Contains(out, `src="/static/mod01_d.png"`) {
		t.Fatalf("expected rewritten image, got %q", out)
	}
	if !strings.HasSuffix(out, PrettifyScript) {
		t.Fatalf("expected prettify script, got %q", out)
	}
}

func TestBridgeWrapsConverterFailure(t *testing.T) {
	bridge := NewBridge(converterFunc(func(context.Context, []byte) ([]byte, error) {
		return nil, errors.New("converter exploded")
	}))

	_, err := bridge.Render(context.Background(), "x", "mod01")
	var conv *course.ConversionError
	if !errors.As(err, &conv) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "converter exploded") {
		t.Fatalf("expected cause in message, got %q", err.Error())
	}
}

func TestBridgeTimeoutIsConversionError(t *testing.T) {
	slow := converterFunc(func(ctx context.Context, _ []byte) ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []byte("<p>late</p>"), nil
		}
	})
	bridge := NewBridge(slow, WithTimeout(10*time.Millisecond))

	_, err := bridge.Render(context.Background(), "x", "mod01")
	if !errors.Is(err, course.ErrConversion) {
		t.Fatalf("expected conversion error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
}

func TestBridgeParentCancellationIsNotConversionError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bridge := NewBridge(converterFunc(func(ctx context.Context, _ []byte) ([]byte, error) {
		return nil, ctx.Err()
	}))

	_, err := bridge.Render(ctx, "x", "mod01")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, course.ErrConversion) {
		t.Fatalf("expected cancellation to bypass conversion error, got %v", err)
	}
}
