package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-coursegen/pkg/interfaces"
)

func TestGoldmarkConverterRendersHTML(t *testing.T) {
	conv := NewGoldmarkConverter(interfaces.ParseOptions{})
	out, err := conv.Convert(context.Background(), []byte("### Welcome\nHello.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h3") || !strings.Contains(html, "Welcome</h3>") {
		t.Fatalf("expected heading, got %q", html)
	}
	if !strings.Contains(html, "<p>Hello.</p>") {
		t.Fatalf("expected paragraph, got %q", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("expected table extension to be enabled, got %q", html)
	}
}

func TestGoldmarkConverterKeepsRawHTMLUnlessSafeMode(t *testing.T) {
	source := []byte("<div class=\"note\">raw</div>\n")

	out, err := NewGoldmarkConverter(interfaces.ParseOptions{}).Convert(context.Background(), source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(string(out), `<div class="note">raw</div>`) {
		t.Fatalf("expected raw html to pass through, got %q", out)
	}

	safe, err := NewGoldmarkConverter(interfaces.ParseOptions{SafeMode: true}).Convert(context.Background(), source)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if strings.Contains(string(safe), `<div class="note">`) {
		t.Fatalf("expected raw html to be omitted in safe mode, got %q", safe)
	}
}

func TestGoldmarkConverterHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGoldmarkConverter(interfaces.ParseOptions{}).Convert(ctx, []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestCollectExtensionsIgnoresUnknownAndDuplicates(t *testing.T) {
	got := collectExtensions([]string{"table", " TABLE ", "nope", "footnote"})
	if len(got) != 2 {
		t.Fatalf("expected 2 extensions, got %d", len(got))
	}
	if len(collectExtensions(nil)) == 0 {
		t.Fatal("expected default extensions")
	}
}

func TestParseFrontMatter(t *testing.T) {
	source := []byte("---\ntitle: Custom Title\nweight: 3\n---\n### Heading\nBody\n")

	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if meta.Title != "Custom Title" {
		t.Fatalf("expected title override, got %q", meta.Title)
	}
	if meta.Custom["weight"] != 3 {
		t.Fatalf("expected custom field, got %#v", meta.Custom)
	}
	if !strings.HasPrefix(string(body), "### Heading") {
		t.Fatalf("expected body without front matter, got %q", body)
	}
}

func TestParseFrontMatterLeavesPlainUnitsAlone(t *testing.T) {
	for _, source := range []string{
		"### Welcome\nHello.",
		"[meta]: <video> (0b2f3c4d-1a2b-4c3d-9e8f-0123456789ab)\n### Video\n",
		"Text\n---\nnot front matter\n",
		"---\n### Welcome\n\nHello.\n\n---\n\nMore text.\n",
		"---\n\nA unit opening with a rule and never closing it.\n",
		"---\r\n- one\r\n- two\r\n---\r\nlist block\r\n",
		"---\n# only a comment\n---\nbody\n",
	} {
		meta, body, err := ParseFrontMatter([]byte(source))
		if err != nil {
			t.Fatalf("ParseFrontMatter(%q): %v", source, err)
		}
		if meta.Title != "" {
			t.Fatalf("expected empty front matter, got %+v", meta)
		}
		if string(body) != source {
			t.Fatalf("expected body unchanged\nwant: %q\ngot:  %q", source, body)
		}
	}
}
