package emitter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goliatone/go-coursegen/internal/course"
)

type fakeRenderer struct {
	calls []string
	fail  error
}

func (f *fakeRenderer) RenderTemplate(name string, data any) (string, error) {
	f.calls = append(f.calls, name)
	if f.fail != nil {
		return "", f.fail
	}
	vars, _ := data.(Vars)
	return name + ":" + strings.TrimSpace(toString(vars["title"])), nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func TestEmitWritesRenderedTemplate(t *testing.T) {
	root := filepath.Join(t.TempDir(), "course")
	emitter := New(&fakeRenderer{}, NewFSWriter(root))

	if err := emitter.Emit(context.Background(), TemplateChapter, ChapterPath("abc"), Vars{"title": "Intro"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "chapter", "abc.xml"))
	if err != nil {
		t.Fatalf("read chapter: %v", err)
	}
	if string(data) != "chapter.xml:Intro" {
		t.Fatalf("unexpected content %q", data)
	}
	if got := emitter.Written(); len(got) != 1 || got[0] != "chapter/abc.xml" {
		t.Fatalf("unexpected written list %v", got)
	}
}

func TestEmitRenderFailureIsIOError(t *testing.T) {
	emitter := New(&fakeRenderer{fail: errors.New("bad template")}, NewDryRunWriter())
	err := emitter.Emit(context.Background(), TemplateVertical, VerticalPath("v"), nil)
	if !errors.Is(err, course.ErrIO) {
		t.Fatalf("expected IO error, got %v", err)
	}
	if !strings.Contains(err.Error(), "vertical/v.xml") {
		t.Fatalf("expected path in error, got %q", err.Error())
	}
}

func TestFSWriterWriteFailureIsIOError(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "html")
	if err := os.WriteFile(blocker, []byte("file in the way"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	emitter := New(&fakeRenderer{}, NewFSWriter(root))

	err := emitter.WriteRaw(context.Background(), HTMLBodyPath("x"), []byte("<p/>"))
	var ioErr *course.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Path != "html/x.html" {
		t.Fatalf("expected relative path, got %q", ioErr.Path)
	}
}

func TestFSWriterRejectsEscapingPaths(t *testing.T) {
	w := NewFSWriter(t.TempDir())
	for _, rel := range []string{"../outside.xml", "/abs.xml", ""} {
		err := w.WriteFile(context.Background(), WriteRequest{Path: rel, Content: strings.NewReader("x")})
		if !errors.Is(err, course.ErrIO) {
			t.Fatalf("expected IO error for %q, got %v", rel, err)
		}
	}
}

func TestFSWriterCleanRecreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "course")
	stale := filepath.Join(root, "vertical", "old.xml")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := NewFSWriter(root).Clean(context.Background()); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale file removed, got %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("expected root to exist, got %v", err)
	}
}

func TestFSWriterCleanRefusesFilesystemRoot(t *testing.T) {
	if err := NewFSWriter(string(filepath.Separator)).Clean(context.Background()); !errors.Is(err, course.ErrIO) {
		t.Fatalf("expected refusal, got %v", err)
	}
}

func TestCopyAssetsPrefixesNames(t *testing.T) {
	src := t.TempDir()
	image := filepath.Join(src, "diagram.png")
	if err := os.WriteFile(image, []byte("png"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out := t.TempDir()
	emitter := New(&fakeRenderer{}, NewFSWriter(out))

	copied, err := emitter.CopyAssets(context.Background(), "mod01", []Asset{{Source: image, Name: "diagram.png"}})
	if err != nil {
		t.Fatalf("CopyAssets: %v", err)
	}
	if len(copied) != 1 || copied[0] != "static/mod01_diagram.png" {
		t.Fatalf("unexpected copied list %v", copied)
	}
	data, err := os.ReadFile(filepath.Join(out, "static", "mod01_diagram.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("expected copied file, got %q, %v", data, err)
	}
}

func TestCopyAssetsMissingSourceIsIOError(t *testing.T) {
	emitter := New(&fakeRenderer{}, NewFSWriter(t.TempDir()))
	_, err := emitter.CopyAssets(context.Background(), "mod01", []Asset{{Source: filepath.Join(t.TempDir(), "nope.png"), Name: "nope.png"}})
	if !errors.Is(err, course.ErrIO) {
		t.Fatalf("expected IO error, got %v", err)
	}
}

func TestEmitStaticWritesFixedDocuments(t *testing.T) {
	set, err := NewTemplateSet("")
	if err != nil {
		t.Fatalf("NewTemplateSet: %v", err)
	}
	writer := NewDryRunWriter()
	emitter := New(set, writer)

	if err := emitter.EmitStatic(context.Background()); err != nil {
		t.Fatalf("EmitStatic: %v", err)
	}
	want := []string{OverviewPath, AssetsXMLPath, AssetsJSONPath, GradingPolicyPath, PolicyPath}
	if got := emitter.Written(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, entry := range writer.Entries() {
		if entry.Size == 0 {
			t.Fatalf("expected %s to have content", entry.Path)
		}
		if entry.Category != CategoryStatic {
			t.Fatalf("expected static category for %s, got %s", entry.Path, entry.Category)
		}
	}
}

func TestDryRunWriterTouchesNothing(t *testing.T) {
	src := filepath.Join(t.TempDir(), "handout.pdf")
	if err := os.WriteFile(src, []byte("pdf!"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	writer := NewDryRunWriter()
	emitter := New(&fakeRenderer{}, writer)

	if err := emitter.WriteRaw(context.Background(), ProblemPath("p"), []byte("<problem/>")); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if _, err := emitter.CopyAssets(context.Background(), "mod02", []Asset{{Source: src, Name: "handout.pdf"}}); err != nil {
		t.Fatalf("CopyAssets: %v", err)
	}

	entries := writer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Category != CategoryComponent || entries[0].Size != int64(len("<problem/>")) {
		t.Fatalf("unexpected problem entry %+v", entries[0])
	}
	if entries[1].Path != "static/mod02_handout.pdf" || entries[1].Size != 4 {
		t.Fatalf("unexpected asset entry %+v", entries[1])
	}
}

func TestCategoryFor(t *testing.T) {
	cases := map[string]Category{
		CoursePath:            CategoryStructure,
		CourseStructurePath:   CategoryStructure,
		SequentialPath("s"):   CategoryStructure,
		HTMLPath("h"):         CategoryComponent,
		HTMLBodyPath("h"):     CategoryContent,
		VideoPath("v"):        CategoryComponent,
		StaticPath("mod01_x"): CategoryAsset,
		PolicyPath:            CategoryStatic,
	}
	for path, want := range cases {
		if got := categoryFor(path); got != want {
			t.Fatalf("categoryFor(%s) = %s want %s", path, got, want)
		}
	}
}
