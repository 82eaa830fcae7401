package classify

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-coursegen/internal/course"
)

func TestClassifyPlainUnitIsHTMLVerbatim(t *testing.T) {
	inputs := []string{
		"### Welcome\nHello.",
		"Intro line\n\n### Second Heading\n\n* a\n* b\n",
		"### Code\n```go\nfmt.Println(\"[meta]: <video>\")\n```\n",
		"### Windows\r\nline\r\n",
	}
	for _, text := range inputs {
		unit, err := Classify(text)
		if err != nil {
			t.Fatalf("Classify(%q) returned error: %v", text, err)
		}
		html, ok := unit.(course.HTMLUnit)
		if !ok {
			t.Fatalf("expected HTMLUnit, got %T", unit)
		}
		if html.Body != text {
			t.Fatalf("expected body to be unchanged\nwant: %q\ngot:  %q", text, html.Body)
		}
	}
}

func TestClassifyTitle(t *testing.T) {
	cases := map[string]string{
		"### Welcome\nHello.":                     "Welcome",
		"# Top\n## Mid\n### Deep  \nbody":         "Deep",
		"### Windows\r\nbody":                     "Windows",
		"text\n###\tTabbed title\n":               "Tabbed title",
		"###    \n### Real title\n":               "Real title",
		"[meta]: <problem>\n### Quiz\n<problem/>": "Quiz",
	}
	for text, want := range cases {
		got, ok := Title(text)
		if !ok || got != want {
			t.Fatalf("Title(%q) = %q,%v want %q", text, got, ok, want)
		}
	}
}

func TestClassifyMissingTitleIsMalformed(t *testing.T) {
	for _, text := range []string{
		"Hello.",
		"## Level two only\n",
		"#### Level four only\n",
		"###NoSpace\n",
		"",
	} {
		_, err := Classify(text)
		if !errors.Is(err, course.ErrMalformedUnit) {
			t.Fatalf("Classify(%q): expected malformed unit error, got %v", text, err)
		}
	}
}

func TestClassifyVideoUnit(t *testing.T) {
	refs := []string{
		"0b2f3c4d-1a2b-4c3d-9e8f-0123456789ab",
		"0B2F3C4D-1A2B-4C3D-9E8F-0123456789AB",
	}
	for _, ref := range refs {
		text := "[meta]: <video> (" + ref + ")\n### Lecture 1\nNotes."
		unit, err := Classify(text)
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		video, ok := unit.(course.VideoUnit)
		if !ok {
			t.Fatalf("expected VideoUnit, got %T", unit)
		}
		if video.Ref != ref {
			t.Fatalf("expected ref %q, got %q", ref, video.Ref)
		}
		if video.Body != text {
			t.Fatalf("expected marker to stay in body, got %q", video.Body)
		}
		if video.Title() != "Lecture 1" {
			t.Fatalf("expected title Lecture 1, got %q", video.Title())
		}
	}
}

func TestClassifyMalformedVideoRefFallsBackToHTML(t *testing.T) {
	text := "[meta]: <video> (not-a-uuid)\n### Lecture\n"
	unit, err := Classify(text)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	html, ok := unit.(course.HTMLUnit)
	if !ok {
		t.Fatalf("expected HTMLUnit fallback, got %T", unit)
	}
	if html.Body != text {
		t.Fatalf("expected marker to be kept, got %q", html.Body)
	}
}

func TestClassifyUnknownMarkerFallsBackToHTML(t *testing.T) {
	text := "[meta]: <survey>\n### Feedback\n"
	unit, err := Classify(text)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if unit.Kind() != course.KindHTML {
		t.Fatalf("expected html kind, got %s", unit.Kind())
	}
	if unit.(course.HTMLUnit).Body != text {
		t.Fatal("expected unknown marker line to be kept")
	}
}

func TestClassifyMarkerOnlyCountsOnFirstLine(t *testing.T) {
	text := "### Notes\n[meta]: <problem>\n<problem>x</problem>\n"
	unit, err := Classify(text)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if unit.Kind() != course.KindHTML {
		t.Fatalf("expected html kind when marker is not the first line, got %s", unit.Kind())
	}
}

func TestClassifyProblemUnitFragments(t *testing.T) {
	blocks := []string{
		"<problem>\n<multiplechoiceresponse>\n<choice correct=\"true\">A</choice>\n</multiplechoiceresponse>\n</problem>",
		"<problem display_name=\"Q2\">\n<stringresponse answer=\"42\"/>\n</problem>",
		"<problem><p>inline</p></problem>",
	}
	text := "[meta]: <problem>\n### Quiz\n\nIntro text.\n\n" + strings.Join(blocks, "\n\nbetween\n\n") + "\ntrailing\n"

	unit, err := Classify(text)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	problem, ok := unit.(course.ProblemUnit)
	if !ok {
		t.Fatalf("expected ProblemUnit, got %T", unit)
	}
	if problem.Title() != "Quiz" {
		t.Fatalf("expected title Quiz, got %q", problem.Title())
	}
	if len(problem.Fragments) != len(blocks) {
		t.Fatalf("expected %d fragments, got %d", len(blocks), len(problem.Fragments))
	}
	for i, want := range blocks {
		if problem.Fragments[i] != want {
			t.Fatalf("fragment %d mismatch\nwant: %q\ngot:  %q", i, want, problem.Fragments[i])
		}
	}
}

func TestClassifyProblemWithoutFragmentsIsMalformed(t *testing.T) {
	_, err := Classify("[meta]: <problem>\n### Quiz\nno blocks here\n")
	var malformed *course.MalformedUnitError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedUnitError, got %v", err)
	}
	if !strings.Contains(malformed.Reason, "problem") {
		t.Fatalf("expected reason to mention problem, got %q", malformed.Reason)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "[meta]: <problem>\n### Quiz\n<problem>1</problem><problem>2</problem>"
	first, _ := Classify(text)
	second, _ := Classify(text)
	a := first.(course.ProblemUnit)
	b := second.(course.ProblemUnit)
	if strings.Join(a.Fragments, "|") != strings.Join(b.Fragments, "|") {
		t.Fatal("expected identical classification for identical input")
	}
}
