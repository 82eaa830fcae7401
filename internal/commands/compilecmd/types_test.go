package compilecmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestCompileCourseCommandValidate(t *testing.T) {
	cases := []struct {
		name  string
		cmd   CompileCourseCommand
		field string
	}{
		{"valid", CompileCourseCommand{Source: "src"}, ""},
		{"valid with output", CompileCourseCommand{Source: "src", Output: "out"}, ""},
		{"missing source", CompileCourseCommand{}, "source"},
		{"output equals source", CompileCourseCommand{Source: "src", Output: "./src/"}, "output"},
	}
	for _, tc := range cases {
		err := tc.cmd.Validate()
		if tc.field == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		var errs validation.Errors
		if !errors.As(err, &errs) {
			t.Fatalf("%s: expected validation.Errors, got %v", tc.name, err)
		}
		if _, ok := errs[tc.field]; !ok {
			t.Fatalf("%s: expected error on %q, got %v", tc.name, tc.field, errs)
		}
	}
}

func TestCompileCourseCommandValidateResolvesPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	t.Chdir(root)

	cases := []struct {
		name string
		cmd  CompileCourseCommand
		code string
	}{
		{"absolute output, relative source", CompileCourseCommand{Source: "src", Output: filepath.Join(root, "src")}, "coursegen.course.compile.output_is_source"},
		{"output is parent of source", CompileCourseCommand{Source: "src", Output: root}, "coursegen.course.compile.output_contains_source"},
		{"output is working directory", CompileCourseCommand{Source: "src", Output: "."}, "coursegen.course.compile.output_contains_source"},
	}
	for _, tc := range cases {
		var errs validation.Errors
		if !errors.As(tc.cmd.Validate(), &errs) {
			t.Fatalf("%s: expected validation.Errors", tc.name)
		}
		var verr validation.Error
		if !errors.As(errs["output"], &verr) {
			t.Fatalf("%s: expected output error, got %v", tc.name, errs)
		}
		if verr.Code() != tc.code {
			t.Fatalf("%s: expected code %q, got %q", tc.name, tc.code, verr.Code())
		}
	}
}

func TestCompileCourseCommandType(t *testing.T) {
	if got := (CompileCourseCommand{}).Type(); got != "coursegen.course.compile" {
		t.Fatalf("unexpected message type %q", got)
	}
}
