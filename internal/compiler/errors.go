package compiler

import (
	"path"
	"strings"
)

// PathError names the chapter, section and unit a failure belongs to.
// Unit and Section are empty for chapter level failures.
type PathError struct {
	Chapter string
	Section string
	Unit    string
	Err     error
}

func (e *PathError) Error() string {
	msg := e.Err.Error()
	if location := e.Path(); !strings.Contains(msg, location) {
		msg = location + ": " + msg
	}
	return msg
}

func (e *PathError) Unwrap() error { return e.Err }

// Path returns the slash separated location, relative to the source root.
func (e *PathError) Path() string {
	switch {
	case e.Unit != "":
		return e.Unit
	case e.Section != "":
		return e.Section
	case e.Chapter != "":
		return e.Chapter
	default:
		return "."
	}
}

func atPath(err error, chapter, section, unit string) error {
	if err == nil {
		return nil
	}
	return &PathError{Chapter: chapter, Section: section, Unit: unit, Err: err}
}

// AssetPrefix derives the static file prefix of a chapter directory:
// "mod" followed by the first two characters of its name.
func AssetPrefix(chapterDir string) string {
	name := []rune(path.Base(strings.TrimSuffix(chapterDir, "/")))
	if len(name) > 2 {
		name = name[:2]
	}
	return "mod" + string(name)
}
