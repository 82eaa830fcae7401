// Package scan enumerates a course source tree without writing anything.
// The resulting Plan fixes the visitation order used by the compiler.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Reserved directory names.
const (
	ImagesDir = "images"
	FilesDir  = "files"
)

// DefaultImagePatterns are matched case-insensitively inside images/.
var DefaultImagePatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg"}

var vcsDirs = []string{".git", ".svn", ".hg", ".bzr"}

// Options tunes enumeration.
type Options struct {
	// Exclude lists top level directory names skipped as chapters, usually
	// the output directory when it lives inside the source tree.
	Exclude []string
	// ImagePatterns overrides DefaultImagePatterns.
	ImagePatterns []string
}

// Plan is the ordered course layout. All paths are slash separated and
// relative to the scanned root.
type Plan struct {
	Chapters []Chapter
}

// Chapter is a top level directory.
type Chapter struct {
	Dir      string
	Name     string
	Sections []Section
	Images   []string
	Files    []string
}

// Section is a directory inside a chapter.
type Section struct {
	Dir   string
	Name  string
	Units []string
}

// Units returns the number of unit files in the plan.
func (p *Plan) Units() int {
	n := 0
	for _, chapter := range p.Chapters {
		for _, section := range chapter.Sections {
			n += len(section.Units)
		}
	}
	return n
}

// Enumerate lists chapters, sections, units and chapter assets of fsys.
// Every level is sorted case-insensitively with byte order breaking ties.
func Enumerate(fsys fs.FS, opts Options) (*Plan, error) {
	patterns := opts.ImagePatterns
	if len(patterns) == 0 {
		patterns = DefaultImagePatterns
	}
	excluded := append(slices.Clone(vcsDirs), opts.Exclude...)

	chapterNames, err := list(fsys, ".", isDir)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, name := range chapterNames {
		if containsFold(excluded, name) {
			continue
		}
		chapter, err := enumerateChapter(fsys, name, patterns)
		if err != nil {
			return nil, err
		}
		plan.Chapters = append(plan.Chapters, chapter)
	}
	return plan, nil
}

func enumerateChapter(fsys fs.FS, dir string, patterns []string) (Chapter, error) {
	chapter := Chapter{Dir: dir, Name: path.Base(dir)}

	sectionNames, err := list(fsys, dir, isDir)
	if err != nil {
		return Chapter{}, err
	}
	for _, name := range sectionNames {
		if name == ImagesDir || name == FilesDir {
			continue
		}
		sectionDir := path.Join(dir, name)
		units, err := list(fsys, sectionDir, isUnit)
		if err != nil {
			return Chapter{}, err
		}
		for i, unit := range units {
			units[i] = path.Join(sectionDir, unit)
		}
		chapter.Sections = append(chapter.Sections, Section{Dir: sectionDir, Name: name, Units: units})
	}

	if chapter.Images, err = listOptional(fsys, path.Join(dir, ImagesDir), matchAny(patterns)); err != nil {
		return Chapter{}, err
	}
	if chapter.Files, err = listOptional(fsys, path.Join(dir, FilesDir), isRegular); err != nil {
		return Chapter{}, err
	}
	return chapter, nil
}

type filter func(fs.DirEntry) bool

func isDir(entry fs.DirEntry) bool { return entry.IsDir() }

func isRegular(entry fs.DirEntry) bool { return entry.Type().IsRegular() }

func isUnit(entry fs.DirEntry) bool {
	return entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".md")
}

func matchAny(patterns []string) filter {
	lowered := make([]string, len(patterns))
	for i, pattern := range patterns {
		lowered[i] = strings.ToLower(pattern)
	}
	return func(entry fs.DirEntry) bool {
		if !entry.Type().IsRegular() {
			return false
		}
		name := strings.ToLower(entry.Name())
		for _, pattern := range lowered {
			if ok, _ := path.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
}

// list returns the names of entries in dir accepted by keep, sorted.
func list(fsys fs.FS, dir string, keep filter) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if keep(entry) {
			names = append(names, entry.Name())
		}
	}
	SortFold(names)
	return names, nil
}

// listOptional is list for directories that may be absent. Returned names
// are full relative paths.
func listOptional(fsys fs.FS, dir string, keep filter) ([]string, error) {
	names, err := list(fsys, dir, keep)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, name := range names {
		names[i] = path.Join(dir, name)
	}
	return names, nil
}

// SortFold sorts names case-insensitively, byte order breaking ties.
func SortFold(names []string) {
	slices.SortFunc(names, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func containsFold(names []string, name string) bool {
	return slices.ContainsFunc(names, func(candidate string) bool {
		return strings.EqualFold(candidate, name)
	})
}
