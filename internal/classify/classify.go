// Package classify decides what kind of component a unit file becomes.
package classify

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-coursegen/internal/course"
)

var (
	titlePattern   = regexp.MustCompile(`(?m)^###[ \t]+(.+?)[ \t]*\r?$`)
	markerPattern  = regexp.MustCompile(`^\[meta\](.*)`)
	videoPattern   = regexp.MustCompile(`^\[meta\]: <video> \(([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})\)`)
	problemPattern = regexp.MustCompile(`^\[meta\]: <problem>`)
	problemSplit   = regexp.MustCompile(`(?s)<problem.*?</problem>`)
)

// Classify inspects unit text and returns the matching course.Unit. It
// fails with *course.MalformedUnitError when the unit has no level three
// heading, or when a problem unit holds no <problem> block.
func Classify(text string) (course.Unit, error) {
	title, ok := Title(text)
	if !ok {
		return nil, &course.MalformedUnitError{Reason: "no \"### \" title heading"}
	}

	first := firstLine(text)
	if !markerPattern.MatchString(first) {
		return course.HTMLUnit{Heading: title, Body: text}, nil
	}

	if m := videoPattern.FindStringSubmatch(first); m != nil {
		return course.VideoUnit{Heading: title, Ref: m[1], Body: text}, nil
	}

	if loc := problemPattern.FindStringIndex(text); loc != nil {
		fragments := problemSplit.FindAllString(text[loc[1]:], -1)
		if len(fragments) == 0 {
			return nil, &course.MalformedUnitError{Reason: "problem unit has no <problem> block"}
		}
		return course.ProblemUnit{Heading: title, Fragments: fragments}, nil
	}

	return course.HTMLUnit{Heading: title, Body: text}, nil
}

// Title returns the text of the first "### " heading.
func Title(text string) (string, bool) {
	for _, m := range titlePattern.FindAllStringSubmatch(text, -1) {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, true
		}
	}
	return "", false
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSuffix(text, "\r")
}
