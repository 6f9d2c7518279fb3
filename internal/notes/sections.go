package notes

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingPattern        = regexp.MustCompile(`(?m)^#+\s+(.*)`)
	leadingHeadingPattern = regexp.MustCompile(`^#+\s*.*(\n|$)`)
)

// Section is one horizontal-rule delimited part of a notes document.
type Section struct {
	Title string
	Body  string
}

// Sections splits a notes document on "---" rules. A section is titled by its first
// heading and numbered from 1. When the section opens with a heading, the body omits it.
func Sections(document string) []Section {
	var sections []Section
	for _, part := range strings.Split(document, "---") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n := len(sections) + 1

		title := fmt.Sprintf("Section %d", n)
		if match := headingPattern.FindStringSubmatch(part); match != nil {
			title = fmt.Sprintf("%d. %s", n, strings.TrimSpace(match[1]))
		}
		sections = append(sections, Section{
			Title: title,
			Body:  strings.TrimSpace(leadingHeadingPattern.ReplaceAllString(part, "")),
		})
	}
	return sections
}
