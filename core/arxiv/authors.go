package arxiv

import (
	"strings"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// splitPersonname turns one ltx_personname text block into authors.
//
// A single personname element may encode several comma-separated names,
// interleaved with numeric affiliation superscripts and <br>-separated
// affiliation lines (raw arrives with "\n" for each <br>). For every
// comma-separated part the first non-blank line is the candidate name:
// affiliation text appears on the following lines. A part whose first
// token is purely numeric is an affiliation marker, not a name, and is
// discarded; trailing digit runs on a kept name are attached superscript
// markers and are stripped. The last whitespace-separated token is the
// surname, the rest the given names. The heuristic is knowingly ambiguous
// for suffixed names ("Jr.") and multi-word surnames; it is preserved
// as-is for behavioral stability.
func splitPersonname(raw string) []core.Author {
	var authors []core.Author
	for _, part := range strings.Split(raw, ",") {
		line := firstNonBlankLine(part)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if allDigits(fields[0]) {
			continue
		}
		name := strings.TrimSpace(strings.TrimRight(line, "0123456789"))
		if name == "" {
			continue
		}
		parts := strings.Fields(name)
		a := core.Author{Surname: parts[len(parts)-1]}
		if len(parts) > 1 {
			a.GivenNames = strings.Join(parts[:len(parts)-1], " ")
		}
		authors = append(authors, a)
	}
	return authors
}

func firstNonBlankLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := normalizeSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
