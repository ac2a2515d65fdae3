package cmd

import (
	"path/filepath"
	"strings"
)

// Format identifies the source markup variant of an input file.
type Format string

const (
	FormatJATS    Format = "jats"
	FormatLaTeXML Format = "arxiv"
	FormatHTML    Format = "html"
	FormatUnknown Format = ""
)

// DetectFormat classifies input by content sniffing, with the file
// extension as a tie-breaker. JATS is recognized by its article/
// pmc-articleset roots, LaTeXML by its ltx_ class markers, and any other
// HTML falls back to generic conversion.
func DetectFormat(path, src string) Format {
	head := src
	if len(head) > 4096 {
		head = head[:4096]
	}
	switch {
	case strings.Contains(head, "<pmc-articleset"):
		return FormatJATS
	case strings.Contains(head, "<article") && !strings.Contains(head, "<html"):
		return FormatJATS
	case strings.Contains(src, "ltx_page_main"), strings.Contains(src, "ltx_document"):
		return FormatLaTeXML
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".nxml":
		return FormatJATS
	case ".html", ".htm", ".xhtml":
		if strings.Contains(src, "class=\"ltx_") || strings.Contains(src, "class='ltx_") {
			return FormatLaTeXML
		}
		return FormatHTML
	}
	if strings.Contains(head, "<html") || strings.Contains(head, "<body") || strings.Contains(head, "<!DOCTYPE html") {
		return FormatHTML
	}
	return FormatUnknown
}
