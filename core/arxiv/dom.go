// Package arxiv parses LaTeXML-generated HTML (the arXiv full-text HTML
// rendering) into the shared document representation.
//
// LaTeXML tags everything with ltx_* CSS classes, so dispatch is driven
// first by class and only then by tag name. The package loads documents
// with goquery for selector work and walks the underlying x/net/html
// nodes directly wherever mixed text/element order matters.
package arxiv

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// hasClass reports whether the element carries the given class token.
func hasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, tok := range strings.Fields(a.Val) {
			if tok == class {
				return true
			}
		}
	}
	return false
}

// attrVal returns the attribute value, or "" when absent.
func attrVal(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findClass returns the first descendant carrying the class, in document
// order.
func findClass(n *html.Node, class string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if hasClass(c, class) {
			return c
		}
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// findTag returns the first descendant element with the given tag name.
func findTag(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == tag {
			return c
		}
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// nodeText flattens a subtree to text. LaTeXML embeds semantic
// <annotation>/<annotation-xml> children inside math elements that must
// never leak into display text, so those subtrees are always skipped.
func nodeText(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b, false)
	return b.String()
}

// textWithBreaks is nodeText with <br> rendered as a newline, preserving
// the line structure author blocks rely on.
func textWithBreaks(n *html.Node) string {
	var b strings.Builder
	collectText(n, &b, true)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder, breaks bool) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "annotation", "annotation-xml", "script", "style":
			return
		case "br":
			if breaks {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b, breaks)
	}
}

// titleText extracts heading text, dropping ltx_tag children (section
// numbers) and any nested author block.
func titleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "ltx_tag"), hasClass(n, "ltx_authors"),
				hasClass(n, "ltx_author_notes"), hasClass(n, "ltx_creator"):
				return
			}
			switch n.Data {
			case "annotation", "annotation-xml":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return normalizeSpace(b.String())
}

// normalizeSpace trims and collapses whitespace runs to single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseSpace collapses whitespace runs but keeps boundary spaces,
// which separate adjacent inline nodes.
func collapseSpace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	if inSpace {
		b.WriteByte(' ')
	}
	return b.String()
}
