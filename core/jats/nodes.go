// Package jats parses JATS XML (the PubMed Central full-text format) into
// the shared document representation.
//
// JATS bodies interleave text and element siblings, so the package works
// on xmlquery's ordered node tree rather than encoding/xml struct
// decoding, which would lose that interleaving. The navigation helpers in
// this file are pure and total: absence yields nil or "", never an error.
package jats

import (
	"github.com/antchfx/xmlquery"
)

// tagName returns the local element name of n, or "" for non-element nodes.
func tagName(n *xmlquery.Node) string {
	if n == nil || n.Type != xmlquery.ElementNode {
		return ""
	}
	return n.Data
}

// childElements returns the element children of n in document order.
func childElements(n *xmlquery.Node) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// attr returns the value of the named attribute, matching on the local
// name so namespace prefixes are transparent (JATS links use xlink:href).
func attr(n *xmlquery.Node, name string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// firstChild returns the first child element of n with the given tag.
func firstChild(n *xmlquery.Node, tag string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

// childrenByTag returns every child element of n with the given tag, in
// document order.
func childrenByTag(n *xmlquery.Node, tag string) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

// findFirst returns the first descendant element with the given tag in
// document order, or nil.
func findFirst(n *xmlquery.Node, tag string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if c.Data == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant element with the given tag in document
// order.
func findAll(n *xmlquery.Node, tag string) []*xmlquery.Node {
	var out []*xmlquery.Node
	collectAll(n, tag, &out)
	return out
}

func collectAll(n *xmlquery.Node, tag string, out *[]*xmlquery.Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if c.Data == tag {
			*out = append(*out, c)
		}
		collectAll(c, tag, out)
	}
}
