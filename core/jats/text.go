package jats

import (
	"html"
	"strings"
	"unicode"

	"github.com/antchfx/xmlquery"
)

// nameFragmentTags are elements whose text gets a synthesized leading
// space when the preceding accumulated text does not already end in
// whitespace or joining punctuation. JATS builds names from adjacent
// sub-elements (<surname>McGuire</surname><given-names>N</given-names>)
// that would otherwise run together.
var nameFragmentTags = map[string]bool{
	"surname":     true,
	"given-names": true,
	"name":        true,
	"string-name": true,
}

// extractText recursively concatenates all text descendants of n in
// document order, decoding character references and inserting name
// spacing.
func extractText(n *xmlquery.Node) string {
	var b strings.Builder
	collectText(n, &b)
	return b.String()
}

// extractTextExcluding behaves like extractText but skips one subtree,
// typically a <label> whose text must not leak into the result.
func extractTextExcluding(n, skip *xmlquery.Node) string {
	var b strings.Builder
	collectTextSkip(n, skip, &b)
	return b.String()
}

func collectText(n *xmlquery.Node, b *strings.Builder) {
	collectTextSkip(n, nil, b)
}

func collectTextSkip(n, skip *xmlquery.Node, b *strings.Builder) {
	if n == nil || n == skip {
		return
	}
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		b.WriteString(decodeEntities(n.Data))
	case xmlquery.ElementNode, xmlquery.DocumentNode:
		if n.Type == xmlquery.ElementNode && nameFragmentTags[n.Data] && needsNameSpace(b.String()) {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collectTextSkip(c, skip, b)
		}
	}
}

// needsNameSpace reports whether a name fragment needs a synthesized
// space: the accumulated text is non-empty and does not already end in
// whitespace or one of the joining characters ,;.:()-/ that occur between
// name parts in prose.
func needsNameSpace(acc string) bool {
	if acc == "" {
		return false
	}
	r := []rune(acc)
	last := r[len(r)-1]
	if unicode.IsSpace(last) {
		return false
	}
	return !strings.ContainsRune(",;.:()-/", last)
}

// decodeEntities resolves HTML character references left literal in text
// nodes: decimal (&#8217;), hex (&#x2019;), and named (&nbsp;) forms. The
// XML decoder already resolves most of these; this catches references
// that survived lenient parsing.
func decodeEntities(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return html.UnescapeString(s)
}

// normalizeSpace trims s and collapses every internal whitespace run to a
// single space, undoing XML source formatting.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// collapseSpace collapses whitespace runs to single spaces but keeps
// leading and trailing spaces, which separate adjacent inline nodes.
func collapseSpace(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		} else if inSpace && b.Len() == 0 {
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

// rawText concatenates text descendants verbatim, decoding entities but
// preserving all whitespace. Used for <preformat> and <tex-math>.
func rawText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		switch n.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			b.WriteString(decodeEntities(n.Data))
		case xmlquery.ElementNode, xmlquery.DocumentNode:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// textOf is the common "element text, whitespace-normalized" read.
func textOf(n *xmlquery.Node) string {
	return normalizeSpace(extractText(n))
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}
