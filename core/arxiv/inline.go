package arxiv

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// inlineChildren parses every child of n as inline content.
func inlineChildren(n *html.Node) []core.Inline {
	var out []core.Inline
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, parseInline(c)...)
	}
	return trimInlineRun(out)
}

// parseInline converts one DOM node: font classes first, then tag names,
// then a plain-text fallback. Unknown markup never fails.
func parseInline(n *html.Node) []core.Inline {
	switch n.Type {
	case html.TextNode:
		if t := collapseSpace(n.Data); t != "" {
			return []core.Inline{core.Text{Text: t}}
		}
		return nil
	case html.ElementNode:
	default:
		return nil
	}
	if hasClass(n, "ltx_tag") {
		// Item/equation numbering markers carry no content of their own.
		return nil
	}
	switch {
	case hasClass(n, "ltx_font_bold"):
		return []core.Inline{core.Bold{Children: inlineChildren(n)}}
	case hasClass(n, "ltx_font_italic"):
		return []core.Inline{core.Italic{Children: inlineChildren(n)}}
	case hasClass(n, "ltx_font_typewriter"):
		return []core.Inline{core.Code{Text: normalizeSpace(nodeText(n))}}
	}
	switch n.Data {
	case "math":
		f := core.InlineFormula{Text: normalizeSpace(nodeText(n))}
		if alt := attrVal(n, "alttext"); alt != "" {
			f.TeX = alt
		}
		return []core.Inline{f}
	case "a":
		href := attrVal(n, "href")
		switch {
		case strings.HasPrefix(href, "#bib"):
			return []core.Inline{core.Citation{
				RefID: strings.TrimPrefix(href, "#"),
				Text:  normalizeSpace(nodeText(n)),
			}}
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			return []core.Inline{core.Link{URL: href, Children: inlineChildren(n)}}
		}
		return textInline(normalizeSpace(nodeText(n)))
	case "b", "strong":
		return []core.Inline{core.Bold{Children: inlineChildren(n)}}
	case "i", "em":
		return []core.Inline{core.Italic{Children: inlineChildren(n)}}
	case "code", "tt":
		return []core.Inline{core.Code{Text: normalizeSpace(nodeText(n))}}
	case "sup":
		return []core.Inline{core.Superscript{Text: normalizeSpace(nodeText(n))}}
	case "sub":
		return []core.Inline{core.Subscript{Text: normalizeSpace(nodeText(n))}}
	case "br":
		return []core.Inline{core.Text{Text: " "}}
	case "span", "cite":
		var out []core.Inline
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, parseInline(c)...)
		}
		return out
	default:
		return textInline(normalizeSpace(nodeText(n)))
	}
}

func textInline(text string) []core.Inline {
	if text == "" {
		return nil
	}
	return []core.Inline{core.Text{Text: text}}
}

// trimInlineRun strips leading/trailing whitespace from the boundary
// text nodes and drops boundary nodes left empty.
func trimInlineRun(run []core.Inline) []core.Inline {
	for len(run) > 0 {
		t, ok := run[0].(core.Text)
		if !ok {
			break
		}
		t.Text = strings.TrimLeft(t.Text, " \t\n")
		if t.Text == "" {
			run = run[1:]
			continue
		}
		run[0] = t
		break
	}
	for len(run) > 0 {
		t, ok := run[len(run)-1].(core.Text)
		if !ok {
			break
		}
		t.Text = strings.TrimRight(t.Text, " \t\n")
		if t.Text == "" {
			run = run[:len(run)-1]
			continue
		}
		run[len(run)-1] = t
		break
	}
	return run
}
