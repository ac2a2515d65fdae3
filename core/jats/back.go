package jats

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// BackMatter holds everything extracted from <back> plus the article's
// sibling <floats-group>.
type BackMatter struct {
	References      []core.Reference
	Acknowledgments string
	Appendices      []core.Section
	Footnotes       []core.Footnote
	Notes           []core.Note
	Floats          []core.Block
}

// parseBackMatter walks the direct children of <back> in document order.
// Glossary notes are collected separately and appended after all other
// notes.
func parseBackMatter(article *xmlquery.Node) BackMatter {
	var bm BackMatter
	if article == nil {
		return bm
	}
	var glossaries []core.Note
	if back := firstChild(article, "back"); back != nil {
		for _, child := range childElements(back) {
			switch child.Data {
			case "ref-list":
				bm.References = append(bm.References, parseRefList(child)...)
			case "ack":
				bm.Acknowledgments = parseAck(child)
			case "app-group":
				for _, app := range childrenByTag(child, "app") {
					bm.Appendices = append(bm.Appendices, parseSection(app, 2))
				}
			case "fn-group":
				for _, fn := range childrenByTag(child, "fn") {
					bm.Footnotes = append(bm.Footnotes, parseFootnote(fn))
				}
			case "notes":
				bm.Notes = append(bm.Notes, parseNotes(child)...)
			case "glossary":
				glossaries = append(glossaries, parseGlossary(child))
			}
		}
		if len(bm.References) == 0 {
			// Some archives nest the ref-list inside a back <sec>.
			if rl := findFirst(back, "ref-list"); rl != nil {
				bm.References = parseRefList(rl)
			}
		}
	}
	bm.Notes = append(bm.Notes, glossaries...)
	if fg := firstChild(article, "floats-group"); fg != nil {
		bm.Floats = parseFloats(fg)
	}
	return bm
}

// parseAck joins the acknowledgment paragraphs with blank lines.
func parseAck(ack *xmlquery.Node) string {
	if text := joinedParagraphs(ack); text != "" {
		return text
	}
	return normalizeSpace(extractTextExcluding(ack, firstChild(ack, "title")))
}

// parseFootnote joins the footnote's title and paragraph texts with
// single spaces, not blank lines.
func parseFootnote(fn *xmlquery.Node) core.Footnote {
	var parts []string
	if t := textOf(firstChild(fn, "title")); t != "" {
		parts = append(parts, t)
	}
	for _, p := range childrenByTag(fn, "p") {
		if t := textOf(p); t != "" {
			parts = append(parts, t)
		}
	}
	return core.Footnote{ID: attr(fn, "id"), Text: strings.Join(parts, " ")}
}

// parseNotes converts a <notes> element. <sec> and nested <notes>
// children each become their own note (the common "Declarations"
// pattern); any loose content outside them becomes a leading note under
// the element's own title, so a mixed notes block loses neither its
// introductory paragraphs nor its sections.
func parseNotes(notes *xmlquery.Node) []core.Note {
	var nested []core.Note
	loose := false
	for _, c := range childElements(notes) {
		switch c.Data {
		case "title", "label":
		case "sec":
			nested = append(nested, noteFromSec(c))
		case "notes":
			nested = append(nested, parseNotes(c)...)
		default:
			loose = true
		}
	}
	var out []core.Note
	if loose || len(nested) == 0 {
		title := textOf(firstChild(notes, "title"))
		text := joinedParagraphs(notes)
		if text == "" && len(nested) == 0 {
			text = normalizeSpace(extractTextExcluding(notes, firstChild(notes, "title")))
		}
		if title != "" || text != "" {
			out = append(out, core.Note{Title: title, Text: text})
		}
	}
	return append(out, nested...)
}

func noteFromSec(sec *xmlquery.Node) core.Note {
	title := textOf(firstChild(sec, "title"))
	text := joinedParagraphs(sec)
	if text == "" {
		text = normalizeSpace(extractTextExcluding(sec, firstChild(sec, "title")))
	}
	return core.Note{Title: title, Text: text}
}

// parseGlossary flattens a glossary def-list into "term: definition"
// lines. The note title comes from the glossary's own <title>, defaulting
// to "Glossary".
func parseGlossary(g *xmlquery.Node) core.Note {
	title := textOf(firstChild(g, "title"))
	if title == "" {
		title = "Glossary"
	}
	var lines []string
	if dl := findFirst(g, "def-list"); dl != nil {
		for _, item := range parseDefList(dl).Items {
			lines = append(lines, item.Term+": "+item.Definition)
		}
	}
	return core.Note{Title: title, Text: strings.Join(lines, "\n")}
}

// parseFloats converts a <floats-group>'s figures and tables with the
// same block logic as the body parser.
func parseFloats(fg *xmlquery.Node) []core.Block {
	var out []core.Block
	for _, child := range childElements(fg) {
		switch child.Data {
		case "fig":
			out = append(out, parseFigure(child))
		case "table-wrap":
			out = append(out, parseTableWrap(child))
		}
	}
	return out
}
