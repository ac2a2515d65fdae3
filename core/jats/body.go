package jats

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// parseBody converts the <body> into top-level (level 2) sections. Loose
// block content interleaved with <sec> elements is grouped into untitled
// sections at its original position: the running buffer is flushed every
// time a <sec> boundary is crossed.
func parseBody(body *xmlquery.Node) []core.Section {
	if body == nil {
		return nil
	}
	var sections []core.Section
	var loose []core.Block
	flush := func() {
		if len(loose) > 0 {
			sections = append(sections, core.Section{Level: 2, Content: loose})
			loose = nil
		}
	}
	for _, child := range childElements(body) {
		if child.Data == "sec" {
			flush()
			sections = append(sections, parseSection(child, 2))
			continue
		}
		loose = append(loose, parseBlock(child)...)
	}
	flush()
	return sections
}

// parseSection converts one <sec> at the given heading level. Direct
// <sec> children become subsections one level deeper; <title> becomes the
// section title; everything else is block content.
func parseSection(sec *xmlquery.Node, level int) core.Section {
	s := core.Section{Level: level}
	for _, child := range childElements(sec) {
		switch child.Data {
		case "title":
			if s.Title == "" {
				s.Title = textOf(child)
			}
		case "sec":
			s.Subsections = append(s.Subsections, parseSection(child, level+1))
		case "label":
			// Section labels ("2.1") duplicate numbering the renderer
			// does not reproduce.
		default:
			s.Content = append(s.Content, parseBlock(child)...)
		}
	}
	return s
}

// parseBlock dispatches one block-level element. It returns a slice
// because a <p> with embedded block content splits into several blocks.
// Unrecognized elements degrade to a paragraph of their extracted text.
func parseBlock(n *xmlquery.Node) []core.Block {
	switch n.Data {
	case "p":
		return parseParagraph(n)
	case "list":
		return []core.Block{parseList(n)}
	case "table-wrap":
		return []core.Block{parseTableWrap(n)}
	case "fig":
		return []core.Block{parseFigure(n)}
	case "disp-quote":
		return []core.Block{parseDispQuote(n)}
	case "boxed-text":
		return []core.Block{parseBoxedText(n)}
	case "def-list":
		return []core.Block{parseDefList(n)}
	case "disp-formula":
		return []core.Block{parseFormula(n)}
	case "preformat":
		return []core.Block{core.Preformat{Text: rawText(n)}}
	case "supplementary-material":
		label := textOf(firstChild(n, "label"))
		caption := textOf(firstChild(n, "caption"))
		text := joinNonEmpty(": ", label, caption)
		if text == "" {
			return nil
		}
		return []core.Block{core.Paragraph{Content: []core.Inline{core.Text{Text: text}}}}
	default:
		text := textOf(n)
		if text == "" {
			return nil
		}
		return []core.Block{core.Paragraph{Content: []core.Inline{core.Text{Text: text}}}}
	}
}

// blockInParagraph lists block-level tags that may legally nest inside a
// JATS <p> but cannot nest inside a paragraph in the IR.
var blockInParagraph = map[string]bool{
	"table-wrap": true,
	"fig":        true,
	"disp-quote": true,
	"boxed-text": true,
}

// parseParagraph scans the paragraph's children in order, buffering
// consecutive inline content. Each embedded block element flushes the
// buffered run as its own paragraph (dropped when whitespace-only, which
// XML formatting produces) and is emitted directly, so
// "Before. <table-wrap/> After." yields paragraph, table, paragraph.
func parseParagraph(p *xmlquery.Node) []core.Block {
	var blocks []core.Block
	var run []core.Inline
	flush := func() {
		if para, ok := paragraphFromRun(run); ok {
			blocks = append(blocks, para)
		}
		run = nil
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && blockInParagraph[c.Data] {
			flush()
			blocks = append(blocks, parseBlock(c)...)
			continue
		}
		run = append(run, parseInlineNode(c)...)
	}
	flush()
	return blocks
}

// paragraphFromRun trims the run's outer whitespace and drops runs that
// carry no visible content.
func paragraphFromRun(run []core.Inline) (core.Paragraph, bool) {
	run = trimInlineRun(run)
	if len(run) == 0 {
		return core.Paragraph{}, false
	}
	return core.Paragraph{Content: run}, true
}

// trimInlineRun strips leading/trailing whitespace from the boundary text
// nodes and discards boundary nodes left empty.
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

// parseInlineNode converts one child node into inline content. Text nodes
// keep a single space for each whitespace run so words separated by
// source formatting stay separated.
func parseInlineNode(n *xmlquery.Node) []core.Inline {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		t := collapseSpace(decodeEntities(n.Data))
		if t == "" {
			return nil
		}
		return []core.Inline{core.Text{Text: t}}
	case xmlquery.ElementNode:
		return parseInlineElement(n)
	}
	return nil
}

// parseInlineElement dispatches one inline element by tag. Unknown tags
// never fail; they degrade to their extracted text.
func parseInlineElement(n *xmlquery.Node) []core.Inline {
	switch n.Data {
	case "bold", "strong":
		return []core.Inline{core.Bold{Children: parseInlineChildren(n)}}
	case "italic", "em":
		return []core.Inline{core.Italic{Children: parseInlineChildren(n)}}
	case "sup":
		return []core.Inline{core.Superscript{Text: textOf(n)}}
	case "sub":
		return []core.Inline{core.Subscript{Text: textOf(n)}}
	case "monospace":
		return []core.Inline{core.Code{Text: textOf(n)}}
	case "underline", "sc":
		// Content preserved, styling dropped: neither is a distinct
		// style in the IR.
		return textInline(textOf(n))
	case "inline-formula":
		f := core.InlineFormula{Text: textOf(n)}
		if tex := findTexMath(n); tex != "" {
			f.TeX = tex
		}
		return []core.Inline{f}
	case "ext-link", "uri":
		url := attr(n, "href")
		children := parseInlineChildren(n)
		if url == "" {
			url = textOf(n)
		}
		return []core.Inline{core.Link{URL: url, Children: children}}
	case "xref":
		if attr(n, "ref-type") == "bibr" {
			return []core.Inline{core.Citation{RefID: attr(n, "rid"), Text: textOf(n)}}
		}
		return textInline(textOf(n))
	default:
		return textInline(textOf(n))
	}
}

func textInline(text string) []core.Inline {
	if text == "" {
		return nil
	}
	return []core.Inline{core.Text{Text: text}}
}

// parseInlineChildren parses every child of n as inline content.
func parseInlineChildren(n *xmlquery.Node) []core.Inline {
	var out []core.Inline
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, parseInlineNode(c)...)
	}
	return trimInlineRun(out)
}

// findTexMath locates TeX source for a formula element, searching an
// <alternatives> wrapper first and falling back to a direct <tex-math>
// child.
func findTexMath(n *xmlquery.Node) string {
	if alt := firstChild(n, "alternatives"); alt != nil {
		if tm := firstChild(alt, "tex-math"); tm != nil {
			return strings.TrimSpace(rawText(tm))
		}
	}
	if tm := firstChild(n, "tex-math"); tm != nil {
		return strings.TrimSpace(rawText(tm))
	}
	return ""
}

// parseList maps <list> to the IR list: ordered iff list-type="order",
// items built from each <list-item>'s <p> children.
func parseList(n *xmlquery.Node) core.List {
	list := core.List{Ordered: attr(n, "list-type") == "order"}
	for _, item := range childrenByTag(n, "list-item") {
		var run []core.Inline
		ps := childrenByTag(item, "p")
		if len(ps) == 0 {
			run = parseInlineChildren(item)
		} else {
			for i, p := range ps {
				if i > 0 {
					run = append(run, core.Text{Text: " "})
				}
				run = append(run, trimInlineRun(parseInlineChildren(p))...)
			}
		}
		list.Items = append(list.Items, trimInlineRun(run))
	}
	return list
}

// parseTableWrap builds a table: caption joins label and caption text
// with ". ", headers come from the first <thead> row, body rows from
// every <tbody> row. A cell holding several <p> children joins them with
// a literal "<br>", Markdown's inline line-break convention.
func parseTableWrap(n *xmlquery.Node) core.Table {
	t := core.Table{
		Caption: joinNonEmpty(". ",
			textOf(firstChild(n, "label")),
			textOf(firstChild(n, "caption"))),
	}
	table := findFirst(n, "table")
	if table == nil {
		return t
	}
	if thead := findFirst(table, "thead"); thead != nil {
		if tr := findFirst(thead, "tr"); tr != nil {
			for _, cell := range tableCells(tr) {
				t.Headers = append(t.Headers, cellText(cell))
			}
		}
	}
	bodies := findAll(table, "tbody")
	if len(bodies) == 0 {
		// No tbody: every row outside thead is a data row.
		for _, tr := range findAll(table, "tr") {
			if insideTag(tr, table, "thead") {
				continue
			}
			t.Rows = append(t.Rows, rowCells(tr))
		}
		return t
	}
	for _, tbody := range bodies {
		for _, tr := range findAll(tbody, "tr") {
			t.Rows = append(t.Rows, rowCells(tr))
		}
	}
	return t
}

func rowCells(tr *xmlquery.Node) []string {
	var row []string
	for _, cell := range tableCells(tr) {
		row = append(row, cellText(cell))
	}
	return row
}

func tableCells(tr *xmlquery.Node) []*xmlquery.Node {
	var cells []*xmlquery.Node
	for _, c := range childElements(tr) {
		if c.Data == "td" || c.Data == "th" {
			cells = append(cells, c)
		}
	}
	return cells
}

// cellText extracts a cell's text; multiple <p> children join with a
// literal "<br>".
func cellText(cell *xmlquery.Node) string {
	ps := childrenByTag(cell, "p")
	if len(ps) > 1 {
		var parts []string
		for _, p := range ps {
			parts = append(parts, textOf(p))
		}
		return strings.Join(parts, "<br>")
	}
	return textOf(cell)
}

// insideTag reports whether n has an ancestor with the given tag below
// stop.
func insideTag(n, stop *xmlquery.Node, tag string) bool {
	for p := n.Parent; p != nil && p != stop; p = p.Parent {
		if p.Type == xmlquery.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

// parseFigure keeps id, label, and caption; image data is not extracted.
func parseFigure(n *xmlquery.Node) core.Figure {
	return core.Figure{
		ID:      attr(n, "id"),
		Label:   textOf(firstChild(n, "label")),
		Caption: textOf(firstChild(n, "caption")),
	}
}

// parseDispQuote renders multiple <p> children as one quote with a
// literal blank-line marker between paragraphs; single-paragraph quotes
// carry the paragraph's content directly.
func parseDispQuote(n *xmlquery.Node) core.Blockquote {
	ps := childrenByTag(n, "p")
	if len(ps) == 0 {
		return core.Blockquote{Content: parseInlineChildren(n)}
	}
	var content []core.Inline
	for i, p := range ps {
		if i > 0 {
			content = append(content, core.Text{Text: "\n\n"})
		}
		content = append(content, trimInlineRun(parseInlineChildren(p))...)
	}
	return core.Blockquote{Content: content}
}

// parseBoxedText recursively re-invokes block parsing on the box's
// children.
func parseBoxedText(n *xmlquery.Node) core.BoxedText {
	box := core.BoxedText{}
	for _, child := range childElements(n) {
		if child.Data == "title" && box.Title == "" {
			box.Title = textOf(child)
			continue
		}
		box.Content = append(box.Content, parseBlock(child)...)
	}
	return box
}

// parseDefList maps <def-item>/<term>,<def> pairs.
func parseDefList(n *xmlquery.Node) core.DefList {
	dl := core.DefList{Title: textOf(firstChild(n, "title"))}
	for _, item := range childrenByTag(n, "def-item") {
		dl.Items = append(dl.Items, core.DefItem{
			Term:       textOf(firstChild(item, "term")),
			Definition: textOf(firstChild(item, "def")),
		})
	}
	return dl
}

// parseFormula prefers TeX source; without it the formula degrades to
// extracted text with the <label> excluded.
func parseFormula(n *xmlquery.Node) core.Formula {
	f := core.Formula{
		ID:    attr(n, "id"),
		Label: textOf(firstChild(n, "label")),
	}
	if tex := findTexMath(n); tex != "" {
		f.TeX = tex
		return f
	}
	f.Text = normalizeSpace(extractTextExcluding(n, firstChild(n, "label")))
	return f
}
