package arxiv

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// Parser adapts this package to the core.Parser interface.
type Parser struct{}

// New creates a LaTeXML HTML parser.
func New() *Parser {
	return &Parser{}
}

// Parse implements core.Parser.
func (p *Parser) Parse(src string) (*core.Document, error) {
	return Parse(src)
}

// Parse converts a LaTeXML HTML document into the shared representation.
func Parse(src string) (*core.Document, error) {
	doc, err := load(src)
	if err != nil {
		return nil, err
	}
	out := &core.Document{Metadata: extractMetadata(doc)}
	out.Sections = parseSections(doc)
	out.Appendices = parseAppendices(doc)
	out.Acknowledgments = parseAcknowledgments(doc)
	out.References = parseReferences(doc)
	return out, nil
}

// ParseMetadata extracts title, authors, and abstract only.
func ParseMetadata(src string) (core.Metadata, error) {
	doc, err := load(src)
	if err != nil {
		return core.Metadata{}, err
	}
	return extractMetadata(doc), nil
}

// ParseBody extracts the body section tree only.
func ParseBody(src string) ([]core.Section, error) {
	doc, err := load(src)
	if err != nil {
		return nil, err
	}
	return parseSections(doc), nil
}

// ParseReferences extracts the bibliography only.
func ParseReferences(src string) ([]core.Reference, error) {
	doc, err := load(src)
	if err != nil {
		return nil, err
	}
	return parseReferences(doc), nil
}

func load(src string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, &core.ParseError{Format: "LaTeXML HTML", Err: err}
	}
	return doc, nil
}

// extractMetadata reads the document title (with any nested author block
// stripped), the author lines, and the abstract. LaTeXML HTML carries no
// structured identifiers or dates; those fields stay empty.
func extractMetadata(doc *goquery.Document) core.Metadata {
	var m core.Metadata
	if title := doc.Find(".ltx_title_document").First(); title.Length() > 0 {
		m.Title = titleText(title.Nodes[0])
	}
	doc.Find(".ltx_personname").Each(func(_ int, s *goquery.Selection) {
		m.Authors = append(m.Authors, splitPersonname(textWithBreaks(s.Nodes[0]))...)
	})
	if abs := doc.Find(".ltx_abstract").First(); abs.Length() > 0 {
		var paras []string
		abs.Find(".ltx_p").Each(func(_ int, p *goquery.Selection) {
			if t := normalizeSpace(nodeText(p.Nodes[0])); t != "" {
				paras = append(paras, t)
			}
		})
		m.Abstract = strings.Join(paras, "\n\n")
	}
	if kw := doc.Find(".ltx_keywords").First(); kw.Length() > 0 {
		raw := normalizeSpace(nodeText(kw.Nodes[0]))
		raw = strings.TrimPrefix(raw, "Keywords:")
		raw = strings.TrimPrefix(raw, "keywords:")
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				m.Keywords = append(m.Keywords, k)
			}
		}
	}
	return m
}

// parseSections converts every top-level ltx_section. Documents without
// section markup degrade to a single untitled section holding the loose
// paragraphs under the document root.
func parseSections(doc *goquery.Document) []core.Section {
	var sections []core.Section
	doc.Find("section.ltx_section").Each(func(_ int, s *goquery.Selection) {
		sections = append(sections, parseSectionNode(s.Nodes[0]))
	})
	if len(sections) > 0 {
		return sections
	}
	var loose []core.Block
	doc.Find(".ltx_document > .ltx_para").Each(func(_ int, s *goquery.Selection) {
		loose = append(loose, blocksFromNode(s.Nodes[0])...)
	})
	if len(loose) > 0 {
		sections = append(sections, core.Section{Level: 2, Content: loose})
	}
	return sections
}

func parseAppendices(doc *goquery.Document) []core.Section {
	var out []core.Section
	doc.Find("section.ltx_appendix").Each(func(_ int, s *goquery.Selection) {
		out = append(out, parseSectionNode(s.Nodes[0]))
	})
	return out
}

func parseAcknowledgments(doc *goquery.Document) string {
	ack := doc.Find(".ltx_acknowledgements").First()
	if ack.Length() == 0 {
		return ""
	}
	return normalizeSpace(nodeText(ack.Nodes[0]))
}

// sectionLevel maps LaTeXML sectioning classes to heading levels.
func sectionLevel(n *html.Node) int {
	switch {
	case hasClass(n, "ltx_subsection"):
		return 3
	case hasClass(n, "ltx_subsubsection"):
		return 4
	case hasClass(n, "ltx_paragraph"):
		return 5
	default:
		return 2
	}
}

// sectioning classes that start a nested section.
func isSectionNode(n *html.Node) bool {
	return hasClass(n, "ltx_section") || hasClass(n, "ltx_subsection") ||
		hasClass(n, "ltx_subsubsection") || hasClass(n, "ltx_paragraph") ||
		hasClass(n, "ltx_appendix")
}

func parseSectionNode(n *html.Node) core.Section {
	s := core.Section{Level: sectionLevel(n)}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch {
		case hasClass(c, "ltx_title"):
			if s.Title == "" {
				s.Title = titleText(c)
			}
		case isSectionNode(c):
			s.Subsections = append(s.Subsections, parseSectionNode(c))
		default:
			s.Content = append(s.Content, blocksFromNode(c)...)
		}
	}
	return s
}

// blocksFromNode converts one DOM subtree into block content: class
// dispatch first, tag dispatch second, and generic containers recurse
// into their children.
func blocksFromNode(n *html.Node) []core.Block {
	if n.Type == html.TextNode {
		if t := normalizeSpace(n.Data); t != "" {
			return []core.Block{core.Paragraph{Content: []core.Inline{core.Text{Text: t}}}}
		}
		return nil
	}
	if n.Type != html.ElementNode {
		return nil
	}
	switch {
	case hasClass(n, "ltx_equation"), hasClass(n, "ltx_eqn_table"):
		return []core.Block{formulaFromNode(n)}
	case hasClass(n, "ltx_tabular"):
		return []core.Block{tableFromNode(n, "")}
	case hasClass(n, "ltx_table"):
		return []core.Block{floatTable(n)}
	case hasClass(n, "ltx_figure"):
		return []core.Block{figureFromNode(n)}
	case hasClass(n, "ltx_quote"):
		return []core.Block{core.Blockquote{Content: inlineChildren(n)}}
	case hasClass(n, "ltx_listing"), hasClass(n, "ltx_verbatim"):
		return []core.Block{core.Preformat{Text: strings.Trim(nodeText(n), "\n")}}
	case hasClass(n, "ltx_p"):
		return paragraphBlocks(n)
	case hasClass(n, "ltx_bibliography"):
		// Bibliographies are extracted separately.
		return nil
	}
	switch n.Data {
	case "ul", "ol":
		return []core.Block{listFromNode(n)}
	case "pre":
		return []core.Block{core.Preformat{Text: strings.Trim(nodeText(n), "\n")}}
	case "p":
		return paragraphBlocks(n)
	case "math":
		f := core.Formula{Text: normalizeSpace(nodeText(n))}
		if alt := attrVal(n, "alttext"); alt != "" {
			f.TeX = alt
		}
		return []core.Block{f}
	case "figure":
		return []core.Block{figureFromNode(n)}
	}
	var out []core.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, blocksFromNode(c)...)
	}
	return out
}

func paragraphBlocks(n *html.Node) []core.Block {
	run := inlineChildren(n)
	if len(run) == 0 {
		return nil
	}
	return []core.Block{core.Paragraph{Content: run}}
}

// formulaFromNode builds display math from an equation container: id
// from the container, label from its ltx_tag ("(1)"), TeX from the math
// element's alttext.
func formulaFromNode(n *html.Node) core.Formula {
	f := core.Formula{ID: attrVal(n, "id")}
	if tag := findClass(n, "ltx_tag"); tag != nil {
		f.Label = normalizeSpace(nodeText(tag))
	}
	if math := findTag(n, "math"); math != nil {
		f.Text = normalizeSpace(nodeText(math))
		if alt := attrVal(math, "alttext"); alt != "" {
			f.TeX = alt
		}
	} else {
		f.Text = normalizeSpace(nodeText(n))
	}
	return f
}

// floatTable converts a ltx_table float: the tabular grid plus the
// figcaption as table caption.
func floatTable(n *html.Node) core.Block {
	caption := captionFor(n, "")
	if tab := findClass(n, "ltx_tabular"); tab != nil {
		return tableFromNode(tab, caption)
	}
	// A table float without a grid degrades to a figure-style caption.
	return core.Figure{ID: attrVal(n, "id"), Label: floatLabel(n), Caption: caption}
}

// tableFromNode reads the grid: the first row supplies headers when it is
// a header row (th cells or thead ancestry), all other rows are data.
func tableFromNode(n *html.Node, caption string) core.Table {
	t := core.Table{Caption: caption}
	var rows []*html.Node
	collectRows(n, &rows)
	for i, tr := range rows {
		var cells []string
		header := insideThead(tr, n)
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "th" {
				header = true
			}
			if c.Data == "th" || c.Data == "td" {
				cells = append(cells, normalizeSpace(nodeText(c)))
			}
		}
		if i == 0 && header {
			t.Headers = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func collectRows(n *html.Node, rows *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "tr" {
			*rows = append(*rows, c)
			continue
		}
		collectRows(c, rows)
	}
}

func insideThead(tr, stop *html.Node) bool {
	for p := tr.Parent; p != nil && p != stop; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "thead" {
			return true
		}
	}
	return false
}

// figureFromNode extracts id, label ("Figure 1" from the caption tag) and
// the caption text. A leading "label:" duplicated inside the caption text
// is stripped.
func figureFromNode(n *html.Node) core.Figure {
	f := core.Figure{ID: attrVal(n, "id"), Label: floatLabel(n)}
	f.Caption = captionFor(n, f.Label)
	return f
}

func floatLabel(n *html.Node) string {
	fc := findTag(n, "figcaption")
	if fc == nil {
		fc = findClass(n, "ltx_caption")
	}
	if fc == nil {
		return ""
	}
	tag := findClass(fc, "ltx_tag")
	if tag == nil {
		return ""
	}
	label := normalizeSpace(nodeText(tag))
	return strings.TrimRight(label, ": ")
}

func captionFor(n *html.Node, label string) string {
	fc := findTag(n, "figcaption")
	if fc == nil {
		fc = findClass(n, "ltx_caption")
	}
	if fc == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			if hasClass(n, "ltx_tag") || n.Data == "annotation" || n.Data == "annotation-xml" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(fc)
	caption := normalizeSpace(b.String())
	if label != "" && strings.HasPrefix(caption, label) {
		rest := strings.TrimPrefix(caption, label)
		if trimmed := strings.TrimLeft(rest, ":. "); trimmed != rest {
			caption = trimmed
		}
	}
	return caption
}

// listFromNode converts ul/ol items, skipping the ltx_tag item markers.
func listFromNode(n *html.Node) core.List {
	list := core.List{Ordered: n.Data == "ol"}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		list.Items = append(list.Items, itemInlines(c))
	}
	return list
}

// itemInlines flattens a list item: LaTeXML nests div.ltx_para/p.ltx_p
// inside each li, so paragraphs are unwrapped and joined with spaces.
func itemInlines(li *html.Node) []core.Inline {
	var run []core.Inline
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if hasClass(c, "ltx_tag") {
					continue
				}
				if hasClass(c, "ltx_p") || c.Data == "p" || hasClass(c, "ltx_para") || c.Data == "div" {
					if len(run) > 0 {
						run = append(run, core.Text{Text: " "})
					}
					walk(c)
					continue
				}
			}
			run = append(run, parseInline(c)...)
		}
	}
	walk(li)
	return trimInlineRun(run)
}

// parseReferences extracts bibliography entries: each li.ltx_bibitem's
// bibblock texts joined with spaces, the "[n]" tag excluded.
func parseReferences(doc *goquery.Document) []core.Reference {
	var refs []core.Reference
	doc.Find(".ltx_bibliography li.ltx_bibitem").Each(func(_ int, s *goquery.Selection) {
		r := core.Reference{ID: attrVal(s.Nodes[0], "id")}
		var parts []string
		s.Find(".ltx_bibblock").Each(func(_ int, b *goquery.Selection) {
			if t := normalizeSpace(nodeText(b.Nodes[0])); t != "" {
				parts = append(parts, t)
			}
		})
		if len(parts) == 0 {
			clone := s.Clone()
			clone.Find(".ltx_tag").Remove()
			if t := normalizeSpace(clone.Text()); t != "" {
				parts = append(parts, t)
			}
		}
		r.Text = strings.Join(parts, " ")
		refs = append(refs, r)
	})
	return refs
}
