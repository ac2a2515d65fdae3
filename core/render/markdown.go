// Package render serializes the shared document representation into
// Markdown, the pipeline's only output format. Rendering is a pure
// function of the document tree and never fails: any tree the parsers
// can build renders to some Markdown string.
package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// MarkdownRenderer implements core.Renderer.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render implements core.Renderer.
func (r *MarkdownRenderer) Render(doc *core.Document) ([]byte, error) {
	return []byte(Markdown(doc)), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// Markdown serializes doc. Output uses "\n" line endings and ends with a
// single final newline; chunks are separated by one blank line.
func Markdown(doc *core.Document) string {
	var parts []string
	add := func(chunk string) {
		if chunk != "" {
			parts = append(parts, chunk)
		}
	}

	add(headerBlock(&doc.Metadata))
	if doc.Metadata.Abstract != "" {
		add("## Abstract")
		add(doc.Metadata.Abstract)
	}
	for _, sec := range doc.Sections {
		renderSection(&parts, sec)
	}
	if doc.Acknowledgments != "" {
		add("## Acknowledgments")
		add(doc.Acknowledgments)
	}
	for _, note := range doc.Notes {
		title := note.Title
		if title == "" {
			title = "Notes"
		}
		add("## " + title)
		add(note.Text)
	}
	if len(doc.References) > 0 {
		add("## References")
		add(referenceList(doc.References))
	}
	for _, app := range doc.Appendices {
		renderSection(&parts, app)
	}
	if len(doc.Footnotes) > 0 {
		add("## Footnotes")
		var lines []string
		for i, fn := range doc.Footnotes {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, fn.Text))
		}
		add(strings.Join(lines, "\n"))
	}
	if len(doc.Floats) > 0 {
		add("## Figures and Tables")
		for _, b := range doc.Floats {
			add(renderBlock(b))
		}
	}

	if len(parts) == 0 {
		return "\n"
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// headerBlock renders "# title" plus the fixed-order metadata lines. The
// title line and metadata lines form one chunk, so a blank line follows
// the title only when at least one metadata line was emitted. An empty
// title emits no heading line, matching the section rule.
func headerBlock(m *core.Metadata) string {
	var lines []string
	if strings.TrimSpace(m.Title) != "" {
		lines = append(lines, "# "+m.Title)
	}
	if len(m.Authors) > 0 {
		var names []string
		for _, a := range m.Authors {
			names = append(names, abbreviateAuthor(a))
		}
		lines = append(lines, "Authors: "+strings.Join(names, ", "))
	}
	if m.DOI != "" {
		lines = append(lines, "DOI: "+m.DOI)
	}
	if m.PMCID != "" {
		lines = append(lines, "PMC: PMC"+m.PMCID)
	}
	if m.PMID != "" {
		lines = append(lines, "PMID: "+m.PMID)
	}
	if m.Journal != "" {
		lines = append(lines, "Journal: "+m.Journal)
	}
	if m.PubDate != nil {
		lines = append(lines, "Published: "+formatDate(m.PubDate))
	}
	if cite := citationLine(m); cite != "" {
		lines = append(lines, "Citation: "+cite)
	}
	if m.ArticleType != "" {
		lines = append(lines, "Article Type: "+m.ArticleType)
	}
	if len(m.Keywords) > 0 {
		lines = append(lines, "Keywords: "+strings.Join(m.Keywords, ", "))
	}
	if m.License != "" {
		lines = append(lines, "License: "+m.License)
	}
	return strings.Join(lines, "\n")
}

// abbreviateAuthor renders "Surname AB" with one initial per given-name
// word, or just the surname when no given names are known.
func abbreviateAuthor(a core.Author) string {
	if a.GivenNames == "" {
		return a.Surname
	}
	var initials strings.Builder
	for _, word := range strings.Fields(a.GivenNames) {
		initials.WriteRune([]rune(word)[0])
	}
	if initials.Len() == 0 {
		return a.Surname
	}
	return a.Surname + " " + initials.String()
}

// formatDate renders YYYY, YYYY-MM, or YYYY-MM-DD with zero padding.
func formatDate(d *core.Date) string {
	switch {
	case d.Month == 0:
		return fmt.Sprintf("%d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// citationLine renders "Vol. V(I), pp. P" when both volume and issue are
// known, else the comma-joined subset of available pieces.
func citationLine(m *core.Metadata) string {
	var pieces []string
	if m.Volume != "" {
		v := "Vol. " + m.Volume
		if m.Issue != "" {
			v += "(" + m.Issue + ")"
		}
		pieces = append(pieces, v)
	}
	if m.Pages != "" {
		pieces = append(pieces, "pp. "+m.Pages)
	}
	return strings.Join(pieces, ", ")
}

// renderSection emits the heading (omitted entirely for untitled
// sections), then each block, then subsections.
func renderSection(parts *[]string, sec core.Section) {
	if strings.TrimSpace(sec.Title) != "" {
		*parts = append(*parts, strings.Repeat("#", sec.Level)+" "+sec.Title)
	}
	for _, b := range sec.Content {
		if chunk := renderBlock(b); chunk != "" {
			*parts = append(*parts, chunk)
		}
	}
	for _, sub := range sec.Subsections {
		renderSection(parts, sub)
	}
}

func renderBlock(b core.Block) string {
	switch b := b.(type) {
	case core.Paragraph:
		return renderInlines(b.Content)
	case core.Blockquote:
		return quotePrefix(renderInlines(b.Content))
	case core.List:
		var lines []string
		for i, item := range b.Items {
			if b.Ordered {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, renderInlines(item)))
			} else {
				lines = append(lines, "- "+renderInlines(item))
			}
		}
		return strings.Join(lines, "\n")
	case core.Table:
		return renderTable(b)
	case core.Figure:
		return "![" + joinNonEmpty(". ", b.Label, b.Caption) + "]()"
	case core.BoxedText:
		return renderBoxedText(b)
	case core.DefList:
		return renderDefList(b)
	case core.Formula:
		return renderFormula(b)
	case core.Preformat:
		return "```\n" + strings.TrimRight(b.Text, "\n") + "\n```"
	}
	return ""
}

// renderTable always emits a syntactically valid Markdown table: when no
// headers exist, an empty header row sized to the first data row is
// synthesized so the separator row still parses.
func renderTable(t core.Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		if t.Caption != "" {
			return "*" + t.Caption + "*"
		}
		return ""
	}
	headers := make([]string, cols)
	copy(headers, t.Headers)
	var b strings.Builder
	if t.Caption != "" {
		b.WriteString("*" + t.Caption + "*\n\n")
	}
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + escapeCell(cell) + " |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return strings.TrimRight(b.String(), "\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// renderBoxedText renders the box as a blockquote: "> **Title**", a bare
// ">" separator, then every inner block's own rendering re-prefixed
// line-by-line.
func renderBoxedText(b core.BoxedText) string {
	var inner []string
	for _, blk := range b.Content {
		if chunk := renderBlock(blk); chunk != "" {
			inner = append(inner, chunk)
		}
	}
	body := strings.Join(inner, "\n\n")
	if b.Title != "" {
		if body == "" {
			return "> **" + b.Title + "**"
		}
		return "> **" + b.Title + "**\n>\n" + quotePrefix(body)
	}
	return quotePrefix(body)
}

// quotePrefix prefixes each line with "> "; blank lines become a bare ">".
func quotePrefix(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

func renderDefList(d core.DefList) string {
	var lines []string
	for _, item := range d.Items {
		lines = append(lines, "- **"+item.Term+"**: "+item.Definition)
	}
	body := strings.Join(lines, "\n")
	if d.Title != "" {
		if body == "" {
			return "**" + d.Title + "**"
		}
		return "**" + d.Title + "**\n\n" + body
	}
	return body
}

// renderFormula prefers TeX display math; plain-text formulas fall back
// to a fenced code block. The label follows on its own line.
func renderFormula(f core.Formula) string {
	var body string
	switch {
	case f.TeX != "":
		body = "$$" + f.TeX + "$$"
	case f.Text != "":
		body = "```\n" + f.Text + "\n```"
	default:
		return ""
	}
	if f.Label != "" {
		body += "\n" + f.Label
	}
	return body
}

// referenceList renders numbered references, each line appending
// hyperlinks for whichever identifiers are present.
func referenceList(refs []core.Reference) string {
	var lines []string
	for i, r := range refs {
		line := fmt.Sprintf("%d. %s", i+1, r.Text)
		if r.DOI != "" {
			line += fmt.Sprintf(" [doi:%s](https://doi.org/%s)", r.DOI, r.DOI)
		}
		if r.PMID != "" {
			line += fmt.Sprintf(" [pmid:%s](https://pubmed.ncbi.nlm.nih.gov/%s/)", r.PMID, r.PMID)
		}
		if r.PMCID != "" {
			line += fmt.Sprintf(" [pmcid:PMC%s](https://www.ncbi.nlm.nih.gov/pmc/articles/PMC%s/)", r.PMCID, r.PMCID)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderInlines(inlines []core.Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch in := in.(type) {
		case core.Text:
			b.WriteString(in.Text)
		case core.Bold:
			b.WriteString("**" + renderInlines(in.Children) + "**")
		case core.Italic:
			b.WriteString("*" + renderInlines(in.Children) + "*")
		case core.Superscript:
			b.WriteString("^" + in.Text + "^")
		case core.Subscript:
			b.WriteString("~" + in.Text + "~")
		case core.Citation:
			b.WriteString(in.Text)
		case core.Code:
			b.WriteString("`" + in.Text + "`")
		case core.InlineFormula:
			if in.TeX != "" {
				b.WriteString("$" + in.TeX + "$")
			} else {
				b.WriteString(in.Text)
			}
		case core.Link:
			text := renderInlines(in.Children)
			if text == in.URL || text == "" {
				b.WriteString(in.URL)
			} else {
				b.WriteString("[" + text + "](" + in.URL + ")")
			}
		}
	}
	return b.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}
