// Package core defines the shared document representation for PaperPipe.
// Both source parsers (JATS XML and LaTeXML HTML) produce a *Document, and
// the Markdown renderer consumes it. Every list in the tree preserves the
// original document order; nothing is re-ordered by a parser or renderer.
package core

import "fmt"

// Document is the root of the intermediate representation. It is built once
// per conversion call and never mutated afterwards; the caller owns it
// exclusively, so concurrent conversions need no locking.
type Document struct {
	Metadata        Metadata
	Sections        []Section
	References      []Reference
	Acknowledgments string
	Appendices      []Section
	Footnotes       []Footnote
	Floats          []Block
	Notes           []Note
}

// Metadata holds article front-matter. Missing fields stay zero-valued;
// the renderer skips them.
type Metadata struct {
	Title       string
	Authors     []Author
	DOI         string
	PMCID       string // numeric part only, "PMC" prefix stripped
	PMID        string
	Journal     string
	PubDate     *Date
	Volume      string
	Issue       string
	Pages       string // "fpage-lpage", "fpage", or an e-location id
	Keywords    []string
	ArticleType string
	License     string // a URL when available, otherwise free text
	Abstract    string // paragraphs joined by "\n\n"
}

// Author is a single contributor name.
type Author struct {
	Surname    string
	GivenNames string
}

// Date is a publication date. Day is only meaningful when Month is set.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Section is a heading-delimited body division. Level mirrors heading
// depth: top-level sections are 2, and a subsection's level is always its
// parent's level plus one.
type Section struct {
	Title       string
	Level       int
	Content     []Block
	Subsections []Section
}

// Block is a closed union of block-level content. The variants are the
// concrete types below; nothing outside this package implements it.
type Block interface {
	isBlock()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Content []Inline
}

// Blockquote is quoted inline content. Multi-paragraph quotes carry a
// literal "\n\n" text marker between paragraphs.
type Blockquote struct {
	Content []Inline
}

// List is an ordered or unordered list; each item is its own inline run.
type List struct {
	Ordered bool
	Items   [][]Inline
}

// Table is a simple grid with optional caption. Headers may be empty even
// when Rows is not; the renderer still emits a valid Markdown table.
type Table struct {
	Caption string
	Headers []string
	Rows    [][]string
}

// Figure carries identification and caption only; image data is never
// extracted.
type Figure struct {
	ID      string
	Label   string
	Caption string
}

// BoxedText is a titled sidebar whose body is itself block content.
type BoxedText struct {
	Title   string
	Content []Block
}

// DefList is a definition list.
type DefList struct {
	Title string
	Items []DefItem
}

// DefItem is one term/definition pair.
type DefItem struct {
	Term       string
	Definition string
}

// Formula is display math. TeX is preferred over Text when both are set.
type Formula struct {
	ID    string
	Label string
	TeX   string
	Text  string
}

// Preformat is whitespace-significant verbatim text.
type Preformat struct {
	Text string
}

func (Paragraph) isBlock()  {}
func (Blockquote) isBlock() {}
func (List) isBlock()       {}
func (Table) isBlock()      {}
func (Figure) isBlock()     {}
func (BoxedText) isBlock()  {}
func (DefList) isBlock()    {}
func (Formula) isBlock()    {}
func (Preformat) isBlock()  {}

// Inline is a closed union of inline content.
type Inline interface {
	isInline()
}

// Text is a plain text run.
type Text struct {
	Text string
}

// Bold wraps nested inline content.
type Bold struct {
	Children []Inline
}

// Italic wraps nested inline content.
type Italic struct {
	Children []Inline
}

// Superscript holds superscripted text.
type Superscript struct {
	Text string
}

// Subscript holds subscripted text.
type Subscript struct {
	Text string
}

// Citation is a same-document back-reference to a bibliography entry.
// RefID is not validated against the reference list at parse time.
type Citation struct {
	RefID string
	Text  string
}

// Link is a hyperlink with parsed display content.
type Link struct {
	URL      string
	Children []Inline
}

// Code is inline monospace text.
type Code struct {
	Text string
}

// InlineFormula is inline math; TeX is preferred over Text when set.
type InlineFormula struct {
	TeX  string
	Text string
}

func (Text) isInline()          {}
func (Bold) isInline()          {}
func (Italic) isInline()        {}
func (Superscript) isInline()   {}
func (Subscript) isInline()     {}
func (Citation) isInline()      {}
func (Link) isInline()          {}
func (Code) isInline()          {}
func (InlineFormula) isInline() {}

// Reference is one bibliography entry. Text never contains the literal
// DOI/PMID/PMCID values once those fields are populated; parsers strip
// them so the renderer cannot print an identifier twice.
type Reference struct {
	ID    string
	Text  string
	DOI   string
	PMID  string
	PMCID string // numeric part only
}

// Footnote is one back-matter footnote.
type Footnote struct {
	ID   string
	Text string
}

// Note is a free-form back-matter note (author contributions, funding,
// data availability, glossary, ...). Title is empty only when the source
// had no disambiguating heading.
type Note struct {
	Title string
	Text  string
}

// ParseError reports a catastrophic markup-parse failure, the only error
// the parsers surface. Anything short of that degrades to empty fields.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s input: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
