package jats

import (
	"encoding/xml"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// Parser adapts this package to the core.Parser interface.
type Parser struct{}

// New creates a JATS parser.
func New() *Parser {
	return &Parser{}
}

// Parse implements core.Parser.
func (p *Parser) Parse(src string) (*core.Document, error) {
	return Parse(src)
}

// Parse converts a complete JATS XML document into the shared
// representation: metadata, body sections, references, back matter, and
// floats.
func Parse(src string) (*core.Document, error) {
	root, err := parseXML(src)
	if err != nil {
		return nil, err
	}
	article := findArticle(root)
	doc := &core.Document{Metadata: extractMetadata(article)}
	if article == nil {
		return doc, nil
	}
	doc.Sections = parseBody(firstChild(article, "body"))
	bm := parseBackMatter(article)
	doc.References = bm.References
	doc.Acknowledgments = bm.Acknowledgments
	doc.Appendices = bm.Appendices
	doc.Footnotes = bm.Footnotes
	doc.Notes = bm.Notes
	doc.Floats = bm.Floats
	return doc, nil
}

// ParseMetadata extracts front-matter only.
func ParseMetadata(src string) (core.Metadata, error) {
	root, err := parseXML(src)
	if err != nil {
		return core.Metadata{}, err
	}
	return extractMetadata(findArticle(root)), nil
}

// ParseBody extracts the body section tree only.
func ParseBody(src string) ([]core.Section, error) {
	root, err := parseXML(src)
	if err != nil {
		return nil, err
	}
	article := findArticle(root)
	if article == nil {
		return nil, nil
	}
	return parseBody(firstChild(article, "body")), nil
}

// ParseReferences extracts the bibliography only.
func ParseReferences(src string) ([]core.Reference, error) {
	root, err := parseXML(src)
	if err != nil {
		return nil, err
	}
	article := findArticle(root)
	if article == nil {
		return nil, nil
	}
	return parseBackMatter(article).References, nil
}

// ParseBackMatter extracts everything from <back> plus the sibling
// <floats-group>.
func ParseBackMatter(src string) (BackMatter, error) {
	root, err := parseXML(src)
	if err != nil {
		return BackMatter{}, err
	}
	return parseBackMatter(findArticle(root)), nil
}

// parseXML parses src leniently: non-strict decoding with the HTML entity
// table, since PMC documents routinely carry named entities and omit
// DTDs. The only surfaced failure is markup the decoder cannot parse at
// all.
func parseXML(src string) (*xmlquery.Node, error) {
	opts := xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: false,
			Entity: xml.HTMLEntity,
		},
	}
	root, err := xmlquery.ParseWithOptions(strings.NewReader(src), opts)
	if err != nil {
		return nil, &core.ParseError{Format: "JATS XML", Err: err}
	}
	return root, nil
}

// findArticle locates the <article> root. NCBI efetch responses wrap one
// or more articles in a <pmc-articleset> envelope; when no bare <article>
// is found at the top level, the first article inside the envelope is
// used. A document with neither yields nil, which downstream extraction
// treats as an empty article.
func findArticle(root *xmlquery.Node) *xmlquery.Node {
	for _, c := range childElements(root) {
		if c.Data == "article" {
			return c
		}
	}
	if set := findFirst(root, "pmc-articleset"); set != nil {
		return firstChild(set, "article")
	}
	return findFirst(root, "article")
}
