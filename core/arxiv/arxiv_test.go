package arxiv

import (
	"reflect"
	"testing"

	"github.com/gaurav-prasanna/paperpipe/core"
)

const sampleDoc = `<!DOCTYPE html>
<html><head><title>ignored</title></head><body>
<div class="ltx_page_main"><div class="ltx_page_content">
<article class="ltx_document">
<h1 class="ltx_title ltx_title_document">Deep Things<span class="ltx_authors"><span class="ltx_creator ltx_role_author"><span class="ltx_personname">John Smith<sup>1</sup>, Jane Doe<sup>2</sup><br class="ltx_break"/>1 Univ A, 2 Lab B</span></span></span></h1>
<div class="ltx_abstract"><h6 class="ltx_title ltx_title_abstract">Abstract</h6><p class="ltx_p">We study deep things.</p></div>
<div class="ltx_keywords">Keywords: parsing, markup</div>
<section class="ltx_section" id="S1">
<h2 class="ltx_title ltx_title_section"><span class="ltx_tag ltx_tag_section">1 </span>Introduction</h2>
<div class="ltx_para"><p class="ltx_p">See <a href="#bib.bib1" class="ltx_ref">[1]</a> for <span class="ltx_text ltx_font_bold">bold</span> claims about <math alttext="E=mc^{2}"><semantics><mrow><mi>E</mi></mrow><annotation encoding="application/x-tex">E=mc^{2}</annotation></semantics></math>.</p></div>
<section class="ltx_subsection" id="S1.SS1">
<h3 class="ltx_title ltx_title_subsection"><span class="ltx_tag">1.1 </span>Background</h3>
<div class="ltx_para"><p class="ltx_p">Earlier work.</p></div>
</section>
</section>
<section class="ltx_bibliography" id="bib">
<h2 class="ltx_title ltx_title_bibliography">References</h2>
<ul class="ltx_biblist">
<li class="ltx_bibitem" id="bib.bib1"><span class="ltx_tag ltx_tag_bibitem">[1]</span><span class="ltx_bibblock">A. Author. A paper. 2020.</span></li>
</ul>
</section>
</article>
</div></div>
</body></html>`

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata(sampleDoc)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Title != "Deep Things" {
		t.Errorf("Title = %q, nested author block must be stripped", m.Title)
	}
	wantAuthors := []core.Author{
		{Surname: "Smith", GivenNames: "John"},
		{Surname: "Doe", GivenNames: "Jane"},
	}
	if !reflect.DeepEqual(m.Authors, wantAuthors) {
		t.Errorf("Authors = %+v, want %+v", m.Authors, wantAuthors)
	}
	if m.Abstract != "We study deep things." {
		t.Errorf("Abstract = %q", m.Abstract)
	}
	if !reflect.DeepEqual(m.Keywords, []string{"parsing", "markup"}) {
		t.Errorf("Keywords = %v", m.Keywords)
	}
}

func TestParseBodySections(t *testing.T) {
	sections, err := ParseBody(sampleDoc)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1 (bibliography excluded)", len(sections))
	}
	s := sections[0]
	if s.Title != "Introduction" || s.Level != 2 {
		t.Errorf("section = %q level %d, want Introduction level 2 with tag stripped", s.Title, s.Level)
	}
	if len(s.Subsections) != 1 {
		t.Fatalf("subsections = %+v", s.Subsections)
	}
	if sub := s.Subsections[0]; sub.Title != "Background" || sub.Level != 3 {
		t.Errorf("subsection = %q level %d", sub.Title, sub.Level)
	}

	if len(s.Content) != 1 {
		t.Fatalf("content blocks = %d, want 1", len(s.Content))
	}
	p, ok := s.Content[0].(core.Paragraph)
	if !ok {
		t.Fatalf("content[0] type = %T, want core.Paragraph", s.Content[0])
	}
	want := []core.Inline{
		core.Text{Text: "See "},
		core.Citation{RefID: "bib.bib1", Text: "[1]"},
		core.Text{Text: " for "},
		core.Bold{Children: []core.Inline{core.Text{Text: "bold"}}},
		core.Text{Text: " claims about "},
		core.InlineFormula{Text: "E", TeX: "E=mc^{2}"},
		core.Text{Text: "."},
	}
	if !reflect.DeepEqual(p.Content, want) {
		t.Errorf("paragraph = %+v, want %+v", p.Content, want)
	}
}

func TestParseReferences(t *testing.T) {
	refs, err := ParseReferences(sampleDoc)
	if err != nil {
		t.Fatalf("ParseReferences: %v", err)
	}
	want := []core.Reference{{ID: "bib.bib1", Text: "A. Author. A paper. 2020."}}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("references = %+v, want %+v (tag excluded)", refs, want)
	}
}

func TestParseBodyLooseParagraphFallback(t *testing.T) {
	src := `<html><body><article class="ltx_document">
		<div class="ltx_para"><p class="ltx_p">Only text.</p></div>
	</article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	if len(sections) != 1 || sections[0].Title != "" || sections[0].Level != 2 {
		t.Fatalf("sections = %+v, want one untitled level-2 section", sections)
	}
	p := sections[0].Content[0].(core.Paragraph)
	if !reflect.DeepEqual(p.Content, []core.Inline{core.Text{Text: "Only text."}}) {
		t.Errorf("paragraph = %+v", p.Content)
	}
}

func TestFormulaFromEquationTable(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<section class="ltx_section" id="S1"><h2 class="ltx_title">Math</h2>
<table class="ltx_equation ltx_eqn_table" id="S1.E1"><tr class="ltx_eqn_row"><td class="ltx_eqn_cell"><math alttext="x^{2}+y^{2}=z^{2}"><semantics><mrow><mi>x</mi></mrow><annotation encoding="application/x-tex">x^{2}+y^{2}=z^{2}</annotation></semantics></math></td><td class="ltx_eqn_cell ltx_eqn_eqno"><span class="ltx_tag ltx_tag_equation">(1)</span></td></tr></table>
</section></article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	if len(sections) != 1 || len(sections[0].Content) != 1 {
		t.Fatalf("sections = %+v", sections)
	}
	f, ok := sections[0].Content[0].(core.Formula)
	if !ok {
		t.Fatalf("content type = %T, want core.Formula", sections[0].Content[0])
	}
	want := core.Formula{ID: "S1.E1", Label: "(1)", Text: "x", TeX: "x^{2}+y^{2}=z^{2}"}
	if f != want {
		t.Errorf("formula = %+v, want %+v (annotation text must not leak)", f, want)
	}
}

func TestFigureCaptionLabelDeduplicated(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<section class="ltx_section" id="S1"><h2 class="ltx_title">Figs</h2>
<figure class="ltx_figure" id="F1"><img src="x.png"/><figcaption class="ltx_caption"><span class="ltx_tag ltx_tag_figure">Figure 1: </span>Figure 1: A plot of things.</figcaption></figure>
</section></article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	fig, ok := sections[0].Content[0].(core.Figure)
	if !ok {
		t.Fatalf("content type = %T, want core.Figure", sections[0].Content[0])
	}
	want := core.Figure{ID: "F1", Label: "Figure 1", Caption: "A plot of things."}
	if fig != want {
		t.Errorf("figure = %+v, want %+v", fig, want)
	}
}

func TestTableFloat(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<section class="ltx_section" id="S1"><h2 class="ltx_title">Tabs</h2>
<figure class="ltx_table" id="T1"><figcaption class="ltx_caption"><span class="ltx_tag ltx_tag_table">Table 1: </span>Counts.</figcaption><table class="ltx_tabular"><thead><tr><th class="ltx_th">k</th><th class="ltx_th">v</th></tr></thead><tbody><tr><td class="ltx_td">a</td><td class="ltx_td">1</td></tr></tbody></table></figure>
</section></article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	table, ok := sections[0].Content[0].(core.Table)
	if !ok {
		t.Fatalf("content type = %T, want core.Table", sections[0].Content[0])
	}
	if table.Caption != "Counts." {
		t.Errorf("caption = %q", table.Caption)
	}
	if !reflect.DeepEqual(table.Headers, []string{"k", "v"}) {
		t.Errorf("headers = %v", table.Headers)
	}
	if !reflect.DeepEqual(table.Rows, [][]string{{"a", "1"}}) {
		t.Errorf("rows = %v", table.Rows)
	}
}

func TestListItemsUnwrapped(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<section class="ltx_section" id="S1"><h2 class="ltx_title">L</h2>
<ul class="ltx_itemize" id="I1"><li class="ltx_item"><span class="ltx_tag ltx_tag_item">•</span><div class="ltx_para"><p class="ltx_p">first point</p></div></li><li class="ltx_item"><div class="ltx_para"><p class="ltx_p">second point</p></div></li></ul>
</section></article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	list, ok := sections[0].Content[0].(core.List)
	if !ok {
		t.Fatalf("content type = %T, want core.List", sections[0].Content[0])
	}
	if list.Ordered {
		t.Error("ul must be unordered")
	}
	want := [][]core.Inline{
		{core.Text{Text: "first point"}},
		{core.Text{Text: "second point"}},
	}
	if !reflect.DeepEqual(list.Items, want) {
		t.Errorf("items = %+v, want %+v (tag marker excluded)", list.Items, want)
	}
}

func TestParseAppendicesAndAcknowledgments(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<div class="ltx_acknowledgements">The authors thank X.</div>
<section class="ltx_appendix" id="A1"><h2 class="ltx_title ltx_title_appendix"><span class="ltx_tag">Appendix A </span>Proofs</h2><div class="ltx_para"><p class="ltx_p">Proof text.</p></div></section>
</article></body></html>`
	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Acknowledgments != "The authors thank X." {
		t.Errorf("acknowledgments = %q", doc.Acknowledgments)
	}
	if len(doc.Appendices) != 1 {
		t.Fatalf("appendices = %+v", doc.Appendices)
	}
	if a := doc.Appendices[0]; a.Title != "Proofs" || len(a.Content) != 1 {
		t.Errorf("appendix = %+v", a)
	}
}

func TestSplitPersonname(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []core.Author
	}{
		{
			name: "comma separated with superscript digits",
			raw:  "John Smith1, Jane Doe2",
			want: []core.Author{
				{Surname: "Smith", GivenNames: "John"},
				{Surname: "Doe", GivenNames: "Jane"},
			},
		},
		{
			name: "affiliation parts discarded",
			raw:  "Ada Lovelace1, 1 Analytical Engines Ltd",
			want: []core.Author{{Surname: "Lovelace", GivenNames: "Ada"}},
		},
		{
			name: "affiliation lines after break ignored",
			raw:  "Ada Lovelace\nAnalytical Engines Ltd",
			want: []core.Author{{Surname: "Lovelace", GivenNames: "Ada"}},
		},
		{
			name: "single name has no given names",
			raw:  "Plato",
			want: []core.Author{{Surname: "Plato"}},
		},
		{
			name: "empty input",
			raw:  "  \n ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPersonname(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitPersonname(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTitleTextStripsTags(t *testing.T) {
	src := `<html><body><article class="ltx_document">
<section class="ltx_section"><h2 class="ltx_title ltx_title_section"><span class="ltx_tag ltx_tag_section">3.2 </span>Results and Discussion</h2></section>
</article></body></html>`
	sections, err := ParseBody(src)
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	if got := sections[0].Title; got != "Results and Discussion" {
		t.Errorf("title = %q, section number must be stripped", got)
	}
}
