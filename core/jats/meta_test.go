package jats

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gaurav-prasanna/paperpipe/core"
)

const sampleArticle = `<?xml version="1.0" encoding="UTF-8"?>
<article article-type="research-article">
  <front>
    <journal-meta>
      <journal-title-group>
        <journal-title>Journal of Testing</journal-title>
      </journal-title-group>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="doi">10.1000/jt.2020.42</article-id>
      <article-id pub-id-type="pmid">31234567</article-id>
      <article-id pub-id-type="pmc">PMC7654321</article-id>
      <title-group>
        <article-title>A Study of <italic>Something</italic> Important</article-title>
      </title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <name><surname>Smith</surname><given-names>Jane A</given-names></name>
        </contrib>
        <contrib contrib-type="editor">
          <name><surname>Jones</surname><given-names>Ed</given-names></name>
        </contrib>
        <contrib>
          <name><surname>Doe</surname><given-names>John</given-names></name>
        </contrib>
      </contrib-group>
      <pub-date pub-type="ppub">
        <day>15</day><month>1</month><year>2020</year>
      </pub-date>
      <pub-date pub-type="epub">
        <day>2</day><month>12</month><year>2019</year>
      </pub-date>
      <volume>12</volume>
      <issue>3</issue>
      <fpage>101</fpage>
      <lpage>115</lpage>
      <permissions>
        <license xlink:href="https://creativecommons.org/licenses/by/4.0/">
          <license-p>Open access under CC BY.</license-p>
        </license>
      </permissions>
      <abstract>
        <sec>
          <title>Background</title>
          <p>We investigated a thing.</p>
        </sec>
        <sec>
          <title>Results</title>
          <p>The thing behaved.</p>
        </sec>
      </abstract>
      <kwd-group><kwd>testing</kwd><kwd>parsing</kwd></kwd-group>
      <kwd-group><kwd>testing</kwd></kwd-group>
    </article-meta>
  </front>
  <body><p>Body text.</p></body>
</article>`

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata(sampleArticle)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}

	if m.Title != "A Study of Something Important" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Journal != "Journal of Testing" {
		t.Errorf("Journal = %q", m.Journal)
	}
	if m.ArticleType != "research-article" {
		t.Errorf("ArticleType = %q", m.ArticleType)
	}
	if m.DOI != "10.1000/jt.2020.42" {
		t.Errorf("DOI = %q", m.DOI)
	}
	if m.PMID != "31234567" {
		t.Errorf("PMID = %q", m.PMID)
	}
	if m.PMCID != "7654321" {
		t.Errorf("PMCID = %q (PMC prefix must be stripped)", m.PMCID)
	}
	if m.Volume != "12" || m.Issue != "3" || m.Pages != "101-115" {
		t.Errorf("Volume/Issue/Pages = %q/%q/%q", m.Volume, m.Issue, m.Pages)
	}
	if m.License != "https://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("License = %q (href wins over license-p)", m.License)
	}

	wantAuthors := []core.Author{
		{Surname: "Smith", GivenNames: "Jane A"},
		{Surname: "Doe", GivenNames: "John"},
	}
	if !reflect.DeepEqual(m.Authors, wantAuthors) {
		t.Errorf("Authors = %+v, want %+v", m.Authors, wantAuthors)
	}

	wantDate := &core.Date{Year: 2019, Month: 12, Day: 2}
	if !reflect.DeepEqual(m.PubDate, wantDate) {
		t.Errorf("PubDate = %+v, want epub %+v", m.PubDate, wantDate)
	}

	wantKeywords := []string{"testing", "parsing", "testing"}
	if !reflect.DeepEqual(m.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want union with duplicates %v", m.Keywords, wantKeywords)
	}

	wantAbstract := "Background: We investigated a thing.\n\nResults: The thing behaved."
	if m.Abstract != wantAbstract {
		t.Errorf("Abstract = %q, want %q", m.Abstract, wantAbstract)
	}
}

func TestParseMetadataArticlesetEnvelope(t *testing.T) {
	src := `<pmc-articleset><article><front><article-meta>
		<title-group><article-title>Wrapped</article-title></title-group>
	</article-meta></front></article></pmc-articleset>`
	m, err := ParseMetadata(src)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Title != "Wrapped" {
		t.Errorf("Title = %q, want %q", m.Title, "Wrapped")
	}
}

func TestParseMetadataFallbackArticleType(t *testing.T) {
	src := `<article><front><article-meta>
		<article-categories>
			<subj-group subj-group-type="heading"><subject>Case Report</subject></subj-group>
		</article-categories>
		<title-group><article-title>T</article-title></title-group>
	</article-meta></front></article>`
	m, err := ParseMetadata(src)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.ArticleType != "Case Report" {
		t.Errorf("ArticleType = %q, want subject heading fallback", m.ArticleType)
	}
}

func TestParseMetadataFlatAbstractAndElocation(t *testing.T) {
	src := `<article><front><article-meta>
		<elocation-id>e0042</elocation-id>
		<abstract><p>First.</p><p>Second.</p></abstract>
	</article-meta></front></article>`
	m, err := ParseMetadata(src)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.Abstract != "First.\n\nSecond." {
		t.Errorf("Abstract = %q", m.Abstract)
	}
	if m.Pages != "e0042" {
		t.Errorf("Pages = %q, want elocation-id fallback", m.Pages)
	}
}

func TestParseMetadataNoArticle(t *testing.T) {
	m, err := ParseMetadata("<not-an-article/>")
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if !reflect.DeepEqual(m, core.Metadata{}) {
		t.Errorf("metadata = %+v, want zero value", m)
	}
}

func TestParseMalformedInput(t *testing.T) {
	_, err := Parse("<article")
	if err == nil {
		t.Fatal("Parse accepted unterminated markup")
	}
	var perr *core.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *core.ParseError", err)
	}
	if perr.Format != "JATS XML" {
		t.Errorf("ParseError.Format = %q", perr.Format)
	}
}

func TestPickPubDateTieKeepsFirst(t *testing.T) {
	src := `<article><front><article-meta>
		<pub-date><year>2001</year></pub-date>
		<pub-date><year>2002</year></pub-date>
	</article-meta></front></article>`
	m, err := ParseMetadata(src)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if m.PubDate == nil || m.PubDate.Year != 2001 {
		t.Errorf("PubDate = %+v, want first date on priority tie", m.PubDate)
	}
}

func TestParseDateDayRequiresMonth(t *testing.T) {
	src := `<article><front><article-meta>
		<pub-date pub-type="epub"><day>9</day><year>2021</year></pub-date>
	</article-meta></front></article>`
	m, err := ParseMetadata(src)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	want := &core.Date{Year: 2021}
	if !reflect.DeepEqual(m.PubDate, want) {
		t.Errorf("PubDate = %+v, want %+v (day dropped without month)", m.PubDate, want)
	}
}
