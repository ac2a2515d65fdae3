package cmd

import "testing"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want Format
	}{
		{
			name: "jats article root",
			path: "paper.xml",
			src:  `<?xml version="1.0"?><article article-type="research-article"><front/></article>`,
			want: FormatJATS,
		},
		{
			name: "pmc articleset envelope",
			path: "efetch.txt",
			src:  `<pmc-articleset><article/></pmc-articleset>`,
			want: FormatJATS,
		},
		{
			name: "latexml page markers",
			path: "2301.00001.html",
			src:  `<html><body><div class="ltx_page_main"><article class="ltx_document"/></div></body></html>`,
			want: FormatLaTeXML,
		},
		{
			name: "xml extension without article root",
			path: "odd.xml",
			src:  `<record><field/></record>`,
			want: FormatJATS,
		},
		{
			name: "html with article tag stays html",
			path: "blog.html",
			src:  `<html><body><article><p>post</p></article></body></html>`,
			want: FormatHTML,
		},
		{
			name: "html content without extension",
			path: "download",
			src:  `<!DOCTYPE html><html><body><p>hi</p></body></html>`,
			want: FormatHTML,
		},
		{
			name: "plain text is unknown",
			path: "notes.txt",
			src:  "just some text",
			want: FormatUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.path, tt.src); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
