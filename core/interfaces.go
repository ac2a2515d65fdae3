package core

// Parser converts source markup (one format per implementation) into the
// shared document representation. Parse is pure: string in, tree out, no
// I/O, safe to call concurrently.
type Parser interface {
	Parse(src string) (*Document, error)
}

// Renderer serializes a Document into a final output format.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md").
	Extension() string
}

// Normalizer converts generic (non-scholarly) HTML into Markdown. Used as
// the fallback path when input is neither JATS nor LaTeXML.
type Normalizer interface {
	Normalize(html string) (string, error)
}
