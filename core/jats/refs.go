package jats

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// parseRefList converts each <ref> into a reference entry.
func parseRefList(rl *xmlquery.Node) []core.Reference {
	var refs []core.Reference
	for _, ref := range childrenByTag(rl, "ref") {
		refs = append(refs, parseRef(ref))
	}
	return refs
}

// parseRef extracts one reference. Citation nodes are searched inside a
// <citation-alternatives> wrapper when present. <mixed-citation> (already
// human-formatted) wins over <element-citation> (assembled here), with a
// last resort of raw text extraction that excludes the <label> so the
// citation number cannot leak into the text.
func parseRef(ref *xmlquery.Node) core.Reference {
	r := core.Reference{ID: attr(ref, "id")}
	scope := ref
	if ca := firstChild(ref, "citation-alternatives"); ca != nil {
		scope = ca
	}
	var citation *xmlquery.Node
	var text string
	switch {
	case firstChild(scope, "mixed-citation") != nil:
		citation = firstChild(scope, "mixed-citation")
		text = textOf(citation)
	case firstChild(scope, "element-citation") != nil:
		citation = firstChild(scope, "element-citation")
		text = assembleCitation(citation)
	default:
		citation = scope
		text = normalizeSpace(extractTextExcluding(ref, firstChild(ref, "label")))
	}
	for _, pid := range findAll(citation, "pub-id") {
		value := textOf(pid)
		if value == "" {
			continue
		}
		switch strings.ToLower(attr(pid, "pub-id-type")) {
		case "doi":
			r.DOI = value
		case "pmid":
			r.PMID = value
		case "pmc", "pmcid":
			r.PMCID = strings.TrimPrefix(value, "PMC")
		}
	}
	r.Text = stripIdentifiers(text, r)
	return r
}

// assembleCitation formats a structured <element-citation> as
// "Authors. Title. Source. Year;Volume:Pages.", omitting empty parts and
// always terminating with a period.
func assembleCitation(ec *xmlquery.Node) string {
	var names []string
	for _, n := range findAll(ec, "name") {
		if s := textOf(n); s != "" {
			names = append(names, s)
		}
	}
	for _, c := range findAll(ec, "collab") {
		if s := textOf(c); s != "" {
			names = append(names, s)
		}
	}
	var parts []string
	if len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}
	if t := textOf(findFirst(ec, "article-title")); t != "" {
		parts = append(parts, t)
	}
	if s := textOf(findFirst(ec, "source")); s != "" {
		parts = append(parts, s)
	}
	tail := textOf(findFirst(ec, "year"))
	if v := textOf(findFirst(ec, "volume")); v != "" {
		if tail != "" {
			tail += ";"
		}
		tail += v
	}
	if pages := citationPages(ec); pages != "" {
		tail += ":" + pages
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	s := strings.Join(parts, ". ")
	if s != "" && !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func citationPages(ec *xmlquery.Node) string {
	fpage := textOf(findFirst(ec, "fpage"))
	lpage := textOf(findFirst(ec, "lpage"))
	switch {
	case fpage != "" && lpage != "":
		return fpage + "-" + lpage
	case fpage != "":
		return fpage
	}
	return ""
}

// stripIdentifiers removes identifier values that also appear inline in
// the citation text, so an identifier carried both inline and in a
// <pub-id> element is never rendered twice. Labeled forms ("doi:X",
// "PMID: X", "PMCX") go first, then the bare value, by exact substring
// match rather than regex to avoid over-matching. Double spaces and a
// doubled trailing period left behind are repaired.
func stripIdentifiers(text string, r core.Reference) string {
	if r.DOI != "" {
		text = removeFold(text, "doi: "+r.DOI)
		text = removeFold(text, "doi:"+r.DOI)
		text = strings.ReplaceAll(text, r.DOI, "")
	}
	if r.PMID != "" {
		text = removeFold(text, "pmid: "+r.PMID)
		text = removeFold(text, "pmid:"+r.PMID)
		text = strings.ReplaceAll(text, r.PMID, "")
	}
	if r.PMCID != "" {
		text = removeFold(text, "pmcid: PMC"+r.PMCID)
		text = removeFold(text, "pmcid:PMC"+r.PMCID)
		text = removeFold(text, "pmcid: "+r.PMCID)
		text = removeFold(text, "pmcid:"+r.PMCID)
		text = removeFold(text, "PMC"+r.PMCID)
	}
	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, " .") {
		text = strings.TrimSuffix(text, " .") + "."
	}
	for strings.HasSuffix(text, "..") {
		text = strings.TrimSuffix(text, ".")
	}
	return text
}

// removeFold removes every occurrence of sub from s, matching
// case-insensitively but preserving the rest of s.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	lower := strings.ToLower(s)
	lowerSub := strings.ToLower(sub)
	var b strings.Builder
	for {
		i := strings.Index(lower, lowerSub)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(lowerSub):]
	}
}
