package jats

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/gaurav-prasanna/paperpipe/core"
)

// extractMetadata pulls title, authors, identifiers, dates, journal,
// license, keywords and abstract from the article front matter. A nil
// article yields the zero value.
func extractMetadata(article *xmlquery.Node) core.Metadata {
	var m core.Metadata
	if article == nil {
		return m
	}
	m.ArticleType = attr(article, "article-type")

	front := firstChild(article, "front")
	if front == nil {
		return m
	}
	m.Journal = journalTitle(firstChild(front, "journal-meta"))

	am := firstChild(front, "article-meta")
	if am == nil {
		return m
	}

	if t := xmlquery.FindOne(am, "title-group/article-title"); t != nil {
		m.Title = textOf(t)
	}
	m.Authors = extractAuthors(am)
	extractIdentifiers(am, &m)
	m.PubDate = pickPubDate(childrenByTag(am, "pub-date"))
	if m.ArticleType == "" {
		if s := xmlquery.FindOne(am, "article-categories/subj-group[@subj-group-type='heading']/subject"); s != nil {
			m.ArticleType = textOf(s)
		}
	}

	if v := firstChild(am, "volume"); v != nil {
		m.Volume = textOf(v)
	}
	if i := firstChild(am, "issue"); i != nil {
		m.Issue = textOf(i)
	}
	m.Pages = extractPages(am)
	m.Keywords = extractKeywords(am)
	m.License = extractLicense(am)
	if abs := firstChild(am, "abstract"); abs != nil {
		m.Abstract = extractAbstract(abs)
	}
	return m
}

// journalTitle reads journal-meta/journal-title-group/journal-title, with
// a fallback to a direct journal-title child used by older JATS variants.
func journalTitle(jm *xmlquery.Node) string {
	if jm == nil {
		return ""
	}
	if tg := firstChild(jm, "journal-title-group"); tg != nil {
		if t := firstChild(tg, "journal-title"); t != nil {
			return textOf(t)
		}
	}
	if t := firstChild(jm, "journal-title"); t != nil {
		return textOf(t)
	}
	return ""
}

// extractAuthors collects contrib[contrib-type=author]/name entries from
// every contrib-group. Editors and other non-author contributors are
// skipped; a contrib without a contrib-type attribute counts as an author.
func extractAuthors(am *xmlquery.Node) []core.Author {
	var authors []core.Author
	for _, cg := range childrenByTag(am, "contrib-group") {
		for _, contrib := range childrenByTag(cg, "contrib") {
			if ct := attr(contrib, "contrib-type"); ct != "" && ct != "author" {
				continue
			}
			name := firstChild(contrib, "name")
			if name == nil {
				continue
			}
			a := core.Author{
				Surname:    textOf(firstChild(name, "surname")),
				GivenNames: textOf(firstChild(name, "given-names")),
			}
			if a.Surname == "" && a.GivenNames == "" {
				continue
			}
			authors = append(authors, a)
		}
	}
	return authors
}

// extractIdentifiers keys every article-id by its pub-id-type. PMC ids
// are stored without the "PMC" prefix.
func extractIdentifiers(am *xmlquery.Node, m *core.Metadata) {
	for _, id := range childrenByTag(am, "article-id") {
		value := textOf(id)
		if value == "" {
			continue
		}
		switch strings.ToLower(attr(id, "pub-id-type")) {
		case "doi":
			m.DOI = value
		case "pmid":
			m.PMID = value
		case "pmc", "pmcid":
			m.PMCID = strings.TrimPrefix(value, "PMC")
		}
	}
}

// pubDatePriority ranks pub-date entries: electronic publication first,
// then print, then collection, then anything else.
func pubDatePriority(dateType string) int {
	switch dateType {
	case "epub":
		return 0
	case "ppub":
		return 1
	case "collection":
		return 2
	default:
		return 3
	}
}

// pickPubDate selects the best of multiple pub-date entries by priority;
// ties keep the first in document order, so a document with no typed
// dates falls back to its first available date.
func pickPubDate(dates []*xmlquery.Node) *core.Date {
	var best *core.Date
	bestPrio := -1
	for _, d := range dates {
		dt := attr(d, "pub-type")
		if dt == "" {
			dt = attr(d, "date-type")
		}
		prio := pubDatePriority(dt)
		parsed := parseDate(d)
		if parsed == nil {
			continue
		}
		if best == nil || prio < bestPrio {
			best = parsed
			bestPrio = prio
		}
	}
	return best
}

// parseDate reads year/month/day children; a date without a parsable
// year is discarded. Day is kept only when month is present.
func parseDate(d *xmlquery.Node) *core.Date {
	year := atoi(textOf(firstChild(d, "year")))
	if year == 0 {
		return nil
	}
	date := &core.Date{Year: year}
	date.Month = atoi(textOf(firstChild(d, "month")))
	if date.Month != 0 {
		date.Day = atoi(textOf(firstChild(d, "day")))
	}
	return date
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// extractPages prefers "fpage-lpage", then bare fpage, then an
// e-location id.
func extractPages(am *xmlquery.Node) string {
	fpage := textOf(firstChild(am, "fpage"))
	lpage := textOf(firstChild(am, "lpage"))
	switch {
	case fpage != "" && lpage != "":
		return fpage + "-" + lpage
	case fpage != "":
		return fpage
	}
	return textOf(firstChild(am, "elocation-id"))
}

// extractKeywords unions every kwd-group's kwd children in encounter
// order. Duplicates across groups are kept.
func extractKeywords(am *xmlquery.Node) []string {
	var kws []string
	for _, kg := range childrenByTag(am, "kwd-group") {
		for _, kwd := range childrenByTag(kg, "kwd") {
			if k := textOf(kwd); k != "" {
				kws = append(kws, k)
			}
		}
	}
	return kws
}

// extractLicense prefers the license's xlink:href URL over free-text
// license-p content.
func extractLicense(am *xmlquery.Node) string {
	lic := xmlquery.FindOne(am, "permissions/license")
	if lic == nil {
		return ""
	}
	if href := attr(lic, "href"); href != "" {
		return href
	}
	if lp := firstChild(lic, "license-p"); lp != nil {
		return textOf(lp)
	}
	return textOf(lic)
}

// extractAbstract flattens an abstract: <sec>-structured abstracts join
// each section as "Title: text" with blank lines between sections, flat
// abstracts join <p> children with blank lines, and anything else
// degrades to raw text extraction.
func extractAbstract(abs *xmlquery.Node) string {
	if secs := childrenByTag(abs, "sec"); len(secs) > 0 {
		var parts []string
		for _, sec := range secs {
			title := textOf(firstChild(sec, "title"))
			text := joinedParagraphs(sec)
			if text == "" {
				text = normalizeSpace(extractTextExcluding(sec, firstChild(sec, "title")))
			}
			if text == "" {
				continue
			}
			if title != "" {
				parts = append(parts, title+": "+text)
			} else {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n\n")
	}
	if text := joinedParagraphs(abs); text != "" {
		return text
	}
	return textOf(abs)
}

// joinedParagraphs joins the direct <p> children's text with blank lines.
func joinedParagraphs(n *xmlquery.Node) string {
	var parts []string
	for _, p := range childrenByTag(n, "p") {
		if t := textOf(p); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
