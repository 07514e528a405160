// Package richtext turns campaign descriptions, which DreamLift stores as
// HTML, into plain text for terminals and logs.
package richtext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p,br,div,li,ul,ol,h1,h2,h3,h4,h5,h6,tr,td,th,blockquote,pre,hr"

// PlainText strips markup and collapses whitespace. Input that does not
// parse is returned with its whitespace collapsed.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return collapse(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(html)
	}

	doc.Find("script,style,noscript,template").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	return collapse(doc.Text())
}

// Excerpt returns at most max runes of the plain text, cut at a word
// boundary where possible and marked with an ellipsis.
func Excerpt(html string, max int) string {
	text := PlainText(html)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
