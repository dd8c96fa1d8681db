package parsing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagPattern = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(\s[^<>]*)?/?>`)

// looksLikeHTML reports whether s contains at least one HTML tag.
func looksLikeHTML(s string) bool {
	return htmlTagPattern.MatchString(s)
}

// PlainText returns the text content of an HTML fragment with block elements
// separated by whitespace. Plain text is returned unchanged.
func PlainText(s string) string {
	if !looksLikeHTML(s) {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br, p, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}
