package fetcher

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	commentCountRe = regexp.MustCompile(`(?i)\b\d+\s+comments?\b`)
	commentWordRe  = regexp.MustCompile(`(?i)\bcomments?\b`)
)

// CleanText strips HTML markup and feed noise (comment counters) from
// a title or summary and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "<") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = html.UnescapeString(s)
	s = commentCountRe.ReplaceAllString(s, "")
	s = commentWordRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
