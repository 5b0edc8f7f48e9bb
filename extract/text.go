package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var wsRe = regexp.MustCompile(`\s+`)

// TextFromHTML renders an HTML document to newline-separated visible text,
// one line per element's own text, in document order. Used when the live
// page's innerText is unavailable (e.g. re-extracting from an HTML dump).
func TextFromHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template, head").Remove()

	var lines []string
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		// Own text nodes only; descendants produce their own lines.
		own := s.Contents().Not("*").Text()
		if own = strings.TrimSpace(wsRe.ReplaceAllString(own, " ")); own != "" {
			lines = append(lines, own)
		}
	})
	if len(lines) == 0 {
		if t := strings.TrimSpace(wsRe.ReplaceAllString(doc.Text(), " ")); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}
