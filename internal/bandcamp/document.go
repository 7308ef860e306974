package bandcamp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
)

// page wraps a parsed HTML document together with the URL it came from.
type page struct {
	doc *goquery.Document
	url string
}

func newPage(html, pageURL string) (*page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Field: "html", Err: err}
	}
	return &page{doc: doc, url: pageURL}, nil
}

func (p *page) text(selector string) string {
	return cleanText(p.doc.Find(selector).First().Text())
}

func (p *page) attr(selector, name string) string {
	v, _ := p.doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

func (p *page) meta(property string) string {
	if v := p.attr(fmt.Sprintf(`meta[property=%q]`, property), "content"); v != "" {
		return v
	}
	return p.attr(fmt.Sprintf(`meta[name=%q]`, property), "content")
}

func (p *page) resolve(ref string) string {
	return resolveURL(p.url, ref)
}

// jsonAttr decodes the JSON stored in an attribute of the first element
// matching selector. It reports false when the element is absent.
func (p *page) jsonAttr(selector, name string, v any) (bool, error) {
	raw, ok := p.doc.Find(selector).First().Attr(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(fixJSON(raw)), v); err != nil {
		return true, &ParseError{URL: p.url, Field: name, Err: err}
	}
	return true, nil
}

// jsonLD returns the first JSON-LD block that decodes into an entity.
func (p *page) jsonLD() *dto.LDEntity {
	var found *dto.LDEntity
	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var e dto.LDEntity
		if err := json.Unmarshal([]byte(s.Text()), &e); err != nil || len(e.Type) == 0 {
			return true
		}
		found = &e
		return false
	})
	return found
}

var whitespace = regexp.MustCompile(`[ \t\r\f\v]+`)
var blankLines = regexp.MustCompile(`\n\s*\n\s*(\n\s*)+`)

// cleanText collapses runs of spaces, trims every line and drops
// excessive blank lines.
func cleanText(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// blockText returns the text of a selection, turning <br> into newlines.
func blockText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	clone := s.First().Clone()
	clone.Find("br").ReplaceWithHtml("\n")
	return cleanText(clone.Text())
}

// fixJSON fixes malformed JSON from Bandcamp pages.
//
// Some Bandcamp pages have JavaScript-style URL concatenation in the JSON:
//
//	url: "http://example.bandcamp.com" + "/album/name",
//
// which is not valid JSON, so the concatenation is removed.
func fixJSON(data string) string {
	return concatenation.ReplaceAllString(data, "${1}${2}")
}

var concatenation = regexp.MustCompile(`("?url"?: ?".+?)" \+ "(.+?",)`)
