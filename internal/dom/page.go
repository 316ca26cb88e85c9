// Package dom models a rendered retail page as an immutable snapshot: a
// parsed document plus a Layout that answers box-metric and style questions
// per element. The detection heuristics only ever read through this package,
// so the same engine runs against browser-rendered pages and plain fetched
// HTML alike.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is one snapshot of a retail page.
type Page struct {
	Doc    *goquery.Document
	URL    string
	Layout Layout
}

// Parse builds a Page from raw HTML using the static layout model. Pages
// produced by the headless renderer carry baked metric attributes which the
// static layout picks up transparently.
func Parse(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return &Page{
		Doc:    doc,
		URL:    pageURL,
		Layout: NewStaticLayout(doc),
	}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(html, pageURL string) (*Page, error) {
	return Parse(strings.NewReader(html), pageURL)
}

// Metrics returns layout metrics for the first node of a selection. An empty
// selection yields zero metrics, which reads as an invisible element.
func (p *Page) Metrics(s *goquery.Selection) Metrics {
	if s == nil || len(s.Nodes) == 0 {
		return Metrics{}
	}
	return p.Layout.Metrics(s.Nodes[0])
}

// Visible reports whether a selection occupies space on the page.
func (p *Page) Visible(s *goquery.Selection) bool {
	m := p.Metrics(s)
	return m.Width > 0 && m.Height > 0
}

// Body returns the document body, falling back to the document root when the
// markup has no body element.
func (p *Page) Body() *goquery.Selection {
	body := p.Doc.Find("body").First()
	if len(body.Nodes) > 0 {
		return body
	}
	return p.Doc.Selection
}

// Text returns the whitespace-collapsed text content of a selection.
func Text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// ClassAndID returns the element's class and id attributes lowercased and
// joined, the form most classifier substring checks want.
func ClassAndID(s *goquery.Selection) string {
	class, _ := s.Attr("class")
	id, _ := s.Attr("id")
	return strings.ToLower(class + " " + id)
}

// Contains reports whether node container contains node inner.
func Contains(container, inner *goquery.Selection) bool {
	if len(container.Nodes) == 0 || len(inner.Nodes) == 0 {
		return false
	}
	target := inner.Nodes[0]
	for n := target; n != nil; n = n.Parent {
		if n == container.Nodes[0] {
			return true
		}
	}
	return false
}

// nodeAttr fetches an attribute straight off an html.Node.
func nodeAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
