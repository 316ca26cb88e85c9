package dom

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Metrics describes one element's box and the computed-ish styles the
// heuristics score on. A zero Width/Height means the element is invisible.
type Metrics struct {
	Top    float64
	Width  float64
	Height float64
	// FontSize in CSS pixels.
	FontSize float64
	// Color and Background are raw CSS color values ("rgb(...)", "#fff").
	Color      string
	Background string
	// TextDecoration is the computed text-decoration value, if known.
	TextDecoration string
}

// Area returns the box area in square pixels.
func (m Metrics) Area() float64 { return m.Width * m.Height }

// Layout answers metric queries for elements of one page snapshot.
type Layout interface {
	Metrics(n *html.Node) Metrics
}

// Baked metric attributes written by the headless renderer. When present they
// override everything the static model would otherwise guess.
const (
	attrTop      = "data-sm-top"
	attrWidth    = "data-sm-width"
	attrHeight   = "data-sm-height"
	attrFontSize = "data-sm-font-size"
	attrColor    = "data-sm-color"
	attrBg       = "data-sm-bg"
	attrDeco     = "data-sm-deco"
)

// syntheticPageHeight spreads document-order vertical offsets over a nominal
// page so that position-sensitive heuristics (above-the-fold bonuses, the
// area locator's fold cutoff) remain meaningful without a real layout pass.
const syntheticPageHeight = 3000.0

// Per-tag fallback boxes for elements that declare no size anywhere. The
// static model assumes elements render at plausible sizes unless the markup
// says otherwise; only explicitly hidden elements read as invisible.
var defaultBoxes = map[string][2]float64{
	"body":    {1200, 3000},
	"main":    {900, 1600},
	"article": {900, 1200},
	"section": {900, 600},
	"div":     {800, 600},
	"img":     {300, 300},
	"picture": {300, 300},
	"source":  {300, 300},
	"h1":      {600, 40},
	"h2":      {500, 32},
	"h3":      {400, 26},
	"p":       {500, 22},
	"span":    {200, 20},
	"a":       {120, 20},
	"button":  {160, 44},
	"del":     {100, 20},
	"s":       {100, 20},
}

var defaultFontSizes = map[string]float64{
	"h1": 32, "h2": 24, "h3": 19, "h4": 16, "small": 13,
}

// StaticLayout derives metrics from renderer-baked attributes, inline styles
// and size attributes, with document-order synthesized vertical offsets.
type StaticLayout struct {
	tops map[*html.Node]float64
}

var _ Layout = (*StaticLayout)(nil)

// NewStaticLayout walks the document once, assigning each element a synthetic
// absolute top proportional to its position in document order.
func NewStaticLayout(doc *goquery.Document) *StaticLayout {
	l := &StaticLayout{tops: make(map[*html.Node]float64)}

	var nodes []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			nodes = append(nodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	total := float64(len(nodes))
	if total == 0 {
		total = 1
	}
	for i, n := range nodes {
		l.tops[n] = float64(i) / total * syntheticPageHeight
	}

	return l
}

func (l *StaticLayout) Metrics(n *html.Node) Metrics {
	if n == nil || n.Type != html.ElementNode {
		return Metrics{}
	}

	style := parseInlineStyle(n)

	if isHidden(n, style) {
		return Metrics{Top: l.tops[n]}
	}

	m := Metrics{
		Top:            l.tops[n],
		Color:          style["color"],
		Background:     style["background-color"],
		TextDecoration: style["text-decoration"],
	}

	tag := n.Data
	box := defaultBoxes[tag]
	m.Width, m.Height = box[0], box[1]
	if m.Width == 0 {
		m.Width, m.Height = 200, 20
	}

	if w, ok := sizeValue(n, style, "width"); ok {
		m.Width = w
	}
	if h, ok := sizeValue(n, style, "height"); ok {
		m.Height = h
	}

	m.FontSize = defaultFontSizes[tag]
	if m.FontSize == 0 {
		m.FontSize = 16
	}
	if fs, ok := cssPixels(style["font-size"]); ok {
		m.FontSize = fs
	}
	if bg := style["background"]; m.Background == "" && bg != "" {
		m.Background = bg
	}

	// Renderer-baked attributes win over everything above.
	if v, ok := nodeAttr(n, attrTop); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.Top = f
		}
	}
	if v, ok := nodeAttr(n, attrWidth); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.Width = f
		}
	}
	if v, ok := nodeAttr(n, attrHeight); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.Height = f
		}
	}
	if v, ok := nodeAttr(n, attrFontSize); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.FontSize = f
		}
	}
	if v, ok := nodeAttr(n, attrColor); ok {
		m.Color = v
	}
	if v, ok := nodeAttr(n, attrBg); ok {
		m.Background = v
	}
	if v, ok := nodeAttr(n, attrDeco); ok {
		m.TextDecoration = v
	}

	return m
}

func isHidden(n *html.Node, style map[string]string) bool {
	if _, ok := nodeAttr(n, "hidden"); ok {
		return true
	}
	if style["display"] == "none" || style["visibility"] == "hidden" {
		return true
	}
	if typ, _ := nodeAttr(n, "type"); n.Data == "input" && typ == "hidden" {
		return true
	}
	return false
}

// sizeValue resolves a dimension from the width/height attribute or inline
// style, in that order.
func sizeValue(n *html.Node, style map[string]string, dim string) (float64, bool) {
	if v, ok := nodeAttr(n, dim); ok {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			return f, true
		}
	}
	if f, ok := cssPixels(style[dim]); ok {
		return f, true
	}
	return 0, false
}

// cssPixels parses a CSS length, accepting bare numbers and px units only.
func cssPixels(v string) (float64, bool) {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInlineStyle splits a style attribute into declarations.
func parseInlineStyle(n *html.Node) map[string]string {
	raw, ok := nodeAttr(n, "style")
	if !ok || raw == "" {
		return nil
	}

	style := make(map[string]string)
	for _, decl := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		style[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return style
}
