package detect

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// extractStructured scans embedded JSON-LD product markup, the highest
// confidence source. Malformed JSON in any one block is swallowed and the
// scan continues; the whole detection run is never aborted from here.
func extractStructured(p *dom.Page, logger *slog.Logger) (Result, bool) {
	var result Result
	found := false

	p.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			logger.Debug("skipping malformed ld+json block", "err", err)
			return true
		}

		for _, item := range asObjects(data) {
			r, ok := productFromItem(item)
			if ok {
				result = r
				found = true
				return false
			}
		}
		return true
	})

	return result, found
}

// productFromItem recognizes a Product-typed object bearing an offers field
// with a usable price.
func productFromItem(item map[string]any) (Result, bool) {
	if !hasProductType(item["@type"]) {
		return Result{}, false
	}

	offers := asObjects(item["offers"])
	if len(offers) == 0 {
		return Result{}, false
	}
	offer := offers[0]

	price := asFloat(offer["price"])
	if price <= 0 {
		return Result{}, false
	}

	code := currency.Code(strings.ToUpper(asString(offer["priceCurrency"])))
	if code == "" {
		code = currency.USD
	}
	code = currency.Lookup(code).Code

	name := strings.TrimSpace(asString(item["name"]))
	if name == "" {
		name = NameNotFound
	}

	result := Result{
		Name:         name,
		Price:        currency.Format(price, code),
		NumericPrice: price,
		Currency:     code,
		Confidence:   structuredConfidence,
		Method:       MethodStructured,
	}

	if img := firstString(item["image"]); img != "" {
		result.Images = []string{img}
	}

	if high := asFloat(offer["highPrice"]); high > price {
		result.Sale = &SaleInfo{
			IsSale:     true,
			Reasons:    []string{"structured-high-price"},
			Confidence: structuredConfidence,
		}
	}

	return result, true
}

func hasProductType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Product"
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// asObjects accepts a single JSON object or an array of them.
func asObjects(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat coerces JSON numbers and numeric strings; publishers use both.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// firstString takes a scalar string or the first element of a string array.
func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
