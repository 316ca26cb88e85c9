package detect

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
	"golang.org/x/net/html"
)

// priceHit is the winning price candidate with enough context for sale
// detection and the composite result.
type priceHit struct {
	Display    string
	Value      float64
	Code       currency.Code
	Confidence float64
	Element    *goquery.Selection
}

// extractPrice scores price candidates within the located area and picks a
// winner. Candidates come from price-ish selectors plus all span/div
// elements whose text is price-only, which catches sites with obfuscated
// class names without matching prose like "Shop $50 and under".
func extractPrice(p *dom.Page, area *goquery.Selection, logger *slog.Logger) (priceHit, bool) {
	seen := make(map[*html.Node]bool)
	var best *priceHit
	var bestScore float64

	consider := func(el *goquery.Selection, generic bool) {
		if len(el.Nodes) == 0 || seen[el.Nodes[0]] {
			return
		}
		seen[el.Nodes[0]] = true

		text := dom.Text(el)
		if text == "" || len(text) > priceMaxTextLen {
			return
		}
		if generic && !priceOnly(text) {
			return
		}

		strong := hasStrongPriceIndicator(el)
		if !strong && !p.Visible(el) {
			return
		}

		code, matched := currency.Detect(text)
		if !matched {
			// Price-classed elements sometimes print a bare amount; fall
			// back to URL locale inference for those only.
			if generic || !decimalRe.MatchString(text) {
				return
			}
			code = currency.Resolve(text, p.URL)
		}

		value := currency.Parse(text, code)
		if value == 0 {
			return
		}

		m := p.Metrics(el)
		if m.Width == 0 || m.Height == 0 {
			// Hidden wrapper with a strong indicator: borrow the box of a
			// visible descendant, a common aria-hidden pattern.
			if vm, ok := visibleDescendantMetrics(p, el); ok {
				m.Top, m.Width, m.Height = vm.Top, vm.Width, vm.Height
			}
		}

		fontSize := m.FontSize
		if child := el.Find(`[class*="price-text"], span:last-child, div:last-child`).First(); len(child.Nodes) > 0 {
			if cf := p.Metrics(child).FontSize; cf > fontSize {
				fontSize = cf
			}
		}

		score := (fontSize / priceFontDivisor) * priceFontWeight
		if m.Top < priceTopThreshold {
			score += priceTopBonus
		} else {
			score += priceTopPenalty
		}
		if strings.Contains(dom.ClassAndID(el), "price") {
			score += priceClassBonus
		}
		if strong {
			score += priceStrongAttrBonus
		}

		display := currency.FindDisplay(text)
		if display == "" {
			display = currency.Format(value, code)
		}

		// Strictly greater keeps the first-seen candidate on ties.
		if best == nil || score > bestScore {
			best = &priceHit{
				Display: display,
				Value:   value,
				Code:    code,
				Element: el,
			}
			bestScore = score
		}
	}

	area.Find(`[class*="price"], [id*="price"], [data-price], [data-testid*="price"]`).
		Each(func(_ int, el *goquery.Selection) { consider(el, false) })

	area.Find("span, div").
		Each(func(_ int, el *goquery.Selection) { consider(el, true) })

	if best == nil {
		logger.Debug("no price candidate qualified")
		return priceHit{}, false
	}

	best.Confidence = bestScore / priceConfidenceScale
	if best.Confidence > 1 {
		best.Confidence = 1
	}

	logger.Debug("price chosen", "price", best.Display, "score", bestScore)
	return *best, true
}

// hasStrongPriceIndicator marks elements that are unambiguously prices by
// attribute even when rendered invisible themselves.
func hasStrongPriceIndicator(el *goquery.Selection) bool {
	if testID, ok := el.Attr("data-testid"); ok && strings.Contains(strings.ToLower(testID), "price") {
		return true
	}
	if _, ok := el.Attr("data-price"); ok {
		return true
	}
	class, _ := el.Attr("class")
	return strings.Contains(strings.ToLower(class), "product-price")
}

func visibleDescendantMetrics(p *dom.Page, el *goquery.Selection) (dom.Metrics, bool) {
	var m dom.Metrics
	found := false
	el.Find(`[aria-hidden="true"], span, div`).EachWithBreak(func(_ int, child *goquery.Selection) bool {
		cm := p.Metrics(child)
		if cm.Width > 0 {
			m = cm
			found = true
			return false
		}
		return true
	})
	return m, found
}
