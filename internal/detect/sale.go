package detect

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// saleClassPatterns are class-name substrings retailers use on marked-down
// prices.
var saleClassPatterns = []string{
	"sale", "promo", "discount", "promotional", "markdown",
	"on-sale", "salecolor", "sale-price", "current-sale",
}

var percentagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`-\d+%`),
	regexp.MustCompile(`(?i)\d+%\s*off`),
	regexp.MustCompile(`(?i)\(\d+%\s*Off\)`),
}

// saleCheck inspects the winning price element and its enclosing container
// for one class of markdown evidence, returning zero or more reasons.
type saleCheck func(p *dom.Page, priceEl, container *goquery.Selection) []string

func saleChecks() []saleCheck {
	return []saleCheck{
		checkSaleColors,
		checkSaleClass,
		checkSaleTestID,
		checkSaleTag,
		checkStrikethrough,
		checkLineThroughStyle,
		checkMultiplePrices,
		checkPercentageDiscount,
		checkSaleText,
	}
}

// detectSale accumulates independent markdown signals around the winning
// price element. Reasons are order-independent and not mutually exclusive;
// confidence grows with their count. Returns nil when nothing fired.
func detectSale(p *dom.Page, priceEl *goquery.Selection, logger *slog.Logger) *SaleInfo {
	if priceEl == nil || len(priceEl.Nodes) == 0 {
		return nil
	}

	container := priceEl.Closest(`[class*="price"], [class*="product"]`)
	if len(container.Nodes) == 0 {
		container = priceEl.Parent()
	}

	var reasons []string
	for _, check := range saleChecks() {
		reasons = append(reasons, check(p, priceEl, container)...)
	}

	// Strikethrough plus an explicit percentage is the strongest compound
	// signal a page can give without saying "sale" outright.
	if containsReason(reasons, "strikethrough-present") && containsReason(reasons, "percentage-discount") {
		reasons = append(reasons, "strikethrough+percentage-discount")
	}

	if len(reasons) == 0 {
		return nil
	}

	confidence := float64(len(reasons)) * saleReasonStep
	if confidence > 1 {
		confidence = 1
	}

	logger.Debug("sale detected", "reasons", reasons)
	return &SaleInfo{IsSale: true, Reasons: reasons, Confidence: confidence}
}

func containsReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

// checkSaleColors classifies the price element's computed colors: red text
// and green-highlight backgrounds are common markdown styling.
func checkSaleColors(p *dom.Page, priceEl, _ *goquery.Selection) []string {
	var reasons []string
	m := p.Metrics(priceEl)

	if r, g, b, ok := dom.ParseRGB(m.Color); ok {
		if r > saleRedMin && float64(r) > float64(g)*saleRedDominance && float64(r) > float64(b)*saleRedDominance {
			reasons = append(reasons, "red-color")
		}
	}
	if r, g, b, ok := dom.ParseRGB(m.Background); ok {
		if g > saleGreenMin && float64(g) > float64(r)*saleGreenDominance && float64(g) > float64(b)*saleGreenDominance {
			reasons = append(reasons, "green-background")
		}
	}
	return reasons
}

// checkSaleClass looks for sale-pattern substrings in the element's own
// class, then in descendants when the element is a container.
func checkSaleClass(_ *dom.Page, priceEl, _ *goquery.Selection) []string {
	if pattern := matchSaleClass(priceEl); pattern != "" {
		return []string{"sale-class:" + pattern}
	}

	var reason string
	priceEl.Find("*").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if pattern := matchSaleClass(child); pattern != "" {
			reason = "sale-class:" + pattern
			return false
		}
		return true
	})
	if reason != "" {
		return []string{reason}
	}
	return nil
}

func matchSaleClass(el *goquery.Selection) string {
	class, _ := el.Attr("class")
	lower := strings.ToLower(class)
	for _, pattern := range saleClassPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

// checkSaleTestID looks for sale markers in test-id attributes, own and
// descendant.
func checkSaleTestID(_ *dom.Page, priceEl, _ *goquery.Selection) []string {
	var reasons []string

	testID, _ := priceEl.Attr("data-testid")
	lower := strings.ToLower(testID)
	if strings.Contains(lower, "sale") || strings.Contains(lower, "discount") || strings.Contains(lower, "markdown") {
		reasons = append(reasons, "sale-data-testid")
	}

	children := priceEl.Find(`[data-testid*="sale"], [data-testid*="discount"], [data-testid*="markdown"], [data-testid*="percent"]`)
	if len(children.Nodes) > 0 {
		reasons = append(reasons, "sale-data-testid-child")
	}
	return reasons
}

// checkSaleTag recognizes custom sale elements some storefronts emit.
func checkSaleTag(_ *dom.Page, priceEl, _ *goquery.Selection) []string {
	if goquery.NodeName(priceEl) == "sale-price" || len(priceEl.Closest("sale-price").Nodes) > 0 {
		return []string{"sale-tag"}
	}
	return nil
}

// checkStrikethrough finds strikethrough-classed or -styled siblings that
// actually contain a price.
func checkStrikethrough(_ *dom.Page, _, container *goquery.Selection) []string {
	if len(container.Nodes) == 0 {
		return nil
	}

	struck := container.Find(`del, s, [class*="strike"], [class*="old-price"], [class*="original-price"], [class*="list-price"], [data-testid*="strikethrough"]`)
	hasPrice := false
	struck.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if containsPriceText(dom.Text(el)) {
			hasPrice = true
			return false
		}
		return true
	})
	if hasPrice {
		return []string{"strikethrough-present"}
	}
	return nil
}

// checkLineThroughStyle catches computed line-through styling on any sibling
// price, independent of class naming.
func checkLineThroughStyle(p *dom.Page, priceEl, container *goquery.Selection) []string {
	if len(container.Nodes) == 0 {
		return nil
	}

	priceNode := priceEl.Nodes[0]
	var reasons []string
	container.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Nodes[0] == priceNode {
			return true
		}
		if !dom.IsLineThrough(p.Metrics(el).TextDecoration) {
			return true
		}
		if containsPriceText(dom.Text(el)) {
			reasons = []string{"line-through-price"}
			return false
		}
		return true
	})
	return reasons
}

// checkMultiplePrices: two or more displayed prices in one container usually
// means a current price beside the original one.
func checkMultiplePrices(_ *dom.Page, _, container *goquery.Selection) []string {
	if len(container.Nodes) == 0 {
		return nil
	}
	if currency.CountDisplays(dom.Text(container)) >= 2 {
		return []string{"multiple-prices"}
	}
	return nil
}

func checkPercentageDiscount(_ *dom.Page, _, container *goquery.Selection) []string {
	if len(container.Nodes) == 0 {
		return nil
	}
	text := dom.Text(container)
	for _, re := range percentagePatterns {
		if re.MatchString(text) {
			return []string{"percentage-discount"}
		}
	}
	return nil
}

// checkSaleText requires visibly rendered "sale" wording, not just a class
// name that happens to contain the word.
func checkSaleText(_ *dom.Page, _, container *goquery.Selection) []string {
	if len(container.Nodes) == 0 {
		return nil
	}

	lower := strings.ToLower(dom.Text(container))
	if !strings.Contains(lower, "sale") {
		return nil
	}

	var reasons []string
	container.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := strings.ToLower(dom.Text(el))
		if text == "sale" || strings.HasPrefix(text, "sale,") || strings.Contains(text, "on sale") {
			reasons = []string{"sale-text"}
			return false
		}
		return true
	})
	return reasons
}
