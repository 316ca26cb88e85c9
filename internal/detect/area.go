package detect

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopmirror/shopmirror/internal/dom"
)

// locateProductArea returns the one DOM subtree most likely to hold the
// primary product. Greedy, single pass, no backtracking; ties resolve to the
// first candidate in document order. Falls back to the document body so the
// field extractors always have something to scope to.
func locateProductArea(p *dom.Page, logger *slog.Logger) *goquery.Selection {
	// Anchor on an add-to-cart control and walk up to its product container.
	if cart := findCartControl(p); cart != nil {
		container := cart.Closest(`[class*="product"]`)
		if len(container.Nodes) == 0 {
			container = cart.Closest("main")
		}
		if len(container.Nodes) == 0 {
			container = cart.Closest(`[role="main"]`)
		}
		if len(container.Nodes) == 0 {
			container = cart.Closest("article")
		}
		if len(container.Nodes) > 0 && !isRelatedArea(container) {
			logger.Debug("product area anchored on cart control")
			return container
		}
	}

	// Scored candidate search over plausible containers.
	var best *goquery.Selection
	var bestScore float64

	containers := p.Doc.Find(`main, [role="main"], article, section, div[class*="product"], div[id*="product"]`)
	containers.Each(func(_ int, c *goquery.Selection) {
		if isRelatedArea(c) {
			return
		}

		m := p.Metrics(c)
		if m.Top > viewportHeight*areaFoldFactor {
			return
		}
		if m.Width < areaMinSide || m.Height < areaMinSide {
			return
		}
		if !hasQualifyingImage(p, c) {
			return
		}

		text := dom.Text(c)
		if !containsPriceText(text) {
			return
		}

		score := m.Area() / (m.Top + areaOffsetDamping)
		if hasCartAffordance(c, text) {
			score += areaCartBonus
		}

		// Strictly greater keeps the first-seen candidate on ties.
		if best == nil || score > bestScore {
			best = c
			bestScore = score
		}
	})

	if best != nil {
		logger.Debug("product area chosen by score", "score", bestScore)
		return best
	}

	logger.Debug("no product area candidate qualified, using body")
	return p.Body()
}

// hasQualifyingImage requires at least one image large enough to be product
// photography rather than an icon.
func hasQualifyingImage(p *dom.Page, c *goquery.Selection) bool {
	qualified := false
	c.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		m := p.Metrics(img)
		if m.Width > areaMinImageSide && m.Height > areaMinImageSide {
			qualified = true
			return false
		}
		return true
	})
	return qualified
}

// hasCartAffordance reports whether the container textually offers an
// add-to-cart action alongside an actual button.
func hasCartAffordance(c *goquery.Selection, text string) bool {
	if len(c.Find("button").Nodes) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(text), "add to")
}
