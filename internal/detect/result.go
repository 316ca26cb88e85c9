// Package detect implements the heuristic product-detection engine: a
// layered, scored, best-effort extraction pipeline over a page snapshot.
// Structured product markup is trusted first; otherwise the engine locates
// the main product area and runs independent field extractors against it.
// The engine is total: it never returns an error, and extraction failures
// degrade to sentinel values the caller is expected to check.
package detect

import "github.com/shopmirror/shopmirror/internal/currency"

// Method tags which strategy produced a result.
type Method string

const (
	MethodStructured Method = "structured-data"
	MethodSemantic   Method = "focused-semantic"
)

// Sentinel values crossing the engine boundary on a soft miss.
const (
	NameNotFound  = "Product Name Not Found"
	PriceNotFound = "Price not found"
)

// SaleInfo accumulates the independent signals suggesting a displayed price
// is a markdown. Reasons are not mutually exclusive and carry no order.
type SaleInfo struct {
	IsSale     bool     `json:"is_sale"`
	Reasons    []string `json:"reasons,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Result is the composite outcome of one detection run.
type Result struct {
	Name         string        `json:"name"`
	Price        string        `json:"price"`
	NumericPrice float64       `json:"numeric_price"`
	Currency     currency.Code `json:"currency"`
	Images       []string      `json:"images,omitempty"`
	Sale         *SaleInfo     `json:"sale_info,omitempty"`
	Confidence   float64       `json:"confidence"`
	Method       Method        `json:"method"`
}

// Found reports whether both name and price survived detection. Callers that
// need a saveable product treat anything less as a hard failure.
func (r Result) Found() bool {
	return r.Name != "" && r.Name != NameNotFound &&
		r.Price != "" && r.Price != PriceNotFound
}
