package detect

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopmirror/shopmirror/internal/currency"
	"github.com/shopmirror/shopmirror/internal/dom"
	"github.com/shopmirror/shopmirror/pkg/poll"
)

func mustPage(t *testing.T, html, url string) *dom.Page {
	t.Helper()
	p, err := dom.ParseString(html, url)
	if err != nil {
		t.Fatalf("parsing page: %v", err)
	}
	return p
}

func TestDetectPage_StructuredData(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">{bad json</script>
	<script type="application/ld+json">
	{"@context":"https://schema.org","@type":"Product","name":"Fleece Half-Zip Jacket",
	 "image":["https://img.example.com/fleece.jpg"],
	 "offers":{"@type":"Offer","price":"49.90","priceCurrency":"USD","highPrice":"79.90"}}
	</script>
	</head><body><h1>Something Else Entirely</h1></body></html>`

	d := New(Config{}, nil)
	r := d.DetectPage(mustPage(t, html, "https://shop.example.com/p/1"))

	if r.Method != MethodStructured {
		t.Fatalf("expected structured method, got %s", r.Method)
	}
	if r.Name != "Fleece Half-Zip Jacket" {
		t.Errorf("expected structured name, got %q", r.Name)
	}
	if r.Price != "$49.90" {
		t.Errorf("expected price $49.90, got %q", r.Price)
	}
	if r.NumericPrice != 49.90 {
		t.Errorf("expected numeric price 49.90, got %v", r.NumericPrice)
	}
	if r.Currency != currency.USD {
		t.Errorf("expected USD, got %s", r.Currency)
	}
	if r.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %v", r.Confidence)
	}
	if len(r.Images) != 1 || r.Images[0] != "https://img.example.com/fleece.jpg" {
		t.Errorf("expected one structured image, got %v", r.Images)
	}
	if r.Sale == nil || !r.Sale.IsSale {
		t.Fatalf("expected sale from highPrice, got %+v", r.Sale)
	}
	if len(r.Sale.Reasons) != 1 || r.Sale.Reasons[0] != "structured-high-price" {
		t.Errorf("expected structured-high-price reason, got %v", r.Sale.Reasons)
	}
}

func TestDetectPage_Semantic(t *testing.T) {
	html := `<html><body>
	<header><nav>Home Shop Cart</nav></header>
	<main>
	  <div class="product-detail" id="product">
	    <img src="https://img.example.com/shot1.jpg" width="600" height="600" alt="front view">
	    <h1>Merino Wool Sweater In Navy</h1>
	    <div class="product-price">$89.50</div>
	    <button class="add-to-cart">Add to Cart</button>
	  </div>
	</main>
	</body></html>`

	d := New(Config{}, nil)
	r := d.DetectPage(mustPage(t, html, "https://shop.example.com/p/2"))

	if r.Method != MethodSemantic {
		t.Fatalf("expected semantic method, got %s", r.Method)
	}
	if r.Name != "Merino Wool Sweater In Navy" {
		t.Errorf("expected heading name, got %q", r.Name)
	}
	if r.Price != "$89.50" {
		t.Errorf("expected displayed price $89.50, got %q", r.Price)
	}
	if r.NumericPrice != 89.50 {
		t.Errorf("expected numeric price 89.50, got %v", r.NumericPrice)
	}
	if r.Currency != currency.USD {
		t.Errorf("expected USD, got %s", r.Currency)
	}
	if len(r.Images) != 1 || r.Images[0] != "https://img.example.com/shot1.jpg" {
		t.Errorf("expected product image, got %v", r.Images)
	}
	if r.Sale != nil {
		t.Errorf("expected no sale signals, got %+v", r.Sale)
	}
	if !r.Found() {
		t.Errorf("expected Found() for complete result")
	}
}

func TestDetectPage_RelatedAreaExcluded(t *testing.T) {
	// The recommendation section comes first and would score well, but its
	// class marks it as noise; the real product must win.
	html := `<html><body>
	<section class="you-might-like">
	  <h2>You May Also Like</h2>
	  <img src="https://img.example.com/rec.jpg" width="500" height="500">
	  <div class="price">$10.00</div>
	</section>
	<main>
	  <img src="https://img.example.com/main.jpg" width="400" height="400">
	  <h1>Linen Shirt Dress</h1>
	  <span class="price">$120.00</span>
	</main>
	<footer>
	  <a>About</a><a>Careers</a><a>Press</a><a>Help</a>
	  <a>Terms</a><a>Privacy</a><a>Contact</a>
	</footer>
	</body></html>`

	d := New(Config{}, nil)
	r := d.DetectPage(mustPage(t, html, "https://shop.example.com/p/3"))

	if r.Name != "Linen Shirt Dress" {
		t.Errorf("expected main-product name, got %q", r.Name)
	}
	if r.NumericPrice != 120 {
		t.Errorf("expected main-product price 120, got %v", r.NumericPrice)
	}
	for _, img := range r.Images {
		if img == "https://img.example.com/rec.jpg" {
			t.Errorf("recommendation image leaked into result: %v", r.Images)
		}
	}
}

func TestDetectPage_SaleSignals(t *testing.T) {
	html := `<html><body><main>
	<div class="product" id="p">
	  <img src="https://img.example.com/bomber.jpg" width="300" height="300">
	  <h1>Quilted Bomber Jacket</h1>
	  <div class="price-wrap">
	    <span class="price sale-price">$60.00</span>
	    <del class="old-price">$80.00</del>
	    <span class="discount-badge">-25%</span>
	  </div>
	  <button class="add-to-cart">Add to Bag</button>
	</div>
	</main></body></html>`

	d := New(Config{}, nil)
	r := d.DetectPage(mustPage(t, html, "https://shop.example.com/p/4"))

	if r.NumericPrice != 60 {
		t.Fatalf("expected current price 60, got %v", r.NumericPrice)
	}
	if r.Sale == nil || !r.Sale.IsSale {
		t.Fatalf("expected sale detection, got %+v", r.Sale)
	}

	want := []string{"strikethrough-present", "percentage-discount", "strikethrough+percentage-discount"}
	for _, reason := range want {
		if !containsReason(r.Sale.Reasons, reason) {
			t.Errorf("missing sale reason %q in %v", reason, r.Sale.Reasons)
		}
	}
	if r.Sale.Confidence != 1 {
		t.Errorf("expected capped confidence 1, got %v", r.Sale.Confidence)
	}
}

func TestDetectPage_NothingFound(t *testing.T) {
	html := `<html><body><p>Seite nicht gefunden.</p></body></html>`

	d := New(Config{}, nil)
	r := d.DetectPage(mustPage(t, html, "https://shop.example.de/p/5"))

	if r.Name != NameNotFound {
		t.Errorf("expected name sentinel, got %q", r.Name)
	}
	if r.Price != PriceNotFound {
		t.Errorf("expected price sentinel, got %q", r.Price)
	}
	if r.Currency != currency.EUR {
		t.Errorf("expected EUR from .de host, got %s", r.Currency)
	}
	if r.Confidence != 0.7 {
		t.Errorf("expected fallback confidence 0.7, got %v", r.Confidence)
	}
	if r.Found() {
		t.Errorf("Found() must be false on sentinels")
	}
}

func TestDetectPage_Deterministic(t *testing.T) {
	html := `<html><body><main>
	<div class="product">
	  <img src="https://img.example.com/a.jpg" width="300" height="300">
	  <h1>Corduroy Utility Jacket</h1>
	  <span class="price">$75.00</span>
	  <button class="add-to-cart">Add to Cart</button>
	</div>
	</main></body></html>`

	p := mustPage(t, html, "https://shop.example.com/p/6")
	d := New(Config{}, nil)

	first := d.DetectPage(p)
	second := d.DetectPage(p)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("detection not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// settlingSource reports busy for a fixed number of probes, then yields a
// page, mimicking a client-rendered storefront finishing its hydration.
type settlingSource struct {
	page      *dom.Page
	busyLeft  int
	snapshots int
}

func (s *settlingSource) Snapshot(context.Context) (*dom.Page, error) {
	s.snapshots++
	return s.page, nil
}

func (s *settlingSource) Busy(context.Context) bool {
	if s.busyLeft > 0 {
		s.busyLeft--
		return true
	}
	return false
}

func TestDetect_WaitsForSettledPage(t *testing.T) {
	html := `<html><body><main><div class="product">
	<img src="https://img.example.com/x.jpg" width="300" height="300">
	<h1>Ribbed Tank Top</h1>
	<span class="price">$25.00</span>
	<button class="add-to-cart">Add to Cart</button>
	</div></main></body></html>`

	src := &settlingSource{page: mustPage(t, html, "https://shop.example.com/p/7"), busyLeft: 2}
	d := New(Config{Wait: poll.Config{Interval: 5 * time.Millisecond, Timeout: time.Second}}, nil)

	r := d.Detect(context.Background(), src)

	if src.snapshots != 1 {
		t.Errorf("expected one snapshot after settling, got %d", src.snapshots)
	}
	if r.Name != "Ribbed Tank Top" {
		t.Errorf("expected detection after wait, got name %q", r.Name)
	}
	if src.busyLeft != 0 {
		t.Errorf("expected busy probes to be drained, %d left", src.busyLeft)
	}
}

type failingSource struct{}

func (failingSource) Snapshot(context.Context) (*dom.Page, error) {
	return nil, errors.New("tab crashed")
}

func (failingSource) Busy(context.Context) bool { return false }

func TestDetect_SnapshotFailureDegrades(t *testing.T) {
	d := New(Config{}, nil)
	r := d.Detect(context.Background(), failingSource{})

	if r.Name != NameNotFound || r.Price != PriceNotFound {
		t.Errorf("expected sentinel result on snapshot failure, got %+v", r)
	}
	if r.Found() {
		t.Errorf("Found() must be false on snapshot failure")
	}
}

func TestPageBusy(t *testing.T) {
	busy := mustPage(t, `<html><body><div class="loading-spinner"></div></body></html>`, "")
	if !PageBusy(busy) {
		t.Errorf("expected loading spinner to read as busy")
	}

	idle := mustPage(t, `<html><body><div class="product"></div></body></html>`, "")
	if PageBusy(idle) {
		t.Errorf("expected plain page to read as idle")
	}
}
