package currency

import (
	"math"
	"testing"
)

func TestFormatParseRoundTrip(t *testing.T) {
	values := []float64{1, 9.99, 49.5, 1299, 99999}

	for _, code := range Codes() {
		info := Lookup(code)
		for _, v := range values {
			if v > info.MaxPrice {
				continue
			}
			want := v
			if info.ZeroDecimal() {
				want = math.Round(v)
			}

			formatted := Format(v, code)
			got := Parse(formatted, code)

			if math.Abs(got-want) > 0.001 {
				t.Errorf("%s: Parse(Format(%v)) = %v (formatted %q), want %v", code, v, got, formatted, want)
			}
		}
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	if got := Parse("$250000.00", USD); got != 0 {
		t.Errorf("expected price above MaxPrice to be rejected, got %v", got)
	}
	if got := Parse("$0.00", USD); got != 0 {
		t.Errorf("expected zero price to be rejected, got %v", got)
	}
	if got := Parse("no digits here", USD); got != 0 {
		t.Errorf("expected unparsable string to return 0, got %v", got)
	}
}

func TestParseSeparatorConventions(t *testing.T) {
	cases := []struct {
		text string
		code Code
		want float64
	}{
		{"$1,299.00", USD, 1299.00},
		{"€1.299,00", EUR, 1299.00},
		{"£49.99", GBP, 49.99},
		{"¥12,800", JPY, 12800},
		{"₩1,290,000", KRW, 1290000},
		{"CHF 1 299.00", CHF, 1299.00},
		{"1 299,50 kr", SEK, 1299.50},
		{"R$1.299,90", BRL, 1299.90},
		{"₫299.000", VND, 299000},
	}

	for _, c := range cases {
		if got := Parse(c.text, c.code); math.Abs(got-c.want) > 0.001 {
			t.Errorf("Parse(%q, %s) = %v, want %v", c.text, c.code, got, c.want)
		}
	}
}

// A stray decimal-like suffix on a zero-decimal currency is truncated rather
// than misread as part of the integer value.
func TestParseZeroDecimalTruncatesSubunits(t *testing.T) {
	if got := Parse("299.000,50 Rp", IDR); got != 299000 {
		t.Errorf("Parse IDR with stray subunit = %v, want 299000", got)
	}
	if got := Parse("¥1,280.00", JPY); got != 1280 {
		t.Errorf("Parse JPY with stray subunit = %v, want 1280", got)
	}
}

func TestDetectEnumerationOrder(t *testing.T) {
	cases := []struct {
		text string
		want Code
	}{
		{"C$59.99", CAD},
		{"A$120.00", AUD},
		{"R$1.299,90", BRL},
		{"$59.99", USD},
		{"US$59.99", USD},
		{"¥12,800", JPY},
		{"12,800円", JPY},
		{"RMB 128", CNY},
		{"₹4,999", INR},
		{"Rs. 4,999", INR},
		{"Rp 299.000", IDR},
		{"299.000,50 Rp", IDR},
		{"1 299 kr", SEK},
		{"₩59,000", KRW},
		{"299.000₫", VND},
	}

	for _, c := range cases {
		got, ok := Detect(c.text)
		if !ok {
			t.Errorf("Detect(%q): no match, want %s", c.text, c.want)
			continue
		}
		if got != c.want {
			t.Errorf("Detect(%q) = %s, want %s", c.text, got, c.want)
		}
	}

	if _, ok := Detect("hello world"); ok {
		t.Errorf("expected no detection for plain text")
	}
}

func TestFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want Code
		ok   bool
	}{
		{"https://shop.example.com/jp/products/123", JPY, true},
		{"https://shop.example.com/id/p/shirt", IDR, true},
		{"https://shop.example.com/en-gb/p/shirt", GBP, true},
		{"https://shop.example.de/produkte/123", EUR, true},
		{"https://shop.example.com/products/123", "", false},
	}

	for _, c := range cases {
		got, ok := FromURL(c.url)
		if ok != c.ok || got != c.want {
			t.Errorf("FromURL(%q) = %q, %v; want %q, %v", c.url, got, ok, c.want, c.ok)
		}
	}
}

func TestResolveFallsBackToUSD(t *testing.T) {
	if got := Resolve("1299.00", "https://shop.example.com/products/1"); got != USD {
		t.Errorf("Resolve fallback = %s, want USD", got)
	}
	if got := Resolve("299.000", "https://shop.example.com/id/p/1"); got != IDR {
		t.Errorf("Resolve with URL hint = %s, want IDR", got)
	}
	if got := Resolve("€49,90", "https://shop.example.com/p/1"); got != EUR {
		t.Errorf("Resolve with symbol = %s, want EUR", got)
	}
}
