package countries

import (
	"errors"
	"testing"
)

// ============================================================================
// Country Record Tests
// ============================================================================

func validTree() AttributeTree {
	return AttributeTree{
		"name": AttributeTree{
			"common":   "Testland",
			"official": "Republic of Testland",
			"native": AttributeTree{
				"eng": AttributeTree{"common": "Testland", "official": "Republic of Testland"},
			},
		},
		"iso_3166_1_alpha2":  "TL",
		"iso_3166_1_alpha3":  "TLD",
		"iso_3166_1_numeric": "999",
	}
}

func TestNewCountry(t *testing.T) {
	c, err := NewCountry(validTree())
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "Testland" || c.Alpha2() != "TL" || c.Alpha3() != "TLD" {
		t.Errorf("accessors: %s/%s/%s", c.Name(), c.Alpha2(), c.Alpha3())
	}
	if c.NativeName() != "Testland" {
		t.Errorf("native name = %q", c.NativeName())
	}
}

func TestNewCountry_ValidationFailures(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(AttributeTree) AttributeTree
	}{
		{"name.common", func(tr AttributeTree) AttributeTree {
			return Set(tr, "name.common", "").(AttributeTree)
		}},
		{"name.official", func(tr AttributeTree) AttributeTree {
			return Set(tr, "name.official", nil).(AttributeTree)
		}},
		{"iso_3166_1_alpha2", func(tr AttributeTree) AttributeTree {
			return Set(tr, "iso_3166_1_alpha2", "TLX").(AttributeTree)
		}},
		{"iso_3166_1_alpha3", func(tr AttributeTree) AttributeTree {
			return Set(tr, "iso_3166_1_alpha3", "TL").(AttributeTree)
		}},
		{"name.native", func(tr AttributeTree) AttributeTree {
			return Set(tr, "name.native", AttributeTree{}).(AttributeTree)
		}},
		{"name.native", func(tr AttributeTree) AttributeTree {
			// A native entry missing its official half does not count.
			return Set(tr, "name.native", AttributeTree{
				"eng": AttributeTree{"common": "Testland"},
			}).(AttributeTree)
		}},
	}
	for _, tc := range cases {
		_, err := NewCountry(tc.mutate(validTree()))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.field, err)
			continue
		}
		if ve.Field != tc.field {
			t.Errorf("field = %q, want %q", ve.Field, tc.field)
		}
	}
}

func TestCountrySetIsCopyOnWrite(t *testing.T) {
	tree := validTree()
	c, err := NewCountry(tree)
	if err != nil {
		t.Fatal(err)
	}

	c.Set("extra.note", "annotated")
	if got := c.Resolve("extra.note", nil); got != "annotated" {
		t.Fatalf("record read-back = %v", got)
	}
	// The caller's original tree is untouched.
	if got := Resolve(tree, "extra.note", nil); got != nil {
		t.Fatalf("source tree mutated: %v", got)
	}
}

func TestFirstKeyLexicographicFallback(t *testing.T) {
	// Records built from parsed trees have no document order; the "first
	// available" fallback degrades to lexicographic key order.
	tree := validTree()
	tree["currency"] = AttributeTree{
		"ZAR": AttributeTree{"name": "Rand", "symbol": "R"},
		"AUD": AttributeTree{"name": "Australian dollar", "symbol": "$"},
	}
	c, err := NewCountry(tree)
	if err != nil {
		t.Fatal(err)
	}
	cur, ok := c.Currency()
	if !ok || cur.Code != "AUD" {
		t.Fatalf("currency = %+v, want lexicographically first AUD", cur)
	}
	cur, ok = c.Currency("ZAR")
	if !ok || cur.Code != "ZAR" || cur.Name != "Rand" {
		t.Fatalf("explicit currency = %+v", cur)
	}
}

func TestOptionalAccessorsZeroValues(t *testing.T) {
	c, err := NewCountry(validTree())
	if err != nil {
		t.Fatal(err)
	}
	if c.Region() != "" || c.Subregion() != "" || c.Area() != 0 {
		t.Error("absent geo fields must resolve to zero values")
	}
	if _, ok := c.Bounds(); ok {
		t.Error("Bounds without coordinates must report ok=false")
	}
	if _, ok := c.Currency(); ok {
		t.Error("Currency without a block must report ok=false")
	}
	if c.CallingCode() != "" || len(c.Borders()) != 0 {
		t.Error("absent lists must resolve empty")
	}
}

func TestCityValidation(t *testing.T) {
	raw := []byte(`[{"name": "", "state_code": "XX", "state_name": "Nowhere",
		"geo": {"latitude": 0, "longitude": 0}}]`)
	_, err := hydrateCityTable("cities/xx.json", raw)
	var malformed *MalformedDataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedDataError, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected wrapped ValidationError on name, got %v", err)
	}

	raw = []byte(`[{"name": "Pole", "state_code": "XX", "state_name": "Nowhere",
		"geo": {"latitude": 91, "longitude": 0}}]`)
	if _, err := hydrateCityTable("cities/xx.json", raw); err == nil {
		t.Fatal("out-of-range latitude accepted")
	}
}
