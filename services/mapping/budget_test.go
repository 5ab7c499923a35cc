package mapping

import "testing"

func TestBuildDimensionKey_OrderIndependent(t *testing.T) {
	a := BuildDimensionKey(map[uint]uint{3: 30, 1: 10, 2: 20})
	b := BuildDimensionKey(map[uint]uint{2: 20, 3: 30, 1: 10})
	if a != b {
		t.Errorf("Keys differ for the same dimension set: %q vs %q", a, b)
	}
	if a != "1=10|2=20|3=30" {
		t.Errorf("Unexpected canonical key: %q", a)
	}
}

func TestBuildDimensionKey_DifferentSetsDiffer(t *testing.T) {
	a := BuildDimensionKey(map[uint]uint{1: 10, 2: 20})
	b := BuildDimensionKey(map[uint]uint{1: 10, 2: 21})
	if a == b {
		t.Errorf("Different record sets produced the same key: %q", a)
	}
}

func TestParseDimensionTarget(t *testing.T) {
	if id, ok := parseDimensionTarget("dim:7"); !ok || id != 7 {
		t.Errorf("Expected (7, true), got (%d, %v)", id, ok)
	}
	for _, bad := range []string{"dim:", "dim:x", "measure:amount", "code"} {
		if _, ok := parseDimensionTarget(bad); ok {
			t.Errorf("Expected %q rejected", bad)
		}
	}
}

func TestParseMeasureTarget(t *testing.T) {
	if code, ok := parseMeasureTarget("measure:amount"); !ok || code != "amount" {
		t.Errorf("Expected (amount, true), got (%q, %v)", code, ok)
	}
	if _, ok := parseMeasureTarget("measure:"); ok {
		t.Errorf("Expected empty measure code rejected")
	}
	if _, ok := parseMeasureTarget("dim:1"); ok {
		t.Errorf("Expected dimension target rejected")
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"100":     100,
		"1,5":     1.5,
		"2.75":    2.75,
		" 10,25 ": 10.25,
	}
	for in, want := range cases {
		got, err := parseAmount(in)
		if err != nil || got != want {
			t.Errorf("parseAmount(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := parseAmount("abc"); err == nil {
		t.Errorf("Expected error for non-numeric amount")
	}
}
