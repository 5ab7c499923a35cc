package transfer

import (
	"reflect"
	"testing"

	"databridgeapi/models"
)

func TestBuildColumnPlan_DefaultsAndRenames(t *testing.T) {
	whCols := []models.WarehouseColumn{
		{TargetName: "customer_id", SourceName: "id"},
		{TargetName: "customer_name"},
		{TargetName: "region", SourceName: "area"},
	}
	colMap := map[string]string{"area_code": "region"}

	plan := buildColumnPlan(whCols, colMap)
	want := []columnPlan{
		{source: "id", target: "customer_id"},
		{source: "customer_name", target: "customer_name"},
		{source: "area_code", target: "region"}, // explicit rename beats recorded source
	}
	if !reflect.DeepEqual(plan, want) {
		t.Errorf("Expected %v, got %v", want, plan)
	}
}

func TestReadColumns_Deduplicates(t *testing.T) {
	plan := []columnPlan{
		{source: "a", target: "x"},
		{source: "a", target: "y"},
		{source: "b", target: "z"},
	}
	got := readColumns(plan)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", got)
	}
}

func TestParseColumnMap(t *testing.T) {
	m, err := parseColumnMap(`{"id":"customer_id"}`)
	if err != nil || m["id"] != "customer_id" {
		t.Errorf("Expected parsed map, got %v, err %v", m, err)
	}
	if m, err := parseColumnMap(""); err != nil || m != nil {
		t.Errorf("Expected nil map for empty input, got %v, err %v", m, err)
	}
	if _, err := parseColumnMap("{broken"); err == nil {
		t.Errorf("Expected error for malformed map")
	}
}

func TestCompareCursor(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "1", -1},
		{"1", "", 1},
		{"2", "10", -1},  // numeric, not lexicographic
		{"10", "2", 1},
		{"9.5", "9.25", 1},
		{"2024-01-02", "2024-01-01", 1},
		{"2024-01-01 10:00:00", "2024-01-01 09:59:59", 1},
		{"abc", "abd", -1},
		{"5", "5", 0},
	}
	for _, c := range cases {
		if got := CompareCursor(c.a, c.b); got != c.want {
			t.Errorf("CompareCursor(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
