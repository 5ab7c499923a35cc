package inference

import (
	"strings"
	"testing"
)

func TestSanitizeColumnName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Customer Name #1", "customer_name_1"},
		{"ID", "id"},
		{"  padded  ", "padded"},
		{"123abc", "_123abc"},
		{"a--b__c", "a_b_c"},
		{"###", "column"},
		{"", "column"},
		{"Ürün Kodu", "r_n_kodu"},
	}
	for _, c := range cases {
		if got := SanitizeColumnName(c.in); got != c.want {
			t.Errorf("SanitizeColumnName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestSanitizeColumnName_FixedPoint verifies repeated invocation is stable.
func TestSanitizeColumnName_FixedPoint(t *testing.T) {
	inputs := []string{"Customer Name #1", "123abc", "already_clean", "###", "A B C"}
	for _, in := range inputs {
		once := SanitizeColumnName(in)
		twice := SanitizeColumnName(once)
		if once != twice {
			t.Errorf("Not a fixed point: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSanitizeTableName_LengthCap(t *testing.T) {
	long := strings.Repeat("ab", 100)
	got := SanitizeTableName(long)
	if len(got) > MaxTableNameLength {
		t.Errorf("Expected length <= %d, got %d", MaxTableNameLength, len(got))
	}
}

func TestStagingTableName(t *testing.T) {
	if got := StagingTableName("SAP1", "Q_CUST"); got != "stg_sap1_q_cust" {
		t.Errorf("Expected stg_sap1_q_cust, got %q", got)
	}
}

func TestWarehouseTableName(t *testing.T) {
	if got := WarehouseTableName("Sales Facts"); got != "dwh_sales_facts" {
		t.Errorf("Expected dwh_sales_facts, got %q", got)
	}
}
