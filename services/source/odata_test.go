package source

import (
	"reflect"
	"testing"
)

func TestParseODataPage_V4Envelope(t *testing.T) {
	body := []byte(`{"@odata.context":"$metadata#Customers","value":[{"ID":1,"Name":"Acme"},{"ID":2,"Name":"Beta"}],"@odata.nextLink":"Customers?$skiptoken=2"}`)
	rows, next, err := parseODataPage(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(rows))
	}
	if next != "Customers?$skiptoken=2" {
		t.Errorf("Unexpected next link: %q", next)
	}
}

func TestParseODataPage_V2Envelope(t *testing.T) {
	body := []byte(`{"d":{"results":[{"__metadata":{"type":"X"},"ID":"1"}],"__next":"https://host/svc/Customers?$skiptoken=1"}}`)
	rows, next, err := parseODataPage(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected 1 row, got %d", len(rows))
	}
	if next == "" {
		t.Errorf("Expected a continuation link")
	}
}

func TestParseODataPage_BareArray(t *testing.T) {
	rows, next, err := parseODataPage([]byte(`[{"a":1}]`))
	if err != nil || len(rows) != 1 || next != "" {
		t.Errorf("Expected 1 row and no link, got %d rows, link %q, err %v", len(rows), next, err)
	}
}

func TestParseODataPage_Unrecognized(t *testing.T) {
	if _, _, err := parseODataPage([]byte(`{"error":{"message":"bad"}}`)); err == nil {
		t.Errorf("Expected an error for unrecognized envelope")
	}
}

func TestSortedDataKeys(t *testing.T) {
	row := map[string]interface{}{
		"Name":          "Acme",
		"ID":            1,
		"@odata.etag":   "x",
		"__metadata":    map[string]interface{}{"type": "X"},
		"NavigationSet": map[string]interface{}{"results": []interface{}{}},
	}
	got := sortedDataKeys(row)
	want := []string{"ID", "Name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
