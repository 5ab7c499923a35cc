package inference

import (
	"reflect"
	"testing"

	"databridgeapi/models"
)

func rowsFrom(col string, values []interface{}) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(values))
	for _, v := range values {
		rows = append(rows, map[string]interface{}{col: v})
	}
	return rows
}

func TestDetectColumns_IntegerMajority(t *testing.T) {
	rows := rowsFrom("qty", []interface{}{"1", "2", "3", "42", "999", "100", "7", "8", "9", "10"})
	cols := DetectColumns(rows, []string{"qty"})

	if cols[0].DataType != models.DataTypeInteger {
		t.Errorf("Expected integer, got %s", cols[0].DataType)
	}
	if cols[0].Nullable {
		t.Errorf("Expected not nullable")
	}
}

func TestDetectColumns_DecimalWithCommaSeparator(t *testing.T) {
	rows := rowsFrom("amount", []interface{}{"1,50", "2,75", "3,25", "10,00", "99,99", "12,30", "4,20", "8,80", "7,77", "0,01"})
	cols := DetectColumns(rows, []string{"amount"})

	if cols[0].DataType != models.DataTypeDecimal {
		t.Errorf("Expected decimal, got %s", cols[0].DataType)
	}
}

func TestDetectColumns_SingleBadTokenRevertsToString(t *testing.T) {
	// 9 of 10 parse as integer: 90% keeps integer. 8 of 10 drops below threshold.
	borderline := rowsFrom("v", []interface{}{"1", "2", "3", "4", "5", "6", "7", "8", "9", "abc"})
	cols := DetectColumns(borderline, []string{"v"})
	if cols[0].DataType != models.DataTypeInteger {
		t.Errorf("Expected integer at exactly 90%%, got %s", cols[0].DataType)
	}

	below := rowsFrom("v", []interface{}{"1", "2", "3", "4", "5", "6", "7", "8", "abc", "def"})
	cols = DetectColumns(below, []string{"v"})
	if cols[0].DataType != models.DataTypeString {
		t.Errorf("Expected string below threshold, got %s", cols[0].DataType)
	}
}

func TestDetectColumns_BooleanTokens(t *testing.T) {
	rows := rowsFrom("flag", []interface{}{"true", "false", "yes", "no", "evet", "true", "false", "no", "yes", "true"})
	cols := DetectColumns(rows, []string{"flag"})

	if cols[0].DataType != models.DataTypeBoolean {
		t.Errorf("Expected boolean, got %s", cols[0].DataType)
	}
}

func TestDetectColumns_DateFormats(t *testing.T) {
	cases := map[string][]interface{}{
		"iso":   {"2024-01-01", "2024-02-15", "2024-03-31", "2024-04-10", "2024-05-05"},
		"dot":   {"01.01.2024", "15.02.2024", "31.03.2024", "10.04.2024", "05.05.2024"},
		"slash": {"01/01/2024", "15/02/2024", "31/03/2024", "10/04/2024", "05/05/2024"},
	}
	for name, values := range cases {
		cols := DetectColumns(rowsFrom("d", values), []string{"d"})
		if cols[0].DataType != models.DataTypeDate {
			t.Errorf("%s: expected date, got %s", name, cols[0].DataType)
		}
	}
}

func TestDetectColumns_Datetime(t *testing.T) {
	rows := rowsFrom("ts", []interface{}{
		"2024-01-01 10:30:00", "2024-02-15 08:00:00", "2024-03-31T23:59:59",
		"2024-04-10 12:00:00", "2024-05-05 06:45:30",
	})
	cols := DetectColumns(rows, []string{"ts"})

	if cols[0].DataType != models.DataTypeDatetime {
		t.Errorf("Expected datetime, got %s", cols[0].DataType)
	}
}

func TestDetectColumns_StringMaxLength(t *testing.T) {
	rows := rowsFrom("name", []interface{}{"Acme", "Beta Industries", "C"})
	cols := DetectColumns(rows, []string{"name"})

	if cols[0].DataType != models.DataTypeString {
		t.Errorf("Expected string, got %s", cols[0].DataType)
	}
	if cols[0].MaxLength != len("Beta Industries") {
		t.Errorf("Expected max length %d, got %d", len("Beta Industries"), cols[0].MaxLength)
	}
}

func TestDetectColumns_SampleValuesCapped(t *testing.T) {
	rows := rowsFrom("c", []interface{}{"a", "b", "c", "d", "e", "f", "g"})
	cols := DetectColumns(rows, []string{"c"})

	if len(cols[0].SampleValues) != 5 {
		t.Errorf("Expected 5 sample values, got %d", len(cols[0].SampleValues))
	}
}

// TestDetectColumns_Deterministic verifies byte-identical output on repeated calls.
func TestDetectColumns_Deterministic(t *testing.T) {
	rows := []map[string]interface{}{
		{"ID": "1001", "NAME": "Acme", "DATE": "2024-01-01"},
		{"ID": "1002", "NAME": "Beta", "DATE": "2024-01-02"},
		{"ID": "1003", "NAME": nil, "DATE": "bad"},
	}
	names := []string{"ID", "NAME", "DATE"}

	first := DetectColumns(rows, names)
	for i := 0; i < 10; i++ {
		again := DetectColumns(rows, names)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Detection not deterministic: run %d differs", i)
		}
	}
}

// TestDetectColumns_CustomerSample mirrors a typical web-service sample: an
// integer id column and a nullable name column.
func TestDetectColumns_CustomerSample(t *testing.T) {
	rows := []map[string]interface{}{
		{"ID": "1001", "NAME": "Acme"},
		{"ID": "1002", "NAME": "Beta"},
		{"ID": "1003", "NAME": nil},
	}
	cols := DetectColumns(rows, []string{"ID", "NAME"})

	if cols[0].SourceName != "ID" || cols[0].DataType != models.DataTypeInteger {
		t.Errorf("Expected ID integer, got %s %s", cols[0].SourceName, cols[0].DataType)
	}
	if cols[0].Nullable {
		t.Errorf("ID should not be nullable")
	}
	if cols[1].DataType != models.DataTypeString || !cols[1].Nullable {
		t.Errorf("Expected NAME nullable string, got %s nullable=%v", cols[1].DataType, cols[1].Nullable)
	}
	if cols[1].TargetName != "name" {
		t.Errorf("Expected target name 'name', got %q", cols[1].TargetName)
	}
}
