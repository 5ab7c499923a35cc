package mapping

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"databridgeapi/models"
)

func TestTransformRow(t *testing.T) {
	fields := []models.FieldMapping{
		{SourceColumn: "KUNNR", TargetField: "code", TransformKind: "trim"},
		{SourceColumn: "NAME1", TargetField: "name", TransformKind: "uppercase"},
	}
	row := map[string]interface{}{"KUNNR": " 1001 ", "NAME1": "acme"}

	values, err := transformRow(fields, row)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if values["code"] != "1001" || values["name"] != "ACME" {
		t.Errorf("Unexpected values: %v", values)
	}
}

func TestTransformRow_ErrorNamesField(t *testing.T) {
	fields := []models.FieldMapping{
		{SourceColumn: "D", TargetField: "period", TransformKind: "format_date"},
	}
	_, err := transformRow(fields, map[string]interface{}{"D": "garbage"})
	if err == nil {
		t.Fatalf("Expected error")
	}
	if got := err.Error(); !strings.Contains(got, "period") {
		t.Errorf("Error should name the target field, got %q", got)
	}
}

func TestSourceColumns_Deduplicates(t *testing.T) {
	fields := []models.FieldMapping{
		{SourceColumn: "a", TargetField: "code"},
		{SourceColumn: "a", TargetField: "attr:x"},
		{SourceColumn: "b", TargetField: "name"},
	}
	if got := sourceColumns(fields); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", got)
	}
}

func TestResult_ErrorDetailCap(t *testing.T) {
	r := &Result{}
	for i := 0; i < MaxErrorDetails+20; i++ {
		r.addError(i, fmt.Errorf("boom"))
	}
	if r.Errors != MaxErrorDetails+20 {
		t.Errorf("Expected %d errors counted, got %d", MaxErrorDetails+20, r.Errors)
	}
	if len(r.ErrorDetails) != MaxErrorDetails {
		t.Errorf("Expected %d details kept, got %d", MaxErrorDetails, len(r.ErrorDetails))
	}
}
