package source

import (
	"testing"

	"databridgeapi/models"
)

func delimitedAdapter(t *testing.T, fileName string, data []byte, cfg string) *fileAdapter {
	t.Helper()
	a, err := newFileAdapter(
		&models.Connection{Kind: models.ConnectionKindFile},
		&models.SourceQuery{Code: "Q1", FileName: fileName, FileData: data, FileConfig: cfg},
	)
	if err != nil {
		t.Fatalf("Adapter construction failed: %v", err)
	}
	return a
}

func TestFileAdapter_CSVWithHeader(t *testing.T) {
	data := []byte("ID;NAME\n1;Acme\n2;Beta\n")
	a := delimitedAdapter(t, "customers.csv", data, `{"has_header":true}`)

	res, err := a.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(res.Rows))
	}
	if len(res.Columns) != 2 || res.Columns[0] != "ID" || res.Columns[1] != "NAME" {
		t.Errorf("Unexpected columns: %v", res.Columns)
	}
	if res.Rows[0]["NAME"] != "Acme" {
		t.Errorf("Unexpected row value: %v", res.Rows[0])
	}
}

func TestFileAdapter_NoHeaderGeneratesNames(t *testing.T) {
	a := delimitedAdapter(t, "data.txt", []byte("1,Acme\n2,Beta\n"), `{"has_header":false}`)

	res, err := a.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if res.Columns[0] != "column_1" || res.Columns[1] != "column_2" {
		t.Errorf("Unexpected generated columns: %v", res.Columns)
	}
}

func TestFileAdapter_ShortRecordLeavesColumnAbsent(t *testing.T) {
	a := delimitedAdapter(t, "x.csv", []byte("A,B\n1,2\n3\n"), `{"has_header":true}`)

	res, err := a.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if _, ok := res.Rows[1]["B"]; ok {
		t.Errorf("Expected column B absent in short record, got %v", res.Rows[1])
	}
}

func TestFileAdapter_SampleLimit(t *testing.T) {
	a := delimitedAdapter(t, "x.csv", []byte("A\n1\n2\n3\n4\n"), `{"has_header":true}`)

	res, err := a.FetchSample(2)
	if err != nil {
		t.Fatalf("FetchSample failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(res.Rows))
	}
}

func TestFileAdapter_UnknownExtensionParsesAsDelimited(t *testing.T) {
	a := delimitedAdapter(t, "export.dat", []byte("id,name\n1,Acme\n2,Beta\n"), `{"has_header":true}`)

	res, err := a.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(res.Rows))
	}
	if res.Rows[0]["name"] != "Acme" {
		t.Errorf("Unexpected row value: %v", res.Rows[0])
	}
}

func TestFileAdapter_TestConnectionWithoutUpload(t *testing.T) {
	a := delimitedAdapter(t, "x.csv", nil, "")
	if res := a.TestConnection(); res.Success {
		t.Errorf("Expected failure without uploaded file")
	}
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]string{
		"a;b;c\n1;2;3":   ";",
		"a,b,c\n1,2,3":   ",",
		"a\tb\tc":        "\t",
		"a|b|c":          "|",
		"single_column":  ",",
		"a,b;c;d\n1;2;3": ";",
	}
	for in, want := range cases {
		if got := sniffDelimiter(in); got != want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}
