package staging

import (
	"strings"
	"testing"

	"databridgeapi/models"
)

func TestSQLType(t *testing.T) {
	cases := []struct {
		dataType  string
		maxLength int
		want      string
	}{
		{models.DataTypeInteger, 0, "BIGINT"},
		{models.DataTypeDecimal, 0, "DECIMAL(18,4)"},
		{models.DataTypeBoolean, 0, "TINYINT(1)"},
		{models.DataTypeDate, 0, "DATE"},
		{models.DataTypeDatetime, 0, "DATETIME"},
		{models.DataTypeString, 10, "VARCHAR(255)"},
		{models.DataTypeString, 400, "VARCHAR(800)"},
		{models.DataTypeString, 600, "VARCHAR(1000)"},
		{models.DataTypeString, 1500, "TEXT"},
	}
	for _, c := range cases {
		if got := SQLType(c.dataType, c.maxLength); got != c.want {
			t.Errorf("SQLType(%s, %d) = %q, want %q", c.dataType, c.maxLength, got, c.want)
		}
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	cols := []models.StagingColumn{
		{TargetName: "id", DataType: models.DataTypeInteger, Nullable: false},
		{TargetName: "name", DataType: models.DataTypeString, Nullable: true, MaxLength: 30},
	}
	sql := BuildCreateTableSQL("stg_sap1_q_cust", cols)

	for _, want := range []string{
		"CREATE TABLE `stg_sap1_q_cust`",
		"`_row_id` BIGINT NOT NULL AUTO_INCREMENT",
		"`id` BIGINT NOT NULL",
		"`name` VARCHAR(255)",
		"`_loaded_at` DATETIME NOT NULL",
		"PRIMARY KEY (`_row_id`)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("DDL missing %q:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "`name` VARCHAR(255) NOT NULL") {
		t.Errorf("Nullable column must not be NOT NULL:\n%s", sql)
	}
}

func TestCoerceValue(t *testing.T) {
	cases := []struct {
		in       interface{}
		dataType string
		want     interface{}
	}{
		{"42", models.DataTypeInteger, int64(42)},
		{"1,50", models.DataTypeDecimal, 1.5},
		{"evet", models.DataTypeBoolean, 1},
		{"no", models.DataTypeBoolean, 0},
		{"31.12.2024", models.DataTypeDate, "2024-12-31"},
		{"2024-12-31T10:30:00", models.DataTypeDatetime, "2024-12-31 10:30:00"},
		{nil, models.DataTypeString, nil},
		{"", models.DataTypeInteger, nil},
		{"hello", models.DataTypeString, "hello"},
	}
	for _, c := range cases {
		if got := coerceValue(c.in, c.dataType); got != c.want {
			t.Errorf("coerceValue(%v, %s) = %v, want %v", c.in, c.dataType, got, c.want)
		}
	}
}
