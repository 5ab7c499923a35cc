package inference

import (
	"strings"
	"unicode"
)

// MaxTableNameLength caps generated staging and warehouse table names.
const MaxTableNameLength = 100

// SanitizeColumnName converts an arbitrary source column name to a safe SQL
// identifier: lowercase, non-alphanumerics collapsed to single underscores,
// no leading/trailing underscore, a leading underscore when the name would
// start with a digit, and a placeholder when nothing survives. The function is
// a fixed point on already-sanitized names.
func SanitizeColumnName(name string) string {
	var sb strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128 {
			sb.WriteRune(r)
			prevUnderscore = false
			continue
		}
		// Fold Turkish lowercase dotless i and other letters outside ASCII into
		// underscores like any other non-identifier rune.
		if !prevUnderscore {
			sb.WriteByte('_')
			prevUnderscore = true
		}
	}
	out := strings.Trim(sb.String(), "_")
	if out == "" {
		return "column"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

// SanitizeTableName applies the column sanitizer and the table-name length cap.
func SanitizeTableName(name string) string {
	out := SanitizeColumnName(name)
	if len(out) > MaxTableNameLength {
		out = strings.Trim(out[:MaxTableNameLength], "_")
	}
	return out
}

// StagingTableName builds the deterministic staging table name from connection
// and query codes.
func StagingTableName(connectionCode, queryCode string) string {
	return SanitizeTableName("stg_" + connectionCode + "_" + queryCode)
}

// WarehouseTableName builds the physical warehouse table name from a table code.
func WarehouseTableName(code string) string {
	return SanitizeTableName("dwh_" + code)
}
