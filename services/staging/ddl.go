package staging

import (
	"fmt"
	"strings"

	"databridgeapi/models"
	"databridgeapi/repository"
)

// varcharThreshold is the sampled max length above which a string column is
// declared TEXT instead of VARCHAR.
const varcharThreshold = 1000

// defaultVarcharLength is used when no non-null sample constrained the length.
const defaultVarcharLength = 255

// SQLType maps a logical data type to its MySQL column type.
func SQLType(dataType string, maxLength int) string {
	switch dataType {
	case models.DataTypeInteger:
		return "BIGINT"
	case models.DataTypeDecimal:
		return "DECIMAL(18,4)"
	case models.DataTypeBoolean:
		return "TINYINT(1)"
	case models.DataTypeDate:
		return "DATE"
	case models.DataTypeDatetime:
		return "DATETIME"
	default:
		if maxLength > varcharThreshold {
			return "TEXT"
		}
		n := maxLength * 2
		if n < defaultVarcharLength {
			n = defaultVarcharLength
		}
		if n > varcharThreshold {
			n = varcharThreshold
		}
		return fmt.Sprintf("VARCHAR(%d)", n)
	}
}

// BuildCreateTableSQL renders the CREATE TABLE statement for a staging or
// warehouse table. Every engine-managed table carries a surrogate `_row_id`
// primary key and a `_loaded_at` load timestamp alongside the data columns.
func BuildCreateTableSQL(tableName string, columns []models.StagingColumn) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(repository.QuoteIdent(tableName))
	sb.WriteString(" (\n")
	sb.WriteString("  `_row_id` BIGINT NOT NULL AUTO_INCREMENT,\n")
	for _, col := range columns {
		sb.WriteString("  ")
		sb.WriteString(repository.QuoteIdent(col.TargetName))
		sb.WriteString(" ")
		sb.WriteString(SQLType(col.DataType, col.MaxLength))
		if !col.Nullable {
			sb.WriteString(" NOT NULL")
		}
		sb.WriteString(",\n")
	}
	sb.WriteString("  `_loaded_at` DATETIME NOT NULL,\n")
	sb.WriteString("  PRIMARY KEY (`_row_id`)\n")
	sb.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4")
	return sb.String()
}
