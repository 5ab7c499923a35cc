package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"databridgeapi/config"

	"gorm.io/gorm"
)

// DynTableRepository executes operations against runtime-created staging and
// warehouse tables. Identifiers must already be sanitized by the caller; they
// are backtick-quoted here as a second line of defense.
type DynTableRepository interface {
	Exec(tx *gorm.DB, sql string) error
	TableExists(tx *gorm.DB, table string) (bool, error)
	DropTable(tx *gorm.DB, table string) error
	TruncateTable(tx *gorm.DB, table string) error
	InsertBatch(tx *gorm.DB, table string, columns []string, rows [][]interface{}) error
	Count(tx *gorm.DB, table string) (int64, error)
	SelectPage(tx *gorm.DB, table string, columns []string, page, pageSize int) ([]map[string]interface{}, error)
	SelectBatch(tx *gorm.DB, table string, columns []string, offset, limit int) ([]map[string]interface{}, error)
	SelectAfterCursor(tx *gorm.DB, table string, columns []string, cursorColumn, cursorValue string) ([]map[string]interface{}, error)
	MaxLoadedAt(tx *gorm.DB, table string) (*time.Time, error)
}

type dynTableRepository struct {
	db *gorm.DB
}

// NewDynTableRepository creates a new dynamic table repository instance.
func NewDynTableRepository() DynTableRepository {
	return &dynTableRepository{
		db: config.DB,
	}
}

// QuoteIdent backtick-quotes a MySQL identifier.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}

func (r *dynTableRepository) Exec(tx *gorm.DB, sql string) error {
	db := orDefault(tx, r.db)
	return db.Exec(sql).Error
}

func (r *dynTableRepository) TableExists(tx *gorm.DB, table string) (bool, error) {
	db := orDefault(tx, r.db)
	var count int64
	err := db.Raw(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?",
		table,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *dynTableRepository) DropTable(tx *gorm.DB, table string) error {
	db := orDefault(tx, r.db)
	return db.Exec("DROP TABLE IF EXISTS " + QuoteIdent(table)).Error
}

func (r *dynTableRepository) TruncateTable(tx *gorm.DB, table string) error {
	db := orDefault(tx, r.db)
	return db.Exec("TRUNCATE TABLE " + QuoteIdent(table)).Error
}

// InsertBatch inserts rows as one multi-row INSERT statement. Callers chunk
// rows to the configured batch size before calling.
func (r *dynTableRepository) InsertBatch(tx *gorm.DB, table string, columns []string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	db := orDefault(tx, r.db)

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
	}
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(QuoteIdent(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(rowPlaceholder)
		args = append(args, row...)
	}
	return db.Exec(sb.String(), args...).Error
}

func (r *dynTableRepository) Count(tx *gorm.DB, table string) (int64, error) {
	db := orDefault(tx, r.db)
	var count int64
	if err := db.Table(table).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *dynTableRepository) SelectPage(tx *gorm.DB, table string, columns []string, page, pageSize int) ([]map[string]interface{}, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	return r.SelectBatch(tx, table, columns, (page-1)*pageSize, pageSize)
}

// SelectBatch reads a window of rows ordered by the engine-owned row id, so
// repeated windows never skip or repeat rows within one run.
func (r *dynTableRepository) SelectBatch(tx *gorm.DB, table string, columns []string, offset, limit int) ([]map[string]interface{}, error) {
	db := orDefault(tx, r.db)
	var rows []map[string]interface{}
	q := db.Table(table).Select(selectList(columns)).Order("`_row_id`").Offset(offset).Limit(limit)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dynTableRepository) SelectAfterCursor(tx *gorm.DB, table string, columns []string, cursorColumn, cursorValue string) ([]map[string]interface{}, error) {
	db := orDefault(tx, r.db)
	var rows []map[string]interface{}
	q := db.Table(table).Select(selectList(columns)).Order("`_row_id`")
	if cursorValue != "" {
		q = q.Where(QuoteIdent(cursorColumn)+" > ?", cursorValue)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dynTableRepository) MaxLoadedAt(tx *gorm.DB, table string) (*time.Time, error) {
	db := orDefault(tx, r.db)
	var last sql.NullTime
	if err := db.Table(table).Select("MAX(`_loaded_at`)").Scan(&last).Error; err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func selectList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
