package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
)

// sqldbAdapter reads from an analytical SQL database over database/sql. The
// connection's Driver selects the registered driver; "pgx" and "mysql" ship
// with the binary.
type sqldbAdapter struct {
	conn  *models.Connection
	query *models.SourceQuery
}

func newSQLDBAdapter(conn *models.Connection, query *models.SourceQuery) *sqldbAdapter {
	return &sqldbAdapter{conn: conn, query: query}
}

func (a *sqldbAdapter) driverName() string {
	if a.conn.Driver == "" {
		return "pgx"
	}
	return a.conn.Driver
}

func (a *sqldbAdapter) dsn() string {
	switch a.driverName() {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			a.conn.Username, a.conn.Password, a.conn.Host, a.conn.Port, a.conn.Database)
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			a.conn.Username, a.conn.Password, a.conn.Host, a.conn.Port, a.conn.Database)
	}
}

func (a *sqldbAdapter) open() (*sql.DB, error) {
	db, err := sql.Open(a.driverName(), a.dsn())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	return db, nil
}

func (a *sqldbAdapter) TestConnection() TestResult {
	db, err := a.open()
	if err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.Cfg.HTTPTimeout)
	defer cancel()
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return TestResult{Success: false, Message: err.Error()}
	}
	return TestResult{Success: true, Message: "database reachable"}
}

func (a *sqldbAdapter) FetchSample(limit int) (*FetchResult, error) {
	return a.runQuery(limit)
}

func (a *sqldbAdapter) FetchAll() (*FetchResult, error) {
	return a.runQuery(a.query.RowLimit)
}

// runQuery executes the query's SQL text, wrapping it in a limiting subquery
// when a row cap applies. The SQL is user-authored by an administrator against
// their own analytical database; it is not escaped here.
func (a *sqldbAdapter) runQuery(maxRows int) (*FetchResult, error) {
	if a.query == nil || strings.TrimSpace(a.query.SQLText) == "" {
		return nil, fmt.Errorf("query has no SQL text")
	}
	db, err := a.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	sqlText := strings.TrimRight(strings.TrimSpace(a.query.SQLText), ";")
	if maxRows > 0 {
		sqlText = fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", sqlText, maxRows)
	}

	rows, err := db.Query(sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := &FetchResult{Columns: columns}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.Debugf("Query %s returned %d rows from %s", a.query.Code, len(result.Rows), a.conn.Code)
	return result, nil
}
