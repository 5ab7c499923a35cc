package staging

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/utils"
)

// Manager owns the staging table lifecycle: DDL generation, rebuilds and
// batched row loads.
type Manager struct {
	dynRepo   repository.DynTableRepository
	queryRepo repository.SourceQueryRepository
	colRepo   repository.StagingColumnRepository
}

// NewManager creates a new staging manager instance.
func NewManager() *Manager {
	return &Manager{
		dynRepo:   repository.NewDynTableRepository(),
		queryRepo: repository.NewSourceQueryRepository(),
		colRepo:   repository.NewStagingColumnRepository(),
	}
}

// IncludedColumns returns the query's column definitions with excluded columns
// filtered out, in stored order.
func (m *Manager) IncludedColumns(queryID uint) ([]models.StagingColumn, error) {
	cols, err := m.colRepo.GetByQueryID(nil, queryID)
	if err != nil {
		return nil, err
	}
	out := cols[:0]
	for _, c := range cols {
		if c.Included {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateOrReplaceStagingTable drops and recreates the query's staging table
// from its current column definitions. Existing staged rows are lost; callers
// invoke this only when the column set changed.
func (m *Manager) CreateOrReplaceStagingTable(query *models.SourceQuery) error {
	cols, err := m.IncludedColumns(query.ID)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return errors.New("no included columns defined; run column detection first")
	}
	if err := m.dynRepo.DropTable(nil, query.StagingTable); err != nil {
		return err
	}
	ddl := BuildCreateTableSQL(query.StagingTable, cols)
	if err := m.dynRepo.Exec(nil, ddl); err != nil {
		return err
	}
	logger.Infof("Created staging table %s with %d columns", query.StagingTable, len(cols))
	if !query.StagingCreated {
		if err := m.queryRepo.MarkStagingCreated(nil, query.ID); err != nil {
			return err
		}
		query.StagingCreated = true
	}
	return nil
}

// LoadRows truncates the staging table and inserts the fetched rows in
// batches. Values are coerced to the declared column types; a source column
// absent from a row loads as NULL and is warned about once per load.
func (m *Manager) LoadRows(query *models.SourceQuery, rows []map[string]interface{}) (int64, error) {
	cols, err := m.IncludedColumns(query.ID)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, errors.New("no included columns defined for query " + query.Code)
	}
	if err := m.dynRepo.TruncateTable(nil, query.StagingTable); err != nil {
		return 0, err
	}

	names := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		names = append(names, c.TargetName)
	}
	names = append(names, "_loaded_at")

	loadedAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	batchSize := config.Cfg.LoadBatchSize
	warned := map[string]bool{}

	var loaded int64
	batch := make([][]interface{}, 0, batchSize)
	for _, row := range rows {
		values := make([]interface{}, 0, len(names))
		for _, c := range cols {
			v, ok := row[c.SourceName]
			if !ok && !warned[c.SourceName] {
				logger.Warnf("Query %s: source column %s missing from fetched rows, loading NULL", query.Code, c.SourceName)
				warned[c.SourceName] = true
			}
			values = append(values, coerceValue(v, c.DataType))
		}
		values = append(values, loadedAt)
		batch = append(batch, values)
		if len(batch) >= batchSize {
			if err := m.dynRepo.InsertBatch(nil, query.StagingTable, names, batch); err != nil {
				return loaded, err
			}
			loaded += int64(len(batch))
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := m.dynRepo.InsertBatch(nil, query.StagingTable, names, batch); err != nil {
			return loaded, err
		}
		loaded += int64(len(batch))
	}
	logger.Infof("Loaded %d rows into %s", loaded, query.StagingTable)
	return loaded, nil
}

var trueTokens = map[string]bool{"true": true, "1": true, "yes": true, "evet": true, "ja": true}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02/01/2006", "2006/01/02"}

var datetimeLayouts = []string{
	"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04", "02.01.2006 15:04:05", "02.01.2006 15:04",
	"02/01/2006 15:04:05", "02/01/2006 15:04",
}

// coerceValue converts a raw fetched value into something the MySQL driver can
// bind against the declared column type. Unparseable values fall through as
// text and surface as driver errors rather than silent data loss.
func coerceValue(v interface{}, dataType string) interface{} {
	if utils.IsMissing(v) {
		return nil
	}
	s := strings.TrimSpace(utils.ValueToString(v))
	switch dataType {
	case models.DataTypeInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case models.DataTypeDecimal:
		if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return f
		}
	case models.DataTypeBoolean:
		if trueTokens[strings.ToLower(s)] {
			return 1
		}
		return 0
	case models.DataTypeDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02")
			}
		}
	case models.DataTypeDatetime:
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02 15:04:05")
			}
		}
	}
	return s
}
