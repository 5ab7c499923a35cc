package warehouse

import (
	"errors"
	"fmt"

	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/inference"
	"databridgeapi/services/staging"
)

// Manager owns warehouse table definitions and their physical tables. Physical
// creation is idempotent: an existing table is left alone so accumulated data
// survives definition edits.
type Manager struct {
	whRepo  repository.WarehouseRepository
	colRepo repository.StagingColumnRepository
	dynRepo repository.DynTableRepository
}

// NewManager creates a new warehouse manager instance.
func NewManager() *Manager {
	return &Manager{
		whRepo:  repository.NewWarehouseRepository(),
		colRepo: repository.NewStagingColumnRepository(),
		dynRepo: repository.NewDynTableRepository(),
	}
}

// CreateFromStaging defines a warehouse table whose columns are copied from a
// query's staging schema. extraColumns extends the copy for the staging_plus
// kind; pass none for a plain staging copy.
func (m *Manager) CreateFromStaging(code, name string, queryID uint, extraColumns []models.WarehouseColumn) (*models.WarehouseTable, error) {
	stagingCols, err := m.colRepo.GetByQueryID(nil, queryID)
	if err != nil {
		return nil, err
	}
	if len(stagingCols) == 0 {
		return nil, fmt.Errorf("query %d has no detected columns to copy", queryID)
	}

	kind := models.WarehouseSourceStaging
	if len(extraColumns) > 0 {
		kind = models.WarehouseSourceStagingPlus
	}
	table := &models.WarehouseTable{
		Code:          code,
		Name:          name,
		SourceKind:    kind,
		SourceQueryID: &queryID,
		BackingTable:  inference.WarehouseTableName(code),
	}
	if err := m.whRepo.Create(nil, table); err != nil {
		return nil, err
	}

	cols := make([]models.WarehouseColumn, 0, len(stagingCols)+len(extraColumns))
	for _, sc := range stagingCols {
		if !sc.Included {
			continue
		}
		cols = append(cols, models.WarehouseColumn{
			SourceName: sc.TargetName, // staging target is the transfer source
			TargetName: sc.TargetName,
			DataType:   sc.DataType,
			Nullable:   sc.Nullable,
			PrimaryKey: sc.PrimaryKey,
			Included:   true,
			MaxLength:  sc.MaxLength,
		})
	}
	cols = append(cols, extraColumns...)
	if err := m.whRepo.ReplaceColumns(nil, table.ID, cols); err != nil {
		return nil, err
	}
	return table, nil
}

// CreateCustom defines a warehouse table from a hand-written column list.
func (m *Manager) CreateCustom(code, name string, cols []models.WarehouseColumn) (*models.WarehouseTable, error) {
	if len(cols) == 0 {
		return nil, errors.New("a custom warehouse table needs at least one column")
	}
	table := &models.WarehouseTable{
		Code:         code,
		Name:         name,
		SourceKind:   models.WarehouseSourceCustom,
		BackingTable: inference.WarehouseTableName(code),
	}
	if err := m.whRepo.Create(nil, table); err != nil {
		return nil, err
	}
	for i := range cols {
		cols[i].Included = true
		if cols[i].TargetName == "" {
			cols[i].TargetName = inference.SanitizeColumnName(cols[i].SourceName)
		}
	}
	if err := m.whRepo.ReplaceColumns(nil, table.ID, cols); err != nil {
		return nil, err
	}
	return table, nil
}

// CreatePhysicalTable materializes the backing table if it does not exist yet.
func (m *Manager) CreatePhysicalTable(tableID uint) error {
	table, err := m.whRepo.GetByID(nil, tableID)
	if err != nil {
		return err
	}
	exists, err := m.dynRepo.TableExists(nil, table.BackingTable)
	if err != nil {
		return err
	}
	if exists {
		if !table.Created {
			return m.whRepo.MarkCreated(nil, table.ID)
		}
		return nil
	}

	cols, err := m.IncludedColumns(tableID)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("warehouse table %s has no included columns", table.Code)
	}
	ddlCols := make([]models.StagingColumn, 0, len(cols))
	for _, c := range cols {
		ddlCols = append(ddlCols, models.StagingColumn{
			TargetName: c.TargetName,
			DataType:   c.DataType,
			Nullable:   c.Nullable,
			MaxLength:  c.MaxLength,
		})
	}
	if err := m.dynRepo.Exec(nil, staging.BuildCreateTableSQL(table.BackingTable, ddlCols)); err != nil {
		return err
	}
	logger.Infof("Created warehouse table %s with %d columns", table.BackingTable, len(cols))
	return m.whRepo.MarkCreated(nil, table.ID)
}

// IncludedColumns returns the table's column definitions with excluded columns
// filtered out, in stored order.
func (m *Manager) IncludedColumns(tableID uint) ([]models.WarehouseColumn, error) {
	cols, err := m.whRepo.GetColumns(nil, tableID)
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

// GetData pages through the physical table's rows.
func (m *Manager) GetData(tableID uint, page, pageSize int) ([]map[string]interface{}, int64, error) {
	table, err := m.whRepo.GetByID(nil, tableID)
	if err != nil {
		return nil, 0, err
	}
	if !table.Created {
		return nil, 0, fmt.Errorf("warehouse table %s has not been materialized", table.Code)
	}
	total, err := m.dynRepo.Count(nil, table.BackingTable)
	if err != nil {
		return nil, 0, err
	}
	rows, err := m.dynRepo.SelectPage(nil, table.BackingTable, nil, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TableStats summarizes a materialized warehouse table.
type TableStats struct {
	RowCount     int64  `json:"row_count"`
	LastLoadedAt string `json:"last_loaded_at,omitempty"`
}

// GetStats returns the row count and last load timestamp of the physical table.
func (m *Manager) GetStats(tableID uint) (*TableStats, error) {
	table, err := m.whRepo.GetByID(nil, tableID)
	if err != nil {
		return nil, err
	}
	if !table.Created {
		return &TableStats{}, nil
	}
	count, err := m.dynRepo.Count(nil, table.BackingTable)
	if err != nil {
		return nil, err
	}
	stats := &TableStats{RowCount: count}
	if last, err := m.dynRepo.MaxLoadedAt(nil, table.BackingTable); err == nil && last != nil {
		stats.LastLoadedAt = last.Format("2006-01-02 15:04:05")
	}
	return stats, nil
}
