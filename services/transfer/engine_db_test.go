package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/sqltest"
	"databridgeapi/repository"
	"databridgeapi/services/staging"
	"databridgeapi/services/warehouse"
)

// setupDB points the global connection at a throwaway in-memory MySQL server
// and migrates the metadata schema.
func setupDB(t *testing.T) {
	t.Helper()
	config.DB = sqltest.Start(t)
	config.Cfg.LoadBatchSize = 100

	err := config.DB.AutoMigrate(
		&models.SourceQuery{},
		&models.StagingColumn{},
		&models.WarehouseTable{},
		&models.WarehouseColumn{},
		&models.Transfer{},
		&models.TransferRun{},
	)
	require.NoError(t, err)
}

// stageOrders creates a staged source query with the given rows loaded.
func stageOrders(t *testing.T, rows []map[string]interface{}) *models.SourceQuery {
	t.Helper()

	query := &models.SourceQuery{
		ConnectionID: 1,
		Code:         "orders",
		StagingTable: "stg_test_orders",
	}
	require.NoError(t, config.DB.Create(query).Error)

	cols := []models.StagingColumn{
		{QueryID: query.ID, Position: 0, SourceName: "id", TargetName: "id", DataType: models.DataTypeInteger, Included: true},
		{QueryID: query.ID, Position: 1, SourceName: "customer", TargetName: "customer", DataType: models.DataTypeString, MaxLength: 50, Included: true},
		{QueryID: query.ID, Position: 2, SourceName: "amount", TargetName: "amount", DataType: models.DataTypeDecimal, Included: true},
	}
	require.NoError(t, config.DB.Create(&cols).Error)

	mgr := staging.NewManager()
	require.NoError(t, mgr.CreateOrReplaceStagingTable(query))
	query.StagingCreated = true

	loaded, err := mgr.LoadRows(query, rows)
	require.NoError(t, err)
	require.Equal(t, int64(len(rows)), loaded)
	return query
}

func orderRows(ids ...int) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]interface{}{
			"id":       id,
			"customer": "c",
			"amount":   "10.5",
		})
	}
	return rows
}

func TestRun_FullReplacesTarget(t *testing.T) {
	setupDB(t)
	query := stageOrders(t, orderRows(1, 2, 3))

	table, err := warehouse.NewManager().CreateFromStaging("orders_dwh", "Orders", query.ID, nil)
	require.NoError(t, err)

	tr := &models.Transfer{
		Code:             "orders_full",
		WarehouseTableID: table.ID,
		Strategy:         models.StrategyFull,
		Active:           true,
	}
	require.NoError(t, config.DB.Create(tr).Error)

	engine := NewEngine()
	run, err := engine.Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
	require.Equal(t, 3, run.InsertedRows)

	count, err := repository.NewDynTableRepository().Count(nil, table.BackingTable)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	// A repeated full run replaces, never accumulates.
	run, err = engine.Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
	require.Equal(t, 3, run.DeletedRows)

	count, err = repository.NewDynTableRepository().Count(nil, table.BackingTable)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}

func TestRun_FullLeavesCursorAlone(t *testing.T) {
	setupDB(t)
	query := stageOrders(t, orderRows(1, 2, 3))

	table, err := warehouse.NewManager().CreateFromStaging("orders_full_cur", "Orders", query.ID, nil)
	require.NoError(t, err)

	tr := &models.Transfer{
		Code:             "orders_full_cursor",
		WarehouseTableID: table.ID,
		Strategy:         models.StrategyFull,
		CursorColumn:     "id",
		LastCursorValue:  "3",
		Active:           true,
	}
	require.NoError(t, config.DB.Create(tr).Error)

	run, err := NewEngine().Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)

	// A full reload must not move the stored cursor; switching the transfer
	// back to incremental later picks up from where it left off.
	stored, err := repository.NewTransferRepository().GetByID(nil, tr.ID)
	require.NoError(t, err)
	require.Equal(t, "3", stored.LastCursorValue)
}

func TestRun_AppendAccumulates(t *testing.T) {
	setupDB(t)
	query := stageOrders(t, orderRows(1, 2, 3))

	table, err := warehouse.NewManager().CreateFromStaging("orders_app", "Orders", query.ID, nil)
	require.NoError(t, err)

	tr := &models.Transfer{
		Code:             "orders_append",
		WarehouseTableID: table.ID,
		Strategy:         models.StrategyAppend,
		Active:           true,
	}
	require.NoError(t, config.DB.Create(tr).Error)

	engine := NewEngine()
	for i := 0; i < 2; i++ {
		run, err := engine.Run(tr.ID, "test")
		require.NoError(t, err)
		require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
		require.Equal(t, 3, run.InsertedRows)
		require.Equal(t, 0, run.DeletedRows)
	}

	count, err := repository.NewDynTableRepository().Count(nil, table.BackingTable)
	require.NoError(t, err)
	require.Equal(t, int64(6), count)
}

func TestRun_IncrementalAdvancesCursor(t *testing.T) {
	setupDB(t)
	query := stageOrders(t, orderRows(1, 2, 3))

	table, err := warehouse.NewManager().CreateFromStaging("orders_inc", "Orders", query.ID, nil)
	require.NoError(t, err)

	tr := &models.Transfer{
		Code:             "orders_incremental",
		WarehouseTableID: table.ID,
		Strategy:         models.StrategyIncremental,
		CursorColumn:     "id",
		Active:           true,
	}
	require.NoError(t, config.DB.Create(tr).Error)

	engine := NewEngine()
	run, err := engine.Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
	require.Equal(t, 3, run.InsertedRows)

	stored, err := repository.NewTransferRepository().GetByID(nil, tr.ID)
	require.NoError(t, err)
	require.Equal(t, "3", stored.LastCursorValue)

	// Restage with two newer rows; only those cross the cursor.
	mgr := staging.NewManager()
	_, err = mgr.LoadRows(query, orderRows(1, 2, 3, 4, 5))
	require.NoError(t, err)

	run, err = engine.Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
	require.Equal(t, 2, run.InsertedRows)

	stored, err = repository.NewTransferRepository().GetByID(nil, tr.ID)
	require.NoError(t, err)
	require.Equal(t, "5", stored.LastCursorValue)

	count, err := repository.NewDynTableRepository().Count(nil, table.BackingTable)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)

	// Nothing new: a run is still recorded, with zero rows.
	run, err = engine.Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusSuccess, run.Status, run.ErrorMessage)
	require.Equal(t, 0, run.InsertedRows)
}

func TestRun_InactiveTransferFailsRun(t *testing.T) {
	setupDB(t)
	query := stageOrders(t, orderRows(1))

	table, err := warehouse.NewManager().CreateFromStaging("orders_off", "Orders", query.ID, nil)
	require.NoError(t, err)

	tr := &models.Transfer{
		Code:             "orders_inactive",
		WarehouseTableID: table.ID,
		Strategy:         models.StrategyFull,
		Active:           true,
	}
	require.NoError(t, config.DB.Create(tr).Error)
	require.NoError(t, config.DB.Model(tr).Update("active", false).Error)

	run, err := NewEngine().Run(tr.ID, "test")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusFailed, run.Status)
	require.Contains(t, run.ErrorMessage, "inactive")
}
