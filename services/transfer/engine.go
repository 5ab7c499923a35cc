package transfer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/warehouse"
	"databridgeapi/utils"
)

// Engine moves staged rows into warehouse tables under a load strategy. Like
// sync runs, every execution is recorded and failures land on the run record.
type Engine struct {
	transferRepo repository.TransferRepository
	queryRepo    repository.SourceQueryRepository
	whRepo       repository.WarehouseRepository
	dynRepo      repository.DynTableRepository
	baseRepo     repository.BaseRepository
	warehouse    *warehouse.Manager
}

// NewEngine creates a new transfer engine instance.
func NewEngine() *Engine {
	return &Engine{
		transferRepo: repository.NewTransferRepository(),
		queryRepo:    repository.NewSourceQueryRepository(),
		whRepo:       repository.NewWarehouseRepository(),
		dynRepo:      repository.NewDynTableRepository(),
		baseRepo:     repository.NewBaseRepository(),
		warehouse:    warehouse.NewManager(),
	}
}

// columnPlan pairs one warehouse target column with the staging column it
// reads from.
type columnPlan struct {
	source string
	target string
}

// Run executes a transfer. The returned TransferRun carries the outcome; a
// failed copy is a failed run, not an error to the caller.
func (e *Engine) Run(transferID uint, triggeredBy string) (*models.TransferRun, error) {
	transfer, err := e.transferRepo.GetByID(nil, transferID)
	if err != nil {
		return nil, fmt.Errorf("transfer %d not found", transferID)
	}
	run := &models.TransferRun{
		TransferID:  transferID,
		RunUID:      uuid.NewString(),
		Status:      models.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
		TriggeredBy: triggeredBy,
	}
	if err := e.transferRepo.CreateRun(nil, run); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Transfer run %s panicked: %v", run.RunUID, r)
			e.finishRun(run, fmt.Errorf("internal error: %v", r))
		}
	}()

	e.finishRun(run, e.execute(run, transfer))
	return run, nil
}

func (e *Engine) execute(run *models.TransferRun, transfer *models.Transfer) error {
	if !transfer.Active {
		return fmt.Errorf("transfer %s is inactive", transfer.Code)
	}
	table, err := e.whRepo.GetByID(nil, transfer.WarehouseTableID)
	if err != nil {
		return fmt.Errorf("warehouse table %d not found", transfer.WarehouseTableID)
	}
	if err := e.warehouse.CreatePhysicalTable(table.ID); err != nil {
		return fmt.Errorf("materializing %s: %w", table.Code, err)
	}

	stagingTable, err := e.stagingTableFor(transfer, table)
	if err != nil {
		return err
	}
	whCols, err := e.warehouse.IncludedColumns(table.ID)
	if err != nil {
		return err
	}
	colMap, err := parseColumnMap(transfer.ColumnMap)
	if err != nil {
		return fmt.Errorf("invalid column map: %w", err)
	}
	plan := buildColumnPlan(whCols, colMap)
	if len(plan) == 0 {
		return fmt.Errorf("no columns to transfer into %s", table.Code)
	}

	switch transfer.Strategy {
	case models.StrategyFull:
		return e.runFull(run, table.BackingTable, stagingTable, plan)
	case models.StrategyAppend:
		return e.runAppend(run, table.BackingTable, stagingTable, plan)
	case models.StrategyIncremental:
		return e.runIncremental(run, transfer, table.BackingTable, stagingTable, plan)
	default:
		return fmt.Errorf("unknown strategy: %s", transfer.Strategy)
	}
}

// runFull replaces the warehouse contents with the current staging contents.
// The truncate commits on its own, so a failed copy leaves a partially
// reloaded table; the failed run record points there.
// The stored cursor is untouched: it only moves under the incremental
// strategy, and moves forward only.
func (e *Engine) runFull(run *models.TransferRun, target, stagingTable string, plan []columnPlan) error {
	existing, err := e.dynRepo.Count(nil, target)
	if err != nil {
		return err
	}
	if err := e.dynRepo.TruncateTable(nil, target); err != nil {
		return err
	}
	run.DeletedRows = int(existing)
	return e.copyBatches(run, target, stagingTable, plan)
}

func (e *Engine) runAppend(run *models.TransferRun, target, stagingTable string, plan []columnPlan) error {
	return e.copyBatches(run, target, stagingTable, plan)
}

// runIncremental copies staging rows whose cursor value exceeds the stored
// cursor. Each batch commits together with the cursor advance, so a failure
// mid-run never replays committed rows.
func (e *Engine) runIncremental(run *models.TransferRun, transfer *models.Transfer, target, stagingTable string, plan []columnPlan) error {
	if transfer.CursorColumn == "" {
		return fmt.Errorf("incremental transfer %s has no cursor column", transfer.Code)
	}
	readCols := readColumns(plan)
	if !containsColumn(readCols, transfer.CursorColumn) {
		readCols = append(readCols, transfer.CursorColumn)
	}
	rows, err := e.dynRepo.SelectAfterCursor(nil, stagingTable, readCols, transfer.CursorColumn, transfer.LastCursorValue)
	if err != nil {
		return err
	}
	run.TotalRows = len(rows)

	cursor := transfer.LastCursorValue
	batchSize := config.Cfg.LoadBatchSize
	warned := map[string]bool{}
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		batchCursor := cursor
		for _, row := range batch {
			if v := utils.ValueToString(row[transfer.CursorColumn]); CompareCursor(v, batchCursor) > 0 {
				batchCursor = v
			}
		}
		err := e.baseRepo.Transaction(func(tx *gorm.DB) error {
			if err := e.insertRows(tx, target, plan, batch, warned); err != nil {
				return err
			}
			return e.transferRepo.UpdateCursor(tx, transfer.ID, batchCursor)
		})
		if err != nil {
			return err
		}
		cursor = batchCursor
		run.InsertedRows += len(batch)
	}
	return nil
}

// copyBatches streams the whole staging table into the target in insert
// batches, one transaction per batch.
func (e *Engine) copyBatches(run *models.TransferRun, target, stagingTable string, plan []columnPlan) error {
	total, err := e.dynRepo.Count(nil, stagingTable)
	if err != nil {
		return err
	}
	run.TotalRows = int(total)

	batchSize := config.Cfg.LoadBatchSize
	warned := map[string]bool{}
	for offset := 0; ; offset += batchSize {
		batch, err := e.dynRepo.SelectBatch(nil, stagingTable, readColumns(plan), offset, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		err = e.baseRepo.Transaction(func(tx *gorm.DB) error {
			return e.insertRows(tx, target, plan, batch, warned)
		})
		if err != nil {
			return err
		}
		run.InsertedRows += len(batch)
		if len(batch) < batchSize {
			return nil
		}
	}
}

func (e *Engine) insertRows(tx *gorm.DB, target string, plan []columnPlan, batch []map[string]interface{}, warned map[string]bool) error {
	names := make([]string, 0, len(plan)+1)
	for _, p := range plan {
		names = append(names, p.target)
	}
	names = append(names, "_loaded_at")
	loadedAt := time.Now().UTC().Format("2006-01-02 15:04:05")

	values := make([][]interface{}, 0, len(batch))
	for _, row := range batch {
		rowValues := make([]interface{}, 0, len(names))
		for _, p := range plan {
			v, ok := row[p.source]
			if !ok && !warned[p.source] {
				logger.Warnf("Staging column %s missing, loading NULL into %s", p.source, p.target)
				warned[p.source] = true
			}
			rowValues = append(rowValues, v)
		}
		rowValues = append(rowValues, loadedAt)
		values = append(values, rowValues)
	}
	return e.dynRepo.InsertBatch(tx, target, names, values)
}

func (e *Engine) stagingTableFor(transfer *models.Transfer, table *models.WarehouseTable) (string, error) {
	queryID := transfer.SourceQueryID
	if queryID == nil {
		queryID = table.SourceQueryID
	}
	if queryID == nil {
		return "", fmt.Errorf("transfer %s has no source query", transfer.Code)
	}
	query, err := e.queryRepo.GetByID(nil, *queryID)
	if err != nil {
		return "", fmt.Errorf("source query %d not found", *queryID)
	}
	if !query.StagingCreated || query.StagingTable == "" {
		return "", fmt.Errorf("query %s has no staged data yet", query.Code)
	}
	return query.StagingTable, nil
}

func (e *Engine) finishRun(run *models.TransferRun, execErr error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if execErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = models.TruncateRunError(execErr.Error())
		logger.Errorf("Transfer run %s failed: %v", run.RunUID, execErr)
	} else {
		run.Status = models.RunStatusSuccess
		logger.Infof("Transfer run %s succeeded: %d rows copied", run.RunUID, run.InsertedRows)
	}
	if err := e.transferRepo.UpdateRun(nil, run); err != nil {
		logger.Errorf("Failed to persist transfer run %s: %v", run.RunUID, err)
	}
}

// parseColumnMap decodes the staging-to-warehouse rename map.
func parseColumnMap(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	m := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// buildColumnPlan resolves each warehouse column to the staging column it
// reads from: an explicit rename wins, then the recorded source name, then the
// target name itself. Engine-owned columns are never part of the plan.
func buildColumnPlan(whCols []models.WarehouseColumn, colMap map[string]string) []columnPlan {
	// Invert staging->warehouse renames for lookup by target.
	byTarget := make(map[string]string, len(colMap))
	for stagingName, whName := range colMap {
		byTarget[whName] = stagingName
	}
	plan := make([]columnPlan, 0, len(whCols))
	for _, c := range whCols {
		source := byTarget[c.TargetName]
		if source == "" {
			source = c.SourceName
		}
		if source == "" {
			source = c.TargetName
		}
		plan = append(plan, columnPlan{source: source, target: c.TargetName})
	}
	return plan
}

func containsColumn(cols []string, name string) bool {
	for _, c := range cols {
		if c == name {
			return true
		}
	}
	return false
}

func readColumns(plan []columnPlan) []string {
	seen := map[string]bool{}
	var cols []string
	for _, p := range plan {
		if !seen[p.source] {
			seen[p.source] = true
			cols = append(cols, p.source)
		}
	}
	return cols
}

// CompareCursor orders two cursor values numerically when both parse as
// numbers and lexicographically otherwise. ISO dates and datetimes order
// correctly as strings; an empty stored cursor sorts before everything.
func CompareCursor(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	if a < b {
		return -1
	}
	return 1
}
