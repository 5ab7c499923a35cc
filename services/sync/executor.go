package sync

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/services/inference"
	"databridgeapi/services/source"
	"databridgeapi/services/staging"
)

// Executor runs staging refreshes: fetch everything a source query defines and
// rebuild the staged rows. Every execution is recorded as a SyncRun; failures
// land on the run record instead of escaping to the caller.
type Executor struct {
	connRepo  repository.ConnectionRepository
	queryRepo repository.SourceQueryRepository
	colRepo   repository.StagingColumnRepository
	runRepo   repository.SyncRunRepository
	staging   *staging.Manager
}

// NewExecutor creates a new sync executor instance.
func NewExecutor() *Executor {
	return &Executor{
		connRepo:  repository.NewConnectionRepository(),
		queryRepo: repository.NewSourceQueryRepository(),
		colRepo:   repository.NewStagingColumnRepository(),
		runRepo:   repository.NewSyncRunRepository(),
		staging:   staging.NewManager(),
	}
}

// DetectColumns samples the source and overwrites the query's column
// definitions. The staging table name is assigned on first detection and
// never changes afterwards.
func (e *Executor) DetectColumns(queryID uint) ([]inference.DetectedColumn, error) {
	query, conn, err := e.loadQuery(queryID)
	if err != nil {
		return nil, err
	}
	adapter, err := source.ForConnection(conn, query)
	if err != nil {
		return nil, err
	}
	sample, err := adapter.FetchSample(config.Cfg.SampleRowLimit)
	if err != nil {
		return nil, fmt.Errorf("sampling source: %w", err)
	}
	if len(sample.Columns) == 0 {
		return nil, fmt.Errorf("source returned no columns for query %s", query.Code)
	}

	detected := inference.DetectColumns(sample.Rows, sample.Columns)
	cols := make([]models.StagingColumn, 0, len(detected))
	for _, d := range detected {
		cols = append(cols, models.StagingColumn{
			SourceName: d.SourceName,
			TargetName: d.TargetName,
			DataType:   d.DataType,
			Nullable:   d.Nullable,
			MaxLength:  d.MaxLength,
			Included:   true,
		})
	}
	if err := e.colRepo.ReplaceForQuery(nil, queryID, cols); err != nil {
		return nil, err
	}
	if query.StagingTable == "" {
		query.StagingTable = inference.StagingTableName(conn.Code, query.Code)
		if err := e.queryRepo.Update(nil, query); err != nil {
			return nil, err
		}
	}
	logger.Infof("Detected %d columns for query %s", len(detected), query.Code)
	return detected, nil
}

// Preview fetches a bounded sample straight from the source, without touching
// the staging table.
func (e *Executor) Preview(queryID uint, limit int) ([]map[string]interface{}, []string, error) {
	query, conn, err := e.loadQuery(queryID)
	if err != nil {
		return nil, nil, err
	}
	adapter, err := source.ForConnection(conn, query)
	if err != nil {
		return nil, nil, err
	}
	sample, err := adapter.FetchSample(limit)
	if err != nil {
		return nil, nil, fmt.Errorf("sampling source: %w", err)
	}
	return sample.Rows, sample.Columns, nil
}

// RebuildStaging recreates the staging table from the current column
// definitions, discarding previously staged rows.
func (e *Executor) RebuildStaging(queryID uint) error {
	query, _, err := e.loadQuery(queryID)
	if err != nil {
		return err
	}
	if query.StagingTable == "" {
		return fmt.Errorf("query %s has no staging table; run column detection first", query.Code)
	}
	return e.staging.CreateOrReplaceStagingTable(query)
}

// RunSync executes a full staging refresh. The returned SyncRun carries the
// outcome; a failed fetch or load is a failed run, not an error to the caller.
func (e *Executor) RunSync(queryID uint, triggeredBy string) (*models.SyncRun, error) {
	query, conn, err := e.loadQuery(queryID)
	if err != nil {
		return nil, err
	}
	run := &models.SyncRun{
		QueryID:     queryID,
		RunUID:      uuid.NewString(),
		Status:      models.RunStatusRunning,
		StartedAt:   time.Now().UTC(),
		TriggeredBy: triggeredBy,
	}
	if err := e.runRepo.Create(nil, run); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Sync run %s panicked: %v", run.RunUID, r)
			e.finishRun(run, fmt.Errorf("internal error: %v", r))
		}
	}()

	e.finishRun(run, e.execute(run, query, conn))
	return run, nil
}

func (e *Executor) execute(run *models.SyncRun, query *models.SourceQuery, conn *models.Connection) error {
	if !conn.Active {
		return fmt.Errorf("connection %s is inactive", conn.Code)
	}
	adapter, err := source.ForConnection(conn, query)
	if err != nil {
		return err
	}
	result, err := adapter.FetchAll()
	if err != nil {
		return fmt.Errorf("fetching from %s: %w", conn.Code, err)
	}
	run.TotalRows = len(result.Rows)

	if !query.StagingCreated {
		if err := e.staging.CreateOrReplaceStagingTable(query); err != nil {
			return fmt.Errorf("creating staging table: %w", err)
		}
	}
	loaded, err := e.staging.LoadRows(query, result.Rows)
	run.InsertedRows = int(loaded)
	if err != nil {
		return fmt.Errorf("loading staging table: %w", err)
	}
	return nil
}

func (e *Executor) finishRun(run *models.SyncRun, execErr error) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if execErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = models.TruncateRunError(execErr.Error())
		logger.Errorf("Sync run %s failed: %v", run.RunUID, execErr)
	} else {
		run.Status = models.RunStatusSuccess
		logger.Infof("Sync run %s succeeded: %d rows staged", run.RunUID, run.InsertedRows)
	}
	if err := e.runRepo.Update(nil, run); err != nil {
		logger.Errorf("Failed to persist sync run %s: %v", run.RunUID, err)
	}
}

func (e *Executor) loadQuery(queryID uint) (*models.SourceQuery, *models.Connection, error) {
	query, err := e.queryRepo.GetByID(nil, queryID)
	if err != nil {
		return nil, nil, fmt.Errorf("source query %d not found", queryID)
	}
	conn, err := e.connRepo.GetByID(nil, query.ConnectionID)
	if err != nil {
		return nil, nil, fmt.Errorf("connection %d not found", query.ConnectionID)
	}
	return query, conn, nil
}
