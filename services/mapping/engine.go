package mapping

import (
	"fmt"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
	"databridgeapi/repository"
	"databridgeapi/utils"
)

// Error accounting bounds: detail text is kept for the first few failures and
// the whole run aborts once errors pile up.
const (
	MaxErrorDetails = 50
	MaxErrors       = 100
)

// Result summarizes one mapping execution.
type Result struct {
	Processed    int      `json:"processed"`
	Inserted     int      `json:"inserted"`
	Updated      int      `json:"updated"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details,omitempty"`
	Success      bool     `json:"success"`
}

func (r *Result) addError(rowIndex int, err error) {
	r.Errors++
	if len(r.ErrorDetails) < MaxErrorDetails {
		r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf("row %d: %v", rowIndex+1, err))
	}
}

// rowOutcome is what a target handler reports per source row.
type rowOutcome struct {
	inserted int
	updated  int
}

// targetHandler writes mapped field values into one internal target shape.
// load runs once per execution to prime lookup caches; apply runs per row.
type targetHandler interface {
	load() error
	apply(fields map[string]string) (rowOutcome, error)
}

// Engine executes mapping definitions: read a staging or warehouse table,
// transform fields, upsert into the internal target tables.
type Engine struct {
	mappingRepo repository.MappingRepository
	dynRepo     repository.DynTableRepository
	mdRepo      repository.MasterDataRepository
	budgetRepo  repository.BudgetRepository
}

// NewEngine creates a new mapping engine instance.
func NewEngine() *Engine {
	return &Engine{
		mappingRepo: repository.NewMappingRepository(),
		dynRepo:     repository.NewDynTableRepository(),
		mdRepo:      repository.NewMasterDataRepository(),
		budgetRepo:  repository.NewBudgetRepository(),
	}
}

// Execute runs a mapping over its full source table. Row-level failures are
// counted and capped; only setup problems (missing mapping, unreadable source)
// return an error.
func (e *Engine) Execute(mappingID uint) (*Result, error) {
	mapping, fields, err := e.loadDefinition(mappingID)
	if err != nil {
		return nil, err
	}
	handler, err := e.newHandler(mapping, fields)
	if err != nil {
		return nil, err
	}
	if err := handler.load(); err != nil {
		return nil, fmt.Errorf("priming lookup caches: %w", err)
	}

	result := &Result{}
	batchSize := config.Cfg.LoadBatchSize
	cols := sourceColumns(fields)
	rowIndex := 0
	for offset := 0; ; offset += batchSize {
		batch, err := e.dynRepo.SelectBatch(nil, mapping.SourceTable, cols, offset, batchSize)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", mapping.SourceTable, err)
		}
		if len(batch) == 0 {
			break
		}
		for _, row := range batch {
			if done := e.applyRow(handler, fields, row, rowIndex, result); done {
				result.Success = false
				logger.Warnf("Mapping %s aborted after %d errors", mapping.Code, result.Errors)
				return result, nil
			}
			rowIndex++
		}
		if len(batch) < batchSize {
			break
		}
	}
	result.Success = result.Errors == 0
	logger.Infof("Mapping %s done: %d processed, %d inserted, %d updated, %d errors",
		mapping.Code, result.Processed, result.Inserted, result.Updated, result.Errors)
	return result, nil
}

// applyRow transforms and writes one source row, reporting true when the
// error cap is reached and the run should stop.
func (e *Engine) applyRow(handler targetHandler, fields []models.FieldMapping, row map[string]interface{}, rowIndex int, result *Result) bool {
	result.Processed++
	values, err := transformRow(fields, row)
	if err == nil {
		var outcome rowOutcome
		outcome, err = handler.apply(values)
		result.Inserted += outcome.inserted
		result.Updated += outcome.updated
	}
	if err != nil {
		result.addError(rowIndex, err)
	}
	return result.Errors >= MaxErrors
}

// transformRow produces the target-field value map for one source row.
func transformRow(fields []models.FieldMapping, row map[string]interface{}) (map[string]string, error) {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		raw := utils.ValueToString(row[f.SourceColumn])
		v, err := ApplyTransform(raw, f.TransformKind, f.TransformConfig)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.TargetField, err)
		}
		values[f.TargetField] = v
	}
	return values, nil
}

// sourceColumns collects the distinct source columns a mapping reads.
func sourceColumns(fields []models.FieldMapping) []string {
	seen := map[string]bool{}
	var cols []string
	for _, f := range fields {
		if !seen[f.SourceColumn] {
			seen[f.SourceColumn] = true
			cols = append(cols, f.SourceColumn)
		}
	}
	return cols
}

func (e *Engine) loadDefinition(mappingID uint) (*models.Mapping, []models.FieldMapping, error) {
	mapping, err := e.mappingRepo.GetByID(nil, mappingID)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping %d not found", mappingID)
	}
	if !mapping.Active {
		return nil, nil, fmt.Errorf("mapping %s is inactive", mapping.Code)
	}
	fields, err := e.mappingRepo.GetFields(nil, mappingID)
	if err != nil {
		return nil, nil, err
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("mapping %s has no field mappings", mapping.Code)
	}
	return mapping, fields, nil
}

// newHandler picks the target handler for the mapping's target kind.
func (e *Engine) newHandler(mapping *models.Mapping, fields []models.FieldMapping) (targetHandler, error) {
	switch mapping.TargetKind {
	case models.TargetKindEntity:
		if mapping.TargetID == nil {
			return nil, fmt.Errorf("entity mapping %s has no target entity", mapping.Code)
		}
		return newEntityHandler(e.mdRepo, *mapping.TargetID, fields), nil
	case models.TargetKindVersion:
		return newVersionHandler(e.mdRepo), nil
	case models.TargetKindPeriod:
		return newPeriodHandler(e.mdRepo), nil
	case models.TargetKindParameter:
		return newParameterHandler(e.mdRepo), nil
	case models.TargetKindBudget:
		if mapping.TargetID == nil {
			return nil, fmt.Errorf("budget mapping %s has no target budget", mapping.Code)
		}
		return newBudgetHandler(e.mdRepo, e.budgetRepo, *mapping.TargetID, fields), nil
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", mapping.TargetKind)
	}
}
