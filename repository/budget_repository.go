package repository

import (
	"errors"

	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// BudgetRepository provides data access operations for budget entry rows and cells.
type BudgetRepository interface {
	FindRowByKey(tx *gorm.DB, budgetID uint, dimensionKey string) (*models.BudgetEntryRow, error)
	CreateRow(tx *gorm.DB, row *models.BudgetEntryRow) error
	UpsertCell(tx *gorm.DB, cell *models.BudgetEntryCell) (inserted bool, err error)
}

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository instance.
func NewBudgetRepository() BudgetRepository {
	return &budgetRepository{
		db: config.DB,
	}
}

func (r *budgetRepository) FindRowByKey(tx *gorm.DB, budgetID uint, dimensionKey string) (*models.BudgetEntryRow, error) {
	db := orDefault(tx, r.db)
	var row models.BudgetEntryRow
	if err := db.Table(models.BudgetEntryRow{}.TableName()).
		Where("budget_id = ? AND dimension_key = ?", budgetID, dimensionKey).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *budgetRepository) CreateRow(tx *gorm.DB, row *models.BudgetEntryRow) error {
	db := orDefault(tx, r.db)
	return db.Create(row).Error
}

// UpsertCell writes one measure value keyed by (row, period, measure code) and
// reports whether a new cell was created.
func (r *budgetRepository) UpsertCell(tx *gorm.DB, cell *models.BudgetEntryCell) (bool, error) {
	db := orDefault(tx, r.db)
	var existing models.BudgetEntryCell
	err := db.Table(models.BudgetEntryCell{}.TableName()).
		Where("row_id = ? AND period_id = ? AND measure_code = ?", cell.RowID, cell.PeriodID, cell.MeasureCode).
		First(&existing).Error
	if err == nil {
		existing.Value = cell.Value
		existing.Currency = cell.Currency
		return false, db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, db.Create(cell).Error
}
