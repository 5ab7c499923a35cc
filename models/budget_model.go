package models

import "time"

// BudgetEntryRow is one entry row under a budget definition, identified by the
// canonical serialization of its resolved dimension set. DimensionKey is
// order-independent: sorted "entityID=recordID" pairs joined with "|".
type BudgetEntryRow struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	BudgetID     uint      `gorm:"column:budget_id;uniqueIndex:uq_budget_dims" json:"budget_id"`
	DimensionKey string    `gorm:"column:dimension_key;size:500;uniqueIndex:uq_budget_dims" json:"dimension_key"`
	Dimensions   string    `gorm:"column:dimensions;type:text" json:"dimensions"` // JSON entityID -> recordID
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the static table name for GORM.
func (BudgetEntryRow) TableName() string {
	return "budget_entry_rows"
}

// BudgetEntryCell is one measure value keyed by (row, period, measure code).
type BudgetEntryCell struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id"`
	RowID       uint    `gorm:"column:row_id;uniqueIndex:uq_row_period_measure" json:"row_id"`
	PeriodID    uint    `gorm:"column:period_id;uniqueIndex:uq_row_period_measure" json:"period_id"`
	MeasureCode string  `gorm:"column:measure_code;size:100;uniqueIndex:uq_row_period_measure" json:"measure_code"`
	Currency    string  `gorm:"column:currency;size:10" json:"currency"`
	Value       float64 `gorm:"column:value" json:"value"`
}

// TableName specifies the static table name for GORM.
func (BudgetEntryCell) TableName() string {
	return "budget_entry_cells"
}
