package models

import "time"

// Load strategies governing how staging rows move into a warehouse table.
const (
	StrategyFull        = "full"        // truncate target, copy everything
	StrategyIncremental = "incremental" // append rows newer than the stored cursor
	StrategyAppend      = "append"      // always add, never replace or dedupe
)

// Transfer binds one warehouse table to one source query and a load strategy.
// LastCursorValue is the only cross-run mutable state in the engine; it moves
// forward only and is committed in the same transaction as the rows it describes.
type Transfer struct {
	ID               uint      `gorm:"primaryKey;column:id" json:"id"`
	Code             string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name             string    `gorm:"column:name" json:"name"`
	WarehouseTableID uint      `gorm:"column:warehouse_table_id;index" json:"warehouse_table_id" validate:"required"`
	SourceQueryID    *uint     `gorm:"column:source_query_id" json:"source_query_id,omitempty"`
	Strategy         string    `gorm:"column:strategy" json:"strategy" validate:"required,oneof=full incremental append"`
	CursorColumn     string    `gorm:"column:cursor_column" json:"cursor_column"`
	LastCursorValue  string    `gorm:"column:last_cursor_value" json:"last_cursor_value"`
	ColumnMap        string    `gorm:"column:column_map;type:text" json:"column_map"` // JSON staging->warehouse rename map
	Active           bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt        time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Transfer) TableName() string {
	return "transfers"
}

// TransferRun is one execution record of a transfer, tracking updated and
// deleted row counts in addition to the sync-run metrics.
type TransferRun struct {
	ID           uint       `gorm:"primaryKey;column:id" json:"id"`
	TransferID   uint       `gorm:"column:transfer_id;index" json:"transfer_id"`
	RunUID       string     `gorm:"column:run_uid;size:36" json:"run_uid"`
	Status       string     `gorm:"column:status" json:"status"`
	StartedAt    time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	TotalRows    int        `gorm:"column:total_rows" json:"total_rows"`
	InsertedRows int        `gorm:"column:inserted_rows" json:"inserted_rows"`
	UpdatedRows  int        `gorm:"column:updated_rows" json:"updated_rows"`
	DeletedRows  int        `gorm:"column:deleted_rows" json:"deleted_rows"`
	ErrorMessage string     `gorm:"column:error_message;size:2000" json:"error_message,omitempty"`
	TriggeredBy  string     `gorm:"column:triggered_by" json:"triggered_by"`
}

// TableName specifies the static table name for GORM.
func (TransferRun) TableName() string {
	return "transfer_runs"
}
