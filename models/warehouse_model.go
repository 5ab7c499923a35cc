package models

import "time"

// Warehouse table source kinds.
const (
	WarehouseSourceStaging     = "staging"      // column list copied from a staging schema
	WarehouseSourceCustom      = "custom"       // hand-defined column list
	WarehouseSourceStagingPlus = "staging_plus" // staging copy with extra columns
)

// WarehouseTable is a promoted, longer-lived copy target populated from staging
// via a load strategy.
type WarehouseTable struct {
	ID            uint      `gorm:"primaryKey;column:id" json:"id"`
	Code          string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name          string    `gorm:"column:name" json:"name"`
	SourceKind    string    `gorm:"column:source_kind" json:"source_kind" validate:"required,oneof=staging custom staging_plus"`
	SourceQueryID *uint     `gorm:"column:source_query_id" json:"source_query_id,omitempty"` // provenance when copied from staging
	BackingTable  string    `gorm:"column:backing_table" json:"backing_table"`               // physical dwh_* table
	Created       bool      `gorm:"column:created" json:"created"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (WarehouseTable) TableName() string {
	return "warehouse_tables"
}

// WarehouseColumn mirrors StagingColumn and adds the incremental-key flag used
// by the transfer engine to pick a cursor column.
type WarehouseColumn struct {
	ID             uint   `gorm:"primaryKey;column:id" json:"id"`
	TableID        uint   `gorm:"column:table_id;index" json:"table_id"`
	Position       int    `gorm:"column:position" json:"position"`
	SourceName     string `gorm:"column:source_name" json:"source_name"`
	TargetName     string `gorm:"column:target_name" json:"target_name" validate:"required"`
	DataType       string `gorm:"column:data_type" json:"data_type" validate:"required,oneof=string integer decimal boolean date datetime"`
	Nullable       bool   `gorm:"column:nullable;default:true" json:"nullable"`
	PrimaryKey     bool   `gorm:"column:primary_key" json:"primary_key"`
	Included       bool   `gorm:"column:included;default:true" json:"included"`
	MaxLength      int    `gorm:"column:max_length" json:"max_length"`
	IncrementalKey bool   `gorm:"column:incremental_key" json:"incremental_key"`
}

// TableName specifies the static table name for GORM.
func (WarehouseColumn) TableName() string {
	return "warehouse_columns"
}
