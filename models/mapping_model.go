package models

import "time"

// Mapping levels: which layer the source table belongs to.
const (
	MappingLevelStaging   = "staging"
	MappingLevelWarehouse = "warehouse"
)

// Mapping target kinds.
const (
	TargetKindEntity    = "entity"    // generic EAV master-data records
	TargetKindVersion   = "version"   // system versions
	TargetKindPeriod    = "period"    // system periods
	TargetKindParameter = "parameter" // system parameters with per-version values
	TargetKindBudget    = "budget"    // budget entry rows and cells
)

// Transform kinds applied per field before the target write.
const (
	TransformNone       = "none"
	TransformUppercase  = "uppercase"
	TransformLowercase  = "lowercase"
	TransformTrim       = "trim"
	TransformFormatDate = "format_date"
	TransformLookup     = "lookup" // reserved for cross-table resolution, currently pass-through
)

// Reserved target-field names and prefixes understood by the mapping engine.
const (
	FieldCode        = "code"
	FieldName        = "name"
	FieldPeriod      = "period"
	FieldCurrency    = "currency"
	FieldVersionCode = "version_code"
	FieldValue       = "value"
	PrefixAttribute  = "attr:"    // attr:<attributeCode> on entity targets
	PrefixDimension  = "dim:"     // dim:<entityID> on budget targets
	PrefixMeasure    = "measure:" // measure:<code> on budget targets
)

// Mapping binds a staging or warehouse table to one internal target shape.
type Mapping struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	Code        string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name        string    `gorm:"column:name" json:"name"`
	Level       string    `gorm:"column:level" json:"level" validate:"required,oneof=staging warehouse"`
	SourceTable string    `gorm:"column:source_table" json:"source_table" validate:"required"` // physical staging/warehouse table
	TargetKind  string    `gorm:"column:target_kind" json:"target_kind" validate:"required,oneof=entity version period parameter budget"`
	TargetID    *uint     `gorm:"column:target_id" json:"target_id,omitempty"` // entity id or budget definition id
	Active      bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Mapping) TableName() string {
	return "mappings"
}

// FieldMapping is one ordered source-column to target-field binding with an
// optional transform. Key fields locate the existing target row for upserts.
type FieldMapping struct {
	ID              uint   `gorm:"primaryKey;column:id" json:"id"`
	MappingID       uint   `gorm:"column:mapping_id;index" json:"mapping_id"`
	Position        int    `gorm:"column:position" json:"position"`
	SourceColumn    string `gorm:"column:source_column" json:"source_column" validate:"required"`
	TargetField     string `gorm:"column:target_field" json:"target_field" validate:"required"`
	TransformKind   string `gorm:"column:transform_kind;default:none" json:"transform_kind" validate:"omitempty,oneof=none uppercase lowercase trim format_date lookup"`
	TransformConfig string `gorm:"column:transform_config;type:text" json:"transform_config"` // JSON, e.g. date layouts
	IsKey           bool   `gorm:"column:is_key" json:"is_key"`
}

// TableName specifies the static table name for GORM.
func (FieldMapping) TableName() string {
	return "field_mappings"
}
