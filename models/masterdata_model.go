package models

import "time"

// Entity is a master-data entity type (company, product, cost center, ...).
// Its records follow the entity-attribute-value model.
type Entity struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Code      string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the static table name for GORM.
func (Entity) TableName() string {
	return "entities"
}

// EntityRecord is one master-data record, unique by (entity, code).
type EntityRecord struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	EntityID  uint      `gorm:"column:entity_id;uniqueIndex:uq_entity_code" json:"entity_id"`
	Code      string    `gorm:"column:code;uniqueIndex:uq_entity_code" json:"code"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (EntityRecord) TableName() string {
	return "entity_records"
}

// RecordAttributeValue holds one attribute value of a master-data record.
type RecordAttributeValue struct {
	ID            uint   `gorm:"primaryKey;column:id" json:"id"`
	RecordID      uint   `gorm:"column:record_id;uniqueIndex:uq_record_attr" json:"record_id"`
	AttributeCode string `gorm:"column:attribute_code;uniqueIndex:uq_record_attr" json:"attribute_code"`
	Value         string `gorm:"column:value;type:text" json:"value"`
}

// TableName specifies the static table name for GORM.
func (RecordAttributeValue) TableName() string {
	return "record_attribute_values"
}

// Version is a planning version (actual, budget, forecast rounds).
type Version struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Code      string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Version) TableName() string {
	return "versions"
}

// Period is a planning period keyed by a YYYY-MM code; year, month and quarter
// are derived from the code on upsert.
type Period struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Code      string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name      string    `gorm:"column:name" json:"name"`
	Year      int       `gorm:"column:year" json:"year"`
	Month     int       `gorm:"column:month" json:"month"`
	Quarter   int       `gorm:"column:quarter" json:"quarter"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Period) TableName() string {
	return "periods"
}

// Parameter is a system parameter; its value varies per version.
type Parameter struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	Code      string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Parameter) TableName() string {
	return "parameters"
}

// ParameterValue is the per-version value row of a parameter.
type ParameterValue struct {
	ID          uint   `gorm:"primaryKey;column:id" json:"id"`
	ParameterID uint   `gorm:"column:parameter_id;uniqueIndex:uq_param_version" json:"parameter_id"`
	VersionID   uint   `gorm:"column:version_id;uniqueIndex:uq_param_version" json:"version_id"`
	Value       string `gorm:"column:value" json:"value"`
}

// TableName specifies the static table name for GORM.
func (ParameterValue) TableName() string {
	return "parameter_values"
}
