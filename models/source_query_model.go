package models

import "time"

// Logical column data types shared by staging and warehouse column definitions.
const (
	DataTypeString   = "string"
	DataTypeInteger  = "integer"
	DataTypeDecimal  = "decimal"
	DataTypeBoolean  = "boolean"
	DataTypeDate     = "date"
	DataTypeDatetime = "datetime"
)

// SourceQuery is one extraction definition under a Connection: a web-service
// entity path, a SQL text, or a file-parsing configuration. It owns the staging
// table name, which is unique and stable once set.
type SourceQuery struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	ConnectionID uint   `gorm:"column:connection_id;index" json:"connection_id" validate:"required"`
	Code         string `gorm:"column:code" json:"code" validate:"required"`
	Name         string `gorm:"column:name" json:"name"`

	// Web-service extraction config
	EntityPath   string `gorm:"column:entity_path" json:"entity_path"`
	SelectFields string `gorm:"column:select_fields" json:"select_fields"` // comma-separated $select list
	Filter       string `gorm:"column:filter" json:"filter"`               // raw $filter expression
	RowLimit     int    `gorm:"column:row_limit" json:"row_limit"`         // 0 = paginate everything

	// Analytical-database extraction config
	SQLText string `gorm:"column:sql_text;type:text" json:"sql_text"`

	// File extraction config
	FileName   string `gorm:"column:file_name" json:"file_name"`
	FileConfig string `gorm:"column:file_config;type:text" json:"file_config"` // JSON FileParseConfig
	FileData   []byte `gorm:"column:file_data;type:longblob" json:"-"`

	StagingTable   string    `gorm:"column:staging_table;unique" json:"staging_table"`
	StagingCreated bool      `gorm:"column:staging_created" json:"staging_created"` // mutates once, on first successful staging DDL
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (SourceQuery) TableName() string {
	return "source_queries"
}

// FileParseConfig is the parse-configuration object stored as JSON in
// SourceQuery.FileConfig. Encoding "auto" triggers code-page detection.
type FileParseConfig struct {
	Delimiter string `json:"delimiter"`
	Encoding  string `json:"encoding"`
	HasHeader bool   `json:"has_header"`
	Sheet     string `json:"sheet"` // spreadsheet sheet name, empty = first
}

// StagingColumn is one ordered column definition belonging to a SourceQuery.
// Created or overwritten by type inference, consumed by staging DDL generation.
type StagingColumn struct {
	ID         uint   `gorm:"primaryKey;column:id" json:"id"`
	QueryID    uint   `gorm:"column:query_id;index" json:"query_id"`
	Position   int    `gorm:"column:position" json:"position"`
	SourceName string `gorm:"column:source_name" json:"source_name" validate:"required"`
	TargetName string `gorm:"column:target_name" json:"target_name" validate:"required"`
	DataType   string `gorm:"column:data_type" json:"data_type" validate:"required,oneof=string integer decimal boolean date datetime"`
	Nullable   bool   `gorm:"column:nullable;default:true" json:"nullable"`
	PrimaryKey bool   `gorm:"column:primary_key" json:"primary_key"`
	Included   bool   `gorm:"column:included;default:true" json:"included"`
	MaxLength  int    `gorm:"column:max_length" json:"max_length"`
}

// TableName specifies the static table name for GORM.
func (StagingColumn) TableName() string {
	return "staging_columns"
}
