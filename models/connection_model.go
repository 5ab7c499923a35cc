package models

import "time"

// Connection source kinds.
const (
	ConnectionKindOData = "odata" // web-service entity sets
	ConnectionKindSQLDB = "sqldb" // SQL-speaking analytical database
	ConnectionKindFile  = "file"  // uploaded flat/columnar files
)

// Connection represents a registered external data source.
// Credentials are a sparse bag interpreted per kind; fields unused by a kind are ignored.
type Connection struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	Code        string    `gorm:"column:code;unique" json:"code" validate:"required"`
	Name        string    `gorm:"column:name" json:"name" validate:"required"`
	Kind        string    `gorm:"column:kind" json:"kind" validate:"required,oneof=odata sqldb file"`
	Host        string    `gorm:"column:host" json:"host"`
	Port        int       `gorm:"column:port" json:"port"`
	Database    string    `gorm:"column:dbname" json:"database"`
	Username    string    `gorm:"column:username" json:"username"`
	Password    string    `gorm:"column:password" json:"-"`
	ClientID    string    `gorm:"column:client_id" json:"client_id"`         // web-service client id
	ServicePath string    `gorm:"column:service_path" json:"service_path"`   // web-service base path
	Driver      string    `gorm:"column:driver" json:"driver"`               // sqldb driver name (pgx, mysql)
	ExtraConfig string    `gorm:"column:extra_config;type:text" json:"extra_config"` // free-form JSON map
	Active      bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the static table name for GORM.
func (Connection) TableName() string {
	return "connections"
}
