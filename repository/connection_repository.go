package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// ConnectionRepository provides data access operations for registered external sources.
type ConnectionRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Connection, error)
	GetByCode(tx *gorm.DB, code string) (*models.Connection, error)
	GetAll(tx *gorm.DB) ([]models.Connection, error)
	Create(tx *gorm.DB, conn *models.Connection) error
	Update(tx *gorm.DB, conn *models.Connection) error
	Delete(tx *gorm.DB, id uint) error
	CountQueries(tx *gorm.DB, id uint) (int64, error)
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository instance.
func NewConnectionRepository() ConnectionRepository {
	return &connectionRepository{
		db: config.DB,
	}
}

func (r *connectionRepository) GetByID(tx *gorm.DB, id uint) (*models.Connection, error) {
	db := orDefault(tx, r.db)
	var conn models.Connection
	if err := db.Table(models.Connection{}.TableName()).Where("id = ?", id).First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetByCode(tx *gorm.DB, code string) (*models.Connection, error) {
	db := orDefault(tx, r.db)
	var conn models.Connection
	if err := db.Table(models.Connection{}.TableName()).Where("code = ?", code).First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetAll(tx *gorm.DB) ([]models.Connection, error) {
	db := orDefault(tx, r.db)
	var conns []models.Connection
	if err := db.Table(models.Connection{}.TableName()).Order("id").Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepository) Create(tx *gorm.DB, conn *models.Connection) error {
	db := orDefault(tx, r.db)
	return db.Create(conn).Error
}

func (r *connectionRepository) Update(tx *gorm.DB, conn *models.Connection) error {
	db := orDefault(tx, r.db)
	return db.Save(conn).Error
}

func (r *connectionRepository) Delete(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	return db.Delete(&models.Connection{}, id).Error
}

// CountQueries reports how many source queries still reference the connection.
// Connections with dependent queries must not be deleted.
func (r *connectionRepository) CountQueries(tx *gorm.DB, id uint) (int64, error) {
	db := orDefault(tx, r.db)
	var count int64
	if err := db.Model(&models.SourceQuery{}).Where("connection_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
