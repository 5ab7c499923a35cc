package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// WarehouseRepository provides data access operations for warehouse table definitions.
type WarehouseRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.WarehouseTable, error)
	GetByCode(tx *gorm.DB, code string) (*models.WarehouseTable, error)
	GetAll(tx *gorm.DB) ([]models.WarehouseTable, error)
	Create(tx *gorm.DB, t *models.WarehouseTable) error
	Update(tx *gorm.DB, t *models.WarehouseTable) error
	Delete(tx *gorm.DB, id uint) error
	MarkCreated(tx *gorm.DB, id uint) error
	GetColumns(tx *gorm.DB, tableID uint) ([]models.WarehouseColumn, error)
	ReplaceColumns(tx *gorm.DB, tableID uint, cols []models.WarehouseColumn) error
}

type warehouseRepository struct {
	db *gorm.DB
}

// NewWarehouseRepository creates a new warehouse repository instance.
func NewWarehouseRepository() WarehouseRepository {
	return &warehouseRepository{
		db: config.DB,
	}
}

func (r *warehouseRepository) GetByID(tx *gorm.DB, id uint) (*models.WarehouseTable, error) {
	db := orDefault(tx, r.db)
	var t models.WarehouseTable
	if err := db.Table(models.WarehouseTable{}.TableName()).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *warehouseRepository) GetByCode(tx *gorm.DB, code string) (*models.WarehouseTable, error) {
	db := orDefault(tx, r.db)
	var t models.WarehouseTable
	if err := db.Table(models.WarehouseTable{}.TableName()).Where("code = ?", code).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *warehouseRepository) GetAll(tx *gorm.DB) ([]models.WarehouseTable, error) {
	db := orDefault(tx, r.db)
	var ts []models.WarehouseTable
	if err := db.Table(models.WarehouseTable{}.TableName()).Order("id").Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *warehouseRepository) Create(tx *gorm.DB, t *models.WarehouseTable) error {
	db := orDefault(tx, r.db)
	return db.Create(t).Error
}

func (r *warehouseRepository) Update(tx *gorm.DB, t *models.WarehouseTable) error {
	db := orDefault(tx, r.db)
	return db.Save(t).Error
}

func (r *warehouseRepository) Delete(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	if err := db.Where("table_id = ?", id).Delete(&models.WarehouseColumn{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.WarehouseTable{}, id).Error
}

func (r *warehouseRepository) MarkCreated(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.WarehouseTable{}).Where("id = ?", id).Update("created", true).Error
}

func (r *warehouseRepository) GetColumns(tx *gorm.DB, tableID uint) ([]models.WarehouseColumn, error) {
	db := orDefault(tx, r.db)
	var cols []models.WarehouseColumn
	if err := db.Table(models.WarehouseColumn{}.TableName()).
		Where("table_id = ?", tableID).Order("position").Find(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

func (r *warehouseRepository) ReplaceColumns(tx *gorm.DB, tableID uint, cols []models.WarehouseColumn) error {
	db := orDefault(tx, r.db)
	return db.Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("table_id = ?", tableID).Delete(&models.WarehouseColumn{}).Error; err != nil {
			return err
		}
		for i := range cols {
			cols[i].ID = 0
			cols[i].TableID = tableID
			cols[i].Position = i
		}
		if len(cols) == 0 {
			return nil
		}
		return inner.Create(&cols).Error
	})
}
