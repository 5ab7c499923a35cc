package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// MappingRepository provides data access operations for mapping definitions.
type MappingRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Mapping, error)
	GetAll(tx *gorm.DB) ([]models.Mapping, error)
	Create(tx *gorm.DB, m *models.Mapping) error
	Update(tx *gorm.DB, m *models.Mapping) error
	Delete(tx *gorm.DB, id uint) error
	GetFields(tx *gorm.DB, mappingID uint) ([]models.FieldMapping, error)
	ReplaceFields(tx *gorm.DB, mappingID uint, fields []models.FieldMapping) error
}

type mappingRepository struct {
	db *gorm.DB
}

// NewMappingRepository creates a new mapping repository instance.
func NewMappingRepository() MappingRepository {
	return &mappingRepository{
		db: config.DB,
	}
}

func (r *mappingRepository) GetByID(tx *gorm.DB, id uint) (*models.Mapping, error) {
	db := orDefault(tx, r.db)
	var m models.Mapping
	if err := db.Table(models.Mapping{}.TableName()).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mappingRepository) GetAll(tx *gorm.DB) ([]models.Mapping, error) {
	db := orDefault(tx, r.db)
	var ms []models.Mapping
	if err := db.Table(models.Mapping{}.TableName()).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

func (r *mappingRepository) Create(tx *gorm.DB, m *models.Mapping) error {
	db := orDefault(tx, r.db)
	return db.Create(m).Error
}

func (r *mappingRepository) Update(tx *gorm.DB, m *models.Mapping) error {
	db := orDefault(tx, r.db)
	return db.Save(m).Error
}

func (r *mappingRepository) Delete(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	if err := db.Where("mapping_id = ?", id).Delete(&models.FieldMapping{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Mapping{}, id).Error
}

func (r *mappingRepository) GetFields(tx *gorm.DB, mappingID uint) ([]models.FieldMapping, error) {
	db := orDefault(tx, r.db)
	var fields []models.FieldMapping
	if err := db.Table(models.FieldMapping{}.TableName()).
		Where("mapping_id = ?", mappingID).Order("position").Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *mappingRepository) ReplaceFields(tx *gorm.DB, mappingID uint, fields []models.FieldMapping) error {
	db := orDefault(tx, r.db)
	return db.Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("mapping_id = ?", mappingID).Delete(&models.FieldMapping{}).Error; err != nil {
			return err
		}
		for i := range fields {
			fields[i].ID = 0
			fields[i].MappingID = mappingID
			fields[i].Position = i
		}
		if len(fields) == 0 {
			return nil
		}
		return inner.Create(&fields).Error
	})
}
