package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// SourceQueryRepository provides data access operations for extraction definitions.
type SourceQueryRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.SourceQuery, error)
	GetByConnectionID(tx *gorm.DB, connectionID uint) ([]models.SourceQuery, error)
	GetAll(tx *gorm.DB) ([]models.SourceQuery, error)
	Create(tx *gorm.DB, q *models.SourceQuery) error
	Update(tx *gorm.DB, q *models.SourceQuery) error
	Delete(tx *gorm.DB, id uint) error
	MarkStagingCreated(tx *gorm.DB, id uint) error
	SaveUpload(tx *gorm.DB, id uint, fileName string, data []byte) error
}

type sourceQueryRepository struct {
	db *gorm.DB
}

// NewSourceQueryRepository creates a new source query repository instance.
func NewSourceQueryRepository() SourceQueryRepository {
	return &sourceQueryRepository{
		db: config.DB,
	}
}

func (r *sourceQueryRepository) GetByID(tx *gorm.DB, id uint) (*models.SourceQuery, error) {
	db := orDefault(tx, r.db)
	var q models.SourceQuery
	if err := db.Table(models.SourceQuery{}.TableName()).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *sourceQueryRepository) GetByConnectionID(tx *gorm.DB, connectionID uint) ([]models.SourceQuery, error) {
	db := orDefault(tx, r.db)
	var qs []models.SourceQuery
	if err := db.Table(models.SourceQuery{}.TableName()).
		Where("connection_id = ?", connectionID).Order("id").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *sourceQueryRepository) GetAll(tx *gorm.DB) ([]models.SourceQuery, error) {
	db := orDefault(tx, r.db)
	var qs []models.SourceQuery
	if err := db.Table(models.SourceQuery{}.TableName()).Order("id").Find(&qs).Error; err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *sourceQueryRepository) Create(tx *gorm.DB, q *models.SourceQuery) error {
	db := orDefault(tx, r.db)
	return db.Create(q).Error
}

func (r *sourceQueryRepository) Update(tx *gorm.DB, q *models.SourceQuery) error {
	db := orDefault(tx, r.db)
	return db.Save(q).Error
}

func (r *sourceQueryRepository) Delete(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	if err := db.Where("query_id = ?", id).Delete(&models.StagingColumn{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.SourceQuery{}, id).Error
}

// MarkStagingCreated flips the staging-created flag. The flag mutates once, on
// the first successful staging-table creation; re-marking is harmless.
func (r *sourceQueryRepository) MarkStagingCreated(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.SourceQuery{}).Where("id = ?", id).
		Update("staging_created", true).Error
}

func (r *sourceQueryRepository) SaveUpload(tx *gorm.DB, id uint, fileName string, data []byte) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.SourceQuery{}).Where("id = ?", id).
		Updates(map[string]interface{}{"file_name": fileName, "file_data": data}).Error
}
