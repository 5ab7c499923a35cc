package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// StagingColumnRepository provides data access operations for inferred column definitions.
type StagingColumnRepository interface {
	GetByQueryID(tx *gorm.DB, queryID uint) ([]models.StagingColumn, error)
	ReplaceForQuery(tx *gorm.DB, queryID uint, cols []models.StagingColumn) error
	Update(tx *gorm.DB, col *models.StagingColumn) error
}

type stagingColumnRepository struct {
	db *gorm.DB
}

// NewStagingColumnRepository creates a new staging column repository instance.
func NewStagingColumnRepository() StagingColumnRepository {
	return &stagingColumnRepository{
		db: config.DB,
	}
}

func (r *stagingColumnRepository) GetByQueryID(tx *gorm.DB, queryID uint) ([]models.StagingColumn, error) {
	db := orDefault(tx, r.db)
	var cols []models.StagingColumn
	if err := db.Table(models.StagingColumn{}.TableName()).
		Where("query_id = ?", queryID).Order("position").Find(&cols).Error; err != nil {
		return nil, err
	}
	return cols, nil
}

// ReplaceForQuery overwrites the column list of a query in one transaction.
// Column detection always emits the full ordered set, so replace, not merge.
func (r *stagingColumnRepository) ReplaceForQuery(tx *gorm.DB, queryID uint, cols []models.StagingColumn) error {
	db := orDefault(tx, r.db)
	return db.Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("query_id = ?", queryID).Delete(&models.StagingColumn{}).Error; err != nil {
			return err
		}
		for i := range cols {
			cols[i].ID = 0
			cols[i].QueryID = queryID
			cols[i].Position = i
		}
		if len(cols) == 0 {
			return nil
		}
		return inner.Create(&cols).Error
	})
}

func (r *stagingColumnRepository) Update(tx *gorm.DB, col *models.StagingColumn) error {
	db := orDefault(tx, r.db)
	return db.Save(col).Error
}
