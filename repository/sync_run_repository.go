package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// SyncRunRepository provides data access operations for staging refresh run records.
type SyncRunRepository interface {
	Create(tx *gorm.DB, run *models.SyncRun) error
	Update(tx *gorm.DB, run *models.SyncRun) error
	GetByID(tx *gorm.DB, id uint) (*models.SyncRun, error)
	ListByQuery(tx *gorm.DB, queryID uint, page, pageSize int) ([]models.SyncRun, int64, error)
	List(tx *gorm.DB, page, pageSize int) ([]models.SyncRun, int64, error)
}

type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new sync run repository instance.
func NewSyncRunRepository() SyncRunRepository {
	return &syncRunRepository{
		db: config.DB,
	}
}

func (r *syncRunRepository) Create(tx *gorm.DB, run *models.SyncRun) error {
	db := orDefault(tx, r.db)
	return db.Create(run).Error
}

func (r *syncRunRepository) Update(tx *gorm.DB, run *models.SyncRun) error {
	db := orDefault(tx, r.db)
	return db.Save(run).Error
}

func (r *syncRunRepository) GetByID(tx *gorm.DB, id uint) (*models.SyncRun, error) {
	db := orDefault(tx, r.db)
	var run models.SyncRun
	if err := db.Table(models.SyncRun{}.TableName()).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepository) ListByQuery(tx *gorm.DB, queryID uint, page, pageSize int) ([]models.SyncRun, int64, error) {
	db := orDefault(tx, r.db)
	return listRuns[models.SyncRun](db.Model(&models.SyncRun{}).Where("query_id = ?", queryID), page, pageSize)
}

func (r *syncRunRepository) List(tx *gorm.DB, page, pageSize int) ([]models.SyncRun, int64, error) {
	db := orDefault(tx, r.db)
	return listRuns[models.SyncRun](db.Model(&models.SyncRun{}), page, pageSize)
}

// listRuns applies shared run-log pagination: newest first, 1-indexed pages.
func listRuns[T any](q *gorm.DB, page, pageSize int) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []T
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}
