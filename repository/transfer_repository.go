package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// TransferRepository provides data access operations for transfers and their run records.
type TransferRepository interface {
	GetByID(tx *gorm.DB, id uint) (*models.Transfer, error)
	GetAll(tx *gorm.DB) ([]models.Transfer, error)
	Create(tx *gorm.DB, t *models.Transfer) error
	Update(tx *gorm.DB, t *models.Transfer) error
	Delete(tx *gorm.DB, id uint) error
	UpdateCursor(tx *gorm.DB, id uint, cursorValue string) error
	CreateRun(tx *gorm.DB, run *models.TransferRun) error
	UpdateRun(tx *gorm.DB, run *models.TransferRun) error
	ListRuns(tx *gorm.DB, transferID uint, page, pageSize int) ([]models.TransferRun, int64, error)
	ListAllRuns(tx *gorm.DB, page, pageSize int) ([]models.TransferRun, int64, error)
}

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository instance.
func NewTransferRepository() TransferRepository {
	return &transferRepository{
		db: config.DB,
	}
}

func (r *transferRepository) GetByID(tx *gorm.DB, id uint) (*models.Transfer, error) {
	db := orDefault(tx, r.db)
	var t models.Transfer
	if err := db.Table(models.Transfer{}.TableName()).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepository) GetAll(tx *gorm.DB) ([]models.Transfer, error) {
	db := orDefault(tx, r.db)
	var ts []models.Transfer
	if err := db.Table(models.Transfer{}.TableName()).Order("id").Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}

func (r *transferRepository) Create(tx *gorm.DB, t *models.Transfer) error {
	db := orDefault(tx, r.db)
	return db.Create(t).Error
}

func (r *transferRepository) Update(tx *gorm.DB, t *models.Transfer) error {
	db := orDefault(tx, r.db)
	return db.Save(t).Error
}

func (r *transferRepository) Delete(tx *gorm.DB, id uint) error {
	db := orDefault(tx, r.db)
	if err := db.Where("transfer_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Transfer{}, id).Error
}

// UpdateCursor advances the stored incremental cursor. Callers pass the
// transaction that inserted the batch the cursor describes so both commit
// together.
func (r *transferRepository) UpdateCursor(tx *gorm.DB, id uint, cursorValue string) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.Transfer{}).Where("id = ?", id).
		Update("last_cursor_value", cursorValue).Error
}

func (r *transferRepository) CreateRun(tx *gorm.DB, run *models.TransferRun) error {
	db := orDefault(tx, r.db)
	return db.Create(run).Error
}

func (r *transferRepository) UpdateRun(tx *gorm.DB, run *models.TransferRun) error {
	db := orDefault(tx, r.db)
	return db.Save(run).Error
}

func (r *transferRepository) ListRuns(tx *gorm.DB, transferID uint, page, pageSize int) ([]models.TransferRun, int64, error) {
	db := orDefault(tx, r.db)
	return listRuns[models.TransferRun](db.Model(&models.TransferRun{}).Where("transfer_id = ?", transferID), page, pageSize)
}

func (r *transferRepository) ListAllRuns(tx *gorm.DB, page, pageSize int) ([]models.TransferRun, int64, error) {
	db := orDefault(tx, r.db)
	return listRuns[models.TransferRun](db.Model(&models.TransferRun{}), page, pageSize)
}
