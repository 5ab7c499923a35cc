package repository

import (
	"errors"
	"time"

	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// ScheduleRepository provides data access operations for durable schedule definitions.
type ScheduleRepository interface {
	GetByTransferID(tx *gorm.DB, transferID uint) (*models.Schedule, error)
	GetAll(tx *gorm.DB) ([]models.Schedule, error)
	ListEnabled(tx *gorm.DB) ([]models.Schedule, error)
	Upsert(tx *gorm.DB, s *models.Schedule) error
	SetEnabled(tx *gorm.DB, transferID uint, enabled bool) error
	UpdateRunTimes(tx *gorm.DB, transferID uint, lastRun, nextRun *time.Time) error
	Delete(tx *gorm.DB, transferID uint) error
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository instance.
func NewScheduleRepository() ScheduleRepository {
	return &scheduleRepository{
		db: config.DB,
	}
}

func (r *scheduleRepository) GetByTransferID(tx *gorm.DB, transferID uint) (*models.Schedule, error) {
	db := orDefault(tx, r.db)
	var s models.Schedule
	if err := db.Table(models.Schedule{}.TableName()).Where("transfer_id = ?", transferID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepository) GetAll(tx *gorm.DB) ([]models.Schedule, error) {
	db := orDefault(tx, r.db)
	var ss []models.Schedule
	if err := db.Table(models.Schedule{}.TableName()).Order("id").Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

// ListEnabled returns every enabled, non-manual schedule for startup re-registration.
func (r *scheduleRepository) ListEnabled(tx *gorm.DB) ([]models.Schedule, error) {
	db := orDefault(tx, r.db)
	var ss []models.Schedule
	if err := db.Table(models.Schedule{}.TableName()).
		Where("enabled = ? AND frequency <> ?", true, models.FrequencyManual).
		Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

// Upsert installs or replaces the one schedule of a transfer.
func (r *scheduleRepository) Upsert(tx *gorm.DB, s *models.Schedule) error {
	db := orDefault(tx, r.db)
	var existing models.Schedule
	err := db.Table(models.Schedule{}.TableName()).Where("transfer_id = ?", s.TransferID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(s).Error
	}
	if err != nil {
		return err
	}
	s.ID = existing.ID
	s.CreatedAt = existing.CreatedAt
	return db.Save(s).Error
}

func (r *scheduleRepository) SetEnabled(tx *gorm.DB, transferID uint, enabled bool) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.Schedule{}).Where("transfer_id = ?", transferID).
		Update("enabled", enabled).Error
}

func (r *scheduleRepository) UpdateRunTimes(tx *gorm.DB, transferID uint, lastRun, nextRun *time.Time) error {
	db := orDefault(tx, r.db)
	return db.Model(&models.Schedule{}).Where("transfer_id = ?", transferID).
		Updates(map[string]interface{}{"last_run_at": lastRun, "next_run_at": nextRun}).Error
}

func (r *scheduleRepository) Delete(tx *gorm.DB, transferID uint) error {
	db := orDefault(tx, r.db)
	return db.Where("transfer_id = ?", transferID).Delete(&models.Schedule{}).Error
}
