package repository

import (
	"databridgeapi/config"
	"databridgeapi/models"

	"gorm.io/gorm"
)

// MasterDataRepository provides data access operations for the internal domain
// tables targeted by the mapping engine: EAV master data, versions, periods
// and parameters.
type MasterDataRepository interface {
	GetEntityByID(tx *gorm.DB, id uint) (*models.Entity, error)
	FindRecord(tx *gorm.DB, entityID uint, code string) (*models.EntityRecord, error)
	CreateRecord(tx *gorm.DB, rec *models.EntityRecord) error
	UpdateRecord(tx *gorm.DB, rec *models.EntityRecord) error
	UpsertAttributeValue(tx *gorm.DB, recordID uint, attributeCode, value string) error
	RecordCodeMap(tx *gorm.DB, entityID uint) (map[string]uint, error)

	FindVersionByCode(tx *gorm.DB, code string) (*models.Version, error)
	CreateVersion(tx *gorm.DB, v *models.Version) error
	UpdateVersion(tx *gorm.DB, v *models.Version) error
	VersionCodeMap(tx *gorm.DB) (map[string]uint, error)

	FindPeriodByCode(tx *gorm.DB, code string) (*models.Period, error)
	CreatePeriod(tx *gorm.DB, p *models.Period) error
	UpdatePeriod(tx *gorm.DB, p *models.Period) error
	PeriodCodeMap(tx *gorm.DB) (map[string]uint, error)

	FindParameterByCode(tx *gorm.DB, code string) (*models.Parameter, error)
	CreateParameter(tx *gorm.DB, p *models.Parameter) error
	UpdateParameter(tx *gorm.DB, p *models.Parameter) error
	UpsertParameterValue(tx *gorm.DB, parameterID, versionID uint, value string) error
}

type masterDataRepository struct {
	db *gorm.DB
}

// NewMasterDataRepository creates a new master data repository instance.
func NewMasterDataRepository() MasterDataRepository {
	return &masterDataRepository{
		db: config.DB,
	}
}

func (r *masterDataRepository) GetEntityByID(tx *gorm.DB, id uint) (*models.Entity, error) {
	db := orDefault(tx, r.db)
	var e models.Entity
	if err := db.Table(models.Entity{}.TableName()).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *masterDataRepository) FindRecord(tx *gorm.DB, entityID uint, code string) (*models.EntityRecord, error) {
	db := orDefault(tx, r.db)
	var rec models.EntityRecord
	if err := db.Table(models.EntityRecord{}.TableName()).
		Where("entity_id = ? AND code = ?", entityID, code).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *masterDataRepository) CreateRecord(tx *gorm.DB, rec *models.EntityRecord) error {
	db := orDefault(tx, r.db)
	return db.Create(rec).Error
}

func (r *masterDataRepository) UpdateRecord(tx *gorm.DB, rec *models.EntityRecord) error {
	db := orDefault(tx, r.db)
	return db.Save(rec).Error
}

func (r *masterDataRepository) UpsertAttributeValue(tx *gorm.DB, recordID uint, attributeCode, value string) error {
	db := orDefault(tx, r.db)
	res := db.Model(&models.RecordAttributeValue{}).
		Where("record_id = ? AND attribute_code = ?", recordID, attributeCode).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// No existing row updated; RowsAffected 0 can also mean an unchanged value,
	// so probe before inserting.
	var count int64
	if err := db.Model(&models.RecordAttributeValue{}).
		Where("record_id = ? AND attribute_code = ?", recordID, attributeCode).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&models.RecordAttributeValue{
		RecordID:      recordID,
		AttributeCode: attributeCode,
		Value:         value,
	}).Error
}

// RecordCodeMap loads the full code -> id map for one entity. Built once per
// mapping run and treated as read-only within it.
func (r *masterDataRepository) RecordCodeMap(tx *gorm.DB, entityID uint) (map[string]uint, error) {
	db := orDefault(tx, r.db)
	var recs []models.EntityRecord
	if err := db.Table(models.EntityRecord{}.TableName()).
		Select("id", "code").Where("entity_id = ?", entityID).Find(&recs).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(recs))
	for _, rec := range recs {
		m[rec.Code] = rec.ID
	}
	return m, nil
}

func (r *masterDataRepository) FindVersionByCode(tx *gorm.DB, code string) (*models.Version, error) {
	db := orDefault(tx, r.db)
	var v models.Version
	if err := db.Table(models.Version{}.TableName()).Where("code = ?", code).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *masterDataRepository) CreateVersion(tx *gorm.DB, v *models.Version) error {
	db := orDefault(tx, r.db)
	return db.Create(v).Error
}

func (r *masterDataRepository) UpdateVersion(tx *gorm.DB, v *models.Version) error {
	db := orDefault(tx, r.db)
	return db.Save(v).Error
}

func (r *masterDataRepository) VersionCodeMap(tx *gorm.DB) (map[string]uint, error) {
	db := orDefault(tx, r.db)
	var vs []models.Version
	if err := db.Table(models.Version{}.TableName()).Select("id", "code").Find(&vs).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(vs))
	for _, v := range vs {
		m[v.Code] = v.ID
	}
	return m, nil
}

func (r *masterDataRepository) FindPeriodByCode(tx *gorm.DB, code string) (*models.Period, error) {
	db := orDefault(tx, r.db)
	var p models.Period
	if err := db.Table(models.Period{}.TableName()).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *masterDataRepository) CreatePeriod(tx *gorm.DB, p *models.Period) error {
	db := orDefault(tx, r.db)
	return db.Create(p).Error
}

func (r *masterDataRepository) UpdatePeriod(tx *gorm.DB, p *models.Period) error {
	db := orDefault(tx, r.db)
	return db.Save(p).Error
}

func (r *masterDataRepository) PeriodCodeMap(tx *gorm.DB) (map[string]uint, error) {
	db := orDefault(tx, r.db)
	var ps []models.Period
	if err := db.Table(models.Period{}.TableName()).Select("id", "code").Find(&ps).Error; err != nil {
		return nil, err
	}
	m := make(map[string]uint, len(ps))
	for _, p := range ps {
		m[p.Code] = p.ID
	}
	return m, nil
}

func (r *masterDataRepository) FindParameterByCode(tx *gorm.DB, code string) (*models.Parameter, error) {
	db := orDefault(tx, r.db)
	var p models.Parameter
	if err := db.Table(models.Parameter{}.TableName()).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *masterDataRepository) CreateParameter(tx *gorm.DB, p *models.Parameter) error {
	db := orDefault(tx, r.db)
	return db.Create(p).Error
}

func (r *masterDataRepository) UpdateParameter(tx *gorm.DB, p *models.Parameter) error {
	db := orDefault(tx, r.db)
	return db.Save(p).Error
}

func (r *masterDataRepository) UpsertParameterValue(tx *gorm.DB, parameterID, versionID uint, value string) error {
	db := orDefault(tx, r.db)
	var existing models.ParameterValue
	err := db.Table(models.ParameterValue{}.TableName()).
		Where("parameter_id = ? AND version_id = ?", parameterID, versionID).First(&existing).Error
	if err == nil {
		existing.Value = value
		return db.Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(&models.ParameterValue{
		ParameterID: parameterID,
		VersionID:   versionID,
		Value:       value,
	}).Error
}
