package mapping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/sqltest"
)

func setupMappingDB(t *testing.T) {
	t.Helper()
	config.DB = sqltest.Start(t)
	config.Cfg.LoadBatchSize = 100

	err := config.DB.AutoMigrate(
		&models.Mapping{},
		&models.FieldMapping{},
		&models.Version{},
		&models.Period{},
		&models.Parameter{},
		&models.ParameterValue{},
		&models.Entity{},
		&models.EntityRecord{},
		&models.RecordAttributeValue{},
		&models.BudgetEntryRow{},
		&models.BudgetEntryCell{},
	)
	require.NoError(t, err)

	require.NoError(t, config.DB.Exec(
		"CREATE TABLE `stg_versions` ("+
			"`_row_id` BIGINT NOT NULL AUTO_INCREMENT, "+
			"`code` VARCHAR(50), `name` VARCHAR(100), "+
			"`_loaded_at` DATETIME, PRIMARY KEY (`_row_id`))").Error)
	require.NoError(t, config.DB.Exec(
		"INSERT INTO `stg_versions` (`code`, `name`) VALUES ('BUDGET2026', 'Budget 2026'), ('FC2026Q1', 'Forecast Q1')").Error)
}

func versionMapping(t *testing.T) *models.Mapping {
	t.Helper()
	m := &models.Mapping{
		Code:        "map_versions",
		Level:       models.MappingLevelStaging,
		SourceTable: "stg_versions",
		TargetKind:  models.TargetKindVersion,
		Active:      true,
	}
	require.NoError(t, config.DB.Create(m).Error)
	fields := []models.FieldMapping{
		{MappingID: m.ID, Position: 0, SourceColumn: "code", TargetField: models.FieldCode, TransformKind: models.TransformTrim},
		{MappingID: m.ID, Position: 1, SourceColumn: "name", TargetField: models.FieldName},
	}
	require.NoError(t, config.DB.Create(&fields).Error)
	return m
}

func TestExecute_VersionUpsertIsIdempotent(t *testing.T) {
	setupMappingDB(t)
	m := versionMapping(t)
	engine := NewEngine()

	result, err := engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Processed)
	require.Equal(t, 2, result.Inserted)

	var count int64
	require.NoError(t, config.DB.Model(&models.Version{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	// Re-running over unchanged source rows writes nothing new.
	result, err = engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.Inserted)
	require.Equal(t, 0, result.Updated)

	require.NoError(t, config.DB.Model(&models.Version{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestExecute_VersionRenameUpdatesInPlace(t *testing.T) {
	setupMappingDB(t)
	m := versionMapping(t)
	engine := NewEngine()

	_, err := engine.Execute(m.ID)
	require.NoError(t, err)

	require.NoError(t, config.DB.Exec(
		"UPDATE `stg_versions` SET `name` = 'Budget 2026 v2' WHERE `code` = 'BUDGET2026'").Error)

	result, err := engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 1, result.Updated)

	var v models.Version
	require.NoError(t, config.DB.Where("code = ?", "BUDGET2026").First(&v).Error)
	require.Equal(t, "Budget 2026 v2", v.Name)
}

func TestExecute_MissingMappingErrors(t *testing.T) {
	setupMappingDB(t)
	_, err := NewEngine().Execute(9999)
	require.Error(t, err)
}

func TestExecute_EntityRecordsWithAttributes(t *testing.T) {
	setupMappingDB(t)

	entity := &models.Entity{Code: "company", Name: "Company"}
	require.NoError(t, config.DB.Create(entity).Error)

	require.NoError(t, config.DB.Exec(
		"CREATE TABLE `stg_companies` ("+
			"`_row_id` BIGINT NOT NULL AUTO_INCREMENT, "+
			"`code` VARCHAR(50), `name` VARCHAR(100), `city` VARCHAR(100), "+
			"`_loaded_at` DATETIME, PRIMARY KEY (`_row_id`))").Error)
	require.NoError(t, config.DB.Exec(
		"INSERT INTO `stg_companies` (`code`, `name`, `city`) VALUES "+
			"('C001', 'Acme', 'Berlin'), ('C002', 'Beta', 'Vienna')").Error)

	m := &models.Mapping{
		Code:        "map_companies",
		Level:       models.MappingLevelStaging,
		SourceTable: "stg_companies",
		TargetKind:  models.TargetKindEntity,
		TargetID:    &entity.ID,
		Active:      true,
	}
	require.NoError(t, config.DB.Create(m).Error)
	fields := []models.FieldMapping{
		{MappingID: m.ID, Position: 0, SourceColumn: "code", TargetField: models.FieldCode, TransformKind: models.TransformTrim},
		{MappingID: m.ID, Position: 1, SourceColumn: "name", TargetField: models.FieldName},
		{MappingID: m.ID, Position: 2, SourceColumn: "city", TargetField: models.PrefixAttribute + "city"},
	}
	require.NoError(t, config.DB.Create(&fields).Error)

	engine := NewEngine()
	result, err := engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Processed)
	require.Equal(t, 2, result.Inserted)

	var rec models.EntityRecord
	require.NoError(t, config.DB.Where("entity_id = ? AND code = ?", entity.ID, "C001").First(&rec).Error)
	require.Equal(t, "Acme", rec.Name)

	var attr models.RecordAttributeValue
	require.NoError(t, config.DB.Where("record_id = ? AND attribute_code = ?", rec.ID, "city").First(&attr).Error)
	require.Equal(t, "Berlin", attr.Value)

	// Re-running creates no second record and no duplicate attribute row.
	result, err = engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.Inserted)

	var count int64
	require.NoError(t, config.DB.Model(&models.EntityRecord{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
	require.NoError(t, config.DB.Model(&models.RecordAttributeValue{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestExecute_BudgetCellsUpsert(t *testing.T) {
	setupMappingDB(t)

	entity := &models.Entity{Code: "costcenter", Name: "Cost center"}
	require.NoError(t, config.DB.Create(entity).Error)
	records := []models.EntityRecord{
		{EntityID: entity.ID, Code: "CC100", Name: "Sales"},
		{EntityID: entity.ID, Code: "CC200", Name: "IT"},
	}
	require.NoError(t, config.DB.Create(&records).Error)
	require.NoError(t, config.DB.Create(&models.Period{Code: "2026-01", Name: "Jan 2026", Year: 2026, Month: 1, Quarter: 1}).Error)

	require.NoError(t, config.DB.Exec(
		"CREATE TABLE `stg_budget` ("+
			"`_row_id` BIGINT NOT NULL AUTO_INCREMENT, "+
			"`cc` VARCHAR(50), `period` VARCHAR(10), `amount` VARCHAR(20), "+
			"`_loaded_at` DATETIME, PRIMARY KEY (`_row_id`))").Error)
	require.NoError(t, config.DB.Exec(
		"INSERT INTO `stg_budget` (`cc`, `period`, `amount`) VALUES "+
			"('CC100', '202601', '1000,50'), ('CC200', '2026-01', '250')").Error)

	budgetID := uint(7)
	m := &models.Mapping{
		Code:        "map_budget",
		Level:       models.MappingLevelStaging,
		SourceTable: "stg_budget",
		TargetKind:  models.TargetKindBudget,
		TargetID:    &budgetID,
		Active:      true,
	}
	require.NoError(t, config.DB.Create(m).Error)
	fields := []models.FieldMapping{
		{MappingID: m.ID, Position: 0, SourceColumn: "cc", TargetField: fmt.Sprintf("%s%d", models.PrefixDimension, entity.ID)},
		{MappingID: m.ID, Position: 1, SourceColumn: "period", TargetField: models.FieldPeriod},
		{MappingID: m.ID, Position: 2, SourceColumn: "amount", TargetField: models.PrefixMeasure + "amount"},
	}
	require.NoError(t, config.DB.Create(&fields).Error)

	engine := NewEngine()
	result, err := engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 2, result.Processed)

	var rows int64
	require.NoError(t, config.DB.Model(&models.BudgetEntryRow{}).Count(&rows).Error)
	require.Equal(t, int64(2), rows)

	var cell models.BudgetEntryCell
	require.NoError(t, config.DB.Where("measure_code = ? AND value = ?", "amount", 1000.5).First(&cell).Error)

	// Re-running upserts the same rows and cells, never duplicates.
	result, err = engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.Inserted)

	require.NoError(t, config.DB.Model(&models.BudgetEntryRow{}).Count(&rows).Error)
	require.Equal(t, int64(2), rows)
	require.NoError(t, config.DB.Model(&models.BudgetEntryCell{}).Count(&rows).Error)
	require.Equal(t, int64(2), rows)
}

func TestExecute_ParameterUpsertWithVersionValue(t *testing.T) {
	setupMappingDB(t)
	require.NoError(t, config.DB.Create(&models.Version{Code: "BUDGET2026", Name: "Budget 2026"}).Error)

	require.NoError(t, config.DB.Exec(
		"CREATE TABLE `stg_params` ("+
			"`_row_id` BIGINT NOT NULL AUTO_INCREMENT, "+
			"`code` VARCHAR(50), `name` VARCHAR(100), `version` VARCHAR(50), `value` VARCHAR(100), "+
			"`_loaded_at` DATETIME, PRIMARY KEY (`_row_id`))").Error)
	require.NoError(t, config.DB.Exec(
		"INSERT INTO `stg_params` (`code`, `name`, `version`, `value`) VALUES "+
			"('FX_EUR_USD', 'EUR/USD rate', 'BUDGET2026', '1.08')").Error)

	m := &models.Mapping{
		Code:        "map_params",
		Level:       models.MappingLevelStaging,
		SourceTable: "stg_params",
		TargetKind:  models.TargetKindParameter,
		Active:      true,
	}
	require.NoError(t, config.DB.Create(m).Error)
	fields := []models.FieldMapping{
		{MappingID: m.ID, Position: 0, SourceColumn: "code", TargetField: models.FieldCode},
		{MappingID: m.ID, Position: 1, SourceColumn: "name", TargetField: models.FieldName},
		{MappingID: m.ID, Position: 2, SourceColumn: "version", TargetField: models.FieldVersionCode},
		{MappingID: m.ID, Position: 3, SourceColumn: "value", TargetField: models.FieldValue},
	}
	require.NoError(t, config.DB.Create(&fields).Error)

	engine := NewEngine()
	result, err := engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 1, result.Inserted)

	// Second pass finds the parameter instead of recreating it.
	result, err = engine.Execute(m.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 0, result.Inserted)

	var count int64
	require.NoError(t, config.DB.Model(&models.Parameter{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.NoError(t, config.DB.Model(&models.ParameterValue{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestExecute_CountsRowErrorsWithoutAborting(t *testing.T) {
	setupMappingDB(t)
	m := versionMapping(t)

	require.NoError(t, config.DB.Exec("DELETE FROM `stg_versions`").Error)
	for i := 1; i <= 100; i++ {
		code := fmt.Sprintf("V%03d", i)
		if i%20 == 0 {
			code = "" // 5 rows without a code fail row-level validation
		}
		require.NoError(t, config.DB.Exec(
			"INSERT INTO `stg_versions` (`code`, `name`) VALUES (?, ?)", code, "Version "+code).Error)
	}

	result, err := NewEngine().Execute(m.ID)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, 100, result.Processed)
	require.Equal(t, 5, result.Errors)
	require.Equal(t, 95, result.Inserted)
	require.Len(t, result.ErrorDetails, 5)
}
