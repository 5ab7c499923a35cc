package bootstrap

import (
	"fmt"

	"databridgeapi/config"
	"databridgeapi/models"
	"databridgeapi/pkg/logger"
)

// LoadData migrates the metadata schema and reports basic counts. Staging and
// warehouse tables are created at runtime and are not part of the migration.
func LoadData() error {
	logger.Infof("Starting schema migration...")

	if err := migrateSchema(); err != nil {
		return err
	}
	if err := logCounts(); err != nil {
		return err
	}

	logger.Infof("Schema migration completed successfully")
	return nil
}

func migrateSchema() error {
	err := config.DB.AutoMigrate(
		&models.Connection{},
		&models.SourceQuery{},
		&models.StagingColumn{},
		&models.SyncRun{},
		&models.WarehouseTable{},
		&models.WarehouseColumn{},
		&models.Transfer{},
		&models.TransferRun{},
		&models.Schedule{},
		&models.Mapping{},
		&models.FieldMapping{},
		&models.Entity{},
		&models.EntityRecord{},
		&models.RecordAttributeValue{},
		&models.Version{},
		&models.Period{},
		&models.Parameter{},
		&models.ParameterValue{},
		&models.BudgetEntryRow{},
		&models.BudgetEntryCell{},
	)
	if err != nil {
		logger.Errorf("Failed to migrate schema: %v", err)
		return fmt.Errorf("failed to migrate schema: %v", err)
	}
	return nil
}

func logCounts() error {
	var connections, queries, transfers int64
	if err := config.DB.Model(&models.Connection{}).Count(&connections).Error; err != nil {
		return fmt.Errorf("failed to count connections: %v", err)
	}
	if err := config.DB.Model(&models.SourceQuery{}).Count(&queries).Error; err != nil {
		return fmt.Errorf("failed to count source queries: %v", err)
	}
	if err := config.DB.Model(&models.Transfer{}).Count(&transfers).Error; err != nil {
		return fmt.Errorf("failed to count transfers: %v", err)
	}
	logger.Infof("Loaded %d connections, %d source queries, %d transfers", connections, queries, transfers)
	return nil
}
