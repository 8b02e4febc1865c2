package db

import (
	"github.com/jinank/smart-aqms/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Station{},
		&models.Reading{},
		&models.Prediction{},
		&models.Alert{},
		&models.Metric{},
		&models.PipelineRun{},
	)
}
