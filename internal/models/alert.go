package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert is an append-only derived record. There is no dedup key: retried
// cycles may produce duplicates and readers must tolerate them.
type Alert struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	StationID    int64          `gorm:"column:station_id;not null;index" json:"station_id"`
	AlertType    string         `gorm:"type:varchar(50);not null;index" json:"alert_type"`
	Severity     string         `gorm:"type:varchar(20);not null;index" json:"severity"`
	Message      string         `gorm:"type:text" json:"message"`
	AnomalyScore float64        `gorm:"column:anomaly_score;not null" json:"anomaly_score"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time      `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
