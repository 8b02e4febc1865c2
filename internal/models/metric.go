package models

import "time"

// Metric is one named telemetry value for one cycle. Append-only; the
// dashboard aggregates across rows, the pipeline never updates them.
type Metric struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MetricName  string    `gorm:"column:metric_name;type:varchar(100);not null;index" json:"metric_name"`
	MetricValue float64   `gorm:"column:metric_value;not null" json:"metric_value"`
	MetricUnit  string    `gorm:"column:metric_unit;type:varchar(20)" json:"metric_unit"`
	RecordedAt  time.Time `gorm:"type:timestamptz;autoCreateTime;index" json:"recorded_at"`
}

func (Metric) TableName() string {
	return "system_metrics"
}
