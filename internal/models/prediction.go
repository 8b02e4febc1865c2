package models

import "time"

// Prediction is the classifier output for one persisted reading. At most one
// row exists per record_id; re-running a cycle replaces the previous row.
type Prediction struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordID       int64     `gorm:"column:record_id;not null;uniqueIndex" json:"record_id"`
	PredictedLabel string    `gorm:"column:aqi_pred;type:varchar(20);not null" json:"predicted_label"`
	ProbaGood      float64   `gorm:"column:proba_good;not null" json:"proba_good"`
	ProbaModerate  float64   `gorm:"column:proba_moderate;not null" json:"proba_moderate"`
	ProbaUnhealthy float64   `gorm:"column:proba_unhealthy;not null" json:"proba_unhealthy"`
	ProbaHazardous float64   `gorm:"column:proba_hazardous;not null" json:"proba_hazardous"`
	Confidence     float64   `gorm:"column:confidence_score;not null" json:"confidence"`
	ModelVersion   string    `gorm:"type:varchar(50)" json:"model_version"`
	PredictedAt    time.Time `gorm:"type:timestamptz;autoCreateTime" json:"predicted_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}
