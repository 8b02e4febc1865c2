package models

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusStopped   = "stopped"
	RunStatusFailed    = "failed"
)

// PipelineRun is bookkeeping for one orchestrator run, opened at start and
// finalized on exit.
type PipelineRun struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string     `gorm:"type:uuid;not null;uniqueIndex" json:"run_id"`
	Status       string     `gorm:"type:varchar(20);not null;index" json:"status"`
	TargetRate   int        `gorm:"not null" json:"target_rate"`
	BatchSize    int        `gorm:"not null" json:"batch_size"`
	Cycles       int64      `gorm:"not null" json:"cycles"`
	RowsIngested int64      `gorm:"not null" json:"rows_ingested"`
	StartedAt    time.Time  `gorm:"type:timestamptz;not null" json:"started_at"`
	FinishedAt   *time.Time `gorm:"type:timestamptz" json:"finished_at"`
}

func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
