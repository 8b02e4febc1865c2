package repository

import (
	"context"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
)

// Repository is the persistence surface of the pipeline. The store is the
// system of record; the pipeline core only holds model state in memory.
type Repository interface {
	// Readings. InsertReadings is all-or-nothing: either every row in the
	// batch is durably visible and its assigned record_id is returned in
	// input order, or the call fails and nothing is persisted.
	InsertReadings(ctx context.Context, items []models.Reading) ([]int64, error)
	ListRecentReadings(ctx context.Context, limit int) ([]models.Reading, error)
	ListReadings(ctx context.Context, params ListReadingsParams) ([]models.Reading, error)

	// Stations. EnsureStations tops the table up to targetN rows and returns
	// every station ID in order; existing rows are never touched.
	EnsureStations(ctx context.Context, targetN int) ([]int64, error)
	ListStationIDs(ctx context.Context, limit int) ([]int64, error)

	// Predictions: upsert keyed by record_id.
	UpsertPredictions(ctx context.Context, items []models.Prediction) error
	GetPredictionByRecordID(ctx context.Context, recordID int64) (*models.Prediction, error)

	// Alerts: append-only, no dedup key.
	InsertAlerts(ctx context.Context, items []models.Alert) error
	ListAlerts(ctx context.Context, params ListAlertsParams) ([]models.Alert, error)
	DeleteAlertsBefore(ctx context.Context, before time.Time) (int64, error)

	// Metrics: append-only, one row per named value per cycle.
	InsertMetrics(ctx context.Context, items []models.Metric) error
	ListMetrics(ctx context.Context, params ListMetricsParams) ([]models.Metric, error)
	LatestMetrics(ctx context.Context) ([]models.Metric, error)
	DeleteMetricsBefore(ctx context.Context, before time.Time) (int64, error)

	// Run bookkeeping.
	InsertPipelineRun(ctx context.Context, item *models.PipelineRun) error
	FinishPipelineRun(ctx context.Context, runID string, status string, cycles, rowsIngested int64, finishedAt time.Time) error
	ListPipelineRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)

	TableCounts(ctx context.Context) (TableCounts, error)
}

type ListReadingsParams struct {
	Limit     int
	Offset    int
	StationID *int64
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}

type ListAlertsParams struct {
	Limit     int
	Offset    int
	StationID *int64
	Severity  *string
	AlertType *string
	Since     *time.Time
	OrderBy   string
	Asc       *bool
}

type ListMetricsParams struct {
	Limit   int
	Offset  int
	Name    *string
	Since   *time.Time
	OrderBy string
	Asc     *bool
}

type TableCounts struct {
	Readings    int64 `json:"readings"`
	Predictions int64 `json:"predictions"`
	Alerts      int64 `json:"alerts"`
	Metrics     int64 `json:"metrics"`
}
