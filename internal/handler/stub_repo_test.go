package handler

import (
	"context"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
	"github.com/jinank/smart-aqms/internal/repository"
)

// stubRepo satisfies repository.Repository with canned values so handlers
// can be exercised without a database.
type stubRepo struct {
	stationIDs []int64
	err        error
}

func (s *stubRepo) InsertReadings(_ context.Context, items []models.Reading) ([]int64, error) {
	return make([]int64, len(items)), s.err
}

func (s *stubRepo) ListRecentReadings(_ context.Context, _ int) ([]models.Reading, error) {
	return nil, s.err
}

func (s *stubRepo) ListReadings(_ context.Context, _ repository.ListReadingsParams) ([]models.Reading, error) {
	return nil, s.err
}

func (s *stubRepo) EnsureStations(_ context.Context, _ int) ([]int64, error) {
	return s.stationIDs, s.err
}

func (s *stubRepo) ListStationIDs(_ context.Context, _ int) ([]int64, error) {
	return s.stationIDs, s.err
}

func (s *stubRepo) UpsertPredictions(_ context.Context, _ []models.Prediction) error {
	return s.err
}

func (s *stubRepo) GetPredictionByRecordID(_ context.Context, _ int64) (*models.Prediction, error) {
	return nil, s.err
}

func (s *stubRepo) InsertAlerts(_ context.Context, _ []models.Alert) error {
	return s.err
}

func (s *stubRepo) ListAlerts(_ context.Context, _ repository.ListAlertsParams) ([]models.Alert, error) {
	return nil, s.err
}

func (s *stubRepo) DeleteAlertsBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, s.err
}

func (s *stubRepo) InsertMetrics(_ context.Context, _ []models.Metric) error {
	return s.err
}

func (s *stubRepo) ListMetrics(_ context.Context, _ repository.ListMetricsParams) ([]models.Metric, error) {
	return nil, s.err
}

func (s *stubRepo) LatestMetrics(_ context.Context) ([]models.Metric, error) {
	return nil, s.err
}

func (s *stubRepo) DeleteMetricsBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, s.err
}

func (s *stubRepo) InsertPipelineRun(_ context.Context, _ *models.PipelineRun) error {
	return s.err
}

func (s *stubRepo) FinishPipelineRun(_ context.Context, _ string, _ string, _, _ int64, _ time.Time) error {
	return s.err
}

func (s *stubRepo) ListPipelineRuns(_ context.Context, _ int) ([]models.PipelineRun, error) {
	return nil, s.err
}

func (s *stubRepo) TableCounts(_ context.Context) (repository.TableCounts, error) {
	return repository.TableCounts{}, s.err
}
