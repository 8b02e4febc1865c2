package gormrepository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jinank/smart-aqms/internal/models"
	"github.com/jinank/smart-aqms/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- readings ---------------------------------------------------------------

func (s *Store) InsertReadings(ctx context.Context, items []models.Reading) ([]int64, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	if len(items) == 0 {
		return nil, nil
	}
	// One transaction for the whole batch: partial inserts must never become
	// visible. Postgres RETURNING backfills the assigned record IDs in input
	// order, so correlation is positional rather than by recency.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&items, 500).Error
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].RecordID
	}
	return ids, nil
}

func (s *Store) ListRecentReadings(ctx context.Context, limit int) ([]models.Reading, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 200)
	var items []models.Reading
	if err := s.db.WithContext(ctx).
		Model(&models.Reading{}).
		Order("record_id desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListReadings(ctx context.Context, params repository.ListReadingsParams) ([]models.Reading, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Reading{})
	if params.StationID != nil {
		query = query.Where("station_id = ?", *params.StationID)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("ts >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "record_id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Reading
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- stations ---------------------------------------------------------------

var stationZones = []string{
	"Central", "North", "South", "East", "West", "Uptown",
	"Midtown", "Harbor", "Campus", "Airport", "Industrial", "Market",
}

// EnsureStations tops the stations table up to targetN rows. Coordinates are
// jittered around a single city anchor so seeded sites look plausible on a map.
func (s *Store) EnsureStations(ctx context.Context, targetN int) ([]int64, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	var ids []int64
	if err := s.db.WithContext(ctx).
		Model(&models.Station{}).
		Order("station_id asc").
		Pluck("station_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) >= targetN {
		return ids, nil
	}

	const baseLat, baseLon = 43.0481, -76.1474
	items := make([]models.Station, 0, targetN-len(ids))
	for i := 0; i < targetN-len(ids); i++ {
		items = append(items, models.Station{
			StationName: fmt.Sprintf("Station %d", len(ids)+i+1),
			CityZone:    stationZones[(len(ids)+i)%len(stationZones)],
			Latitude:    baseLat + rand.NormFloat64()*0.03,
			Longitude:   baseLon + rand.NormFloat64()*0.03,
			SensorType:  "Combined",
			Status:      "Active",
		})
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}

	ids = ids[:0]
	if err := s.db.WithContext(ctx).
		Model(&models.Station{}).
		Order("station_id asc").
		Pluck("station_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) ListStationIDs(ctx context.Context, limit int) ([]int64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var ids []int64
	if err := s.db.WithContext(ctx).
		Model(&models.Station{}).
		Where("status = ?", "Active").
		Order("station_id asc").
		Limit(limit).
		Pluck("station_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// --- predictions ------------------------------------------------------------

func (s *Store) UpsertPredictions(ctx context.Context, items []models.Prediction) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"aqi_pred",
			"proba_good",
			"proba_moderate",
			"proba_unhealthy",
			"proba_hazardous",
			"confidence_score",
			"model_version",
			"predicted_at",
		}),
	}).CreateInBatches(&items, 500).Error
}

func (s *Store) GetPredictionByRecordID(ctx context.Context, recordID int64) (*models.Prediction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Prediction
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- alerts -----------------------------------------------------------------

func (s *Store) InsertAlerts(ctx context.Context, items []models.Alert) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(&items, 500).Error
}

func (s *Store) ListAlerts(ctx context.Context, params repository.ListAlertsParams) ([]models.Alert, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Alert{})
	if params.StationID != nil {
		query = query.Where("station_id = ?", *params.StationID)
	}
	if params.Severity != nil && strings.TrimSpace(*params.Severity) != "" {
		query = query.Where("severity = ?", strings.TrimSpace(*params.Severity))
	}
	if params.AlertType != nil && strings.TrimSpace(*params.AlertType) != "" {
		query = query.Where("alert_type = ?", strings.TrimSpace(*params.AlertType))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Alert
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteAlertsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.Alert{})
	return res.RowsAffected, res.Error
}

// --- metrics ----------------------------------------------------------------

func (s *Store) InsertMetrics(ctx context.Context, items []models.Metric) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(&items, 500).Error
}

func (s *Store) ListMetrics(ctx context.Context, params repository.ListMetricsParams) ([]models.Metric, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Metric{})
	if params.Name != nil && strings.TrimSpace(*params.Name) != "" {
		query = query.Where("metric_name = ?", strings.TrimSpace(*params.Name))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("recorded_at >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "recorded_at")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Metric
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestMetrics(ctx context.Context) ([]models.Metric, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Metric
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (metric_name)
			id, metric_name, metric_value, metric_unit, recorded_at
		FROM system_metrics
		ORDER BY metric_name, recorded_at DESC
	`).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteMetricsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil || before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("recorded_at < ?", before).
		Delete(&models.Metric{})
	return res.RowsAffected, res.Error
}

// --- pipeline runs ----------------------------------------------------------

func (s *Store) InsertPipelineRun(ctx context.Context, item *models.PipelineRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FinishPipelineRun(ctx context.Context, runID string, status string, cycles, rowsIngested int64, finishedAt time.Time) error {
	if s == nil || s.db == nil || strings.TrimSpace(runID) == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.PipelineRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"status":        status,
			"cycles":        cycles,
			"rows_ingested": rowsIngested,
			"finished_at":   finishedAt,
		}).Error
}

func (s *Store) ListPipelineRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	var items []models.PipelineRun
	if err := s.db.WithContext(ctx).
		Model(&models.PipelineRun{}).
		Order("started_at desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- status -----------------------------------------------------------------

func (s *Store) TableCounts(ctx context.Context) (repository.TableCounts, error) {
	var counts repository.TableCounts
	if s == nil || s.db == nil {
		return counts, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Reading{}).Count(&counts.Readings).Error; err != nil {
		return counts, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Prediction{}).Count(&counts.Predictions).Error; err != nil {
		return counts, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Alert{}).Count(&counts.Alerts).Error; err != nil {
		return counts, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Metric{}).Count(&counts.Metrics).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
