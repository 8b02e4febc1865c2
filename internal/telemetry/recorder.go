// Package telemetry computes and persists the per-cycle pipeline metrics the
// dashboard reads.
package telemetry

import (
	"context"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
)

// Metric names written once per cycle.
const (
	MetricThroughput    = "ingest_throughput"
	MetricLatency       = "ingest_latency"
	MetricBatchAvgPM25  = "avg_pm25_batch"
	MetricAnomalyCount  = "anomaly_count"
	MetricModelAccuracy = "stream_model_accuracy"
)

type MetricStore interface {
	InsertMetrics(ctx context.Context, items []models.Metric) error
}

type Recorder struct {
	Store MetricStore
}

// CycleStats carries the quantities one cycle produced. TotalIngested and
// Elapsed are cumulative over the run (the orchestrator owns the counters);
// the rest are per-cycle.
type CycleStats struct {
	TotalIngested int64
	Elapsed       time.Duration
	IngestLatency time.Duration
	BatchAvgPM25  float64
	AnomalyCount  int
	TrainAccuracy float64
	RecordedAt    time.Time
}

// Build converts cycle stats into one metric row per named value.
func Build(stats CycleStats) []models.Metric {
	elapsedMin := stats.Elapsed.Minutes()
	if elapsedMin < 1e-6 {
		elapsedMin = 1e-6
	}
	at := stats.RecordedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return []models.Metric{
		{MetricName: MetricThroughput, MetricValue: float64(stats.TotalIngested) / elapsedMin, MetricUnit: "rows/min", RecordedAt: at},
		{MetricName: MetricLatency, MetricValue: float64(stats.IngestLatency.Microseconds()) / 1000.0, MetricUnit: "ms", RecordedAt: at},
		{MetricName: MetricBatchAvgPM25, MetricValue: stats.BatchAvgPM25, MetricUnit: "µg/m³", RecordedAt: at},
		{MetricName: MetricAnomalyCount, MetricValue: float64(stats.AnomalyCount), MetricUnit: "count", RecordedAt: at},
		{MetricName: MetricModelAccuracy, MetricValue: stats.TrainAccuracy, MetricUnit: "score", RecordedAt: at},
	}
}

func (r *Recorder) Record(ctx context.Context, stats CycleStats) error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.InsertMetrics(ctx, Build(stats))
}
