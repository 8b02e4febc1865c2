package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
)

func TestBuildOneRowPerMetric(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := Build(CycleStats{
		TotalIngested: 1200,
		Elapsed:       40 * time.Second,
		IngestLatency: 85 * time.Millisecond,
		BatchAvgPM25:  17.4,
		AnomalyCount:  12,
		TrainAccuracy: 0.91,
		RecordedAt:    at,
	})
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}

	byName := map[string]models.Metric{}
	for _, m := range rows {
		if m.RecordedAt != at {
			t.Fatalf("%s recorded_at = %v, want %v", m.MetricName, m.RecordedAt, at)
		}
		byName[m.MetricName] = m
	}

	// 1200 rows over 40s is 1800 rows/min.
	tp := byName[MetricThroughput]
	if tp.MetricValue != 1800 || tp.MetricUnit != "rows/min" {
		t.Fatalf("throughput = %v %s, want 1800 rows/min", tp.MetricValue, tp.MetricUnit)
	}
	lat := byName[MetricLatency]
	if lat.MetricValue != 85 || lat.MetricUnit != "ms" {
		t.Fatalf("latency = %v %s, want 85 ms", lat.MetricValue, lat.MetricUnit)
	}
	if byName[MetricBatchAvgPM25].MetricValue != 17.4 {
		t.Fatalf("avg pm25 = %v, want 17.4", byName[MetricBatchAvgPM25].MetricValue)
	}
	if byName[MetricAnomalyCount].MetricValue != 12 {
		t.Fatalf("anomaly count = %v, want 12", byName[MetricAnomalyCount].MetricValue)
	}
	if byName[MetricModelAccuracy].MetricValue != 0.91 {
		t.Fatalf("accuracy = %v, want 0.91", byName[MetricModelAccuracy].MetricValue)
	}
}

func TestBuildZeroElapsed(t *testing.T) {
	rows := Build(CycleStats{TotalIngested: 100})
	for _, m := range rows {
		if m.MetricName == MetricThroughput && m.MetricValue <= 0 {
			t.Fatalf("throughput = %v with zero elapsed, want finite positive", m.MetricValue)
		}
		if m.RecordedAt.IsZero() {
			t.Fatalf("recorded_at not defaulted")
		}
	}
}

type captureMetricStore struct {
	items []models.Metric
	err   error
}

func (s *captureMetricStore) InsertMetrics(ctx context.Context, items []models.Metric) error {
	s.items = append(s.items, items...)
	return s.err
}

func TestRecorderWritesThroughStore(t *testing.T) {
	store := &captureMetricStore{}
	r := &Recorder{Store: store}
	if err := r.Record(context.Background(), CycleStats{TotalIngested: 10, Elapsed: time.Minute}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(store.items) != 5 {
		t.Fatalf("store received %d rows, want 5", len(store.items))
	}

	var nilRecorder *Recorder
	if err := nilRecorder.Record(context.Background(), CycleStats{}); err != nil {
		t.Fatalf("nil recorder Record = %v, want nil", err)
	}
}
