package pipeline

import (
	"context"
	"time"

	"github.com/jinank/smart-aqms/internal/models"
)

type ReadingStore interface {
	InsertReadings(ctx context.Context, items []models.Reading) ([]int64, error)
}

// BatchIngestor persists one batch as a single atomic write and measures the
// write's wall-clock latency. Either every reading becomes visible with an
// assigned record ID, or the error aborts the cycle and nothing is kept.
type BatchIngestor struct {
	Store ReadingStore
}

func (b *BatchIngestor) Ingest(ctx context.Context, batch []models.Reading) ([]int64, time.Duration, error) {
	start := time.Now()
	ids, err := b.Store.InsertReadings(ctx, batch)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, err
	}
	return ids, latency, nil
}
