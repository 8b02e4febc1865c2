package source

import (
	"context"

	"github.com/jinank/smart-aqms/internal/models"
)

// MeasurementSource produces one batch of unpersisted readings per pipeline
// cycle. Implementations are invoked from the single orchestrator loop only.
type MeasurementSource interface {
	Next(ctx context.Context, size int) ([]models.Reading, error)
}
