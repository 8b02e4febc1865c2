// Package detector scores measurement batches for anomalies. It cold-starts
// on a purely statistical path and switches to fitted per-feature isolation
// forests once a baseline has been learned from history.
package detector

import (
	"github.com/jinank/smart-aqms/internal/models"
)

// Result is the per-reading outcome of a Detect call. Score is always
// non-negative; larger means more anomalous.
type Result struct {
	Score     float64
	Anomalous bool
}

// ScoringStrategy scores one batch. Implementations return exactly one
// Result per reading and never a negative score.
type ScoringStrategy interface {
	Name() string
	Score(batch []models.Reading) []Result
}

// Detector owns the baseline state. It is single-owner mutable: Detect and
// FitBaseline must only be called from the one pipeline loop in progress.
type Detector struct {
	minWarmup int
	cold      ScoringStrategy
	warm      *forestStrategy
	fitted    bool
}

const (
	defaultMinWarmupSamples = 20
	coldScoreThreshold      = 5.0
)

func New(contamination float64, minWarmupSamples int, seed int64) *Detector {
	if minWarmupSamples <= 0 {
		minWarmupSamples = defaultMinWarmupSamples
	}
	return &Detector{
		minWarmup: minWarmupSamples,
		cold:      &ZScoreStrategy{Threshold: coldScoreThreshold},
		warm:      newForestStrategy(contamination, seed),
	}
}

// FitBaseline fits one anomaly model per monitored feature on historical
// readings and transitions the detector to its warm state. Fewer rows than
// the warm-up minimum is not an error: the detector simply stays cold.
func (d *Detector) FitBaseline(history []models.Reading) {
	if len(history) < d.minWarmup {
		return
	}
	d.warm.fit(history)
	d.fitted = true
}

// Warm reports whether a baseline has been fitted.
func (d *Detector) Warm() bool {
	return d.fitted
}

// MinWarmupSamples returns the configured warm-up minimum.
func (d *Detector) MinWarmupSamples() int {
	return d.minWarmup
}

// ActiveStrategy names the path Detect would take for a batch of the given
// size. Exposed for state inspection.
func (d *Detector) ActiveStrategy(batchSize int) string {
	if !d.fitted || batchSize < d.minWarmup {
		return d.cold.Name()
	}
	return d.warm.Name()
}

// Detect scores a batch. An empty batch yields an empty result. Small
// batches fall back to the cold path even when warm, because the adaptive
// percentile threshold is meaningless on a handful of rows.
func (d *Detector) Detect(batch []models.Reading) []Result {
	if len(batch) == 0 {
		return nil
	}
	if !d.fitted || len(batch) < d.minWarmup {
		return d.cold.Score(batch)
	}
	return d.warm.Score(batch)
}

// BaselineCutoff returns the training-score cutoff implied by the configured
// contamination fraction, for diagnostics. Zero while cold.
func (d *Detector) BaselineCutoff() float64 {
	if !d.fitted {
		return 0
	}
	return d.warm.trainCutoff
}
