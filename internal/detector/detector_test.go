package detector

import (
	"math/rand"
	"testing"

	"github.com/jinank/smart-aqms/internal/models"
)

func steadyBatch(n int) []models.Reading {
	rng := rand.New(rand.NewSource(7))
	batch := make([]models.Reading, n)
	for i := range batch {
		batch[i] = models.Reading{
			StationID: int64(i%12 + 1),
			PM25:      15 + rng.NormFloat64()*2,
			CO2PPM:    420 + rng.NormFloat64()*10,
		}
	}
	return batch
}

func TestDetectEmptyBatch(t *testing.T) {
	d := New(0.03, 20, 1)
	if got := d.Detect(nil); got != nil {
		t.Fatalf("Detect(nil) = %v, want nil", got)
	}
}

func TestDetectorStaysColdBelowWarmup(t *testing.T) {
	d := New(0.03, 20, 1)
	d.FitBaseline(steadyBatch(19))
	if d.Warm() {
		t.Fatalf("detector warm after %d samples, want cold below %d", 19, d.MinWarmupSamples())
	}
	if got := d.ActiveStrategy(100); got != "zscore" {
		t.Fatalf("ActiveStrategy = %q, want zscore", got)
	}
	if got := d.BaselineCutoff(); got != 0 {
		t.Fatalf("BaselineCutoff while cold = %v, want 0", got)
	}
}

func TestDetectorWarmsAtThreshold(t *testing.T) {
	d := New(0.03, 20, 1)
	d.FitBaseline(steadyBatch(20))
	if !d.Warm() {
		t.Fatalf("detector cold after %d samples, want warm", 20)
	}
	if got := d.ActiveStrategy(100); got != "iforest" {
		t.Fatalf("ActiveStrategy = %q, want iforest", got)
	}
	if got := d.BaselineCutoff(); got <= 0 {
		t.Fatalf("BaselineCutoff = %v, want > 0 once warm", got)
	}
}

func TestWarmDetectorFallsBackOnSmallBatch(t *testing.T) {
	d := New(0.03, 20, 1)
	d.FitBaseline(steadyBatch(200))
	if got := d.ActiveStrategy(5); got != "zscore" {
		t.Fatalf("ActiveStrategy(5) = %q, want zscore fallback", got)
	}
}

func TestColdPathFlagsExtremeReading(t *testing.T) {
	d := New(0.03, 20, 1)
	batch := steadyBatch(100)
	batch[42].PM25 = 900
	batch[42].CO2PPM = 5000

	results := d.Detect(batch)
	if len(results) != len(batch) {
		t.Fatalf("got %d results, want %d", len(results), len(batch))
	}
	if !results[42].Anomalous {
		t.Fatalf("extreme reading not flagged, score=%v", results[42].Score)
	}
	for i, r := range results {
		if r.Score < 0 {
			t.Fatalf("negative score %v at index %d", r.Score, i)
		}
	}
}

func TestWarmPathFlagRate(t *testing.T) {
	d := New(0.03, 20, 1)
	d.FitBaseline(steadyBatch(500))

	batch := steadyBatch(600)
	results := d.Detect(batch)
	if len(results) != len(batch) {
		t.Fatalf("got %d results, want %d", len(results), len(batch))
	}
	flagged := 0
	for i, r := range results {
		if r.Score < 0 {
			t.Fatalf("negative score %v at index %d", r.Score, i)
		}
		if r.Anomalous {
			flagged++
		}
	}
	// 98th-percentile threshold within the batch: roughly 2% flagged, never
	// everything, and at most a handful above it.
	if flagged == 0 || flagged > len(batch)/10 {
		t.Fatalf("flagged %d of %d, want a small non-zero fraction", flagged, len(batch))
	}
}

func TestWarmScoresSeparateOutliers(t *testing.T) {
	d := New(0.03, 20, 1)
	d.FitBaseline(steadyBatch(500))

	batch := steadyBatch(100)
	batch[0].PM25 = 900
	batch[0].CO2PPM = 5000
	results := d.Detect(batch)

	var maxTypical float64
	for _, r := range results[1:] {
		if r.Score > maxTypical {
			maxTypical = r.Score
		}
	}
	if results[0].Score <= maxTypical {
		t.Fatalf("outlier score %v not above typical max %v", results[0].Score, maxTypical)
	}
	if !results[0].Anomalous {
		t.Fatalf("outlier not flagged")
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	if got := percentile(values, 100); got != 5 {
		t.Fatalf("percentile(100) = %v, want 5", got)
	}
	if got := percentile(values, 0); got != 1 {
		t.Fatalf("percentile(0) = %v, want 1", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("percentile(nil) = %v, want 0", got)
	}
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("mean = %v, want 5", mean)
	}
	if std < 2.13 || std > 2.14 {
		t.Fatalf("sample std = %v, want ~2.138", std)
	}
	if _, std := meanStd([]float64{3}); std != 0 {
		t.Fatalf("single-element std = %v, want 0", std)
	}
}
