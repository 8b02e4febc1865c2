package classifier

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jinank/smart-aqms/internal/models"
)

func TestLabelFromPM25(t *testing.T) {
	tests := []struct {
		pm25 float64
		want string
	}{
		{0, "Good"},
		{12, "Good"},
		{12.1, "Moderate"},
		{35, "Moderate"},
		{35.1, "Unhealthy"},
		{55, "Unhealthy"},
		{55.1, "Hazardous"},
		{300, "Hazardous"},
	}
	for _, tt := range tests {
		if got := LabelFromPM25(tt.pm25); got != tt.want {
			t.Fatalf("LabelFromPM25(%v) = %q, want %q", tt.pm25, got, tt.want)
		}
	}
}

func labeledBatch(n int) []models.Reading {
	rng := rand.New(rand.NewSource(11))
	batch := make([]models.Reading, n)
	for i := range batch {
		// Spread readings across all four buckets.
		pm25 := []float64{6, 20, 45, 90}[i%4] + rng.Float64()*4
		batch[i] = models.Reading{
			StationID:    int64(i%12 + 1),
			PM25:         pm25,
			CO2PPM:       400 + rng.Float64()*200,
			TemperatureC: 18 + rng.Float64()*10,
			Humidity:     50 + rng.Float64()*20,
			WindSpeed:    rng.Float64() * 8,
		}
	}
	return batch
}

func TestPredictUnfitReturnsUniform(t *testing.T) {
	c := New()
	if c.Fitted() {
		t.Fatalf("fresh classifier reports fitted")
	}
	preds := c.Predict(labeledBatch(3))
	if len(preds) != 3 {
		t.Fatalf("got %d predictions, want 3", len(preds))
	}
	for _, p := range preds {
		if p.Label != Classes[0] {
			t.Fatalf("unfit label = %q, want %q", p.Label, Classes[0])
		}
		for k, v := range p.Proba {
			if v != 0.25 {
				t.Fatalf("unfit proba[%d] = %v, want 0.25", k, v)
			}
		}
		if p.Confidence != 0.25 {
			t.Fatalf("unfit confidence = %v, want 0.25", p.Confidence)
		}
	}
}

func TestTrainReturnsValidAccuracy(t *testing.T) {
	c := New()
	acc := c.Train(labeledBatch(200))
	if !c.Fitted() {
		t.Fatalf("classifier not fitted after Train")
	}
	if acc < 0 || acc > 1 {
		t.Fatalf("accuracy = %v, want within [0,1]", acc)
	}
	if got := c.Train(nil); got != 0 {
		t.Fatalf("Train(nil) = %v, want 0", got)
	}
}

func TestTrainConvergesOnSeparableBatches(t *testing.T) {
	c := New()
	var acc float64
	for i := 0; i < 20; i++ {
		acc = c.Train(labeledBatch(200))
	}
	// The label is a function of PM2.5 alone, so repeated passes over the
	// same distribution should separate the buckets well.
	if acc < 0.8 {
		t.Fatalf("accuracy after repeated training = %v, want >= 0.8", acc)
	}
}

func TestPredictProbaSumsToOne(t *testing.T) {
	c := New()
	c.Train(labeledBatch(200))
	preds := c.Predict(labeledBatch(50))
	for i, p := range preds {
		if len(p.Proba) != len(Classes) {
			t.Fatalf("proba length = %d, want %d", len(p.Proba), len(Classes))
		}
		var sum float64
		best := 0.0
		for _, v := range p.Proba {
			if v < 0 || v > 1 {
				t.Fatalf("proba out of range at %d: %v", i, v)
			}
			sum += v
			if v > best {
				best = v
			}
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("proba sum at %d = %v, want 1", i, sum)
		}
		if p.Confidence != best {
			t.Fatalf("confidence = %v, want max proba %v", p.Confidence, best)
		}
	}
}

func TestSoftmaxStability(t *testing.T) {
	out := softmax([]float64{1000, 1001, 1002, 1003})
	var sum float64
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("softmax produced %v on large scores", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("softmax sum = %v, want 1", sum)
	}
	if argmax(out) != 3 {
		t.Fatalf("argmax = %d, want 3", argmax(out))
	}
}

func TestRunningScalerMatchesBatchMoments(t *testing.T) {
	s := newRunningScaler(1)
	s.update([][]float64{{1}, {2}, {3}})
	s.update([][]float64{{4}, {5}})

	// Moments over {1..5}: mean 3, population std sqrt(2).
	if got := s.mean[0]; math.Abs(got-3) > 1e-9 {
		t.Fatalf("running mean = %v, want 3", got)
	}
	out := s.transform([]float64{3 + math.Sqrt(2)})
	if math.Abs(out[0]-1) > 1e-9 {
		t.Fatalf("transform one std above mean = %v, want 1", out[0])
	}
}

func TestRunningScalerConstantFeature(t *testing.T) {
	s := newRunningScaler(1)
	s.update([][]float64{{7}, {7}, {7}})
	out := s.transform([]float64{9})
	// Zero-variance features fall back to unit scale instead of dividing by
	// (near) zero.
	if math.Abs(out[0]-2) > 1e-6 {
		t.Fatalf("constant-feature transform = %v, want 2", out[0])
	}
}
