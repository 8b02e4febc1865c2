package detector

import (
	"math"

	"github.com/jinank/smart-aqms/internal/models"
)

const zScoreEpsilon = 1e-6

// ZScoreStrategy is the cold-start path. Each reading is scored by the sum
// of its absolute z-scores for pm25 and co2 within the current batch, and
// flagged against a fixed threshold. No fitted state is required.
type ZScoreStrategy struct {
	Threshold float64
}

func (z *ZScoreStrategy) Name() string {
	return "zscore"
}

func (z *ZScoreStrategy) Score(batch []models.Reading) []Result {
	n := len(batch)
	if n == 0 {
		return nil
	}
	pm25 := make([]float64, n)
	co2 := make([]float64, n)
	for i, r := range batch {
		pm25[i] = r.PM25
		co2[i] = r.CO2PPM
	}
	pmMean, pmStd := meanStd(pm25)
	coMean, coStd := meanStd(co2)

	results := make([]Result, n)
	for i := range batch {
		score := math.Abs((pm25[i]-pmMean)/(pmStd+zScoreEpsilon)) +
			math.Abs((co2[i]-coMean)/(coStd+zScoreEpsilon))
		results[i] = Result{
			Score:     score,
			Anomalous: score > z.Threshold,
		}
	}
	return results
}

// meanStd returns the mean and sample standard deviation. A single-element
// series has zero deviation; the epsilon guard above keeps division safe.
func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if n < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
