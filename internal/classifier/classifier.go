// Package classifier predicts an air-quality category per reading with an
// incrementally-trained multinomial logistic model behind a running feature
// scaler.
//
// Known weakness, kept deliberately: the training label is derived from the
// reading's own PM2.5 value, so the decision boundary is trivially
// recoverable from one input feature and the reported accuracy is an
// in-sample health signal, not an out-of-sample metric. The dashboard
// depends on that metric, so the behavior is documented here rather than
// changed.
package classifier

import (
	"math"

	"github.com/jinank/smart-aqms/internal/models"
)

// Classes is the fixed ordered label set. Probability vectors follow this
// order everywhere.
var Classes = []string{"Good", "Moderate", "Unhealthy", "Hazardous"}

// LabelFromPM25 maps a PM2.5 value to its AQI bucket.
func LabelFromPM25(pm25 float64) string {
	switch {
	case pm25 <= 12:
		return "Good"
	case pm25 <= 35:
		return "Moderate"
	case pm25 <= 55:
		return "Unhealthy"
	default:
		return "Hazardous"
	}
}

func labelIndex(pm25 float64) int {
	switch {
	case pm25 <= 12:
		return 0
	case pm25 <= 35:
		return 1
	case pm25 <= 55:
		return 2
	default:
		return 3
	}
}

// Prediction is one per-reading classifier output.
type Prediction struct {
	Label      string
	Proba      []float64
	Confidence float64
}

const (
	featureDims   = 5
	learningRate  = 0.05
	fullFitEpochs = 10
)

// Classifier is single-owner mutable state: Train and Predict must only be
// called from the one pipeline loop in progress.
type Classifier struct {
	scaler  *runningScaler
	weights [][]float64 // [class][featureDims+1], last entry is the bias
	fitted  bool
}

func New() *Classifier {
	weights := make([][]float64, len(Classes))
	for k := range weights {
		weights[k] = make([]float64, featureDims+1)
	}
	return &Classifier{
		scaler:  newRunningScaler(featureDims),
		weights: weights,
	}
}

// Fitted reports whether Train has been called at least once.
func (c *Classifier) Fitted() bool {
	return c.fitted
}

// Train derives each reading's label from its PM2.5 value, performs a full
// fit on first call and a single incremental pass afterwards, and returns
// the in-batch training accuracy.
func (c *Classifier) Train(batch []models.Reading) float64 {
	if len(batch) == 0 {
		return 0
	}
	rows := make([][]float64, len(batch))
	labels := make([]int, len(batch))
	for i, r := range batch {
		rows[i] = r.Features()
		labels[i] = labelIndex(r.PM25)
	}

	c.scaler.update(rows)
	epochs := 1
	if !c.fitted {
		epochs = fullFitEpochs
	}
	for e := 0; e < epochs; e++ {
		c.sgdPass(rows, labels)
	}
	c.fitted = true

	correct := 0
	for i, row := range rows {
		proba := c.proba(row)
		if argmax(proba) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(batch))
}

// Predict returns per-reading class probabilities and the argmax label. An
// unfit model yields a uniform distribution rather than failing.
func (c *Classifier) Predict(batch []models.Reading) []Prediction {
	out := make([]Prediction, len(batch))
	if !c.fitted {
		uniform := 1.0 / float64(len(Classes))
		for i := range batch {
			proba := make([]float64, len(Classes))
			for k := range proba {
				proba[k] = uniform
			}
			out[i] = Prediction{Label: Classes[0], Proba: proba, Confidence: uniform}
		}
		return out
	}
	for i, r := range batch {
		proba := c.proba(r.Features())
		best := argmax(proba)
		out[i] = Prediction{
			Label:      Classes[best],
			Proba:      proba,
			Confidence: proba[best],
		}
	}
	return out
}

// sgdPass runs one stochastic gradient step per sample on the log-loss
// objective.
func (c *Classifier) sgdPass(rows [][]float64, labels []int) {
	for i, row := range rows {
		x := c.augment(row)
		proba := softmax(c.scores(x))
		for k := range c.weights {
			g := proba[k]
			if k == labels[i] {
				g -= 1
			}
			for j := range x {
				c.weights[k][j] -= learningRate * g * x[j]
			}
		}
	}
}

func (c *Classifier) proba(row []float64) []float64 {
	return softmax(c.scores(c.augment(row)))
}

// augment scales the raw features and appends the bias input.
func (c *Classifier) augment(row []float64) []float64 {
	scaled := c.scaler.transform(row)
	return append(scaled, 1)
}

func (c *Classifier) scores(x []float64) []float64 {
	scores := make([]float64, len(c.weights))
	for k, w := range c.weights {
		var z float64
		for j := range x {
			z += w[j] * x[j]
		}
		scores[k] = z
	}
	return scores
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, z := range scores[1:] {
		if z > max {
			max = z
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for k, z := range scores {
		out[k] = math.Exp(z - max)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}

func argmax(values []float64) int {
	best := 0
	for k, v := range values {
		if v > values[best] {
			best = k
		}
	}
	return best
}
