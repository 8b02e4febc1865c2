package detector

import (
	"math"
	"math/rand"
	"sort"

	"github.com/jinank/smart-aqms/internal/models"
)

// forestStrategy is the warm path: one isolation forest per monitored
// feature, per-reading scores averaged across features, flagged against the
// 98th percentile of scores within the current batch. The flag rate is
// therefore roughly 2% per batch regardless of the absolute score level —
// the threshold adapts to drift instead of being pinned like the cold
// path's. That asymmetry is intentional.
type forestStrategy struct {
	pm25 *isolationForest
	co2  *isolationForest

	contamination float64
	trainCutoff   float64
}

const warmFlagPercentile = 98.0

func newForestStrategy(contamination float64, seed int64) *forestStrategy {
	if contamination <= 0 || contamination >= 1 {
		contamination = 0.03
	}
	return &forestStrategy{
		pm25:          newIsolationForest(100, 256, rand.New(rand.NewSource(seed))),
		co2:           newIsolationForest(100, 256, rand.New(rand.NewSource(seed+1))),
		contamination: contamination,
	}
}

func (f *forestStrategy) Name() string {
	return "iforest"
}

func (f *forestStrategy) fit(history []models.Reading) {
	pm25 := make([]float64, len(history))
	co2 := make([]float64, len(history))
	for i, r := range history {
		pm25[i] = r.PM25
		co2[i] = r.CO2PPM
	}
	f.pm25.fit(pm25)
	f.co2.fit(co2)

	// Training-score cutoff at the contamination quantile, kept for
	// diagnostics; flagging itself uses the per-batch percentile below.
	trainScores := make([]float64, len(history))
	for i := range history {
		trainScores[i] = (f.pm25.score(pm25[i]) + f.co2.score(co2[i])) / 2
	}
	f.trainCutoff = percentile(trainScores, 100*(1-f.contamination))
}

func (f *forestStrategy) Score(batch []models.Reading) []Result {
	n := len(batch)
	if n == 0 {
		return nil
	}
	scores := make([]float64, n)
	for i, r := range batch {
		scores[i] = (f.pm25.score(r.PM25) + f.co2.score(r.CO2PPM)) / 2
	}
	threshold := percentile(scores, warmFlagPercentile)

	results := make([]Result, n)
	for i, s := range scores {
		results[i] = Result{
			Score:     s,
			Anomalous: s > threshold,
		}
	}
	return results
}

// isolationForest is a univariate isolation forest. Values that isolate in
// few random splits sit far from the bulk of the training distribution and
// receive scores near 1; typical values score below 0.5.
type isolationForest struct {
	nTrees     int
	sampleSize int
	maxDepth   int
	rng        *rand.Rand

	trees   []*forestNode
	avgPath float64
}

type forestNode struct {
	split float64
	left  *forestNode
	right *forestNode
	size  int
}

func newIsolationForest(nTrees, sampleSize int, rng *rand.Rand) *isolationForest {
	return &isolationForest{
		nTrees:     nTrees,
		sampleSize: sampleSize,
		rng:        rng,
	}
}

func (f *isolationForest) fit(values []float64) {
	sampleSize := f.sampleSize
	if sampleSize > len(values) {
		sampleSize = len(values)
	}
	f.maxDepth = int(math.Ceil(math.Log2(math.Max(float64(sampleSize), 2))))
	f.trees = make([]*forestNode, f.nTrees)
	for i := 0; i < f.nTrees; i++ {
		indices := f.rng.Perm(len(values))[:sampleSize]
		sample := make([]float64, sampleSize)
		for j, idx := range indices {
			sample[j] = values[idx]
		}
		f.trees[i] = f.buildNode(sample, 0)
	}
	f.avgPath = averagePathLength(float64(sampleSize))
}

func (f *isolationForest) buildNode(values []float64, depth int) *forestNode {
	n := len(values)
	if depth >= f.maxDepth || n <= 1 {
		return &forestNode{size: n}
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if minVal == maxVal {
		return &forestNode{size: n}
	}
	split := minVal + f.rng.Float64()*(maxVal-minVal)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &forestNode{
		split: split,
		left:  f.buildNode(left, depth+1),
		right: f.buildNode(right, depth+1),
	}
}

func (f *isolationForest) score(x float64) float64 {
	if len(f.trees) == 0 || f.avgPath == 0 {
		return 0
	}
	var total float64
	for _, tree := range f.trees {
		total += pathLength(x, tree, 0)
	}
	avg := total / float64(len(f.trees))
	return math.Pow(2, -avg/f.avgPath)
}

func pathLength(x float64, n *forestNode, depth int) float64 {
	if n.left == nil && n.right == nil {
		return float64(depth) + averagePathLength(float64(n.size))
	}
	if x < n.split {
		return pathLength(x, n.left, depth+1)
	}
	return pathLength(x, n.right, depth+1)
}

// averagePathLength is the expected path length of an unsuccessful BST
// search: c(n) = 2*H(n-1) - 2*(n-1)/n.
func averagePathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	return 2*(math.Log(n-1)+0.5772156649) - 2*(n-1)/n
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
