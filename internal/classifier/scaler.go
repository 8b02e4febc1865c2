package classifier

import "math"

// runningScaler standardizes features to zero mean and unit variance, with
// moments that can be updated one batch at a time so later batches never
// require a replay of earlier ones.
type runningScaler struct {
	n    float64
	mean []float64
	m2   []float64
}

func newRunningScaler(dims int) *runningScaler {
	return &runningScaler{
		mean: make([]float64, dims),
		m2:   make([]float64, dims),
	}
}

// update merges one batch into the running moments (Chan et al. pairwise
// combination, the same scheme sklearn's partial_fit uses).
func (s *runningScaler) update(rows [][]float64) {
	nb := float64(len(rows))
	if nb == 0 {
		return
	}
	dims := len(s.mean)
	batchMean := make([]float64, dims)
	batchM2 := make([]float64, dims)
	for _, row := range rows {
		for j := 0; j < dims; j++ {
			batchMean[j] += row[j]
		}
	}
	for j := 0; j < dims; j++ {
		batchMean[j] /= nb
	}
	for _, row := range rows {
		for j := 0; j < dims; j++ {
			d := row[j] - batchMean[j]
			batchM2[j] += d * d
		}
	}
	total := s.n + nb
	for j := 0; j < dims; j++ {
		delta := batchMean[j] - s.mean[j]
		s.mean[j] += delta * nb / total
		s.m2[j] += batchM2[j] + delta*delta*s.n*nb/total
	}
	s.n = total
}

func (s *runningScaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		std := 0.0
		if s.n > 0 {
			std = math.Sqrt(s.m2[j] / s.n)
		}
		if std < 1e-10 {
			std = 1.0
		}
		out[j] = (v - s.mean[j]) / std
	}
	return out
}
