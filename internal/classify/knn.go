package classify

import (
	"errors"
	"image"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ErrNoSamples is returned when a model without samples is asked to classify.
var ErrNoSamples = errors.New("classifier has no samples")

// KNN is a k-nearest-neighbour classifier over sample vectors. It is safe for
// concurrent use: samples may be added while other goroutines predict.
type KNN struct {
	k    int
	size int

	mu      sync.RWMutex
	samples [][]float64
	labels  []int
}

// NewKNN creates an empty model voting over the k nearest samples, with
// samples scaled to size x size.
func NewKNN(k, size int) *KNN {
	if k < 1 {
		k = 1
	}
	if size <= 0 {
		size = DefaultSampleSize
	}
	return &KNN{k: k, size: size}
}

// Add stores a labelled sample found at position at of its line.
func (m *KNN) Add(sample image.Image, at image.Point, label int) {
	vec := SampleVector(sample, at, m.size)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, vec)
	m.labels = append(m.labels, label)
}

// Len returns the number of stored samples.
func (m *KNN) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.samples)
}

// K returns the number of neighbours that vote.
func (m *KNN) K() int { return m.k }

// Predict implements shapes.Classifier. An empty model predicts 0.
func (m *KNN) Predict(sample image.Image, at image.Point) int {
	label, err := m.Classify(SampleVector(sample, at, m.size))
	if err != nil {
		return 0
	}
	return label
}

// Classify returns the majority label among the k samples nearest to vec by
// Euclidean distance. A tied vote goes to the label with the smaller summed
// distance, then to the lower label.
func (m *KNN) Classify(vec []float64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.samples) == 0 {
		return 0, ErrNoSamples
	}

	type neighbour struct {
		label    int
		distance float64
	}
	nearest := make([]neighbour, 0, len(m.samples))
	for i, s := range m.samples {
		if len(s) != len(vec) {
			continue
		}
		nearest = append(nearest, neighbour{m.labels[i], floats.Distance(vec, s, 2)})
	}
	if len(nearest) == 0 {
		return 0, ErrNoSamples
	}
	sort.SliceStable(nearest, func(i, j int) bool { return nearest[i].distance < nearest[j].distance })
	if len(nearest) > m.k {
		nearest = nearest[:m.k]
	}

	votes := make(map[int]int)
	sums := make(map[int]float64)
	for _, n := range nearest {
		votes[n.label]++
		sums[n.label] += n.distance
	}

	best, bestVotes, bestSum := 0, 0, 0.0
	for label, v := range votes {
		switch {
		case v > bestVotes,
			v == bestVotes && sums[label] < bestSum,
			v == bestVotes && sums[label] == bestSum && label < best:
			best, bestVotes, bestSum = label, v, sums[label]
		}
	}
	return best, nil
}
