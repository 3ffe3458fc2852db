package visualize

import (
	"context"
)

// Algorithm selects the dimensionality-reduction method.
type Algorithm string

const (
	// AlgorithmPCA projects onto the top two principal components in a
	// single shot.
	AlgorithmPCA Algorithm = "pca"

	// AlgorithmUMAP runs an iterative attract/repulse embedding.
	AlgorithmUMAP Algorithm = "umap"

	// AlgorithmTSNE runs gradient-descent t-SNE.
	AlgorithmTSNE Algorithm = "tsne"
)

// IsValid returns true if the algorithm is a recognized value.
func (a Algorithm) IsValid() bool {
	switch a {
	case AlgorithmPCA, AlgorithmUMAP, AlgorithmTSNE:
		return true
	default:
		return false
	}
}

// String returns the string representation of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}

// emitFunc receives layout snapshots from a running algorithm. It returns
// false when the run is cancelled and the algorithm must stop. Calls with
// done=false may be dropped by the cadence throttle; the done=true call is
// always delivered.
type emitFunc func(coords []Coordinate, done bool) bool

// runAlgorithm dispatches to the selected reduction. Every algorithm
// emits exactly one final snapshot on success and preserves input row
// order in its output.
func runAlgorithm(ctx context.Context, algo Algorithm, vectors [][]float64, iterations int, emit emitFunc) error {
	switch algo {
	case AlgorithmPCA:
		coords, err := reducePCA(vectors)
		if err != nil {
			return err
		}
		if !emit(coords, true) {
			return context.Canceled
		}
		return nil
	case AlgorithmTSNE:
		return reduceTSNE(ctx, vectors, iterations, emit)
	case AlgorithmUMAP:
		return reduceUMAP(ctx, vectors, iterations, emit)
	default:
		// Unreachable: validated before the run starts.
		return context.Canceled
	}
}

// pairwiseSquaredDistances returns the dense n x n squared euclidean
// distance matrix shared by the iterative algorithms.
func pairwiseSquaredDistances(vectors [][]float64) [][]float64 {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d float64
			for k := range vectors[i] {
				diff := vectors[i][k] - vectors[j][k]
				d += diff * diff
			}
			dist[i][j] = d
			dist[j][i] = d
		}
	}
	return dist
}
