package visualize

import (
	"context"
	"math"
	"math/rand"
	"sort"
)

const (
	umapDefaultEpochs   = 300
	umapNeighbors       = 15
	umapNegativeSamples = 5

	// Curve parameters fitted for min_dist=0.1, the umap-learn default.
	umapA = 1.577
	umapB = 0.895
)

// reduceUMAP runs a sampling-based attract/repulse embedding over the
// k-nearest-neighbor graph of the input: each epoch pulls every point
// toward its graph neighbors and pushes it away from a few random
// negatives, with a linearly decaying step size. The layout starts from
// the PCA projection so early snapshots are already oriented.
func reduceUMAP(ctx context.Context, vectors [][]float64, epochs int, emit emitFunc) error {
	n := len(vectors)
	if epochs <= 0 {
		epochs = umapDefaultEpochs
	}

	neighbors := nearestNeighborLists(pairwiseSquaredDistances(vectors), umapNeighbors)

	initial, err := reducePCA(vectors)
	if err != nil {
		return err
	}
	y := make([][2]float64, n)
	for i, c := range initial {
		y[i][0] = c.X
		y[i][1] = c.Y
	}
	rescaleLayout(y, 10)

	rng := rand.New(rand.NewSource(42))

	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return context.Canceled
		}

		alpha := 1.0 - float64(epoch)/float64(epochs)

		for i := 0; i < n; i++ {
			for _, j := range neighbors[i] {
				attract(&y[i], &y[j], alpha)
				for s := 0; s < umapNegativeSamples; s++ {
					k := rng.Intn(n)
					if k == i {
						continue
					}
					repulse(&y[i], &y[k], alpha)
				}
			}
		}

		if !emit(layoutCoords(y), false) {
			return context.Canceled
		}
	}

	if !emit(layoutCoords(y), true) {
		return context.Canceled
	}
	return nil
}

func attract(a, b *[2]float64, alpha float64) {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	d2 := dx*dx + dy*dy
	if d2 <= 0 {
		return
	}
	coeff := -2 * umapA * umapB * math.Pow(d2, umapB-1) / (1 + umapA*math.Pow(d2, umapB))
	a[0] += alpha * clipGrad(coeff*dx)
	a[1] += alpha * clipGrad(coeff*dy)
	b[0] -= alpha * clipGrad(coeff*dx)
	b[1] -= alpha * clipGrad(coeff*dy)
}

func repulse(a, b *[2]float64, alpha float64) {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	d2 := dx*dx + dy*dy
	coeff := 2 * umapB / ((0.001 + d2) * (1 + umapA*math.Pow(d2, umapB)))
	a[0] += alpha * clipGrad(coeff*dx)
	a[1] += alpha * clipGrad(coeff*dy)
}

// clipGrad bounds a single gradient component, matching the reference
// implementation's clamp.
func clipGrad(v float64) float64 {
	if v > 4 {
		return 4
	}
	if v < -4 {
		return -4
	}
	return v
}

// nearestNeighborLists returns the k nearest neighbor indices per row,
// self excluded.
func nearestNeighborLists(dist [][]float64, k int) [][]int {
	n := len(dist)
	if k >= n {
		k = n - 1
	}

	lists := make([][]int, n)
	order := make([]int, n)
	for i := 0; i < n; i++ {
		for j := range order {
			order[j] = j
		}
		row := dist[i]
		sort.SliceStable(order, func(a, b int) bool {
			return row[order[a]] < row[order[b]]
		})

		list := make([]int, 0, k)
		for _, j := range order {
			if j == i {
				continue
			}
			list = append(list, j)
			if len(list) == k {
				break
			}
		}
		lists[i] = list
	}
	return lists
}

// rescaleLayout scales positions into [-extent, extent] around the origin
// so gradient steps start at a sane magnitude regardless of input scale.
func rescaleLayout(y [][2]float64, extent float64) {
	var maxAbs float64
	for _, pos := range y {
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(pos[0]), math.Abs(pos[1])))
	}
	if maxAbs == 0 {
		return
	}
	scale := extent / maxAbs
	for i := range y {
		y[i][0] *= scale
		y[i][1] *= scale
	}
}
