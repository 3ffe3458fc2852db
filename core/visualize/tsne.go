package visualize

import (
	"context"
	"math"
	"math/rand"
)

const (
	tsneDefaultIterations = 500
	tsnePerplexity        = 30.0
	tsneLearningRate      = 100.0
	tsneInitialMomentum   = 0.5
	tsneFinalMomentum     = 0.8
	tsneMomentumSwitch    = 250
	tsneExaggeration      = 4.0
	tsneExaggerationStop  = 100
	perplexityTolerance   = 1e-5
	perplexitySteps       = 50
)

// reduceTSNE runs gradient-descent t-SNE: gaussian input affinities tuned
// per point to a target perplexity, student-t output affinities, and a
// momentum gradient loop that reports the layout through emit after each
// iteration (the cadence throttle decides which snapshots actually go
// out).
func reduceTSNE(ctx context.Context, vectors [][]float64, iterations int, emit emitFunc) error {
	n := len(vectors)
	if iterations <= 0 {
		iterations = tsneDefaultIterations
	}

	p := affinities(pairwiseSquaredDistances(vectors))

	rng := rand.New(rand.NewSource(42))
	y := make([][2]float64, n)
	for i := range y {
		y[i][0] = rng.NormFloat64() * 1e-4
		y[i][1] = rng.NormFloat64() * 1e-4
	}
	velocity := make([][2]float64, n)

	num := make([][]float64, n)
	for i := range num {
		num[i] = make([]float64, n)
	}

	for iter := 0; iter < iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return context.Canceled
		}

		exaggeration := 1.0
		if iter < tsneExaggerationStop {
			exaggeration = tsneExaggeration
		}
		momentum := tsneInitialMomentum
		if iter >= tsneMomentumSwitch {
			momentum = tsneFinalMomentum
		}

		// Student-t output affinities.
		var qSum float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := y[i][0] - y[j][0]
				dy := y[i][1] - y[j][1]
				v := 1.0 / (1.0 + dx*dx + dy*dy)
				num[i][j] = v
				num[j][i] = v
				qSum += 2 * v
			}
		}
		if qSum == 0 {
			qSum = 1
		}

		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				q := num[i][j] / qSum
				mult := (exaggeration*p[i][j] - q) * num[i][j]
				gx += mult * (y[i][0] - y[j][0])
				gy += mult * (y[i][1] - y[j][1])
			}
			velocity[i][0] = momentum*velocity[i][0] - tsneLearningRate*4*gx
			velocity[i][1] = momentum*velocity[i][1] - tsneLearningRate*4*gy
		}
		for i := range y {
			y[i][0] += velocity[i][0]
			y[i][1] += velocity[i][1]
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

// affinities converts squared distances into symmetric, normalized input
// probabilities, binary-searching each row's gaussian bandwidth to hit
// the target perplexity.
func affinities(dist [][]float64) [][]float64 {
	n := len(dist)
	target := math.Log(math.Min(tsnePerplexity, float64(n-1)))

	p := make([][]float64, n)
	for i := range p {
		p[i] = make([]float64, n)
	}

	row := make([]float64, n)
	for i := 0; i < n; i++ {
		beta := 1.0
		betaMin := math.Inf(-1)
		betaMax := math.Inf(1)

		for step := 0; step < perplexitySteps; step++ {
			sum := rowAffinities(row, dist[i], i, beta)

			// Shannon entropy of the row distribution.
			var entropy float64
			for j := 0; j < n; j++ {
				if j == i || row[j] == 0 {
					continue
				}
				pj := row[j] / sum
				entropy -= pj * math.Log(pj)
			}

			diff := entropy - target
			if math.Abs(diff) < perplexityTolerance {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}

		sum := rowAffinities(row, dist[i], i, beta)
		for j := 0; j < n; j++ {
			if j != i {
				p[i][j] = row[j] / sum
			}
		}
	}

	// Symmetrize and normalize with a floor against vanishing gradients.
	total := 2 * float64(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := (p[i][j] + p[j][i]) / total
			v = math.Max(v, 1e-12)
			p[i][j] = v
			p[j][i] = v
		}
	}
	return p
}

// rowAffinities fills row with exp(-d*beta) against every other point and
// returns the row sum, floored to keep later divisions finite.
func rowAffinities(row, dist []float64, i int, beta float64) float64 {
	var sum float64
	for j := range row {
		if j == i {
			row[j] = 0
			continue
		}
		row[j] = math.Exp(-dist[j] * beta)
		sum += row[j]
	}
	if sum == 0 {
		return 1e-12
	}
	return sum
}

func layoutCoords(y [][2]float64) []Coordinate {
	coords := make([]Coordinate, len(y))
	for i, pos := range y {
		coords[i] = Coordinate{X: pos[0], Y: pos[1]}
	}
	return coords
}
