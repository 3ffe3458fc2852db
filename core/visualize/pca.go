package visualize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// reducePCA projects the rows onto their top two principal components:
// center each column, take the thin SVD of the centered matrix, and scale
// the left singular vectors by their singular values. For one-dimensional
// inputs the second axis is zero.
func reducePCA(vectors [][]float64) ([]Coordinate, error) {
	n := len(vectors)
	d := len(vectors[0])

	data := mat.NewDense(n, d, nil)
	for i, row := range vectors {
		data.SetRow(i, row)
	}

	// Column centering.
	means := make([]float64, d)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, data)
		var sum float64
		for _, v := range col {
			sum += v
		}
		means[j] = sum / float64(n)
	}
	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, data.At(i, j)-means[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return nil, fmt.Errorf("pca: svd factorization failed")
	}

	var u mat.Dense
	svd.UTo(&u)
	sigma := svd.Values(nil)

	components := min(2, len(sigma))
	coords := make([]Coordinate, n)
	for i := 0; i < n; i++ {
		var c Coordinate
		if components >= 1 {
			c.X = u.At(i, 0) * sigma[0]
		}
		if components >= 2 {
			c.Y = u.At(i, 1) * sigma[1]
		}
		coords[i] = c
	}
	return coords, nil
}
