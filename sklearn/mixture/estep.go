package mixture

import (
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/core/parallel"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// ComputeResponsibilities is the E-step. Row i of the result holds the
// posterior probability of each component for points[i]:
//
//	r[i][j] = wⱼ·pdfⱼ(xᵢ) / Σₗ wₗ·pdfₗ(xᵢ)
//
// When the denominator is not positive (every density underflowed) the row
// is uniform 1/K. Rows are independent and are computed concurrently for
// large inputs; the result does not depend on scheduling.
func ComputeResponsibilities(points []linalg.Point, params Params) ([][]float64, error) {
	eval, err := NewEvaluator(params)
	if err != nil {
		return nil, errors.Wrap(err, "E-step")
	}
	k := params.K()

	resp := make([][]float64, len(points))
	parallel.ParallelizeWithThreshold(len(points), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := make([]float64, k)
			sum := eval.Weighted(points[i], row)
			normalizeRow(row, sum)
			resp[i] = row
		}
	})
	return resp, nil
}

func normalizeRow(row []float64, sum float64) {
	if !(sum > 0) {
		u := 1 / float64(len(row))
		for j := range row {
			row[j] = u
		}
		return
	}
	for j := range row {
		row[j] /= sum
	}
}

// ComputeLogLikelihood returns Σᵢ log(max(Σⱼ wⱼ·pdfⱼ(xᵢ), 1e-10)). The floor
// keeps a single far outlier from sending the total to -Inf.
func ComputeLogLikelihood(points []linalg.Point, params Params) (float64, error) {
	eval, err := NewEvaluator(params)
	if err != nil {
		return 0, errors.Wrap(err, "log-likelihood")
	}
	ll := 0.0
	for _, x := range points {
		ll += errors.StabilizeLog(eval.Density(x))
	}
	return ll, nil
}

// Assignments returns the index of the largest responsibility in each row.
// Ties go to the lower index.
func Assignments(resp [][]float64) []int {
	labels := make([]int, len(resp))
	for i, row := range resp {
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		labels[i] = best
	}
	return labels
}
