package mixture

import (
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Regularization is added to both diagonal entries of every re-estimated
// covariance.
const Regularization = 1e-6

// UpdateParameters is the M-step. It overwrites params in place from the
// responsibilities of the previous E-step:
//
//	Nⱼ = Σᵢ r[i][j]
//	wⱼ = Nⱼ / N
//	μⱼ = Σᵢ r[i][j]·xᵢ / Nⱼ
//	Σⱼ = Σᵢ r[i][j]·(xᵢ-μⱼ)(xᵢ-μⱼ)ᵀ / Nⱼ + εI
//
// The covariance is centred on the new mean. A component with Nⱼ == 0
// gets weight 0 and keeps its previous mean and covariance.
func UpdateParameters(points []linalg.Point, resp [][]float64, params *Params) error {
	if params == nil {
		return errors.NewValidationError("params", "must not be nil", nil)
	}
	n := len(points)
	if n == 0 {
		return errors.Wrap(errors.ErrEmptyData, "M-step")
	}
	if len(resp) != n {
		return errors.NewDimensionError("M-step", n, len(resp), 0)
	}
	k := params.K()
	if len(params.Means) != k || len(params.Covariances) != k {
		return errors.NewDimensionError("M-step", k, min(len(params.Means), len(params.Covariances)), 1)
	}
	for _, row := range resp {
		if len(row) != k {
			return errors.NewDimensionError("M-step", k, len(row), 1)
		}
	}

	for j := 0; j < k; j++ {
		nj := 0.0
		var weighted linalg.Point
		for i, x := range points {
			r := resp[i][j]
			nj += r
			weighted = weighted.Add(x.Scale(r))
		}
		params.Weights[j] = nj / float64(n)
		if nj == 0 {
			continue
		}

		mean := weighted.Scale(1 / nj)
		var sxx, sxy, syy float64
		for i, x := range points {
			r := resp[i][j]
			dx, dy := x.X-mean.X, x.Y-mean.Y
			sxx += r * dx * dx
			sxy += r * dx * dy
			syy += r * dy * dy
		}
		params.Means[j] = mean
		params.Covariances[j] = linalg.Sym(sxx/nj+Regularization, sxy/nj, syy/nj+Regularization)
	}
	return nil
}
