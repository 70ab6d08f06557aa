package gaussian

import (
	"math"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// eigenvalueTolerance absorbs rounding that pushes the eigenvalue of a
// singular covariance slightly below zero.
const eigenvalueTolerance = 1e-12

// BoxMuller turns two uniform draws from src into two independent standard
// normal variates. The first draw is reflected to (0, 1] so that its
// logarithm is finite.
func BoxMuller(src Source) (z1, z2 float64) {
	u1 := 1 - src.Float64()
	u2 := src.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	s, c := math.Sincos(2 * math.Pi * u2)
	return r * c, r * s
}

// Sample draws n points from N(mean, cov).
//
// The covariance is decomposed with linalg.EigenSym; each Box–Muller pair is
// scaled by the square roots of the eigenvalues, rotated into the
// eigenvector basis and shifted by mean. Every sample consumes exactly two
// draws from src. n == 0 yields an empty slice.
func Sample(src Source, n int, mean linalg.Point, cov linalg.Mat2) ([]linalg.Point, error) {
	if n < 0 {
		return nil, errors.NewValidationError("n", "sample count must be non-negative", n)
	}
	if src == nil {
		return nil, errors.NewValidationError("src", "random source is required", nil)
	}
	if !mean.IsFinite() {
		return nil, errors.NewValidationError("mean", "must be finite", mean)
	}

	eig, err := linalg.EigenSym(cov)
	if err != nil {
		return nil, err
	}
	var sd [2]float64
	for i, lambda := range eig.Values {
		if lambda < -eigenvalueTolerance*math.Max(1, math.Abs(eig.Values[0])) {
			return nil, errors.NewDegenerateCovarianceError("Sample", "negative eigenvalue", cov.Det(), cov)
		}
		sd[i] = math.Sqrt(math.Max(lambda, 0))
	}
	basis := eig.Basis()

	points := make([]linalg.Point, n)
	for i := range points {
		z1, z2 := BoxMuller(src)
		points[i] = basis.MulVec(linalg.Point{X: z1 * sd[0], Y: z2 * sd[1]}).Add(mean)
	}
	return points, nil
}
