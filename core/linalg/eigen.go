package linalg

import (
	"math"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// negativeRadicandTolerance bounds how far below zero the discriminant
// radicand may fall from rounding before the input is rejected.
const negativeRadicandTolerance = 1e-12

// Eigen holds the eigen decomposition of a symmetric 2×2 matrix.
// Values[0] >= Values[1], and Vectors[i] is the unit eigenvector for Values[i].
type Eigen struct {
	Values  [2]float64 `json:"values"`
	Vectors [2]Point   `json:"vectors"`
}

// Basis returns the matrix whose columns are the eigenvectors.
func (e Eigen) Basis() Mat2 {
	return Mat2{
		{e.Vectors[0].X, e.Vectors[1].X},
		{e.Vectors[0].Y, e.Vectors[1].Y},
	}
}

// Reconstruct returns λ₁·v₁v₁ᵀ + λ₂·v₂v₂ᵀ.
func (e Eigen) Reconstruct() Mat2 {
	return Outer(e.Vectors[0]).Scale(e.Values[0]).Add(Outer(e.Vectors[1]).Scale(e.Values[1]))
}

// Angle returns the direction of the major axis in radians.
func (e Eigen) Angle() float64 {
	return math.Atan2(e.Vectors[0].Y, e.Vectors[0].X)
}

// EigenSym computes the closed-form eigen decomposition of the symmetric
// matrix m = [[a b] [c d]].
//
// The eigenvalues are (trace ± √((a-d)² + 4bc)) / 2. For a non-diagonal
// matrix each eigenvector is taken from whichever of (λ-d, c) and (b, λ-a)
// has the larger norm, both being exact eigenvectors of a symmetric matrix.
// A diagonal matrix gets the standard basis, ordered so that each vector is
// paired with its own diagonal entry.
//
// Eigenvalues may be negative when m is not positive semi-definite; callers
// that need a covariance check Values themselves. Non-finite or asymmetric
// input, a discriminant that is clearly negative, and a zero-norm
// eigenvector are reported as DegenerateCovarianceError.
func EigenSym(m Mat2) (Eigen, error) {
	if !m.IsFinite() {
		return Eigen{}, errors.NewDegenerateCovarianceError("EigenSym", "matrix has non-finite entries", m.Det(), m)
	}
	if !m.IsSymmetric() {
		return Eigen{}, errors.NewDegenerateCovarianceError("EigenSym", "matrix is not symmetric", m.Det(), m)
	}

	a, b, c, d := m[0][0], m[0][1], m[1][0], m[1][1]
	trace := a + d
	diff := a - d
	radicand := diff*diff + 4*b*c
	if radicand < 0 {
		if radicand < -negativeRadicandTolerance*math.Max(1, trace*trace) {
			return Eigen{}, errors.NewDegenerateCovarianceError("EigenSym", "negative discriminant", m.Det(), m)
		}
		radicand = 0
	}
	disc := math.Sqrt(radicand)

	var e Eigen
	e.Values[0] = (trace + disc) / 2
	e.Values[1] = (trace - disc) / 2

	if b == 0 && c == 0 {
		if a >= d {
			e.Vectors = [2]Point{{1, 0}, {0, 1}}
		} else {
			e.Vectors = [2]Point{{0, 1}, {1, 0}}
		}
		return e, nil
	}

	for i, lambda := range e.Values {
		u := Point{lambda - d, c}
		w := Point{b, lambda - a}
		v := u
		if w.Norm() > u.Norm() {
			v = w
		}
		n := v.Norm()
		if n == 0 || math.IsNaN(n) {
			return Eigen{}, errors.NewDegenerateCovarianceError("EigenSym", "zero-norm eigenvector", m.Det(), m)
		}
		e.Vectors[i] = v.Scale(1 / n)
	}
	return e, nil
}
