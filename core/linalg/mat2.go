package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

const (
	// DeterminantTolerance is the smallest determinant a covariance may
	// have before it is treated as singular.
	DeterminantTolerance = 1e-15

	// SymmetryTolerance is the relative tolerance for m[0][1] == m[1][0].
	SymmetryTolerance = 1e-9
)

// Mat2 is a 2×2 matrix in row-major order: [[a b] [c d]].
type Mat2 [2][2]float64

// Identity returns the 2×2 identity matrix.
func Identity() Mat2 { return Mat2{{1, 0}, {0, 1}} }

// Diag returns the diagonal matrix diag(a, d).
func Diag(a, d float64) Mat2 { return Mat2{{a, 0}, {0, d}} }

// Sym returns the symmetric matrix [[a b] [b d]].
func Sym(a, b, d float64) Mat2 { return Mat2{{a, b}, {b, d}} }

// Det returns ad - bc.
func (m Mat2) Det() float64 { return m[0][0]*m[1][1] - m[0][1]*m[1][0] }

// Trace returns a + d.
func (m Mat2) Trace() float64 { return m[0][0] + m[1][1] }

// Transpose returns mᵀ.
func (m Mat2) Transpose() Mat2 { return Mat2{{m[0][0], m[1][0]}, {m[0][1], m[1][1]}} }

// Add returns m + n.
func (m Mat2) Add(n Mat2) Mat2 {
	return Mat2{
		{m[0][0] + n[0][0], m[0][1] + n[0][1]},
		{m[1][0] + n[1][0], m[1][1] + n[1][1]},
	}
}

// Scale returns s·m.
func (m Mat2) Scale(s float64) Mat2 {
	return Mat2{{s * m[0][0], s * m[0][1]}, {s * m[1][0], s * m[1][1]}}
}

// Mul returns the matrix product m·n.
func (m Mat2) Mul(n Mat2) Mat2 {
	return Mat2{
		{m[0][0]*n[0][0] + m[0][1]*n[1][0], m[0][0]*n[0][1] + m[0][1]*n[1][1]},
		{m[1][0]*n[0][0] + m[1][1]*n[1][0], m[1][0]*n[0][1] + m[1][1]*n[1][1]},
	}
}

// MulVec returns m·p.
func (m Mat2) MulVec(p Point) Point {
	return Point{m[0][0]*p.X + m[0][1]*p.Y, m[1][0]*p.X + m[1][1]*p.Y}
}

// QuadForm returns pᵀ·m·p.
func (m Mat2) QuadForm(p Point) float64 {
	return p.X*(m[0][0]*p.X+m[0][1]*p.Y) + p.Y*(m[1][0]*p.X+m[1][1]*p.Y)
}

// Inverse returns the cofactor inverse of m. A determinant whose magnitude
// does not exceed DeterminantTolerance is reported as a
// DegenerateCovarianceError.
func (m Mat2) Inverse() (Mat2, error) {
	det := m.Det()
	if math.IsNaN(det) || math.Abs(det) <= DeterminantTolerance {
		return Mat2{}, errors.NewDegenerateCovarianceError("Inverse", "matrix is singular", det, m)
	}
	inv := 1 / det
	return Mat2{
		{m[1][1] * inv, -m[0][1] * inv},
		{-m[1][0] * inv, m[0][0] * inv},
	}, nil
}

// IsFinite reports whether every entry is finite.
func (m Mat2) IsFinite() bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}

// IsSymmetric reports whether the off-diagonal entries agree within
// SymmetryTolerance relative to their magnitude.
func (m Mat2) IsSymmetric() bool {
	b, c := m[0][1], m[1][0]
	scale := math.Max(1, math.Max(math.Abs(b), math.Abs(c)))
	return math.Abs(b-c) <= SymmetryTolerance*scale
}

// Outer returns the outer product p·pᵀ.
func Outer(p Point) Mat2 {
	return Mat2{{p.X * p.X, p.X * p.Y}, {p.Y * p.X, p.Y * p.Y}}
}

// Rotation returns the counter-clockwise rotation matrix for theta radians.
func Rotation(theta float64) Mat2 {
	s, c := math.Sincos(theta)
	return Mat2{{c, -s}, {s, c}}
}

// Rotate returns R·m·Rᵀ where R rotates by theta radians. Rotating a
// covariance keeps its eigenvalues and turns its principal axes.
func (m Mat2) Rotate(theta float64) Mat2 {
	r := Rotation(theta)
	return r.Mul(m).Mul(r.Transpose())
}

// ValidateCovariance checks that m can be used as a covariance matrix:
// finite entries, symmetric, positive diagonal and a determinant above
// DeterminantTolerance. op names the calling operation in the error.
func ValidateCovariance(op string, m Mat2) error {
	det := m.Det()
	switch {
	case !m.IsFinite():
		return errors.NewDegenerateCovarianceError(op, "matrix has non-finite entries", det, m)
	case !m.IsSymmetric():
		return errors.NewDegenerateCovarianceError(op, "matrix is not symmetric", det, m)
	case m[0][0] <= 0 || m[1][1] <= 0:
		return errors.NewDegenerateCovarianceError(op, "diagonal entries must be positive", det, m)
	case det <= DeterminantTolerance:
		return errors.NewDegenerateCovarianceError(op, "determinant is not positive", det, m)
	}
	return nil
}

// SymDense converts m to a gonum symmetric matrix using the upper triangle.
func (m Mat2) SymDense() *mat.SymDense {
	return mat.NewSymDense(2, []float64{m[0][0], m[0][1], m[0][1], m[1][1]})
}

// FromSymmetric converts a 2×2 gonum symmetric matrix to Mat2.
func FromSymmetric(s mat.Symmetric) (Mat2, error) {
	if n := s.SymmetricDim(); n != 2 {
		return Mat2{}, errors.NewDimensionError("FromSymmetric", 2, n, 0)
	}
	return Mat2{{s.At(0, 0), s.At(0, 1)}, {s.At(1, 0), s.At(1, 1)}}, nil
}
