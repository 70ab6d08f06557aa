// Package geometry turns Gaussian parameters into drawable shapes: confidence
// ellipses around a component and value grids over a plotting window.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

const (
	// DefaultScale draws the ellipse at two standard deviations, roughly
	// the 95% contour of a bivariate normal.
	DefaultScale = 2.0

	// DefaultPoints is the number of boundary points of an ellipse.
	DefaultPoints = 100
)

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Axes describes the principal axes of an ellipse.
type Axes struct {
	// Major and Minor are the semi-axis lengths, Major >= Minor.
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`
	// Angle is the direction of the major axis in radians.
	Angle float64 `json:"angle"`
}

// EllipseAxes returns the semi-axes √λ·scale of the covariance ellipse and
// the direction of its major axis.
func EllipseAxes(cov linalg.Mat2, scale float64) (Axes, linalg.Eigen, error) {
	eig, err := linalg.EigenSym(cov)
	if err != nil {
		return Axes{}, linalg.Eigen{}, err
	}
	if eig.Values[1] < 0 {
		return Axes{}, linalg.Eigen{}, errors.NewDegenerateCovarianceError("ConfidenceEllipse", "negative eigenvalue", cov.Det(), cov)
	}
	return Axes{
		Major: math.Sqrt(eig.Values[0]) * scale,
		Minor: math.Sqrt(eig.Values[1]) * scale,
		Angle: eig.Angle(),
	}, eig, nil
}

// ConfidenceEllipse returns n points tracing the ellipse of constant density
// scale standard deviations from mean. The angles run over [0, 2π]
// inclusive, so the first and last points coincide and the result can be
// drawn as a closed polyline.
func ConfidenceEllipse(mean linalg.Point, cov linalg.Mat2, scale float64, n int) ([]linalg.Point, error) {
	if n < 2 {
		return nil, errors.NewValidationError("n", "an ellipse needs at least 2 points", n)
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, errors.NewValidationError("scale", "must be a finite non-negative number", scale)
	}
	axes, eig, err := EllipseAxes(cov, scale)
	if err != nil {
		return nil, err
	}
	basis := eig.Basis()

	thetas := Linspace(0, 2*math.Pi, n)
	points := make([]linalg.Point, n)
	for i, theta := range thetas {
		s, c := math.Sincos(theta)
		points[i] = basis.MulVec(linalg.Point{X: axes.Major * c, Y: axes.Minor * s}).Add(mean)
	}
	// Span can leave the last angle a rounding error short of 2π.
	points[n-1] = points[0]
	return points, nil
}
