package gaussian

import (
	"math"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
)

var log2Pi = math.Log(2 * math.Pi)

// Density is a bivariate normal with its inverse covariance and
// normalizing constant precomputed. Construct it with NewDensity.
type Density struct {
	mean    linalg.Point
	cov     linalg.Mat2
	inv     linalg.Mat2
	det     float64
	norm    float64
	logNorm float64
}

// NewDensity validates cov and prepares N(mean, cov) for repeated
// evaluation. A singular or otherwise invalid covariance is reported as a
// DegenerateCovarianceError.
func NewDensity(mean linalg.Point, cov linalg.Mat2) (*Density, error) {
	if err := linalg.ValidateCovariance("PDF", cov); err != nil {
		return nil, err
	}
	inv, err := cov.Inverse()
	if err != nil {
		return nil, err
	}
	det := cov.Det()
	return &Density{
		mean:    mean,
		cov:     cov,
		inv:     inv,
		det:     det,
		norm:    1 / (2 * math.Pi * math.Sqrt(det)),
		logNorm: -log2Pi - 0.5*math.Log(det),
	}, nil
}

// Mean returns the mean of the distribution.
func (d *Density) Mean() linalg.Point { return d.mean }

// Cov returns the covariance of the distribution.
func (d *Density) Cov() linalg.Mat2 { return d.cov }

// QuadForm returns the squared Mahalanobis distance (x-μ)ᵀΣ⁻¹(x-μ).
func (d *Density) QuadForm(x linalg.Point) float64 {
	return d.inv.QuadForm(x.Sub(d.mean))
}

// PDF returns the density at x.
func (d *Density) PDF(x linalg.Point) float64 {
	return d.norm * math.Exp(-0.5*d.QuadForm(x))
}

// LogPDF returns the log density at x.
func (d *Density) LogPDF(x linalg.Point) float64 {
	return d.logNorm - 0.5*d.QuadForm(x)
}

// PDF returns the density of N(mean, cov) at x:
// exp(-½(x-μ)ᵀΣ⁻¹(x-μ)) / (2π√det Σ).
func PDF(x, mean linalg.Point, cov linalg.Mat2) (float64, error) {
	d, err := NewDensity(mean, cov)
	if err != nil {
		return 0, err
	}
	return d.PDF(x), nil
}

// LogPDF returns the log density of N(mean, cov) at x.
func LogPDF(x, mean linalg.Point, cov linalg.Mat2) (float64, error) {
	d, err := NewDensity(mean, cov)
	if err != nil {
		return 0, err
	}
	return d.LogPDF(x), nil
}

// Mahalanobis returns the Mahalanobis distance between x and N(mean, cov).
func Mahalanobis(x, mean linalg.Point, cov linalg.Mat2) (float64, error) {
	d, err := NewDensity(mean, cov)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(d.QuadForm(x)), nil
}
