package mixture

import (
	"math"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// Params holds the parameters of a K-component bivariate Gaussian mixture.
// The three slices are parallel and have length K.
type Params struct {
	Weights     []float64      `json:"weights"`
	Means       []linalg.Point `json:"means"`
	Covariances []linalg.Mat2  `json:"covariances"`
}

// K returns the number of components.
func (p Params) K() int { return len(p.Weights) }

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	return Params{
		Weights:     append([]float64(nil), p.Weights...),
		Means:       append([]linalg.Point(nil), p.Means...),
		Covariances: append([]linalg.Mat2(nil), p.Covariances...),
	}
}

// Validate checks that the slices agree in length, the weights are finite
// and non-negative with a positive sum, the means are finite and every
// covariance is usable. Weights are not required to sum exactly to one.
func (p Params) Validate() error {
	k := p.K()
	if k == 0 {
		return errors.NewValidationError("weights", "at least one component is required", 0)
	}
	if len(p.Means) != k {
		return errors.NewDimensionError("Params.Validate", k, len(p.Means), 0)
	}
	if len(p.Covariances) != k {
		return errors.NewDimensionError("Params.Validate", k, len(p.Covariances), 0)
	}

	total := 0.0
	for j, w := range p.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.NewValidationError("weights", "must be finite and non-negative", p.Weights[j])
		}
		total += w
	}
	if total <= 0 {
		return errors.NewValidationError("weights", "must have a positive sum", total)
	}

	for j, m := range p.Means {
		if !m.IsFinite() {
			return errors.NewValidationError("means", "must be finite", p.Means[j])
		}
	}
	for j, c := range p.Covariances {
		if err := linalg.ValidateCovariance("Params.Validate", c); err != nil {
			return errors.Wrapf(err, "component %d", j)
		}
	}
	return nil
}

// densities prepares one Density per component.
func (p Params) densities() ([]*gaussian.Density, error) {
	if len(p.Means) != p.K() || len(p.Covariances) != p.K() {
		return nil, errors.NewDimensionError("densities", p.K(), min(len(p.Means), len(p.Covariances)), 0)
	}
	out := make([]*gaussian.Density, p.K())
	for j := range out {
		d, err := gaussian.NewDensity(p.Means[j], p.Covariances[j])
		if err != nil {
			return nil, errors.Wrapf(err, "component %d", j)
		}
		out[j] = d
	}
	return out, nil
}

// Evaluator evaluates a fixed mixture at arbitrary points. It is safe for
// concurrent use.
type Evaluator struct {
	weights   []float64
	densities []*gaussian.Density
}

// NewEvaluator validates the covariances of p once so that the mixture can
// be evaluated many times, e.g. over a plotting grid.
func NewEvaluator(p Params) (*Evaluator, error) {
	dens, err := p.densities()
	if err != nil {
		return nil, err
	}
	return &Evaluator{weights: append([]float64(nil), p.Weights...), densities: dens}, nil
}

// Weighted writes wⱼ·pdfⱼ(x) into dst and returns their sum.
func (e *Evaluator) Weighted(x linalg.Point, dst []float64) float64 {
	sum := 0.0
	for j, d := range e.densities {
		dst[j] = e.weights[j] * d.PDF(x)
		sum += dst[j]
	}
	return sum
}

// Density returns Σⱼ wⱼ·pdfⱼ(x).
func (e *Evaluator) Density(x linalg.Point) float64 {
	sum := 0.0
	for j, d := range e.densities {
		sum += e.weights[j] * d.PDF(x)
	}
	return sum
}

// LogDensity returns log Σⱼ wⱼ·pdfⱼ(x) computed with the log-sum-exp trick,
// so it stays finite far from every component.
func (e *Evaluator) LogDensity(x linalg.Point) float64 {
	best := math.Inf(-1)
	terms := make([]float64, len(e.densities))
	for j, d := range e.densities {
		terms[j] = math.Log(e.weights[j]) + d.LogPDF(x)
		if terms[j] > best {
			best = terms[j]
		}
	}
	if math.IsInf(best, -1) {
		return best
	}
	sum := 0.0
	for _, t := range terms {
		sum += math.Exp(t - best)
	}
	return best + math.Log(sum)
}

// Classify returns the component with the largest wⱼ·pdfⱼ(x). Ties go to
// the lower index.
func (e *Evaluator) Classify(x linalg.Point) int {
	best, bestIdx := math.Inf(-1), 0
	for j, d := range e.densities {
		if v := e.weights[j] * d.PDF(x); v > best {
			best, bestIdx = v, j
		}
	}
	return bestIdx
}
