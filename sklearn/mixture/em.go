package mixture

import (
	"context"
	"fmt"
	"math"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
)

const (
	// DefaultMaxIter is the iteration budget of an EM run.
	DefaultMaxIter = 10

	// DefaultDecreaseTolerance is the relative log-likelihood drop tolerated
	// before a LikelihoodDecreaseWarning is raised.
	DefaultDecreaseTolerance = 1e-6

	// convergenceGain is the relative gain of the last step above which a
	// run that exhausted its budget reports a ConvergenceWarning.
	convergenceGain = 1e-3
)

// EM is the state of a stepwise Expectation-Maximization run over a fixed
// dataset. Iteration 0 is the initial parameters with their responsibilities
// and log-likelihood; every Step runs an M-step followed by an E-step and
// appends the new log-likelihood to the history.
//
// EM is not safe for concurrent use. tutorial.Session serializes access.
type EM struct {
	points  []linalg.Point
	initial Params

	params    Params
	resp      [][]float64
	history   []float64
	iteration int

	maxIter     int
	decreaseTol float64
	logger      log.Logger
}

// Option configures an EM run.
type Option func(*EM)

// WithMaxIter sets the number of steps after which Step returns
// ErrMaxIterations.
func WithMaxIter(n int) Option {
	return func(em *EM) {
		em.maxIter = n
	}
}

// WithDecreaseTolerance sets the relative log-likelihood drop that is
// reported as a LikelihoodDecreaseWarning.
func WithDecreaseTolerance(tol float64) Option {
	return func(em *EM) {
		em.decreaseTol = tol
	}
}

// WithLogger sets the logger for step diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(em *EM) {
		em.logger = logger
	}
}

// NewEM validates initial, computes its responsibilities and records its
// log-likelihood as the first history entry.
func NewEM(points []linalg.Point, initial Params, opts ...Option) (*EM, error) {
	if len(points) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewEM")
	}
	em := &EM{
		points:      append([]linalg.Point(nil), points...),
		maxIter:     DefaultMaxIter,
		decreaseTol: DefaultDecreaseTolerance,
		logger:      log.GetLoggerWithName("mixture"),
	}
	for _, opt := range opts {
		opt(em)
	}
	if em.maxIter < 0 {
		return nil, errors.NewValidationError("max_iter", "must be non-negative", em.maxIter)
	}
	if em.decreaseTol < 0 || math.IsNaN(em.decreaseTol) {
		return nil, errors.NewValidationError("decrease_tolerance", "must be non-negative", em.decreaseTol)
	}
	em.logger = em.logger.With(log.ModelNameKey, "EM", log.ComponentsKey, initial.K(), log.SamplesKey, len(points))

	if err := em.Restart(initial); err != nil {
		return nil, err
	}
	return em, nil
}

// Restart discards the current run and starts again from initial on the
// same data. On error the previous state is kept.
func (em *EM) Restart(initial Params) error {
	if err := initial.Validate(); err != nil {
		return err
	}
	params := initial.Clone()
	resp, err := ComputeResponsibilities(em.points, params)
	if err != nil {
		return err
	}
	ll, err := ComputeLogLikelihood(em.points, params)
	if err != nil {
		return err
	}

	em.initial = initial.Clone()
	em.params = params
	em.resp = resp
	em.history = []float64{ll}
	em.iteration = 0

	em.logger.Debug("EM initialized", log.IterationKey, 0, log.LogLikelihoodKey, ll)
	return nil
}

// Reset returns to the initial parameters of the current run.
func (em *EM) Reset() error {
	return em.Restart(em.initial)
}

// Step performs one EM iteration and returns the new log-likelihood. Once
// the iteration budget is spent it returns ErrMaxIterations. A failing step
// leaves the state unchanged.
func (em *EM) Step() (float64, error) {
	if em.Done() {
		return 0, errors.Wrapf(errors.ErrMaxIterations, "EM stopped after %d iterations", em.iteration)
	}

	next := em.params.Clone()
	if err := UpdateParameters(em.points, em.resp, &next); err != nil {
		return 0, err
	}
	resp, err := ComputeResponsibilities(em.points, next)
	if err != nil {
		return 0, err
	}
	ll, err := ComputeLogLikelihood(em.points, next)
	if err != nil {
		return 0, err
	}
	if err := errors.CheckScalar("EM.Step", ll, em.iteration+1); err != nil {
		return 0, err
	}

	prev := em.history[len(em.history)-1]
	em.params = next
	em.resp = resp
	em.history = append(em.history, ll)
	em.iteration++

	if prev-ll > em.decreaseTol*math.Max(1, math.Abs(prev)) {
		errors.Warn(errors.NewLikelihoodDecreaseWarning(em.iteration, prev, ll))
	}
	em.logger.Debug("EM step completed",
		log.IterationKey, em.iteration,
		log.LogLikelihoodKey, ll,
		log.WeightsKey, em.params.Weights,
	)
	return ll, nil
}

// Run steps until the iteration budget is spent or ctx is cancelled and
// returns the log-likelihood history.
func (em *EM) Run(ctx context.Context) ([]float64, error) {
	for !em.Done() {
		if err := ctx.Err(); err != nil {
			return em.History(), errors.Wrap(err, "EM run cancelled")
		}
		if _, err := em.Step(); err != nil {
			return em.History(), err
		}
	}

	if n := len(em.history); n >= 2 {
		last, prev := em.history[n-1], em.history[n-2]
		if gain := last - prev; gain > convergenceGain*math.Max(1, math.Abs(prev)) {
			errors.Warn(errors.NewConvergenceWarning("EM", em.iteration,
				fmt.Sprintf("log-likelihood still improved by %.4g in the last iteration", gain)))
		}
	}
	em.logger.Info("EM run finished",
		log.IterationKey, em.iteration,
		log.LogLikelihoodKey, em.LogLikelihood(),
	)
	return em.History(), nil
}

// Done reports whether the iteration budget is spent.
func (em *EM) Done() bool { return em.iteration >= em.maxIter }

// Iteration returns the number of completed steps.
func (em *EM) Iteration() int { return em.iteration }

// MaxIter returns the iteration budget.
func (em *EM) MaxIter() int { return em.maxIter }

// Params returns a copy of the current parameters.
func (em *EM) Params() Params { return em.params.Clone() }

// InitialParams returns a copy of the parameters the run started from.
func (em *EM) InitialParams() Params { return em.initial.Clone() }

// Points returns a copy of the data.
func (em *EM) Points() []linalg.Point { return append([]linalg.Point(nil), em.points...) }

// Responsibilities returns a copy of the current responsibility matrix.
func (em *EM) Responsibilities() [][]float64 {
	out := make([][]float64, len(em.resp))
	for i, row := range em.resp {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Assignments returns the most responsible component of every point.
func (em *EM) Assignments() []int { return Assignments(em.resp) }

// LogLikelihood returns the latest log-likelihood.
func (em *EM) LogLikelihood() float64 { return em.history[len(em.history)-1] }

// History returns a copy of the log-likelihood history. Its length is
// Iteration()+1.
func (em *EM) History() []float64 { return append([]float64(nil), em.history...) }
