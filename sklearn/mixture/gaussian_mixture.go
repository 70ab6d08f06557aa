package mixture

import (
	"context"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/core/model"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

const modelVersion = "1.0.0"

// GaussianMixture is a scikit-learn style estimator wrapping EM for n×2
// input matrices. Unlike sklearn it always runs exactly maxIter EM steps.
type GaussianMixture struct {
	model.BaseEstimator

	nComponents int
	maxIter     int
	initMethod  string // "kmeans" or "random"
	randomState int64  // negative means seeded from the clock

	params  Params
	history []float64
	nIter   int

	mu     sync.RWMutex
	logger log.Logger
}

// GMMOption configures a GaussianMixture.
type GMMOption func(*GaussianMixture)

// WithNComponents sets the number of mixture components.
func WithNComponents(n int) GMMOption {
	return func(gm *GaussianMixture) {
		gm.nComponents = n
	}
}

// WithGMMMaxIter sets the number of EM iterations.
func WithGMMMaxIter(n int) GMMOption {
	return func(gm *GaussianMixture) {
		gm.maxIter = n
	}
}

// WithInitMethod selects how initial means are chosen: "kmeans" or "random".
func WithInitMethod(method string) GMMOption {
	return func(gm *GaussianMixture) {
		gm.initMethod = method
	}
}

// WithRandomState fixes the seed used for initialization.
func WithRandomState(seed int64) GMMOption {
	return func(gm *GaussianMixture) {
		gm.randomState = seed
	}
}

// WithGMMLogger sets the logger.
func WithGMMLogger(logger log.Logger) GMMOption {
	return func(gm *GaussianMixture) {
		gm.logger = logger
	}
}

// NewGaussianMixture creates an unfitted estimator. Defaults are three
// components, DefaultMaxIter iterations and k-means initialization.
func NewGaussianMixture(opts ...GMMOption) *GaussianMixture {
	gm := &GaussianMixture{
		nComponents: 3,
		maxIter:     DefaultMaxIter,
		initMethod:  "kmeans",
		randomState: -1,
		logger:      log.GetLoggerWithName("mixture"),
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

func (gm *GaussianMixture) validate(nSamples int) error {
	if gm.nComponents < 1 {
		return errors.NewValidationError("n_components", "must be positive", gm.nComponents)
	}
	if gm.nComponents > nSamples {
		return errors.NewValidationError("n_components", "must not exceed the number of samples", gm.nComponents)
	}
	if gm.maxIter < 0 {
		return errors.NewValidationError("max_iter", "must be non-negative", gm.maxIter)
	}
	switch gm.initMethod {
	case "kmeans", "random":
	default:
		return errors.NewValidationError("init_method", "must be 'kmeans' or 'random'", gm.initMethod)
	}
	return nil
}

func (gm *GaussianMixture) seed() int64 {
	if gm.randomState >= 0 {
		return gm.randomState
	}
	return time.Now().UnixNano() & math.MaxInt64
}

// Fit runs EM on X. y is ignored.
func (gm *GaussianMixture) Fit(X, y mat.Matrix) error {
	points, err := matrixPoints("Fit", X)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "GaussianMixture.Fit")
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.validate(len(points)); err != nil {
		return err
	}

	seed := gm.seed()
	var means []linalg.Point
	switch gm.initMethod {
	case "kmeans":
		means, err = KMeansMeans(points, gm.nComponents, seed)
	case "random":
		means, err = RandomMeans(gaussian.NewSource(uint64(seed)), points, gm.nComponents)
	}
	if err != nil {
		return err
	}

	em, err := NewEM(points, InitialParams(means),
		WithMaxIter(gm.maxIter),
		WithLogger(gm.logger),
	)
	if err != nil {
		return err
	}
	history, err := em.Run(context.Background())
	if err != nil {
		return err
	}

	gm.params = em.Params()
	gm.history = history
	gm.nIter = em.Iteration()
	gm.SetFitted()

	gm.logger.Debug("GaussianMixture fitted",
		log.ModelNameKey, "GaussianMixture",
		log.ComponentsKey, gm.nComponents,
		log.SamplesKey, len(points),
		log.RandomSeedKey, seed,
		log.LogLikelihoodKey, history[len(history)-1],
	)
	return nil
}

// FitPoints runs EM on a point slice.
func (gm *GaussianMixture) FitPoints(points []linalg.Point) error {
	return gm.Fit(pointsMatrix(points), nil)
}

// evaluator checks the fitted state and the input width.
func (gm *GaussianMixture) evaluator(method string, X mat.Matrix) (*Evaluator, []linalg.Point, error) {
	if err := gm.RequireFitted("GaussianMixture", method); err != nil {
		return nil, nil, err
	}
	points, err := matrixPoints(method, X)
	if err != nil {
		return nil, nil, err
	}
	eval, err := NewEvaluator(gm.params)
	if err != nil {
		return nil, nil, err
	}
	return eval, points, nil
}

// Predict returns the most probable component of every row as an n×1 matrix.
func (gm *GaussianMixture) Predict(X mat.Matrix) (mat.Matrix, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	eval, points, err := gm.evaluator("Predict", X)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(len(points), 1, nil)
	for i, p := range points {
		out.Set(i, 0, float64(eval.Classify(p)))
	}
	return out, nil
}

// PredictProba returns the n×K responsibility matrix.
func (gm *GaussianMixture) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.RequireFitted("GaussianMixture", "PredictProba"); err != nil {
		return nil, err
	}
	points, err := matrixPoints("PredictProba", X)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &mat.Dense{}, nil
	}
	resp, err := ComputeResponsibilities(points, gm.params)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(points), gm.params.K(), nil)
	for i, row := range resp {
		out.SetRow(i, row)
	}
	return out, nil
}

// ScoreSamples returns the log mixture density of every row as an n×1 matrix.
func (gm *GaussianMixture) ScoreSamples(X mat.Matrix) (mat.Matrix, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	eval, points, err := gm.evaluator("ScoreSamples", X)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(len(points), 1, nil)
	for i, p := range points {
		out.Set(i, 0, eval.LogDensity(p))
	}
	return out, nil
}

// Score returns the mean log density of the rows of X.
func (gm *GaussianMixture) Score(X mat.Matrix) (float64, error) {
	scores, err := gm.ScoreSamples(X)
	if err != nil {
		return 0, err
	}
	n, _ := scores.Dims()
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "GaussianMixture.Score")
	}
	return mat.Sum(scores) / float64(n), nil
}

// FitPredict fits X and returns the labels of its rows.
func (gm *GaussianMixture) FitPredict(X, y mat.Matrix) (mat.Matrix, error) {
	if err := gm.Fit(X, y); err != nil {
		return nil, err
	}
	return gm.Predict(X)
}

// Weights returns the fitted mixture weights.
func (gm *GaussianMixture) Weights() []float64 {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return append([]float64(nil), gm.params.Weights...)
}

// Means returns the fitted means as a K×2 matrix.
func (gm *GaussianMixture) Means() *mat.Dense {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	if gm.params.K() == 0 {
		return &mat.Dense{}
	}
	return pointsMatrix(gm.params.Means)
}

// Covariances returns the fitted covariance matrices.
func (gm *GaussianMixture) Covariances() []*mat.SymDense {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	out := make([]*mat.SymDense, len(gm.params.Covariances))
	for j, c := range gm.params.Covariances {
		out[j] = c.SymDense()
	}
	return out
}

// NIter returns the number of EM iterations of the last fit.
func (gm *GaussianMixture) NIter() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.nIter
}

// LogLikelihoodHistory returns the log-likelihood after every iteration of
// the last fit, starting with the initial parameters.
func (gm *GaussianMixture) LogLikelihoodHistory() []float64 {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return append([]float64(nil), gm.history...)
}

// Params returns a copy of the fitted parameters.
func (gm *GaussianMixture) Params() Params {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.params.Clone()
}

// GetParams returns the hyperparameters.
func (gm *GaussianMixture) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_components": gm.nComponents,
		"max_iter":     gm.maxIter,
		"init_method":  gm.initMethod,
		"random_state": gm.randomState,
	}
}

// ExportWeights returns the fitted state in the serialization format of
// core/model.
func (gm *GaussianMixture) ExportWeights() (*model.MixtureWeights, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if err := gm.RequireFitted("GaussianMixture", "ExportWeights"); err != nil {
		return nil, err
	}
	mw := &model.MixtureWeights{
		ModelType:            "GaussianMixture",
		Version:              modelVersion,
		Weights:              append([]float64(nil), gm.params.Weights...),
		Means:                make([][2]float64, gm.params.K()),
		Covariances:          make([][2][2]float64, gm.params.K()),
		LogLikelihoodHistory: append([]float64(nil), gm.history...),
		Hyperparameters:      gm.GetParams(),
		IsFitted:             true,
	}
	for j := range gm.params.Means {
		m := gm.params.Means[j]
		mw.Means[j] = [2]float64{m.X, m.Y}
		mw.Covariances[j] = gm.params.Covariances[j]
	}
	return mw, nil
}

// ImportWeights restores a state produced by ExportWeights.
func (gm *GaussianMixture) ImportWeights(mw *model.MixtureWeights) error {
	if mw == nil {
		return errors.NewValidationError("weights", "must not be nil", nil)
	}
	if err := mw.Validate(); err != nil {
		return err
	}
	if mw.ModelType != "GaussianMixture" {
		return errors.NewValidationError("model_type", "must be GaussianMixture", mw.ModelType)
	}
	if !mw.IsFitted {
		return errors.NewValidationError("is_fitted", "only fitted models can be imported", false)
	}

	p := Params{
		Weights:     append([]float64(nil), mw.Weights...),
		Means:       make([]linalg.Point, len(mw.Means)),
		Covariances: make([]linalg.Mat2, len(mw.Covariances)),
	}
	for j := range mw.Means {
		p.Means[j] = linalg.Point{X: mw.Means[j][0], Y: mw.Means[j][1]}
		p.Covariances[j] = linalg.Mat2(mw.Covariances[j])
	}
	if err := p.Validate(); err != nil {
		return err
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.params = p
	gm.nComponents = p.K()
	gm.history = append([]float64(nil), mw.LogLikelihoodHistory...)
	gm.nIter = max(len(gm.history)-1, 0)
	gm.SetFitted()
	return nil
}

// matrixPoints converts an n×2 matrix to points.
func matrixPoints(op string, X mat.Matrix) ([]linalg.Point, error) {
	if X == nil {
		return nil, errors.NewValidationError("X", "must not be nil", nil)
	}
	if d, ok := X.(*mat.Dense); ok && d.IsEmpty() {
		return nil, nil
	}
	rows, cols := X.Dims()
	if cols != 2 {
		return nil, errors.NewDimensionError(op, 2, cols, 1)
	}
	points := make([]linalg.Point, rows)
	for i := range points {
		points[i] = linalg.Point{X: X.At(i, 0), Y: X.At(i, 1)}
	}
	return points, nil
}

// pointsMatrix converts points to an n×2 matrix.
func pointsMatrix(points []linalg.Point) *mat.Dense {
	if len(points) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, 0, 2*len(points))
	for _, p := range points {
		data = append(data, p.X, p.Y)
	}
	return mat.NewDense(len(points), 2, data)
}

var (
	_ model.ProbabilisticClusterer = (*GaussianMixture)(nil)
	_ model.ParameterGetter        = (*GaussianMixture)(nil)
)
