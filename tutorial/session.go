package tutorial

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// Session owns the state of the interactive panel: a dataset and the EM run
// fitted to it. NewData, Reset, Iterate and every read are serialized, so a
// Session can back concurrent UI callbacks.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	src    gaussian.Source
	logger log.Logger

	data gaussian.Dataset
	em   *mixture.EM
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSource injects the random source used for data and initialization.
func WithSource(src gaussian.Source) SessionOption {
	return func(s *Session) {
		s.src = src
	}
}

// WithLogger sets the session logger.
func WithLogger(logger log.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSource returns the random source selected by cfg.Seed.
func NewSource(cfg Config) gaussian.Source {
	if cfg.Seed < 0 {
		return gaussian.NewTimeSource()
	}
	return gaussian.NewSource(uint64(cfg.Seed))
}

// NewSession validates cfg and generates the first dataset.
func NewSession(cfg Config, opts ...SessionOption) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		logger: log.GetLoggerWithName("tutorial"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src = NewSource(cfg)
	}
	s.logger = s.logger.With(log.PanelKey, PanelInteractive)

	if err := s.NewData(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewData draws fresh random clusters and restarts EM from means perturbed
// around the generating means. On error the previous state is kept.
func (s *Session) NewData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs := gaussian.RandomClusterSpecs(s.src, s.cfg.Components)
	ds, err := gaussian.GenerateDataset(s.src, specs)
	if err != nil {
		return errors.Wrap(err, "new data")
	}
	means := make([]linalg.Point, len(specs))
	for k, spec := range specs {
		means[k] = spec.Mean
	}
	em, err := mixture.NewEM(ds.Points, s.initialParams(means),
		mixture.WithMaxIter(s.cfg.MaxIterations),
		mixture.WithLogger(s.logger),
	)
	if err != nil {
		return errors.Wrap(err, "new data")
	}

	s.data = ds
	s.em = em
	s.logger.Info("new data generated",
		log.ActionKey, log.ActionNewData,
		log.SamplesKey, ds.Len(),
		log.ClustersKey, ds.K,
		log.LogLikelihoodKey, em.LogLikelihood(),
	)
	return nil
}

// Reset keeps the data and restarts EM from means perturbed around the
// empirical cluster means.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.em.Restart(s.initialParams(s.data.ClusterMeans())); err != nil {
		return errors.Wrap(err, "reset")
	}
	s.logger.Info("session reset",
		log.ActionKey, log.ActionReset,
		log.LogLikelihoodKey, s.em.LogLikelihood(),
	)
	return nil
}

func (s *Session) initialParams(centres []linalg.Point) mixture.Params {
	return mixture.InitialParams(mixture.PerturbedMeans(s.src, centres, s.cfg.Perturbation))
}

// Iterate performs one EM step. Once the iteration budget is spent it
// returns an error wrapping errors.ErrMaxIterations and changes nothing.
func (s *Session) Iterate() (mixture.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.em.Step(); err != nil {
		return s.em.Snapshot(false), err
	}
	snap := s.em.Snapshot(false)
	s.logger.Info("iteration completed",
		log.ActionKey, log.ActionIterate,
		log.IterationKey, snap.Iteration,
		log.LogLikelihoodKey, snap.LogLikelihood,
	)
	return snap, nil
}

// CanIterate reports whether Iterate would run another step. A UI disables
// its iterate button when this is false.
func (s *Session) CanIterate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.em.Done()
}

// State is a consistent copy of the session taken under one lock.
type State struct {
	Data             gaussian.Dataset
	Snapshot         mixture.Snapshot
	Responsibilities [][]float64
	CanIterate       bool
}

// State returns a copy of the current dataset and EM state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Data: gaussian.Dataset{
			Points: append([]linalg.Point(nil), s.data.Points...),
			Labels: append([]int(nil), s.data.Labels...),
			K:      s.data.K,
		},
		Snapshot:         s.em.Snapshot(true),
		Responsibilities: s.em.Responsibilities(),
		CanIterate:       !s.em.Done(),
	}
}

// InteractiveFigures are the four figures of the interactive panel.
type InteractiveFigures struct {
	Data             chart.Figure
	Fit              chart.Figure
	Responsibilities chart.Figure
	Convergence      chart.Figure
	Parameters       string
}

// Figures renders st.
func (st State) Figures(cfg Config, theme chart.Theme) (InteractiveFigures, error) {
	fit, err := FitFigure(cfg, theme, st.Data.Points, st.Snapshot.Assignments, st.Snapshot.Params)
	if err != nil {
		return InteractiveFigures{}, err
	}
	return InteractiveFigures{
		Data:             DataFigure(cfg, st.Data),
		Fit:              fit,
		Responsibilities: ResponsibilityFigure(cfg, theme, st.Responsibilities),
		Convergence:      LikelihoodFigure(theme, st.Snapshot.History),
		Parameters:       ParameterText(st.Snapshot),
	}, nil
}

// Improvement returns the log-likelihood gain since the initial parameters.
func (st State) Improvement() float64 {
	h := st.Snapshot.History
	if len(h) == 0 {
		return math.NaN()
	}
	return h[len(h)-1] - h[0]
}
