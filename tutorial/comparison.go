package tutorial

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/geometry"
	"github.com/YuminosukeSato/gmmtutor/metrics"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/sklearn/cluster"
	"github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// baseVariance is the horizontal variance of both comparison clusters
// before rotation.
const baseVariance = 0.5

// Comparison is the K-Means versus GMM panel: two equally weighted,
// elongated clusters controlled by separation, stretch and rotation sliders.
// Stretch and rotation are independent; the covariance is always
// R(θ)·diag(0.5, stretch)·R(θ)ᵀ.
type Comparison struct {
	mu      sync.Mutex
	sliders []Slider
	cfg     Config
	src     gaussian.Source
	seed    int64
	logger  log.Logger
}

// NewComparison creates the panel at the slider positions of cfg.
func NewComparison(cfg Config, src gaussian.Source) *Comparison {
	seed := cfg.Seed
	if seed < 0 {
		seed = 0
	}
	return &Comparison{
		sliders: ComparisonSliders(cfg.Comparison),
		cfg:     cfg,
		src:     src,
		seed:    seed,
		logger:  log.GetLoggerWithName("tutorial").With(log.PanelKey, PanelComparison),
	}
}

// Sliders returns the current slider descriptors.
func (c *Comparison) Sliders() []Slider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Slider(nil), c.sliders...)
}

// Set moves slider name to value.
func (c *Comparison) Set(name string, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.sliders {
		if c.sliders[i].Name != name {
			continue
		}
		if err := c.sliders[i].Check(value); err != nil {
			return err
		}
		c.sliders[i].Value = value
		c.logger.Debug("slider moved", "slider", name, "value", value)
		return nil
	}
	return errors.NewValidationError("slider", "unknown slider", name)
}

func (c *Comparison) value(name string) float64 {
	for _, s := range c.sliders {
		if s.Name == name {
			return s.Value
		}
	}
	return math.NaN()
}

// Params returns the generating mixture at the current slider positions.
func (c *Comparison) Params() mixture.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params()
}

func (c *Comparison) params() mixture.Params {
	sep := c.value(SliderSeparation)
	theta := c.value(SliderRotation) * math.Pi / 180
	cov := linalg.Diag(baseVariance, c.value(SliderStretch)).Rotate(theta)
	return mixture.Params{
		Weights:     []float64{0.5, 0.5},
		Means:       []linalg.Point{{X: -sep / 2}, {X: sep / 2}},
		Covariances: []linalg.Mat2{cov, cov},
	}
}

// ComparisonResult holds one evaluation of the panel.
type ComparisonResult struct {
	Params        mixture.Params
	Data          gaussian.Dataset
	KMeansLabels  []int
	KMeansCenters []linalg.Point
	// GMMLabels classifies each point by the larger weighted density.
	GMMLabels []int
	// Decision is the GMM label over the plotting window, Z[row=y][col=x].
	Decision  geometry.Grid
	KMeansARI float64
	GMMARI    float64
	// Accuracies are the best-permutation fraction of correct labels.
	KMeansAccuracy float64
	GMMAccuracy    float64
}

// Compute samples the clusters, runs K-Means with k=2 and classifies the
// window with the generating mixture.
func (c *Comparison) Compute() (ComparisonResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.params()
	specs := make([]gaussian.ClusterSpec, p.K())
	for j := range specs {
		specs[j] = gaussian.ClusterSpec{N: c.cfg.Comparison.PointsPerCluster, Mean: p.Means[j], Cov: p.Covariances[j]}
	}
	ds, err := gaussian.GenerateDataset(c.src, specs)
	if err != nil {
		return ComparisonResult{}, errors.Wrap(err, "comparison data")
	}

	km := cluster.NewKMeans(
		cluster.WithKMeansNClusters(p.K()),
		cluster.WithKMeansRandomState(c.seed),
	)
	if err := km.FitPoints(ds.Points); err != nil {
		return ComparisonResult{}, errors.Wrap(err, "comparison k-means")
	}

	eval, err := mixture.NewEvaluator(p)
	if err != nil {
		return ComparisonResult{}, err
	}
	gmmLabels := make([]int, len(ds.Points))
	for i, x := range ds.Points {
		gmmLabels[i] = eval.Classify(x)
	}
	r := c.cfg.AxisRange
	decision := geometry.ClassifyGrid(geometry.SquareWindow(-r, r, c.cfg.GridSize), eval.Classify)

	res := ComparisonResult{
		Params:        p,
		Data:          ds,
		KMeansLabels:  km.Labels(),
		KMeansCenters: km.CenterPoints(),
		GMMLabels:     gmmLabels,
		Decision:      decision,
	}
	if res.KMeansARI, err = metrics.AdjustedRandIndex(ds.Labels, res.KMeansLabels); err != nil {
		return ComparisonResult{}, err
	}
	if res.GMMARI, err = metrics.AdjustedRandIndex(ds.Labels, gmmLabels); err != nil {
		return ComparisonResult{}, err
	}
	if res.KMeansAccuracy, err = metrics.ClusteringAccuracy(ds.Labels, res.KMeansLabels); err != nil {
		return ComparisonResult{}, err
	}
	if res.GMMAccuracy, err = metrics.ClusteringAccuracy(ds.Labels, gmmLabels); err != nil {
		return ComparisonResult{}, err
	}

	c.logger.Info("comparison computed",
		log.SamplesKey, ds.Len(),
		log.InertiaKey, km.Inertia(),
		log.AgreementKey, res.GMMARI,
		"kmeans_ari", res.KMeansARI,
	)
	return res, nil
}

// Bisector returns the part of the perpendicular bisector of a and b that
// lies inside the square [-r, r]². This is the K-Means decision boundary of
// two centres. ok is false when a == b or the line misses the square.
func Bisector(a, b linalg.Point, r float64) (seg [2]linalg.Point, ok bool) {
	d := b.Sub(a)
	if d.Norm() == 0 {
		return seg, false
	}
	mid := a.Add(b).Scale(0.5)
	dir := linalg.Point{X: -d.Y, Y: d.X}.Scale(1 / d.Norm())

	// clip mid + t·dir against each slab
	lo, hi := math.Inf(-1), math.Inf(1)
	for _, axis := range [2][2]float64{{mid.X, dir.X}, {mid.Y, dir.Y}} {
		p0, v := axis[0], axis[1]
		if v == 0 {
			if p0 < -r || p0 > r {
				return seg, false
			}
			continue
		}
		t1, t2 := (-r-p0)/v, (r-p0)/v
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		lo, hi = math.Max(lo, t1), math.Min(hi, t2)
	}
	if lo > hi {
		return seg, false
	}
	return [2]linalg.Point{mid.Add(dir.Scale(lo)), mid.Add(dir.Scale(hi))}, true
}

// Figures renders the K-Means and GMM panels.
func (res ComparisonResult) Figures(cfg Config, theme chart.Theme) (kmeans, gmm chart.Figure) {
	x, y := featureAxes(cfg)
	pointStyle := chart.Style{Colorscale: chart.ScalePlasma, Size: markerSize, Opacity: 0.8}

	kmeans = chart.Figure{Title: "K-Means Clustering", X: x, Y: y}
	kmeans.Add(chart.NewCategoricalScatter("Data points", res.Data.Points, res.KMeansLabels, pointStyle))
	kmeans.Add(chart.NewScatter("Centroids", res.KMeansCenters, chart.Style{
		Color:  theme.Foreground.Hex(),
		Size:   meanMarkerSize,
		Marker: chart.MarkerCross,
		Width:  2,
	}))
	if len(res.KMeansCenters) == 2 {
		if seg, ok := Bisector(res.KMeansCenters[0], res.KMeansCenters[1], cfg.AxisRange); ok {
			kmeans.Add(chart.NewLine("Decision boundary", seg[:], chart.Style{
				Color: theme.Foreground.Hex(),
				Width: 2,
				Dash:  true,
			}))
		}
	}

	gmm = chart.Figure{Title: "GMM Clustering", X: x, Y: y}
	gmm.Add(chart.NewHeatmap("Decision regions", res.Decision, chart.Style{
		Colorscale: chart.ScalePlasma,
		Opacity:    0.5,
	}))
	gmm.Add(chart.NewCategoricalScatter("Data points", res.Data.Points, res.Data.Labels, pointStyle))
	return kmeans, gmm
}
