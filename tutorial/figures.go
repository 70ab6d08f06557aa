package tutorial

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/geometry"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

const (
	markerSize     = 8
	meanMarkerSize = 12
	pointOpacity   = 0.7
	ellipseWidth   = 2
	meanColor      = "#ff0000"
)

func featureAxes(cfg Config) (chart.Axis, chart.Axis) {
	return chart.FixedAxis("Feature 1", -cfg.AxisRange, cfg.AxisRange),
		chart.FixedAxis("Feature 2", -cfg.AxisRange, cfg.AxisRange)
}

// DataFigure plots the dataset coloured by generating cluster.
func DataFigure(cfg Config, ds gaussian.Dataset) chart.Figure {
	x, y := featureAxes(cfg)
	f := chart.Figure{Title: "Synthetic Data", X: x, Y: y}
	f.Add(chart.NewCategoricalScatter("Data points", ds.Points, ds.Labels, chart.Style{
		Colorscale: chart.ScaleViridis,
		Size:       markerSize,
		Opacity:    pointOpacity,
	}))
	return f
}

// EllipseTraces draws one confidence ellipse per component. colorOf picks
// the line colour of component j.
func EllipseTraces(cfg Config, p mixture.Params, colorOf func(j int) string) ([]chart.Trace, error) {
	traces := make([]chart.Trace, 0, p.K())
	for j := range p.Means {
		pts, err := geometry.ConfidenceEllipse(p.Means[j], p.Covariances[j], cfg.EllipseScale, cfg.EllipsePoints)
		if err != nil {
			return nil, errors.Wrapf(err, "ellipse of component %d", j)
		}
		traces = append(traces, chart.NewLine(fmt.Sprintf("Cluster %d", j+1), pts, chart.Style{
			Color:   colorOf(j),
			Width:   ellipseWidth,
			Opacity: pointOpacity,
		}))
	}
	return traces, nil
}

// FitFigure plots the data coloured by most responsible component together
// with the component means and their confidence ellipses.
func FitFigure(cfg Config, theme chart.Theme, points []linalg.Point, assignments []int, p mixture.Params) (chart.Figure, error) {
	x, y := featureAxes(cfg)
	f := chart.Figure{Title: "GMM Fit", X: x, Y: y}
	f.Add(
		chart.NewCategoricalScatter("Data points", points, assignments, chart.Style{
			Colorscale: chart.ScaleViridis,
			Size:       markerSize,
			Opacity:    pointOpacity,
		}),
		chart.NewScatter("Cluster means", p.Means, chart.Style{
			Color:  meanColor,
			Size:   meanMarkerSize,
			Marker: chart.MarkerCross,
			Width:  2,
		}),
	)
	ellipses, err := EllipseTraces(cfg, p, theme.ComponentHex)
	if err != nil {
		return chart.Figure{}, err
	}
	f.Add(ellipses...)
	return f, nil
}

// SampleIndices returns min(m, n) indices spread evenly over [0, n):
// floor(i·n/m).
func SampleIndices(n, m int) []int {
	if m > n {
		m = n
	}
	if m <= 0 {
		return []int{}
	}
	idx := make([]int, m)
	for i := range idx {
		idx[i] = i * n / m
	}
	return idx
}

// ResponsibilityFigure stacks the responsibilities of a few evenly spaced
// sample points, one bar series per component.
func ResponsibilityFigure(cfg Config, theme chart.Theme, resp [][]float64) chart.Figure {
	f := chart.Figure{
		Title:      "Cluster Responsibilities",
		X:          chart.Axis{Title: "Sample Points"},
		Y:          chart.FixedAxis("Responsibility", 0, 1),
		ShowLegend: true,
		Stacked:    true,
	}
	idx := SampleIndices(len(resp), cfg.ResponsibilitySamples)
	if len(idx) == 0 {
		return f
	}
	k := len(resp[idx[0]])
	for j := 0; j < k; j++ {
		ys := make([]float64, len(idx))
		for s, i := range idx {
			ys[s] = resp[i][j]
		}
		f.Add(chart.NewBar(fmt.Sprintf("Cluster %d", j+1), ys, chart.Style{
			Color:   theme.ComponentHex(j),
			Opacity: pointOpacity,
		}))
	}
	return f
}

// LikelihoodFigure plots a log-likelihood history against the iteration.
func LikelihoodFigure(theme chart.Theme, history []float64) chart.Figure {
	t := chart.NewSeries("Log-likelihood", history, chart.Style{
		Color:       theme.Accent.Hex(),
		Width:       3,
		Size:        markerSize,
		Marker:      chart.MarkerCircle,
		MarkerColor: theme.AccentMarker.Hex(),
	})
	return chart.Figure{
		Title:  "Log-Likelihood Convergence",
		X:      chart.Axis{Title: "Iteration", Ticks: append([]float64(nil), t.X...)},
		Y:      chart.Axis{Title: "Log-Likelihood"},
		Traces: []chart.Trace{t},
	}
}

// ParameterText renders the parameter panel: iteration, log-likelihood to
// two decimals, weights to three and means to two.
func ParameterText(s mixture.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Iteration: %d\n", s.Iteration)
	fmt.Fprintf(&b, "Log-likelihood: %.2f\n", s.LogLikelihood)
	for j, w := range s.Params.Weights {
		fmt.Fprintf(&b, "π%d = %.3f\n", j+1, w)
	}
	for j, m := range s.Params.Means {
		fmt.Fprintf(&b, "μ%d = [%.2f, %.2f]\n", j+1, m.X, m.Y)
	}
	return b.String()
}
