package tutorial

import (
	"context"
	"fmt"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// WalkthroughMeans are the starting means of the walkthrough run, close to
// but not on the generating means of gaussian.ThreeClusterSpecs.
var WalkthroughMeans = []linalg.Point{{X: -1.8, Y: -1.5}, {X: 0.2, Y: 1.8}, {X: 2.8, Y: 0.2}}

// Walkthrough is a recorded EM run on the fixed three-cluster dataset.
type Walkthrough struct {
	Data    gaussian.Dataset
	Params  []mixture.Params // Params[i] is the state after i iterations
	History []float64
}

// RunWalkthrough samples the three-cluster dataset and records every EM
// iteration starting from WalkthroughMeans with identity covariances.
func RunWalkthrough(ctx context.Context, cfg Config, src gaussian.Source) (*Walkthrough, error) {
	ds, err := gaussian.GenerateDataset(src, gaussian.ThreeClusterSpecs())
	if err != nil {
		return nil, errors.Wrap(err, "walkthrough data")
	}
	em, err := mixture.NewEM(ds.Points, mixture.InitialParams(WalkthroughMeans),
		mixture.WithMaxIter(cfg.MaxIterations))
	if err != nil {
		return nil, err
	}

	w := &Walkthrough{Data: ds, Params: []mixture.Params{em.Params()}}
	for !em.Done() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "walkthrough cancelled")
		}
		if _, err := em.Step(); err != nil {
			return nil, err
		}
		w.Params = append(w.Params, em.Params())
	}
	w.History = em.History()
	return w, nil
}

// Animation renders one frame per recorded iteration.
func (w *Walkthrough) Animation(cfg Config, theme chart.Theme) (chart.Animation, error) {
	x, y := featureAxes(cfg)
	anim := chart.Animation{Title: "EM Algorithm Progress", Frames: make([]chart.Frame, 0, len(w.Params))}
	for i, p := range w.Params {
		f := chart.Figure{Title: "EM Algorithm Progress", X: x, Y: y}
		f.Add(
			chart.NewCategoricalScatter("Data Points", w.Data.Points, w.Data.Labels, chart.Style{
				Colorscale: chart.ScalePlasma,
				Size:       markerSize,
				Opacity:    pointOpacity,
			}),
			chart.NewScatter("Cluster Means", p.Means, chart.Style{
				Color:       theme.Accent.Hex(),
				MarkerColor: theme.AccentMarker.Hex(),
				Size:        meanMarkerSize,
				Marker:      chart.MarkerCross,
				Width:       2,
			}),
		)
		ellipses, err := EllipseTraces(cfg, p, theme.HighlightHex)
		if err != nil {
			return chart.Animation{}, errors.Wrapf(err, "frame %d", i)
		}
		f.Add(ellipses...)
		anim.Frames = append(anim.Frames, chart.Frame{
			Name:   fmt.Sprintf("iteration-%d", i),
			Label:  fmt.Sprintf("Iteration %d", i),
			Figure: f,
		})
	}
	return anim, nil
}

// Likelihood renders the log-likelihood of the recorded run.
func (w *Walkthrough) Likelihood(theme chart.Theme) chart.Figure {
	return LikelihoodFigure(theme, w.History)
}
