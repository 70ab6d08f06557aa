package tutorial

import (
	"context"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

// NamedFigure is a figure with a stable identifier, usable as a file name.
type NamedFigure struct {
	Name   string
	Figure chart.Figure
}

// Page collects everything the configured panels display.
type Page struct {
	Figures    []NamedFigure
	Animations []chart.Animation
	Sliders    []Slider
	Parameters string
	// Failed lists panels that could not be built.
	Failed []string
}

// BuildPage renders every panel of cfg. The session and comparison may be
// nil when their panels are not configured. A failing panel is logged,
// recorded in Page.Failed and skipped.
func BuildPage(ctx context.Context, cfg Config, session *Session, comparison *Comparison, src gaussian.Source) *Page {
	theme := cfg.ChartTheme()
	logger := log.GetLoggerWithName("tutorial")
	page := &Page{}

	build := func(panel string, fn func() error) {
		err := errors.SafeExecute("build "+panel, func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn()
		})
		if err != nil {
			logger.Error("panel skipped", err, log.PanelKey, panel, log.OperationKey, log.OperationRender)
			page.Failed = append(page.Failed, panel)
		}
	}

	if cfg.HasPanel(PanelInteractive) {
		build(PanelInteractive, func() error {
			if session == nil {
				return errors.NewValidationError("session", "required by the interactive panel", nil)
			}
			st := session.State()
			figs, err := st.Figures(cfg, theme)
			if err != nil {
				return err
			}
			page.Figures = append(page.Figures,
				NamedFigure{"interactive-data", figs.Data},
				NamedFigure{"interactive-em", figs.Fit},
				NamedFigure{"interactive-responsibilities", figs.Responsibilities},
				NamedFigure{"interactive-convergence", figs.Convergence},
			)
			page.Parameters = figs.Parameters
			return nil
		})
	}

	if cfg.HasPanel(PanelComparison) {
		build(PanelComparison, func() error {
			if comparison == nil {
				return errors.NewValidationError("comparison", "required by the comparison panel", nil)
			}
			res, err := comparison.Compute()
			if err != nil {
				return err
			}
			km, gmm := res.Figures(cfg, theme)
			page.Figures = append(page.Figures,
				NamedFigure{"kmeans", km},
				NamedFigure{"gmm", gmm},
			)
			if cfg.Sliders {
				page.Sliders = comparison.Sliders()
			}
			return nil
		})
	}

	if cfg.HasPanel(PanelWalkthrough) || cfg.HasPanel(PanelLikelihood) {
		var w *Walkthrough
		build(PanelWalkthrough, func() error {
			var err error
			w, err = RunWalkthrough(ctx, cfg, src)
			return err
		})
		if w != nil && cfg.HasPanel(PanelWalkthrough) {
			build(PanelWalkthrough, func() error {
				anim, err := w.Animation(cfg, theme)
				if err != nil {
					return err
				}
				page.Animations = append(page.Animations, anim)
				return nil
			})
		}
		if w != nil && cfg.HasPanel(PanelLikelihood) {
			page.Figures = append(page.Figures, NamedFigure{"likelihood", w.Likelihood(theme)})
		}
	}

	for _, nf := range page.Figures {
		if err := nf.Figure.Validate(); err != nil {
			logger.Warn("invalid figure", err, "figure", nf.Name)
		}
	}
	return page
}
