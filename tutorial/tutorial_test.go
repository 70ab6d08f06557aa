package tutorial

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
	"github.com/YuminosukeSato/gmmtutor/sklearn/mixture"
	"github.com/YuminosukeSato/gmmtutor/stats/gaussian"
)

func seededConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.HasPanel(PanelComparison))
	assert.False(t, cfg.HasPanel("settings"))
	assert.Equal(t, "dark", cfg.ChartTheme().Name)
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 3, cfg.Components)
}

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "overrides",
			yaml: "theme: light\nmax_iterations: 5\ncomparison:\n  separation: 3\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "light", cfg.Theme)
				assert.Equal(t, 5, cfg.MaxIterations)
				assert.Equal(t, 3.0, cfg.Comparison.Separation)
				assert.Equal(t, 2.0, cfg.Comparison.Stretch)
				assert.Equal(t, 3, cfg.Components)
			},
		},
		{
			name:  "empty",
			yaml:  "",
			check: func(t *testing.T, cfg Config) { assert.Equal(t, DefaultConfig(), cfg) },
		},
		{
			name:  "comments only",
			yaml:  "# nothing to see\n",
			check: func(t *testing.T, cfg Config) { assert.Equal(t, DefaultConfig(), cfg) },
		},
		{name: "unknown key", yaml: "colour: red\n", wantErr: true},
		{name: "bad theme", yaml: "theme: solarized\n", wantErr: true},
		{name: "bad panel", yaml: "panels: [interactive, settings]\n", wantErr: true},
		{name: "slider out of range", yaml: "comparison:\n  rotation: 120\n", wantErr: true},
		{name: "zero components", yaml: "components: 0\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ReadConfig(strings.NewReader(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutorial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\npanels: [likelihood]\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, []string{PanelLikelihood}, cfg.Panels)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSlider(t *testing.T) {
	sliders := ComparisonSliders(DefaultConfig().Comparison)
	require.Len(t, sliders, 3)
	assert.Equal(t, "Cluster Separation: 4", sliders[0].Text())
	sliders[0].Value = 4.5
	assert.Equal(t, "Cluster Separation: 4.5", sliders[0].Text())

	assert.NoError(t, sliders[2].Check(90))
	assert.Error(t, sliders[2].Check(91))
	assert.Error(t, sliders[1].Check(math.NaN()))
}

func TestSampleIndices(t *testing.T) {
	assert.Equal(t, []int{0, 30, 60, 90, 120, 150, 180, 210, 240, 270}, SampleIndices(300, 10))
	assert.Equal(t, []int{0, 1, 2}, SampleIndices(3, 10))
	assert.Equal(t, []int{0, 2, 5}, SampleIndices(7, 3))
	assert.Empty(t, SampleIndices(0, 10))
}

func TestParameterText(t *testing.T) {
	snap := mixture.Snapshot{
		Iteration:     2,
		LogLikelihood: -123.456,
		Params: mixture.Params{
			Weights: []float64{0.25, 0.75},
			Means:   []linalg.Point{{X: 1, Y: -2}, {X: 0.25, Y: 3.5}},
		},
	}
	want := "Iteration: 2\nLog-likelihood: -123.46\nπ1 = 0.250\nπ2 = 0.750\nμ1 = [1.00, -2.00]\nμ2 = [0.25, 3.50]\n"
	assert.Equal(t, want, ParameterText(snap))
}

func TestSession_Lifecycle(t *testing.T) {
	cfg := seededConfig(1)
	s, err := NewSession(cfg)
	require.NoError(t, err)

	st := s.State()
	assert.Equal(t, 0, st.Snapshot.Iteration)
	assert.Len(t, st.Snapshot.History, 1)
	assert.True(t, st.CanIterate)
	assert.Equal(t, 3, st.Data.K)
	assert.Len(t, st.Snapshot.Assignments, len(st.Data.Points))
	firstPoints := st.Data.Points

	for i := 1; i <= cfg.MaxIterations; i++ {
		snap, err := s.Iterate()
		require.NoError(t, err)
		assert.Equal(t, i, snap.Iteration)
	}
	assert.False(t, s.CanIterate())
	_, err = s.Iterate()
	assert.True(t, errors.Is(err, errors.ErrMaxIterations))
	assert.Equal(t, cfg.MaxIterations, s.State().Snapshot.Iteration)

	require.NoError(t, s.Reset())
	st = s.State()
	assert.Equal(t, 0, st.Snapshot.Iteration)
	assert.Len(t, st.Snapshot.History, 1)
	assert.Equal(t, firstPoints, st.Data.Points)
	assert.True(t, st.CanIterate)

	require.NoError(t, s.NewData())
	assert.NotEqual(t, firstPoints, s.State().Data.Points)
}

func TestSession_Components(t *testing.T) {
	cfg := seededConfig(2)
	cfg.Components = 2
	s, err := NewSession(cfg)
	require.NoError(t, err)
	st := s.State()
	assert.Equal(t, 2, st.Snapshot.Params.K())
	assert.Len(t, st.Responsibilities[0], 2)
}

func TestSession_Concurrent(t *testing.T) {
	s, err := NewSession(seededConfig(3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 3 {
			case 0:
				_, _ = s.Iterate()
			case 1:
				st := s.State()
				assert.Len(t, st.Snapshot.History, st.Snapshot.Iteration+1)
			default:
				assert.NoError(t, s.Reset())
			}
		}(i)
	}
	wg.Wait()

	st := s.State()
	assert.Len(t, st.Snapshot.History, st.Snapshot.Iteration+1)
}

func TestSession_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EllipsePoints = 1
	_, err := NewSession(cfg)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestState_Figures(t *testing.T) {
	cfg := seededConfig(4)
	s, err := NewSession(cfg, WithSource(gaussian.NewSource(4)))
	require.NoError(t, err)
	_, err = s.Iterate()
	require.NoError(t, err)

	st := s.State()
	figs, err := st.Figures(cfg, chart.Dark())
	require.NoError(t, err)

	assert.Equal(t, "Synthetic Data", figs.Data.Title)
	assert.Equal(t, st.Data.Labels, figs.Data.Traces[0].Categories)

	require.Len(t, figs.Fit.Traces, 2+3)
	assert.Equal(t, chart.MarkerCross, figs.Fit.Traces[1].Style.Marker)
	ellipse := figs.Fit.Traces[2]
	assert.Len(t, ellipse.X, cfg.EllipsePoints)
	assert.InDelta(t, ellipse.X[0], ellipse.X[len(ellipse.X)-1], 1e-12)

	require.Len(t, figs.Responsibilities.Traces, 3)
	assert.True(t, figs.Responsibilities.Stacked)
	for i := 0; i < cfg.ResponsibilitySamples; i++ {
		sum := 0.0
		for _, tr := range figs.Responsibilities.Traces {
			sum += tr.Y[i]
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}

	assert.Equal(t, st.Snapshot.History, figs.Convergence.Traces[0].Y)
	assert.Equal(t, []float64{0, 1}, figs.Convergence.X.Ticks)
	assert.Contains(t, figs.Parameters, "Iteration: 1")
	assert.Greater(t, st.Improvement(), 0.0)

	for _, f := range []chart.Figure{figs.Data, figs.Fit, figs.Responsibilities, figs.Convergence} {
		assert.NoError(t, f.Validate())
	}
}

func TestComparison_Sliders(t *testing.T) {
	c := NewComparison(DefaultConfig(), gaussian.NewSource(1))

	assert.Error(t, c.Set("zoom", 1))
	assert.Error(t, c.Set(SliderSeparation, 10))

	require.NoError(t, c.Set(SliderRotation, 90))
	p := c.Params()
	assert.InDelta(t, 2.0, p.Covariances[0][0][0], 1e-12)
	assert.InDelta(t, 0.5, p.Covariances[0][1][1], 1e-12)
	assert.InDelta(t, 0.0, p.Covariances[0][0][1], 1e-12)

	// stretch keeps the rotation
	require.NoError(t, c.Set(SliderRotation, 45))
	require.NoError(t, c.Set(SliderStretch, 3))
	want := linalg.Diag(0.5, 3).Rotate(45 * math.Pi / 180)
	assert.Equal(t, want, c.Params().Covariances[1])

	require.NoError(t, c.Set(SliderSeparation, 6))
	p = c.Params()
	assert.Equal(t, []linalg.Point{{X: -3}, {X: 3}}, p.Means)
	assert.Equal(t, []float64{0.5, 0.5}, p.Weights)
	assert.Equal(t, 6.0, c.Sliders()[0].Value)
}

func TestComparison_Compute(t *testing.T) {
	cfg := seededConfig(5)
	c := NewComparison(cfg, gaussian.NewSource(5))
	res, err := c.Compute()
	require.NoError(t, err)

	assert.Len(t, res.Data.Points, 2*cfg.Comparison.PointsPerCluster)
	assert.Len(t, res.KMeansLabels, len(res.Data.Points))
	assert.Len(t, res.KMeansCenters, 2)
	assert.Greater(t, res.KMeansARI, 0.8)
	assert.Greater(t, res.GMMARI, 0.8)
	assert.Greater(t, res.GMMAccuracy, 0.9)
	assert.Greater(t, res.KMeansAccuracy, 0.9)

	require.Len(t, res.Decision.Z, cfg.GridSize)
	row := res.Decision.Z[cfg.GridSize/2]
	require.Len(t, row, cfg.GridSize)
	assert.Equal(t, 0.0, row[0])
	assert.Equal(t, 1.0, row[cfg.GridSize-1])

	km, gmm := res.Figures(cfg, chart.Dark())
	assert.Equal(t, "K-Means Clustering", km.Title)
	require.Len(t, km.Traces, 3)
	assert.True(t, km.Traces[2].Style.Dash)
	assert.Equal(t, chart.Heatmap, gmm.Traces[0].Kind)
	assert.NoError(t, km.Validate())
	assert.NoError(t, gmm.Validate())
}

func TestBisector(t *testing.T) {
	seg, ok := Bisector(linalg.Point{X: -1}, linalg.Point{X: 1}, 5)
	require.True(t, ok)
	assert.InDelta(t, 0, seg[0].X, 1e-12)
	assert.InDelta(t, 0, seg[1].X, 1e-12)
	assert.InDelta(t, 10, math.Abs(seg[1].Y-seg[0].Y), 1e-12)

	seg, ok = Bisector(linalg.Point{X: 0, Y: 0}, linalg.Point{X: 2, Y: 2}, 5)
	require.True(t, ok)
	for _, p := range seg {
		assert.InDelta(t, 2, p.X+p.Y, 1e-12)
		assert.LessOrEqual(t, math.Abs(p.X), 5+1e-12)
		assert.LessOrEqual(t, math.Abs(p.Y), 5+1e-12)
	}

	_, ok = Bisector(linalg.Point{X: 1}, linalg.Point{X: 1}, 5)
	assert.False(t, ok)
	_, ok = Bisector(linalg.Point{X: 10, Y: 10}, linalg.Point{X: 12, Y: 10}, 5)
	assert.False(t, ok)
}

func TestWalkthrough(t *testing.T) {
	cfg := seededConfig(6)
	w, err := RunWalkthrough(context.Background(), cfg, gaussian.NewSource(6))
	require.NoError(t, err)

	require.Len(t, w.Params, cfg.MaxIterations+1)
	require.Len(t, w.History, cfg.MaxIterations+1)
	assert.Equal(t, WalkthroughMeans, w.Params[0].Means)
	assert.Greater(t, w.History[len(w.History)-1], w.History[0])

	anim, err := w.Animation(cfg, chart.Dark())
	require.NoError(t, err)
	require.Len(t, anim.Frames, cfg.MaxIterations+1)
	assert.Equal(t, "iteration-0", anim.Frames[0].Name)
	assert.Equal(t, "Iteration 10", anim.Frames[10].Label)
	assert.Len(t, anim.Frames[3].Figure.Traces, 2+3)

	assert.Equal(t, w.History, w.Likelihood(chart.Dark()).Traces[0].Y)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunWalkthrough(ctx, cfg, gaussian.NewSource(6))
	assert.ErrorIs(t, err, context.Canceled)
}

type flakyRenderer struct {
	out bytes.Buffer
}

func (f *flakyRenderer) Render(mount, formula string) error {
	switch mount {
	case "e-step-formula":
		return errors.New("katex unavailable")
	case "gaussian-formula":
		panic("renderer crashed")
	}
	f.out.WriteString(mount + "\n")
	return nil
}

func TestRenderFormulas(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	var buf bytes.Buffer
	n := RenderFormulas(MarkdownRenderer{W: &buf}, logger)
	assert.Equal(t, len(Formulas()), n)
	assert.Contains(t, buf.String(), "<!-- gmm-intro-formula -->")
	assert.Contains(t, buf.String(), `\pi_k \mathcal{N}`)

	flaky := &flakyRenderer{}
	n = RenderFormulas(flaky, logger)
	assert.Equal(t, len(Formulas())-2, n)
	assert.NotContains(t, flaky.out.String(), "e-step-formula")
	assert.True(t, logger.ContainsMessage("formula rendering failed"))

	assert.Error(t, MarkdownRenderer{W: &buf}.Render("empty", ""))
}

func TestBuildPage(t *testing.T) {
	cfg := seededConfig(7)
	src := gaussian.NewSource(7)
	s, err := NewSession(cfg, WithSource(src))
	require.NoError(t, err)
	c := NewComparison(cfg, src)

	page := BuildPage(context.Background(), cfg, s, c, src)
	assert.Empty(t, page.Failed)

	var names []string
	for _, nf := range page.Figures {
		names = append(names, nf.Name)
	}
	assert.Equal(t, []string{
		"interactive-data", "interactive-em", "interactive-responsibilities", "interactive-convergence",
		"kmeans", "gmm", "likelihood",
	}, names)
	assert.Len(t, page.Animations, 1)
	assert.Len(t, page.Sliders, 3)
	assert.Contains(t, page.Parameters, "Iteration: 0")

	cfg.Panels = []string{PanelInteractive, PanelLikelihood}
	cfg.Sliders = false
	page = BuildPage(context.Background(), cfg, nil, nil, src)
	assert.Equal(t, []string{PanelInteractive}, page.Failed)
	require.Len(t, page.Figures, 1)
	assert.Equal(t, "likelihood", page.Figures[0].Name)
	assert.Empty(t, page.Animations)
	assert.Empty(t, page.Sliders)
}
