package tutorial

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/gmmtutor/chart"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Panel names.
const (
	PanelInteractive = "interactive"
	PanelComparison  = "comparison"
	PanelWalkthrough = "walkthrough"
	PanelLikelihood  = "likelihood"
)

// Config selects what a tutorial page contains and how it looks. One
// Config drives every presentation adapter.
type Config struct {
	Theme   string   `yaml:"theme"`
	Sliders bool     `yaml:"sliders"`
	Panels  []string `yaml:"panels"`

	Components    int     `yaml:"components"`
	MaxIterations int     `yaml:"max_iterations"`
	Perturbation  float64 `yaml:"perturbation"`
	// Seed fixes the random source. A negative seed uses the clock.
	Seed int64 `yaml:"seed"`

	EllipseScale          float64 `yaml:"ellipse_scale"`
	EllipsePoints         int     `yaml:"ellipse_points"`
	GridSize              int     `yaml:"grid_size"`
	ResponsibilitySamples int     `yaml:"responsibility_samples"`
	AxisRange             float64 `yaml:"axis_range"`

	Comparison ComparisonConfig `yaml:"comparison"`
}

// ComparisonConfig holds the initial slider positions of the comparison
// panel.
type ComparisonConfig struct {
	PointsPerCluster int     `yaml:"points_per_cluster"`
	Separation       float64 `yaml:"separation"`
	Stretch          float64 `yaml:"stretch"`
	Rotation         float64 `yaml:"rotation"` // degrees
}

// DefaultConfig returns the configuration of the stock tutorial page.
func DefaultConfig() Config {
	return Config{
		Theme:                 "dark",
		Sliders:               true,
		Panels:                []string{PanelInteractive, PanelComparison, PanelWalkthrough, PanelLikelihood},
		Components:            3,
		MaxIterations:         10,
		Perturbation:          1,
		Seed:                  -1,
		EllipseScale:          2,
		EllipsePoints:         100,
		GridSize:              100,
		ResponsibilitySamples: 10,
		AxisRange:             5,
		Comparison: ComparisonConfig{
			PointsPerCluster: 100,
			Separation:       4,
			Stretch:          2,
			Rotation:         0,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig decodes YAML on top of DefaultConfig and validates the result.
// Unknown keys are rejected.
func ReadConfig(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config")
	}
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errors.Wrap(err, "failed to decode config")
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := chart.ThemeByName(c.Theme); err != nil {
		return err
	}
	for _, p := range c.Panels {
		switch p {
		case PanelInteractive, PanelComparison, PanelWalkthrough, PanelLikelihood:
		default:
			return errors.NewValidationError("panels", "unknown panel", p)
		}
	}

	checks := []struct {
		ok    bool
		param string
		msg   string
		value interface{}
	}{
		{c.Components >= 1, "components", "must be positive", c.Components},
		{c.MaxIterations >= 0, "max_iterations", "must be non-negative", c.MaxIterations},
		{c.Perturbation >= 0, "perturbation", "must be non-negative", c.Perturbation},
		{c.EllipseScale > 0, "ellipse_scale", "must be positive", c.EllipseScale},
		{c.EllipsePoints >= 2, "ellipse_points", "must be at least 2", c.EllipsePoints},
		{c.GridSize >= 2, "grid_size", "must be at least 2", c.GridSize},
		{c.ResponsibilitySamples >= 1, "responsibility_samples", "must be positive", c.ResponsibilitySamples},
		{c.AxisRange > 0, "axis_range", "must be positive", c.AxisRange},
		{c.Comparison.PointsPerCluster >= 1, "comparison.points_per_cluster", "must be positive", c.Comparison.PointsPerCluster},
	}
	for _, chk := range checks {
		if !chk.ok {
			return errors.NewValidationError(chk.param, chk.msg, chk.value)
		}
	}

	for _, s := range ComparisonSliders(c.Comparison) {
		if err := s.Check(s.Value); err != nil {
			return errors.Wrap(err, "comparison")
		}
	}
	return nil
}

// HasPanel reports whether the page includes panel.
func (c Config) HasPanel(panel string) bool {
	for _, p := range c.Panels {
		if p == panel {
			return true
		}
	}
	return false
}

// ChartTheme resolves the configured theme.
func (c Config) ChartTheme() chart.Theme {
	t, err := chart.ThemeByName(c.Theme)
	if err != nil {
		return chart.Dark()
	}
	return t
}
