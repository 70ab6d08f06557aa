package tutorial

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Slider describes a range control. Renderers own the widget; the tutorial
// only receives values through a setter such as Comparison.Set.
type Slider struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Value float64 `json:"value"`
	Step  float64 `json:"step"`
}

// Check reports whether v lies within the slider range.
func (s Slider) Check(v float64) error {
	if math.IsNaN(v) || v < s.Min || v > s.Max {
		return errors.NewValidationError(s.Name, fmt.Sprintf("must be in [%g, %g]", s.Min, s.Max), v)
	}
	return nil
}

// Text renders the slider caption, e.g. "Cluster Separation: 4".
func (s Slider) Text() string {
	return s.Label + ": " + strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// Comparison slider names.
const (
	SliderSeparation = "separation"
	SliderStretch    = "stretch"
	SliderRotation   = "rotation"
)

// ComparisonSliders returns the three comparison controls positioned at cfg.
func ComparisonSliders(cfg ComparisonConfig) []Slider {
	return []Slider{
		{Name: SliderSeparation, Label: "Cluster Separation", Min: 2, Max: 6, Value: cfg.Separation, Step: 0.5},
		{Name: SliderStretch, Label: "Vertical Stretch", Min: 0.5, Max: 5, Value: cfg.Stretch, Step: 0.5},
		{Name: SliderRotation, Label: "Cluster Rotation", Min: 0, Max: 90, Value: cfg.Rotation, Step: 15},
	}
}
