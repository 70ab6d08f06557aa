// Package chart describes tutorial figures as plain data.
//
// A Figure is a set of traces over two axes. Nothing in this package draws:
// renderers (render/plotimg, render/ascii) consume figures, and the core
// never reads anything back from them.
package chart

import (
	"github.com/YuminosukeSato/gmmtutor/core/linalg"
	"github.com/YuminosukeSato/gmmtutor/geometry"
	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
)

// Kind selects how a trace is drawn.
type Kind int

const (
	// Scatter draws unconnected markers.
	Scatter Kind = iota
	// Line connects consecutive points.
	Line
	// Bar draws one bar per X value.
	Bar
	// Heatmap colours a grid of Z values.
	Heatmap
)

func (k Kind) String() string {
	switch k {
	case Scatter:
		return "scatter"
	case Line:
		return "line"
	case Bar:
		return "bar"
	case Heatmap:
		return "heatmap"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Marker shapes.
const (
	MarkerCircle = "circle"
	MarkerCross  = "x"
)

// Style holds the visual attributes of a trace. Colors are hex strings.
type Style struct {
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
	Marker  string  `json:"marker,omitempty"`
	Dash    bool    `json:"dash,omitempty"`
	// MarkerColor overrides Color for markers. A Line trace with a Marker
	// also draws markers at its vertices.
	MarkerColor string `json:"marker_color,omitempty"`
	// Colorscale names the scale used for Categories and heatmap values.
	Colorscale string `json:"colorscale,omitempty"`
}

// Axis describes one plot axis. When Fixed is false the renderer chooses
// the range from the data.
type Axis struct {
	Title string  `json:"title"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
	Fixed bool    `json:"fixed,omitempty"`
	// Ticks lists explicit tick positions, e.g. whole iterations.
	Ticks []float64 `json:"ticks,omitempty"`
}

// Range returns the fixed range of a.
func (a Axis) Range() (lo, hi float64, ok bool) {
	return a.Min, a.Max, a.Fixed
}

// FixedAxis returns an axis with a fixed range.
func FixedAxis(title string, lo, hi float64) Axis {
	return Axis{Title: title, Min: lo, Max: hi, Fixed: true}
}

// Trace is one data series.
type Trace struct {
	Name string    `json:"name,omitempty"`
	Kind Kind      `json:"kind"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	// Z is indexed Z[row][col] with rows along Y and columns along X.
	Z [][]float64 `json:"z,omitempty"`
	// Categories colours points individually through Style.Colorscale.
	Categories []int `json:"categories,omitempty"`
	Style      Style `json:"style"`
}

// Len returns the number of points of a non-heatmap trace.
func (t Trace) Len() int { return len(t.X) }

// Points returns the trace coordinates as points.
func (t Trace) Points() []linalg.Point { return linalg.FromCoords(t.X, t.Y) }

// Validate checks that the coordinate slices agree in length.
func (t Trace) Validate() error {
	if t.Kind == Heatmap {
		if len(t.Z) != len(t.Y) {
			return errors.NewDimensionError("Trace.Validate", len(t.Y), len(t.Z), 0)
		}
		for _, row := range t.Z {
			if len(row) != len(t.X) {
				return errors.NewDimensionError("Trace.Validate", len(t.X), len(row), 1)
			}
		}
		return nil
	}
	if len(t.X) != len(t.Y) {
		return errors.NewDimensionError("Trace.Validate", len(t.X), len(t.Y), 0)
	}
	if t.Categories != nil && len(t.Categories) != len(t.X) {
		return errors.NewDimensionError("Trace.Validate", len(t.X), len(t.Categories), 0)
	}
	return nil
}

// Figure is a complete chart.
type Figure struct {
	Title      string  `json:"title"`
	X          Axis    `json:"x_axis"`
	Y          Axis    `json:"y_axis"`
	Traces     []Trace `json:"traces"`
	ShowLegend bool    `json:"show_legend,omitempty"`
	// Stacked stacks Bar traces on top of each other.
	Stacked bool `json:"stacked,omitempty"`
}

// Add appends traces and returns f for chaining.
func (f *Figure) Add(traces ...Trace) *Figure {
	f.Traces = append(f.Traces, traces...)
	return f
}

// Validate checks every trace.
func (f Figure) Validate() error {
	for i, t := range f.Traces {
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "figure %q trace %d", f.Title, i)
		}
	}
	return nil
}

// Frame is one named state of an Animation.
type Frame struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Figure Figure `json:"figure"`
}

// Animation is a sequence of figures sharing axes, stepped through by a
// slider or played in order.
type Animation struct {
	Title  string  `json:"title"`
	Frames []Frame `json:"frames"`
}

// NewScatter builds a marker trace.
func NewScatter(name string, points []linalg.Point, style Style) Trace {
	xs, ys := linalg.Coords(points)
	if style.Marker == "" {
		style.Marker = MarkerCircle
	}
	return Trace{Name: name, Kind: Scatter, X: xs, Y: ys, Style: style}
}

// NewCategoricalScatter builds a marker trace coloured by category.
func NewCategoricalScatter(name string, points []linalg.Point, categories []int, style Style) Trace {
	t := NewScatter(name, points, style)
	t.Categories = append([]int(nil), categories...)
	return t
}

// NewLine builds a polyline trace.
func NewLine(name string, points []linalg.Point, style Style) Trace {
	xs, ys := linalg.Coords(points)
	return Trace{Name: name, Kind: Line, X: xs, Y: ys, Style: style}
}

// NewSeries builds a line trace of ys against their index 0..n-1.
func NewSeries(name string, ys []float64, style Style) Trace {
	return Trace{Name: name, Kind: Line, X: indices(len(ys)), Y: append([]float64(nil), ys...), Style: style}
}

// NewBar builds a bar trace of ys against their index 0..n-1.
func NewBar(name string, ys []float64, style Style) Trace {
	return Trace{Name: name, Kind: Bar, X: indices(len(ys)), Y: append([]float64(nil), ys...), Style: style}
}

// NewHeatmap builds a heatmap trace from an evaluated grid.
func NewHeatmap(name string, g geometry.Grid, style Style) Trace {
	z := make([][]float64, len(g.Z))
	for i, row := range g.Z {
		z[i] = append([]float64(nil), row...)
	}
	return Trace{
		Name:  name,
		Kind:  Heatmap,
		X:     append([]float64(nil), g.X...),
		Y:     append([]float64(nil), g.Y...),
		Z:     z,
		Style: style,
	}
}

func indices(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
